package portal

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"countysales/internal/domain"
)

// Row shapes observed on printable results pages.
const (
	salesHistoryCells = 6 // parcel, owner, address, roll, sale date, sale price
	detailCells       = 7 // parcel, address, bldg info, fin sqft, use, year built, transfer date
	detailPriceCells  = 8 // detail shape plus amount
)

var junkMarkers = []string{"Parcel", "Searched for"}

// ExtractRows returns the trimmed text of the cells matched by cellSelector
// for every <tr> in the document, including rows of nested tables.
func ExtractRows(doc *goquery.Document, cellSelector string) [][]string {
	var rows [][]string
	doc.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find(cellSelector)
		row := make([]string, 0, cells.Length())
		cells.Each(func(_ int, td *goquery.Selection) {
			row = append(row, cellText(td))
		})
		rows = append(rows, row)
	})
	return rows
}

func cellText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}

// IsJunkRow reports header, banner and spacer rows.
func IsJunkRow(cells []string) bool {
	if len(cells) == 0 || strings.TrimSpace(cells[0]) == "" {
		return true
	}
	for _, marker := range junkMarkers {
		if strings.Contains(cells[0], marker) {
			return true
		}
	}
	return false
}

// ClassifyRow interprets a row by its cell count. Rows of any other shape,
// and rows that do not describe a completed transfer, are rejected.
func ClassifyRow(cells []string) (domain.RawRecord, bool) {
	if IsJunkRow(cells) {
		return domain.RawRecord{}, false
	}

	switch len(cells) {
	case salesHistoryCells:
		parcel, address, saleDate, salePrice := cells[0], cells[2], cells[4], cells[5]
		if strings.TrimSpace(salePrice) == "" {
			return domain.RawRecord{}, false
		}
		return domain.RawRecord{
			ParcelID:  parcel,
			Address:   address,
			SaleDate:  saleDate,
			SalePrice: salePrice,
		}, true

	case detailCells:
		transferDate := cells[6]
		if strings.TrimSpace(transferDate) == "" {
			return domain.RawRecord{}, false
		}
		return domain.RawRecord{
			ParcelID:  cells[0],
			Address:   cells[1],
			FinSqft:   cells[3],
			YearBuilt: cells[5],
			SaleDate:  transferDate,
		}, true

	case detailPriceCells:
		transferDate, amount := cells[6], cells[7]
		if strings.TrimSpace(transferDate) == "" || strings.TrimSpace(amount) == "" {
			return domain.RawRecord{}, false
		}
		return domain.RawRecord{
			ParcelID:  cells[0],
			Address:   cells[1],
			FinSqft:   cells[3],
			YearBuilt: cells[5],
			SaleDate:  transferDate,
			SalePrice: amount,
		}, true
	}

	return domain.RawRecord{}, false
}

// ClassifyRows applies ClassifyRow to every row, keeping the accepted ones.
func ClassifyRows(rows [][]string) []domain.RawRecord {
	var out []domain.RawRecord
	for _, cells := range rows {
		if rec, ok := ClassifyRow(cells); ok {
			out = append(out, rec)
		}
	}
	return out
}

// HiddenFields collects every named hidden input, value verbatim.
func HiddenFields(doc *goquery.Document) map[string]string {
	fields := map[string]string{}
	doc.Find(`input[type="hidden"]`).Each(func(_ int, in *goquery.Selection) {
		name, ok := in.Attr("name")
		if !ok || name == "" {
			return
		}
		value, ok := in.Attr("value")
		if !ok {
			return
		}
		fields[name] = value
	})
	return fields
}
