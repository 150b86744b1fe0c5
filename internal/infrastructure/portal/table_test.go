package portal

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"countysales/internal/domain"
)

func TestClassifyRowShapes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		cells []string
		want  domain.RawRecord
		ok    bool
	}{
		{
			name:  "sales history",
			cells: []string{"123", "Owner", "1 Main St", "A", "01/05/2024", "$150,000"},
			want:  domain.RawRecord{ParcelID: "123", Address: "1 Main St", SaleDate: "01/05/2024", SalePrice: "$150,000"},
			ok:    true,
		},
		{
			name:  "sales history without price",
			cells: []string{"123", "Owner", "1 Main St", "A", "01/05/2024", " "},
		},
		{
			name:  "detail without price",
			cells: []string{"555", "9 Oak Ave", "3/2/1", "1,450", "RES", "1925", "02/14/2024"},
			want:  domain.RawRecord{ParcelID: "555", Address: "9 Oak Ave", FinSqft: "1,450", YearBuilt: "1925", SaleDate: "02/14/2024"},
			ok:    true,
		},
		{
			name:  "detail without transfer date",
			cells: []string{"555", "9 Oak Ave", "3/2/1", "1,450", "RES", "1925", ""},
		},
		{
			name:  "detail with price",
			cells: []string{"777", "2 Pine Rd", "4/2/1", "2000", "RES", "1990", "03/03/2024", "$250,000"},
			want:  domain.RawRecord{ParcelID: "777", Address: "2 Pine Rd", FinSqft: "2000", YearBuilt: "1990", SaleDate: "03/03/2024", SalePrice: "$250,000"},
			ok:    true,
		},
		{
			name:  "detail with empty amount",
			cells: []string{"777", "2 Pine Rd", "4/2/1", "2000", "RES", "1990", "03/03/2024", ""},
		},
		{
			name:  "header row",
			cells: []string{"Parcel Number", "Owner", "Address", "Roll", "Sale Date", "Sale Price"},
		},
		{
			name:  "search banner",
			cells: []string{"Searched for: sales between 01/01/2024 and 02/01/2024", "", "", "", "", ""},
		},
		{
			name:  "blank first cell",
			cells: []string{"", "Owner", "1 Main St", "A", "01/05/2024", "$150,000"},
		},
		{
			name:  "unknown shape",
			cells: []string{"123", "Owner", "1 Main St", "01/05/2024", "$150,000"},
		},
		{
			name: "no cells",
		},
	}

	for _, tc := range cases {
		got, ok := ClassifyRow(tc.cells)
		require.Equal(t, tc.ok, ok, tc.name)
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("%s: record mismatch (-want +got):\n%s", tc.name, diff)
		}
	}
}

func TestExtractRowsAndHiddenFields(t *testing.T) {
	t.Parallel()

	page := `
	<form>
	  <input type="hidden" name="__VIEWSTATE" value="dDwtMTA4NzE=">
	  <input type="hidden" name="__EVENTVALIDATION" value="">
	  <input type="hidden" value="orphan">
	  <input type="hidden" name="novalue">
	  <input type="text" name="visible" value="x">
	</form>
	<table>
	  <tr><th>Parcel</th><th>Address</th></tr>
	  <tr><td> 123 </td><td>1  Main
	      St</td></tr>
	  <tr></tr>
	</table>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)

	require.Equal(t, map[string]string{
		"__VIEWSTATE":       "dDwtMTA4NzE=",
		"__EVENTVALIDATION": "",
	}, HiddenFields(doc))

	require.Equal(t, [][]string{
		{},
		{"123", "1 Main St"},
		{},
	}, ExtractRows(doc, "td"))

	withHeaders := ExtractRows(doc, "td, th")
	require.Equal(t, []string{"Parcel", "Address"}, withHeaders[0])
}

func TestClassifyRowsNeverEmitsJunk(t *testing.T) {
	t.Parallel()

	rows := [][]string{
		{"Parcel ID", "Owner", "Address", "Roll", "Date", "Price"},
		{"", "", "", "", "", ""},
		{"Searched for", "x", "x", "x", "x", "x"},
		{"100", "Owner", "1 A St", "R", "01/01/2024", "$5,000"},
	}

	got := ClassifyRows(rows)
	require.Len(t, got, 1)
	for _, rec := range got {
		require.NotEmpty(t, rec.ParcelID)
		require.NotContains(t, rec.ParcelID, "Parcel")
	}
}
