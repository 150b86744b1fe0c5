// Package chart draws the daily price trend image attached to each report.
package chart

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"countysales/internal/domain"
	"countysales/internal/enrich"
	"countysales/internal/normalize"
	"countysales/internal/ports"
)

// The chart trims prices with its own, tighter quantile band than the report.
const (
	lowQuantile  = 0.2
	highQuantile = 0.7
	bandFactor   = 1.5
)

var (
	background = color.RGBA{R: 230, G: 230, B: 230, A: 255}
	priceColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	ppsfColor  = color.RGBA{R: 255, G: 165, B: 0, A: 255}
)

// Renderer writes a PNG with two stacked panels: average sale price per day
// and average $/sqft per day.
type Renderer struct {
	Width  vg.Length
	Height vg.Length
}

var _ ports.ChartRenderer = (*Renderer)(nil)

// NewRenderer returns a 1600x1000 px renderer.
func NewRenderer() *Renderer {
	return &Renderer{Width: 16 * vg.Inch, Height: 10 * vg.Inch}
}

type sale struct {
	date  time.Time
	price float64
	sqft  float64
}

// Render reads the report CSV and writes the image beside it with a .png
// extension.
func (r *Renderer) Render(_ context.Context, csvPath string) (string, error) {
	sales, err := readSales(csvPath)
	if err != nil {
		return "", err
	}
	sales = trimPrices(sales)

	top, err := dailyPlot("Average Sale Price Per Day", "Price (USD)", "Avg Sale Price", priceColor,
		dailyAverage(sales, func(s sale) (float64, bool) { return s.price, true }))
	if err != nil {
		return "", err
	}
	bottom, err := dailyPlot("Average $/Sqft Sold Per Day", "Price per Sqft (USD)", "Avg $/Sqft", ppsfColor,
		dailyAverage(sales, func(s sale) (float64, bool) {
			if s.sqft <= 0 {
				return 0, false
			}
			return s.price / s.sqft, true
		}))
	if err != nil {
		return "", err
	}
	bottom.X.Label.Text = "Sale Date"

	img := vgimg.New(r.Width, r.Height)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      2,
		Cols:      1,
		PadX:      vg.Millimeter,
		PadY:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	plots := [][]*plot.Plot{{top}, {bottom}}
	canvases := plot.Align(plots, tiles, dc)
	for j := range plots {
		for i := range plots[j] {
			plots[j][i].Draw(canvases[j][i])
		}
	}

	out := strings.TrimSuffix(csvPath, ".csv") + ".png"
	f, err := os.Create(out)
	if err != nil {
		return "", fmt.Errorf("create chart: %w", err)
	}
	defer f.Close()

	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		return "", fmt.Errorf("encode chart: %w", err)
	}
	return out, f.Close()
}

func readSales(path string) ([]sale, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open report: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := map[string]int{}
	for i, name := range header {
		col[name] = i
	}
	for _, need := range []string{"sale_date", "sale_price", "fin_sqft"} {
		if _, ok := col[need]; !ok {
			return nil, fmt.Errorf("report is missing column %s", need)
		}
	}

	var out []sale
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read report: %w", err)
		}
		date, err := time.Parse(domain.DateLayout, rec[col["sale_date"]])
		if err != nil {
			continue
		}
		price, err := normalize.ParsePrice(rec[col["sale_price"]])
		if err != nil {
			continue
		}
		sqft, _ := strconv.ParseFloat(rec[col["fin_sqft"]], 64)
		out = append(out, sale{date: date, price: price.InexactFloat64(), sqft: sqft})
	}
	return out, nil
}

func trimPrices(sales []sale) []sale {
	if len(sales) == 0 {
		return sales
	}
	prices := make([]float64, 0, len(sales))
	for _, s := range sales {
		prices = append(prices, s.price)
	}
	lo := enrich.Quantile(prices, lowQuantile)
	hi := enrich.Quantile(prices, highQuantile)
	band := hi - lo
	return slices.DeleteFunc(slices.Clone(sales), func(s sale) bool {
		return s.price < lo-bandFactor*band || s.price > hi+bandFactor*band
	})
}

// dailyAverage averages value per sale date, skipping sales value rejects.
func dailyAverage(sales []sale, value func(sale) (float64, bool)) plotter.XYs {
	type acc struct {
		sum float64
		n   int
	}
	byDay := map[time.Time]*acc{}
	for _, s := range sales {
		v, ok := value(s)
		if !ok {
			continue
		}
		a := byDay[s.date]
		if a == nil {
			a = &acc{}
			byDay[s.date] = a
		}
		a.sum += v
		a.n++
	}

	days := make([]time.Time, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	slices.SortFunc(days, time.Time.Compare)

	xys := make(plotter.XYs, 0, len(days))
	for _, d := range days {
		a := byDay[d]
		xys = append(xys, plotter.XY{X: float64(d.Unix()), Y: a.sum / float64(a.n)})
	}
	return xys
}

func dailyPlot(title, yLabel, legend string, c color.Color, xys plotter.XYs) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = yLabel
	p.BackgroundColor = background
	p.X.Tick.Marker = plot.TimeTicks{Format: domain.DateLayout}
	p.Add(plotter.NewGrid())

	if len(xys) == 0 {
		return p, nil
	}
	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", title, err)
	}
	line.Color = c
	points.Color = c
	p.Add(line, points)
	p.Legend.Add(legend, line, points)
	p.Legend.Top = true
	return p, nil
}
