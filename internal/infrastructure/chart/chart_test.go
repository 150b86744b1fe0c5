package chart

import (
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const reportCSV = `parcel_id,address,fin_sqft,year_built,sale_date,sale_price,county,sale_price_clean,price_per_sqft,est_monthly_rent,est_roi,cash_sale_flag,deal_flag
1,A,1000,,2025-05-01,"$100,000",Hamilton,100000,100,1000,0.12,False,False
2,B,,,2025-05-01,"$120,000",Butler,120000,,1200,0.12,False,False
3,C,1200,,2025-05-02,"$150,000",Hamilton,150000,125,1500,0.12,False,False
4,D,1500,,2025-05-03,"$135,000",Hamilton,135000,90,1350,0.12,False,False
5,E,900,,2025-05-03,"$9,900,000",Hamilton,9900000,11000,99000,0.12,False,False
`

func TestRenderWritesPNG(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "ALL_SOLD_05-01-2025_to_05-03-2025.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(reportCSV), 0o644))

	out, err := NewRenderer().Render(context.Background(), csvPath)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "ALL_SOLD_05-01-2025_to_05-03-2025.png"), out)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	require.Greater(t, cfg.Width, 0)
}

func TestDailyAverageAndTrim(t *testing.T) {
	t.Parallel()

	d1 := time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)
	sales := []sale{
		{date: d2, price: 150000, sqft: 1500},
		{date: d1, price: 100000, sqft: 1000},
		{date: d1, price: 120000},
		{date: d2, price: 130000, sqft: 1300},
		{date: d2, price: 9900000, sqft: 900},
	}

	trimmed := trimPrices(sales)
	require.Len(t, trimmed, 4)

	avg := dailyAverage(trimmed, func(s sale) (float64, bool) { return s.price, true })
	require.Len(t, avg, 2)
	require.Equal(t, float64(d1.Unix()), avg[0].X)
	require.InDelta(t, 110000, avg[0].Y, 1e-9)
	require.InDelta(t, 140000, avg[1].Y, 1e-9)
}
