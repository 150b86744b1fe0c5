package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"countysales/internal/domain"
	"countysales/internal/usecase"
)

var (
	runStart *string
	runEnd   *string
	runDays  *int
)

func init() {
	runStart = runCmd.Flags().String("start", "", "First sale date to include, MM/DD/YYYY.")
	runEnd = runCmd.Flags().String("end", "", "Last sale date to include, MM/DD/YYYY (defaults to today).")
	runDays = runCmd.Flags().Int("days", 0, "Lookback in days when --start is omitted (defaults to report.lookbackDays).")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [--start MM/DD/YYYY] [--end MM/DD/YYYY] [--days N]",
	Short: "Runs one report over the given window and prints the county summaries.",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, cfg, err := newApplication(cmd.Context())
		if err != nil {
			return err
		}
		defer application.Close()

		days := *runDays
		if days <= 0 {
			days = cfg.Report.LookbackDays
		}
		window, err := parseWindow(*runStart, *runEnd, days, time.Now().In(cfg.Schedule.Location()))
		if err != nil {
			return err
		}

		res, err := application.Run(cmd.Context(), window)
		printResult(res)
		return err
	},
}

// parseWindow resolves the run window from flags; an empty end means now and
// an empty start means days before end.
func parseWindow(start, end string, days int, now time.Time) (domain.DateRange, error) {
	endDay := now
	if end != "" {
		t, err := time.Parse(domain.PortalDateLayout, end)
		if err != nil {
			return domain.DateRange{}, fmt.Errorf("parse --end: %w", err)
		}
		endDay = t
	}
	if start == "" {
		return domain.LastDays(endDay, days), nil
	}

	startDay, err := time.Parse(domain.PortalDateLayout, start)
	if err != nil {
		return domain.DateRange{}, fmt.Errorf("parse --start: %w", err)
	}
	window := domain.NewDateRange(startDay, endDay)
	if window.Start.After(window.End) {
		return domain.DateRange{}, errors.New("--start is after --end")
	}
	return window, nil
}

func printResult(res usecase.RunResult) {
	if res.CSVPath == "" {
		fmt.Println("No sold properties found.")
		return
	}

	t := newTable()
	t.AppendHeader(table.Row{"County", "Median Price", "Median $/SqFt", "Records", "Deals", "Cash"})
	for _, s := range res.Summaries {
		ppsf := "n/a"
		if s.MedianPricePerSqft != nil {
			ppsf = fmt.Sprintf("$%.2f", *s.MedianPricePerSqft)
		}
		t.AppendRow(table.Row{s.Source, fmt.Sprintf("$%.0f", s.MedianSalePrice), ppsf, s.TotalRecords, s.FlaggedDeals, s.CashSales})
	}
	t.AppendFooter(table.Row{"Total", "", "", len(res.Records), "", ""})
	t.Render()

	fmt.Println("Report:", res.CSVPath)
	if res.ChartPath != "" {
		fmt.Println("Chart:", res.ChartPath)
	}
	for _, name := range res.Failed {
		fmt.Println("Failed county:", name)
	}
}
