package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"countysales/internal/app"
	"countysales/internal/config"
	"countysales/internal/logging"
)

var configPath *string

var rootCmd = &cobra.Command{
	Use:   "salesreport",
	Short: "salesreport scrapes county sale records and mails an investor report.",
}

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "", "Path to the YAML settings file (defaults to $SALESREPORT_CONFIG).")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApplication(ctx context.Context) (*app.Application, config.Config, error) {
	cfg := config.Load(*configPath)
	application, err := app.New(ctx, cfg, logging.New(cfg.Logging.Level))
	if err != nil {
		return nil, cfg, fmt.Errorf("init application: %w", err)
	}
	return application, cfg, nil
}

// newTable renders rounded boxes on a terminal and plain ASCII when piped.
func newTable() table.Writer {
	t := table.NewWriter()
	if term.IsTerminal(int(os.Stdout.Fd())) {
		t.SetStyle(table.StyleRounded)
	} else {
		t.SetStyle(table.StyleDefault)
	}
	t.SetOutputMirror(os.Stdout)
	return t
}
