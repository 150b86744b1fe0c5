package commands

import (
	"slices"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"countysales/internal/county"
)

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Lists the county adapters and whether the settings enable them.",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, _, err := newApplication(cmd.Context())
		if err != nil {
			return err
		}
		defer application.Close()

		enabled := application.Enabled()
		t := newTable()
		t.AppendHeader(table.Row{"Adapter", "County", "Enabled"})
		for _, name := range application.Registry().Names() {
			t.AppendRow(table.Row{name, county.DisplayName(name), slices.Contains(enabled, name)})
		}
		t.Render()
		return nil
	},
}
