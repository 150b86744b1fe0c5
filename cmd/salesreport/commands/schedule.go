package commands

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(scheduleCmd)
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Runs the report now and then every schedule.interval until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, _, err := newApplication(cmd.Context())
		if err != nil {
			return err
		}
		defer application.Close()

		return application.Schedule(cmd.Context())
	},
}
