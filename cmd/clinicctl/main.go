package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/clinic-console/internal/calendar"
	"github.com/jwalitptl/clinic-console/pkg/errors"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "clinicctl",
		Short:        "Clinic management console core",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./config.yaml or ./config/config.yaml)")

	rootCmd.AddCommand(serveCmd(&configPath))
	rootCmd.AddCommand(historyCmd(&configPath))
	rootCmd.AddCommand(calendarCmd(&configPath))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func historyCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "history <patient-id>",
		Short: "Load a patient's record and print the medical history timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			// Failed sources show up in the history's errors.
			if err := a.stores.LoadPatientRecord(ctx, args[0]); err != nil {
				if errors.Is(err, errors.ErrValidation) {
					return err
				}
				a.log.Warn().Err(err).Str("patient_id", args[0]).Msg("patient record partially loaded")
			}

			history, err := a.views.PatientHistory(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), history)
		},
	}
}

func calendarCmd(configPath *string) *cobra.Command {
	var month, year int

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Print the agenda grid of a month with upcoming appointments flagged",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			m := a.views.CurrentMonth()
			if cmd.Flags().Changed("month") || cmd.Flags().Changed("year") {
				if !cmd.Flags().Changed("month") {
					month = int(m.Month)
				}
				if !cmd.Flags().Changed("year") {
					year = m.Year
				}
				if m, err = calendar.NewMonth(month, year); err != nil {
					return err
				}
			}

			if _, err := a.stores.Appointments.FetchAll(ctx); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), a.views.AgendaMonth(m))
		},
	}
	cmd.Flags().IntVar(&month, "month", 0, "month number, 1 to 12")
	cmd.Flags().IntVar(&year, "year", 0, "four digit year")
	return cmd
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
