package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"bkpreport/internal/exporter"
)

type scheduleOptions struct {
	*globalOptions
	period  string
	csvPath string
}

func newScheduleCmd(global *globalOptions) *cobra.Command {
	opts := &scheduleOptions{globalOptions: global}

	cmd := &cobra.Command{
		Use:   "schedule WORKBOOK",
		Short: "Compute the schedule KPIs of a monthly workbook",
		Long: `Classify every platform sheet of a schedule workbook and print the
executed, scheduled, relaunched, failed and managed counts with their KPIs.`,
		Args: cobra.ExactArgs(1),
		RunE: opts.run,
	}

	cmd.Flags().StringVarP(&opts.period, "period", "p", "", "Period name (defaults to the workbook name)")
	cmd.Flags().StringVar(&opts.csvPath, "csv", "", "Write the schedule table to this CSV file")

	return cmd
}

func (o *scheduleOptions) run(cmd *cobra.Command, args []string) error {
	report, err := o.reportService().ParseSchedule(cmd.Context(), args[0], o.period)
	if err != nil {
		return err
	}

	t := exporter.ScheduleTable(report)
	t.Title = "Schedule " + report.PeriodName
	printTable(cmd.OutOrStdout(), t, kpiColumn())

	if o.csvPath != "" {
		if err := exporter.NewCSVWriter(nil, o.logger).WriteSimpleCSV(o.csvPath, t.Headers, t.Rows); err != nil {
			return fmt.Errorf("failed to write %s: %w", o.csvPath, err)
		}
		o.logger.Info("Schedule written", slog.String("file", o.csvPath))
	}
	return nil
}
