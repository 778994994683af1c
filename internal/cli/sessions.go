package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"bkpreport/internal/dataprocessing"
	"bkpreport/internal/exporter"
	"bkpreport/pkg/contracts/domain"
)

type sessionsOptions struct {
	*globalOptions
	dates       dateFlags
	cellManager string
	csvPath     string
}

func newSessionsCmd(global *globalOptions) *cobra.Command {
	opts := &sessionsOptions{globalOptions: global}

	cmd := &cobra.Command{
		Use:   "sessions --cell-manager CM FILE...",
		Short: "Summarize the session exports of one Cell Manager",
		Long: `Parse one or more tab separated session exports of a Cell Manager and
print its policies, jobs, written size and compliance.`,
		Args: cobra.MinimumNArgs(1),
		RunE: opts.run,
	}

	cmd.Flags().StringVarP(&opts.cellManager, "cell-manager", "c", "", "Cell Manager the exports belong to")
	cmd.Flags().StringVar(&opts.csvPath, "csv", "", "Write the summary row to this CSV file")
	opts.dates.register(cmd)
	cmd.MarkFlagRequired("cell-manager")

	return cmd
}

func (o *sessionsOptions) run(cmd *cobra.Command, args []string) error {
	q, err := o.dates.query()
	if err != nil {
		return err
	}

	svc := o.reportService()
	if !svc.IsCellManager(o.cellManager) {
		return fmt.Errorf("unknown cell manager %q (expected one of %s)",
			o.cellManager, strings.Join(svc.CellManagers(), ", "))
	}

	result, err := svc.ParseCellManager(cmd.Context(), o.cellManager, args)
	if err != nil {
		return err
	}

	reports := []domain.CellManagerReport{result.Report}
	var window *domain.DateRange
	if o.dates.set() {
		if reports, window, err = svc.Window(reports, q); err != nil {
			return err
		}
	}

	t := exporter.CellManagerTable(dataprocessing.SummarizeCellManagers(reports))
	t.Title = o.cellManager
	t.Rows = t.Rows[:len(reports)]

	out := cmd.OutOrStdout()
	printTable(out, t, complianceColumn())
	printWindow(out, window)
	printSkipped(out, o.cellManager, result.Stats)

	if o.csvPath != "" {
		if err := exporter.NewCSVWriter(nil, o.logger).WriteSimpleCSV(o.csvPath, t.Headers, t.Rows); err != nil {
			return fmt.Errorf("failed to write %s: %w", o.csvPath, err)
		}
		o.logger.Info("Summary written", slog.String("file", o.csvPath))
	}
	return nil
}
