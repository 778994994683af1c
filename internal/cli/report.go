package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"bkpreport/internal/dataprocessing"
	"bkpreport/internal/exporter"
	"bkpreport/pkg/contracts/domain"
)

type reportOptions struct {
	*globalOptions
	dates    dateFlags
	dir      string
	schedule string
	period   string
	csvDir   string
	xlsxPath string
}

func newReportCmd(global *globalOptions) *cobra.Command {
	opts := &reportOptions{globalOptions: global}

	cmd := &cobra.Command{
		Use:   "report --dir DIR",
		Short: "Build the full Cell Manager and schedule report",
		Long: `Read DIR/<cell-manager>/*.csv|*.txt for every configured Cell Manager,
optionally a schedule workbook, and print the overview tables.

Exports:
  --csv-dir writes cell-managers.csv, sessions.csv and schedule.csv
  --xlsx    writes every table to one workbook`,
		Args: cobra.NoArgs,
		RunE: opts.run,
	}

	cmd.Flags().StringVarP(&opts.dir, "dir", "d", "", "Directory with one subdirectory per Cell Manager")
	cmd.Flags().StringVarP(&opts.schedule, "schedule", "s", "", "Schedule workbook (defaults to the newest .xlsx/.xlsm in --dir)")
	cmd.Flags().StringVarP(&opts.period, "period", "p", "", "Schedule period name (defaults to the workbook name)")
	cmd.Flags().StringVar(&opts.csvDir, "csv-dir", "", "Write CSV exports to this directory")
	cmd.Flags().StringVar(&opts.xlsxPath, "xlsx", "", "Write a summary workbook to this file")
	opts.dates.register(cmd)
	cmd.MarkFlagRequired("dir")

	return cmd
}

func (o *reportOptions) run(cmd *cobra.Command, args []string) error {
	q, err := o.dates.query()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	svc := o.reportService()

	results, err := svc.LoadCellManagers(ctx, o.dir)
	if err != nil {
		return err
	}
	if o.schedule == "" {
		latest, ok, err := svc.LatestWorkbook(o.dir)
		if err != nil {
			return err
		}
		if ok {
			o.logger.Info("Using schedule workbook found in report directory", slog.String("file", latest))
			o.schedule = latest
		}
	}
	if len(results) == 0 && o.schedule == "" {
		return errors.New("no session exports found under " + o.dir)
	}

	out := cmd.OutOrStdout()
	reports := make([]domain.CellManagerReport, 0, len(results))
	for _, r := range results {
		reports = append(reports, r.Report)
		printSkipped(out, r.Report.CellManager, r.Stats)
	}

	var window *domain.DateRange
	if o.dates.set() {
		if reports, window, err = svc.Window(reports, q); err != nil {
			return err
		}
	}

	cmTable := exporter.CellManagerTable(dataprocessing.SummarizeCellManagers(reports))
	printTable(out, cmTable, complianceColumn())
	printWindow(out, window)

	tables := []exporter.Table{cmTable, exporter.SessionTable(reports)}

	if o.schedule != "" {
		schedule, err := svc.ParseSchedule(ctx, o.schedule, o.period)
		if err != nil {
			return err
		}
		scheduleTable := exporter.ScheduleTable(schedule)
		scheduleTable.Title = "Schedule " + schedule.PeriodName
		fmt.Fprintln(out)
		printTable(out, scheduleTable, kpiColumn())
		tables = append(tables, scheduleTable)
	}

	reportExporter := exporter.NewReportExporter(nil, o.logger)
	if o.csvDir != "" {
		written, err := reportExporter.ExportTables(o.csvDir, tables...)
		if err != nil {
			return err
		}
		for _, path := range written {
			fmt.Fprintln(out, noteStyle.Render("wrote "+path))
		}
	}
	if o.xlsxPath != "" {
		if err := reportExporter.ExportWorkbook(o.xlsxPath, tables...); err != nil {
			return err
		}
		fmt.Fprintln(out, noteStyle.Render("wrote "+o.xlsxPath))
	}

	o.logger.Debug("Report complete",
		slog.Int("cell_managers", len(reports)),
		slog.Bool("schedule", o.schedule != ""))
	return nil
}
