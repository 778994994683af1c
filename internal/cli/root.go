// Package cli implements the bkpreport commands.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"bkpreport/internal/config"
	apierrors "bkpreport/internal/errors"
	"bkpreport/internal/infrastructure"
	"bkpreport/internal/services"
)

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	configFile string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
}

// NewRootCommand builds the bkpreport command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "bkpreport",
		Short: "Backup compliance and schedule KPI reports",
		Long: `bkpreport turns Data Protector session exports and monthly schedule
workbooks into Cell Manager compliance and schedule KPI reports.`,
		Version:           config.AppVersion,
		SilenceUsage:      true,
		PersistentPreRunE: opts.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			infrastructure.CloseLogFile()
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	// Subcommands (alphabetical)
	rootCmd.AddCommand(newReportCmd(opts))
	rootCmd.AddCommand(newScheduleCmd(opts))
	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newSessionsCmd(opts))

	return rootCmd
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCommand().ExecuteContext(context.Background())
}

// setup loads the configuration and builds the logger
func (o *globalOptions) setup(cmd *cobra.Command, args []string) error {
	var (
		cfg *config.Config
		err error
	)
	if o.configFile != "" {
		cfg, err = config.LoadFrom(o.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return apierrors.NewConfigError("failed to load configuration", err)
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}

	logger, err := infrastructure.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	o.cfg = cfg
	o.logger = infrastructure.WithComponent(logger, "cli").With(slog.String("command", cmd.Name()))
	cmd.SetContext(infrastructure.EnsureTraceID(cmd.Context()))
	return nil
}

// reportService returns a report service for file based commands
func (o *globalOptions) reportService() *services.ReportService {
	return services.NewReportService(o.cfg.Report, nil, nil, o.logger)
}

// dateFlags holds the --from/--to flags of a command
type dateFlags struct {
	from string
	to   string
}

func (d *dateFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&d.from, "from", "", "First day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&d.to, "to", "", "Last day to include (YYYY-MM-DD)")
}

// query parses the flags. Both empty means no date filter.
func (d *dateFlags) query() (services.DateQuery, error) {
	var q services.DateQuery
	if d.from != "" {
		t, err := time.Parse(time.DateOnly, d.from)
		if err != nil {
			return q, apierrors.NewAppValidationError(fmt.Sprintf("invalid --from %q: expected YYYY-MM-DD", d.from))
		}
		q.From = &t
	}
	if d.to != "" {
		t, err := time.Parse(time.DateOnly, d.to)
		if err != nil {
			return q, apierrors.NewAppValidationError(fmt.Sprintf("invalid --to %q: expected YYYY-MM-DD", d.to))
		}
		q.To = &t
	}
	if q.From != nil && q.To != nil && q.From.After(*q.To) {
		return q, apierrors.NewAppValidationError(fmt.Sprintf("--from %s is after --to %s", d.from, d.to))
	}
	return q, nil
}

func (d *dateFlags) set() bool {
	return d.from != "" || d.to != ""
}
