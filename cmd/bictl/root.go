package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"brandcert/internal/audittrail"
	"brandcert/internal/certification"
	"brandcert/internal/kpi"
	"brandcert/internal/logostats"
	"brandcert/internal/platform/config"
	"brandcert/internal/platform/postgres"
	"brandcert/internal/report"
	"brandcert/internal/transition"
	id "brandcert/pkg/domain"
	dErrors "brandcert/pkg/domain-errors"
)

// Execute runs the CLI and maps the resulting error onto a process exit
// code: 0 success, 2 bad input or unknown record, 3 concurrent-update
// conflict, 1 anything else. Errors are printed as JSON on stderr so shell
// wrappers can inspect the code.
func Execute(cfg config.Config, log *slog.Logger) int {
	rootCmd := newRootCmd(cfg, log)
	if err := rootCmd.Execute(); err != nil {
		_ = json.NewEncoder(os.Stderr).Encode(map[string]string{
			"error":   string(dErrors.CodeOf(err)),
			"message": err.Error(),
		})
		return dErrors.ToExitCode(err)
	}
	return 0
}

func newRootCmd(cfg config.Config, log *slog.Logger) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "bictl",
		Short:         "Brand certification back-office tool",
		Long:          "Recompute KPI snapshots, generate reports, and apply certification state transitions against the configured database.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(
		newComputeKPICmd(cfg, log),
		newReportCmd(cfg, log),
		newTransitionCmd(cfg, log),
	)
	return rootCmd
}

// env bundles the stores every subcommand wires against.
type env struct {
	db        *sql.DB
	records   certification.RecordStore
	trail     audittrail.Store
	snapshots kpi.SnapshotStore
	logos     kpi.LogoStats
	txRunner  transition.TxRunner
}

func openEnv(cfg config.Config) (*env, error) {
	if cfg.DatabaseURL == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "BRANDCERT_DATABASE_URL is required")
	}
	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return &env{
		db:        db,
		records:   certification.NewPostgresStore(db),
		trail:     audittrail.NewPostgresStore(db),
		snapshots: kpi.NewPostgresSnapshotStore(db),
		logos:     logostats.NewPostgresProvider(db),
		txRunner:  transition.NewPostgresTxRunner(db),
	}, nil
}

func (e *env) Close() { _ = e.db.Close() }

func newComputeKPICmd(cfg config.Config, log *slog.Logger) *cobra.Command {
	var (
		dateStr  string
		startStr string
		endStr   string
	)
	cmd := &cobra.Command{
		Use:   "compute-kpi",
		Short: "Recompute daily KPI snapshots",
		Long:  "Recompute the KPI snapshot for a single date (default yesterday) or for every date in --start/--end.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv(cfg)
			if err != nil {
				return err
			}
			defer e.Close()
			aggregator := kpi.NewAggregator(e.records, e.logos, e.snapshots, kpi.WithLogger(log))

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
			defer cancel()

			if startStr != "" || endStr != "" {
				start, err := parseDate(startStr, "start")
				if err != nil {
					return err
				}
				end, err := parseDate(endStr, "end")
				if err != nil {
					return err
				}
				result, err := aggregator.ComputeRange(ctx, start, end)
				if err != nil {
					return err
				}
				return printJSON(cmd, rangeResultView(result))
			}

			date := time.Now().UTC().AddDate(0, 0, -1)
			if dateStr != "" {
				if date, err = parseDate(dateStr, "date"); err != nil {
					return err
				}
			}
			snapshot, err := aggregator.ComputeSnapshot(ctx, date)
			if err != nil {
				return err
			}
			return printJSON(cmd, snapshot)
		},
	}
	cmd.Flags().StringVar(&dateStr, "date", "", "Date to compute (YYYY-MM-DD, default yesterday)")
	cmd.Flags().StringVar(&startStr, "start", "", "First date of a range (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endStr, "end", "", "Last date of a range (YYYY-MM-DD)")
	return cmd
}

func newReportCmd(cfg config.Config, log *slog.Logger) *cobra.Command {
	var (
		startStr   string
		endStr     string
		typeStr    string
		producerID string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate a certification report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, err := parseDate(startStr, "start")
			if err != nil {
				return err
			}
			end, err := parseDate(endStr, "end")
			if err != nil {
				return err
			}
			reportType, err := report.ParseType(typeStr)
			if err != nil {
				return err
			}

			e, err := openEnv(cfg)
			if err != nil {
				return err
			}
			defer e.Close()
			generator := report.NewGenerator(e.records, e.snapshots, e.trail, report.WithLogger(log))

			var opts []report.Option
			if producerID != "" {
				opts = append(opts, report.WithProducer(producerID))
			}
			data, err := generator.Generate(cmd.Context(), start, end, reportType, opts...)
			if err != nil {
				return err
			}
			return printJSON(cmd, data)
		},
	}
	cmd.Flags().StringVar(&startStr, "start", "", "First date of the period (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endStr, "end", "", "Last date of the period (YYYY-MM-DD)")
	cmd.Flags().StringVar(&typeStr, "type", string(report.TypePeriodSummary), "Report type (period_summary, department_comparison, producer)")
	cmd.Flags().StringVar(&producerID, "producer", "", "Producer national ID (required for producer reports)")
	return cmd
}

func newTransitionCmd(cfg config.Config, log *slog.Logger) *cobra.Command {
	var (
		toStr string
		actor string
		notes string
	)
	cmd := &cobra.Command{
		Use:   "transition <record-id>",
		Short: "Apply a state transition to a certification record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recordID, err := id.ParseRecordID(args[0])
			if err != nil {
				return err
			}
			newStatus, err := certification.ParseStatus(toStr)
			if err != nil {
				return err
			}

			e, err := openEnv(cfg)
			if err != nil {
				return err
			}
			defer e.Close()
			engine := transition.NewEngine(e.records, e.trail, e.txRunner, transition.WithLogger(log))

			entry, err := engine.Transition(cmd.Context(), recordID, newStatus, actor, notes)
			if err != nil {
				return err
			}
			return printJSON(cmd, entry)
		},
	}
	cmd.Flags().StringVar(&toStr, "to", "", "Target status (PENDING, IN_REVIEW, APPROVED, REJECTED)")
	cmd.Flags().StringVar(&actor, "actor", "", "User recorded in the audit trail")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form note attached to the audit entry")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("actor")
	return cmd
}

func parseDate(s, name string) (time.Time, error) {
	if s == "" {
		return time.Time{}, dErrors.Newf(dErrors.CodeValidation, "--%s is required", name)
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, dErrors.Newf(dErrors.CodeValidation, "--%s must be YYYY-MM-DD", name)
	}
	return t, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// rangeResultView flattens a RangeResult for shell consumption.
func rangeResultView(result kpi.RangeResult) map[string]any {
	computed := make([]string, 0, len(result.Computed))
	for _, date := range result.Computed {
		computed = append(computed, date.Format(time.DateOnly))
	}
	failed := make([]map[string]string, 0, len(result.Failed))
	for _, failure := range result.Failed {
		failed = append(failed, map[string]string{
			"date":   failure.Date.Format(time.DateOnly),
			"reason": failure.Reason,
		})
	}
	return map[string]any{
		"computed": computed,
		"failed":   failed,
	}
}
