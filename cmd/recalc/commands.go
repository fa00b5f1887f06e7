package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cmlabs-hris/productivity-backend-go/internal/app"
	"github.com/cmlabs-hris/productivity-backend-go/internal/domain/productivity"
	"github.com/cmlabs-hris/productivity-backend-go/internal/domain/role"
	"github.com/cmlabs-hris/productivity-backend-go/internal/pkg/localday"
	"github.com/cmlabs-hris/productivity-backend-go/internal/repository/postgresql"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the scoring schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := app.Connect(ctx, opts.cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := postgresql.Migrate(ctx, db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema applied")
			return nil
		},
	}
}

func newBatchCmd(opts *rootOptions) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Recalculate every employee for one past day",
		Long: `Recalculate every active employee for one past business day using the
set-based batch path. Without --date the previous business day is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(a *app.App, now time.Time) error {
				day, err := dateOrDefault(date, localday.Today(now, a.Location).AddDate(0, 0, -1))
				if err != nil {
					return err
				}

				report, err := a.BatchService.RecalculateDay(cmd.Context(), day, now)
				if err != nil {
					return err
				}
				printReports(cmd, report)
				return failIfErrors(report)
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "business date to recalculate (YYYY-MM-DD)")
	return cmd
}

func newBackfillCmd(opts *rootOptions) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Recalculate a range of past days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := productivity.BackfillRequest{From: from, To: to}.Validate()
			if err != nil {
				return err
			}

			return opts.withApp(cmd.Context(), func(a *app.App, now time.Time) error {
				reports, err := a.BatchService.Backfill(cmd.Context(), start, end, now)
				printReports(cmd, reports...)
				if err != nil {
					return err
				}
				return failIfErrors(reports...)
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first business date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last business date, inclusive (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newEmployeeCmd(opts *rootOptions) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "employee <employee-id>",
		Short: "Recalculate one employee for one day",
		Long: `Recalculate one employee-day through the single-employee path. Today is
allowed; an open session counts up to --now. Without --date today is used.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := uuid.Parse(args[0]); err != nil {
				return fmt.Errorf("invalid employee id %q: %w", args[0], err)
			}

			return opts.withApp(cmd.Context(), func(a *app.App, now time.Time) error {
				day, err := dateOrDefault(date, localday.Today(now, a.Location))
				if err != nil {
					return err
				}

				score, err := a.ScoreService.CalculateDaily(cmd.Context(), args[0], day, now)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "EMPLOYEE\tDATE\tITEMS\tACTIVE\tCLOCKED\tEFFICIENCY\tPOINTS")
				fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\t%.2f\t%.4f\t%s\n",
					score.EmployeeID,
					score.ScoreDate.Format(localday.DateLayout),
					score.ItemsProcessed,
					score.ActiveMinutes,
					score.ClockedMinutes,
					score.EfficiencyRate,
					score.PointsEarned.StringFixed(2),
				)
				return w.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "business date (YYYY-MM-DD)")
	return cmd
}

func newRolesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "roles [role-id]",
		Short: "Show the loaded role profiles",
		Long: `Load the role profiles the scorer would use and print them. With a role id,
print only that role, or the fallback profile when the id is unknown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(a *app.App, _ time.Time) error {
				snap := a.Roles.Snapshot()

				var profiles []role.Profile
				if len(args) == 1 {
					p, ok := snap.Lookup(args[0])
					if !ok {
						fmt.Fprintf(cmd.ErrOrStderr(), "role %q not found, showing fallback\n", args[0])
						p = snap.Fallback()
					}
					profiles = []role.Profile{p}
				} else {
					profiles = append(snap.Profiles(), snap.Fallback())
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tTYPE\tEXPECTED/H\tIDLE MIN\tMULTIPLIER")
				for _, p := range profiles {
					fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%g\t%g\n",
						p.ID, p.Name, p.TypeName(), p.ExpectedPerHour(), p.IdleThresholdMinutes(), p.Multiplier)
				}
				return w.Flush()
			})
		},
	}
}

func dateOrDefault(value string, def time.Time) (time.Time, error) {
	if value == "" {
		return def, nil
	}
	return productivity.RecalculateRequest{Date: value}.Validate()
}

func printReports(cmd *cobra.Command, reports ...productivity.BatchReport) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tRUN\tTOTAL\tPROCESSED\tERRORS\tSECONDS")
	for _, r := range reports {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%.2f\n",
			r.Date.Format(localday.DateLayout), r.RunID, r.TotalEmployees, r.Processed, r.Errors, r.DurationSeconds)
	}
	w.Flush()
}

// failIfErrors turns per-employee failures into a non-zero exit.
func failIfErrors(reports ...productivity.BatchReport) error {
	failed := 0
	for _, r := range reports {
		failed += r.Errors
	}
	if failed > 0 {
		return fmt.Errorf("%d employee-day(s) failed, see logs", failed)
	}
	return nil
}
