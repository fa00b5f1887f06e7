package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/cmlabs-hris/productivity-backend-go/internal/app"
	"github.com/cmlabs-hris/productivity-backend-go/internal/config"
)

type rootOptions struct {
	now string
	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "recalc",
		Short: "Run productivity scoring jobs against the database",
		Long: `recalc runs one-shot productivity scoring jobs.

Examples:
  recalc migrate
  recalc batch --date 2024-06-12
  recalc backfill --from 2024-06-01 --to 2024-06-12
  recalc employee 0190a6f5-3b1e-7c52-9f0a-2d4c8e6b1a37 --date 2024-06-12
  recalc roles`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			opts.cfg = cfg
			slog.SetDefault(app.NewLogger(cfg))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.now, "now", "", "override the current time (RFC3339), used to decide which sessions are still open")

	cmd.AddCommand(
		newMigrateCmd(opts),
		newBatchCmd(opts),
		newBackfillCmd(opts),
		newEmployeeCmd(opts),
		newRolesCmd(opts),
	)
	return cmd
}

func (o *rootOptions) clock() (time.Time, error) {
	if o.now == "" {
		return time.Now(), nil
	}
	t, err := time.Parse(time.RFC3339, o.now)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --now %q: %w", o.now, err)
	}
	return t, nil
}

// withApp builds the scoring core for the duration of fn.
func (o *rootOptions) withApp(ctx context.Context, fn func(a *app.App, now time.Time) error) error {
	now, err := o.clock()
	if err != nil {
		return err
	}

	a, err := app.New(ctx, o.cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(a, now)
}
