// Package schedule implements the long-running scheduler command.
package schedule

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Atlas-Final-Project/data-crawling/cmd/common"
	"github.com/Atlas-Final-Project/data-crawling/internal/schedule"
)

// Command returns the schedule command.
func Command(cfgFile *string, debug *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run ingestion cycles on the configured period until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := common.Build(*cfgFile, *debug)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := app.Store.EnsureIndex(ctx); err != nil {
				return err
			}

			scheduler := schedule.NewScheduler(app.Orchestrator, app.Config.Scheduler, app.Logger)
			if err := scheduler.Start(ctx); err != nil {
				return err
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			sig := <-sigCh
			app.Logger.Info("shutdown signal received", "signal", sig.String())

			scheduler.Stop()
			return nil
		},
	}
}
