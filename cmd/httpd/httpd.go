// Package httpd implements the HTTP API server command.
package httpd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Atlas-Final-Project/data-crawling/cmd/common"
	"github.com/Atlas-Final-Project/data-crawling/internal/schedule"
)

// Command returns the httpd command.
func Command(cfgFile *string, debug *bool) *cobra.Command {
	var withScheduler bool

	cmd := &cobra.Command{
		Use:   "httpd",
		Short: "Serve the article read API, optionally with the scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := common.Build(*cfgFile, *debug)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := app.Store.EnsureIndex(ctx); err != nil {
				return err
			}

			var scheduler *schedule.Scheduler
			if withScheduler {
				scheduler = schedule.NewScheduler(app.Orchestrator, app.Config.Scheduler, app.Logger)
				if err := scheduler.Start(ctx); err != nil {
					return err
				}
			}

			server := app.NewAPIServer(*debug)
			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Start()
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				if scheduler != nil {
					scheduler.Stop()
				}
				return err
			case sig := <-sigCh:
				app.Logger.Info("shutdown signal received", "signal", sig.String())
			}

			if scheduler != nil {
				scheduler.Stop()
			}
			return server.Shutdown(context.Background())
		},
	}

	cmd.Flags().BoolVar(&withScheduler, "with-scheduler", false,
		"also run the ingestion scheduler in this process")
	return cmd
}
