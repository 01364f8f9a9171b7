// Package crawl implements the one-shot ingestion cycle command.
package crawl

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Atlas-Final-Project/data-crawling/cmd/common"
	"github.com/Atlas-Final-Project/data-crawling/internal/report"
)

// Command returns the crawl command.
func Command(cfgFile *string, debug *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "crawl",
		Short: "Run one ingestion cycle and print its summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := common.Build(*cfgFile, *debug)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := app.Store.EnsureIndex(ctx); err != nil {
				return err
			}

			summary, err := app.Orchestrator.Run(ctx)
			if err != nil {
				return err
			}

			report.WriteCycleSummary(os.Stdout, summary)
			return nil
		},
	}
}
