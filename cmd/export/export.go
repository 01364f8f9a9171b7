// Package export implements the article export command.
package export

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Atlas-Final-Project/data-crawling/cmd/common"
	"github.com/Atlas-Final-Project/data-crawling/internal/report"
	"github.com/Atlas-Final-Project/data-crawling/internal/storage"
)

// Command returns the export command.
func Command(cfgFile *string, debug *bool) *cobra.Command {
	var (
		format    string
		output    string
		source    string
		category  string
		incidents bool
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored articles as JSON or CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != report.FormatJSON && format != report.FormatCSV {
				return fmt.Errorf("unknown format %q, want json or csv", format)
			}

			app, err := common.Build(*cfgFile, *debug)
			if err != nil {
				return err
			}

			articles, err := app.Store.FindMany(cmd.Context(), storage.Query{
				Source:        source,
				Category:      category,
				IncidentsOnly: incidents,
				Limit:         limit,
			})
			if err != nil {
				return err
			}

			w := os.Stdout
			if output != "" {
				f, createErr := os.Create(output)
				if createErr != nil {
					return fmt.Errorf("create output file: %w", createErr)
				}
				defer f.Close()
				w = f
			}

			if err := report.ExportArticles(w, articles, format); err != nil {
				return err
			}
			app.Logger.Info("export complete", "articles", len(articles), "format", format)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", report.FormatJSON, "output format (json or csv)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&source, "source", "", "filter by source name")
	cmd.Flags().StringVar(&category, "category", "", "filter by category")
	cmd.Flags().BoolVar(&incidents, "incidents", false, "only incident articles")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum articles to export")
	return cmd
}
