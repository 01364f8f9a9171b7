// Package cmd implements the command-line interface for the news
// ingestion pipeline.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Atlas-Final-Project/data-crawling/cmd/crawl"
	"github.com/Atlas-Final-Project/data-crawling/cmd/export"
	"github.com/Atlas-Final-Project/data-crawling/cmd/httpd"
	cmdschedule "github.com/Atlas-Final-Project/data-crawling/cmd/schedule"
)

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// debug enables debug logging for all commands.
	debug bool

	rootCmd = &cobra.Command{
		Use:   "data-crawling",
		Short: "A recurring news ingestion pipeline",
		Long: `Fetches news from configured RSS and HTML sources, classifies
articles by keyword tables, extracts locations, and upserts the results
into Elasticsearch on a fixed schedule.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is ./config.yaml or ./config/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println("data-crawling version 1.0.0")
		},
	})

	rootCmd.AddCommand(crawl.Command(&cfgFile, &debug))
	rootCmd.AddCommand(cmdschedule.Command(&cfgFile, &debug))
	rootCmd.AddCommand(httpd.Command(&cfgFile, &debug))
	rootCmd.AddCommand(export.Command(&cfgFile, &debug))
}
