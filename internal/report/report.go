// Package report renders cycle summaries for humans and exports stored
// articles to JSON and CSV.
package report

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Atlas-Final-Project/data-crawling/internal/ingest"
)

// WriteCycleSummary renders one cycle's outcome as tables.
func WriteCycleSummary(w io.Writer, summary *ingest.CycleSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(fmt.Sprintf("Cycle %s (%s)", summary.CycleID, summary.State))

	t.AppendHeader(table.Row{"Source", "Status", "Articles", "Detail"})
	for _, sr := range summary.Sources {
		t.AppendRow(table.Row{
			sr.Source,
			sourceStatus(sr),
			sr.Fetched,
			sourceDetail(sr),
		})
	}
	t.AppendFooter(table.Row{"Total", "", summary.Fetched, ""})
	t.Render()

	fmt.Fprintf(w, "\nIncidents: %d   Inserted: %d   Updated: %d   Persist failures: %d   Duration: %s\n",
		summary.Incidents, summary.Inserted, summary.Updated, summary.PersistFailed,
		summary.Duration.Round(time.Millisecond))

	if len(summary.ByCategory) > 0 {
		ct := table.NewWriter()
		ct.SetOutputMirror(w)
		ct.SetStyle(table.StyleLight)
		ct.AppendHeader(table.Row{"Category", "Articles"})
		for _, name := range sortedKeys(summary.ByCategory) {
			ct.AppendRow(table.Row{name, summary.ByCategory[name]})
		}
		ct.Render()
	}
}

func sourceStatus(sr ingest.SourceResult) string {
	switch {
	case sr.Skipped:
		return "cooldown"
	case sr.Failure != "":
		return string(sr.Failure)
	default:
		return "ok"
	}
}

func sourceDetail(sr ingest.SourceResult) string {
	switch {
	case sr.Skipped:
		return fmt.Sprintf("retry in %s", sr.CooldownLeft.Round(time.Second))
	case sr.Err != "":
		return sr.Err
	default:
		return ""
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
