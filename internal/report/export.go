package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Atlas-Final-Project/data-crawling/internal/domain"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// ExportArticles writes articles in the given format.
func ExportArticles(w io.Writer, articles []domain.Article, format string) error {
	switch format {
	case FormatJSON:
		return exportJSON(w, articles)
	case FormatCSV:
		return exportCSV(w, articles)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

func exportJSON(w io.Writer, articles []domain.Article) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(articles); err != nil {
		return fmt.Errorf("encode articles: %w", err)
	}
	return nil
}

func exportCSV(w io.Writer, articles []domain.Article) error {
	cw := csv.NewWriter(w)
	header := []string{
		"id", "title", "published", "source", "category",
		"countries", "locations", "is_incident", "crawled_at",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for i := range articles {
		a := &articles[i]
		row := []string{
			a.ID,
			a.Title,
			a.Published.Format(time.RFC3339),
			a.Source,
			a.Category,
			strings.Join(a.Countries, ";"),
			strings.Join(a.Locations, ";"),
			strconv.FormatBool(a.IsIncident),
			a.CrawledAt.Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
