// Package domain provides domain models used across the application.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// CategoryGeneral is the fallback category when no keyword set matches.
const CategoryGeneral = "General"

// CountryUnknown is the sentinel country when no country keyword matches.
const CountryUnknown = "Unknown"

// RawArticle is the unnormalized record a fetcher produces for one article.
// Date fields are raw strings; the adapter layer owns normalization.
type RawArticle struct {
	// Title of the article as extracted from the source
	Title string `json:"title"`
	// Main content or summary text
	Content string `json:"content"`
	// Canonical URL of the article
	URL string `json:"url"`
	// Publish date as reported by the RSS entry, if any
	RSSPublished string `json:"rss_published,omitempty"`
	// Publish date as reported by the article page, if any
	Published string `json:"published,omitempty"`
	// Name of the source that produced this record
	Source string `json:"source"`
}

// Article is the canonical, classified unit of persistence. It is created
// once from a RawArticle and never mutated afterwards.
type Article struct {
	// Unique identifier for the article
	ID string `json:"id"`
	// Title of the article
	Title string `json:"title"`
	// Normalized publish timestamp
	Published time.Time `json:"published"`
	// Main content of the article
	Content string `json:"content"`
	// Name of the source that produced the article
	Source string `json:"source"`
	// Assigned category; CategoryGeneral when no keyword set matched
	Category string `json:"category"`
	// Countries mentioned in the text; never empty, CountryUnknown when none
	Countries []string `json:"countries"`
	// Place names extracted by the entity extractor, deduplicated
	Locations []string `json:"locations"`
	// Whether the article matched any incident keyword
	IsIncident bool `json:"is_incident"`
	// When this article was ingested
	CrawledAt time.Time `json:"crawled_at"`
}

// NewArticleID returns a fresh article identifier.
func NewArticleID() string {
	return uuid.NewString()
}

// UpsertResult reports whether a persisted article was new or replaced
// an existing document with the same fingerprint.
type UpsertResult string

const (
	// UpsertInserted means no document existed for the fingerprint.
	UpsertInserted UpsertResult = "inserted"
	// UpsertUpdated means an existing document was overwritten.
	UpsertUpdated UpsertResult = "updated"
)
