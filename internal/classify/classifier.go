// Package classify implements keyword-driven article classification:
// incident detection, category scoring, and country extraction. All
// functions are pure and driven by configuration tables.
package classify

import (
	"strings"

	"github.com/Atlas-Final-Project/data-crawling/internal/domain"
)

// Category pairs a category name with its trigger keywords. Categories
// are evaluated in declaration order; a later category must score
// strictly higher to win a tie.
type Category struct {
	Name     string   `mapstructure:"name" yaml:"name"`
	Keywords []string `mapstructure:"keywords" yaml:"keywords"`
}

// CountryRule maps a trigger keyword to a country name. Rules are
// evaluated in declaration order so the returned country list is stable.
type CountryRule struct {
	Keyword string `mapstructure:"keyword" yaml:"keyword"`
	Country string `mapstructure:"country" yaml:"country"`
}

// Classifier scores article text against configured keyword tables.
type Classifier struct {
	categories       []Category
	countries        []CountryRule
	incidentKeywords []string
}

// New creates a classifier from the configured keyword tables. Keywords
// are lower-cased once here so matching stays case-insensitive without
// per-call allocation.
func New(categories []Category, countries []CountryRule, incidentKeywords []string) *Classifier {
	c := &Classifier{
		categories:       make([]Category, 0, len(categories)),
		countries:        make([]CountryRule, 0, len(countries)),
		incidentKeywords: make([]string, 0, len(incidentKeywords)),
	}

	for _, cat := range categories {
		lowered := Category{Name: cat.Name, Keywords: make([]string, 0, len(cat.Keywords))}
		for _, kw := range cat.Keywords {
			lowered.Keywords = append(lowered.Keywords, strings.ToLower(kw))
		}
		c.categories = append(c.categories, lowered)
	}

	for _, rule := range countries {
		c.countries = append(c.countries, CountryRule{
			Keyword: strings.ToLower(rule.Keyword),
			Country: rule.Country,
		})
	}

	for _, kw := range incidentKeywords {
		c.incidentKeywords = append(c.incidentKeywords, strings.ToLower(kw))
	}

	return c
}

// IsIncident reports whether the text contains any incident keyword.
// Empty text is never an incident.
func (c *Classifier) IsIncident(text string) bool {
	if text == "" {
		return false
	}

	lowered := strings.ToLower(text)
	for _, kw := range c.incidentKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// Categorize scores title+body against each category's keywords and
// returns the category with the strictly highest score. Each keyword
// counts once regardless of how often it occurs. Ties keep the earlier
// declared category. A zero score across the board yields
// domain.CategoryGeneral.
func (c *Classifier) Categorize(title, body string) string {
	lowered := strings.ToLower(title + " " + body)

	best := domain.CategoryGeneral
	bestScore := 0

	for _, cat := range c.categories {
		score := 0
		for _, kw := range cat.Keywords {
			if strings.Contains(lowered, kw) {
				score++
			}
		}
		if score > bestScore {
			best = cat.Name
			bestScore = score
		}
	}

	return best
}

// ExtractCountries returns the countries whose trigger keywords occur in
// the text, in rule declaration order with duplicates collapsed. The
// result is never empty: domain.CountryUnknown is the floor.
func (c *Classifier) ExtractCountries(text string) []string {
	if text == "" {
		return []string{domain.CountryUnknown}
	}

	lowered := strings.ToLower(text)
	seen := make(map[string]struct{}, len(c.countries))
	countries := make([]string, 0)

	for _, rule := range c.countries {
		if !strings.Contains(lowered, rule.Keyword) {
			continue
		}
		if _, dup := seen[rule.Country]; dup {
			continue
		}
		seen[rule.Country] = struct{}{}
		countries = append(countries, rule.Country)
	}

	if len(countries) == 0 {
		return []string{domain.CountryUnknown}
	}
	return countries
}
