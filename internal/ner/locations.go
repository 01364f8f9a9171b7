package ner

import "strings"

// Default filtering thresholds for location entities.
const (
	// DefaultMinScore is the minimum extractor confidence to keep an entity.
	DefaultMinScore = 0.90
	// DefaultMinLength is the minimum surface text length to keep an entity.
	DefaultMinLength = 2
)

// FilterLocations reduces raw extractor output to a deduplicated list of
// place names. Entities are visited in arrival order; only entities
// labeled LabelLocation survive, and each case-insensitive surface form
// is kept once; the first accepted occurrence wins. Entities below
// minScore or shorter than minLength are skipped before dedup keys are
// recorded, so a later higher-confidence duplicate can still be accepted.
func FilterLocations(entities []Entity, minScore float64, minLength int) []Entity {
	seen := make(map[string]struct{}, len(entities))
	filtered := make([]Entity, 0, len(entities))

	for _, ent := range entities {
		if ent.Label != LabelLocation {
			continue
		}

		key := strings.ToLower(ent.Text)
		if _, dup := seen[key]; dup {
			continue
		}
		if ent.Score < minScore || len(ent.Text) < minLength {
			continue
		}

		seen[key] = struct{}{}
		filtered = append(filtered, ent)
	}

	return filtered
}

// LocationNames returns just the surface texts of the filtered entities.
func LocationNames(entities []Entity, minScore float64, minLength int) []string {
	filtered := FilterLocations(entities, minScore, minLength)
	names := make([]string, 0, len(filtered))
	for _, ent := range filtered {
		names = append(names, ent.Text)
	}
	return names
}
