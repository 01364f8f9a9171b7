package config

import (
	"github.com/Atlas-Final-Project/data-crawling/internal/classify"
	"github.com/Atlas-Final-Project/data-crawling/internal/sources"
)

// DefaultSources returns the built-in source set: two RSS feeds and one
// HTML listing scrape.
func DefaultSources() []sources.Config {
	return []sources.Config{
		{
			Name:     "BBC News",
			Kind:     sources.KindRSS,
			FeedURLs: []string{"https://feeds.bbci.co.uk/news/world/rss.xml"},
		},
		{
			Name:     "Fox News",
			Kind:     sources.KindRSS,
			FeedURLs: []string{"https://moxie.foxnews.com/google-publisher/world.xml"},
		},
		{
			Name:        "AP News",
			Kind:        sources.KindHTML,
			BaseURL:     "https://apnews.com/world-news",
			LinkPattern: `/article/`,
		},
	}
}

// DefaultCategories returns the built-in category keyword tables.
// Declaration order breaks score ties, so broader categories go last.
func DefaultCategories() []classify.Category {
	return []classify.Category{
		{Name: "Conflict", Keywords: []string{
			"war", "military", "missile", "airstrike", "invasion", "troops",
			"ceasefire", "drone", "shelling", "armed",
		}},
		{Name: "Disaster", Keywords: []string{
			"earthquake", "flood", "hurricane", "wildfire", "storm", "tsunami",
			"landslide", "eruption", "drought", "typhoon",
		}},
		{Name: "Crime", Keywords: []string{
			"murder", "shooting", "robbery", "kidnapping", "arrested", "assault",
			"fraud", "smuggling", "trafficking",
		}},
		{Name: "Politics", Keywords: []string{
			"election", "parliament", "president", "minister", "government",
			"senate", "vote", "policy", "sanctions", "summit",
		}},
		{Name: "Economy", Keywords: []string{
			"economy", "inflation", "market", "stocks", "trade", "tariff",
			"unemployment", "recession", "currency",
		}},
		{Name: "Health", Keywords: []string{
			"outbreak", "virus", "vaccine", "hospital", "disease", "pandemic",
			"epidemic", "infection",
		}},
	}
}

// DefaultCountryRules returns the built-in keyword-to-country table.
// Declaration order fixes the order of extracted countries.
func DefaultCountryRules() []classify.CountryRule {
	return []classify.CountryRule{
		{Keyword: "ukraine", Country: "Ukraine"},
		{Keyword: "ukrainian", Country: "Ukraine"},
		{Keyword: "russia", Country: "Russia"},
		{Keyword: "russian", Country: "Russia"},
		{Keyword: "united states", Country: "United States"},
		{Keyword: "washington", Country: "United States"},
		{Keyword: "america", Country: "United States"},
		{Keyword: "china", Country: "China"},
		{Keyword: "chinese", Country: "China"},
		{Keyword: "beijing", Country: "China"},
		{Keyword: "israel", Country: "Israel"},
		{Keyword: "israeli", Country: "Israel"},
		{Keyword: "gaza", Country: "Palestine"},
		{Keyword: "palestinian", Country: "Palestine"},
		{Keyword: "iran", Country: "Iran"},
		{Keyword: "iranian", Country: "Iran"},
		{Keyword: "north korea", Country: "North Korea"},
		{Keyword: "south korea", Country: "South Korea"},
		{Keyword: "japan", Country: "Japan"},
		{Keyword: "japanese", Country: "Japan"},
		{Keyword: "india", Country: "India"},
		{Keyword: "pakistan", Country: "Pakistan"},
		{Keyword: "united kingdom", Country: "United Kingdom"},
		{Keyword: "britain", Country: "United Kingdom"},
		{Keyword: "british", Country: "United Kingdom"},
		{Keyword: "london", Country: "United Kingdom"},
		{Keyword: "france", Country: "France"},
		{Keyword: "french", Country: "France"},
		{Keyword: "germany", Country: "Germany"},
		{Keyword: "german", Country: "Germany"},
		{Keyword: "turkey", Country: "Turkey"},
		{Keyword: "syria", Country: "Syria"},
		{Keyword: "mexico", Country: "Mexico"},
		{Keyword: "canada", Country: "Canada"},
		{Keyword: "australia", Country: "Australia"},
		{Keyword: "brazil", Country: "Brazil"},
		{Keyword: "egypt", Country: "Egypt"},
		{Keyword: "nigeria", Country: "Nigeria"},
		{Keyword: "south africa", Country: "South Africa"},
	}
}

// DefaultIncidentKeywords returns the built-in incident trigger list.
func DefaultIncidentKeywords() []string {
	return []string{
		"attack", "killed", "murder", "shooting", "explosion", "crash",
		"disaster", "terror", "riot", "violence", "accident", "earthquake",
		"fire", "storm", "protest", "assault", "hurricane", "drowning",
		"death", "injured",
	}
}
