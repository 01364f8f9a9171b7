// Package config loads and validates the application configuration from
// a YAML file, environment variables, and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/Atlas-Final-Project/data-crawling/internal/classify"
	"github.com/Atlas-Final-Project/data-crawling/internal/logger"
	"github.com/Atlas-Final-Project/data-crawling/internal/ratelimit"
	"github.com/Atlas-Final-Project/data-crawling/internal/schedule"
	"github.com/Atlas-Final-Project/data-crawling/internal/sources"
	"github.com/Atlas-Final-Project/data-crawling/internal/storage"
)

// envPrefix namespaces environment overrides, e.g. CRAWLER_LOGGER_LEVEL.
const envPrefix = "CRAWLER"

// NER configures the entity-extraction sidecar.
type NER struct {
	// Endpoint is the base URL of the extraction service. Empty disables
	// location extraction; articles then carry empty location lists.
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
	// MinScore is the confidence floor for accepted entities.
	MinScore float64 `mapstructure:"min_score" yaml:"min_score"`
	// MinLength is the minimum entity text length.
	MinLength int `mapstructure:"min_length" yaml:"min_length"`
	// Timeout bounds each extraction request.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// API configures the HTTP read API.
type API struct {
	Address string `mapstructure:"address" yaml:"address"`
}

// Classification holds the keyword tables driving article classification.
// Order matters: earlier categories and country rules win ties.
type Classification struct {
	Categories       []classify.Category    `mapstructure:"categories" yaml:"categories"`
	Countries        []classify.CountryRule `mapstructure:"countries" yaml:"countries"`
	IncidentKeywords []string               `mapstructure:"incident_keywords" yaml:"incident_keywords"`
}

// Config is the complete application configuration.
type Config struct {
	Logger         logger.Config    `mapstructure:"logger" yaml:"logger"`
	Sources        []sources.Config `mapstructure:"sources" yaml:"sources"`
	Classification Classification   `mapstructure:"classification" yaml:"classification"`
	RateLimit      ratelimit.Config `mapstructure:"rate_limit" yaml:"rate_limit"`
	Scheduler      schedule.Config  `mapstructure:"scheduler" yaml:"scheduler"`
	Elasticsearch  storage.Config   `mapstructure:"elasticsearch" yaml:"elasticsearch"`
	NER            NER              `mapstructure:"ner" yaml:"ner"`
	API            API              `mapstructure:"api" yaml:"api"`
}

// Load reads the configuration. An empty path searches for config.yaml
// in the working directory and ./config. A missing file is not an
// error; defaults and environment variables still apply.
func Load(path string) (*Config, error) {
	// .env is optional; ignore a missing file.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvironmentVariables(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(cfg, decodeHook); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.SetDefaults()
	return cfg, nil
}

// bindEnvironmentVariables registers the scalar keys that may arrive
// via environment only. Unmarshal cannot see unbound env-only keys.
func bindEnvironmentVariables(v *viper.Viper) {
	keys := []string{
		"logger.level",
		"logger.encoding",
		"logger.development",
		"scheduler.period",
		"scheduler.skip_initial_run",
		"rate_limit.base_delay",
		"rate_limit.max_delay",
		"rate_limit.cooldown",
		"elasticsearch.addresses",
		"elasticsearch.username",
		"elasticsearch.password",
		"elasticsearch.api_key",
		"elasticsearch.index",
		"ner.endpoint",
		"ner.min_score",
		"ner.min_length",
		"ner.timeout",
		"api.address",
	}
	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// SetDefaults fills every zero-valued section with its defaults.
func (c *Config) SetDefaults() {
	c.RateLimit.SetDefaults()
	c.Scheduler.SetDefaults()
	c.Elasticsearch.SetDefaults()

	if len(c.Sources) == 0 {
		c.Sources = DefaultSources()
	}
	if len(c.Classification.Categories) == 0 {
		c.Classification.Categories = DefaultCategories()
	}
	if len(c.Classification.Countries) == 0 {
		c.Classification.Countries = DefaultCountryRules()
	}
	if len(c.Classification.IncidentKeywords) == 0 {
		c.Classification.IncidentKeywords = DefaultIncidentKeywords()
	}
	if c.NER.MinScore == 0 {
		c.NER.MinScore = 0.90
	}
	if c.NER.MinLength == 0 {
		c.NER.MinLength = 2
	}
	if c.NER.Timeout <= 0 {
		c.NER.Timeout = 30 * time.Second
	}
	if c.API.Address == "" {
		c.API.Address = ":8080"
	}
}

// Validate rejects configurations the pipeline cannot run with.
// Validation failures are fatal at startup, never at cycle time.
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return errors.New("at least one source is required")
	}

	seen := make(map[string]bool, len(c.Sources))
	for i := range c.Sources {
		if err := c.Sources[i].Validate(); err != nil {
			return fmt.Errorf("source %d: %w", i, err)
		}
		if seen[c.Sources[i].Name] {
			return fmt.Errorf("duplicate source name %q", c.Sources[i].Name)
		}
		seen[c.Sources[i].Name] = true
	}

	for i, cat := range c.Classification.Categories {
		if cat.Name == "" {
			return fmt.Errorf("category %d: name is required", i)
		}
		if len(cat.Keywords) == 0 {
			return fmt.Errorf("category %q: at least one keyword is required", cat.Name)
		}
	}
	for i, rule := range c.Classification.Countries {
		if rule.Keyword == "" || rule.Country == "" {
			return fmt.Errorf("country rule %d: keyword and country are required", i)
		}
	}

	if c.NER.MinScore < 0 || c.NER.MinScore > 1 {
		return fmt.Errorf("ner min_score %v outside [0, 1]", c.NER.MinScore)
	}
	return nil
}
