// Package storage persists articles to Elasticsearch, keyed by their
// identity fingerprint so repeated crawls upsert instead of duplicating.
package storage

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/Atlas-Final-Project/data-crawling/internal/logger"
)

const (
	// DefaultIndex is the article index name when the config leaves it blank.
	DefaultIndex = "articles"

	defaultMaxRetries = 3
	defaultTimeout    = 30 * time.Second
)

// Config holds the Elasticsearch connection settings.
type Config struct {
	Addresses []string `mapstructure:"addresses" yaml:"addresses"`
	Username  string   `mapstructure:"username" yaml:"username"`
	Password  string   `mapstructure:"password" yaml:"password"`
	APIKey    string   `mapstructure:"api_key" yaml:"api_key"`
	Index     string   `mapstructure:"index" yaml:"index"`
	// TLSInsecureSkipVerify disables certificate checks, for local
	// single-node clusters with self-signed certs.
	TLSInsecureSkipVerify bool `mapstructure:"tls_insecure_skip_verify" yaml:"tls_insecure_skip_verify"`
}

// SetDefaults fills zero values.
func (c *Config) SetDefaults() {
	if len(c.Addresses) == 0 {
		c.Addresses = []string{"http://localhost:9200"}
	}
	if c.Index == "" {
		c.Index = DefaultIndex
	}
}

// NewClient builds an Elasticsearch client from the config.
func NewClient(cfg *Config, log logger.Interface) (*es.Client, error) {
	cfg.SetDefaults()

	esCfg := es.Config{
		Addresses:  cfg.Addresses,
		Username:   cfg.Username,
		Password:   cfg.Password,
		APIKey:     cfg.APIKey,
		MaxRetries: defaultMaxRetries,
	}
	if cfg.TLSInsecureSkipVerify {
		esCfg.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // opt-in for local clusters
		}
	}

	client, err := es.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	log.Debug("elasticsearch client created", "addresses", cfg.Addresses, "index", cfg.Index)
	return client, nil
}
