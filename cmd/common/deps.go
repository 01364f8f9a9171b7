// Package common wires the application components the subcommands share.
package common

import (
	"fmt"

	"github.com/Atlas-Final-Project/data-crawling/internal/api"
	"github.com/Atlas-Final-Project/data-crawling/internal/classify"
	"github.com/Atlas-Final-Project/data-crawling/internal/config"
	"github.com/Atlas-Final-Project/data-crawling/internal/ingest"
	"github.com/Atlas-Final-Project/data-crawling/internal/logger"
	"github.com/Atlas-Final-Project/data-crawling/internal/ner"
	"github.com/Atlas-Final-Project/data-crawling/internal/ratelimit"
	"github.com/Atlas-Final-Project/data-crawling/internal/sources"
	"github.com/Atlas-Final-Project/data-crawling/internal/storage"
)

// App holds the wired components a subcommand runs with.
type App struct {
	Config       *config.Config
	Logger       logger.Interface
	Store        *storage.ArticleStore
	Limiter      *ratelimit.Limiter
	Orchestrator *ingest.Orchestrator
	SourceNames  []string
}

// Build loads configuration and wires the full pipeline.
func Build(cfgPath string, debug bool) (*App, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if debug {
		cfg.Logger.Level = "debug"
		cfg.Logger.Development = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(&cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	esClient, err := storage.NewClient(&cfg.Elasticsearch, log)
	if err != nil {
		return nil, err
	}
	store := storage.NewArticleStore(esClient, cfg.Elasticsearch.Index, log)

	classifier := classify.New(
		cfg.Classification.Categories,
		cfg.Classification.Countries,
		cfg.Classification.IncidentKeywords,
	)

	var extractor ner.Extractor
	if cfg.NER.Endpoint != "" {
		extractor = ner.NewClient(cfg.NER.Endpoint, ner.WithTimeout(cfg.NER.Timeout))
	} else {
		log.Warn("no entity extraction endpoint configured, locations will be empty")
	}

	limiter := ratelimit.New(cfg.RateLimit)

	adapters := make([]ingest.SourceAdapter, 0, len(cfg.Sources))
	names := make([]string, 0, len(cfg.Sources))
	for _, srcCfg := range cfg.Sources {
		fetcher, err := sources.NewFetcher(srcCfg, log, limiter.Delay)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, sources.NewAdapter(sources.AdapterParams{
			Config:     srcCfg,
			Fetcher:    fetcher,
			Classifier: classifier,
			Extractor:  extractor,
			Logger:     log,
			MinScore:   cfg.NER.MinScore,
			MinLength:  cfg.NER.MinLength,
		}))
		names = append(names, srcCfg.Name)
	}

	orchestrator := ingest.New(ingest.Params{
		Adapters: adapters,
		Limiter:  limiter,
		Store:    store,
		Logger:   log,
	})

	return &App{
		Config:       cfg,
		Logger:       log,
		Store:        store,
		Limiter:      limiter,
		Orchestrator: orchestrator,
		SourceNames:  names,
	}, nil
}

// NewAPIServer builds the HTTP server over this app's components.
func (a *App) NewAPIServer(debug bool) *api.Server {
	return api.NewServer(api.Params{
		Address:     a.Config.API.Address,
		Store:       a.Store,
		Runner:      a.Orchestrator,
		Limiter:     a.Limiter,
		SourceNames: a.SourceNames,
		Logger:      a.Logger,
		Debug:       debug,
	})
}
