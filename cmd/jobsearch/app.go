package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jobsearch/internal/config"
	"github.com/kailas-cloud/jobsearch/internal/db/postgres"
	dbRedis "github.com/kailas-cloud/jobsearch/internal/db/redis"
	"github.com/kailas-cloud/jobsearch/internal/domain"
	logpkg "github.com/kailas-cloud/jobsearch/internal/logger"
	"github.com/kailas-cloud/jobsearch/internal/metrics"
	"github.com/kailas-cloud/jobsearch/internal/normalize"
	"github.com/kailas-cloud/jobsearch/internal/repository/embcache"
	eventrepo "github.com/kailas-cloud/jobsearch/internal/repository/event"
	jobrepo "github.com/kailas-cloud/jobsearch/internal/repository/job"
	"github.com/kailas-cloud/jobsearch/internal/repository/suggestcache"
	openaiEmb "github.com/kailas-cloud/jobsearch/internal/transport/openai"
	analyticsuc "github.com/kailas-cloud/jobsearch/internal/usecase/analytics"
	embeddinguc "github.com/kailas-cloud/jobsearch/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/jobsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/jobsearch/internal/usecase/search"
	suggestuc "github.com/kailas-cloud/jobsearch/internal/usecase/suggest"
)

// app is the composition root shared by the subcommands.
type app struct {
	env       string
	cfg       config.Config
	logger    *zap.Logger
	store     *postgres.Store
	cache     *dbRedis.Store
	embedder  domain.Embedder
	analytics *analyticsuc.Service
	search    *searchuc.Service
	suggest   *suggestuc.Service
	health    *healthuc.Service
}

type appOptions struct {
	// withAnalytics starts the search event recorder (serve only).
	withAnalytics bool
}

func loadApp(ctx context.Context, opts appOptions) (*app, error) {
	env := envFlag
	if env == "" {
		env = config.GetEnv()
	}

	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	a := &app{env: env, cfg: cfg, logger: logger}

	a.store, err = postgres.NewStore(ctx, postgres.Config{
		URL:            cfg.Database.URL,
		MaxConns:       cfg.Database.MaxConns,
		MinConns:       cfg.Database.MinConns,
		ConnectTimeout: time.Duration(cfg.Database.ConnectTimeoutSec) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("create job store: %w", err)
	}
	if err := a.store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		a.close()
		return nil, fmt.Errorf("job store not ready: %w", err)
	}
	logger.Info("Connected to job store")

	if cfg.Cache.Enabled() {
		a.cache, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:     cfg.Cache.Addrs,
			Password:  cfg.Cache.Password,
			KeyPrefix: cfg.Cache.KeyPrefix,
		})
		if err != nil {
			// The cache only saves work; run without it.
			logger.Warn("Cache unavailable, continuing without it", zap.Error(err))
			a.cache = nil
		}
	}

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	a.embedder = a.buildEmbedder()
	if err := a.buildServices(opts); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

// buildEmbedder assembles the query embedder chain:
// OpenAI -> Cached -> Instrumented -> Instruction. Returns nil when embeddings are disabled.
func (a *app) buildEmbedder() domain.Embedder {
	ec := a.cfg.Embedding
	if !ec.Enabled() {
		a.logger.Info("Embedding provider not configured, semantic layer disabled")
		return nil
	}

	var embedder domain.Embedder = openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     ec.APIKey,
		BaseURL:    ec.BaseURL,
		Model:      ec.Model,
		Dimensions: ec.Dimensions,
		Provider:   ec.Provider,
		Logger:     a.logger,
	})

	if ec.Cache && a.cache != nil {
		embedder = embcache.New(embedder, a.cache, embcache.Options{
			Model:      ec.Model + "|" + ec.QueryInstruction,
			Dimensions: ec.Dimensions,
			TTL:        time.Duration(a.cfg.Cache.EmbeddingTTLSec) * time.Second,
		}, metrics.EmbeddingCacheTotal, a.logger)
	}

	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, ec.Provider, ec.Model, ec.Dimensions, a.logger)

	if ec.QueryInstruction != "" {
		embedder = domain.NewInstructionEmbedder(embedder, ec.QueryInstruction)
	}

	a.logger.Info("Embedder created",
		zap.String("provider", ec.Provider),
		zap.String("model", ec.Model),
		zap.Int("dimensions", ec.Dimensions),
		zap.Bool("cached", ec.Cache && a.cache != nil),
	)
	return embedder
}

func (a *app) buildServices(opts appOptions) error {
	synonyms := normalize.DefaultSynonyms()
	if path := a.cfg.Synonyms.Path; path != "" {
		loaded, err := normalize.LoadSynonyms(path, synonyms)
		if err != nil {
			return fmt.Errorf("load synonyms: %w", err)
		}
		synonyms = loaded
	}
	normalizer := normalize.New(synonyms)

	jobs := jobrepo.New(a.store)

	// Nil interfaces, not typed nil pointers, when a collaborator is disabled.
	var recorder searchuc.Recorder
	if opts.withAnalytics && a.cfg.Analytics.IsEnabled() {
		svc, err := analyticsuc.New(eventrepo.New(a.store), normalizer, analyticsuc.Config{
			Workers:      a.cfg.Analytics.Workers,
			ClickWindow:  time.Duration(a.cfg.Analytics.ClickWindowSec) * time.Second,
			WriteTimeout: time.Duration(a.cfg.Analytics.WriteTimeoutSec) * time.Second,
		}, a.logger)
		if err != nil {
			return fmt.Errorf("create analytics: %w", err)
		}
		a.analytics = svc
		recorder = svc
	}
	var embed searchuc.Embedder
	if a.embedder != nil {
		embed = a.embedder
	}

	a.search = searchuc.New(jobs, embed, normalizer, recorder, searchConfig(a.cfg.Search))

	var sugCache suggestuc.Cache
	if a.cache != nil {
		sugCache = suggestcache.New(a.cache, time.Duration(a.cfg.Cache.SuggestionTTLSec)*time.Second)
	}
	a.suggest = suggestuc.New(jobs, sugCache, normalizer, suggestuc.Config{
		MinChars:     a.cfg.Suggest.MinChars,
		DefaultLimit: a.cfg.Suggest.DefaultLimit,
		MaxLimit:     a.cfg.Suggest.MaxLimit,
		FuzzyFloor:   a.cfg.Search.FuzzyFloor,
	}, a.logger)

	var cachePinger healthuc.Pinger
	if a.cache != nil {
		cachePinger = a.cache
	}
	var embChecker healthuc.EmbeddingChecker
	if hc, ok := a.embedder.(domain.HealthChecker); ok {
		embChecker = hc
	}
	a.health = healthuc.New(a.store, cachePinger, embChecker)
	return nil
}

func searchConfig(c config.SearchConfig) searchuc.Config {
	l, s := c.LayerLimits, c.Scoring
	return searchuc.Config{
		MinResults: c.MinResults,
		Limits: searchuc.Limits{
			ExactPrefix: l.ExactPrefix,
			FullText:    l.FullText,
			Fuzzy:       l.Fuzzy,
			Semantic:    l.Semantic,
			BroadToken:  l.BroadToken,
			Recency:     l.Recency,
		},
		FuzzyFloor:      c.FuzzyFloor,
		SemanticFloor:   c.SemanticFloor,
		SemanticTimeout: c.SemanticTimeout(),
		SnippetLength:   c.SnippetLength,
		Scoring: searchuc.Scoring{
			Exact:            s.Exact,
			Prefix:           s.Prefix,
			FullTextContains: s.FullTextContains,
			FullTextAllWords: s.FullTextAllWords,
			FullTextRank:     s.FullTextRank,
			Fuzzy:            s.Fuzzy,
			BroadToken:       s.BroadToken,
			Semantic:         s.Semantic,
			TextWeight:       s.TextWeight,
			SemanticWeight:   s.SemanticWeight,
			AgreementBonus:   s.AgreementBonus,
			Recency:          s.Recency,
		},
	}
}

func (a *app) close() {
	if a.analytics != nil {
		if err := a.analytics.Close(time.Duration(a.cfg.Analytics.WriteTimeoutSec) * time.Second); err != nil {
			a.logger.Warn("Analytics writes still pending at shutdown", zap.Error(err))
		}
	}
	if a.cache != nil {
		a.cache.Close()
	}
	if a.store != nil {
		a.store.Close()
	}
	_ = a.logger.Sync()
}
