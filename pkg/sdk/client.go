package jobsearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jobsearch/internal/db/postgres"
	dbRedis "github.com/kailas-cloud/jobsearch/internal/db/redis"
	"github.com/kailas-cloud/jobsearch/internal/domain"
	"github.com/kailas-cloud/jobsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/jobsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/jobsearch/internal/domain/search/request"
	"github.com/kailas-cloud/jobsearch/internal/domain/search/result"
	"github.com/kailas-cloud/jobsearch/internal/domain/suggestion"
	"github.com/kailas-cloud/jobsearch/internal/metrics"
	"github.com/kailas-cloud/jobsearch/internal/normalize"
	"github.com/kailas-cloud/jobsearch/internal/repository/embcache"
	jobrepo "github.com/kailas-cloud/jobsearch/internal/repository/job"
	"github.com/kailas-cloud/jobsearch/internal/repository/suggestcache"
	embeddinguc "github.com/kailas-cloud/jobsearch/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/jobsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/jobsearch/internal/usecase/search"
	suggestuc "github.com/kailas-cloud/jobsearch/internal/usecase/suggest"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultCacheTTL         = 5 * time.Minute
)

type searchUseCase interface {
	Search(ctx context.Context, req *request.Request) (result.Outcome, error)
}

type suggestUseCase interface {
	Suggest(ctx context.Context, query string, category suggestion.Category, limit int) (suggestion.Suggestions, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the jobsearch SDK entry point. It is safe for concurrent use.
type Client struct {
	searchSvc  searchUseCase
	suggestSvc suggestUseCase
	healthSvc  healthUseCase
	obs        *observer
	closers    []func()
}

// New connects to the job store and wires the search engine.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		readyTimeout: defaultReadinessTimeout,
		cacheTTL:     defaultCacheTTL,
	}
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.databaseURL == "" {
		return nil, errors.New("jobsearch: database url required (use WithPostgres)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := postgres.NewStore(ctx, postgres.Config{URL: cfg.databaseURL, MaxConns: cfg.maxConns})
	if err != nil {
		return nil, fmt.Errorf("jobsearch: create job store: %w", err)
	}
	if err := store.WaitForReady(ctx, cfg.readyTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("jobsearch: job store not ready: %w", err)
	}

	c := &Client{obs: obs, closers: []func(){store.Close}}

	var cache *dbRedis.Store
	if len(cfg.cacheAddrs) > 0 {
		cache, err = dbRedis.NewStore(dbRedis.Config{Addrs: cfg.cacheAddrs, Password: cfg.cachePassword})
		if err != nil {
			obs.info("cache unavailable, continuing without it", "error", err)
			cache = nil
		} else {
			c.closers = append(c.closers, cache.Close)
		}
	}

	c.wire(store, cache, cfg)
	obs.info("jobsearch client ready", "cache", cache != nil, "semantic", cfg.embedder != nil)
	return c, nil
}

// wire assembles the services. Disabled collaborators stay nil interfaces.
func (c *Client) wire(store *postgres.Store, cache *dbRedis.Store, cfg *clientConfig) {
	logger := zap.NewNop()

	synonyms := normalize.DefaultSynonyms()
	if len(cfg.synonyms) > 0 {
		synonyms = synonyms.Merge(normalize.Table(cfg.synonyms))
	}
	normalizer := normalize.New(synonyms)
	jobs := jobrepo.New(store)

	var embed searchuc.Embedder
	if cfg.embedder != nil {
		var e domain.Embedder = &embedderAdapter{inner: cfg.embedder}
		if cache != nil {
			e = embcache.New(e, cache, embcache.Options{
				Model:      "sdk",
				Dimensions: cfg.dimensions,
				TTL:        cfg.cacheTTL,
			}, metrics.EmbeddingCacheTotal, logger)
		}
		embed = embeddinguc.NewInstrumentedEmbedder(e, "sdk", "", cfg.dimensions, logger)
	}

	searchCfg := searchuc.DefaultConfig()
	if cfg.minResults > 0 {
		searchCfg.MinResults = cfg.minResults
	}
	c.searchSvc = searchuc.New(jobs, embed, normalizer, nil, searchCfg)

	var sugCache suggestuc.Cache
	var cachePinger healthuc.Pinger
	if cache != nil {
		sugCache = suggestcache.New(cache, cfg.cacheTTL)
		cachePinger = cache
	}
	c.suggestSvc = suggestuc.New(jobs, sugCache, normalizer, suggestuc.Config{}, logger)
	c.healthSvc = healthuc.New(store, cachePinger, nil)
}

// Close releases all resources.
func (c *Client) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// Search runs the retrieval cascade for query. An empty query returns the most recent postings.
func (c *Client) Search(ctx context.Context, query string, opts SearchOptions) (res SearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err, "results", len(res.Jobs)) }()

	req, err := buildRequest(query, opts)
	if err != nil {
		return SearchResult{}, err
	}
	out, err := c.searchSvc.Search(ctx, &req)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search: %w", err)
	}
	return searchResultFrom(&out), nil
}

// Suggest returns autocomplete values for a partial query. Queries shorter than the
// minimum length return empty lists.
func (c *Client) Suggest(ctx context.Context, query string, t SuggestType, limit int) (s Suggestions, err error) {
	start := time.Now()
	defer func() { c.obs.observe("suggest", start, err) }()

	category, err := suggestion.ParseCategory(string(t))
	if err != nil {
		return Suggestions{}, err
	}
	out, err := c.suggestSvc.Suggest(ctx, query, category, limit)
	if err != nil {
		return Suggestions{}, fmt.Errorf("suggest: %w", err)
	}
	return Suggestions{
		Titles:     out.Titles,
		Companies:  out.Companies,
		Locations:  out.Locations,
		DidYouMean: out.DidYouMean,
	}, nil
}

// Health checks the health of all system components.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}

func buildRequest(query string, opts SearchOptions) (request.Request, error) {
	date, err := filter.ParseDatePosted(string(opts.DatePosted))
	if err != nil {
		return request.Request{}, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	m := mode.Enhanced
	if opts.Basic {
		m = mode.Basic
	}
	req, err := request.New(
		query, m,
		filter.New(opts.Location, opts.RemoteOnly, date),
		opts.Page, opts.Limit, opts.UserID,
	)
	if err != nil {
		return request.Request{}, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	return req, nil
}

func searchResultFrom(out *result.Outcome) SearchResult {
	jobs := make([]Job, 0, len(out.Results))
	for i := range out.Results {
		r := &out.Results[i]
		jobs = append(jobs, Job{
			ID:              r.ID(),
			Title:           r.Title(),
			Company:         r.Company(),
			Location:        r.Location(),
			PostedAt:        r.PostedAt(),
			Score:           r.Score(),
			MatchCategories: r.MatchCategories(),
			Snippet:         r.Snippet(),
			WhyMatched:      r.WhyMatched(),
		})
	}
	layers := make([]string, 0, len(out.LayersUsed))
	for _, l := range out.LayersUsed {
		layers = append(layers, string(l))
	}
	return SearchResult{
		Jobs:            jobs,
		Page:            out.Pagination.Page,
		Limit:           out.Pagination.Limit,
		Total:           out.Pagination.Total,
		TotalPages:      out.Pagination.TotalPages,
		NormalizedQuery: out.Query.Normalized,
		Tokens:          out.Query.Tokens,
		LayersUsed:      layers,
		FallbackUsed:    out.FallbackUsed,
		DidYouMean:      out.DidYouMean,
		Elapsed:         out.Elapsed,
	}
}
