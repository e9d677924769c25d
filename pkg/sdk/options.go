package jobsearch

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	databaseURL string
	maxConns    int32

	cacheAddrs    []string
	cachePassword string
	cacheTTL      time.Duration

	embedder   Embedder
	dimensions int

	synonyms     map[string][]string
	minResults   int
	readyTimeout time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithPostgres sets the job store connection URL. Required.
func WithPostgres(url string) Option {
	return optionFunc(func(c *clientConfig) {
		c.databaseURL = url
	})
}

// WithMaxConns caps the Postgres connection pool.
func WithMaxConns(n int32) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxConns = n
	})
}

// WithRedis enables the suggestion and query embedding caches.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheAddrs = []string{addr}
		c.cachePassword = password
	})
}

// WithCacheTTL sets how long cached suggestions and embeddings live.
// Default: 5 minutes.
func WithCacheTTL(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheTTL = ttl
	})
}

// WithEmbedder enables the semantic layer. dimensions must match the stored vectors;
// zero skips the size check.
func WithEmbedder(e Embedder, dimensions int) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
		c.dimensions = dimensions
	})
}

// WithSynonyms merges extra synonym entries over the built-in table.
func WithSynonyms(table map[string][]string) Option {
	return optionFunc(func(c *clientConfig) {
		c.synonyms = table
	})
}

// WithMinResults sets how many candidates satisfy the cascade early. Default: 10.
func WithMinResults(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.minResults = n
	})
}

// WithReadinessTimeout bounds the initial wait for the database. Default: 10s.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readyTimeout = d
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default).
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
