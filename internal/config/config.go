package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/jobsearch/internal/normalize"
)

// Config holds the job search service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Cache     CacheConfig     `yaml:"cache"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
	Suggest   SuggestConfig   `yaml:"suggest"`
	Synonyms  SynonymsConfig  `yaml:"synonyms"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int      `yaml:"port"`
	APIKeys         []string `yaml:"api_keys"` // empty disables auth on /search/*
	ReadTimeoutSec  int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec int      `yaml:"write_timeout_sec"`
	ShutdownSec     int      `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds the Postgres job store settings.
type DatabaseConfig struct {
	URL               string `yaml:"url"`
	MaxConns          int32  `yaml:"max_conns"`
	MinConns          int32  `yaml:"min_conns"`
	ConnectTimeoutSec int    `yaml:"connect_timeout_sec"`
	ReadinessTimeout  int    `yaml:"readiness_timeout_sec"`
}

// CacheConfig holds the Redis cache settings. Empty Addrs disables caching.
type CacheConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	KeyPrefix        string   `yaml:"key_prefix"`
	SuggestionTTLSec int      `yaml:"suggestion_ttl_sec"`
	EmbeddingTTLSec  int      `yaml:"embedding_ttl_sec"`
}

// Enabled reports whether a cache is configured.
func (c CacheConfig) Enabled() bool { return len(c.Addrs) > 0 }

// EmbeddingConfig holds the query embedding provider settings. An empty APIKey disables
// the semantic layer.
type EmbeddingConfig struct {
	Provider         string `yaml:"provider"`
	APIKey           string `yaml:"api_key"`
	BaseURL          string `yaml:"base_url"`
	Model            string `yaml:"model"`
	Dimensions       int    `yaml:"dimensions"`
	QueryInstruction string `yaml:"query_instruction"`
	Cache            bool   `yaml:"cache"`
}

// Enabled reports whether query embeddings can be produced.
func (c EmbeddingConfig) Enabled() bool { return c.APIKey != "" && c.Model != "" }

// SearchConfig tunes the cascade.
type SearchConfig struct {
	MinResults        int           `yaml:"min_results"`
	LayerLimits       LayerLimits   `yaml:"layer_limits"`
	FuzzyFloor        float64       `yaml:"fuzzy_floor"`
	SemanticFloor     float64       `yaml:"semantic_floor"`
	SemanticTimeoutMS int           `yaml:"semantic_timeout_ms"`
	SnippetLength     int           `yaml:"snippet_length"`
	Scoring           ScoringConfig `yaml:"scoring"`
}

// LayerLimits caps the hits each retrieval layer returns per call.
type LayerLimits struct {
	ExactPrefix int `yaml:"exact_prefix"`
	FullText    int `yaml:"full_text"`
	Fuzzy       int `yaml:"fuzzy"`
	Semantic    int `yaml:"semantic"`
	BroadToken  int `yaml:"broad_token"`
	Recency     int `yaml:"recency"`
}

// ScoringConfig holds the hybrid scorer point values and weights.
type ScoringConfig struct {
	Exact            float64 `yaml:"exact"`
	Prefix           float64 `yaml:"prefix"`
	FullTextContains float64 `yaml:"full_text_contains"`
	FullTextAllWords float64 `yaml:"full_text_all_words"`
	FullTextRank     float64 `yaml:"full_text_rank"`
	Fuzzy            float64 `yaml:"fuzzy"`
	BroadToken       float64 `yaml:"broad_token"`
	Semantic         float64 `yaml:"semantic"`
	TextWeight       float64 `yaml:"text_weight"`
	SemanticWeight   float64 `yaml:"semantic_weight"`
	AgreementBonus   float64 `yaml:"agreement_bonus"`
	Recency          float64 `yaml:"recency_score"`
}

// SuggestConfig tunes the suggestion engine.
type SuggestConfig struct {
	MinChars     int `yaml:"min_chars"`
	DefaultLimit int `yaml:"default_limit"`
	MaxLimit     int `yaml:"max_limit"`
}

// SynonymsConfig points at an optional YAML synonym file merged over the built-in table.
type SynonymsConfig struct {
	Path string `yaml:"path"`
}

// AnalyticsConfig tunes the search event recorder.
type AnalyticsConfig struct {
	Enabled         *bool `yaml:"enabled"` // default true
	Workers         int   `yaml:"workers"`
	ClickWindowSec  int   `yaml:"click_window_sec"`
	WriteTimeoutSec int   `yaml:"write_timeout_sec"`
}

// IsEnabled reports whether search events are recorded.
func (c AnalyticsConfig) IsEnabled() bool { return c.Enabled == nil || *c.Enabled }

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// CONFIG_PATH overrides the lookup.
func Load(env string) (Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = findConfigPath(env)
	}

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse expands ${VAR} references in data, decodes it, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.MaxConns <= 0 {
		c.Database.MaxConns = 10
	}
	if c.Database.ConnectTimeoutSec <= 0 {
		c.Database.ConnectTimeoutSec = 5
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "jobsearch:"
	}
	if c.Cache.SuggestionTTLSec <= 0 {
		c.Cache.SuggestionTTLSec = 300
	}
	if c.Cache.EmbeddingTTLSec <= 0 {
		c.Cache.EmbeddingTTLSec = 7 * 24 * 3600
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	c.Search.applyDefaults()
	if c.Suggest.MinChars <= 0 {
		c.Suggest.MinChars = 2
	}
	if c.Suggest.DefaultLimit <= 0 {
		c.Suggest.DefaultLimit = 10
	}
	if c.Suggest.MaxLimit <= 0 {
		c.Suggest.MaxLimit = 50
	}
	if c.Analytics.Workers <= 0 {
		c.Analytics.Workers = 4
	}
	if c.Analytics.ClickWindowSec <= 0 {
		c.Analytics.ClickWindowSec = 3600
	}
	if c.Analytics.WriteTimeoutSec <= 0 {
		c.Analytics.WriteTimeoutSec = 2
	}
}

func (s *SearchConfig) applyDefaults() {
	if s.MinResults <= 0 {
		s.MinResults = 10
	}
	l := &s.LayerLimits
	for _, v := range []*int{&l.ExactPrefix, &l.FullText, &l.BroadToken, &l.Recency} {
		if *v <= 0 {
			*v = 100
		}
	}
	for _, v := range []*int{&l.Fuzzy, &l.Semantic} {
		if *v <= 0 {
			*v = 50
		}
	}
	if s.FuzzyFloor <= 0 {
		s.FuzzyFloor = 0.3
	}
	if s.SemanticFloor <= 0 {
		s.SemanticFloor = 0.5
	}
	if s.SemanticTimeoutMS <= 0 {
		s.SemanticTimeoutMS = 2000
	}
	if s.SnippetLength <= 0 {
		s.SnippetLength = 160
	}
	s.Scoring.applyDefaults()
}

// applyDefaults fills each unset point value on its own. The two weights default as a
// pair: setting either one keeps the other as written.
func (s *ScoringConfig) applyDefaults() {
	for _, f := range []struct {
		v   *float64
		def float64
	}{
		{&s.Exact, 1000},
		{&s.Prefix, 800},
		{&s.FullTextContains, 600},
		{&s.FullTextAllWords, 400},
		{&s.FullTextRank, 100},
		{&s.Fuzzy, 800},
		{&s.BroadToken, 300},
		{&s.Semantic, 1000},
		{&s.AgreementBonus, 50},
		{&s.Recency, 1},
	} {
		if *f.v == 0 {
			*f.v = f.def
		}
	}
	if s.TextWeight == 0 && s.SemanticWeight == 0 {
		s.TextWeight, s.SemanticWeight = 0.6, 0.4
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Database.URL == "" {
		return fmt.Errorf("database.url is required")
	}
	if c.Search.FuzzyFloor > 1 {
		return fmt.Errorf("search.fuzzy_floor must be in (0, 1], got %g", c.Search.FuzzyFloor)
	}
	if c.Search.SemanticFloor > 1 {
		return fmt.Errorf("search.semantic_floor must be in (0, 1], got %g", c.Search.SemanticFloor)
	}
	if err := c.Search.validateScoring(); err != nil {
		return err
	}
	if c.Suggest.DefaultLimit > c.Suggest.MaxLimit {
		return fmt.Errorf("suggest.default_limit (%d) exceeds suggest.max_limit (%d)",
			c.Suggest.DefaultLimit, c.Suggest.MaxLimit)
	}
	if c.Embedding.Enabled() && c.Embedding.Dimensions < 0 {
		return fmt.Errorf("embedding.dimensions must not be negative, got %d", c.Embedding.Dimensions)
	}
	return nil
}

func (s *SearchConfig) validateScoring() error {
	sc := &s.Scoring
	for _, p := range []struct {
		name string
		v    float64
	}{
		{"exact", sc.Exact},
		{"prefix", sc.Prefix},
		{"full_text_contains", sc.FullTextContains},
		{"full_text_all_words", sc.FullTextAllWords},
		{"full_text_rank", sc.FullTextRank},
		{"fuzzy", sc.Fuzzy},
		{"broad_token", sc.BroadToken},
		{"semantic", sc.Semantic},
		{"recency_score", sc.Recency},
	} {
		if p.v <= 0 {
			return fmt.Errorf("search.scoring.%s must be positive, got %g", p.name, p.v)
		}
	}
	if sc.TextWeight < 0 || sc.SemanticWeight < 0 || sc.AgreementBonus < 0 {
		return fmt.Errorf("search.scoring weights and agreement_bonus must not be negative")
	}
	if sc.TextWeight+sc.SemanticWeight <= 0 {
		return fmt.Errorf("search.scoring weights must not both be zero")
	}
	if weakest := s.weakestMatchScore(); sc.Recency >= weakest {
		return fmt.Errorf("search.scoring.recency_score (%g) must be below the weakest match score (%g)",
			sc.Recency, weakest)
	}
	return nil
}

// weakestMatchScore is the lowest score a posting matched by any query layer can get.
func (s *SearchConfig) weakestMatchScore() float64 {
	sc := &s.Scoring
	weakest := sc.TextWeight * min(
		sc.Exact, sc.Prefix, sc.FullTextContains, sc.FullTextAllWords,
		sc.Fuzzy*s.FuzzyFloor,
		sc.BroadToken/normalize.MaxTokens,
	)
	if sc.SemanticWeight > 0 {
		weakest = min(weakest, sc.SemanticWeight*sc.Semantic*s.SemanticFloor)
	}
	return weakest
}

// SemanticTimeout returns the semantic layer deadline.
func (s SearchConfig) SemanticTimeout() time.Duration {
	return time.Duration(s.SemanticTimeoutMS) * time.Millisecond
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
