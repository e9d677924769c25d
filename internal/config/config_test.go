package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{URL: "postgres://localhost:5432/jobs"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingDatabaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.Database.URL = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database url")
	}
}

func TestValidate_FloorsOutOfRange(t *testing.T) {
	cfg := validConfig()
	cfg.Search.FuzzyFloor = 1.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for fuzzy_floor > 1")
	}

	cfg = validConfig()
	cfg.Search.SemanticFloor = 2
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for semantic_floor > 1")
	}
}

func TestValidate_SuggestLimits(t *testing.T) {
	cfg := validConfig()
	cfg.Suggest.DefaultLimit = 80

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error when default_limit exceeds max_limit")
	}
	expected := "suggest.default_limit (80) exceeds suggest.max_limit (50)"
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.MaxConns != 10 {
		t.Errorf("expected MaxConns=10, got %d", cfg.Database.MaxConns)
	}
	if cfg.Cache.KeyPrefix != "jobsearch:" {
		t.Errorf("expected KeyPrefix='jobsearch:', got %q", cfg.Cache.KeyPrefix)
	}
	if cfg.Cache.SuggestionTTLSec != 300 {
		t.Errorf("expected SuggestionTTLSec=300, got %d", cfg.Cache.SuggestionTTLSec)
	}
	if cfg.Search.MinResults != 10 {
		t.Errorf("expected MinResults=10, got %d", cfg.Search.MinResults)
	}
	if cfg.Search.LayerLimits.FullText != 100 || cfg.Search.LayerLimits.Fuzzy != 50 {
		t.Errorf("unexpected layer limits: %+v", cfg.Search.LayerLimits)
	}
	if cfg.Search.FuzzyFloor != 0.3 {
		t.Errorf("expected FuzzyFloor=0.3, got %g", cfg.Search.FuzzyFloor)
	}
	if cfg.Search.SemanticTimeout().Seconds() != 2 {
		t.Errorf("expected 2s semantic timeout, got %s", cfg.Search.SemanticTimeout())
	}
	if cfg.Search.Scoring.Exact != 1000 || cfg.Search.Scoring.Recency != 1 {
		t.Errorf("unexpected scoring defaults: %+v", cfg.Search.Scoring)
	}
	if cfg.Suggest.MinChars != 2 || cfg.Suggest.MaxLimit != 50 {
		t.Errorf("unexpected suggest defaults: %+v", cfg.Suggest)
	}
	if cfg.Analytics.Workers != 4 || cfg.Analytics.ClickWindowSec != 3600 {
		t.Errorf("unexpected analytics defaults: %+v", cfg.Analytics)
	}
	if !cfg.Analytics.IsEnabled() {
		t.Error("analytics should be enabled by default")
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:   HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Cache:  CacheConfig{KeyPrefix: "custom:"},
		Search: SearchConfig{MinResults: 25, Scoring: ScoringConfig{Exact: 2000, TextWeight: 1}},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Cache.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Cache.KeyPrefix)
	}
	if cfg.Search.MinResults != 25 {
		t.Errorf("expected MinResults=25, got %d", cfg.Search.MinResults)
	}
	sc := cfg.Search.Scoring
	if sc.Exact != 2000 || sc.TextWeight != 1 || sc.SemanticWeight != 0 {
		t.Errorf("explicit scoring must be kept as-is, got %+v", sc)
	}
	if sc.Prefix != 800 || sc.Recency != 1 {
		t.Errorf("unset point values must be defaulted, got %+v", sc)
	}
}

func TestParse_PartialScoringOverride(t *testing.T) {
	data := []byte(`
http:
  port: 8080
database:
  url: postgres://db/jobs
search:
  scoring:
    agreement_bonus: 75
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sc := cfg.Search.Scoring
	if sc.AgreementBonus != 75 {
		t.Errorf("expected AgreementBonus=75, got %g", sc.AgreementBonus)
	}
	if sc.Exact != 1000 || sc.Prefix != 800 || sc.Fuzzy != 800 || sc.BroadToken != 300 {
		t.Errorf("unset point values must keep their defaults, got %+v", sc)
	}
	if sc.TextWeight != 0.6 || sc.SemanticWeight != 0.4 {
		t.Errorf("unset weights must keep their defaults, got %g/%g", sc.TextWeight, sc.SemanticWeight)
	}
}

func TestValidate_Scoring(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ScoringConfig)
		want   string
	}{
		{"negative points", func(s *ScoringConfig) { s.Prefix = -5 }, "search.scoring.prefix must be positive"},
		{"negative weight", func(s *ScoringConfig) { s.SemanticWeight = -1 }, "must not be negative"},
		{"zero weights", func(s *ScoringConfig) { s.TextWeight, s.SemanticWeight = 0, 0 }, "must not both be zero"},
		{"recency above weakest match", func(s *ScoringConfig) { s.Recency = 10 }, "recency_score (10)"},
		{"text weight off", func(s *ScoringConfig) { s.TextWeight = 0 }, "recency_score (1)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg.Search.Scoring)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("JOBSEARCH_TEST_DB", "postgres://db:5432/jobs")
	data := []byte(`
http:
  port: ${JOBSEARCH_TEST_PORT:-9090}
database:
  url: ${JOBSEARCH_TEST_DB}
embedding:
  api_key: ${JOBSEARCH_TEST_MISSING}
  model: text-embedding-3-small
analytics:
  enabled: false
`)

	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected port 9090 from default, got %d", cfg.HTTP.Port)
	}
	if cfg.Database.URL != "postgres://db:5432/jobs" {
		t.Errorf("unexpected database url %q", cfg.Database.URL)
	}
	if cfg.Embedding.Enabled() {
		t.Error("embedding without api key must be disabled")
	}
	if cfg.Analytics.IsEnabled() {
		t.Error("analytics explicitly disabled")
	}
	if cfg.Cache.Enabled() {
		t.Error("cache without addrs must be disabled")
	}
}

func TestLoad_ConfigPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("http:\n  port: 8081\ndatabase:\n  url: postgres://x\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load("does-not-matter")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 8081 {
		t.Errorf("expected port 8081, got %d", cfg.HTTP.Port)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))
	if _, err := Load("local"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
