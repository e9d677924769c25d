package search

import (
	"time"

	"github.com/kailas-cloud/jobsearch/internal/domain/search/layer"
)

// Defaults.
const (
	DefaultMinResults      = 10
	DefaultLayerLimit      = 100
	DefaultFuzzyFloor      = 0.3
	DefaultSemanticFloor   = 0.5
	DefaultSemanticTimeout = 2 * time.Second
	DefaultSnippetLength   = 160
)

// Limits caps the hits each layer may return per call.
type Limits struct {
	ExactPrefix int
	FullText    int
	Fuzzy       int
	Semantic    int
	BroadToken  int
	Recency     int
}

// For returns the cap of layer n; unset caps fall back to DefaultLayerLimit.
func (l Limits) For(n layer.Name) int {
	var v int
	switch n {
	case layer.ExactPrefix:
		v = l.ExactPrefix
	case layer.FullText:
		v = l.FullText
	case layer.Fuzzy:
		v = l.Fuzzy
	case layer.Semantic:
		v = l.Semantic
	case layer.BroadToken:
		v = l.BroadToken
	case layer.Recency:
		v = l.Recency
	}
	if v <= 0 {
		return DefaultLayerLimit
	}
	return v
}

// Config tunes the cascade, layers and scorer.
type Config struct {
	// MinResults is the accumulator size at which the cascade stops early.
	MinResults      int
	Limits          Limits
	FuzzyFloor      float64
	SemanticFloor   float64
	SemanticTimeout time.Duration
	Scoring         Scoring
	SnippetLength   int
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		MinResults: DefaultMinResults,
		Limits: Limits{
			ExactPrefix: DefaultLayerLimit,
			FullText:    DefaultLayerLimit,
			Fuzzy:       50,
			Semantic:    50,
			BroadToken:  DefaultLayerLimit,
			Recency:     DefaultLayerLimit,
		},
		FuzzyFloor:      DefaultFuzzyFloor,
		SemanticFloor:   DefaultSemanticFloor,
		SemanticTimeout: DefaultSemanticTimeout,
		Scoring:         DefaultScoring(),
		SnippetLength:   DefaultSnippetLength,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MinResults <= 0 {
		c.MinResults = d.MinResults
	}
	if c.FuzzyFloor <= 0 {
		c.FuzzyFloor = d.FuzzyFloor
	}
	if c.SemanticFloor <= 0 {
		c.SemanticFloor = d.SemanticFloor
	}
	if c.SemanticTimeout <= 0 {
		c.SemanticTimeout = d.SemanticTimeout
	}
	c.Scoring = c.Scoring.withDefaults(d.Scoring)
	if c.SnippetLength <= 0 {
		c.SnippetLength = d.SnippetLength
	}
	return c
}
