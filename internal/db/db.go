package db

import (
	"context"
	"time"
)

// Cache is the key-value facade backing the embedding and suggestion caches.
type Cache interface {
	Pinger
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// DocumentStore is the job document store facade combining all sub-interfaces.
type DocumentStore interface {
	Pinger
	JobLookup
	SuggestionLookup
	EventLog
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// JobLookup provides the five independent retrieval capabilities over job postings.
// Every lookup returns at most limit rows.
type JobLookup interface {
	// MatchNormalized returns postings whose normalized title, company or location equals
	// text or starts with it. Exact matches sort first.
	MatchNormalized(ctx context.Context, text string, limit int) ([]JobRow, error)
	// FullText ranks postings with the weighted title > company > location > description index.
	FullText(ctx context.Context, text string, limit int) ([]JobRow, error)
	// Trigram returns postings whose best normalized-field trigram similarity is >= floor.
	Trigram(ctx context.Context, text string, floor float64, limit int) ([]JobRow, error)
	// Nearest runs approximate nearest-neighbor cosine search; Score is the cosine similarity.
	Nearest(ctx context.Context, vector []float32, limit int) ([]JobRow, error)
	// AnyToken returns postings where any token occurs in a normalized lookup field.
	AnyToken(ctx context.Context, tokens []string, limit int) ([]JobRow, error)
	// Recent returns the newest postings.
	Recent(ctx context.Context, limit int) ([]JobRow, error)
}

// SuggestionLookup provides distinct display values for autocomplete.
type SuggestionLookup interface {
	// DistinctValues returns distinct display values of column whose normalized form contains
	// text. An exact normalized match sorts first, the rest in lexical order.
	DistinctValues(ctx context.Context, column Column, text string, limit int) ([]string, error)
}

// EventLog persists search analytics.
type EventLog interface {
	InsertSearchEvent(ctx context.Context, ev *EventRow) error
	// AttachClick sets the click on the newest unclicked matching event and reports whether
	// one was found.
	AttachClick(ctx context.Context, c *ClickRow) (bool, error)
}
