package analytics

import (
	"fmt"
	"time"
)

// SearchEvent is the append-only record of one search call. It is created once per
// search and updated at most once, when a click is attributed to it.
type SearchEvent struct {
	id              string
	query           string
	normalizedQuery string
	resultCount     int
	elapsed         time.Duration
	filters         map[string]any
	layersUsed      []string
	fallbackUsed    bool
	userID          string
	createdAt       time.Time
}

// NewSearchEvent validates and creates a SearchEvent.
func NewSearchEvent(
	id, query, normalizedQuery string,
	resultCount int, elapsed time.Duration,
	filters map[string]any, layersUsed []string, fallbackUsed bool,
	userID string, createdAt time.Time,
) (SearchEvent, error) {
	if id == "" {
		return SearchEvent{}, fmt.Errorf("event ID is required")
	}
	if resultCount < 0 {
		return SearchEvent{}, fmt.Errorf("result count must be non-negative")
	}
	if filters == nil {
		filters = map[string]any{}
	}
	return SearchEvent{
		id: id, query: query, normalizedQuery: normalizedQuery,
		resultCount: resultCount, elapsed: elapsed,
		filters: filters, layersUsed: layersUsed, fallbackUsed: fallbackUsed,
		userID: userID, createdAt: createdAt,
	}, nil
}

// ID returns the event identifier.
func (e *SearchEvent) ID() string { return e.id }

// Query returns the raw query text.
func (e *SearchEvent) Query() string { return e.query }

// NormalizedQuery returns the normalized query text; clicks are attributed by it.
func (e *SearchEvent) NormalizedQuery() string { return e.normalizedQuery }

// ResultCount returns the number of candidates before pagination.
func (e *SearchEvent) ResultCount() int { return e.resultCount }

// Elapsed returns the search wall time.
func (e *SearchEvent) Elapsed() time.Duration { return e.elapsed }

// Filters returns the active filters.
func (e *SearchEvent) Filters() map[string]any { return e.filters }

// LayersUsed returns the invoked layer names.
func (e *SearchEvent) LayersUsed() []string { return e.layersUsed }

// FallbackUsed reports whether a fallback layer ran.
func (e *SearchEvent) FallbackUsed() bool { return e.fallbackUsed }

// UserID returns the optional caller identity.
func (e *SearchEvent) UserID() string { return e.userID }

// CreatedAt returns the event timestamp.
func (e *SearchEvent) CreatedAt() time.Time { return e.createdAt }

// Click attributes a result selection to the most recent matching search.
type Click struct {
	NormalizedQuery string
	JobID           string
	UserID          string
	At              time.Time
	// Since is the oldest event creation time the click may attach to.
	Since time.Time
}
