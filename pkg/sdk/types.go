package jobsearch

import "time"

// DatePosted restricts results by posting age.
type DatePosted string

// Posting-age windows.
const (
	PostedAnytime   DatePosted = "all"
	PostedLastWeek  DatePosted = "7d"
	PostedLastMonth DatePosted = "30d"
)

// SearchOptions narrow and page a search. The zero value searches every layer,
// unfiltered, first page of 50.
type SearchOptions struct {
	Location   string
	RemoteOnly bool
	DatePosted DatePosted
	Page       int
	Limit      int
	// Basic skips the fuzzy, semantic and broad-token layers.
	Basic  bool
	UserID string
}

// Job is one ranked search hit.
type Job struct {
	ID              string
	Title           string
	Company         string
	Location        string
	PostedAt        time.Time
	Score           float64
	MatchCategories []string
	Snippet         string
	WhyMatched      string
}

// SearchResult is a page of ranked jobs plus diagnostics.
type SearchResult struct {
	Jobs            []Job
	Page            int
	Limit           int
	Total           int
	TotalPages      int
	NormalizedQuery string
	Tokens          []string
	LayersUsed      []string
	FallbackUsed    bool
	DidYouMean      string
	Elapsed         time.Duration
}

// SuggestType selects which suggestion lists are filled.
type SuggestType string

// Suggestion types.
const (
	SuggestAll       SuggestType = "all"
	SuggestTitles    SuggestType = "title"
	SuggestCompanies SuggestType = "company"
	SuggestLocations SuggestType = "location"
)

// Suggestions holds autocomplete values. Lists are never nil.
type Suggestions struct {
	Titles     []string
	Companies  []string
	Locations  []string
	DidYouMean string
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok", "degraded", "error"
	Checks map[string]string // component -> "ok"/"error"
}
