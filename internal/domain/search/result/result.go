package result

import (
	"time"

	"github.com/kailas-cloud/jobsearch/internal/domain/search/layer"
)

// Result is a single ranked posting ready for display.
type Result struct {
	id              string
	title           string
	company         string
	location        string
	postedAt        time.Time
	score           float64
	matchCategories []string
	snippet         string
	whyMatched      string
}

// New creates a search result.
func New(
	id, title, company, location string, postedAt time.Time,
	score float64, matchCategories []string, snippet, whyMatched string,
) Result {
	return Result{
		id: id, title: title, company: company, location: location, postedAt: postedAt,
		score: score, matchCategories: matchCategories, snippet: snippet, whyMatched: whyMatched,
	}
}

// ID returns the posting identifier.
func (r *Result) ID() string { return r.id }

// Title returns the display title.
func (r *Result) Title() string { return r.title }

// Company returns the display company.
func (r *Result) Company() string { return r.company }

// Location returns the display location.
func (r *Result) Location() string { return r.location }

// PostedAt returns the posting timestamp.
func (r *Result) PostedAt() time.Time { return r.postedAt }

// Score returns the final relevance score.
func (r *Result) Score() float64 { return r.score }

// MatchCategories returns the matched fields followed by the matching layer names.
func (r *Result) MatchCategories() []string { return r.matchCategories }

// Snippet returns the description excerpt around the first matched term.
func (r *Result) Snippet() string { return r.snippet }

// WhyMatched returns a one-sentence explanation of the strongest match.
func (r *Result) WhyMatched() string { return r.whyMatched }

// State is the terminal state of the retrieval cascade.
type State string

// Terminal cascade states.
const (
	// Satisfied means enough candidates were found before every layer ran.
	Satisfied State = "satisfied"
	// Exhausted means every layer ran without reaching the minimum result count.
	Exhausted State = "exhausted"
)

// QueryType classifies the normalized query.
type QueryType string

// Query classifications.
const (
	QueryEmpty      QueryType = "empty"
	QuerySingleTerm QueryType = "single_term"
	QueryMultiTerm  QueryType = "multi_term"
)

// Pagination describes the page a result slice was cut from.
type Pagination struct {
	Page       int
	Limit      int
	Total      int
	TotalPages int
}

// QueryInfo echoes the query as received and as matched.
type QueryInfo struct {
	Original   string
	Normalized string
	Type       QueryType
	Tokens     []string
}

// LayerTiming is the wall time one layer took.
type LayerTiming struct {
	Layer    layer.Name
	Duration time.Duration
}

// Outcome is the full search response envelope.
type Outcome struct {
	Results         []Result
	Pagination      Pagination
	Query           QueryInfo
	LayersUsed      []layer.Name
	FallbackUsed    bool
	TotalCandidates int
	DidYouMean      string
	State           State
	LayerTimings    []LayerTiming
	Elapsed         time.Duration
}
