package request

import (
	"fmt"

	"github.com/kailas-cloud/jobsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/jobsearch/internal/domain/search/mode"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed raw query length in bytes.
	MaxQueryLength = 1024
	DefaultPage    = 1
	DefaultLimit   = 50
	MaxLimit       = 100
)

// Request is a validated search query. It is constructed once per call and never mutated.
type Request struct {
	query   string
	mode    mode.Mode
	filters filter.Filters
	page    int
	limit   int
	userID  string
}

// New validates search parameters. Out-of-range pagination is clamped rather than rejected:
// page < 1 becomes 1, limit <= 0 becomes DefaultLimit and limit > MaxLimit becomes MaxLimit.
// An empty query is valid and resolves to the most recent postings.
func New(
	query string,
	m mode.Mode,
	filters filter.Filters,
	page, limit int,
	userID string,
) (Request, error) {
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if m == "" {
		m = mode.Enhanced
	}
	if !m.IsValid() {
		return Request{}, fmt.Errorf("invalid search mode: %q", m)
	}
	if page < 1 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Request{
		query:   query,
		mode:    m,
		filters: filters,
		page:    page,
		limit:   limit,
		userID:  userID,
	}, nil
}

// Query returns the raw query text.
func (r *Request) Query() string { return r.query }

// Mode returns the cascade mode.
func (r *Request) Mode() mode.Mode { return r.mode }

// Filters returns the structural post-filters.
func (r *Request) Filters() filter.Filters { return r.filters }

// Page returns the 1-based page number.
func (r *Request) Page() int { return r.page }

// Limit returns the page size.
func (r *Request) Limit() int { return r.limit }

// UserID returns the optional caller identity used for analytics.
func (r *Request) UserID() string { return r.userID }
