package chi

import (
	"time"

	"github.com/kailas-cloud/jobsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/jobsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/jobsearch/internal/domain/search/request"
	"github.com/kailas-cloud/jobsearch/internal/domain/search/result"
	"github.com/kailas-cloud/jobsearch/internal/domain/suggestion"
)

// searchRequest is the POST /search/jobs body. page and limit are clamped, not rejected.
type searchRequest struct {
	Query       string         `json:"query" validate:"max=1024"`
	Page        int            `json:"page"`
	Limit       int            `json:"limit"`
	Filters     *searchFilters `json:"filters" validate:"omitempty"`
	UseEnhanced *bool          `json:"useEnhanced"`
}

type searchFilters struct {
	Location   string `json:"location" validate:"max=200"`
	RemoteOnly bool   `json:"remoteOnly"`
	DatePosted string `json:"datePosted" validate:"omitempty,oneof=all 7d 30d"`
}

type clickRequest struct {
	Query  string `json:"query" validate:"max=1024"`
	JobID  string `json:"jobId" validate:"required,max=128"`
	UserID string `json:"userId" validate:"max=128"`
}

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

type jobItem struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Company         string    `json:"company"`
	Location        string    `json:"location"`
	PostedAt        time.Time `json:"postedAt"`
	RelevanceScore  float64   `json:"relevanceScore"`
	MatchCategories []string  `json:"matchCategories"`
	MatchSnippet    string    `json:"matchSnippet"`
	WhyMatched      string    `json:"whyMatched"`
}

type paginationInfo struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type queryInfo struct {
	Original   string   `json:"original"`
	Normalized string   `json:"normalized"`
	QueryType  string   `json:"queryType"`
	Tokens     []string `json:"tokens"`
}

type timingInfo struct {
	Layers  map[string]float64 `json:"layers"`
	TotalMs float64            `json:"totalMs"`
}

type searchResponse struct {
	Jobs            []jobItem      `json:"jobs"`
	Pagination      paginationInfo `json:"pagination"`
	Query           queryInfo      `json:"query"`
	Timing          timingInfo     `json:"timing"`
	DidYouMean      *string        `json:"didYouMean"`
	FallbackUsed    bool           `json:"fallbackUsed"`
	LayersUsed      []string       `json:"layersUsed"`
	TotalCandidates int            `json:"totalCandidates"`
	State           string         `json:"state"`
}

type suggestionLists struct {
	Titles    []string `json:"titles"`
	Companies []string `json:"companies"`
	Locations []string `json:"locations"`
}

type suggestionsResponse struct {
	Suggestions  suggestionLists `json:"suggestions"`
	Query        string          `json:"query"`
	Total        int             `json:"total"`
	DidYouMean   *string         `json:"didYouMean"`
	FallbackUsed bool            `json:"fallbackUsed"`
}

type healthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks"`
}

// toRequest builds the domain request; body has already passed validation.
func (b *searchRequest) toRequest(userID string) (request.Request, error) {
	var f filter.Filters
	if b.Filters != nil {
		date, err := filter.ParseDatePosted(b.Filters.DatePosted)
		if err != nil {
			return request.Request{}, err //nolint:wrapcheck // message is user-facing as is
		}
		f = filter.New(b.Filters.Location, b.Filters.RemoteOnly, date)
	}
	enhanced := b.UseEnhanced == nil || *b.UseEnhanced
	return request.New(b.Query, mode.FromFlag(enhanced), f, b.Page, b.Limit, userID) //nolint:wrapcheck
}

func searchResponseFrom(out *result.Outcome) searchResponse {
	jobs := make([]jobItem, len(out.Results))
	for i := range out.Results {
		r := &out.Results[i]
		jobs[i] = jobItem{
			ID:              r.ID(),
			Title:           r.Title(),
			Company:         r.Company(),
			Location:        r.Location(),
			PostedAt:        r.PostedAt().UTC(),
			RelevanceScore:  r.Score(),
			MatchCategories: nonNil(r.MatchCategories()),
			MatchSnippet:    r.Snippet(),
			WhyMatched:      r.WhyMatched(),
		}
	}

	layers := make([]string, len(out.LayersUsed))
	for i, l := range out.LayersUsed {
		layers[i] = string(l)
	}
	timings := make(map[string]float64, len(out.LayerTimings))
	for _, t := range out.LayerTimings {
		timings[string(t.Layer)] = millis(t.Duration)
	}

	return searchResponse{
		Jobs: jobs,
		Pagination: paginationInfo{
			Page:       out.Pagination.Page,
			Limit:      out.Pagination.Limit,
			Total:      out.Pagination.Total,
			TotalPages: out.Pagination.TotalPages,
		},
		Query: queryInfo{
			Original:   out.Query.Original,
			Normalized: out.Query.Normalized,
			QueryType:  string(out.Query.Type),
			Tokens:     nonNil(out.Query.Tokens),
		},
		Timing:          timingInfo{Layers: timings, TotalMs: millis(out.Elapsed)},
		DidYouMean:      optional(out.DidYouMean),
		FallbackUsed:    out.FallbackUsed,
		LayersUsed:      layers,
		TotalCandidates: out.TotalCandidates,
		State:           string(out.State),
	}
}

func suggestionsResponseFrom(s *suggestion.Suggestions) suggestionsResponse {
	return suggestionsResponse{
		Suggestions: suggestionLists{
			Titles:    nonNil(s.Titles),
			Companies: nonNil(s.Companies),
			Locations: nonNil(s.Locations),
		},
		Query:        s.Query,
		Total:        s.Total(),
		DidYouMean:   optional(s.DidYouMean),
		FallbackUsed: s.FallbackUsed,
	}
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

// NewSearchResponse renders an outcome as the POST /search/jobs response envelope.
func NewSearchResponse(out *result.Outcome) any {
	return searchResponseFrom(out)
}
