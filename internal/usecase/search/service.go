package search

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jobsearch/internal/domain/search/layer"
	"github.com/kailas-cloud/jobsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/jobsearch/internal/domain/search/request"
	"github.com/kailas-cloud/jobsearch/internal/domain/search/result"
	"github.com/kailas-cloud/jobsearch/internal/logger"
	"github.com/kailas-cloud/jobsearch/internal/metrics"
	"github.com/kailas-cloud/jobsearch/internal/normalize"
)

// Service runs the adaptive retrieval cascade, ranks and paginates the results.
type Service struct {
	normalizer *normalize.Normalizer
	cascades   map[mode.Mode]*cascade
	scoring    Scoring
	snippetLen int
	recorder   Recorder
	now        func() time.Time
}

// New creates a search service. embed and recorder may be nil: without an embedder the
// semantic layer is listed as run but contributes nothing, without a recorder nothing is
// recorded.
func New(repo Repository, embed Embedder, normalizer *normalize.Normalizer, recorder Recorder, cfg Config) *Service {
	cfg = cfg.withDefaults()
	s := &Service{
		normalizer: normalizer,
		scoring:    cfg.Scoring,
		snippetLen: cfg.SnippetLength,
		recorder:   recorder,
		now:        time.Now,
	}

	all := []Layer{
		&exactPrefixLayer{repo: repo},
		&fullTextLayer{repo: repo},
		&fuzzyLayer{repo: repo, floor: cfg.FuzzyFloor},
		&semanticLayer{repo: repo, embed: embed, floor: cfg.SemanticFloor, timeout: cfg.SemanticTimeout},
		&broadTokenLayer{repo: repo},
		&recencyLayer{repo: repo},
	}
	basic := make([]Layer, 0, 3)
	for _, l := range all {
		if l.Name().IsPrimary() || l.Name() == layer.Recency {
			basic = append(basic, l)
		}
	}

	s.cascades = map[mode.Mode]*cascade{
		mode.Enhanced: s.newCascade(all, cfg),
		mode.Basic:    s.newCascade(basic, cfg),
	}
	return s
}

func (s *Service) newCascade(layers []Layer, cfg Config) *cascade {
	return &cascade{
		layers:     layers,
		limits:     cfg.Limits,
		minResults: cfg.MinResults,
		now:        func() time.Time { return s.now() },
	}
}

// Normalize exposes the query normalizer.
func (s *Service) Normalize(raw string) normalize.Query {
	return s.normalizer.Normalize(raw)
}

// Search normalizes the query, runs the cascade for the request mode and returns the
// requested page of ranked results. Only caller cancellation and an unreachable store
// are returned as errors.
func (s *Service) Search(ctx context.Context, req *request.Request) (result.Outcome, error) {
	start := time.Now()
	q := s.normalizer.Normalize(req.Query())
	ctx = logger.With(ctx, zap.String("mode", string(req.Mode())), zap.String("normalized", q.Text))

	c, ok := s.cascades[req.Mode()]
	if !ok {
		c = s.cascades[mode.Enhanced]
	}

	run, err := c.run(ctx, q, req.Filters())
	if err != nil {
		return result.Outcome{}, err
	}

	ranked := s.scoring.Rank(run.candidates)
	total := len(ranked)
	pg := paginate(total, req.Page(), req.Limit())

	page := make([]result.Result, 0, req.Limit())
	terms := append(q.Words(), q.Tokens...)
	for i := pageStart(pg); i < total && len(page) < pg.Limit; i++ {
		r := &ranked[i]
		doc := r.cand.Doc()
		page = append(page, result.New(
			doc.ID(), doc.Title(), doc.Company(), doc.Location(), doc.PostedAt(),
			r.score, matchCategories(r.cand),
			snippet(doc.Description(), terms, s.snippetLen),
			whyMatched(r, q),
		))
	}

	out := result.Outcome{
		Results:    page,
		Pagination: pg,
		Query: result.QueryInfo{
			Original:   req.Query(),
			Normalized: q.Text,
			Type:       queryType(q),
			Tokens:     q.Tokens,
		},
		LayersUsed:      run.layersUsed,
		FallbackUsed:    run.fallbackUsed(),
		TotalCandidates: total,
		DidYouMean:      run.didYouMean,
		State:           run.state,
		LayerTimings:    run.timings,
		Elapsed:         time.Since(start),
	}

	metrics.SearchRequestsTotal.WithLabelValues(
		string(req.Mode()), string(out.State), strconv.FormatBool(out.FallbackUsed),
	).Inc()
	logger.FromContext(ctx).Debug("Search completed",
		zap.String("state", string(out.State)),
		zap.Int("total", total),
		zap.Bool("fallback", out.FallbackUsed),
		zap.Duration("elapsed", out.Elapsed),
	)

	if s.recorder != nil {
		s.recorder.RecordSearch(ctx, req, q, &out)
	}
	return out, nil
}

func paginate(total, page, limit int) result.Pagination {
	pages := 0
	if total > 0 {
		pages = (total + limit - 1) / limit
	}
	return result.Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}

// pageStart returns the offset of the first result on the page, or Total when the page
// lies past the end. Pages beyond TotalPages never reach the multiplication.
func pageStart(pg result.Pagination) int {
	if pg.Page > pg.TotalPages {
		return pg.Total
	}
	return (pg.Page - 1) * pg.Limit
}

func queryType(q normalize.Query) result.QueryType {
	switch len(q.Words()) {
	case 0:
		return result.QueryEmpty
	case 1:
		return result.QuerySingleTerm
	default:
		return result.QueryMultiTerm
	}
}
