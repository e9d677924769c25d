package suggest

import (
	"context"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/jobsearch/internal/domain/job"
	"github.com/kailas-cloud/jobsearch/internal/domain/suggestion"
	"github.com/kailas-cloud/jobsearch/internal/metrics"
	"github.com/kailas-cloud/jobsearch/internal/normalize"
)

// Defaults.
const (
	DefaultMinChars   = 2
	DefaultLimit      = 10
	DefaultMaxLimit   = 50
	DefaultFuzzyFloor = 0.3
	// spellingCandidates is how many fuzzy hits are weighed for a spelling suggestion.
	spellingCandidates = 5
)

// Config tunes the suggestion engine.
type Config struct {
	MinChars     int
	DefaultLimit int
	MaxLimit     int
	FuzzyFloor   float64
}

// Service is the autocomplete and did-you-mean engine.
type Service struct {
	repo       Repository
	cache      Cache
	normalizer *normalize.Normalizer
	cfg        Config
	logger     *zap.Logger
}

// New creates a suggestion service. cache may be nil.
func New(repo Repository, cache Cache, normalizer *normalize.Normalizer, cfg Config, logger *zap.Logger) *Service {
	if cfg.MinChars <= 0 {
		cfg.MinChars = DefaultMinChars
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = DefaultLimit
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = DefaultMaxLimit
	}
	if cfg.FuzzyFloor <= 0 {
		cfg.FuzzyFloor = DefaultFuzzyFloor
	}
	return &Service{repo: repo, cache: cache, normalizer: normalizer, cfg: cfg, logger: logger}
}

// Suggest returns up to limit distinct values per requested category. Lookup and cache
// failures degrade to empty lists; only caller cancellation is returned as an error.
func (s *Service) Suggest(
	ctx context.Context, query string, category suggestion.Category, limit int,
) (suggestion.Suggestions, error) {
	out := suggestion.Empty(query)
	q := s.normalizer.Normalize(query)
	if utf8.RuneCountInString(q.Text) < s.cfg.MinChars {
		metrics.SuggestRequestsTotal.WithLabelValues("skip").Inc()
		return out, nil
	}
	if category == "" {
		category = suggestion.CategoryAll
	}
	limit = s.clampLimit(limit)

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, category, q.Text, limit)
		switch {
		case err != nil:
			s.logger.Debug("Suggestion cache read failed", zap.Error(err))
		case ok:
			metrics.SuggestRequestsTotal.WithLabelValues("hit").Inc()
			cached.Query = query
			return cached, nil
		}
	}
	metrics.SuggestRequestsTotal.WithLabelValues("miss").Inc()

	fields := category.Fields()
	values := make([][]string, len(fields))
	failed := make([]bool, len(fields))
	var g errgroup.Group
	for i, f := range fields {
		g.Go(func() error {
			v, err := s.repo.Suggest(ctx, f, q.Text, limit)
			if err != nil {
				s.logger.Warn("Suggestion lookup failed", zap.String("field", string(f)), zap.Error(err))
				failed[i] = true
				return nil
			}
			values[i] = v
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return suggestion.Suggestions{}, err //nolint:wrapcheck // caller cancellation is returned as is
	}

	degraded := false
	for i, f := range fields {
		out.Set(f, values[i])
		degraded = degraded || failed[i]
	}

	if out.Total() == 0 {
		out.FallbackUsed = true
		dym, ok := s.didYouMean(ctx, q.Text)
		out.DidYouMean = dym
		degraded = degraded || !ok
	}

	// A partial answer is served but not cached.
	if s.cache != nil && !degraded {
		if err := s.cache.Put(ctx, category, q.Text, limit, &out); err != nil {
			s.logger.Debug("Suggestion cache write failed", zap.Error(err))
		}
	}
	return out, nil
}

func (s *Service) clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return s.cfg.DefaultLimit
	case limit > s.cfg.MaxLimit:
		return s.cfg.MaxLimit
	default:
		return limit
	}
}

// didYouMean returns the closest title or company above the similarity floor that is
// not already equal to the query. ok is false when the lookup itself failed.
func (s *Service) didYouMean(ctx context.Context, text string) (string, bool) {
	hits, err := s.repo.Similar(ctx, text, s.cfg.FuzzyFloor, spellingCandidates)
	if err != nil {
		s.logger.Warn("Spelling lookup failed", zap.Error(err))
		return "", false
	}

	var (
		best    string
		bestSim float64
	)
	for i := range hits {
		doc := &hits[i].Doc
		for _, f := range []job.Field{job.FieldTitle, job.FieldCompany} {
			norm := doc.Normalized(f)
			if norm == text {
				continue
			}
			if sim := normalize.Similarity(text, norm); sim >= s.cfg.FuzzyFloor && sim > bestSim {
				best, bestSim = doc.Display(f), sim
			}
		}
	}
	return best, true
}
