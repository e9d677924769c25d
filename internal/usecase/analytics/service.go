// Package analytics records searches and result clicks without ever failing or
// slowing the search that produced them.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jobsearch/internal/domain"
	"github.com/kailas-cloud/jobsearch/internal/domain/analytics"
	"github.com/kailas-cloud/jobsearch/internal/domain/search/request"
	"github.com/kailas-cloud/jobsearch/internal/domain/search/result"
	"github.com/kailas-cloud/jobsearch/internal/metrics"
	"github.com/kailas-cloud/jobsearch/internal/normalize"
)

// Defaults.
const (
	DefaultWorkers      = 4
	DefaultClickWindow  = time.Hour
	DefaultWriteTimeout = 2 * time.Second
)

// Config tunes the recorder.
type Config struct {
	// Workers bounds concurrent event writes. Writes beyond it are dropped.
	Workers      int
	ClickWindow  time.Duration
	WriteTimeout time.Duration
}

// Service is the search analytics recorder.
type Service struct {
	repo         Repository
	normalizer   *normalize.Normalizer
	pool         *ants.Pool
	clickWindow  time.Duration
	writeTimeout time.Duration
	logger       *zap.Logger
	now          func() time.Time
	newID        func() string
}

// New creates a recorder backed by a non-blocking worker pool.
func New(repo Repository, normalizer *normalize.Normalizer, cfg Config, logger *zap.Logger) (*Service, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.ClickWindow <= 0 {
		cfg.ClickWindow = DefaultClickWindow
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}

	pool, err := ants.NewPool(cfg.Workers, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("create analytics pool: %w", err)
	}

	return &Service{
		repo:         repo,
		normalizer:   normalizer,
		pool:         pool,
		clickWindow:  cfg.ClickWindow,
		writeTimeout: cfg.WriteTimeout,
		logger:       logger,
		now:          time.Now,
		newID:        uuid.NewString,
	}, nil
}

// RecordSearch queues a search event. It never blocks: when every worker is busy the
// event is dropped.
func (s *Service) RecordSearch(ctx context.Context, req *request.Request, q normalize.Query, out *result.Outcome) {
	layers := make([]string, 0, len(out.LayersUsed))
	for _, n := range out.LayersUsed {
		layers = append(layers, string(n))
	}

	ev, err := analytics.NewSearchEvent(
		s.newID(), req.Query(), q.Text,
		out.TotalCandidates, out.Elapsed,
		req.Filters().Map(), layers, out.FallbackUsed,
		req.UserID(), s.now(),
	)
	if err != nil {
		s.logger.Debug("Search event rejected", zap.Error(err))
		metrics.AnalyticsEventsTotal.WithLabelValues("search", "failed").Inc()
		return
	}

	// the request context ends with the response; the write must outlive it
	writeCtx := context.WithoutCancel(ctx)
	err = s.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(writeCtx, s.writeTimeout)
		defer cancel()

		if err := s.repo.Record(ctx, &ev); err != nil {
			s.logger.Debug("Search event write failed", zap.String("event_id", ev.ID()), zap.Error(err))
			metrics.AnalyticsEventsTotal.WithLabelValues("search", "failed").Inc()
			return
		}
		metrics.AnalyticsEventsTotal.WithLabelValues("search", "ok").Inc()
	})
	if err != nil {
		s.logger.Debug("Search event dropped", zap.String("event_id", ev.ID()), zap.Error(err))
		metrics.AnalyticsEventsTotal.WithLabelValues("search", "dropped").Inc()
	}
}

// RecordClick attributes a result click to the newest unclicked search for the same
// normalized query (and user, when given) within the click window. It reports whether
// an event was found; write failures and unmatched clicks are not errors.
func (s *Service) RecordClick(ctx context.Context, query, jobID, userID string) (bool, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return false, fmt.Errorf("%w: jobId is required", domain.ErrInvalidQuery)
	}

	at := s.now()
	click := analytics.Click{
		NormalizedQuery: s.normalizer.Normalize(query).Text,
		JobID:           jobID,
		UserID:          userID,
		At:              at,
		Since:           at.Add(-s.clickWindow),
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.writeTimeout)
	defer cancel()

	ok, err := s.repo.AttachClick(ctx, click)
	switch {
	case err != nil:
		s.logger.Debug("Click write failed", zap.String("job_id", jobID), zap.Error(err))
		metrics.AnalyticsEventsTotal.WithLabelValues("click", "failed").Inc()
		return false, nil
	case !ok:
		metrics.AnalyticsEventsTotal.WithLabelValues("click", "unmatched").Inc()
		return false, nil
	default:
		metrics.AnalyticsEventsTotal.WithLabelValues("click", "ok").Inc()
		return true, nil
	}
}

// Close waits up to timeout for queued writes to finish.
func (s *Service) Close(timeout time.Duration) error {
	if err := s.pool.ReleaseTimeout(timeout); err != nil && !errors.Is(err, ants.ErrPoolClosed) {
		return fmt.Errorf("release analytics pool: %w", err)
	}
	return nil
}
