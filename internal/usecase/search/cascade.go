package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jobsearch/internal/domain"
	"github.com/kailas-cloud/jobsearch/internal/domain/search/candidate"
	"github.com/kailas-cloud/jobsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/jobsearch/internal/domain/search/layer"
	"github.com/kailas-cloud/jobsearch/internal/domain/search/result"
	"github.com/kailas-cloud/jobsearch/internal/logger"
	"github.com/kailas-cloud/jobsearch/internal/metrics"
	"github.com/kailas-cloud/jobsearch/internal/normalize"
)

// cascadeRun is the outcome of one pass through the layers.
type cascadeRun struct {
	candidates []candidate.Candidate
	layersUsed []layer.Name
	timings    []result.LayerTiming
	state      result.State
	didYouMean string
}

// fallbackUsed reports whether a fallback layer was invoked.
func (r *cascadeRun) fallbackUsed() bool {
	for _, n := range r.layersUsed {
		if n.IsFallback() {
			return true
		}
	}
	return false
}

// cascade invokes layers in priority order, post-filtering and accumulating candidates,
// until the accumulator holds minResults postings after a primary layer has run, or every
// layer has run.
type cascade struct {
	layers     []Layer
	limits     Limits
	minResults int
	now        func() time.Time
}

func (c *cascade) run(ctx context.Context, q normalize.Query, filters filter.Filters) (*cascadeRun, error) {
	log := logger.FromContext(ctx)
	now := c.now()

	acc := candidate.NewSet()
	run := &cascadeRun{state: result.Exhausted}
	primaryRan := false
	textHits := false
	recencyFailed := false
	var fuzzyRaw []candidate.Candidate

	for _, l := range c.layers {
		name := l.Name()
		if !l.Accepts(q) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err //nolint:wrapcheck // caller cancellation is returned as is
		}

		start := time.Now()
		raw, err := l.Search(ctx, q, c.limits.For(name))
		elapsed := time.Since(start)

		run.layersUsed = append(run.layersUsed, name)
		run.timings = append(run.timings, result.LayerTiming{Layer: name, Duration: elapsed})
		metrics.SearchLayerDuration.WithLabelValues(string(name)).Observe(elapsed.Seconds())
		primaryRan = primaryRan || name.IsPrimary()

		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr //nolint:wrapcheck // caller cancellation is returned as is
			}
			if errors.Is(err, errNoEmbedder) {
				log.Debug("Search layer disabled", zap.String("layer", string(name)))
				continue
			}
			metrics.SearchLayerFailuresTotal.WithLabelValues(string(name)).Inc()
			log.Warn("Search layer failed",
				zap.String("layer", string(name)),
				zap.Duration("duration", elapsed),
				zap.Error(err),
			)
			if name == layer.Recency && acc.Len() == 0 {
				recencyFailed = true
			}
			continue
		}

		switch name {
		case layer.ExactPrefix, layer.FullText:
			textHits = textHits || len(raw) > 0
		case layer.Fuzzy:
			fuzzyRaw = raw
		}

		admitted := raw[:0:0]
		for _, cand := range raw {
			if filters.Admits(cand.Doc(), now) {
				admitted = append(admitted, cand)
			}
		}
		added := acc.Add(admitted...)
		metrics.SearchLayerCandidates.WithLabelValues(string(name)).Observe(float64(len(admitted)))

		log.Debug("Search layer completed",
			zap.String("layer", string(name)),
			zap.Int("raw", len(raw)),
			zap.Int("admitted", len(admitted)),
			zap.Int("new", added),
			zap.Int("accumulated", acc.Len()),
			zap.Duration("duration", elapsed),
		)

		if acc.Len() >= c.minResults && primaryRan {
			run.state = result.Satisfied
			break
		}
	}

	if recencyFailed && acc.Len() == 0 {
		return nil, fmt.Errorf("%w: every lookup failed", domain.ErrStoreUnavailable)
	}

	if !textHits {
		run.didYouMean = didYouMean(fuzzyRaw)
	}
	run.candidates = acc.All()
	return run, nil
}

// didYouMean picks the hint of the strongest fuzzy candidate.
func didYouMean(fuzzy []candidate.Candidate) string {
	var (
		best    string
		bestSim float64
	)
	for _, c := range fuzzy {
		sig, ok := c.Signal(layer.Fuzzy)
		if !ok || sig.Hint == "" {
			continue
		}
		if best == "" || sig.Value > bestSim {
			best, bestSim = sig.Hint, sig.Value
		}
	}
	return best
}
