package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/jobsearch/internal/domain"
	"github.com/kailas-cloud/jobsearch/internal/domain/job"
	"github.com/kailas-cloud/jobsearch/internal/domain/search/candidate"
	"github.com/kailas-cloud/jobsearch/internal/domain/search/layer"
	"github.com/kailas-cloud/jobsearch/internal/normalize"
)

var errNoEmbedder = errors.New("no embedding function configured")

// Layer is one retrieval strategy of the cascade.
type Layer interface {
	Name() layer.Name
	// Accepts reports whether the layer has anything to match for q. Layers that do not
	// accept a query are neither invoked nor reported as used.
	Accepts(q normalize.Query) bool
	// Search returns at most limit raw candidates. Filters are applied by the caller.
	Search(ctx context.Context, q normalize.Query, limit int) ([]candidate.Candidate, error)
}

// exactPrefixLayer matches postings whose normalized title, company or location equals
// or starts with the query text.
type exactPrefixLayer struct {
	repo Repository
}

func (l *exactPrefixLayer) Name() layer.Name { return layer.ExactPrefix }

func (l *exactPrefixLayer) Accepts(q normalize.Query) bool { return !q.IsEmpty() }

func (l *exactPrefixLayer) Search(ctx context.Context, q normalize.Query, limit int) ([]candidate.Candidate, error) {
	hits, err := l.repo.ExactPrefix(ctx, q.Text, limit)
	if err != nil {
		return nil, err //nolint:wrapcheck // repository errors carry their own context
	}

	out := make([]candidate.Candidate, 0, len(hits))
	for _, h := range hits {
		kind := candidate.KindPrefix
		var fields []job.Field
		for _, f := range job.LookupFields {
			v := h.Doc.Normalized(f)
			switch {
			case v == q.Text:
				kind = candidate.KindExact
				fields = append(fields, f)
			case strings.HasPrefix(v, q.Text):
				fields = append(fields, f)
			}
		}
		if len(fields) == 0 && h.Signal >= 1 {
			kind = candidate.KindExact
		}
		out = append(out, candidate.New(h.Doc, layer.ExactPrefix, candidate.Signal{Kind: kind, Value: 1}, fields...))
	}
	return out, nil
}

// fullTextLayer ranks postings with the weighted full-text index.
type fullTextLayer struct {
	repo Repository
}

func (l *fullTextLayer) Name() layer.Name { return layer.FullText }

func (l *fullTextLayer) Accepts(q normalize.Query) bool { return !q.IsEmpty() }

func (l *fullTextLayer) Search(ctx context.Context, q normalize.Query, limit int) ([]candidate.Candidate, error) {
	hits, err := l.repo.FullText(ctx, q.Text, limit)
	if err != nil {
		return nil, err //nolint:wrapcheck // repository errors carry their own context
	}

	words := q.Words()
	out := make([]candidate.Candidate, 0, len(hits))
	for _, h := range hits {
		kind := candidate.KindAllWords
		var fields []job.Field
		for _, f := range job.LookupFields {
			v := h.Doc.Normalized(f)
			if strings.Contains(v, q.Text) {
				kind = candidate.KindPhrase
				fields = append(fields, f)
			} else if containsAny(v, words) {
				fields = append(fields, f)
			}
		}
		if containsAny(h.Doc.Normalized(job.FieldDescription), words) {
			fields = append(fields, job.FieldDescription)
		}
		sig := candidate.Signal{Kind: kind, Value: clampRank(h.Signal)}
		out = append(out, candidate.New(h.Doc, layer.FullText, sig, fields...))
	}
	return out, nil
}

// fuzzyLayer tolerates typos through trigram similarity.
type fuzzyLayer struct {
	repo  Repository
	floor float64
}

func (l *fuzzyLayer) Name() layer.Name { return layer.Fuzzy }

func (l *fuzzyLayer) Accepts(q normalize.Query) bool { return !q.IsEmpty() }

func (l *fuzzyLayer) Search(ctx context.Context, q normalize.Query, limit int) ([]candidate.Candidate, error) {
	hits, err := l.repo.Similar(ctx, q.Text, l.floor, limit)
	if err != nil {
		return nil, err //nolint:wrapcheck // repository errors carry their own context
	}

	out := make([]candidate.Candidate, 0, len(hits))
	for _, h := range hits {
		var (
			fields  []job.Field
			best    job.Field
			bestSim float64
			hint    string
			hintSim float64
		)
		for _, f := range job.LookupFields {
			norm := h.Doc.Normalized(f)
			sim := normalize.Similarity(q.Text, norm)
			if sim >= l.floor {
				fields = append(fields, f)
			}
			if sim > bestSim {
				best, bestSim = f, sim
			}
			// spelling suggestions only come from titles and companies that differ from the query
			if f != job.FieldLocation && norm != q.Text && sim >= l.floor && sim > hintSim {
				hint, hintSim = h.Doc.Display(f), sim
			}
		}
		if len(fields) == 0 && best != "" {
			fields = append(fields, best)
		}
		value := h.Signal
		if value <= 0 {
			value = bestSim
		}
		sig := candidate.Signal{Kind: candidate.KindSimilarity, Value: value, Hint: hint}
		out = append(out, candidate.New(h.Doc, layer.Fuzzy, sig, fields...))
	}
	return out, nil
}

// semanticLayer runs nearest-neighbor search over the query embedding.
type semanticLayer struct {
	repo    Repository
	embed   Embedder
	floor   float64
	timeout time.Duration
}

func (l *semanticLayer) Name() layer.Name { return layer.Semantic }

func (l *semanticLayer) Accepts(q normalize.Query) bool { return !q.IsEmpty() }

func (l *semanticLayer) Search(ctx context.Context, q normalize.Query, limit int) ([]candidate.Candidate, error) {
	if l.embed == nil {
		return nil, errNoEmbedder
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	emb, err := l.embed.Embed(ctx, q.Text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if len(emb.Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding", domain.ErrEmbeddingUnavailable)
	}

	hits, err := l.repo.Nearest(ctx, emb.Embedding, limit)
	if err != nil {
		return nil, err //nolint:wrapcheck // repository errors carry their own context
	}

	out := make([]candidate.Candidate, 0, len(hits))
	for _, h := range hits {
		if h.Signal < l.floor {
			continue
		}
		out = append(out, candidate.New(h.Doc, layer.Semantic, candidate.Signal{Kind: candidate.KindCosine, Value: h.Signal}))
	}
	return out, nil
}

// broadTokenLayer matches postings containing any query token, synonyms included.
type broadTokenLayer struct {
	repo Repository
}

func (l *broadTokenLayer) Name() layer.Name { return layer.BroadToken }

func (l *broadTokenLayer) Accepts(q normalize.Query) bool { return len(q.Tokens) > 0 }

func (l *broadTokenLayer) Search(ctx context.Context, q normalize.Query, limit int) ([]candidate.Candidate, error) {
	hits, err := l.repo.AnyToken(ctx, q.Tokens, limit)
	if err != nil {
		return nil, err //nolint:wrapcheck // repository errors carry their own context
	}

	out := make([]candidate.Candidate, 0, len(hits))
	for _, h := range hits {
		var fields []job.Field
		found := make(map[string]struct{}, len(q.Tokens))
		for _, f := range job.LookupFields {
			v := h.Doc.Normalized(f)
			hit := false
			for _, tok := range q.Tokens {
				if strings.Contains(v, tok) {
					found[tok] = struct{}{}
					hit = true
				}
			}
			if hit {
				fields = append(fields, f)
			}
		}
		if len(found) == 0 {
			continue
		}
		frac := float64(len(found)) / float64(len(q.Tokens))
		out = append(out, candidate.New(h.Doc, layer.BroadToken, candidate.Signal{Kind: candidate.KindFraction, Value: frac}, fields...))
	}
	return out, nil
}

// recencyLayer ignores the query and returns the newest postings.
type recencyLayer struct {
	repo Repository
}

func (l *recencyLayer) Name() layer.Name { return layer.Recency }

func (l *recencyLayer) Accepts(normalize.Query) bool { return true }

func (l *recencyLayer) Search(ctx context.Context, _ normalize.Query, limit int) ([]candidate.Candidate, error) {
	hits, err := l.repo.Recent(ctx, limit)
	if err != nil {
		return nil, err //nolint:wrapcheck // repository errors carry their own context
	}
	out := make([]candidate.Candidate, 0, len(hits))
	for _, h := range hits {
		out = append(out, candidate.New(h.Doc, layer.Recency, candidate.Signal{Kind: candidate.KindRecent, Value: 1}))
	}
	return out, nil
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// clampRank keeps a normalized store rank inside [0, 1).
func clampRank(r float64) float64 {
	switch {
	case r < 0:
		return 0
	case r >= 1:
		return 0.999
	default:
		return r
	}
}
