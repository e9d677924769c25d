package search

import (
	"cmp"
	"context"
	"errors"
	"math"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/jobsearch/internal/domain"
	"github.com/kailas-cloud/jobsearch/internal/domain/job"
	"github.com/kailas-cloud/jobsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/jobsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/jobsearch/internal/domain/search/request"
	"github.com/kailas-cloud/jobsearch/internal/domain/search/result"
	"github.com/kailas-cloud/jobsearch/internal/normalize"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

const (
	opExact    = "exact_prefix"
	opFullText = "full_text"
	opSimilar  = "similar"
	opNearest  = "nearest"
	opAnyToken = "any_token"
	opRecent   = "recent"
)

// fakeJob is a stored posting with an optional embedding.
type fakeJob struct {
	doc job.Document
	vec []float32
}

// memStore is an in-memory document store answering every lookup the way the
// postgres store does.
type memStore struct {
	jobs  []fakeJob
	calls map[string]int
	errs  map[string]error
	// before runs ahead of every lookup.
	before func(ctx context.Context, op string)
}

func newMemStore(jobs ...fakeJob) *memStore {
	return &memStore{jobs: jobs, calls: map[string]int{}, errs: map[string]error{}}
}

func (m *memStore) enter(ctx context.Context, op string) error {
	m.calls[op]++
	if m.before != nil {
		m.before(ctx, op)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.errs[op]
}

type scoredJob struct {
	doc   job.Document
	score float64
	rank  int
}

// top orders by score desc (when byScore), then rank, then newest and id.
func top(in []scoredJob, limit int, byScore bool) []job.Hit {
	slices.SortFunc(in, func(a, b scoredJob) int {
		if byScore {
			if c := cmp.Compare(b.score, a.score); c != 0 {
				return c
			}
		}
		if c := cmp.Compare(a.rank, b.rank); c != 0 {
			return c
		}
		if c := b.doc.PostedAt().Compare(a.doc.PostedAt()); c != 0 {
			return c
		}
		return cmp.Compare(a.doc.ID(), b.doc.ID())
	})
	if len(in) > limit {
		in = in[:limit]
	}
	out := make([]job.Hit, 0, len(in))
	for _, s := range in {
		out = append(out, job.Hit{Doc: s.doc, Signal: s.score})
	}
	return out
}

func (m *memStore) ExactPrefix(ctx context.Context, text string, limit int) ([]job.Hit, error) {
	if err := m.enter(ctx, opExact); err != nil {
		return nil, err
	}
	var out []scoredJob
	for _, j := range m.jobs {
		exact, prefix := false, false
		for _, f := range job.LookupFields {
			v := j.doc.Normalized(f)
			exact = exact || v == text
			prefix = prefix || strings.HasPrefix(v, text)
		}
		switch {
		case exact:
			out = append(out, scoredJob{doc: j.doc, score: 1, rank: 0})
		case prefix:
			out = append(out, scoredJob{doc: j.doc, score: 0, rank: 1})
		}
	}
	return top(out, limit, false), nil
}

var fieldWeights = map[job.Field]float64{
	job.FieldTitle:       1,
	job.FieldCompany:     0.4,
	job.FieldLocation:    0.2,
	job.FieldDescription: 0.1,
}

func (m *memStore) FullText(ctx context.Context, text string, limit int) ([]job.Hit, error) {
	if err := m.enter(ctx, opFullText); err != nil {
		return nil, err
	}
	words := strings.Fields(text)
	var out []scoredJob
	for _, j := range m.jobs {
		fieldWords := map[job.Field][]string{}
		for f := range fieldWeights {
			fieldWords[f] = strings.Fields(normalize.Field(j.doc.Display(f)))
		}
		rank := 0.0
		all := true
		for _, w := range words {
			found := false
			for f, ws := range fieldWords {
				if slices.Contains(ws, w) {
					found = true
					rank += fieldWeights[f]
				}
			}
			all = all && found
		}
		if all && len(words) > 0 {
			out = append(out, scoredJob{doc: j.doc, score: rank / (rank + 1)})
		}
	}
	return top(out, limit, true), nil
}

func (m *memStore) Similar(ctx context.Context, text string, floor float64, limit int) ([]job.Hit, error) {
	if err := m.enter(ctx, opSimilar); err != nil {
		return nil, err
	}
	var out []scoredJob
	for _, j := range m.jobs {
		best := 0.0
		for _, f := range job.LookupFields {
			best = max(best, normalize.Similarity(text, j.doc.Normalized(f)))
		}
		if best >= floor {
			out = append(out, scoredJob{doc: j.doc, score: best})
		}
	}
	return top(out, limit, true), nil
}

func (m *memStore) Nearest(ctx context.Context, vector []float32, limit int) ([]job.Hit, error) {
	if err := m.enter(ctx, opNearest); err != nil {
		return nil, err
	}
	var out []scoredJob
	for _, j := range m.jobs {
		if j.vec == nil {
			continue
		}
		out = append(out, scoredJob{doc: j.doc, score: cosine(vector, j.vec)})
	}
	return top(out, limit, true), nil
}

func (m *memStore) AnyToken(ctx context.Context, tokens []string, limit int) ([]job.Hit, error) {
	if err := m.enter(ctx, opAnyToken); err != nil {
		return nil, err
	}
	var out []scoredJob
	for _, j := range m.jobs {
		for _, f := range job.LookupFields {
			if containsAny(j.doc.Normalized(f), tokens) {
				out = append(out, scoredJob{doc: j.doc})
				break
			}
		}
	}
	return top(out, limit, false), nil
}

func (m *memStore) Recent(ctx context.Context, limit int) ([]job.Hit, error) {
	if err := m.enter(ctx, opRecent); err != nil {
		return nil, err
	}
	out := make([]scoredJob, 0, len(m.jobs))
	for _, j := range m.jobs {
		out = append(out, scoredJob{doc: j.doc})
	}
	return top(out, limit, false), nil
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// fakeEmbedder maps query text to fixed vectors.
type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
	block   bool
	calls   int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	f.calls++
	if f.block {
		<-ctx.Done()
		return domain.EmbeddingResult{}, ctx.Err()
	}
	if f.err != nil {
		return domain.EmbeddingResult{}, f.err
	}
	v, ok := f.vectors[text]
	if !ok {
		return domain.EmbeddingResult{}, errors.New("no vector for " + text)
	}
	return domain.EmbeddingResult{Embedding: v, TotalTokens: 2}, nil
}

// spyRecorder captures recorded searches.
type spyRecorder struct {
	queries  []normalize.Query
	outcomes []result.Outcome
}

func (s *spyRecorder) RecordSearch(_ context.Context, _ *request.Request, q normalize.Query, out *result.Outcome) {
	s.queries = append(s.queries, q)
	s.outcomes = append(s.outcomes, *out)
}

// posting builds a stored job posted age ago.
func posting(id, title, company, location, description string, age time.Duration) fakeJob {
	return fakeJob{doc: job.Reconstruct(
		id, title, company, location,
		normalize.Field(title), normalize.Field(company), normalize.Field(location),
		description, testNow.Add(-age), false,
	)}
}

// withVector attaches an embedding to a posting.
func withVector(j fakeJob, vec ...float32) fakeJob {
	d := &j.doc
	j.doc = job.Reconstruct(
		d.ID(), d.Title(), d.Company(), d.Location(),
		d.Normalized(job.FieldTitle), d.Normalized(job.FieldCompany), d.Normalized(job.FieldLocation),
		d.Description(), d.PostedAt(), true,
	)
	j.vec = vec
	return j
}

func newTestService(t *testing.T, store *memStore, embed Embedder, cfg Config) (*Service, *spyRecorder) {
	t.Helper()
	rec := &spyRecorder{}
	svc := New(store, embed, normalize.New(normalize.DefaultSynonyms()), rec, cfg)
	svc.now = func() time.Time { return testNow }
	return svc, rec
}

func newRequest(t *testing.T, query string, opts ...func(*reqOpts)) *request.Request {
	t.Helper()
	o := reqOpts{mode: mode.Enhanced, page: 1, limit: 50}
	for _, fn := range opts {
		fn(&o)
	}
	req, err := request.New(query, o.mode, o.filters, o.page, o.limit, "")
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return &req
}

type reqOpts struct {
	mode    mode.Mode
	filters filter.Filters
	page    int
	limit   int
}

func withMode(m mode.Mode) func(*reqOpts) { return func(o *reqOpts) { o.mode = m } }

func withFilters(f filter.Filters) func(*reqOpts) { return func(o *reqOpts) { o.filters = f } }

func withPage(page, limit int) func(*reqOpts) {
	return func(o *reqOpts) { o.page, o.limit = page, limit }
}

func resultIDs(out *result.Outcome) []string {
	ids := make([]string, 0, len(out.Results))
	for i := range out.Results {
		ids = append(ids, out.Results[i].ID())
	}
	return ids
}

func findResult(out *result.Outcome, id string) *result.Result {
	for i := range out.Results {
		if out.Results[i].ID() == id {
			return &out.Results[i]
		}
	}
	return nil
}
