package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/jobsearch/internal/domain"
	"github.com/kailas-cloud/jobsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/jobsearch/internal/domain/search/layer"
	"github.com/kailas-cloud/jobsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/jobsearch/internal/domain/search/result"
	"github.com/kailas-cloud/jobsearch/internal/logger"
	"github.com/kailas-cloud/jobsearch/internal/metrics"
)

const day = 24 * time.Hour

// corpus is a fifteen-posting store with a mix of titles, locations and ages.
func corpus() []fakeJob {
	return []fakeJob{
		posting("j01", "Software Engineer", "Acme", "Berlin", "Build distributed systems in Go.", 1*day),
		posting("j02", "Senior Software Engineer", "Globex", "Remote", "Lead a software engineering team.", 2*day),
		posting("j03", "Registered Nurse", "General Hospital", "Boston", "Patient care on night shifts.", 3*day),
		posting("j04", "Data Scientist", "Initech", "New York", "Machine learning for fraud detection.", 4*day),
		posting("j05", "Frontend Developer", "Hooli", "Remote", "React and TypeScript user interfaces.", 5*day),
		posting("j06", "Accountant", "Ledger Partners", "Chicago", "Monthly close and reconciliation.", 6*day),
		posting("j07", "Line Cook", "Diner", "Austin", "Prep and grill station.", 7*day),
		posting("j08", "Product Manager", "Acme", "Berlin", "Own the roadmap for payments.", 8*day),
		posting("j09", "DevOps Engineer", "Umbrella", "Remote", "Kubernetes and Terraform.", 9*day),
		posting("j10", "Backend Developer", "Stark Industries", "Los Angeles", "APIs in Go and Postgres.", 10*day),
		posting("j11", "Warehouse Associate", "Shipfast", "Dallas", "Pick and pack orders.", 20*day),
		posting("j12", "Teacher", "Springfield Elementary", "Springfield", "Grade 3 classroom.", 25*day),
		posting("j13", "Electrician", "Sparks", "Denver", "Commercial wiring.", 35*day),
		posting("j14", "Graphic Designer", "Pixel", "Remote", "Brand identity work.", 40*day),
		posting("j15", "Sales Representative", "Globex", "Miami", "B2B software sales.", 50*day),
	}
}

func TestSearch_ExactTitleWithEnoughPrefixHits(t *testing.T) {
	jobs := []fakeJob{posting("exact", "Software Engineer", "Acme", "Berlin", "", 30*day)}
	for i := range 10 {
		jobs = append(jobs, posting(fmt.Sprintf("p%02d", i), fmt.Sprintf("Software Engineer %d", i+2), "Acme", "Berlin", "", day))
	}
	store := newMemStore(jobs...)
	svc, _ := newTestService(t, store, nil, Config{})

	out, err := svc.Search(context.Background(), newRequest(t, "software engineer"))
	require.NoError(t, err)

	assert.Equal(t, []layer.Name{layer.ExactPrefix}, out.LayersUsed)
	assert.False(t, out.FallbackUsed)
	assert.Equal(t, result.Satisfied, out.State)
	assert.Equal(t, 11, out.TotalCandidates)
	require.NotEmpty(t, out.Results)
	assert.Equal(t, "exact", out.Results[0].ID())
	assert.Contains(t, out.Results[0].MatchCategories(), "title")
	assert.Contains(t, out.Results[0].MatchCategories(), "exact_prefix")
	assert.Equal(t, `Title exactly matches "software engineer"`, out.Results[0].WhyMatched())
	assert.Zero(t, store.calls[opFullText], "later layers must not run")
	assert.Empty(t, out.DidYouMean)
}

func TestSearch_FullTextFillsAfterFewExactHits(t *testing.T) {
	jobs := []fakeJob{posting("exact", "Software Engineer", "Acme", "Berlin", "", 30*day)}
	for i := range 10 {
		jobs = append(jobs, posting(fmt.Sprintf("d%02d", i), fmt.Sprintf("Backend Developer %d", i), "Initech", "Remote",
			"We are hiring a software engineer to own our billing platform.", day))
	}
	svc, _ := newTestService(t, newMemStore(jobs...), nil, Config{})

	out, err := svc.Search(context.Background(), newRequest(t, "Software Engineer"))
	require.NoError(t, err)

	assert.Equal(t, []layer.Name{layer.ExactPrefix, layer.FullText}, out.LayersUsed)
	assert.False(t, out.FallbackUsed)
	assert.Equal(t, 11, out.TotalCandidates)
	assert.Equal(t, "exact", out.Results[0].ID())
	assert.Equal(t, []string{"title", "exact_prefix", "full_text"}, out.Results[0].MatchCategories())

	r := findResult(&out, "d03")
	require.NotNil(t, r)
	assert.Equal(t, []string{"description", "full_text"}, r.MatchCategories())
	assert.Contains(t, r.Snippet(), "software engineer")
}

func TestSearch_MisspelledQuerySuggestsSpelling(t *testing.T) {
	store := newMemStore(
		posting("se", "Software Engineer", "Acme", "Berlin", "", 10*day),
		posting("rn", "Registered Nurse", "General Hospital", "Boston", "", day),
		posting("ac", "Accountant", "Ledger Partners", "Chicago", "", 2*day),
	)
	svc, _ := newTestService(t, store, nil, Config{})

	out, err := svc.Search(context.Background(), newRequest(t, "sofware enginer"))
	require.NoError(t, err)

	assert.Equal(t, "Software Engineer", out.DidYouMean)
	assert.Contains(t, out.LayersUsed, layer.Fuzzy)
	require.NotEmpty(t, out.Results)
	assert.Equal(t, "se", out.Results[0].ID())
	assert.Contains(t, out.Results[0].MatchCategories(), "fuzzy")
	assert.Contains(t, out.Results[0].MatchCategories(), "title")
	assert.Contains(t, out.Results[0].WhyMatched(), `"Software Engineer"`)
}

func TestSearch_NoSpellingSuggestionWhenTextLayersHit(t *testing.T) {
	store := newMemStore(
		posting("se", "Software Engineer", "Acme", "Berlin", "", day),
		posting("sw", "Software Engineers Guild", "Acme", "Berlin", "", day),
	)
	svc, _ := newTestService(t, store, nil, Config{})

	out, err := svc.Search(context.Background(), newRequest(t, "software engineer"))
	require.NoError(t, err)
	assert.Empty(t, out.DidYouMean)
}

func TestSearch_SemanticMatchWithoutKeywordOverlap(t *testing.T) {
	store := newMemStore(
		withVector(posting("jd", "Junior Developer", "Startup", "Lisbon", "Ship features with a small team.", 3*day), 1, 0, 0),
		withVector(posting("cook", "Line Cook", "Diner", "Austin", "", day), 0, 1, 0),
	)
	embed := &fakeEmbedder{vectors: map[string][]float32{"coding job": {0.9, 0.1, 0}}}
	svc, _ := newTestService(t, store, embed, Config{})

	out, err := svc.Search(context.Background(), newRequest(t, "coding job"))
	require.NoError(t, err)

	assert.Equal(t, 1, embed.calls)
	assert.Contains(t, out.LayersUsed, layer.Semantic)
	require.NotEmpty(t, out.Results)
	assert.Equal(t, "jd", out.Results[0].ID())
	assert.Contains(t, out.Results[0].MatchCategories(), "semantic")

	cook := findResult(&out, "cook")
	require.NotNil(t, cook, "recency keeps the result set non-empty")
	assert.NotContains(t, cook.MatchCategories(), "semantic", "below the similarity floor")
}

func TestSearch_EmptyQueryReturnsMostRecent(t *testing.T) {
	svc, _ := newTestService(t, newMemStore(corpus()...), nil, Config{})

	out, err := svc.Search(context.Background(), newRequest(t, "   "))
	require.NoError(t, err)

	assert.Equal(t, []layer.Name{layer.Recency}, out.LayersUsed)
	assert.True(t, out.FallbackUsed)
	assert.Equal(t, result.QueryEmpty, out.Query.Type)
	assert.Equal(t, 15, out.TotalCandidates)
	assert.Equal(t, "j01", out.Results[0].ID())
	assert.Equal(t, "j15", out.Results[14].ID())
	assert.Equal(t, []string{"recency"}, out.Results[0].MatchCategories())
	assert.Equal(t, "Recently posted", out.Results[0].WhyMatched())
}

func TestSearch_EmptyStore(t *testing.T) {
	for _, q := range []string{"", "software engineer"} {
		t.Run(q, func(t *testing.T) {
			svc, _ := newTestService(t, newMemStore(), nil, Config{})

			out, err := svc.Search(context.Background(), newRequest(t, q))
			require.NoError(t, err)
			assert.Empty(t, out.Results)
			assert.NotNil(t, out.Results)
			assert.Zero(t, out.Pagination.Total)
			assert.Zero(t, out.Pagination.TotalPages)
			assert.Equal(t, result.Exhausted, out.State)
		})
	}
}

func TestSearch_StoreUnavailable(t *testing.T) {
	store := newMemStore(corpus()...)
	for _, op := range []string{opExact, opFullText, opSimilar, opNearest, opAnyToken, opRecent} {
		store.errs[op] = errors.New("dial tcp: connection refused")
	}
	svc, rec := newTestService(t, store, nil, Config{})

	_, err := svc.Search(context.Background(), newRequest(t, "nurse"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Empty(t, rec.outcomes)
}

func TestSearch_LayerFailureIsNotFatal(t *testing.T) {
	store := newMemStore(corpus()...)
	store.errs[opFullText] = errors.New("statement timeout")
	store.errs[opRecent] = errors.New("statement timeout")
	svc, _ := newTestService(t, store, nil, Config{})

	out, err := svc.Search(context.Background(), newRequest(t, "engineer"))
	require.NoError(t, err)
	assert.Contains(t, out.LayersUsed, layer.FullText)
	assert.NotEmpty(t, out.Results)
	for i := range out.Results {
		assert.NotContains(t, out.Results[i].MatchCategories(), "full_text")
	}
}

func TestSearch_SemanticDisabledIsQuiet(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := logger.ContextWithLogger(context.Background(), zap.New(core))
	failures := metrics.SearchLayerFailuresTotal.WithLabelValues(string(layer.Semantic))
	before := testutil.ToFloat64(failures)

	svc, _ := newTestService(t, newMemStore(corpus()...), nil, Config{})
	out, err := svc.Search(ctx, newRequest(t, "nurse"))
	require.NoError(t, err)

	assert.Contains(t, out.LayersUsed, layer.Semantic)
	assert.InDelta(t, before, testutil.ToFloat64(failures), 1e-9)
	assert.Zero(t, logs.FilterMessage("Search layer failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("Search layer disabled").Len())
}

func TestSearch_SemanticTimeoutDegrades(t *testing.T) {
	store := newMemStore(corpus()...)
	embed := &fakeEmbedder{block: true}
	svc, _ := newTestService(t, store, embed, Config{SemanticTimeout: 20 * time.Millisecond})

	start := time.Now()
	out, err := svc.Search(context.Background(), newRequest(t, "nurse"))
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Contains(t, out.LayersUsed, layer.Semantic)
	assert.Contains(t, out.LayersUsed, layer.Recency)
	assert.Equal(t, "j03", out.Results[0].ID())
	assert.Zero(t, store.calls[opNearest])
}

func TestSearch_BasicModeSkipsEnhancedLayers(t *testing.T) {
	store := newMemStore(corpus()...)
	embed := &fakeEmbedder{vectors: map[string][]float32{}}
	svc, _ := newTestService(t, store, embed, Config{})

	out, err := svc.Search(context.Background(), newRequest(t, "nurse", withMode(mode.Basic)))
	require.NoError(t, err)

	assert.Equal(t, []layer.Name{layer.ExactPrefix, layer.FullText, layer.Recency}, out.LayersUsed)
	assert.Zero(t, embed.calls)
	assert.Zero(t, store.calls[opSimilar])
	assert.Zero(t, store.calls[opAnyToken])
	assert.Equal(t, "j03", out.Results[0].ID())
}

func TestSearch_Filters(t *testing.T) {
	svc, _ := newTestService(t, newMemStore(corpus()...), nil, Config{})
	ctx := context.Background()

	t.Run("remote only", func(t *testing.T) {
		out, err := svc.Search(ctx, newRequest(t, "engineer", withFilters(filter.New("", true, filter.DateAll))))
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"j02", "j05", "j09", "j14"}, resultIDs(&out))
		assert.Equal(t, "j02", out.Results[0].ID())
	})

	t.Run("date window", func(t *testing.T) {
		out, err := svc.Search(ctx, newRequest(t, "", withFilters(filter.New("", false, filter.DateLastWeek))))
		require.NoError(t, err)
		assert.Len(t, out.Results, 7)
		for i := range out.Results {
			assert.False(t, out.Results[i].PostedAt().Before(testNow.Add(-7*day)))
		}
	})

	t.Run("location", func(t *testing.T) {
		out, err := svc.Search(ctx, newRequest(t, "acme", withFilters(filter.New("Berlin", false, ""))))
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"j01", "j08"}, resultIDs(&out))
	})
}

func TestSearch_Pagination(t *testing.T) {
	svc, _ := newTestService(t, newMemStore(corpus()...), nil, Config{})
	ctx := context.Background()

	all, err := svc.Search(ctx, newRequest(t, "", withPage(1, 50)))
	require.NoError(t, err)

	p1, err := svc.Search(ctx, newRequest(t, "", withPage(1, 10)))
	require.NoError(t, err)
	p2, err := svc.Search(ctx, newRequest(t, "", withPage(2, 10)))
	require.NoError(t, err)
	p3, err := svc.Search(ctx, newRequest(t, "", withPage(3, 10)))
	require.NoError(t, err)

	assert.Equal(t, result.Pagination{Page: 2, Limit: 10, Total: 15, TotalPages: 2}, p2.Pagination)
	assert.Len(t, p1.Results, 10)
	assert.Len(t, p2.Results, 5)
	assert.Empty(t, p3.Results)
	assert.Equal(t, resultIDs(&all), append(resultIDs(&p1), resultIDs(&p2)...))
}

func TestSearch_InvalidPaginationIsClamped(t *testing.T) {
	svc, _ := newTestService(t, newMemStore(corpus()...), nil, Config{})

	out, err := svc.Search(context.Background(), newRequest(t, "", withPage(-3, 0)))
	require.NoError(t, err)
	assert.Equal(t, 1, out.Pagination.Page)
	assert.Equal(t, 50, out.Pagination.Limit)
}

func TestSearch_HugePageReturnsEmptyPage(t *testing.T) {
	svc, _ := newTestService(t, newMemStore(corpus()...), nil, Config{})

	for _, page := range []int{288230376151711744, math.MaxInt, math.MaxInt / 50} {
		out, err := svc.Search(context.Background(), newRequest(t, "", withPage(page, 64)))
		require.NoError(t, err)
		assert.Empty(t, out.Results)
		assert.Equal(t, page, out.Pagination.Page)
		assert.Equal(t, 15, out.Pagination.Total)
	}
}

func TestPageStart(t *testing.T) {
	tests := []struct {
		name string
		pg   result.Pagination
		want int
	}{
		{"first page", result.Pagination{Page: 1, Limit: 10, Total: 15, TotalPages: 2}, 0},
		{"last page", result.Pagination{Page: 2, Limit: 10, Total: 15, TotalPages: 2}, 10},
		{"past the end", result.Pagination{Page: 3, Limit: 10, Total: 15, TotalPages: 2}, 15},
		{"empty", result.Pagination{Page: 1, Limit: 10}, 0},
		{"overflowing page", result.Pagination{Page: math.MaxInt, Limit: 100, Total: 3, TotalPages: 1}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pageStart(tt.pg))
		})
	}
}

func TestSearch_Properties(t *testing.T) {
	queries := []string{
		"software engineer", "Software Engineer", "sofware enginer", "nurse", "remote",
		"coding job", "swe", "zzzzzz", "", "acme berlin", "k8s", "data",
	}
	jobs := corpus()

	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			svc, _ := newTestService(t, newMemStore(jobs...), nil, Config{})
			ctx := context.Background()

			first, err := svc.Search(ctx, newRequest(t, q))
			require.NoError(t, err)
			second, err := svc.Search(ctx, newRequest(t, q))
			require.NoError(t, err)

			// non-emptiness
			assert.GreaterOrEqual(t, len(first.Results), min(DefaultMinResults, len(jobs)))
			// determinism
			assert.Equal(t, resultIDs(&first), resultIDs(&second))

			seen := map[string]bool{}
			for i := range first.Results {
				r := &first.Results[i]
				assert.False(t, seen[r.ID()], "duplicate %s", r.ID())
				seen[r.ID()] = true
				if i > 0 {
					assert.GreaterOrEqual(t, first.Results[i-1].Score(), r.Score())
				}
			}

			fallback := false
			for _, n := range first.LayersUsed {
				fallback = fallback || n == layer.BroadToken || n == layer.Recency
			}
			assert.Equal(t, fallback, first.FallbackUsed)
		})
	}
}

func TestSearch_MonotonicEscalation(t *testing.T) {
	store := newMemStore(corpus()...)
	svc, _ := newTestService(t, store, nil, Config{MinResults: 2})

	out, err := svc.Search(context.Background(), newRequest(t, "acme"))
	require.NoError(t, err)

	assert.Equal(t, []layer.Name{layer.ExactPrefix}, out.LayersUsed)
	assert.Equal(t, 1, store.calls[opExact])
	for _, op := range []string{opFullText, opSimilar, opNearest, opAnyToken, opRecent} {
		assert.Zero(t, store.calls[op], op)
	}
}

func TestSearch_NeverStopsBeforeAPrimaryLayer(t *testing.T) {
	store := newMemStore(corpus()...)
	svc, _ := newTestService(t, store, nil, Config{MinResults: 1})

	// nothing but the recency fallback accepts an empty query, so the cascade exhausts
	out, err := svc.Search(context.Background(), newRequest(t, ""))
	require.NoError(t, err)
	assert.Equal(t, result.Exhausted, out.State)
}

func TestSearch_Cancellation(t *testing.T) {
	t.Run("before start", func(t *testing.T) {
		svc, rec := newTestService(t, newMemStore(corpus()...), nil, Config{})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := svc.Search(ctx, newRequest(t, "nurse"))
		require.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, rec.outcomes)
	})

	t.Run("mid cascade", func(t *testing.T) {
		store := newMemStore(corpus()...)
		ctx, cancel := context.WithCancel(context.Background())
		store.before = func(_ context.Context, op string) {
			if op == opFullText {
				cancel()
			}
		}
		svc, rec := newTestService(t, store, nil, Config{})

		_, err := svc.Search(ctx, newRequest(t, "nurse"))
		require.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, store.calls[opSimilar])
		assert.Empty(t, rec.outcomes)
	})
}

func TestSearch_RecordsOutcome(t *testing.T) {
	svc, rec := newTestService(t, newMemStore(corpus()...), nil, Config{})

	out, err := svc.Search(context.Background(), newRequest(t, "  Registered   NURSE "))
	require.NoError(t, err)

	require.Len(t, rec.outcomes, 1)
	assert.Equal(t, "registered nurse", rec.queries[0].Text)
	assert.Equal(t, out.TotalCandidates, rec.outcomes[0].TotalCandidates)
	assert.Equal(t, "registered nurse", out.Query.Normalized)
	assert.Equal(t, "  Registered   NURSE ", out.Query.Original)
	assert.Equal(t, result.QueryMultiTerm, out.Query.Type)
	assert.Len(t, out.LayerTimings, len(out.LayersUsed))
}

func TestSearch_SynonymExpansionReachesBroadToken(t *testing.T) {
	store := newMemStore(
		posting("k", "Platform Engineer", "Umbrella", "Remote", "", day),
		posting("x", "Accountant", "Ledger", "Chicago", "", 2*day),
	)
	svc, _ := newTestService(t, store, nil, Config{})

	out, err := svc.Search(context.Background(), newRequest(t, "k8s engineer"))
	require.NoError(t, err)

	r := findResult(&out, "k")
	require.NotNil(t, r)
	assert.Contains(t, r.MatchCategories(), "broad_token")
	assert.True(t, out.FallbackUsed)
	assert.Contains(t, out.Query.Tokens, "kubernetes")
}

func TestQueryType(t *testing.T) {
	svc, _ := newTestService(t, newMemStore(), nil, Config{})
	assert.Equal(t, result.QueryEmpty, queryType(svc.Normalize("!!")))
	assert.Equal(t, result.QuerySingleTerm, queryType(svc.Normalize("swe")))
	assert.Equal(t, result.QueryMultiTerm, queryType(svc.Normalize("go developer")))
}

func TestSnippet(t *testing.T) {
	long := strings.Repeat("lorem ipsum dolor ", 20) + "we need a Kubernetes expert " + strings.Repeat("sit amet ", 30)

	s := snippet(long, []string{"kubernetes"}, 160)
	assert.LessOrEqual(t, len([]rune(s)), 160)
	assert.Contains(t, s, "Kubernetes")

	assert.Equal(t, "short text", snippet("  short   text ", []string{"x"}, 160))
	assert.True(t, strings.HasPrefix(snippet(long, []string{"absent"}, 160), "lorem ipsum"))

	tail := strings.Repeat("a ", 100) + "needle"
	s = snippet(tail, []string{"needle"}, 50)
	assert.Len(t, []rune(s), 50)
	assert.True(t, strings.HasSuffix(s, "needle"))
}

func TestLimits_For(t *testing.T) {
	assert.Equal(t, DefaultLayerLimit, Limits{}.For(layer.Fuzzy))
	assert.Equal(t, 7, Limits{Semantic: 7}.For(layer.Semantic))
}
