package search

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/kailas-cloud/jobsearch/internal/domain/job"
	"github.com/kailas-cloud/jobsearch/internal/domain/search/candidate"
	"github.com/kailas-cloud/jobsearch/internal/domain/search/layer"
	"github.com/kailas-cloud/jobsearch/internal/normalize"
)

// snippetLead is how much context precedes the first matched term in a snippet.
const snippetLead = 40

var fieldLabels = map[job.Field]string{
	job.FieldTitle:       "Title",
	job.FieldCompany:     "Company",
	job.FieldLocation:    "Location",
	job.FieldDescription: "Description",
}

// matchCategories lists matched fields followed by matching layer names.
func matchCategories(c candidate.Candidate) []string {
	fields := c.Fields()
	layers := c.MatchedLayers()
	out := make([]string, 0, len(fields)+len(layers)+1)
	for _, f := range fields {
		out = append(out, string(f))
	}
	if len(layers) == 0 {
		return append(out, string(layer.Recency))
	}
	for _, n := range layers {
		out = append(out, string(n))
	}
	return out
}

// whyMatched explains the strongest contributing layer in one sentence.
func whyMatched(s *scored, q normalize.Query) string {
	sig, _ := s.cand.Signal(s.strongest)
	field := firstLookupField(s.cand.Fields())

	switch s.strongest {
	case layer.ExactPrefix:
		if sig.Kind == candidate.KindExact {
			if field == "" {
				return fmt.Sprintf("Exact match for %q", q.Text)
			}
			return fmt.Sprintf("%s exactly matches %q", fieldLabels[field], q.Text)
		}
		if field == "" {
			return fmt.Sprintf("Starts with %q", q.Text)
		}
		return fmt.Sprintf("%s starts with %q", fieldLabels[field], q.Text)
	case layer.FullText:
		if sig.Kind == candidate.KindPhrase && field != "" {
			return fmt.Sprintf("%s contains %q", fieldLabels[field], q.Text)
		}
		return fmt.Sprintf("All words of %q found in %s", q.Text, fieldList(s.cand.Fields()))
	case layer.Fuzzy:
		target := q.Text
		if sig.Hint != "" {
			target = sig.Hint
		}
		return fmt.Sprintf("Close spelling match to %q (%d%% similar)", target, percent(sig.Value))
	case layer.Semantic:
		return fmt.Sprintf("Semantically related to %q (%d%% similar)", q.Text, percent(sig.Value))
	case layer.BroadToken:
		return fmt.Sprintf("Matches %d%% of the search terms in %s", percent(sig.Value), fieldList(s.cand.Fields()))
	default:
		if q.IsEmpty() {
			return "Recently posted"
		}
		return fmt.Sprintf("Recently posted; no direct match for %q", q.Text)
	}
}

func firstLookupField(fields []job.Field) job.Field {
	for _, f := range fields {
		if f != job.FieldDescription {
			return f
		}
	}
	return ""
}

func fieldList(fields []job.Field) string {
	if len(fields) == 0 {
		return "the posting"
	}
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

func percent(v float64) int {
	return int(math.Round(v * 100))
}

// snippet cuts up to n runes of desc around the first occurrence of any term, searching
// terms in order. Without an occurrence the description start is used.
func snippet(desc string, terms []string, n int) string {
	text := []rune(strings.Join(strings.Fields(desc), " "))
	if len(text) <= n {
		return string(text)
	}

	lower := make([]rune, len(text))
	for i, r := range text {
		lower[i] = unicode.ToLower(r)
	}

	at := -1
	for _, t := range terms {
		if i := indexRunes(lower, []rune(t)); i >= 0 {
			at = i
			break
		}
	}

	start := 0
	if at > snippetLead {
		start = at - snippetLead
		// back up to a word boundary
		for start > 0 && start > at-2*snippetLead && text[start-1] != ' ' {
			start--
		}
	}
	start = min(start, len(text)-n)
	return strings.TrimSpace(string(text[start : start+n]))
}

func indexRunes(s, sub []rune) int {
	if len(sub) == 0 {
		return -1
	}
	for i := 0; i+len(sub) <= len(s); i++ {
		match := true
		for j := range sub {
			if s[i+j] != sub[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
