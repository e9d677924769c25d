package search

import (
	"cmp"
	"slices"

	"github.com/kailas-cloud/jobsearch/internal/domain/search/candidate"
	"github.com/kailas-cloud/jobsearch/internal/domain/search/layer"
)

// Scoring holds the point values of the hybrid formula:
//
//	score = text*TextWeight + semantic*SemanticWeight + AgreementBonus*(matchedLayers-1)
//
// where text is the best of the exact/prefix, full-text, fuzzy and broad-token points.
type Scoring struct {
	Exact            float64
	Prefix           float64
	FullTextContains float64
	FullTextAllWords float64
	// FullTextRank is added on top of the full-text base, scaled by the store rank in [0, 1).
	FullTextRank   float64
	Fuzzy          float64
	BroadToken     float64
	Semantic       float64
	TextWeight     float64
	SemanticWeight float64
	AgreementBonus float64
	// Recency is the fixed score of postings only the recency fallback produced.
	Recency float64
}

// DefaultScoring returns the stock point values.
func DefaultScoring() Scoring {
	return Scoring{
		Exact:            1000,
		Prefix:           800,
		FullTextContains: 600,
		FullTextAllWords: 400,
		FullTextRank:     100,
		Fuzzy:            800,
		BroadToken:       300,
		Semantic:         1000,
		TextWeight:       0.6,
		SemanticWeight:   0.4,
		AgreementBonus:   50,
		Recency:          1,
	}
}

// withDefaults fills each zero point value from d. The weights are taken from d only
// when both are zero.
func (s Scoring) withDefaults(d Scoring) Scoring {
	for _, f := range []struct{ v, def *float64 }{
		{&s.Exact, &d.Exact},
		{&s.Prefix, &d.Prefix},
		{&s.FullTextContains, &d.FullTextContains},
		{&s.FullTextAllWords, &d.FullTextAllWords},
		{&s.FullTextRank, &d.FullTextRank},
		{&s.Fuzzy, &d.Fuzzy},
		{&s.BroadToken, &d.BroadToken},
		{&s.Semantic, &d.Semantic},
		{&s.AgreementBonus, &d.AgreementBonus},
		{&s.Recency, &d.Recency},
	} {
		if *f.v == 0 {
			*f.v = *f.def
		}
	}
	if s.TextWeight == 0 && s.SemanticWeight == 0 {
		s.TextWeight, s.SemanticWeight = d.TextWeight, d.SemanticWeight
	}
	return s
}

// scored is a candidate with its final score.
type scored struct {
	cand  candidate.Candidate
	score float64
	// matched is the number of query-matching layers.
	matched int
	// strongest is the layer that contributed the most weighted points.
	strongest layer.Name
}

// layerPoints returns the unweighted points a layer's signal is worth.
func (s Scoring) layerPoints(name layer.Name, sig candidate.Signal) float64 {
	switch name {
	case layer.ExactPrefix:
		if sig.Kind == candidate.KindExact {
			return s.Exact
		}
		return s.Prefix
	case layer.FullText:
		base := s.FullTextAllWords
		if sig.Kind == candidate.KindPhrase {
			base = s.FullTextContains
		}
		return base + s.FullTextRank*sig.Value
	case layer.Fuzzy:
		return s.Fuzzy * sig.Value
	case layer.Semantic:
		return s.Semantic * sig.Value
	case layer.BroadToken:
		return s.BroadToken * sig.Value
	default:
		return 0
	}
}

// Score computes the hybrid score of c.
func (s Scoring) Score(c candidate.Candidate) float64 {
	return s.score(c).score
}

func (s Scoring) score(c candidate.Candidate) scored {
	matched := c.MatchedLayers()
	out := scored{cand: c, matched: len(matched)}
	if len(matched) == 0 {
		out.score = s.Recency
		out.strongest = layer.Recency
		return out
	}

	var text, sem, best float64
	for _, name := range matched {
		sig, _ := c.Signal(name)
		pts := s.layerPoints(name, sig)
		weighted := pts * s.TextWeight
		if name == layer.Semantic {
			sem = pts
			weighted = pts * s.SemanticWeight
		} else if pts > text {
			text = pts
		}
		// matched is in priority order, so ties keep the higher-priority layer
		if out.strongest == "" || weighted > best {
			out.strongest, best = name, weighted
		}
	}

	score := text*s.TextWeight + sem*s.SemanticWeight + s.AgreementBonus*float64(len(matched)-1)
	out.score = max(score, 0)
	return out
}

// Rank scores and orders candidates: score desc, then more matched layers, newer posting,
// and lexical id.
func (s Scoring) Rank(cands []candidate.Candidate) []scored {
	out := make([]scored, 0, len(cands))
	for _, c := range cands {
		out = append(out, s.score(c))
	}
	slices.SortFunc(out, func(a, b scored) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		if c := cmp.Compare(b.matched, a.matched); c != 0 {
			return c
		}
		if c := b.cand.Doc().PostedAt().Compare(a.cand.Doc().PostedAt()); c != 0 {
			return c
		}
		return cmp.Compare(a.cand.ID(), b.cand.ID())
	})
	return out
}
