package candidate

import (
	"slices"

	"github.com/kailas-cloud/jobsearch/internal/domain/job"
	"github.com/kailas-cloud/jobsearch/internal/domain/search/layer"
)

// Kind qualifies what a raw signal measures.
type Kind string

// Signal kinds.
const (
	// KindExact and KindPrefix carry no magnitude; Value is 1.
	KindExact  Kind = "exact"
	KindPrefix Kind = "prefix"
	// KindPhrase is a full-text hit whose lookup field contains the whole query; Value is the store rank.
	KindPhrase Kind = "phrase"
	// KindAllWords is a full-text hit on individual words; Value is the store rank.
	KindAllWords Kind = "all_words"
	// KindSimilarity is a trigram similarity in [0, 1].
	KindSimilarity Kind = "similarity"
	// KindCosine is a cosine similarity in [0, 1].
	KindCosine Kind = "cosine"
	// KindFraction is the share of query tokens found, in (0, 1].
	KindFraction Kind = "fraction"
	// KindRecent carries no magnitude.
	KindRecent Kind = "recent"
)

// Signal is the raw match evidence one layer produced for a posting.
type Signal struct {
	Kind  Kind
	Value float64
	// Hint is the display text the signal was strongest against (e.g. the fuzzy-matched title).
	Hint string
}

// Candidate is a posting plus the raw signals of every layer that produced it.
type Candidate struct {
	doc     job.Document
	signals map[layer.Name]Signal
	fields  []job.Field
}

// New creates a single-layer candidate. Fields lists the document fields the layer matched.
func New(doc job.Document, name layer.Name, sig Signal, fields ...job.Field) Candidate {
	c := Candidate{
		doc:     doc,
		signals: map[layer.Name]Signal{name: sig},
	}
	c.addFields(fields)
	return c
}

// ID returns the posting identifier.
func (c Candidate) ID() string { return c.doc.ID() }

// Doc returns the posting.
func (c Candidate) Doc() *job.Document { return &c.doc }

// Signal returns the raw signal a layer produced, if any.
func (c Candidate) Signal(name layer.Name) (Signal, bool) {
	s, ok := c.signals[name]
	return s, ok
}

// Layers returns every contributing layer in priority order.
func (c Candidate) Layers() []layer.Name {
	out := make([]layer.Name, 0, len(c.signals))
	for n := range c.signals {
		out = append(out, n)
	}
	slices.SortFunc(out, func(a, b layer.Name) int { return a.Priority() - b.Priority() })
	return out
}

// MatchedLayers returns contributing layers that count as query matches, in priority order.
func (c Candidate) MatchedLayers() []layer.Name {
	all := c.Layers()
	out := all[:0:0]
	for _, n := range all {
		if n.CountsAsMatch() {
			out = append(out, n)
		}
	}
	return out
}

// Fields returns the matched document fields in weight order.
func (c Candidate) Fields() []job.Field { return c.fields }

// Merge returns the union of c and other, which must reference the same posting.
// When both carry a signal for the same layer the stronger one is kept.
func (c Candidate) Merge(other Candidate) Candidate {
	merged := Candidate{
		doc:     c.doc,
		signals: make(map[layer.Name]Signal, len(c.signals)+len(other.signals)),
	}
	for n, s := range c.signals {
		merged.signals[n] = s
	}
	for n, s := range other.signals {
		if cur, ok := merged.signals[n]; !ok || stronger(s, cur) {
			merged.signals[n] = s
		}
	}
	merged.addFields(c.fields)
	merged.addFields(other.fields)
	return merged
}

func (c *Candidate) addFields(fields []job.Field) {
	for _, f := range fields {
		if !slices.Contains(c.fields, f) {
			c.fields = append(c.fields, f)
		}
	}
	slices.SortFunc(c.fields, func(a, b job.Field) int { return fieldRank(a) - fieldRank(b) })
}

func fieldRank(f job.Field) int {
	switch f {
	case job.FieldTitle:
		return 0
	case job.FieldCompany:
		return 1
	case job.FieldLocation:
		return 2
	default:
		return 3
	}
}

// stronger orders signals of the same layer: exact beats prefix, phrase beats all-words,
// otherwise the larger value wins.
func stronger(a, b Signal) bool {
	if ra, rb := kindRank(a.Kind), kindRank(b.Kind); ra != rb {
		return ra > rb
	}
	return a.Value > b.Value
}

func kindRank(k Kind) int {
	switch k {
	case KindExact, KindPhrase:
		return 1
	default:
		return 0
	}
}
