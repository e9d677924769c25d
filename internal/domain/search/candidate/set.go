package candidate

// Set is the per-request accumulator. It deduplicates by posting id and preserves
// first-seen order. Not safe for concurrent use.
type Set struct {
	order []string
	byID  map[string]Candidate
}

// NewSet creates an empty accumulator.
func NewSet() *Set {
	return &Set{byID: make(map[string]Candidate)}
}

// Add merges candidates into the set and returns how many new postings were added.
func (s *Set) Add(cands ...Candidate) int {
	added := 0
	for _, c := range cands {
		id := c.ID()
		if cur, ok := s.byID[id]; ok {
			s.byID[id] = cur.Merge(c)
			continue
		}
		s.byID[id] = c
		s.order = append(s.order, id)
		added++
	}
	return added
}

// Len returns the number of distinct postings.
func (s *Set) Len() int { return len(s.order) }

// All returns the candidates in first-seen order.
func (s *Set) All() []Candidate {
	out := make([]Candidate, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// Merge deduplicates a flat candidate list by posting id, unioning signals.
func Merge(cands []Candidate) []Candidate {
	s := NewSet()
	s.Add(cands...)
	return s.All()
}
