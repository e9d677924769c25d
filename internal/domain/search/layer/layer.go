package layer

// Name identifies a retrieval layer. The string value is part of the wire format
// (layersUsed, matchCategories).
type Name string

// Retrieval layers, declared in cascade order.
const (
	ExactPrefix Name = "exact_prefix"
	FullText    Name = "full_text"
	Fuzzy       Name = "fuzzy"
	Semantic    Name = "semantic"
	BroadToken  Name = "broad_token"
	Recency     Name = "recency"
)

var priorities = map[Name]int{
	ExactPrefix: 1,
	FullText:    2,
	Fuzzy:       3,
	Semantic:    4,
	BroadToken:  5,
	Recency:     6,
}

// All returns every layer in priority order.
func All() []Name {
	return []Name{ExactPrefix, FullText, Fuzzy, Semantic, BroadToken, Recency}
}

// Priority returns the cascade position (lower runs first); 0 for unknown names.
func (n Name) Priority() int { return priorities[n] }

// IsValid reports whether n is a known layer.
func (n Name) IsValid() bool { return priorities[n] != 0 }

// IsFallback reports whether the layer only runs because stricter layers under-filled the result set.
func (n Name) IsFallback() bool { return n == BroadToken || n == Recency }

// IsPrimary reports whether the layer satisfies the cascade's precision requirement:
// the cascade never stops before one of these has run.
func (n Name) IsPrimary() bool { return n == ExactPrefix || n == FullText }

// CountsAsMatch reports whether a hit from this layer is evidence the posting matches the query.
// The recency fallback ignores the query text entirely.
func (n Name) CountsAsMatch() bool { return n != Recency }
