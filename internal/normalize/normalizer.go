// Package normalize turns raw query text into the canonical form every retrieval layer matches on.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxTokens caps the token list (original plus expansions) of a single query.
const MaxTokens = 32

// maxPhraseWords is the longest synonym key looked up, in words.
const maxPhraseWords = 3

// Query is the normalized form of a raw query string.
type Query struct {
	// Text is the normalized query as typed, without synonym expansion.
	Text string
	// Tokens holds the words of Text followed by synonym expansions, deduplicated.
	Tokens []string
	// Expanded reports whether the synonym table added at least one token.
	Expanded bool
}

// IsEmpty reports whether nothing matchable survived normalization.
func (q Query) IsEmpty() bool { return q.Text == "" }

// Words returns the tokens of the typed text only.
func (q Query) Words() []string {
	if q.Text == "" {
		return nil
	}
	return strings.Fields(q.Text)
}

// Normalizer is safe for concurrent use; it never mutates its synonym table after construction.
type Normalizer struct {
	synonyms Table
}

// New creates a Normalizer. A nil table disables expansion.
func New(synonyms Table) *Normalizer {
	return &Normalizer{synonyms: synonyms}
}

// Normalize lowercases, folds diacritics, strips everything outside letters, digits,
// spaces and hyphens, collapses whitespace and expands synonyms.
func (n *Normalizer) Normalize(raw string) Query {
	text := Field(raw)
	if text == "" {
		return Query{}
	}

	words := strings.Fields(text)
	tokens := make([]string, 0, len(words))
	seen := make(map[string]struct{}, len(words))
	add := func(tok string) bool {
		if tok == "" || len(tokens) >= MaxTokens {
			return false
		}
		if _, ok := seen[tok]; ok {
			return false
		}
		seen[tok] = struct{}{}
		tokens = append(tokens, tok)
		return true
	}
	for _, w := range words {
		add(w)
	}

	expanded := false
	for _, phrase := range phrases(words) {
		for _, exp := range n.synonyms.Lookup(phrase) {
			for _, tok := range strings.Fields(exp) {
				if add(tok) {
					expanded = true
				}
			}
		}
	}

	return Query{Text: text, Tokens: tokens, Expanded: expanded}
}

// Field normalizes a stored field value the same way query text is normalized, without
// synonym expansion. Ingestion writers use it to fill the *_normalized columns.
func Field(raw string) string {
	folded, _, err := transform.String(foldDiacritics(), raw)
	if err != nil {
		folded = raw
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range strings.ToLower(folded) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// foldDiacritics decomposes, drops combining marks and recomposes.
// A transformer is stateful, so one is built per call.
func foldDiacritics() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// phrases lists every 1..maxPhraseWords contiguous word window, longest first per start.
func phrases(words []string) []string {
	out := make([]string, 0, len(words)*maxPhraseWords)
	for i := range words {
		for size := maxPhraseWords; size >= 1; size-- {
			if i+size > len(words) {
				continue
			}
			out = append(out, strings.Join(words[i:i+size], " "))
		}
	}
	return out
}
