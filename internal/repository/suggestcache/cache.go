// Package suggestcache caches suggestion responses in the key-value store.
package suggestcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/jobsearch/internal/db"
	"github.com/kailas-cloud/jobsearch/internal/domain/suggestion"
)

const keyPrefix = "sugg:"

// store is the consumer interface for the suggestion cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type envelope struct {
	Query        string   `json:"q"`
	Titles       []string `json:"t"`
	Companies    []string `json:"c"`
	Locations    []string `json:"l"`
	DidYouMean   string   `json:"d,omitempty"`
	FallbackUsed bool     `json:"f,omitempty"`
}

// Cache stores suggestion responses for a fixed TTL.
type Cache struct {
	store store
	ttl   time.Duration
}

// New creates a suggestion cache.
func New(s store, ttl time.Duration) *Cache {
	return &Cache{store: s, ttl: ttl}
}

// Get returns the cached suggestions. ok is false on a miss.
func (c *Cache) Get(
	ctx context.Context, category suggestion.Category, text string, limit int,
) (suggestion.Suggestions, bool, error) {
	data, err := c.store.Get(ctx, Key(category, text, limit))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return suggestion.Suggestions{}, false, nil
		}
		return suggestion.Suggestions{}, false, fmt.Errorf("get suggestions: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return suggestion.Suggestions{}, false, fmt.Errorf("decode suggestions: %w", err)
	}
	s := suggestion.Empty(env.Query)
	s.Titles = nonNil(env.Titles)
	s.Companies = nonNil(env.Companies)
	s.Locations = nonNil(env.Locations)
	s.DidYouMean = env.DidYouMean
	s.FallbackUsed = env.FallbackUsed
	return s, true, nil
}

// Put stores suggestions under (category, text, limit).
func (c *Cache) Put(
	ctx context.Context, category suggestion.Category, text string, limit int, s *suggestion.Suggestions,
) error {
	data, err := json.Marshal(envelope{
		Query:        s.Query,
		Titles:       s.Titles,
		Companies:    s.Companies,
		Locations:    s.Locations,
		DidYouMean:   s.DidYouMean,
		FallbackUsed: s.FallbackUsed,
	})
	if err != nil {
		return fmt.Errorf("encode suggestions: %w", err)
	}
	if err := c.store.SetWithTTL(ctx, Key(category, text, limit), data, c.ttl); err != nil {
		return fmt.Errorf("put suggestions: %w", err)
	}
	return nil
}

// Key builds the cache key. text is hashed to keep keys bounded.
func Key(category suggestion.Category, text string, limit int) string {
	h := sha256.Sum256([]byte(text))
	return keyPrefix + string(category) + ":" + strconv.Itoa(limit) + ":" + hex.EncodeToString(h[:16])
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
