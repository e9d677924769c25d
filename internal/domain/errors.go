package domain

import "errors"

var (
	// ErrInvalidQuery signals a search or suggestion request that cannot be interpreted.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrStoreUnavailable signals that the job document store cannot be reached at all.
	ErrStoreUnavailable = errors.New("document store unavailable")
	// ErrVectorDimMismatch signals a query embedding whose size differs from the stored vectors.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrEmbeddingQuotaExceeded signals an exhausted embedding budget.
	ErrEmbeddingQuotaExceeded = errors.New("embedding quota exceeded")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrEmbeddingUnavailable signals that no embedder is configured.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")
)
