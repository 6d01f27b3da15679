package domain

import "errors"

// Upstream failure sentinels. Each gateway classifies remote failures into
// exactly one of these before returning; raw transport errors never cross a
// gateway boundary. The HTTP layer maps all of them to 503.
var (
	// ErrEmbeddingFailure signals a failed embedding service call.
	ErrEmbeddingFailure = errors.New("embedding generation failed")
	// ErrIndexUnavailable signals that the vector index does not exist.
	ErrIndexUnavailable = errors.New("vector index unavailable")
	// ErrInvalidQuery signals a malformed vector search query.
	ErrInvalidQuery = errors.New("invalid vector query")
	// ErrSearchFailure signals any other vector search failure.
	ErrSearchFailure = errors.New("vector search failed")
	// ErrRateLimited signals generation service throttling.
	ErrRateLimited = errors.New("generation rate limited")
	// ErrInvalidRequest signals a generation request the service rejected.
	ErrInvalidRequest = errors.New("invalid generation request")
	// ErrGenerationFailure signals any other generation failure.
	ErrGenerationFailure = errors.New("response generation failed")
)

// upstreamSentinels in classification order.
var upstreamSentinels = []error{
	ErrEmbeddingFailure,
	ErrIndexUnavailable,
	ErrInvalidQuery,
	ErrSearchFailure,
	ErrRateLimited,
	ErrInvalidRequest,
	ErrGenerationFailure,
}

// IsUpstream reports whether err is classified as an upstream dependency failure.
func IsUpstream(err error) bool {
	for _, s := range upstreamSentinels {
		if errors.Is(err, s) {
			return true
		}
	}
	return false
}

// UpstreamReason returns the sentinel text for a classified upstream error
// without exposing the wrapped detail. Empty string for unclassified errors.
func UpstreamReason(err error) string {
	for _, s := range upstreamSentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return ""
}
