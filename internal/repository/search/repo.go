// Package search retrieves nearest-neighbor documents from the external
// vector index and classifies its failures.
package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/elsinore-cloud/hamletqa/internal/db"
	"github.com/elsinore-cloud/hamletqa/internal/domain"
)

// store is the consumer interface for KNN search (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo implements the retrieval side of the query pipeline over a db store.
type Repo struct {
	store store
	index string
}

// New creates a retrieval repository scoped to the configured index.
func New(s store, indexName string) *Repo {
	return &Repo{store: s, index: indexName}
}

// TopK returns the k nearest documents to the query vector with metadata and
// distance. An empty slice is a valid, non-error outcome. Failures are
// classified: missing index, malformed query, or generic search failure.
func (r *Repo) TopK(ctx context.Context, vector []float32, k int) ([]domain.RetrievedDocument, error) {
	q := &db.KNNQuery{
		IndexName:    r.index,
		Vector:       vector,
		K:            k,
		ReturnFields: []string{"text", "title", "__vector_score"},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, classify(err)
	}

	if sr == nil || len(sr.Entries) == 0 {
		return nil, nil
	}

	docs := make([]domain.RetrievedDocument, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		text := entry.Fields["text"]
		if text == "" {
			// A record without text cannot ground an answer; skip it
			// rather than failing the whole retrieval.
			continue
		}
		title := entry.Fields["title"]
		if title == "" {
			title = "Unknown"
		}
		docs = append(docs, domain.RetrievedDocument{
			Key:      entry.Key,
			Text:     text,
			Title:    title,
			Distance: entry.Distance,
		})
	}

	return docs, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, db.ErrIndexNotFound):
		return fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	case errors.Is(err, db.ErrBadQuery):
		return fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	default:
		return fmt.Errorf("%w: %w", domain.ErrSearchFailure, err)
	}
}
