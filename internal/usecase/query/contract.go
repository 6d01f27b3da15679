package query

import (
	"context"

	"github.com/elsinore-cloud/hamletqa/internal/domain"
)

// Embedder vectorizes text into an embedding.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Retriever returns the k nearest documents to a query vector.
type Retriever interface {
	TopK(ctx context.Context, vector []float32, k int) ([]domain.RetrievedDocument, error)
}

// Generator produces a grounded answer from a question and retrieved documents.
type Generator interface {
	Generate(ctx context.Context, question string, docs []domain.RetrievedDocument) (string, error)
}
