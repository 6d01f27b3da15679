// Package query sequences the three remote calls of the answer pipeline:
// embed the question, search the vector index, generate a grounded answer.
package query

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/elsinore-cloud/hamletqa/internal/domain"
	"github.com/elsinore-cloud/hamletqa/internal/logger"
	"github.com/elsinore-cloud/hamletqa/internal/metrics"
)

// Service orchestrates the retrieval-augmented answer pipeline. The calls are
// sequential and blocking: search depends on the embedding, generation on the
// search result. No retry; transient upstream failures surface immediately.
type Service struct {
	embed    Embedder
	retrieve Retriever
	generate Generator
	topK     int
}

// New creates a query service.
func New(embed Embedder, retrieve Retriever, generate Generator, topK int) *Service {
	return &Service{embed: embed, retrieve: retrieve, generate: generate, topK: topK}
}

// Answer runs the pipeline for a validated, sanitized question. Zero
// retrieved documents is not an error: the result carries the canned
// no-relevant-information answer and an empty source list.
func (s *Service) Answer(ctx context.Context, question string) (domain.QueryResult, error) {
	log := logger.FromContext(ctx)

	vector, err := s.embed.Embed(ctx, question)
	if err != nil {
		return domain.QueryResult{}, fmt.Errorf("embed question: %w", err)
	}

	docs, err := s.retrieve.TopK(ctx, vector, s.topK)
	if err != nil {
		return domain.QueryResult{}, fmt.Errorf("retrieve documents: %w", err)
	}

	metrics.RetrievalDocumentsFound.Observe(float64(len(docs)))
	log.Info("documents retrieved", zap.Int("count", len(docs)))

	if len(docs) == 0 {
		return domain.QueryResult{Answer: domain.NoRelevantInformationAnswer}, nil
	}

	answer, err := s.generate.Generate(ctx, question, docs)
	if err != nil {
		return domain.QueryResult{}, fmt.Errorf("generate answer: %w", err)
	}

	return domain.QueryResult{Answer: answer, Sources: docs}, nil
}
