package indexer

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/elsinore-cloud/hamletqa/internal/db"
)

// embedder vectorizes chunk text (ISP: the indexer needs only Embed).
type embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// store is the write side of the vector index.
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Service builds the vector index from raw source text. This is the offline
// collaborator of the query path; the record schema written here
// ({uuid key, text, title, vector}) is exactly what retrieval reads back.
type Service struct {
	store   store
	embed   embedder
	chunker *Chunker
	bucket  string
	index   string
	logger  *zap.Logger
}

// New creates an indexer service scoped to the configured bucket and index.
func New(s store, e embedder, c *Chunker, bucket, index string, logger *zap.Logger) *Service {
	return &Service{store: s, embed: e, chunker: c, bucket: bucket, index: index, logger: logger}
}

// Report summarizes an index build.
type Report struct {
	Chunks  int
	Stored  int
	Skipped int
}

// Build chunks the source text, embeds each chunk, and stores the records.
// Per-chunk embedding failures are logged and skipped; the build fails only
// when nothing could be stored or the write itself fails.
func (s *Service) Build(ctx context.Context, sourceText, title string) (Report, error) {
	chunks := s.chunker.Chunk(sourceText)
	if len(chunks) == 0 {
		return Report{}, errors.New("source text produced no chunks")
	}
	s.logger.Info("split source text", zap.Int("chunks", len(chunks)), zap.String("title", title))

	report := Report{Chunks: len(chunks)}
	items := make([]db.HashSetItem, 0, len(chunks))
	var dim int

	for i, chunk := range chunks {
		vector, err := s.embed.Embed(ctx, chunk)
		if err != nil {
			s.logger.Warn("embedding chunk failed, skipping",
				zap.Int("chunk", i), zap.Error(err))
			report.Skipped++
			continue
		}
		dim = len(vector)

		items = append(items, db.HashSetItem{
			Key: fmt.Sprintf("%s:%s", s.bucket, uuid.NewString()),
			Fields: map[string]string{
				"text":   chunk,
				"title":  title,
				"vector": vectorToBytes(vector),
			},
		})
	}

	if len(items) == 0 {
		return report, errors.New("no chunks could be embedded")
	}

	if err := s.ensureIndex(ctx, dim); err != nil {
		return report, fmt.Errorf("ensure index: %w", err)
	}

	if err := s.store.HSetMulti(ctx, items); err != nil {
		return report, fmt.Errorf("store vectors: %w", err)
	}

	report.Stored = len(items)
	s.logger.Info("stored vectors", zap.Int("count", report.Stored), zap.Int("skipped", report.Skipped))
	return report, nil
}

// ensureIndex creates the FT index over the bucket prefix if it is absent.
func (s *Service) ensureIndex(ctx context.Context, dim int) error {
	exists, err := s.store.IndexExists(ctx, s.index)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:     s.index,
		Prefixes: []string{s.bucket + ":"},
		Fields: []db.IndexField{
			{Name: "text", Type: db.IndexFieldText},
			{Name: "title", Type: db.IndexFieldTag},
			{
				Name:           "vector",
				Type:           db.IndexFieldVector,
				VectorAlgo:     db.VectorHNSW,
				VectorDim:      dim,
				VectorDistance: db.DistanceCosine,
			},
		},
	}
	if err := def.Validate(); err != nil {
		return err
	}

	if err := s.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return err
	}
	s.logger.Info("created vector index", zap.String("index", s.index), zap.Int("dimensions", dim))
	return nil
}

func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
