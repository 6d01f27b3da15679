// Command indexer is the offline index build: it chunks a source text file,
// embeds each chunk, and writes the vector records the query path reads.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/elsinore-cloud/hamletqa/internal/config"
	dbRedis "github.com/elsinore-cloud/hamletqa/internal/db/redis"
	"github.com/elsinore-cloud/hamletqa/internal/indexer"
	logpkg "github.com/elsinore-cloud/hamletqa/internal/logger"
	openaiGw "github.com/elsinore-cloud/hamletqa/internal/transport/openai"
)

func main() {
	var (
		file      = flag.String("file", "", "path to the markdown/text source file (required)")
		title     = flag.String("title", "Hamlet", "document title stored with every chunk")
		chunkSize = flag.Int("chunk-size", indexer.DefaultChunkSize, "target chunk size in characters")
		overlap   = flag.Int("overlap", indexer.DefaultChunkOverlap, "chunk overlap in characters")
	)
	flag.Parse()

	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	if *file == "" {
		logger.Fatal("missing -file flag")
	}

	source, err := os.ReadFile(*file)
	if err != nil {
		logger.Fatal("Failed to read source file", zap.String("file", *file), zap.Error(err))
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create vector store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Vector store not ready", zap.Error(err))
	}

	embedder := openaiGw.NewEmbedder(&openaiGw.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})

	svc := indexer.New(
		store, embedder,
		indexer.NewChunker(*chunkSize, *overlap),
		cfg.Vector.Bucket, cfg.Vector.Index,
		logger,
	)

	report, err := svc.Build(ctx, string(source), *title)
	if err != nil {
		logger.Fatal("Index build failed", zap.Error(err))
	}

	logger.Info("Index build complete",
		zap.String("title", *title),
		zap.Int("chunks", report.Chunks),
		zap.Int("stored", report.Stored),
		zap.Int("skipped", report.Skipped),
	)
}
