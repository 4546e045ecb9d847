package main

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"rag-learning/internal/repository"
	"rag-learning/internal/service"
	"rag-learning/pkg/config"
	"rag-learning/pkg/logger"
	"rag-learning/pkg/postgres"

	"go.uber.org/zap"
)

func main() {
	seedDir := flag.String("dir", filepath.Join("cmd", "seed", "data"), "directory with source files to ingest")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	// Connect to database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.InitSchema(ctx, db, cfg.OpenRouter.EmbeddingDim, appLogger); err != nil {
		appLogger.Fatal("Failed to initialize database schema", zap.Error(err))
	}

	docRepo := repository.NewDocumentRepository(db, appLogger)
	embeddingService := service.NewEmbeddingService(&cfg.OpenRouter, appLogger)
	llmService := service.NewLLMService(&cfg.Groq, appLogger)
	extractionService := service.NewExtractionService(llmService, &cfg.Groq, appLogger)
	chunker := service.NewChunker(&cfg.RAG)
	ingestionService := service.NewIngestionService(extractionService, chunker, embeddingService, docRepo, appLogger)

	appLogger.Info("Starting knowledge base seeding", zap.String("dir", *seedDir))

	cacheFile := filepath.Join(*seedDir, ".seed_cache.json")
	if err := seedKnowledgeBase(ctx, *seedDir, cacheFile, ingestionService, appLogger); err != nil {
		appLogger.Fatal("Failed to seed knowledge base", zap.Error(err))
	}

	appLogger.Info("Knowledge base seeding completed")
}

// processedFile represents one ingested source file in the cache.
type processedFile struct {
	FilePath    string    `json:"file_path"`
	FileHash    string    `json:"file_hash"`
	ProcessedAt time.Time `json:"processed_at"`
}

type cacheData struct {
	ProcessedFiles map[string]processedFile `json:"processed_files"` // key: file path
}

func loadCache(cacheFile string) (*cacheData, error) {
	cache := &cacheData{
		ProcessedFiles: make(map[string]processedFile),
	}

	if _, err := os.Stat(cacheFile); os.IsNotExist(err) {
		return cache, nil
	}

	data, err := os.ReadFile(cacheFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	if len(data) == 0 {
		return cache, nil
	}

	if err := json.Unmarshal(data, cache); err != nil {
		return nil, fmt.Errorf("failed to parse cache file: %w", err)
	}

	return cache, nil
}

func saveCache(cacheFile string, cache *cacheData) error {
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}

	if err := os.WriteFile(cacheFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	return nil
}

func calculateFileHash(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", fmt.Errorf("failed to calculate hash: %w", err)
	}

	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}

// seedKnowledgeBase walks the seed directory and runs every supported file
// through the ingestion pipeline. A local hash cache skips unchanged files
// without a database round trip; the pipeline's own dedup still applies.
func seedKnowledgeBase(
	ctx context.Context,
	seedDir string,
	cacheFile string,
	ingestion *service.IngestionService,
	logger *zap.Logger,
) error {
	cache, err := loadCache(cacheFile)
	if err != nil {
		logger.Warn("Failed to load cache, will process all files", zap.Error(err))
		cache = &cacheData{ProcessedFiles: make(map[string]processedFile)}
	}

	entries, err := os.ReadDir(seedDir)
	if err != nil {
		return fmt.Errorf("failed to read seed directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == filepath.Base(cacheFile) {
			continue
		}

		path := filepath.Join(seedDir, entry.Name())

		fileHash, err := calculateFileHash(path)
		if err != nil {
			logger.Warn("Failed to calculate file hash, will process anyway", zap.String("path", path), zap.Error(err))
		}

		if cached, exists := cache.ProcessedFiles[path]; exists && cached.FileHash == fileHash {
			logger.Info("File already processed, skipping",
				zap.String("path", path),
				zap.Time("processed_at", cached.ProcessedAt),
			)
			continue
		}

		logger.Info("Ingesting file", zap.String("path", path))

		result, err := ingestion.Ingest(ctx, path, entry.Name())
		if err != nil {
			if errors.Is(err, service.ErrUnsupportedFormat) {
				logger.Warn("Unsupported file format, skipping", zap.String("path", path))
				continue
			}
			logger.Error("Failed to ingest file", zap.String("path", path), zap.Error(err))
			continue
		}

		if result.Skipped {
			logger.Info("Ingestion skipped",
				zap.String("path", path),
				zap.String("reason", result.Reason),
			)
		} else {
			logger.Info("File ingested",
				zap.String("path", path),
				zap.Int("chunks", result.InsertedChunks),
			)
		}

		cache.ProcessedFiles[path] = processedFile{
			FilePath:    path,
			FileHash:    fileHash,
			ProcessedAt: time.Now(),
		}
	}

	if err := saveCache(cacheFile, cache); err != nil {
		logger.Warn("Failed to save cache", zap.Error(err))
	} else {
		logger.Info("Cache saved", zap.Int("processed_files", len(cache.ProcessedFiles)))
	}

	return nil
}
