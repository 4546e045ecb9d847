package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"rag-learning/internal/api"
	"rag-learning/internal/api/handlers"
	"rag-learning/internal/repository"
	"rag-learning/internal/service"
	"rag-learning/pkg/config"
	"rag-learning/pkg/logger"
	"rag-learning/pkg/postgres"

	"go.uber.org/zap"
)

// @title RAG Learning API
// @version 1.0
// @description Retrieval-augmented tutoring service: knowledge-base ingestion, Socratic diagnostic conversations, competence analysis, and personalized study content.

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting RAG Learning service")

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.InitSchema(ctx, db, cfg.OpenRouter.EmbeddingDim, appLogger); err != nil {
		appLogger.Fatal("Failed to initialize database schema", zap.Error(err))
	}

	// Initialize repositories
	docRepo := repository.NewDocumentRepository(db, appLogger)
	convRepo := repository.NewConversationRepository(db, appLogger)
	profileRepo := repository.NewProfileRepository(db, appLogger)
	contentRepo := repository.NewContentRepository(db, appLogger)

	// Initialize services
	embeddingService := service.NewEmbeddingService(&cfg.OpenRouter, appLogger)
	llmService := service.NewLLMService(&cfg.Groq, appLogger)
	extractionService := service.NewExtractionService(llmService, &cfg.Groq, appLogger)
	chunker := service.NewChunker(&cfg.RAG)

	ingestionService := service.NewIngestionService(extractionService, chunker, embeddingService, docRepo, appLogger)
	ragService := service.NewRAGService(embeddingService, docRepo, appLogger)
	conversationService := service.NewConversationService(convRepo, ragService, llmService, &cfg.Groq, &cfg.RAG, appLogger)
	analysisService := service.NewAnalysisService(llmService, &cfg.Groq, appLogger)
	contentService := service.NewContentService(ragService, llmService, contentRepo, &cfg.Groq, &cfg.RAG, appLogger)

	orchestrator := service.NewOrchestrator(
		ingestionService,
		conversationService,
		analysisService,
		contentService,
		profileRepo,
		convRepo,
		appLogger,
	)

	// Initialize handlers
	ingestHandler := handlers.NewIngestHandler(orchestrator, appLogger)
	conversationHandler := handlers.NewConversationHandler(orchestrator, appLogger)

	// Setup router
	app := api.SetupRouter(ingestHandler, conversationHandler)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
