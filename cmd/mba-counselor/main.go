package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"mba-counselor/internal/api"
	"mba-counselor/internal/api/handlers"
	"mba-counselor/internal/repository"
	"mba-counselor/internal/service"
	"mba-counselor/pkg/config"
	"mba-counselor/pkg/logger"
	"mba-counselor/pkg/postgres"

	"go.uber.org/zap"
)

// @title MBA Counselor API
// @version 1.0
// @description Conversational MBA program recommendation service

// @contact.name API Support

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
	appLogger.Info("Starting MBA counselor service")

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	embeddingRepo := repository.NewEmbeddingRepository(db, appLogger)
	conversationRepo := repository.NewConversationRepository(db, appLogger)

	// Initialize services
	llmService, err := service.NewLLMService(&cfg.GigaChat, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize LLM service", zap.Error(err))
	}
	defer llmService.Close()

	prefService := service.NewPreferenceService(llmService, appLogger)
	plannerService := service.NewPlannerService(llmService, &cfg.Recommend, appLogger)
	rankingService := service.NewRankingService(&cfg.Recommend, appLogger)
	composerService := service.NewComposerService()

	sessionStore := service.NewSessionStore(cfg.Session.TTL, appLogger)
	defer sessionStore.Close()

	chatService := service.NewChatService(
		prefService,
		plannerService,
		rankingService,
		composerService,
		embeddingRepo,
		conversationRepo,
		llmService,
		&cfg.GigaChat,
		appLogger,
	)

	// Initialize handlers
	chatHandler := handlers.NewChatHandler(chatService, sessionStore, conversationRepo, embeddingRepo, llmService, appLogger)

	// Setup router
	app := api.SetupRouter(chatHandler)

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
