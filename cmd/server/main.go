package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"mindwell/internal/auth"
	"mindwell/internal/companion"
	"mindwell/internal/config"
	"mindwell/internal/llm"
	"mindwell/internal/logging"
	"mindwell/internal/quotes"
	"mindwell/internal/scheduler"
	"mindwell/internal/session"
	"mindwell/internal/userstore"
	"mindwell/internal/web"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()
	logger := logging.New(cfg.LogFilePath, cfg.Environment != "production")
	defer func() { _ = logger.Sync() }()

	store, err := userstore.NewFileStore(cfg.DataDir)
	if err != nil {
		logger.Fatalw("failed to init user store", "error", err)
	}
	sessions := session.NewManager(store, logger)

	factory := llm.NewFactory(cfg)
	llmClient, err := factory.CreateClient(cfg.LLMProvider, cfg.LLMModel)
	if err != nil {
		logger.Fatalw("failed to create llm client", "error", err)
	}

	comp := companion.New(llmClient, readSystemPrompt(logger, cfg.SystemPromptPath), logger)
	authSvc := auth.New(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL, cfg.JWTSecret)
	quoteClient := quotes.New(cfg.QuoteAPIURL, logger)

	sched := scheduler.New(logger)
	sched.SetQuoteRefresh(quoteClient.Refresh)
	if err := sched.Start(); err != nil {
		logger.Warnw("failed to start scheduler", "error", err)
	}
	defer sched.Stop()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	handlers := web.NewHandlers(sessions, comp, authSvc, quoteClient, logger)
	router := web.NewRouter(handlers, authSvc, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		logger.Infow("server listening", "port", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infow("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorw("shutdown failed", "error", err)
	}
	logger.Infow("server stopped")
}

func readSystemPrompt(logger *zap.SugaredLogger, path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warnw("system prompt file not found, using default", "path", path, "error", err)
		return ""
	}
	return string(data)
}
