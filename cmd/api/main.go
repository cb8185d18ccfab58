package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/zhouzirui/startup-mentor/backend/internal/config"
	"github.com/zhouzirui/startup-mentor/backend/internal/handler"
	"github.com/zhouzirui/startup-mentor/backend/internal/logging"
	"github.com/zhouzirui/startup-mentor/backend/internal/model/mentor"
	"github.com/zhouzirui/startup-mentor/backend/internal/service/ai"
	"github.com/zhouzirui/startup-mentor/backend/internal/service/chat"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck
	zap.ReplaceGlobals(logger)

	if envErr != nil {
		logger.Debug("no .env file loaded, using process environment", zap.Error(envErr))
	}

	mentors, err := mentor.LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		logger.Fatal("failed to load mentor catalog", zap.String("path", cfg.Catalog.Path), zap.Error(err))
	}
	store := mentor.NewMemoryStore(mentors)
	logger.Info("mentor catalog loaded", zap.Int("mentors", len(mentors)))

	transport, err := ai.NewTransport(ctx, cfg.AI, logger)
	if err != nil {
		logger.Warn("failed to initialize completion backend, falling back to scripted replies",
			zap.String("backend", cfg.AI.Backend), zap.Error(err))
		transport = ai.NewScriptedTransport(cfg.AI.Scripted.FragmentDelay)
	}
	logger.Info("completion backend ready", zap.String("backend", transport.Name()))

	chatService := chat.NewService(store, transport, logger, cfg.AI.TurnTimeout)
	defer chatService.Shutdown()

	router := handler.NewRouter(store, chatService, logger)

	startServer(ctx, logger, cfg.Server, router)
}

func startServer(ctx context.Context, logger *zap.Logger, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("startup mentor backend listening", zap.String("addr", addr))
	if err := runServer(ctx, srv); err != nil {
		logger.Error("server error", zap.Error(err))
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
