package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"aselo/backend/internal/config"
	"aselo/backend/internal/server"
	"aselo/backend/internal/store"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	ctx := context.Background()

	var st store.Store
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("database connect failed: %v", err)
		}
		st = pg
		log.Printf("using postgres store")
	} else {
		fs, err := store.NewFileStore(cfg.DBPath)
		if err != nil {
			log.Fatalf("file store init failed: %v", err)
		}
		st = fs
		log.Printf("using file store at %s", cfg.DBPath)
	}
	defer st.Close()

	var ai server.AIClient
	if strings.TrimSpace(cfg.OpenRouterAPIKey) == "" {
		log.Printf("OPENROUTER_API_KEY not set, using mock completions")
		ai = server.MockAIClient{}
	} else {
		ai = server.NewOpenRouterClient(cfg)
	}

	app := server.New(cfg, st, ai)
	httpServer := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           app.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("aselo api listening on http://localhost:%s", cfg.AppPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
