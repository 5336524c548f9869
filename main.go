package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/varsilias/stockscope/internal/api"
	"github.com/varsilias/stockscope/internal/buildinfo"
	"github.com/varsilias/stockscope/internal/chat"
	"github.com/varsilias/stockscope/internal/config"
	"github.com/varsilias/stockscope/internal/history"
	"github.com/varsilias/stockscope/internal/llm"
	"github.com/varsilias/stockscope/internal/logging"
	"github.com/varsilias/stockscope/internal/middleware"
	"github.com/varsilias/stockscope/internal/quote"
	"github.com/varsilias/stockscope/internal/relay"
	"github.com/varsilias/stockscope/internal/session"
	"github.com/varsilias/stockscope/internal/ui"
)

func main() {
	cfg := config.Load()

	addr := flag.String("addr", cfg.Addr, "HTTP listen address")
	level := flag.String("log-level", cfg.LogLevel, "log level: debug|info|warn|error")
	json := flag.Bool("log-json", cfg.LogJSON, "log as JSON")
	dbPath := flag.String("history-db", cfg.HistoryDBPath, "path to the history database")
	flag.Parse()

	logger := logging.New(*level, *json)
	logger.Info("build", "version", buildinfo.Version, "commit", buildinfo.Commit, "built_at", buildinfo.BuiltAt)
	logger.Info("starting", "port", *addr, "quote_feed", cfg.QuoteBaseURL, "history_db", *dbPath)

	store, err := history.Open(*dbPath)
	if err != nil {
		logger.Error("history store", "err", err)
		os.Exit(1)
	}
	defer store.Close()

	sessions := session.NewStore()
	registry := relay.NewRegistry()
	llmClient := llm.NewClient(logger)
	quotes := quote.NewClient(cfg.QuoteBaseURL, logger)
	streamRelay := relay.New(logger, llmClient, registry, cfg.UpstreamIdleTimeout)
	chatCtrl := chat.NewController(logger, streamRelay, sessions, quotes, store)

	uih, err := ui.New(logger, store)
	if err != nil {
		logger.Error("ui init", "err", err)
		os.Exit(1)
	}

	h := api.NewHandlers(logger, chatCtrl, sessions, registry, quotes, store)
	mux := chi.NewRouter()

	mux.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir("web/static"))))

	ui.RegisterRoutes(mux, uih)
	api.RegisterRoutes(mux, h)

	var handler http.Handler = mux
	handler = middleware.Recoverer(logger)(handler)
	handler = middleware.RequestID()(handler)
	handler = middleware.AccessLog(logger)(handler)
	handler = middleware.VersionHeader()(handler)

	server := http.Server{
		Addr:              fmt.Sprintf(":%s", *addr),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		// Long streams: an analysis can take minutes end to end.
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	go func() { errChan <- server.ListenAndServe() }()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	case sig := <-sigChan:
		logger.Info("shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	} else {
		logger.Info("server stopped")
	}
}
