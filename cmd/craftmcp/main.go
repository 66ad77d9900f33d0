package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mattymil/craft-mcp-wrapper/internal/config"
	logpkg "github.com/mattymil/craft-mcp-wrapper/internal/logger"
	"github.com/mattymil/craft-mcp-wrapper/internal/metrics"
	"github.com/mattymil/craft-mcp-wrapper/internal/tools"
	"github.com/mattymil/craft-mcp-wrapper/internal/transport/craft"
	"github.com/mattymil/craft-mcp-wrapper/internal/transport/mcpserver"
	"github.com/mattymil/craft-mcp-wrapper/internal/transport/rest"
	"github.com/mattymil/craft-mcp-wrapper/internal/truncate"
	documentuc "github.com/mattymil/craft-mcp-wrapper/internal/usecase/document"
	searchuc "github.com/mattymil/craft-mcp-wrapper/internal/usecase/search"
	"github.com/mattymil/craft-mcp-wrapper/internal/version"
)

func main() {
	transport := flag.String("transport", "stdio", "serving mode: stdio, sse, or rest")
	flag.Parse()

	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting craft-mcp-wrapper",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.String("transport", *transport),
		zap.Int("documents", len(cfg.Documents)),
	)

	// Register tool and upstream metrics explicitly (no init())
	metrics.RegisterToolMetrics()

	// Composition root: one upstream client shared by both usecases.
	client := craft.NewClient(time.Duration(cfg.Upstream.TimeoutSec)*time.Second, logger)
	searchSvc := searchuc.New(cfg.Documents, client, logger)
	documentSvc := documentuc.New(cfg.Documents, client, logger)

	truncator := truncate.New(truncate.Options{
		BudgetFraction: cfg.Truncation.BudgetFraction,
		NestedDivisor:  cfg.Truncation.NestedDivisor,
		NestedArrayMin: cfg.Truncation.NestedArrayMin,
		MaxStringLen:   cfg.Truncation.MaxStringLen,
	})
	toolSvc := tools.New(searchSvc, documentSvc, truncator, cfg.Truncation.MaxResponseBytes, logger)

	serverVersion := cfg.Server.Version
	if serverVersion == "" {
		serverVersion = version.Version
	}

	switch *transport {
	case "stdio":
		server := mcpserver.New(toolSvc, cfg.Server.Name, serverVersion, logger)
		runStdio(server, logger)
	case "sse":
		server := mcpserver.New(toolSvc, cfg.Server.Name, serverVersion, logger)
		r := chi.NewRouter()
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		r.Get("/metrics", promhttp.Handler().ServeHTTP)
		r.Handle("/sse", mcpserver.SSEHandler(server))
		// No write timeout: the event stream stays open for the session.
		runHTTP(cfg, r, 0, logger)
	case "rest":
		restServer := rest.NewServer(toolSvc, cfg.Documents, client, logger)
		writeTimeout := time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second
		runHTTP(cfg, restServer.Router(cfg.HTTP.APIKeys), writeTimeout, logger)
	default:
		logger.Fatal("Unknown transport", zap.String("transport", *transport))
	}
}

// runStdio serves MCP on stdin/stdout until the client disconnects or a
// shutdown signal arrives. Logs go to stderr, stdout carries the protocol.
func runStdio(server *mcp.Server, logger *zap.Logger) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Serving MCP on stdio")
	if err := mcpserver.RunStdio(ctx, server); err != nil && ctx.Err() == nil {
		logger.Fatal("stdio session error", zap.Error(err))
	}
	logger.Info("Server stopped gracefully")
}

// runHTTP serves the given handler with graceful shutdown.
func runHTTP(cfg config.Config, handler http.Handler, writeTimeout time.Duration, logger *zap.Logger) {
	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: writeTimeout,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
