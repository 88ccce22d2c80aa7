package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/telforge/phonegen/internal/config"
	"github.com/telforge/phonegen/internal/engine"
	"github.com/telforge/phonegen/internal/index"
	logpkg "github.com/telforge/phonegen/internal/logger"
	"github.com/telforge/phonegen/internal/metrics"
	"github.com/telforge/phonegen/internal/repository/artifact"
	"github.com/telforge/phonegen/internal/repository/records"
	"github.com/telforge/phonegen/internal/transport/httpapi"
	cataloguc "github.com/telforge/phonegen/internal/usecase/catalog"
	generateuc "github.com/telforge/phonegen/internal/usecase/generate"
	healthuc "github.com/telforge/phonegen/internal/usecase/health"
	"github.com/telforge/phonegen/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting phonegen API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_path", cfg.Database.Path),
		zap.String("download_dir", cfg.Download.Dir),
	)

	store, err := records.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatal("Failed to open record store", zap.Error(err))
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()

	recs, err := store.LoadAll(ctx)
	if err != nil {
		logger.Fatal("Failed to load allocation records", zap.Error(err))
	}
	if len(recs) == 0 {
		logger.Warn("Allocation table is empty, run 'phonegen import' first")
	}

	// A duplicate block would be enumerated twice, so a dirty table
	// stops the server before it takes any request.
	ix, err := index.New(recs)
	if err != nil {
		logger.Fatal("Failed to build lookup index", zap.Error(err))
	}
	logger.Info("Lookup index ready",
		zap.Int("records", ix.Size()),
		zap.Int("provinces", len(ix.Provinces())),
	)

	// Register generation metrics explicitly (no init())
	metrics.RegisterGeneratorMetrics()

	dispatcher, err := engine.NewDispatcher(cfg.Generator.Workers, logger)
	if err != nil {
		logger.Fatal("Failed to create worker pool", zap.Error(err))
	}
	defer dispatcher.Close()

	artifacts, err := artifact.NewStore(
		cfg.Download.Dir,
		int64(cfg.Download.FileSizeLimitMB)<<20,
		time.Duration(cfg.Download.ExpireHours)*time.Hour,
		logger,
	)
	if err != nil {
		logger.Fatal("Failed to prepare artifact store", zap.Error(err))
	}

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	janitor := artifact.NewJanitor(
		artifacts,
		time.Duration(cfg.Download.SweepIntervalMin)*time.Minute,
		metrics.ArtifactsSweptTotal,
		logger,
	)
	go janitor.Run(janitorCtx)

	sessions := httpapi.NewSessionAuth(httpapi.AuthConfig{
		Enabled:  cfg.Auth.Enabled,
		Username: cfg.Auth.Username,
		Password: cfg.Auth.Password,
		Secret:   cfg.Auth.Secret,
		TTL:      time.Duration(cfg.Auth.SessionTTLMin) * time.Minute,
	})

	server := httpapi.NewServer(
		cataloguc.New(ix),
		generateuc.New(ix, dispatcher, artifacts, cfg.Generator.MaxTotal, logger),
		artifacts,
		healthuc.New(store, artifacts),
		sessions,
		logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(sessions.Middleware())
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
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
	return nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
