package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/goran-ethernal/StarkIndexor/internal/logger"
	"github.com/goran-ethernal/StarkIndexor/internal/validation"
	"github.com/goran-ethernal/StarkIndexor/pkg/config"
)

const shutdownCtxTimeout = 10 * time.Second

// Server represents the API HTTP server.
type Server struct {
	config   *config.APIConfig
	indexers IndexerProvider
	handler  *Handler
	server   *http.Server
	log      *logger.Logger
}

// NewServer creates a new API server.
func NewServer(cfg *config.APIConfig, indexers IndexerProvider, validator validation.CurveValidator,
	log *logger.Logger) *Server {
	handler := NewHandler(indexers, validator, cfg.MaxPageSize, cfg.MaxTransferAddresses, log)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handler.Health)
	mux.HandleFunc("GET /api/v1/indexers", handler.ListIndexers)

	// Per-indexer endpoints, keyed by "{chain}-{network}"
	mux.HandleFunc("GET /api/v1/{indexer}/resolve/{address}", handler.ResolveMetaID)
	mux.HandleFunc("GET /api/v1/{indexer}/check/{metaId}", handler.CheckMetaID)
	mux.HandleFunc("GET /api/v1/{indexer}/info", handler.GetInfo)
	mux.HandleFunc("GET /api/v1/{indexer}/info/count", handler.GetInfoCount)
	mux.HandleFunc("POST /api/v1/{indexer}/transfers", handler.GetTransfers)
	mux.HandleFunc("GET /api/v1/{indexer}/progress", handler.GetProgress)
	mux.Handle("POST /api/v1/{indexer}/stealth-info",
		JWTMiddleware(cfg.JWTSecret, log)(http.HandlerFunc(handler.SaveStealthInfo)))

	var h http.Handler = mux
	h = RecoveryMiddleware(log)(h)
	h = LoggingMiddleware(log)(h)

	if cfg.CORS.Enabled {
		h = CORSMiddleware(cfg.CORS.AllowedOrigins)(h)
	}

	httpServer := &http.Server{
		Addr:         cfg.ListenAddress,
		Handler:      h,
		ReadTimeout:  cfg.ReadTimeout.Duration,
		WriteTimeout: cfg.WriteTimeout.Duration,
		IdleTimeout:  cfg.IdleTimeout.Duration,
	}

	return &Server{
		config:   cfg,
		indexers: indexers,
		handler:  handler,
		server:   httpServer,
		log:      log,
	}
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start serves the API until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.log.Info("API server is disabled")
		return nil
	}

	s.log.Infof("Starting API server on %s", s.config.ListenAddress)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Errorf("API server error: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownCtxTimeout)
	defer cancel()

	s.log.Info("Shutting down API server...")
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("API server shutdown error: %w", err)
	}

	s.log.Info("API server stopped")
	return nil
}
