// pkg/server/server.go
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/David-Botos/erp-ingress/pkg/ingest"
	"github.com/David-Botos/erp-ingress/pkg/sink"
)

// Config holds HTTP server settings
type Config struct {
	Addr              string
	UploadDir         string
	MaxUploadBytes    int64
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
	HealthTimeout     time.Duration
}

// DefaultConfig returns the default server configuration
func DefaultConfig() Config {
	return Config{
		Addr:              ":8000",
		UploadDir:         "/tmp/uploads",
		MaxUploadBytes:    64 << 20,
		ReadHeaderTimeout: 10 * time.Second,
		ShutdownTimeout:   30 * time.Second,
		HealthTimeout:     5 * time.Second,
	}
}

// Server exposes the upload endpoints of the ingestion service
type Server struct {
	service  *ingest.Service
	batches  ingest.BatchProvider
	health   sink.Pinger
	gatherer prometheus.Gatherer
	config   Config
	logger   *zap.Logger
	router   *mux.Router
}

// New creates a server. health and gatherer may be nil.
func New(
	service *ingest.Service,
	batches ingest.BatchProvider,
	health sink.Pinger,
	gatherer prometheus.Gatherer,
	config Config,
	logger *zap.Logger,
) (*Server, error) {
	if service == nil {
		return nil, errors.New("service cannot be nil")
	}
	if batches == nil {
		batches = ingest.UUIDProvider{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		service:  service,
		batches:  batches,
		health:   health,
		gatherer: gatherer,
		config:   config,
		logger:   logger.Named("http"),
		router:   mux.NewRouter(),
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.router.Use(s.logRequests)

	s.router.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	for _, src := range s.service.Catalog().Sources() {
		s.router.HandleFunc("/upload_"+src.Route, s.handleUpload(src.Tag)).Methods(http.MethodPost)
	}
	s.router.HandleFunc("/upload_material_master", s.handleMasterUpload).Methods(http.MethodPost)
	s.router.HandleFunc("/upload/{source}", s.handleUploadBySource).Methods(http.MethodPost)
}

// Handler returns the router wrapped with a permissive CORS policy
func (s *Server) Handler() http.Handler {
	return cors.AllowAll().Handler(s.router)
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", s.config.Addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

// statusRecorder captures the response status for request logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("Request handled",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}
