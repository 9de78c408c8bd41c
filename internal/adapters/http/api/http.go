// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	repository "github.com/okian/hypetorch/internal/adapters/repository"
	service "github.com/okian/hypetorch/internal/app"
	"github.com/okian/hypetorch/internal/domain/types"
	"github.com/okian/hypetorch/pkg/logger"
)

// DefaultMaxUploadBytes bounds upload bodies when no limit is configured.
const DefaultMaxUploadBytes int64 = 32 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ListEntities(ctx context.Context) ([]string, error)
	Entity(ctx context.Context, id string) (types.EntityRecord, error)
	EntityMetrics(ctx context.Context, id string) (types.EntityMetrics, error)
	EntityTrending(ctx context.Context, id string) (types.EntityTrending, error)
	LastUpdated(ctx context.Context) (types.LastUpdated, error)
	Upload(ctx context.Context, raw []byte) (types.UploadAck, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	entitiesHandler *EntitiesHandler
	uploadHandler   *UploadHandler
	logger          logger.Logger
}

// Option configures a Server.
type Option func(*serverConfig)

type serverConfig struct {
	maxUploadBytes int64
	logger         logger.Logger
}

// WithMaxUploadBytes limits the size of upload request bodies.
func WithMaxUploadBytes(n int64) Option {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxUploadBytes = n
		}
	}
}

// WithLogger sets the logger used by handlers and middleware.
func WithLogger(l logger.Logger) Option {
	return func(c *serverConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	cfg := serverConfig{maxUploadBytes: DefaultMaxUploadBytes}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logger.Get().Named("http")
	}
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		entitiesHandler: NewEntitiesHandler(deps),
		uploadHandler:   NewUploadHandler(deps, cfg.maxUploadBytes, cfg.logger),
		logger:          cfg.logger,
	}
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(ctx context.Context, r *mux.Router) {
	r.Use(RequestIDMiddleware, LoggingMiddleware(s.logger), RecoveryMiddleware(s.logger))

	r.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz")).Methods(http.MethodGet)
	r.Handle("/metrics", s.healthHandler.MetricsHandler()).Methods(http.MethodGet)
	r.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats")).Methods(http.MethodGet)

	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/entities", MetricsMiddleware(s.entitiesHandler.HandleList, "entities")).Methods(http.MethodGet)
	apiRouter.HandleFunc("/entities/{id}", MetricsMiddleware(s.entitiesHandler.HandleEntity, "entity")).Methods(http.MethodGet)
	apiRouter.HandleFunc("/entities/{id}/metrics", MetricsMiddleware(s.entitiesHandler.HandleMetrics, "entity_metrics")).Methods(http.MethodGet)
	apiRouter.HandleFunc("/entities/{id}/trending", MetricsMiddleware(s.entitiesHandler.HandleTrending, "entity_trending")).Methods(http.MethodGet)
	apiRouter.HandleFunc("/last_updated", MetricsMiddleware(s.entitiesHandler.HandleLastUpdated, "last_updated")).Methods(http.MethodGet)
	apiRouter.HandleFunc("/upload_json", MetricsMiddleware(s.uploadHandler.HandleUpload, "upload_json")).Methods(http.MethodPost)

	s.logger.Info(ctx, "api routes registered")
}

type errorResponse struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, detail string) {
	if detail == "" {
		detail = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Code: code, Detail: detail})
}

// writeServiceError maps service and store errors onto status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", err.Error())
	case errors.Is(err, service.ErrBadUpload):
		writeError(w, http.StatusBadRequest, "bad_upload", uploadDetail(err))
	case errors.Is(err, repository.ErrStorageWrite):
		writeError(w, http.StatusInternalServerError, "storage_write_error", err.Error())
	case errors.Is(err, repository.ErrStorageRead):
		writeError(w, http.StatusInternalServerError, "storage_read_error", err.Error())
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "not_ready", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

// uploadDetail renders an upload failure the way clients of the upload
// endpoint expect: "Error processing file: <cause>".
func uploadDetail(err error) string {
	cause := strings.TrimPrefix(err.Error(), service.ErrBadUpload.Error()+": ")
	return "Error processing file: " + cause
}
