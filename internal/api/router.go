// Package api serves schemas and validation runs as JSON over HTTP.
package api

import (
	"net/http"
	"time"

	"sheetcheck/adapters/jsontable"
	"sheetcheck/app"
	"sheetcheck/internal"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server holds what the API handlers need
type Server struct {
	service *app.ValidationService
	json    *jsontable.Reader
	metrics http.Handler
	logger  *internal.Logger
}

// NewServer creates the API server. metrics may be nil to leave /metrics out.
func NewServer(service *app.ValidationService, jsonReader *jsontable.Reader, metrics http.Handler, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	if jsonReader == nil {
		jsonReader = jsontable.NewReader(jsontable.DefaultConfig(), logger)
	}
	return &Server{
		service: service,
		json:    jsonReader,
		metrics: metrics,
		logger:  logger.WithComponent("API"),
	}
}

// Router constructs the HTTP router for the API
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/schemas", s.handleListSchemas)
		r.Get("/schemas/{name}", s.handleGetSchema)
		r.Post("/validate", s.handleValidate)
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("%s %s %d %s [%s]", r.Method, r.URL.Path, ww.Status(), time.Since(start), middleware.GetReqID(r.Context()))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"schemas": len(s.service.Schemas()),
	})
}
