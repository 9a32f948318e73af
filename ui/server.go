package ui

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"sheetcheck/app"
	"sheetcheck/internal"

	"github.com/gin-gonic/gin"
)

// Server is the browser front end: an upload form, the report page and a
// page per schema
type Server struct {
	router    *gin.Engine
	service   *app.ValidationService
	templates *template.Template
	files     fs.FS
	metrics   http.Handler
	logger    *internal.Logger
}

// NewServer creates the web server. files must contain ui/templates and
// ui/static; metrics may be nil to leave /metrics out.
func NewServer(files fs.FS, service *app.ValidationService, metrics http.Handler, logger *internal.Logger) (*Server, error) {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	s := &Server{
		router:  gin.New(),
		service: service,
		files:   files,
		metrics: metrics,
		logger:  logger.WithComponent("UI"),
	}

	templates, err := loadTemplates(files)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	s.templates = templates

	if err := s.setupMiddleware(); err != nil {
		return nil, err
	}
	s.setupRoutes()
	return s, nil
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.POST("/validate", s.handleValidate)
	s.router.GET("/schemas/:name", s.handleSchema)

	s.router.GET("/healthz", s.handleHealth)
	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics))
	}
}

// Handler exposes the router, mostly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	s.logger.Info("Starting sheetcheck UI on http://%s", addr)
	return s.router.Run(addr)
}
