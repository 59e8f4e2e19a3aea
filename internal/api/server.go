// Package api exposes the analysis service over HTTP as JSON
// endpoints.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/adapters/memory"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/app"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/internal"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/internal/learning"
)

// Server routes analysis requests to the service facade
type Server struct {
	router    *chi.Mux
	service   *app.AnalysisService
	datasets  *memory.DatasetRegistry
	scheduler *learning.Scheduler
	logger    *internal.Logger
}

// NewServer creates the HTTP server. scheduler may be nil when the
// learning job runs out of process.
func NewServer(service *app.AnalysisService, datasets *memory.DatasetRegistry, scheduler *learning.Scheduler, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{
		router:    chi.NewRouter(),
		service:   service,
		datasets:  datasets,
		scheduler: scheduler,
		logger:    logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the root http handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

func (s *Server) setupRoutes() {
	s.router.Post("/api/datasets/upload", s.handleDatasetUpload)
	s.router.Get("/api/datasets", s.handleListDatasets)

	s.router.Get("/api/datasets/{id}/profile", s.handleProfileDataset)
	s.router.Get("/api/datasets/{id}/columns/{column}/profile", s.handleProfileColumn)
	s.router.Get("/api/datasets/{id}/columns/{column}/classify", s.handleClassifyColumn)
	s.router.Post("/api/datasets/{id}/columns/{column}/override", s.handleOverrideColumnType)

	s.router.Get("/api/datasets/{id}/hierarchies", s.handleDetectHierarchies)
	s.router.Get("/api/datasets/{id}/hierarchies/tree", s.handleBuildHierarchyTree)

	s.router.Post("/api/datasets/{id}/suggest", s.handleSuggestChart)

	s.router.Post("/api/feedback", s.handleRecordFeedback)
	s.router.Post("/api/learning/run", s.handleRunLearningJob)
	s.router.Get("/api/learning/rules", s.handleActiveRules)
}
