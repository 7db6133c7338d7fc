package server

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/logtide/logtide/internal/handler"
	api_middleware "github.com/logtide/logtide/internal/middleware"
	"github.com/logtide/logtide/internal/service"
)

func (s *Server) registerRoutes(logService service.LogServiceInterface) {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(api_middleware.CORSMiddleware)

	router.Get("/healthz", handler.HandlerReadiness)

	logHandler := handler.NewLogHandler(logService)
	router.Route("/api", func(r chi.Router) {
		r.Post("/log", logHandler.SubmitLog)
		r.Post("/logs", logHandler.SubmitBatch)
		r.Get("/query", logHandler.Query)
		r.With(api_middleware.RateLimitMiddleware).Post("/query/sql", logHandler.RawQuery)
	})

	s.router = router
}
