package api

import (
	"log"
	"net/http"

	"tseval/app"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// App is the HTTP surface an external experiment driver talks to
type App struct {
	router  *chi.Mux
	service *app.EvaluationService
}

// NewApp creates the API application over the evaluation service
func NewApp(service *app.EvaluationService) *App {
	a := &App{
		router:  chi.NewRouter(),
		service: service,
	}

	a.setupMiddleware()
	a.setupRoutes()
	return a
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/api/health", a.handleHealth)

	a.router.Post("/api/evaluate", a.handleEvaluate)
	a.router.Post("/api/evaluate/batch", a.handleEvaluateBatch)

	a.router.Post("/api/compare", a.handleCompare)
	a.router.Get("/api/compare/all", a.handleCompareAll)

	a.router.Get("/api/trend/{technique}", a.handleTrend)
	a.router.Post("/api/learning-curve", a.handleLearningCurve)
	a.router.Get("/api/learning-curve/{technique}", a.handleLearningCurveLoad)
}

// Router exposes the handler for serving and tests
func (a *App) Router() http.Handler {
	return a.router
}

// Start runs the HTTP server on the given port, blocking until it stops
func (a *App) Start(port string) error {
	log.Printf("[API] Listening on :%s", port)
	return http.ListenAndServe(":"+port, a.router)
}
