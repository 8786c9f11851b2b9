package routes

import (
	"net/http"

	"github.com/rehabnet/rehabtracking/backend/internal/api/handlers"
	"github.com/rehabnet/rehabtracking/backend/internal/api/middleware"
	"github.com/rehabnet/rehabtracking/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	exerciseHandler *handlers.ExerciseHandler
	progressHandler *handlers.ProgressHandler
	patientHandler  *handlers.PatientHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	exerciseHandler *handlers.ExerciseHandler,
	progressHandler *handlers.ProgressHandler,
	patientHandler *handlers.PatientHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:             http.NewServeMux(),
		exerciseHandler: exerciseHandler,
		progressHandler: progressHandler,
		patientHandler:  patientHandler,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint, outside the authenticated surface
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)

		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Everything under /api requires a caller identity from the gateway
	api := http.NewServeMux()

	// Exercise endpoints
	api.HandleFunc("POST /api/exercises", r.exerciseHandler.AssignExercise)
	api.HandleFunc("GET /api/exercises/{rehabPatientID}", r.exerciseHandler.ListExercises)
	api.HandleFunc("GET /api/exercises/{rehabPatientID}/performance", r.progressHandler.GetPerformance)
	api.HandleFunc("PUT /api/exercises/{id}", r.exerciseHandler.EditExercise)
	api.HandleFunc("DELETE /api/exercises/{id}", r.exerciseHandler.DeleteExercise)
	api.HandleFunc("POST /api/exercises/{id}/complete-set", r.exerciseHandler.CompleteSet)

	// Progress endpoints
	api.HandleFunc("POST /api/progress", r.progressHandler.CheckIn)
	api.HandleFunc("GET /api/progress/{rehabPatientID}/history", r.progressHandler.GetHistory)

	// Patient endpoints
	api.HandleFunc("GET /api/patients/{rehabPatientID}/streak", r.patientHandler.GetStreak)
	api.HandleFunc("GET /api/patients/{rehabPatientID}/profile", r.patientHandler.GetProfile)
	api.HandleFunc("DELETE /api/patients/{rehabPatientID}", r.patientHandler.DeletePatient)

	r.mux.Handle("/api/", middleware.AuthMiddleware(api))

	// Apply middleware in reverse order (last middleware wraps first)

	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// Apply HTTP performance optimizations (compression, ETag, cache headers)
	handler = middleware.ResponseOptimization(handler)

	// CORS wraps everything so preflights never hit the auth check
	handler = middleware.CORSMiddleware(handler)

	return handler
}
