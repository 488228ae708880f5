package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/fscore/internal/api/handlers"
	"github.com/wonny/fscore/pkg/logger"
)

// HealthChecker reports the state of a backing service
type HealthChecker func(ctx context.Context) error

// Handlers groups the route handlers. Nil handlers leave their routes out.
type Handlers struct {
	FScore       *handlers.FScoreHandler
	Universe     *handlers.UniverseHandler
	Fundamentals *handlers.FundamentalsHandler
	Jobs         *handlers.JobsHandler
	Metrics      http.Handler
	Health       map[string]HealthChecker
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(h Handlers, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", healthCheckHandler(h.Health)).Methods("GET")
	if h.Metrics != nil {
		r.Handle("/metrics", h.Metrics).Methods("GET")
	}

	api := r.PathPrefix("/api").Subrouter()

	if h.FScore != nil {
		api.HandleFunc("/fscore", h.FScore.Score).Methods("POST")
	}

	if h.Universe != nil {
		api.HandleFunc("/universe/latest", h.Universe.GetLatest).Methods("GET")
		api.HandleFunc("/universe", h.Universe.GetByDate).Methods("GET")
		api.HandleFunc("/universe/select", h.Universe.Select).Methods("POST")
	}

	if h.Fundamentals != nil {
		api.HandleFunc("/fundamentals/coarse", h.Fundamentals.GetCoarse).Methods("GET")
		api.HandleFunc("/fundamentals/fine", h.Fundamentals.GetFine).Methods("POST")
		api.HandleFunc("/fundamentals/quality", h.Fundamentals.GetQuality).Methods("GET")
	}

	if h.Jobs != nil {
		api.HandleFunc("/jobs", h.Jobs.List).Methods("GET")
	}

	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status. Any failing check
// turns the response into 503.
func healthCheckHandler(checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		components := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				components[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			components[name] = "ok"
		}

		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":     overall,
			"service":    "fscore-api",
			"components": components,
		})
	}
}

// statusRecorder captures the response status for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start).String(),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
