package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(h *Handler) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/ranking", h.GetRanking).Methods(http.MethodGet)
	api.HandleFunc("/cycle", h.RunCycle).Methods(http.MethodPost)
	api.HandleFunc("/cycles", h.ListCycles).Methods(http.MethodGet)
	api.HandleFunc("/portfolio", h.GetPortfolio).Methods(http.MethodGet)
	api.HandleFunc("/portfolio/{direction:gain|loss}", h.Simulate).Methods(http.MethodPost)
	api.HandleFunc("/portfolio/reset", h.Reset).Methods(http.MethodPost)
	api.HandleFunc("/risk", h.GetRisk).Methods(http.MethodGet)

	r.Use(loggingMiddleware)
	r.Use(recoveryMiddleware)

	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Interface("panic", err).
					Str("path", r.URL.Path).
					Msg("panic recovered")
				respondError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
