package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/customers/internal/domain"
	"github.com/vladislavdragonenkov/customers/internal/metrics"
)

// NewRouter собирает HTTP API клиентов со стеком middleware.
// httpMetrics может быть nil, тогда запросы не инструментируются.
func NewRouter(repo domain.CustomerRepository, logger *log.Entry, httpMetrics *metrics.HTTPMetrics) http.Handler {
	if logger == nil {
		logger = log.WithField("component", "rest")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(logger))
	r.Use(instrument(httpMetrics))
	r.Use(recoverer(logger))
	r.Use(middleware.StripSlashes)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	NewHandler(repo, logger).Register(r)
	return r
}
