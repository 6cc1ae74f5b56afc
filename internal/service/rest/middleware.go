package rest

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/customers/internal/metrics"
)

const unmatchedRoute = "unmatched"

func requestLogger(logger *log.Entry, r *http.Request) *log.Entry {
	return logger.WithFields(log.Fields{
		"request_id": middleware.GetReqID(r.Context()),
		"method":     r.Method,
		"path":       r.URL.Path,
	})
}

// routePattern возвращает шаблон маршрута chi; доступен только после роутинга.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return unmatchedRoute
}

// accessLog пишет одну строку на запрос.
func accessLog(logger *log.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			entry := requestLogger(logger, r).WithFields(log.Fields{
				"route":       routePattern(r),
				"status":      status,
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
				"remote_addr": r.RemoteAddr,
			})
			if status >= http.StatusInternalServerError {
				entry.Warn("http request served")
				return
			}
			entry.Info("http request served")
		})
	}
}

// instrument отдаёт запросы в HTTPMetrics с меткой шаблона маршрута.
func instrument(m *metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			m.RequestStarted(r.Method)

			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				m.RequestFinished(r.Method, routePattern(r), status, time.Since(start))
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// recoverer превращает панику обработчика в JSON-ответ 500.
func recoverer(logger *log.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				requestLogger(logger, r).WithFields(log.Fields{
					"panic": rec,
					"stack": string(debug.Stack()),
				}).Error("panic while serving request")
				writeDetail(w, http.StatusInternalServerError, fmt.Sprintf("internal server error: %v", rec))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
