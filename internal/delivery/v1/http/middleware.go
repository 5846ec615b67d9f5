package http

import (
	"net/http"
	"time"

	"github.com/DRSN-tech/dropship-sync/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RequestRecorder принимает итоги HTTP-запросов (метрики).
type RequestRecorder interface {
	RecordRequest(method, route string, statusCode int, duration time.Duration)
}

// observe пишет метрику и строку лога по каждому запросу. Маршрут берётся из шаблона chi.
func observe(recorder RequestRecorder, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := time.Since(start)

			if recorder != nil {
				recorder.RecordRequest(r.Method, route, status, elapsed)
			}
			log.Debugf("%s %s -> %d (%s)", r.Method, route, status, elapsed)
		})
	}
}
