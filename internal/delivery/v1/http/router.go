package http

import (
	"net/http"
	"time"

	_ "github.com/DRSN-tech/dropship-sync/docs" // Импорт сгенерированных файлов
	"github.com/DRSN-tech/dropship-sync/internal/usecase"
	"github.com/DRSN-tech/dropship-sync/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Router struct {
	router   *chi.Mux
	auth     *Authenticator
	recorder RequestRecorder
	logger   logger.Logger
}

func NewRouter(router *chi.Mux, auth *Authenticator, recorder RequestRecorder, logger logger.Logger) *Router {
	return &Router{router: router, auth: auth, recorder: recorder, logger: logger}
}

// Init регистрирует маршруты. metrics может быть nil.
func (r *Router) Init(uc usecase.DropshipUC, lock usecase.RunLock, lockTTL time.Duration, metrics http.Handler) {
	r.router.Use(middleware.RequestID, middleware.Recoverer, observe(r.recorder, r.logger))

	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"), // ссылка на JSON
	))
	r.router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		WriteSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if metrics != nil {
		r.router.Method(http.MethodGet, "/metrics", metrics)
	}

	r.router.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(r.auth.Middleware)
		handler := NewDropshipHandler(uc, lock, lockTTL, r.logger)
		registerDropshipRoutes(v1, handler)
	})
}

func registerDropshipRoutes(router chi.Router, h *DropshipHandler) {
	router.Route("/dropship", func(ds chi.Router) {
		ds.Post("/config", h.configure)
		ds.Get("/config/history", h.configHistory)
		ds.Post("/import", h.importProducts)
		ds.Post("/sync", h.syncInventory)
		ds.Post("/fulfill", h.fulfillOrder)
		ds.Get("/fulfillments/{orderID}", h.fulfillmentByOrder)
		ds.Get("/sync-logs", h.syncLogs)
		ds.Post("/actions", h.action)
	})
}
