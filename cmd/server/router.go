package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"polizaexpress/internal/cases"
	caseshandler "polizaexpress/internal/cases/handler"
	"polizaexpress/internal/decision"
	dhandler "polizaexpress/internal/decision/handler"
	"polizaexpress/internal/platform/config"
	"polizaexpress/internal/platform/metrics"
	"polizaexpress/internal/platform/middleware"
	"polizaexpress/pkg/platform/httputil"
	"polizaexpress/pkg/platform/middleware/metadata"
	"polizaexpress/pkg/platform/middleware/requesttime"
)

// newRouter mounts the status endpoints and every module's routes behind the
// shared middleware chain.
func newRouter(cfg config.Server, log *slog.Logger, httpMetrics *metrics.Metrics, decisionSvc *decision.Service, caseSvc *cases.Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(middleware.Logger(log, httpMetrics))
	r.Use(middleware.Recover(log))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{
			"service": "poliza-express",
			"version": cfg.Version,
		})
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"status":    "ok",
			"version":   cfg.Version,
			"timestamp": time.Now().UTC(),
		})
	})
	r.Handle("/metrics", metrics.Handler())

	dhandler.New(decisionSvc, log).Register(r)
	caseshandler.New(caseSvc, log, httpMetrics, cfg.Cases.MaxUploadBytes).Register(r)
	return r
}
