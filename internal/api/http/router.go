package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v2"
	"github.com/vadimbarashkov/url-redirector/internal/models"
	"github.com/vadimbarashkov/url-redirector/internal/service"
	"github.com/vadimbarashkov/url-redirector/pkg/middleware/recoverer"

	pkgmiddleware "github.com/vadimbarashkov/url-redirector/pkg/middleware"
)

type Resolver interface {
	Resolve(ctx context.Context, req service.Request) service.Response
	Stats(ctx context.Context, code string) (*models.Link, error)
}

// NewRouter mounts the redirect endpoint at the root, the API under /api/v1
// and, when metricsHandler is not nil, the metrics endpoint at /metrics.
// Static routes take precedence over /{code}, so codes equal to "metrics"
// or "api" cannot be resolved through this router.
func NewRouter(logger *httplog.Logger, resolver Resolver, metricsHandler http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(pkgmiddleware.Headers(service.CORSHeaders()))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(recoverer.New(logger.Logger))

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
		r.Options("/metrics", handleResolve(resolver))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Options("/*", handleResolve(resolver))
		r.Get("/ping", handlePing)
		r.Get("/links/{code}/stats", handleGetLinkStats(resolver))
	})

	r.HandleFunc("/", handleResolve(resolver))
	r.HandleFunc("/{code}", handleResolve(resolver))

	return r
}
