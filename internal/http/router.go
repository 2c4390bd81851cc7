package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/nymkash-gerel/temuulel-app-sub002/internal/http/billing"
	"github.com/nymkash-gerel/temuulel-app-sub002/internal/http/lifecycle"
	"github.com/nymkash-gerel/temuulel-app-sub002/internal/http/workflow"
)

type Options struct {
	AllowedOrigins []string
	// Timeout bounds each request; zero disables it.
	Timeout time.Duration
}

func New(
	opts Options,
	workflowsV1 *workflow.Handler,
	entitiesV1 *lifecycle.Handler,
	billingV1 *billing.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	if opts.Timeout > 0 {
		router.Use(middleware.Timeout(opts.Timeout))
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/workflows", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			workflowsV1.Routes(r)
		})

		r.Route("/stores/{storeID}", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			entitiesV1.Routes(r)
			billingV1.Routes(r)
		})
	})

	return router
}
