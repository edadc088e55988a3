package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/mrops-br/marketplace-ops-api/internal/infrastructure/auth"
	"github.com/mrops-br/marketplace-ops-api/internal/infrastructure/config"
	"github.com/mrops-br/marketplace-ops-api/internal/infrastructure/http/handler"
	"github.com/mrops-br/marketplace-ops-api/internal/infrastructure/http/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Handlers groups the per-manager HTTP handlers
type Handlers struct {
	SellerRequests *handler.SellerRequestHandler
	Sellers        *handler.SellerHandler
	Warranties     *handler.WarrantyHandler
	Reviews        *handler.ReviewHandler
	Metrics        http.Handler
}

// Server represents the HTTP server
type Server struct {
	router        *chi.Mux
	config        *config.ServerConfig
	handlers      Handlers
	authn         *auth.Authenticator
	meterProvider metric.MeterProvider
	logger        *slog.Logger
	httpServer    *http.Server
}

// NewServer creates a new HTTP server
func NewServer(
	cfg *config.ServerConfig,
	handlers Handlers,
	authn *auth.Authenticator,
	meterProvider metric.MeterProvider,
	logger *slog.Logger,
) *Server {
	s := &Server{
		router:        chi.NewRouter(),
		config:        cfg,
		handlers:      handlers,
		authn:         authn,
		meterProvider: meterProvider,
		logger:        logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// setupMiddleware configures the middleware chain
func (s *Server) setupMiddleware() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(middleware.Authenticate(s.authn))
	s.router.Use(middleware.StructuredLogger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	// Add HTTP route to context so all logs include it automatically
	s.router.Use(middleware.HTTPRouteContext())

	meter := s.meterProvider.Meter("marketplace-ops-api")
	s.router.Use(middleware.ActiveRequestsMiddleware(meter))
	s.router.Use(middleware.DurationMillisecondsMiddleware(meter))
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	admin := middleware.RequireRole(auth.RoleAdmin)

	s.router.Route("/seller-requests", func(r chi.Router) {
		h := s.handlers.SellerRequests
		r.Post("/", h.SubmitRequest)
		r.With(admin).Get("/", h.ListRequests)
		r.With(admin).Get("/{id}", h.GetRequest)
		r.With(admin).Patch("/{id}", h.Decide)
	})

	s.router.Route("/sellers", func(r chi.Router) {
		h := s.handlers.Sellers
		r.Get("/", h.ListSellers)
		r.Get("/{id}", h.GetSeller)
		r.Get("/{id}/products", h.ListProducts)

		r.Group(func(r chi.Router) {
			r.Use(admin)
			r.Post("/", h.CreateSeller)
			r.Patch("/{id}", h.UpdateSeller)
			r.Delete("/{id}", h.DeleteSeller)
			r.Post("/{id}/products", h.AddProduct)
			r.Delete("/{id}/products/{productId}", h.RemoveProduct)
		})
	})

	s.router.Route("/warranties", func(r chi.Router) {
		h := s.handlers.Warranties
		r.Post("/{id}/claims", h.SubmitClaim)

		r.Group(func(r chi.Router) {
			r.Use(admin)
			r.Post("/", h.Register)
			r.Get("/", h.ListWarranties)
			r.Get("/{id}", h.GetWarranty)
			r.Patch("/{id}", h.UpdateWarranty)
		})
	})

	s.router.Route("/warranty-claims", func(r chi.Router) {
		h := s.handlers.Warranties
		r.Use(admin)
		r.Get("/", h.ListClaims)
		r.Get("/{id}", h.GetClaim)
		r.Patch("/{id}", h.UpdateClaim)
	})

	s.router.Route("/products/{productId}/reviews", func(r chi.Router) {
		h := s.handlers.Reviews
		r.Get("/", h.ListForProduct)
		r.With(middleware.RequireActor).Post("/", h.Submit)
	})

	s.router.Route("/reviews", func(r chi.Router) {
		h := s.handlers.Reviews
		r.Use(admin)
		r.Get("/", h.ListReviews)
		r.Get("/{id}", h.GetReview)
		r.Patch("/{id}", h.Moderate)
	})

	// Health check endpoint
	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Prometheus metrics endpoint - exposes OpenTelemetry metrics
	if s.handlers.Metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", s.handlers.Metrics)
	}
}

// Handler returns the instrumented root handler
func (s *Server) Handler() http.Handler {
	// Wrap the entire router with otelhttp for automatic HTTP metrics and tracing
	return otelhttp.NewHandler(s.router, "http-server",
		otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
			return fmt.Sprintf("%s %s", r.Method, r.URL.Path)
		}),
		otelhttp.WithMeterProvider(s.meterProvider),
		otelhttp.WithMetricAttributesFn(func(r *http.Request) []attribute.KeyValue {
			routePattern := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					routePattern = pattern
				}
			}
			return []attribute.KeyValue{
				attribute.String("http.route", routePattern),
			}
		}),
	)
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server",
		slog.String("address", s.httpServer.Addr),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
