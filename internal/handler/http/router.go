package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/customer-platform/customer-service/pkg/health"
	"github.com/customer-platform/customer-service/pkg/middleware"

	"github.com/customer-platform/customer-service/internal/auth"
	"github.com/customer-platform/customer-service/internal/service"
)

// NewRouter creates a chi router with all customer service routes registered.
func NewRouter(
	customerService *service.CustomerService,
	imageService *service.ProfileImageService,
	tokens *auth.TokenManager,
	healthHandler *health.Handler,
	log *slog.Logger,
	corsConfig middleware.CORSConfig,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.CORS(corsConfig))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Tracing("customer"))
	r.Use(middleware.RequestLogging(log))
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.PrometheusMetrics("customer"))

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	customerHandler := NewCustomerHandler(customerService, imageService, tokens, log)
	authHandler := NewAuthHandler(customerService, tokens, log)

	// Bridge the token manager to the transport-level auth middleware.
	tokenValidator := func(token string) (*middleware.Claims, error) {
		subject, err := tokens.Subject(token)
		if err != nil {
			return nil, err
		}
		scopes, err := tokens.Scopes(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{Subject: subject, Scopes: scopes}, nil
	}

	// Login is public.
	r.With(ContentTypeJSON).Post("/api/v1/auth/login", authHandler.Login)

	r.Route("/api/v1/customers", func(r chi.Router) {
		// Registration is public; everything else requires a bearer token.
		r.With(ContentTypeJSON).Post("/", customerHandler.Register)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokenValidator))

			r.With(ContentTypeJSON).Get("/", customerHandler.List)
			r.With(ContentTypeJSON).Get("/{id}", customerHandler.Get)
			r.With(ContentTypeJSON).Put("/{id}", customerHandler.Update)
			r.With(ContentTypeJSON).Delete("/{id}", customerHandler.Delete)

			// Multipart upload and raw download sit outside the JSON guard.
			r.Post("/{id}/profile-image", customerHandler.UploadImage)
			r.Get("/{id}/profile-image", customerHandler.DownloadImage)
		})
	})

	return r
}
