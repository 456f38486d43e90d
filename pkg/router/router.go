package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"github.com/go-chi/render"

	"github.com/shopcore/shop-auth/pkg/iam"
	"github.com/shopcore/shop-auth/pkg/metrics"
	"github.com/shopcore/shop-auth/pkg/ratelimit"
	"github.com/shopcore/shop-auth/pkg/role"
	"github.com/shopcore/shop-auth/pkg/signup"
)

// Config holds the handlers and middleware needed to set up routes
type Config struct {
	AuthHandle signup.Handle
	UserHandle iam.Handle
	RoleHandle role.Handle

	// JWT authentication for the management surface
	JwtAuth *jwtauth.JWTAuth

	// Rate limiting for the public auth surface (optional)
	RateLimit *ratelimit.Middleware

	// Metrics
	Recorder       metrics.Recorder
	MetricsHandler http.Handler
}

// New builds the service router. Signup and login are public behind the rate
// limiter; user and role management require a valid access token.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	recorder := cfg.Recorder
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	r.Use(statusRecorder(recorder))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.PlainText(w, r, http.StatusText(http.StatusOK))
	})
	if cfg.MetricsHandler != nil {
		r.Mount("/metrics", cfg.MetricsHandler)
	}

	// Public routes
	r.Group(func(r chi.Router) {
		if cfg.RateLimit != nil {
			r.Use(cfg.RateLimit.Handler)
		}
		r.Mount("/auth", signup.Routes(cfg.AuthHandle))
	})

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(cfg.JwtAuth))
		r.Use(jwtauth.Authenticator(cfg.JwtAuth))

		r.Mount("/users", iam.Routes(cfg.UserHandle))
		r.Mount("/roles", role.Routes(cfg.RoleHandle))
	})

	return r
}

// statusRecorder reports every response status to the metrics recorder
func statusRecorder(recorder metrics.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			recorder.RecordHTTPStatus(ww.Status())
		})
	}
}
