package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
	mw "github.com/ukydev/fleet-admin/internal/middleware"
	"github.com/ukydev/fleet-admin/internal/models"
)

// Pinger reports store reachability for the health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterConfig collects what NewRouter wires together.
type RouterConfig struct {
	Admin          *AdminHandler
	Gate           *mw.AuthMiddleware
	Limiter        *mw.RateLimitMiddleware
	LoginRateLimit int
	LoginWindow    time.Duration
	CORSOrigins    []string
	// TrustProxy takes client addresses from X-Forwarded-For and X-Real-IP.
	TrustProxy     bool
	Store          Pinger
	Instrument     func(http.Handler) http.Handler
	Metrics        http.Handler
	Log            logrus.FieldLogger
}

// NewRouter builds the admin API router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	if cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(mw.RequestLogger(cfg.Log))
	r.Use(chimw.Recoverer)
	if cfg.Instrument != nil {
		r.Use(cfg.Instrument)
	}
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", mw.RequestIDHeader},
		ExposedHeaders: []string{mw.RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/health", health(cfg.Store))
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	h := cfg.Admin
	ordinary := cfg.Gate.Authenticate(false)
	elevated := cfg.Gate.Authenticate(true)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if cfg.Limiter != nil && cfg.LoginRateLimit > 0 {
				window := cfg.LoginWindow
				if window <= 0 {
					window = time.Minute
				}
				r.Use(cfg.Limiter.RateLimit(cfg.LoginRateLimit, window))
			}
			r.Post("/admin/login", h.Login)
		})

		r.Route("/organization", func(r chi.Router) {
			r.With(ordinary).Post("/create", h.CreateOrganization)
			r.With(ordinary).Post("/edit", h.EditOrganization)
			r.With(ordinary).Post("/delete", h.DeleteOrganization)
			r.With(ordinary).Post("/view", h.ViewOrganizations)
			r.With(elevated).Post("/dashboard", h.Dashboard)
		})

		r.Route("/users", func(r chi.Router) {
			r.With(elevated).Post("/create", h.CreateUser)
			r.With(ordinary).Post("/update", h.UpdateUser)
			r.With(ordinary).Post("/delete", h.DeleteUser)
			r.With(ordinary).Post("/view", h.ViewUsers)
			r.With(ordinary).Post("/update-password", h.UpdatePassword)
		})

		r.Route("/trackers", func(r chi.Router) {
			r.With(elevated).Post("/create", h.CreateTracker)
			r.With(ordinary).Post("/update", h.UpdateTracker)
			r.With(ordinary).Post("/delete", h.DeleteTracker)
			r.With(ordinary).Post("/remove", h.RemoveTracker)
			r.With(ordinary).Post("/view", h.ViewTrackers)
		})
	})

	return r
}

func health(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				mw.WriteResponse(w, http.StatusServiceUnavailable, models.Response{
					Status:   models.ResponseFailure,
					Response: "store unreachable",
				})
				return
			}
		}
		mw.WriteResponse(w, http.StatusOK, models.Response{Status: models.ResponseSuccess})
	}
}
