package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"contactsvc/internal/logging"
)

type RouterConfig struct {
	Auth        *AuthHandler
	Contacts    *ContactHandler
	Users       *UserHandler
	RequireAuth func(http.Handler) http.Handler
	Logger      logging.Logger
	Metrics     bool // expose /metrics and record request durations
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimid.RequestID)
	r.Use(chimid.RealIP)
	r.Use(requestLogger(cfg.Logger))
	r.Use(chimid.Recoverer)
	if cfg.Metrics {
		r.Use(prometheusMiddleware)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", cfg.Auth.Signup)
			r.Post("/login", cfg.Auth.Login)
			r.Get("/refresh_token", cfg.Auth.Refresh)
			r.Get("/confirmed_email/{token}", cfg.Auth.ConfirmEmail)
			r.Post("/request_email", cfg.Auth.RequestEmail)
			r.Group(func(r chi.Router) {
				r.Use(cfg.RequireAuth)
				r.Post("/logout", cfg.Auth.Logout)
			})
		})

		r.Route("/contacts", func(r chi.Router) {
			r.Use(cfg.RequireAuth)
			r.Get("/", cfg.Contacts.List)
			r.Post("/", cfg.Contacts.Create)
			r.Get("/{id}", cfg.Contacts.Get)
			r.Patch("/{id}", cfg.Contacts.Update)
			r.Delete("/{id}", cfg.Contacts.Delete)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(cfg.RequireAuth)
			r.Get("/me", cfg.Users.Me)
			r.Get("/avatar_upload", cfg.Users.AvatarUpload)
			r.Patch("/avatar", cfg.Users.SetAvatar)
		})
	})

	return r
}
