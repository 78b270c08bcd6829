// Package httpapi exposes the residency service over JSON HTTP.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"residency/internal/auth"
	"residency/internal/core"
	"residency/pkg/domain"
)

// Deps are the collaborators the router needs.
type Deps struct {
	Service *core.Service
	Tokens  *auth.TokenService
	Logger  *slog.Logger
	// Gatherer backs /metrics; nil uses the default registry.
	Gatherer prometheus.Gatherer
	// LoginLimit and LoginBurst throttle POST /api/auth/login per client IP.
	LoginLimit rate.Limit
	LoginBurst int
	// TrustProxy takes the client address from X-Forwarded-For and friends.
	// Enable only when a reverse proxy overwrites those headers.
	TrustProxy bool
}

// Handler serves the residency API.
type Handler struct {
	svc    *core.Service
	tokens *auth.TokenService
	logger *slog.Logger
}

// NewRouter mounts every route.
func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	limit := deps.LoginLimit
	if limit == 0 {
		limit = rate.Inf
	}
	h := &Handler{svc: deps.Service, tokens: deps.Tokens, logger: logger}
	login := newLimiter(limit, deps.LoginBurst)
	authn := RequireAuth(deps.Tokens, deps.Service, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if deps.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(logger))

	r.Get("/api/health", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.With(login.RateLimit).Post("/auth/login", h.handleLogin)
		r.Get("/settings/public/info", h.handlePublicInfo)

		r.Group(func(r chi.Router) {
			r.Use(authn)

			r.Route("/auth", func(r chi.Router) {
				r.Get("/me", h.handleMe)
				r.Put("/profile", h.handleUpdateProfile)
				r.Put("/change-password", h.handleChangePassword)
				r.Put("/api-key", h.handleSetAPIKey)
				r.Get("/api-key/status", h.handleAPIKeyStatus)
				r.Get("/roles", h.handleRoles)
				r.Group(func(r chi.Router) {
					r.Use(RequireRole(domain.RoleAdmin))
					r.Post("/register", h.handleRegister)
					r.Get("/users", h.handleListUsers)
					r.Delete("/users/{id}", h.handleDeleteUser)
				})
			})

			r.Route("/households", func(r chi.Router) {
				r.Get("/", h.handleListHouseholds)
				r.Get("/meta/areas", h.handleAreas)
				r.Get("/{id}", h.handleGetHousehold)
				r.With(RequireManage(domain.EntityHousehold)).Post("/", h.handleCreateHousehold)
				r.With(RequireManage(domain.EntityHousehold)).Put("/{id}", h.handleUpdateHousehold)
				r.With(RequireDelete()).Delete("/{id}", h.handleDeleteHousehold)
			})

			r.Route("/residents", func(r chi.Router) {
				r.Get("/", h.handleListResidents)
				r.Get("/{id}", h.handleGetResident)
				r.With(RequireManage(domain.EntityResident)).Post("/", h.handleCreateResident)
				r.With(RequireManage(domain.EntityResident)).Put("/{id}", h.handleUpdateResident)
				r.With(RequireDelete()).Delete("/{id}", h.handleDeleteResident)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.handleListNotifications)
				r.Get("/latest", h.handleLatestNotifications)
				r.Get("/{id}", h.handleGetNotification)
				r.Group(func(r chi.Router) {
					r.Use(RequireRole(domain.RoleChief))
					r.Post("/", h.handleCreateNotification)
					r.Put("/{id}", h.handleUpdateNotification)
					r.Delete("/{id}", h.handleDeleteNotification)
				})
			})

			r.Route("/statistics", func(r chi.Router) {
				r.Get("/overview", h.handleOverview)
				r.Get("/demographics", h.handleDemographics)
				r.Get("/demographic-stats", h.handleDemographicStats)
				r.Get("/households", h.handleHouseholdStats)
				r.Get("/timeline", h.handleTimeline)
			})

			r.Route("/settings", func(r chi.Router) {
				r.Get("/", h.handleGetSettings)
				r.Get("/{key}", h.handleGetSetting)
				r.Group(func(r chi.Router) {
					r.Use(RequireRole(domain.RoleChief))
					r.Put("/", h.handleUpdateSettings)
					r.Put("/{key}", h.handleSetSetting)
				})
			})
		})
	})
	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": h.svc.Store().Now(),
	})
}

// principal is only called behind RequireAuth.
func principal(r *http.Request) Principal {
	p, _ := PrincipalFrom(r.Context())
	return p
}
