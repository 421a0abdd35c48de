package handler

import (
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vx-landing/internal/container"
	"vx-landing/internal/middleware"
)

// NewRouter configures every route and the middleware chain
func NewRouter(c *container.Container) *chi.Mux {
	cfg := c.GetConfig()
	log := c.GetLogger()

	r := chi.NewRouter()

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.AllowedOrigins

	r.Use(middleware.RequestID())
	r.Use(middleware.ClientIP(cfg.TrustProxyHops))
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recoverer(log))
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{EnableHSTS: !cfg.IsDevelopment()}))
	r.Use(middleware.CORS(corsConfig, log))
	r.Use(middleware.Metrics())
	r.Use(chiMiddleware.Compress(5))
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	healthHandler := NewHealthHandler(c)
	contactHandler := NewContactHandler(c)
	adminHandler := NewAdminHandler(c)
	webhookHandler := NewWebhookHandler(c)

	r.Get("/health", healthHandler.Check)
	r.Handle("/metrics", promhttp.Handler())

	r.With(middleware.RateLimit(c.ContactLimiter, middleware.RateLimitOptions{
		Message: middleware.MsgContactRateLimited,
		Observe: cfg.IsDevelopment(),
	}, log)).Post("/contact", contactHandler.Submit)

	r.With(middleware.RateLimit(c.LoginLimiter, middleware.RateLimitOptions{
		Message: middleware.MsgLoginRateLimited,
		Headers: true,
	}, log)).Post("/admin/login", adminHandler.Login)
	r.Post("/admin/verify", adminHandler.Verify)

	// Admin API; the panel itself is a static page under /admin/
	r.Group(func(r chi.Router) {
		r.Use(middleware.AdminAuth(c.Services.Auth, log))

		r.Get("/admin/dashboard", adminHandler.Dashboard)
		r.Get("/admin/contacts", adminHandler.ListContacts)
		r.Delete("/admin/contacts/clear", adminHandler.ClearContacts)
		r.Delete("/admin/contacts/{id}", adminHandler.DeleteContact)
		r.Get("/admin/settings", adminHandler.GetSettings)
		r.Post("/admin/settings", adminHandler.SaveSettings)
		r.Get("/admin/analytics", adminHandler.Analytics)
		r.Post("/admin/toggle-discount", adminHandler.ToggleDiscount)
		r.Post("/admin/toggle-package", adminHandler.TogglePackage)
	})

	r.Get("/api/settings", adminHandler.PublicSettings)
	r.Post("/webhook/telegram", webhookHandler.Telegram)

	static := Static(cfg.PublicDir, cfg.IsDevelopment(), log)
	r.With(middleware.TrackVisits(c.Services.Analytics, log)).Get("/*", static.ServeHTTP)
	r.Head("/*", static.ServeHTTP)

	notFound := NotFound(log)
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	log.Info("Router configured successfully")
	return r
}
