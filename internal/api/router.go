package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"homedash/internal/mw"
	"homedash/internal/view"
)

// RouterConfig holds the HTTP-level knobs of NewRouter.
type RouterConfig struct {
	StaticDir       string
	RateLimitPerSec float64
	RateLimitBurst  int
	CacheTTL        time.Duration
}

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg RouterConfig) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery(), mw.RequestLogger(h.log, h.metrics))

	tmpl, err := view.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	if cfg.StaticDir != "" {
		r.Static("/static", cfg.StaticDir)
	}

	limit := rate.Limit(cfg.RateLimitPerSec)
	if cfg.RateLimitPerSec <= 0 {
		limit = rate.Inf
	}
	rateLimiter := mw.RateLimiter(limit, cfg.RateLimitBurst)
	pages := r.Group("/")
	pages.Use(mw.NewPageCache(cfg.CacheTTL).Middleware())
	{
		pages.GET("/", h.Dashboard)

		pages.GET("/devices", h.ListDevices)
		pages.GET("/devices/export.xlsx", h.ExportDevices)
		pages.POST("/add_device", rateLimiter, h.AddDevice)
		pages.POST("/toggle_device/:id", rateLimiter, h.ToggleDevice)

		pages.GET("/roles", h.ListRoles)
		pages.POST("/modify_role/:id", rateLimiter, h.ModifyRole)

		pages.GET("/schedules", h.ListSchedules)
		pages.POST("/add_schedule", rateLimiter, h.AddSchedule)

		pages.GET("/diagnostics", h.ListDiagnostics)
		pages.POST("/run_diagnostics/:id", rateLimiter, h.RunDiagnostics)

		pages.GET("/alerts", h.ListAlerts)
		pages.POST("/acknowledge_alert/:id", rateLimiter, h.AcknowledgeAlert)
	}

	r.GET("/healthz", h.HealthCheck)
	if h.metrics != nil {
		r.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
		api.GET("/subscriptions", h.GetSubscription)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
	}

	return r, nil
}
