package router

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"breakreminder/internal/interfaces/api/handler"
	"breakreminder/internal/pkg/logger"
)

// Config holds the dependencies for the router.
type Config struct {
	CommandHandler *handler.CommandHandler
	// Gatherer serves /metrics. Nil disables the route.
	Gatherer prometheus.Gatherer
	Logger   logger.Logger
}

// NewRouter creates and configures a new Echo router.
func NewRouter(cfg *Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			cfg.Logger.Debug(fmt.Sprintf("REQUEST: method=%s, uri=%s, status=%d, latency=%s, req_id=%s",
				v.Method, v.URI, v.Status, v.Latency, v.RequestID,
			))
			return nil
		},
	}))
	e.Use(middleware.Recover())

	e.GET("/healthz", cfg.CommandHandler.HandleHealth)
	e.GET("/status", cfg.CommandHandler.HandleStatus)
	e.POST("/commands/:name", cfg.CommandHandler.HandleCommand)
	if cfg.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	cfg.Logger.Info("Router initialized with routes.")
	return e
}
