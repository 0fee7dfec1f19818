package httpserver

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	loggingmw "github.com/Skotchmaster/mini_shop/internal/middleware/logging"
)

type Options struct {
	ServiceName string
	Logger      *slog.Logger
	BodyLimit   string
}

// New builds the echo instance with the shared middleware chain. Each
// instance gets its own metrics registry, served by GET /metrics.
func New(opts Options) *echo.Echo {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.BodyLimit == "" {
		opts.BodyLimit = "10M"
	}
	if opts.ServiceName == "" {
		opts.ServiceName = "shop"
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Validator = NewValidator()
	e.HTTPErrorHandler = ErrorHandler(e)

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  opts.ServiceName,
		Registerer: reg,
	}))
	e.Use(loggingmw.RequestLogger(opts.Logger))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(opts.BodyLimit))

	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg}))
	return e
}
