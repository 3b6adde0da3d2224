package http

import (
	"context"
	"net/http"
	"strings"

	"shiptrack/internal/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// ObserversPath is where the websocket observer channel is mounted.
const ObserversPath = "/api/ws"

// NewRouter builds the echo instance: REST routes validated against the
// embedded OpenAPI document, the observer websocket (when observers is not
// nil), /health and /swagger/*.
func NewRouter(ctx context.Context, server *Server, observers echo.HandlerFunc, log *logger.Logger) (*echo.Echo, error) {
	doc, err := LoadOpenAPI(ctx)
	if err != nil {
		return nil, err
	}
	if err = registerSwagger(doc); err != nil {
		return nil, err
	}
	validator, err := OpenAPIValidator(doc, func(c echo.Context) bool {
		path := c.Request().URL.Path
		return !strings.HasPrefix(path, "/api/") || path == ObserversPath
	})
	if err != nil {
		return nil, err
	}

	log = log.Named("http")
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			log.Debug("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))
	e.Use(validator)

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	if observers != nil {
		e.GET(ObserversPath, observers)
	}
	RegisterHandlers(e, server)

	return e, nil
}
