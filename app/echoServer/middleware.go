// app/echoServer/middleware.go
package echoServer

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func RegisterMiddlewares(e *echo.Echo, log *zap.Logger) {

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))

	e.Use(RequestLog(log))

	// inside the logger so recovered panics are logged as 500s
	e.Use(middleware.Recover())
}

// RequestLog writes one line per request.
func RequestLog(log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			log.Info("http",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)),
				zap.String("req_id", rid),
				zap.String("ip", c.RealIP()),
				zap.String("ua", c.Request().UserAgent()),
			)
			return nil
		}
	}
}
