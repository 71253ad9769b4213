package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RequestLogger logs one line per request at debug level, or at warn
// level for 5xx responses.
func RequestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			req, res := c.Request(), c.Response()
			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.String("remote", c.RealIP()),
				zap.Int("status", res.Status),
				zap.Float64("duration_ms", float64(time.Since(start).Microseconds())/1000.0),
				zap.Int64("size", res.Size),
				zap.String("request_id", res.Header().Get(echo.HeaderXRequestID)),
				zap.String("device_id", deviceID(c)),
			}
			if res.Status >= 500 {
				logger.Warn("http request", fields...)
			} else {
				logger.Debug("http request", fields...)
			}
			return nil
		}
	}
}
