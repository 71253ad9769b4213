package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/bocattovalley/bocatto-server/internal/utils"
)

// Context keys set by ScopeAuth.
const (
	DeviceIDKey = "device_id"
	TabIDKey    = "tab_id"
)

// ScopeAuth returns an Echo middleware that validates a Bearer scope token
// and injects the device and tab ids it carries into the request context.
// The provided secret must match the one used when issuing tokens.  Handlers
// read the ids via `c.Get("device_id")` and `c.Get("tab_id")`.
func ScopeAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// A valid header starts with "Bearer " followed by the JWT.
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing_scope", "message": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			deviceID, tabID, err := utils.ParseScopeToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid_scope", "message": "invalid token"})
			}
			c.Set(DeviceIDKey, deviceID)
			c.Set(TabIDKey, tabID)
			return next(c)
		}
	}
}
