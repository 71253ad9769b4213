package middleware

// identity.go holds the helpers that read the scope ids ScopeAuth stored in
// the Echo context. They are shared by the rate limiter, the workspace
// opener and the request logger.

import "github.com/labstack/echo/v4"

// deviceID returns the device id of the request, or "anon" before
// ScopeAuth ran.
func deviceID(c echo.Context) string {
	if v, ok := c.Get(DeviceIDKey).(string); ok && v != "" {
		return v
	}
	return "anon"
}

// tabID returns the tab id of the request, or "" before ScopeAuth ran.
func tabID(c echo.Context) string {
	v, _ := c.Get(TabIDKey).(string)
	return v
}
