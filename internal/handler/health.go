package handler // declare the package name; contains HTTP handlers

import (
	"context"
	"net/http" // net/http provides status codes and response helpers
	"time"

	"github.com/labstack/echo/v4" // echo is the web framework used for this project
	"github.com/redis/go-redis/v9"
)

// Health is a simple health‑check endpoint used by load balancers and
// monitoring systems to verify that the service is running.  It returns
// a plain text "ok" message with an HTTP 200 status code.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Ready reports which optional backends are in use.  Redis is "disabled"
// when the server started without it and the scope stores live in memory.
func Ready(rdb *redis.Client) echo.HandlerFunc {
	return func(c echo.Context) error {
		status := "disabled"
		if rdb != nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), time.Second)
			defer cancel()
			status = "up"
			if err := rdb.Ping(ctx).Err(); err != nil {
				status = "down"
			}
		}
		code := http.StatusOK
		if status == "down" {
			code = http.StatusServiceUnavailable
		}
		return c.JSON(code, echo.Map{"status": "ok", "redis": status})
	}
}
