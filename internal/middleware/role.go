package middleware // middleware provides shared request processing for handlers

import (
	"errors"
	"net/http" // http package defines standard HTTP status codes

	"github.com/labstack/echo/v4" // echo provides middleware chaining and context

	"github.com/bocattovalley/bocatto-server/internal/auth"
	"github.com/bocattovalley/bocatto-server/internal/model"
)

// RequireRole is the page guard. It rejects the request with 401 when
// nobody is signed in to the scope and with 403 when the signed-in user
// has none of the given roles. With no roles any signed-in user passes.
// It must run after OpenWorkspace.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			w := CurrentWorkspace(c)
			if w == nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": string(auth.CodeNotAuthenticated), "message": auth.ErrNotAuthenticated.Message})
			}
			err := w.Auth.Guard("")
			if err == nil && len(roles) > 0 {
				err = auth.ErrForbidden
				for _, r := range roles {
					if w.Auth.Guard(r) == nil {
						err = nil
						break
					}
				}
			}
			switch {
			case err == nil:
				return next(c)
			case errors.Is(err, auth.ErrNotAuthenticated):
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": string(auth.CodeNotAuthenticated), "message": auth.ErrNotAuthenticated.Message})
			default:
				return c.JSON(http.StatusForbidden, echo.Map{"error": string(auth.CodeForbidden), "message": auth.ErrForbidden.Message})
			}
		}
	}
}
