package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bocattovalley/bocatto-server/internal/workspace"
)

// WorkspaceKey is the context key of the opened workspace.
const WorkspaceKey = "workspace"

// OpenWorkspace opens the workspace of the request's scope before the
// handler runs and closes it afterwards. It must run after ScopeAuth.
func OpenWorkspace(p *workspace.Provider) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tab := tabID(c)
			if tab == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing_scope", "message": "missing bearer token"})
			}
			w := p.Open(c.Request().Context(), deviceID(c), tab)
			defer w.Close()
			c.Set(WorkspaceKey, w)
			return next(c)
		}
	}
}

// CurrentWorkspace returns the workspace opened for the request, or nil.
func CurrentWorkspace(c echo.Context) *workspace.Workspace {
	w, _ := c.Get(WorkspaceKey).(*workspace.Workspace)
	return w
}
