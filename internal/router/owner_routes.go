package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/bocattovalley/bocatto-server/internal/handler"    // admin handlers
	"github.com/bocattovalley/bocatto-server/internal/middleware" // role guard
	"github.com/bocattovalley/bocatto-server/internal/model"
)

// RegisterAdmin registers administrator endpoints under /api/admin on a
// scoped group.  Signed-out callers get 401, clients get 403.
func RegisterAdmin(g *echo.Group, h *handler.AdminHandler) {
	admin := g.Group("/admin", middleware.RequireRole(model.RoleAdministrator))
	admin.GET("/dashboard", h.Dashboard)
	admin.GET("/users", h.Users)
}
