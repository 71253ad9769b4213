package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bocattovalley/bocatto-server/internal/auth"
	"github.com/bocattovalley/bocatto-server/internal/middleware"
	"github.com/bocattovalley/bocatto-server/internal/model"
)

// AdminHandler backs the administrator dashboard.  Routes are guarded by
// RequireRole(model.RoleAdministrator).
type AdminHandler struct{}

func NewAdminHandler() *AdminHandler { return &AdminHandler{} }

// Dashboard returns directory and reservation counts of the device.
func (h *AdminHandler) Dashboard(c echo.Context) error {
	w := middleware.CurrentWorkspace(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	return c.JSON(http.StatusOK, echo.Map{
		"users":        w.Directory.Stats(ctx),
		"reservations": len(w.Reservations.All(ctx)),
	})
}

// Users lists the directory without passwords.
func (h *AdminHandler) Users(c echo.Context) error {
	w := middleware.CurrentWorkspace(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	all := w.Directory.All(ctx)
	items := make([]model.SafeUser, 0, len(all))
	for _, u := range all {
		items = append(items, auth.SafeUserData(u))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}
