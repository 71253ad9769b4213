package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bocattovalley/bocatto-server/internal/model"
	"github.com/bocattovalley/bocatto-server/internal/reservation"
)

// EnvironmentHandler serves the static dining area catalog.  These routes
// need no scope.
type EnvironmentHandler struct {
	Catalog *reservation.Catalog
}

func NewEnvironmentHandler(cat *reservation.Catalog) *EnvironmentHandler {
	return &EnvironmentHandler{Catalog: cat}
}

type environmentResp struct {
	model.Environment
	Bounds reservation.Bounds `json:"bounds"`
}

func toEnvironmentResp(e model.Environment) environmentResp {
	return environmentResp{Environment: e, Bounds: reservation.BoundsFor(e)}
}

// List returns every dining area in display order.
func (h *EnvironmentHandler) List(c echo.Context) error {
	envs := h.Catalog.All()
	items := make([]environmentResp, 0, len(envs))
	for _, e := range envs {
		items = append(items, toEnvironmentResp(e))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}

// Get returns one dining area by id.
func (h *EnvironmentHandler) Get(c echo.Context) error {
	e, ok := h.Catalog.Get(c.Param("id"))
	if !ok {
		return writeError(c, reservation.ErrUnknownEnvironment)
	}
	return c.JSON(http.StatusOK, toEnvironmentResp(e))
}

// Reviews returns the guest reviews of a dining area.
func (h *EnvironmentHandler) Reviews(c echo.Context) error {
	reviews, ok := h.Catalog.Reviews(c.Param("id"))
	if !ok {
		return writeError(c, reservation.ErrUnknownEnvironment)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": reviews, "count": len(reviews)})
}
