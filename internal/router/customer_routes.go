package router

import (
	"github.com/labstack/echo/v4"

	"github.com/bocattovalley/bocatto-server/internal/handler"
)

// RegisterReservations registers the booking routes on a scoped group.
// Anonymous guests may book; a signed-in client becomes the owner of the
// reservation.
func RegisterReservations(g *echo.Group, h *handler.ReservationHandler) {
	g.GET("/reservations/availability", h.Availability)
	g.POST("/reservations", h.Create)
	g.GET("/reservations", h.List)
}
