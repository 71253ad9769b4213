package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bocattovalley/bocatto-server/internal/availability"
	"github.com/bocattovalley/bocatto-server/internal/middleware"
	"github.com/bocattovalley/bocatto-server/internal/reservation"
)

// ReservationHandler drives a booking flow per request.  Each request
// replays the steps it needs on a fresh flow of the request's workspace.
type ReservationHandler struct {
	Index availability.Index
}

func NewReservationHandler(idx availability.Index) *ReservationHandler {
	return &ReservationHandler{Index: idx}
}

// ----- DTOs -----

type availabilityResp struct {
	Environment  string                   `json:"environment"`
	Date         string                   `json:"date"`
	Time         string                   `json:"time"`
	Availability reservation.Availability `json:"availability"`
	CanConfirm   bool                     `json:"canConfirm"`
	Bounds       reservation.Bounds       `json:"bounds"`
	Occupied     []string                 `json:"occupied"`
}

type createReservationReq struct {
	Environment string `json:"environment" validate:"required"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	PartySize   int    `json:"partySize"`
	Occasion    string `json:"occasion"`
	Notes       string `json:"notes"`
}

// ----- Handlers -----

// Availability answers GET /api/reservations/availability?environment=&date=&time=.
// A missing date or time yields availability "unknown".
func (h *ReservationHandler) Availability(c echo.Context) error {
	envID := c.QueryParam("environment")
	date := c.QueryParam("date")
	slot := c.QueryParam("time")

	flow := middleware.CurrentWorkspace(c).NewFlow()
	bounds, err := flow.SelectEnvironment(envID)
	if err != nil {
		return writeError(c, err)
	}
	if err := flow.ChooseSlot(date, slot); err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	avail, err := flow.CheckAvailability(ctx)
	if err != nil {
		return writeError(c, err)
	}

	occupied := []string{}
	if date != "" && slot != "" {
		if occupied, err = h.Index.Occupied(ctx, date, slot); err != nil {
			return writeError(c, err)
		}
	}
	return c.JSON(http.StatusOK, availabilityResp{
		Environment:  envID,
		Date:         date,
		Time:         slot,
		Availability: avail,
		CanConfirm:   avail.CanConfirm(),
		Bounds:       bounds,
		Occupied:     occupied,
	})
}

// Create confirms a booking in one step: select, choose slot, confirm.
func (h *ReservationHandler) Create(c echo.Context) error {
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, reservation.ErrNoEnvironment)
	}

	flow := middleware.CurrentWorkspace(c).NewFlow()
	if _, err := flow.SelectEnvironment(req.Environment); err != nil {
		return writeError(c, err)
	}
	if err := flow.ChooseSlot(req.Date, req.Time); err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	r, err := flow.Confirm(ctx, reservation.Details{
		PartySize: req.PartySize,
		Occasion:  req.Occasion,
		Notes:     req.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, r)
}

// List returns the reservations made from the request's device.
func (h *ReservationHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	items := middleware.CurrentWorkspace(c).Reservations.All(ctx)
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}
