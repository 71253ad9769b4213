package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bocattovalley/bocatto-server/internal/auth"
	"github.com/bocattovalley/bocatto-server/internal/reservation"
)

// errorBody is the JSON shape of every scoped API failure.
func errorBody(code, message string) echo.Map {
	return echo.Map{"error": code, "message": message}
}

// writeError translates auth and reservation errors into HTTP responses.
// Anything unrecognized becomes a 500 without leaking the error text.
func writeError(c echo.Context, err error) error {
	var f *auth.Failure
	if errors.As(err, &f) {
		return c.JSON(authStatus(f.Code), errorBody(string(f.Code), f.Message))
	}
	var capErr *reservation.CapacityError
	switch {
	case errors.As(err, &capErr):
		return c.JSON(http.StatusBadRequest, errorBody("party_size_out_of_range", capErr.Error()))
	case errors.Is(err, reservation.ErrUnknownEnvironment):
		return c.JSON(http.StatusNotFound, errorBody("unknown_environment", err.Error()))
	case errors.Is(err, reservation.ErrMissingDetails),
		errors.Is(err, reservation.ErrNoEnvironment):
		return c.JSON(http.StatusBadRequest, errorBody("missing_fields", err.Error()))
	case errors.Is(err, reservation.ErrInvalidTime):
		return c.JSON(http.StatusBadRequest, errorBody("invalid_time", err.Error()))
	case errors.Is(err, reservation.ErrSlotUnavailable):
		return c.JSON(http.StatusConflict, errorBody("slot_unavailable", err.Error()))
	}
	c.Logger().Error(err)
	return c.JSON(http.StatusInternalServerError, errorBody("internal_error", "internal server error"))
}

func authStatus(code auth.Code) int {
	switch code {
	case auth.CodeInvalidCredentials, auth.CodeNotAuthenticated:
		return http.StatusUnauthorized
	case auth.CodeAccountDeactivated, auth.CodeForbidden:
		return http.StatusForbidden
	case auth.CodeEmailTaken:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func invalidBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, errorBody("invalid_body", "invalid body"))
}
