package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bocattovalley/bocatto-server/internal/repository"
	"github.com/bocattovalley/bocatto-server/internal/service"
)

// RegistrationHandler serves POST /api/register, which writes to the
// account store and is independent of the scoped auth service.
type RegistrationHandler struct {
	Registrar *service.Registrar
}

func NewRegistrationHandler(r *service.Registrar) *RegistrationHandler {
	return &RegistrationHandler{Registrar: r}
}

type accountReq struct {
	Name     string `json:"name" validate:"required"`
	Surname  string `json:"surname" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// Register creates an account.  Every response is {"message": ...}.
func (h *RegistrationHandler) Register(c echo.Context) error {
	var req accountReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body."})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Please complete all required fields."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	err := h.Registrar.Register(ctx, service.Registration{
		Name:     req.Name,
		Surname:  req.Surname,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	switch {
	case errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "This email is already registered."})
	case errors.Is(err, service.ErrPasswordTooLong):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "The password must be at most 72 bytes long."})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error."})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "User registered successfully!"})
}
