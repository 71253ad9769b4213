package handler

import (
	"context"  // provides context with cancellation for store calls
	"net/http" // HTTP status codes and primitives
	"time"     // timeouts for store calls

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/bocattovalley/bocatto-server/internal/auth"
	"github.com/bocattovalley/bocatto-server/internal/middleware"
)

// AuthHandler exposes the auth service of the request's workspace.  It has
// no state of its own; everything lives in the scope stores.
type AuthHandler struct{}

func NewAuthHandler() *AuthHandler { return &AuthHandler{} }

// ----- DTOs -----

type registerReq struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
}
type loginReq struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}
type changePasswordReq struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

// ----- Handlers -----

// Register creates a client account and signs it in for this tab.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	w := middleware.CurrentWorkspace(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := w.Auth.Register(ctx, auth.RegisterInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Phone:           req.Phone,
		Address:         req.Address,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"user": user})
}

// Login signs a user in.  rememberMe keeps the session on the device
// instead of the tab.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	w := middleware.CurrentWorkspace(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := w.Auth.Login(ctx, req.Email, req.Password, req.RememberMe)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Logout clears the session from both tiers.  It always succeeds.
func (h *AuthHandler) Logout(c echo.Context) error {
	w := middleware.CurrentWorkspace(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	w.Auth.Logout(ctx)
	return c.NoContent(http.StatusNoContent)
}

// Me returns the signed-in user.
func (h *AuthHandler) Me(c echo.Context) error {
	u, ok := middleware.CurrentWorkspace(c).Auth.CurrentUser()
	if !ok {
		return writeError(c, auth.ErrNotAuthenticated)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}

// UpdateProfile applies a partial profile update.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	var patch auth.ProfilePatch
	if err := c.Bind(&patch); err != nil {
		return invalidBody(c)
	}
	w := middleware.CurrentWorkspace(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := w.Auth.UpdateProfile(ctx, patch)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}

// ChangePassword replaces the password after checking the current one.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, auth.ErrMissingFields)
	}
	w := middleware.CurrentWorkspace(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := w.Auth.ChangePassword(ctx, req.OldPassword, req.NewPassword); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
