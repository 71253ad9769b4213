package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bocattovalley/bocatto-server/internal/utils"
)

// ScopeHandler issues the scope tokens every other /api route requires.  A
// scope token names a device (the durable tier) and a tab (the per-tab
// tier).
type ScopeHandler struct {
	Secret string
	TTL    time.Duration
}

func NewScopeHandler(secret string, ttl time.Duration) *ScopeHandler {
	return &ScopeHandler{Secret: secret, TTL: ttl}
}

type scopeResp struct {
	Token    string    `json:"token"`
	DeviceID string    `json:"device_id"`
	TabID    string    `json:"tab_id"`
	Expires  time.Time `json:"expires"`
}

// Issue opens a new tab.  When the request carries a valid scope token the
// new tab belongs to the same device; otherwise a new device is created.
func (h *ScopeHandler) Issue(c echo.Context) error {
	deviceID := ""
	if raw := c.Request().Header.Get("Authorization"); strings.HasPrefix(raw, "Bearer ") {
		if dev, _, err := utils.ParseScopeToken(h.Secret, strings.TrimPrefix(raw, "Bearer ")); err == nil {
			deviceID = dev
		}
	}
	if deviceID == "" {
		deviceID = utils.NewKSUID()
	}

	tok, err := utils.NewScopeToken(h.Secret, deviceID, utils.NewKSUID(), h.TTL)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorBody("token_issue_failed", "could not issue token"))
	}
	return c.JSON(http.StatusCreated, scopeResp{
		Token:    tok.Token,
		DeviceID: tok.DeviceID,
		TabID:    tok.TabID,
		Expires:  tok.Exp,
	})
}
