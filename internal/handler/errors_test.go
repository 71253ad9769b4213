package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/bocattovalley/bocatto-server/internal/auth"
	"github.com/bocattovalley/bocatto-server/internal/reservation"
)

func TestWriteError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"slot chosen before an area", reservation.ErrNoEnvironment, http.StatusBadRequest, "missing_fields"},
		{"unknown area", reservation.ErrUnknownEnvironment, http.StatusNotFound, "unknown_environment"},
		{"taken slot", reservation.ErrSlotUnavailable, http.StatusConflict, "slot_unavailable"},
		{"password too long", auth.ErrPasswordTooLong, http.StatusBadRequest, "password_too_long"},
		{"unrecognized", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
			if err := writeError(c, tc.err); err != nil {
				t.Fatalf("writeError: %v", err)
			}
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body["error"] != tc.code {
				t.Errorf("error = %q, want %q", body["error"], tc.code)
			}
		})
	}
}
