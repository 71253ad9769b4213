package middleware

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/bocattovalley/bocatto-server/internal/config"
	"github.com/bocattovalley/bocatto-server/internal/kv"
)

func catalogServer(store kv.Store, calls map[string]int) *echo.Echo {
	e := echo.New()
	g := e.Group("/api/environments", CatalogCache(config.CacheConfig{Enabled: true, MaxBodyBytes: 1 << 10}, store))
	g.GET("", func(c echo.Context) error {
		calls["list"]++
		return c.JSON(http.StatusOK, []string{"salon-principal", "terraza-vip"})
	})
	g.GET("/:id", func(c echo.Context) error {
		calls[c.Param("id")]++
		if c.Param("id") == "missing" {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "not_found"})
		}
		if c.Param("id") == "huge" {
			return c.String(http.StatusOK, strings.Repeat("x", 2<<10))
		}
		return c.JSON(http.StatusOK, map[string]string{"id": c.Param("id")})
	})
	g.GET("/:id/reviews", func(c echo.Context) error {
		calls[c.Param("id")+"/reviews"]++
		return c.JSON(http.StatusOK, []string{"great"})
	})
	return e
}

func TestCatalogCache(t *testing.T) {
	t.Run("second read is a hit", func(t *testing.T) {
		store := kv.NewMemory()
		calls := map[string]int{}
		e := catalogServer(store, calls)

		first := serve(e, http.MethodGet, "/api/environments/terraza-vip", "")
		if first.Code != http.StatusOK || first.Header().Get("X-Cache") != "MISS" {
			t.Fatalf("first read: %d %q", first.Code, first.Header().Get("X-Cache"))
		}
		second := serve(e, http.MethodGet, "/api/environments/terraza-vip", "")
		if second.Code != http.StatusOK || second.Header().Get("X-Cache") != "HIT" {
			t.Fatalf("second read: %d %q", second.Code, second.Header().Get("X-Cache"))
		}
		if second.Body.String() != first.Body.String() {
			t.Errorf("cached body %q, want %q", second.Body.String(), first.Body.String())
		}
		if !strings.HasPrefix(second.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
			t.Errorf("content type = %q", second.Header().Get(echo.HeaderContentType))
		}
		if calls["terraza-vip"] != 1 {
			t.Errorf("handler ran %d times, want 1", calls["terraza-vip"])
		}
		if _, ok, _ := store.Get(context.Background(), "catalog:terraza-vip:detail"); !ok {
			t.Error("entry not keyed by environment id")
		}
	})

	t.Run("keys separate areas and views", func(t *testing.T) {
		calls := map[string]int{}
		e := catalogServer(kv.NewMemory(), calls)
		for _, path := range []string{
			"/api/environments", "/api/environments/salon-principal",
			"/api/environments/salon-principal/reviews", "/api/environments/bar-lounge",
		} {
			if rec := serve(e, http.MethodGet, path, ""); rec.Header().Get("X-Cache") != "MISS" {
				t.Errorf("%s: X-Cache = %q, want MISS", path, rec.Header().Get("X-Cache"))
			}
		}
		if rec := serve(e, http.MethodGet, "/api/environments", ""); rec.Header().Get("X-Cache") != "HIT" {
			t.Errorf("list: X-Cache = %q, want HIT", rec.Header().Get("X-Cache"))
		}
		if calls["list"] != 1 || calls["salon-principal"] != 1 || calls["salon-principal/reviews"] != 1 {
			t.Errorf("calls = %v", calls)
		}
	})

	t.Run("scoped requests bypass", func(t *testing.T) {
		store := kv.NewMemory()
		calls := map[string]int{}
		e := catalogServer(store, calls)
		for i := 0; i < 2; i++ {
			rec := serve(e, http.MethodGet, "/api/environments/bar-lounge", "Bearer token")
			if rec.Code != http.StatusOK || rec.Header().Get("X-Cache") != "" {
				t.Fatalf("scoped read %d: %d %q", i, rec.Code, rec.Header().Get("X-Cache"))
			}
		}
		if calls["bar-lounge"] != 2 {
			t.Errorf("handler ran %d times, want 2", calls["bar-lounge"])
		}
		if _, ok, _ := store.Get(context.Background(), "catalog:bar-lounge:detail"); ok {
			t.Error("scoped response was stored")
		}
	})

	t.Run("errors and large bodies are not stored", func(t *testing.T) {
		calls := map[string]int{}
		e := catalogServer(kv.NewMemory(), calls)
		for i := 0; i < 2; i++ {
			if rec := serve(e, http.MethodGet, "/api/environments/missing", ""); rec.Code != http.StatusNotFound {
				t.Fatalf("missing: %d", rec.Code)
			}
			if rec := serve(e, http.MethodGet, "/api/environments/huge", ""); rec.Body.Len() != 2<<10 {
				t.Fatalf("huge body truncated to %d", rec.Body.Len())
			}
		}
		if calls["missing"] != 2 || calls["huge"] != 2 {
			t.Errorf("calls = %v", calls)
		}
	})
}
