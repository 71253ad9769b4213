package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bocattovalley/bocatto-server/internal/config"
	"github.com/bocattovalley/bocatto-server/internal/kv"
)

// captureWriter copies the response body while forwarding it to the client.
// It stops copying once limit bytes were seen and marks the copy overflowed.
type captureWriter struct {
	http.ResponseWriter
	status     int
	buf        bytes.Buffer
	limit      int
	overflowed bool
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if !cw.overflowed {
		if cw.limit > 0 && cw.buf.Len()+len(b) > cw.limit {
			cw.overflowed = true
			cw.buf.Reset()
		} else {
			cw.buf.Write(b)
		}
	}
	return cw.ResponseWriter.Write(b)
}

// cachedResponse is one stored catalog response.
type cachedResponse struct {
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// catalogKey names a catalog response by dining area and view:
// "catalog:all:list", "catalog:<id>:detail" or "catalog:<id>:reviews".
func catalogKey(c echo.Context) string {
	id := c.Param("id")
	if id == "" {
		return "catalog:all:list"
	}
	view := "detail"
	if strings.HasSuffix(c.Path(), "/reviews") {
		view = "reviews"
	}
	return "catalog:" + id + ":" + view
}

// CatalogCache serves repeated reads of the dining area catalog from store.
// The catalog is static, so entries are never invalidated and only expire
// with the store's TTL. Only 200 answers to GET are stored. Requests with an
// Authorization header bypass the cache. With a nil store, or when disabled,
// the middleware passes through.
func CatalogCache(cfg config.CacheConfig, store kv.Store) echo.MiddlewareFunc {
	if !cfg.Enabled || store == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return func(c echo.Context) error { return next(c) } }
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet || c.Request().Header.Get(echo.HeaderAuthorization) != "" {
				return next(c)
			}
			ctx := c.Request().Context()
			key := catalogKey(c)

			if raw, ok, err := store.Get(ctx, key); err == nil && ok {
				var hit cachedResponse
				if json.Unmarshal([]byte(raw), &hit) == nil {
					c.Response().Header().Set("X-Cache", "HIT")
					return c.Blob(http.StatusOK, hit.ContentType, hit.Body)
				}
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")
			if err := next(c); err != nil {
				return err
			}
			if cw.status != http.StatusOK || cw.overflowed {
				return nil
			}
			b, err := json.Marshal(cachedResponse{
				ContentType: c.Response().Header().Get(echo.HeaderContentType),
				Body:        cw.buf.Bytes(),
			})
			if err == nil {
				_ = store.Set(ctx, key, string(b))
			}
			return nil
		}
	}
}
