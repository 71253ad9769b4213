package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/bocattovalley/bocatto-server/internal/handler"    // import the handlers that implement business logic
	"github.com/bocattovalley/bocatto-server/internal/middleware" // scope auth, workspace and role middleware
	"github.com/bocattovalley/bocatto-server/internal/workspace"
)

// RegisterRoutes registers routes that do not require a scope: the health
// and readiness checks.
func RegisterRoutes(e *echo.Echo, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(rdb))
}

// RegisterScope exposes POST /api/scope, which hands out the device/tab
// token every scoped route needs.
func RegisterScope(e *echo.Echo, s *handler.ScopeHandler) {
	e.POST("/api/scope", s.Issue)
}

// Scoped returns the /api group whose handlers run inside the workspace of
// the caller's scope token.
func Scoped(e *echo.Echo, jwtSecret string, p *workspace.Provider, mw ...echo.MiddlewareFunc) *echo.Group {
	chain := append([]echo.MiddlewareFunc{middleware.ScopeAuth(jwtSecret)}, mw...)
	chain = append(chain, middleware.OpenWorkspace(p))
	return e.Group("/api", chain...)
}

// RegisterAuth registers the auth routes on a scoped group.  authLimit is
// applied to register and login only.
func RegisterAuth(g *echo.Group, a *handler.AuthHandler, authLimit echo.MiddlewareFunc) {
	auth := g.Group("/auth")
	auth.POST("/register", a.Register, authLimit)
	auth.POST("/login", a.Login, authLimit)
	auth.POST("/logout", a.Logout)

	// Signed-in user routes; any role passes.
	signedIn := middleware.RequireRole()
	auth.GET("/me", a.Me, signedIn)
	auth.PATCH("/profile", a.UpdateProfile, signedIn)
	auth.POST("/password", a.ChangePassword, signedIn)
}

// RegisterCatalog registers the public dining area routes.  cache is the
// response cache middleware.
func RegisterCatalog(e *echo.Echo, h *handler.EnvironmentHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/api/environments", cache)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.GET("/:id/reviews", h.Reviews)
}

// RegisterRegistration registers POST /api/register.  It has no scope: the
// accounts it creates live in the database, not in a device.
func RegisterRegistration(e *echo.Echo, h *handler.RegistrationHandler, limit echo.MiddlewareFunc) {
	e.POST("/api/register", h.Register, limit)
}
