package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/moviehub/ticketing/internal/handler"    // import the handlers that implement business logic
	"github.com/moviehub/ticketing/internal/middleware" // import middleware for JWT authentication and role enforcement
	"github.com/moviehub/ticketing/internal/model"      // role constants for the admin gates
	"github.com/moviehub/ticketing/internal/repository" // revocation set consulted by the JWT middleware
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check
// used by load balancers and monitoring.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth wires the identity endpoints.  The anonymous credential
// routes (register, login) sit behind the rate limiter; everything
// else under /auth requires a verified, un-revoked session token.
// Admin-only operations additionally pass through the role gate, and
// the per-user update route through the self-or-admin ownership gate.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, rev repository.Revoker, rl echo.MiddlewareFunc) {
	// Anonymous credential operations.  These are the only endpoints an
	// unauthenticated caller can hit repeatedly, hence the limiter.
	g := e.Group("/auth")
	g.POST("/register", a.Register, rl)
	g.POST("/login", a.Login, rl)

	// Session-holder operations.  JWTAuth validates the bearer token or
	// the session cookie and injects {user_id, role, jti} into context.
	auth := e.Group("/auth", middleware.JWTAuth(a.Cfg.JWTSecret, rev))
	auth.GET("/me", a.Me)
	auth.GET("/tickets", a.Tickets)
	auth.GET("/logout", a.Logout)

	// Administrative user management.
	auth.GET("/user", a.ListUsers, middleware.RequireRole(model.RoleAdmin))
	auth.DELETE("/user/:id", a.DeleteUser, middleware.RequireRole(model.RoleAdmin))
	// Updates are allowed for the account owner as well; the handler
	// keeps role and reward changes admin-only.
	auth.PUT("/user/:id", a.UpdateUser, middleware.RequireSelfOrAdmin("id"))
}

// RegisterMovies wires the catalog browse and the viewing-history
// aggregation.  Browsing is public (admins transparently see
// unreleased entries); history is readable by its owner or an admin.
func RegisterMovies(e *echo.Echo, m *handler.MoviesHandler, hist *handler.HistoryHandler, jwtSecret string, rev repository.Revoker) {
	e.GET("/movies", m.List)
	e.GET("/movies/watchedLast30Days/:id", hist.WatchedLast30Days,
		middleware.JWTAuth(jwtSecret, rev), middleware.RequireSelfOrAdmin("id"))
}
