package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/moviehub/ticketing/internal/config"
	"github.com/moviehub/ticketing/internal/model"
	"github.com/moviehub/ticketing/internal/repository"
	"github.com/moviehub/ticketing/internal/utils"
)

// MoviesHandler serves the now-showing catalog browse. The route is
// public, but a caller presenting a valid admin token also sees
// unreleased entries.
type MoviesHandler struct {
	Cfg    config.Config
	Movies *repository.MovieRepo
}

func NewMoviesHandler(cfg config.Config, movies *repository.MovieRepo) *MoviesHandler {
	return &MoviesHandler{Cfg: cfg, Movies: movies}
}

// List handles GET /movies. Identity is optional here, so the token is
// parsed opportunistically rather than through the auth middleware;
// an invalid token simply degrades to the anonymous view.
func (h *MoviesHandler) List(c echo.Context) error {
	includeUnreleased := false
	if raw := optionalToken(c); raw != "" {
		if claims, err := utils.ParseSessionToken(h.Cfg.JWTSecret, raw); err == nil {
			includeUnreleased = model.Role(claims.Role) == model.RoleAdmin
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	movies, err := h.Movies.List(ctx, includeUnreleased)
	if err != nil {
		return failFrom(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"count":   len(movies),
		"data":    movies,
	})
}

// optionalToken pulls a bearer or cookie token if one rides along.
func optionalToken(c echo.Context) string {
	auth := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if ck, err := c.Cookie("token"); err == nil {
		return ck.Value
	}
	return ""
}
