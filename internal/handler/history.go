package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/moviehub/ticketing/internal/repository"
)

// historyWindowDays is the size of the viewing-history window.
const historyWindowDays = 30

// HistoryHandler computes "movies watched in the last 30 days" for a
// user by resolving the ticket graph and filtering the referenced
// movies on their watched_at timestamp.
type HistoryHandler struct {
	Graph  *repository.TicketGraphRepo
	Movies *repository.MovieRepo
	// Now is the clock used to anchor the window; nil means time.Now.
	// Tests pin it to make window boundaries deterministic.
	Now func() time.Time
}

func NewHistoryHandler(graph *repository.TicketGraphRepo, movies *repository.MovieRepo) *HistoryHandler {
	return &HistoryHandler{Graph: graph, Movies: movies}
}

// historyWindow computes the inclusive [now-30d, now] window.
func historyWindow(now time.Time) (time.Time, time.Time) {
	return now.AddDate(0, 0, -historyWindowDays), now
}

// WatchedLast30Days handles GET /movies/watchedLast30Days/:id. A user
// with no tickets gets count 0 and an empty list; only an unknown user
// id is an error. Calling twice with the same data yields the same
// result: the computation is a pure read.
func (h *HistoryHandler) WatchedLast30Days(c echo.Context) error {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || userID == 0 {
		return fail(c, http.StatusBadRequest, "invalid user id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	g, err := h.Graph.Resolve(ctx, userID)
	if err != nil {
		return failFrom(c, err)
	}

	now := time.Now().UTC()
	if h.Now != nil {
		now = h.Now()
	}
	from, to := historyWindow(now)

	movies, err := h.Movies.WatchedBetween(ctx, g.MovieIDs(), from, to)
	if err != nil {
		return failFrom(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"count":   len(movies),
		"data":    movies,
	})
}
