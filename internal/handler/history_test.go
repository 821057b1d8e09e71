package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moviehub/ticketing/internal/repository"
)

var graphCols = []string{
	"t.id", "st.id", "st.starts_at", "st.is_release",
	"m.id", "m.name", "m.is_release", "m.watched_at",
	"th.id", "th.number", "c.id", "c.name",
}

func newHistoryTest(t *testing.T, now time.Time) (*HistoryHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	h := NewHistoryHandler(repository.NewTicketGraphRepo(db), repository.NewMovieRepo(db))
	h.Now = func() time.Time { return now }
	return h, mock
}

func doHistory(t *testing.T, h *HistoryHandler, id string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/movies/watchedLast30Days/"+id, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id)
	require.NoError(t, h.WatchedLast30Days(c))
	return rec
}

type historyResp struct {
	Success bool                   `json:"success"`
	Count   int                    `json:"count"`
	Data    []repository.MovieView `json:"data"`
}

// User with tickets to M1 (watched 5 days ago) and M2 (watched 40 days
// ago): only M1 falls inside the 30-day window.
func TestWatchedLast30DaysFiltersWindow(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	h, mock := newHistoryTest(t, now)

	starts := now.AddDate(0, 0, -6)
	watchedM1 := now.AddDate(0, 0, -5)

	mock.ExpectQuery("SELECT reward_points FROM users WHERE id=\\?").
		WillReturnRows(sqlmock.NewRows([]string{"reward_points"}).AddRow(0))
	mock.ExpectQuery("FROM tickets t").WillReturnRows(
		sqlmock.NewRows(graphCols).
			AddRow(1, 10, starts, true, 100, "M1", true, watchedM1, 20, 1, 30, "Grand").
			AddRow(2, 11, starts, true, 101, "M2", true, now.AddDate(0, 0, -40), 20, 1, 30, "Grand"))
	// The store applies the window filter; both movie ids are queried,
	// the bounds are [now-30d, now], and only M1 comes back.
	mock.ExpectQuery(`watched_at >= \? AND watched_at <= \?`).
		WithArgs(uint64(100), uint64(101), now.AddDate(0, 0, -30), now).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "is_release", "watched_at"}).
			AddRow(100, "M1", true, watchedM1))

	rec := doHistory(t, h, "7")
	require.Equal(t, http.StatusOK, rec.Code)

	var body historyResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 1, body.Count)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "M1", body.Data[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Zero tickets is a normal state: count 0, empty list, HTTP 200. The
// movie query is skipped entirely.
func TestWatchedLast30DaysNoTickets(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	h, mock := newHistoryTest(t, now)

	mock.ExpectQuery("SELECT reward_points FROM users WHERE id=\\?").
		WillReturnRows(sqlmock.NewRows([]string{"reward_points"}).AddRow(0))
	mock.ExpectQuery("FROM tickets t").WillReturnRows(sqlmock.NewRows(graphCols))

	rec := doHistory(t, h, "7")
	require.Equal(t, http.StatusOK, rec.Code)

	var body historyResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 0, body.Count)
	assert.Empty(t, body.Data)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWatchedLast30DaysUnknownUser(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	h, mock := newHistoryTest(t, now)

	mock.ExpectQuery("SELECT reward_points FROM users WHERE id=\\?").
		WillReturnError(sql.ErrNoRows)

	rec := doHistory(t, h, "404")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

// Same user, same pinned clock, same data: two calls produce the same
// body.
func TestWatchedLast30DaysIdempotent(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	h, mock := newHistoryTest(t, now)

	watched := now.AddDate(0, 0, -3)
	expectOnce := func() {
		mock.ExpectQuery("SELECT reward_points FROM users WHERE id=\\?").
			WillReturnRows(sqlmock.NewRows([]string{"reward_points"}).AddRow(0))
		mock.ExpectQuery("FROM tickets t").WillReturnRows(
			sqlmock.NewRows(graphCols).
				AddRow(1, 10, now, true, 100, "M1", true, watched, 20, 1, 30, "Grand"))
		mock.ExpectQuery(`watched_at >= \? AND watched_at <= \?`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "is_release", "watched_at"}).
				AddRow(100, "M1", true, watched))
	}

	expectOnce()
	first := doHistory(t, h, "7")
	expectOnce()
	second := doHistory(t, h, "7")

	assert.Equal(t, first.Body.Bytes(), second.Body.Bytes())
}

func TestHistoryWindow(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	from, to := historyWindow(now)
	assert.Equal(t, now.AddDate(0, 0, -30), from)
	assert.Equal(t, now, to)
}
