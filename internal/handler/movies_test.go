package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moviehub/ticketing/internal/repository"
	"github.com/moviehub/ticketing/internal/utils"
)

func newMoviesTest(t *testing.T) (*MoviesHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewMoviesHandler(testCfg, repository.NewMovieRepo(db)), mock
}

func doMovies(t *testing.T, h *MoviesHandler, decorate func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/movies", nil)
	if decorate != nil {
		decorate(req)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, h.List(c))
	return rec
}

func TestMoviesListAnonymousSeesReleasedOnly(t *testing.T) {
	h, mock := newMoviesTest(t)

	mock.ExpectQuery(`FROM movies WHERE is_release = 1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "is_release", "watched_at"}).
			AddRow(1, "Heat", true, nil))

	rec := doMovies(t, h, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMoviesListAdminSeesUnreleased(t *testing.T) {
	h, mock := newMoviesTest(t)

	tok, err := utils.NewSessionToken(testCfg.JWTSecret, 1, "admin", time.Hour)
	require.NoError(t, err)

	// No is_release filter when an admin asks.
	mock.ExpectQuery(`SELECT id, name, is_release, watched_at FROM movies ORDER BY id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "is_release", "watched_at"}).
			AddRow(1, "Heat", true, nil).
			AddRow(2, "Unreleased Cut", false, nil))

	rec := doMovies(t, h, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+tok.Token)
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":2`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMoviesListNonAdminTokenStaysFiltered(t *testing.T) {
	h, mock := newMoviesTest(t)

	tok, err := utils.NewSessionToken(testCfg.JWTSecret, 2, "user", time.Hour)
	require.NoError(t, err)

	mock.ExpectQuery(`FROM movies WHERE is_release = 1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "is_release", "watched_at"}))

	rec := doMovies(t, h, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+tok.Token)
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
