// Package repository contains data access logic for the movie catalog.
// Movies are shared, referenced-not-owned entities; this repo only ever
// reads them. Writes happen through the catalog CRUD service, which is
// outside this subsystem.
package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/moviehub/ticketing/internal/model"
)

// MovieRepo reads the movie catalog.
type MovieRepo struct{ DB *sql.DB }

func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{DB: db} }

// WatchedBetween returns the movies among ids whose watched_at falls
// inside [from, to], both bounds inclusive. Results come back in id
// order, the catalog's natural order. An empty id set short-circuits
// to an empty result without touching the database.
func (r *MovieRepo) WatchedBetween(ctx context.Context, ids []uint64, from, to time.Time) ([]MovieView, error) {
	if len(ids) == 0 {
		return []MovieView{}, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, 0, len(ids)+2)
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, from, to)

	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, name, is_release, watched_at FROM movies
		 WHERE id IN (`+placeholders+`) AND watched_at >= ? AND watched_at <= ?
		 ORDER BY id`, args...)
	if err != nil {
		return nil, asStoreErr(err)
	}
	defer rows.Close()
	return scanMovieViews(rows)
}

// List returns the catalog in id order. Unreleased entries are
// filtered out unless includeUnreleased is set (admin callers only).
func (r *MovieRepo) List(ctx context.Context, includeUnreleased bool) ([]MovieView, error) {
	q := "SELECT id, name, is_release, watched_at FROM movies"
	if !includeUnreleased {
		q += " WHERE is_release = 1"
	}
	q += " ORDER BY id"

	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, asStoreErr(err)
	}
	defer rows.Close()
	return scanMovieViews(rows)
}

func scanMovieViews(rows *sql.Rows) ([]MovieView, error) {
	out := []MovieView{}
	for rows.Next() {
		var m model.Movie
		if err := rows.Scan(&m.ID, &m.Name, &m.IsRelease, &m.WatchedAt); err != nil {
			return nil, err
		}
		out = append(out, movieView(m))
	}
	return out, rows.Err()
}
