// Package repository: ticket graph resolution. A user's tickets form a
// reference chain ticket -> showtime -> {movie, theater -> cinema}. The
// resolver expands that chain into a denormalized view in one LEFT JOIN
// pass, so a broken link anywhere in the chain degrades a single ticket
// to a partial entry instead of failing the whole batch.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/moviehub/ticketing/internal/model"
)

// Per-ticket resolution status values.
const (
	TicketResolved = "resolved" // every reference in the chain resolved
	TicketPartial  = "partial"  // one or more references were dangling
)

// MovieView is the movie slice of a resolved ticket.
type MovieView struct {
	ID        uint64     `json:"id"`
	Name      string     `json:"name"`
	IsRelease bool       `json:"is_release"`
	WatchedAt *time.Time `json:"watched_at,omitempty"`
}

// CinemaView carries the cinema name only, matching what the ticket
// listing exposes.
type CinemaView struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// TheaterView is the theater slice of a resolved ticket, with its
// cinema expanded when that reference resolves.
type TheaterView struct {
	ID     uint64      `json:"id"`
	Number uint32      `json:"number"`
	Cinema *CinemaView `json:"cinema,omitempty"`
}

// ShowtimeView is the expanded showtime a ticket points at.
type ShowtimeView struct {
	ID        uint64       `json:"id"`
	StartsAt  time.Time    `json:"starts_at"`
	IsRelease bool         `json:"is_release"`
	Movie     *MovieView   `json:"movie,omitempty"`
	Theater   *TheaterView `json:"theater,omitempty"`
}

// TicketView is the tagged per-ticket result. Status is "resolved" when
// the full chain expanded; otherwise "partial" and Missing names the
// references that were dangling ("showtime", "movie", "theater",
// "cinema"). A dangling showtime is a data-integrity fault upstream,
// but the resolver still reports the ticket rather than aborting.
type TicketView struct {
	TicketID uint64        `json:"ticket_id"`
	Status   string        `json:"status"`
	Missing  []string      `json:"missing,omitempty"`
	Showtime *ShowtimeView `json:"showtime,omitempty"`
}

// TicketGraph is the projection the ticket endpoints return: the
// user's reward balance plus every ticket expanded.
type TicketGraph struct {
	UserID       uint64       `json:"user_id"`
	RewardPoints uint64       `json:"reward_points"`
	Tickets      []TicketView `json:"tickets"`
}

// Record-to-view converters. Repositories scan into the model records
// and these map them onto the wire shapes.

func movieView(m model.Movie) MovieView {
	mv := MovieView{ID: m.ID, Name: m.Name, IsRelease: m.IsRelease}
	if m.WatchedAt.Valid {
		w := m.WatchedAt.Time
		mv.WatchedAt = &w
	}
	return mv
}

func cinemaView(cn model.Cinema) CinemaView {
	return CinemaView{ID: cn.ID, Name: cn.Name}
}

func theaterView(th model.Theater) TheaterView {
	return TheaterView{ID: th.ID, Number: th.Number}
}

func showtimeView(st model.Showtime) ShowtimeView {
	return ShowtimeView{ID: st.ID, StartsAt: st.StartsAt, IsRelease: st.IsRelease}
}

// TicketGraphRepo resolves users' ticket reference chains.
type TicketGraphRepo struct{ DB *sql.DB }

func NewTicketGraphRepo(db *sql.DB) *TicketGraphRepo { return &TicketGraphRepo{DB: db} }

const ticketGraphQuery = `SELECT
		t.id,
		st.id, st.starts_at, st.is_release,
		m.id, m.name, m.is_release, m.watched_at,
		th.id, th.number,
		c.id, c.name
	FROM tickets t
	LEFT JOIN showtimes st ON st.id = t.showtime_id
	LEFT JOIN movies    m  ON m.id  = st.movie_id
	LEFT JOIN theaters  th ON th.id = st.theater_id
	LEFT JOIN cinemas   c  ON c.id  = th.cinema_id
	WHERE t.user_id = ?
	ORDER BY t.id`

// Resolve expands the full ticket graph of one user. It returns
// ErrNotFound when the user id does not exist; a user with no tickets
// resolves to an empty (non-nil) ticket list.
func (r *TicketGraphRepo) Resolve(ctx context.Context, userID uint64) (TicketGraph, error) {
	g := TicketGraph{UserID: userID, Tickets: []TicketView{}}

	// The projection only needs the reward balance, but the row probe
	// also distinguishes "no tickets" from "no such user".
	err := r.DB.QueryRowContext(ctx,
		"SELECT reward_points FROM users WHERE id=?", userID).Scan(&g.RewardPoints)
	if err == sql.ErrNoRows {
		return TicketGraph{}, ErrNotFound
	}
	if err != nil {
		return TicketGraph{}, asStoreErr(err)
	}

	rows, err := r.DB.QueryContext(ctx, ticketGraphQuery, userID)
	if err != nil {
		return TicketGraph{}, asStoreErr(err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			tk model.Ticket

			stID      sql.NullInt64
			stStarts  sql.NullTime
			stRelease sql.NullBool

			mID      sql.NullInt64
			mName    sql.NullString
			mRelease sql.NullBool
			mWatched sql.NullTime

			thID     sql.NullInt64
			thNumber sql.NullInt64

			cID   sql.NullInt64
			cName sql.NullString
		)
		if err := rows.Scan(&tk.ID,
			&stID, &stStarts, &stRelease,
			&mID, &mName, &mRelease, &mWatched,
			&thID, &thNumber,
			&cID, &cName); err != nil {
			return TicketGraph{}, err
		}
		tk.UserID = userID
		g.Tickets = append(g.Tickets, buildTicketView(tk,
			stID, stStarts, stRelease, mID, mName, mRelease, mWatched,
			thID, thNumber, cID, cName))
	}
	if err := rows.Err(); err != nil {
		return TicketGraph{}, asStoreErr(err)
	}
	return g, nil
}

// ResolveAll expands the ticket graph for every user, in user id order.
// Used by the admin listing.
func (r *TicketGraphRepo) ResolveAll(ctx context.Context) (map[uint64]TicketGraph, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT id FROM users ORDER BY id")
	if err != nil {
		return nil, asStoreErr(err)
	}
	ids := []uint64{}
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, asStoreErr(err)
	}

	graphs := make(map[uint64]TicketGraph, len(ids))
	for _, id := range ids {
		g, err := r.Resolve(ctx, id)
		if err != nil {
			// A user deleted between the id scan and the resolve is the
			// eventual-consistency case; skip it instead of failing.
			if err == ErrNotFound {
				continue
			}
			return nil, err
		}
		graphs[id] = g
	}
	return graphs, nil
}

// buildTicketView assembles the tagged view for one joined row. Each
// hop that resolved becomes a model record and converts to its view;
// each dangling reference lands in Missing.
func buildTicketView(tk model.Ticket,
	stID sql.NullInt64, stStarts sql.NullTime, stRelease sql.NullBool,
	mID sql.NullInt64, mName sql.NullString, mRelease sql.NullBool, mWatched sql.NullTime,
	thID sql.NullInt64, thNumber sql.NullInt64,
	cID sql.NullInt64, cName sql.NullString) TicketView {

	tv := TicketView{TicketID: tk.ID, Status: TicketResolved}

	if !stID.Valid {
		tv.Status = TicketPartial
		tv.Missing = append(tv.Missing, "showtime")
		return tv
	}
	tk.ShowtimeID = uint64(stID.Int64)
	st := showtimeView(model.Showtime{
		ID:        tk.ShowtimeID,
		MovieID:   uint64(mID.Int64),
		TheaterID: uint64(thID.Int64),
		StartsAt:  stStarts.Time,
		IsRelease: stRelease.Bool,
	})
	tv.Showtime = &st

	if mID.Valid {
		mv := movieView(model.Movie{
			ID:        uint64(mID.Int64),
			Name:      mName.String,
			IsRelease: mRelease.Bool,
			WatchedAt: mWatched,
		})
		st.Movie = &mv
	} else {
		tv.Status = TicketPartial
		tv.Missing = append(tv.Missing, "movie")
	}

	if thID.Valid {
		thv := theaterView(model.Theater{
			ID:       uint64(thID.Int64),
			CinemaID: uint64(cID.Int64),
			Number:   uint32(thNumber.Int64),
		})
		st.Theater = &thv
		if cID.Valid {
			cv := cinemaView(model.Cinema{ID: uint64(cID.Int64), Name: cName.String})
			st.Theater.Cinema = &cv
		} else {
			tv.Status = TicketPartial
			tv.Missing = append(tv.Missing, "cinema")
		}
	} else {
		tv.Status = TicketPartial
		tv.Missing = append(tv.Missing, "theater")
	}
	return tv
}

// MovieIDs returns the distinct movie ids referenced by the graph's
// resolved tickets, in first-seen order. Partial tickets without a
// movie contribute nothing.
func (g TicketGraph) MovieIDs() []uint64 {
	seen := map[uint64]bool{}
	ids := []uint64{}
	for _, t := range g.Tickets {
		if t.Showtime == nil || t.Showtime.Movie == nil {
			continue
		}
		id := t.Showtime.Movie.ID
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}
