package model

import (
    "database/sql"
    "time"
)

// Cinema is a venue containing one or more theaters.  Cinemas are
// shared catalog entities: tickets reference them indirectly through
// theaters and never own them.
//
// Fields:
//  ID   – primary key identifier.
//  Name – display name of the venue.
type Cinema struct {
    ID   uint64 // cinemas.id
    Name string // cinemas.name
}

// Theater is a single screening room inside a cinema, identified to
// visitors by its number.
//
// Fields:
//  ID       – primary key identifier.
//  CinemaID – cinema this theater belongs to.
//  Number   – display number within the cinema.
type Theater struct {
    ID       uint64 // theaters.id
    CinemaID uint64 // theaters.cinema_id
    Number   uint32 // theaters.number
}

// Movie is a catalog entry.  WatchedAt marks the moment a viewing of
// this movie actually happened, as opposed to the showtime's scheduled
// starting time; the recency aggregation filters on it.  It is NULL
// until the first viewing is recorded.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – movie title.
//  IsRelease – whether the movie is released to the public; unreleased
//              entries are visible to admins only.
//  WatchedAt – timestamp of the recorded viewing (nullable).
type Movie struct {
    ID        uint64       // movies.id
    Name      string       // movies.name
    IsRelease bool         // movies.is_release
    WatchedAt sql.NullTime // movies.watched_at
}

// Showtime is a scheduled screening of one movie in one theater.
// IsRelease gates visibility of the screening to non-privileged
// viewers.
//
// Fields:
//  ID        – primary key identifier.
//  MovieID   – movie being screened.
//  TheaterID – theater hosting the screening.
//  StartsAt  – scheduled start of the screening.
//  IsRelease – whether the screening is publicly visible.
type Showtime struct {
    ID        uint64    // showtimes.id
    MovieID   uint64    // showtimes.movie_id
    TheaterID uint64    // showtimes.theater_id
    StartsAt  time.Time // showtimes.starts_at
    IsRelease bool      // showtimes.is_release
}

// Ticket links a user to a showtime.  A ticket is owned by exactly one
// user; the showtime (and everything reachable from it) is shared.
//
// Fields:
//  ID         – primary key identifier.
//  UserID     – owner of the ticket.
//  ShowtimeID – screening the ticket admits to.
type Ticket struct {
    ID         uint64 // tickets.id
    UserID     uint64 // tickets.user_id
    ShowtimeID uint64 // tickets.showtime_id
}
