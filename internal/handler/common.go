package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/moviehub/ticketing/internal/middleware"
	"github.com/moviehub/ticketing/internal/model"
	"github.com/moviehub/ticketing/internal/repository"
)

// dbTimeout bounds every store call issued from a handler. Deadline
// expiry surfaces as the transient taxonomy (HTTP 503), never as a
// not-found.
const dbTimeout = 5 * time.Second

// userResp is the outbound shape of a user record. There is no
// password field at all, so a serialization bug cannot leak the hash.
type userResp struct {
	ID           uint64           `json:"id"`
	Username     string           `json:"username"`
	Email        string           `json:"email"`
	Role         model.Role       `json:"role"`
	Membership   model.Membership `json:"membership"`
	RewardPoints uint64           `json:"reward_points"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

func toUserResp(u model.User) userResp {
	return userResp{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		Role:         u.Role,
		Membership:   u.Membership,
		RewardPoints: u.RewardPoints,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// fail writes the uniform error envelope.
func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"success": false, "message": msg})
}

// failFrom maps a repository sentinel to its HTTP status and writes
// the envelope. The user CRUD routes report missing entities as 400
// per the original contract, so ErrNotFound maps to 400 here.
func failFrom(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrInvalidInput):
		return fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrUserExists):
		return fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		return fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrInvalidCredentials):
		return fail(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, repository.ErrForbidden):
		return fail(c, http.StatusForbidden, err.Error())
	case errors.Is(err, repository.ErrUnavailable):
		return fail(c, http.StatusServiceUnavailable, err.Error())
	}
	// Internals never reach the wire.
	return fail(c, http.StatusInternalServerError, "internal error")
}

// callerID extracts the authenticated user id placed in the context by
// the JWT middleware.
func callerID(c echo.Context) (uint64, bool) {
	uid, ok := c.Get(middleware.CtxUserID).(uint64)
	return uid, ok
}

// callerIsAdmin reports whether the authenticated caller carries the
// admin role.
func callerIsAdmin(c echo.Context) bool {
	role, ok := c.Get(middleware.CtxRole).(string)
	return ok && model.Role(role) == model.RoleAdmin
}
