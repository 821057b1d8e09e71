package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/moviehub/ticketing/internal/config"
	"github.com/moviehub/ticketing/internal/middleware"
	"github.com/moviehub/ticketing/internal/model"
	"github.com/moviehub/ticketing/internal/queue"
	"github.com/moviehub/ticketing/internal/repository"
	queue_publisher "github.com/moviehub/ticketing/internal/service"
	"github.com/moviehub/ticketing/internal/utils"
)

// AuthHandler bundles dependencies for the identity endpoints: the
// credential store, the ticket graph resolver (for /auth/tickets and
// the admin listing) and the revocation set used on logout.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
	Graph *repository.TicketGraphRepo
	Rev   repository.Revoker
}

func NewAuthHandler(cfg config.Config, users *repository.UserRepo, graph *repository.TicketGraphRepo, rev repository.Revoker) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Graph: graph, Rev: rev}
}

// ----- DTOs -----

type registerReq struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	Membership string `json:"membership"`
}
type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
type updateUserReq struct {
	Email        *string `json:"email"`
	Password     *string `json:"password"`
	Role         *string `json:"role"`
	Membership   *string `json:"membership"`
	RewardPoints *uint64 `json:"reward_points"`
}

// adminUserView pairs a user record with its resolved ticket graph for
// the admin listing.
type adminUserView struct {
	userResp
	Tickets []repository.TicketView `json:"tickets"`
}

// sendTokenResponse issues a session token for the user, sets it as an
// HTTP-only cookie and writes the {success, token} envelope. The
// Secure attribute rides only on production deployments so local
// development over plain HTTP keeps working.
func (h *AuthHandler) sendTokenResponse(c echo.Context, userID uint64, role string) error {
	ttl := time.Duration(h.Cfg.JWTExpireDays) * 24 * time.Hour
	tok, err := utils.NewSessionToken(h.Cfg.JWTSecret, userID, role, ttl)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "could not issue token")
	}
	c.SetCookie(&http.Cookie{
		Name:     "token",
		Value:    tok.Token,
		Expires:  tok.Exp,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.Cfg.Prod(),
	})
	return c.JSON(http.StatusOK, echo.Map{"success": true, "token": tok.Token})
}

// Register handles POST /auth/register: validate, create, log in.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.Create(ctx, req.Username, req.Email, req.Password, req.Role, req.Membership, h.Cfg.BcryptCost)
	if err != nil {
		return failFrom(c, err)
	}

	// Announce the new account to downstream consumers. Broker trouble
	// is the publisher's problem, not the registrant's.
	go publishRegistered(u)

	return h.sendTokenResponse(c, u.ID, string(u.Role))
}

func publishRegistered(u model.User) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()
	_ = queue_publisher.PublishUserRegistered(ctx, queue.UserRegisteredEvent{
		UserID:       u.ID,
		Username:     u.Username,
		Email:        u.Email,
		Membership:   string(u.Membership),
		RegisteredAt: u.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// Login handles POST /auth/login. An unknown username and a wrong
// password produce byte-identical responses; the distinction never
// leaves the repository.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if req.Username == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "please provide a username and password")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByCredentials(ctx, req.Username, req.Password)
	if err != nil {
		return failFrom(c, err)
	}
	return h.sendTokenResponse(c, u.ID, string(u.Role))
}

// Me handles GET /auth/me: the caller's own record, password excluded.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, ok := callerID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "invalid or expired token")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return failFrom(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": toUserResp(u)})
}

// Tickets handles GET /auth/tickets: the caller's resolved ticket
// graph (tickets expanded through showtime, movie, theater, cinema).
func (h *AuthHandler) Tickets(c echo.Context) error {
	uid, ok := callerID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "invalid or expired token")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	g, err := h.Graph.Resolve(ctx, uid)
	if err != nil {
		return failFrom(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": g})
}

// Logout handles GET /auth/logout. The session cookie is overwritten
// with a token that dies in ten seconds, and the caller's token id is
// added to the revocation set so presenting the old bearer token
// directly stops working too.
func (h *AuthHandler) Logout(c echo.Context) error {
	uid, ok := callerID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "invalid or expired token")
	}

	role, _ := c.Get(middleware.CtxRole).(string)
	short, err := utils.NewSessionToken(h.Cfg.JWTSecret, uid, role, 10*time.Second)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "could not issue token")
	}
	c.SetCookie(&http.Cookie{
		Name:     "token",
		Value:    short.Token,
		Expires:  short.Exp,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.Cfg.Prod(),
	})

	if jti, ok := c.Get(middleware.CtxJTI).(string); ok && h.Rev != nil {
		until, ok := c.Get(middleware.CtxTokExp).(time.Time)
		if !ok {
			// Expiry missing from context; cover the full configured
			// lifetime so the entry cannot outlive the token by less.
			until = time.Now().UTC().Add(time.Duration(h.Cfg.JWTExpireDays) * 24 * time.Hour)
		}
		// Same bound as the store calls; a stalled redis write must not
		// hold the logout open.
		ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
		defer cancel()
		_ = h.Rev.Revoke(ctx, jti, until)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// ListUsers handles GET /auth/user (admin only): every user with their
// resolved ticket graph.
func (h *AuthHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		return failFrom(c, err)
	}
	graphs, err := h.Graph.ResolveAll(ctx)
	if err != nil {
		return failFrom(c, err)
	}

	out := make([]adminUserView, 0, len(users))
	for _, u := range users {
		view := adminUserView{userResp: toUserResp(u), Tickets: []repository.TicketView{}}
		if g, ok := graphs[u.ID]; ok {
			view.Tickets = g.Tickets
		}
		out = append(out, view)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": out})
}

// DeleteUser handles DELETE /auth/user/:id (admin only). A second
// delete of the same id reports 400, matching the original contract.
func (h *AuthHandler) DeleteUser(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return fail(c, http.StatusBadRequest, "invalid user id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		return failFrom(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// UpdateUser handles PUT /auth/user/:id (self or admin). Role and
// reward-point changes are reserved for admins: without that guard a
// user could promote themselves through their own update route.
func (h *AuthHandler) UpdateUser(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return fail(c, http.StatusBadRequest, "invalid user id")
	}
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if (req.Role != nil || req.RewardPoints != nil) && !callerIsAdmin(c) {
		return fail(c, http.StatusForbidden, "forbidden")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.Update(ctx, id, repository.UserPatch{
		Email:        req.Email,
		Password:     req.Password,
		Role:         req.Role,
		Membership:   req.Membership,
		RewardPoints: req.RewardPoints,
	}, h.Cfg.BcryptCost)
	if err != nil {
		return failFrom(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": toUserResp(u)})
}
