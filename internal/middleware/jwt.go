package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/moviehub/ticketing/internal/repository" // revocation set lookup
    "github.com/moviehub/ticketing/internal/utils"      // session token parsing
)

// Context keys populated by JWTAuth for downstream middleware and
// handlers.
const (
    CtxUserID = "user_id"   // uint64 subject of the verified token
    CtxRole   = "role"      // string role claim
    CtxJTI    = "jti"       // string token id, used by logout to revoke
    CtxTokExp = "token_exp" // time.Time expiry, bounds the revocation TTL
)

// JWTAuth returns an Echo middleware that authenticates the request and
// injects the decoded identity into the context.  The session token is
// read from the Authorization header ("Bearer <token>") or, failing
// that, from the HTTP-only "token" cookie that login sets for browser
// clients.  A token whose id sits in the revocation set is rejected
// even when its signature and expiry are still good; rev may be nil,
// in which case only signature and expiry are checked.
//
// Every failure mode (missing token, bad signature, expired, revoked)
// produces the same 401 body so callers learn nothing about which
// check tripped.
func JWTAuth(secret string, rev repository.Revoker) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw := bearerOrCookie(c)
            if raw == "" {
                return unauthorized(c)
            }
            claims, err := utils.ParseSessionToken(secret, raw)
            if err != nil {
                return unauthorized(c)
            }
            if rev != nil && rev.IsRevoked(c.Request().Context(), claims.JTI) {
                return unauthorized(c)
            }
            // Hand the decoded identity to RequireRole/RequireSelfOrAdmin
            // and to the handlers themselves.
            c.Set(CtxUserID, claims.UserID)
            c.Set(CtxRole, claims.Role)
            c.Set(CtxJTI, claims.JTI)
            c.Set(CtxTokExp, claims.Exp)
            return next(c)
        }
    }
}

// bearerOrCookie extracts the raw token string from the request.  The
// Authorization header wins over the cookie when both are present.
func bearerOrCookie(c echo.Context) string {
    auth := c.Request().Header.Get("Authorization")
    if strings.HasPrefix(auth, "Bearer ") {
        return strings.TrimPrefix(auth, "Bearer ")
    }
    if ck, err := c.Cookie("token"); err == nil && ck.Value != "" && ck.Value != "none" {
        return ck.Value
    }
    return ""
}

func unauthorized(c echo.Context) error {
    return c.JSON(http.StatusUnauthorized, echo.Map{
        "success": false,
        "message": "invalid or expired token",
    })
}
