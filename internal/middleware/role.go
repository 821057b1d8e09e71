package middleware // middleware provides shared request processing for handlers

import (
    "net/http" // http package defines standard HTTP status codes
    "strconv"  // strconv parses path parameters

    "github.com/labstack/echo/v4" // echo provides middleware chaining and context

    "github.com/moviehub/ticketing/internal/model" // closed role enumeration
)

// RequireRole returns a middleware function that enforces that the
// authenticated user has one of the specified roles.  The roles
// correspond to the values stored in the token's "role" claim.  If the
// user's role is not in the allowed set, the request is aborted with a
// 403 Forbidden response.  It assumes JWTAuth has already stored the
// role in the context.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
    // Build a set of allowed roles for constant-time lookups.
    allowed := make(map[model.Role]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            role, ok := c.Get(CtxRole).(string)
            if !ok || !allowed[model.Role(role)] {
                return forbidden(c)
            }
            return next(c)
        }
    }
}

// RequireSelfOrAdmin gates per-user resources.  Admins pass
// unconditionally; any other caller must own the resource, i.e. the
// token subject must equal the numeric path parameter named by param.
// A non-numeric parameter is forbidden rather than 400: the caller was
// authenticated but asked for something that cannot be theirs.
func RequireSelfOrAdmin(param string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if role, ok := c.Get(CtxRole).(string); ok && model.Role(role) == model.RoleAdmin {
                return next(c)
            }
            uid, ok := c.Get(CtxUserID).(uint64)
            if !ok {
                return forbidden(c)
            }
            target, err := strconv.ParseUint(c.Param(param), 10, 64)
            if err != nil || target != uid {
                return forbidden(c)
            }
            return next(c)
        }
    }
}

func forbidden(c echo.Context) error {
    return c.JSON(http.StatusForbidden, echo.Map{
        "success": false,
        "message": "forbidden",
    })
}
