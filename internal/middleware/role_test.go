package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moviehub/ticketing/internal/model"
)

// runWithIdentity executes mw with a pre-populated identity, as if
// JWTAuth had already run.
func runWithIdentity(t *testing.T, mw echo.MiddlewareFunc, uid uint64, role string, paramID string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/auth/user/"+paramID, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if paramID != "" {
		c.SetParamNames("id")
		c.SetParamValues(paramID)
	}
	if role != "" {
		c.Set(CtxUserID, uid)
		c.Set(CtxRole, role)
	}
	handler := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	require.NoError(t, handler(c))
	return rec
}

func TestRequireRoleAdmin(t *testing.T) {
	mw := RequireRole(model.RoleAdmin)

	assert.Equal(t, http.StatusOK, runWithIdentity(t, mw, 1, "admin", "").Code)
	assert.Equal(t, http.StatusForbidden, runWithIdentity(t, mw, 1, "user", "").Code)
	// No identity at all (middleware misordering) is also forbidden.
	assert.Equal(t, http.StatusForbidden, runWithIdentity(t, mw, 0, "", "").Code)
}

// A non-admin user holding a perfectly valid token may not act on
// another user's resource.
func TestRequireSelfOrAdminDeniesOtherUser(t *testing.T) {
	mw := RequireSelfOrAdmin("id")

	// U1 (id 1) targeting U2's id.
	rec := runWithIdentity(t, mw, 1, "user", "2")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestRequireSelfOrAdminAllowsSelf(t *testing.T) {
	mw := RequireSelfOrAdmin("id")
	assert.Equal(t, http.StatusOK, runWithIdentity(t, mw, 2, "user", "2").Code)
}

func TestRequireSelfOrAdminAllowsAdmin(t *testing.T) {
	mw := RequireSelfOrAdmin("id")
	assert.Equal(t, http.StatusOK, runWithIdentity(t, mw, 1, "admin", "2").Code)
}

func TestRequireSelfOrAdminBadParam(t *testing.T) {
	mw := RequireSelfOrAdmin("id")
	assert.Equal(t, http.StatusForbidden, runWithIdentity(t, mw, 1, "user", "abc").Code)
}
