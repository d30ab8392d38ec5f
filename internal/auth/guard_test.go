package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lapmart/lapmart/internal/domain"
)

// fakeUserRepository records lookups so tests can assert whether the store
// was touched at all.
type fakeUserRepository struct {
	users map[string]*domain.User
	calls int
}

func (r *fakeUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.calls++
	return r.users[email], nil
}

func newGuardFixture(users map[string]*domain.User) (*Guard, *TokenService, *fakeUserRepository) {
	tokens := NewTokenService("guard-test-secret")
	repo := &fakeUserRepository{users: users}
	return NewGuard(tokens, NewRoleLookup(repo)), tokens, repo
}

func request(e *echo.Echo, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticatedRejectsMissingToken(t *testing.T) {
	guard, _, repo := newGuardFixture(nil)

	handled := false
	e := echo.New()
	e.GET("/guarded", func(c echo.Context) error {
		handled = true
		return c.NoContent(http.StatusOK)
	}, guard.Authenticated())

	rec := request(e, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, handled)
	assert.Zero(t, repo.calls)
}

func TestAuthenticatedRejectsInvalidToken(t *testing.T) {
	guard, _, repo := newGuardFixture(nil)

	e := echo.New()
	e.GET("/guarded", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, guard.Authenticated())

	rec := request(e, "bogus.token.value")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, repo.calls)
}

func TestAuthenticatedAttachesEmail(t *testing.T) {
	guard, tokens, _ := newGuardFixture(nil)

	var seen string
	e := echo.New()
	e.GET("/guarded", func(c echo.Context) error {
		seen = Email(c)
		return c.NoContent(http.StatusOK)
	}, guard.Authenticated())

	token, err := tokens.Issue("buyer@example.com")
	require.NoError(t, err)

	rec := request(e, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "buyer@example.com", seen)
}

func TestRequireRoleMismatchForbidden(t *testing.T) {
	guard, tokens, _ := newGuardFixture(map[string]*domain.User{
		"buyer@example.com": {Email: "buyer@example.com", Role: domain.RoleBuyer},
	})

	handled := false
	e := echo.New()
	e.GET("/guarded", func(c echo.Context) error {
		handled = true
		return c.NoContent(http.StatusOK)
	}, guard.Authenticated(), guard.RequireAdmin())

	token, err := tokens.Issue("buyer@example.com")
	require.NoError(t, err)

	rec := request(e, token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, handled, "handler must not run after a failed role gate")
}

func TestRequireRoleUnknownUserForbidden(t *testing.T) {
	guard, tokens, _ := newGuardFixture(nil)

	e := echo.New()
	e.GET("/guarded", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, guard.Authenticated(), guard.RequireSeller())

	token, err := tokens.Issue("ghost@example.com")
	require.NoError(t, err)

	rec := request(e, token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoleMatchPasses(t *testing.T) {
	guard, tokens, repo := newGuardFixture(map[string]*domain.User{
		"admin@example.com": {Email: "admin@example.com", Role: domain.RoleAdmin},
	})

	e := echo.New()
	e.GET("/guarded", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, guard.Authenticated(), guard.RequireAdmin())

	token, err := tokens.Issue("admin@example.com")
	require.NoError(t, err)

	rec := request(e, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, repo.calls, "role is read fresh exactly once per request")
}

func TestRoleOfMissingUser(t *testing.T) {
	lookup := NewRoleLookup(&fakeUserRepository{})

	role, err := lookup.RoleOf(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, role)
}
