package webserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lapmart/lapmart/config"
	"github.com/lapmart/lapmart/internal/auth"
	"github.com/lapmart/lapmart/internal/domain"
)

type noUserRepo struct{}

func (noUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return nil, nil
}

func testServer(t *testing.T) *WebServer {
	t.Helper()
	cfg := new(config.AppConfig)
	*cfg = *config.DefaultAppConfig
	guard := auth.NewGuard(auth.NewTokenService("test-secret"), auth.NewRoleLookup(noUserRepo{}))
	return Init(cfg, guard)
}

func TestErrorHandlerHidesInternalDetail(t *testing.T) {
	s := testServer(t)
	PubGET("/boom", func(c echo.Context) error {
		return errors.New("secret database detail")
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
	assert.NotContains(t, rec.Body.String(), "secret database detail")
}

func TestErrorHandlerKeepsHTTPErrors(t *testing.T) {
	s := testServer(t)
	PubGET("/teapot", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "short and stout")
	})

	req := httptest.NewRequest(http.MethodGet, "/teapot", nil)
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Contains(t, rec.Body.String(), "short and stout")
}

func TestGuardedRouteWithoutToken(t *testing.T) {
	s := testServer(t)
	handled := false
	ApiGET("/private", func(c echo.Context) error {
		handled = true
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, handled)
}

func TestDeserializeBadJSON(t *testing.T) {
	s := testServer(t)
	PubPOST("/bind", func(c echo.Context) error {
		var body map[string]interface{}
		if err := c.Bind(&body); err != nil {
			return err
		}
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/bind", strings.NewReader("{not-json"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
