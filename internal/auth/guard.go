package auth

import (
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/golang-jwt/jwt/v4"
	"github.com/lapmart/lapmart/internal/domain"
)

// ContextEmailKey is where the Authenticated guard stores the verified email.
const ContextEmailKey = "lapmart_email"

// Guard builds the middleware chain: Authenticated first, then an optional
// role gate. The first failing guard short-circuits, the handler never runs.
type Guard struct {
	tokens *TokenService
	roles  *RoleLookup
}

func NewGuard(tokens *TokenService, roles *RoleLookup) *Guard {
	return &Guard{tokens: tokens, roles: roles}
}

// Authenticated verifies the bearer token and attaches the email claim to the
// request context. Missing or invalid tokens are rejected with 401 before any
// store access happens.
func (g *Guard) Authenticated() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey: g.tokens.Secret(),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(TokenClaims)
		},
		SuccessHandler: func(c echo.Context) {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return
			}
			if claims, ok := token.Claims.(*TokenClaims); ok {
				c.Set(ContextEmailKey, claims.Email)
			}
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized access")
		},
	})
}

// RequireRole gates a route on the stored role of the authenticated user.
// The stored role is loaded fresh and compared against the required value;
// any mismatch, including a missing user, fails with 403.
func (g *Guard) RequireRole(required string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			email := Email(c)
			if email == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized access")
			}
			role, err := g.roles.RoleOf(c.Request().Context(), email)
			if err != nil {
				zap.L().Error("role lookup failed", zap.String("email", email), zap.Error(err))
				return echo.NewHTTPError(http.StatusInternalServerError, "role lookup failed")
			}
			if role != required {
				return echo.NewHTTPError(http.StatusForbidden, "forbidden access")
			}
			return next(c)
		}
	}
}

func (g *Guard) RequireSeller() echo.MiddlewareFunc {
	return g.RequireRole(domain.RoleSeller)
}

func (g *Guard) RequireAdmin() echo.MiddlewareFunc {
	return g.RequireRole(domain.RoleAdmin)
}

// Email returns the verified email attached by the Authenticated guard.
func Email(c echo.Context) string {
	email, _ := c.Get(ContextEmailKey).(string)
	return email
}
