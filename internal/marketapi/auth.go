package marketapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/lapmart/lapmart/internal/domain"
	"github.com/lapmart/lapmart/internal/webserver"
)

func registerAuthRoutes() {
	webserver.PubGET("/jwt", issueToken)
	webserver.ApiGET("/admin", checkAdmin)
	webserver.ApiGET("/seller", checkSeller)
}

// issueToken signs an access token for an existing user. Unknown emails get
// 401 so a token is never minted for an unregistered identity.
func issueToken(c echo.Context) error {
	email := strings.TrimSpace(c.QueryParam("email"))
	if email == "" {
		return fail(c, http.StatusBadRequest, "MISSING_EMAIL", "Email is required", nil)
	}

	var user domain.User
	err := coll(domain.User{}).FindOne(c.Request().Context(), bson.M{"email": email}).Decode(&user)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]interface{}{"token": ""})
	}

	token, err := appCtx.TokenService().Issue(user.Email)
	if err != nil {
		zap.L().Error("token issue failed", zap.String("email", email), zap.Error(err))
		return fail(c, http.StatusInternalServerError, "TOKEN_ERROR", "Failed to issue token", nil)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"token": token})
}

func checkAdmin(c echo.Context) error {
	email := strings.TrimSpace(c.QueryParam("email"))
	role, err := appCtx.RoleLookup().RoleOf(c.Request().Context(), email)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query user", nil)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"isAdmin": role == domain.RoleAdmin})
}

func checkSeller(c echo.Context) error {
	email := strings.TrimSpace(c.QueryParam("email"))
	role, err := appCtx.RoleLookup().RoleOf(c.Request().Context(), email)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query user", nil)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"isSeller": role == domain.RoleSeller})
}
