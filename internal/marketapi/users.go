package marketapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/lapmart/lapmart/internal/domain"
	"github.com/lapmart/lapmart/internal/webserver"
	"github.com/lapmart/lapmart/pkg/common"
)

func registerUserRoutes() {
	webserver.AdminGET("/users", listUsers)
	webserver.PubPOST("/users", createUser)
	webserver.AdminDELETE("/user/:id", deleteUser)
	webserver.AdminGET("/verify-user/:email", verifyUser)
}

type userPayload struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func listUsers(c echo.Context) error {
	filter := bson.M{}
	if role := strings.TrimSpace(c.QueryParam("role")); role != "" {
		filter["role"] = role
	}

	cursor, err := coll(domain.User{}).Find(c.Request().Context(), filter)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query users", nil)
	}
	users := []domain.User{}
	if err := cursor.All(c.Request().Context(), &users); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to decode users", nil)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"result": users})
}

// createUser registers a user on signup. A repeated signup for the same
// email returns the stored record unchanged instead of a conflict.
func createUser(c echo.Context) error {
	var payload userPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse user parameters", nil)
	}
	payload.Email = strings.TrimSpace(payload.Email)
	if payload.Email == "" {
		return fail(c, http.StatusBadRequest, "MISSING_EMAIL", "Email is required", nil)
	}
	if payload.Role == "" {
		payload.Role = domain.RoleBuyer
	}
	valid := false
	for _, r := range domain.ValidRoles {
		if payload.Role == r {
			valid = true
			break
		}
	}
	if !valid {
		return fail(c, http.StatusBadRequest, "INVALID_ROLE", "Unknown role", nil)
	}

	user := domain.User{
		ID:        common.UUID(),
		Email:     payload.Email,
		Name:      strings.TrimSpace(payload.Name),
		Role:      payload.Role,
		Verified:  false,
		CreatedAt: time.Now(),
	}
	_, err := coll(domain.User{}).InsertOne(c.Request().Context(), user)
	if isDup(err) {
		var existing domain.User
		if err := coll(domain.User{}).FindOne(c.Request().Context(), bson.M{"email": payload.Email}).Decode(&existing); err != nil {
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query user", nil)
		}
		return ok(c, existing)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create user", nil)
	}
	return ok(c, user)
}

func deleteUser(c echo.Context) error {
	id := c.Param("id")
	res, err := coll(domain.User{}).DeleteOne(c.Request().Context(), bson.M{"_id": id})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete user", nil)
	}
	if res.DeletedCount == 0 {
		return fail(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found", nil)
	}
	publishAudit(c, "user.delete", id)
	return ok(c, map[string]interface{}{"deleted": res.DeletedCount})
}

// verifyUser marks a user verified and refreshes the verification snapshot
// on every product they sell.
func verifyUser(c echo.Context) error {
	email := c.Param("email")

	res, err := coll(domain.User{}).UpdateOne(c.Request().Context(),
		bson.M{"email": email},
		bson.M{"$set": bson.M{"verified": true}})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update user", nil)
	}
	if res.MatchedCount == 0 {
		return fail(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found", nil)
	}

	prodRes, err := coll(domain.Product{}).UpdateMany(c.Request().Context(),
		bson.M{"seller_email": email},
		bson.M{"$set": bson.M{"seller_verified": true}})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update products", nil)
	}

	publishAudit(c, "user.verify", email)
	return ok(c, map[string]interface{}{
		"verified":         true,
		"products_updated": prodRes.ModifiedCount,
	})
}
