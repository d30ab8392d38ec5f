package marketapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lapmart/lapmart/internal/domain"
	"github.com/lapmart/lapmart/internal/webserver"
	"github.com/lapmart/lapmart/pkg/common"
)

func registerCategoryRoutes() {
	webserver.PubGET("/category", listCategories)
	webserver.AdminPOST("/category", createCategory)
	webserver.ApiGET("/brand/:id", listCategoryProducts)
}

type categoryPayload struct {
	Category string `json:"category"`
}

func listCategories(c echo.Context) error {
	cursor, err := coll(domain.Category{}).Find(c.Request().Context(), bson.M{})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query categories", nil)
	}
	categories := []domain.Category{}
	if err := cursor.All(c.Request().Context(), &categories); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to decode categories", nil)
	}
	return ok(c, categories)
}

// createCategory inserts a category; the unique name index turns a repeat
// into a conflict.
func createCategory(c echo.Context) error {
	var payload categoryPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse category parameters", nil)
	}
	name := strings.TrimSpace(payload.Category)
	if name == "" {
		return fail(c, http.StatusBadRequest, "MISSING_NAME", "Category name is required", nil)
	}

	category := domain.Category{ID: common.UUID(), Name: name}
	_, err := coll(domain.Category{}).InsertOne(c.Request().Context(), category)
	if isDup(err) {
		return fail(c, http.StatusConflict, "DUPLICATE_CATEGORY", "Category already exists", nil)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create category", nil)
	}
	publishAudit(c, "category.create", name)
	return ok(c, category)
}

// listCategoryProducts returns the unsold products of one category together
// with the category name.
func listCategoryProducts(c echo.Context) error {
	id := c.Param("id")

	var category domain.Category
	err := coll(domain.Category{}).FindOne(c.Request().Context(), bson.M{"_id": id}).Decode(&category)
	if err == mongo.ErrNoDocuments {
		return fail(c, http.StatusNotFound, "CATEGORY_NOT_FOUND", "Category not found", nil)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query category", nil)
	}

	cursor, err := coll(domain.Product{}).Find(c.Request().Context(),
		bson.M{"category_id": id, "sold": false})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", nil)
	}
	products := []domain.Product{}
	if err := cursor.All(c.Request().Context(), &products); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to decode products", nil)
	}

	return ok(c, map[string]interface{}{
		"category": category.Name,
		"products": products,
	})
}
