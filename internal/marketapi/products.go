package marketapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lapmart/lapmart/internal/domain"
	"github.com/lapmart/lapmart/internal/webserver"
	"github.com/lapmart/lapmart/pkg/common"
)

func registerProductRoutes() {
	webserver.ApiGET("/products", listProducts)
	webserver.SellerPOST("/products", createProduct)
	webserver.SellerPATCH("/products/:id", advertiseProduct)
	webserver.SellerDELETE("/products/:id", deleteProduct)
	webserver.PubGET("/product-add", listAdvertised)
}

type productPayload struct {
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Image         string  `json:"image"`
	CategoryID    string  `json:"category_id"`
	Condition     string  `json:"condition"`
	Location      string  `json:"location"`
	PurchaseYear  string  `json:"purchase_year"`
	OriginalPrice float64 `json:"original_price"`
	Description   string  `json:"description"`
}

// listProducts returns the whole catalog to ordinary users; sellers only see
// their own listings.
func listProducts(c echo.Context) error {
	email := callerEmail(c)
	role, err := appCtx.RoleLookup().RoleOf(c.Request().Context(), email)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query user", nil)
	}

	filter := bson.M{}
	if role == domain.RoleSeller {
		filter["seller_email"] = email
	}

	cursor, err := coll(domain.Product{}).Find(c.Request().Context(), filter)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", nil)
	}
	products := []domain.Product{}
	if err := cursor.All(c.Request().Context(), &products); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to decode products", nil)
	}
	return ok(c, products)
}

// createProduct inserts a listing, snapshotting the seller's verified flag
// into the product at creation time.
func createProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product parameters", nil)
	}
	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" {
		return fail(c, http.StatusBadRequest, "MISSING_NAME", "Product name is required", nil)
	}
	if payload.CategoryID == "" {
		return fail(c, http.StatusBadRequest, "MISSING_CATEGORY", "Category is required", nil)
	}

	email := callerEmail(c)
	var seller domain.User
	if err := coll(domain.User{}).FindOne(c.Request().Context(), bson.M{"email": email}).Decode(&seller); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query seller", nil)
	}

	product := domain.Product{
		ID:             common.UUID(),
		Name:           payload.Name,
		Price:          payload.Price,
		Image:          strings.TrimSpace(payload.Image),
		SellerEmail:    seller.Email,
		SellerName:     seller.Name,
		CategoryID:     payload.CategoryID,
		Condition:      payload.Condition,
		Location:       payload.Location,
		PurchaseYear:   payload.PurchaseYear,
		OriginalPrice:  payload.OriginalPrice,
		Description:    payload.Description,
		Advertise:      false,
		Sold:           false,
		SellerVerified: seller.Verified,
		CreatedAt:      time.Now(),
	}
	if _, err := coll(domain.Product{}).InsertOne(c.Request().Context(), product); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create product", nil)
	}
	publishAudit(c, "product.create", product.ID)
	return ok(c, product)
}

// advertiseProduct flags the caller's listing for the advertised section.
func advertiseProduct(c echo.Context) error {
	id := c.Param("id")
	res, err := coll(domain.Product{}).UpdateOne(c.Request().Context(),
		bson.M{"_id": id, "seller_email": callerEmail(c)},
		bson.M{"$set": bson.M{"advertise": true}})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update product", nil)
	}
	if res.MatchedCount == 0 {
		return fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", nil)
	}
	publishAudit(c, "product.advertise", id)
	return ok(c, map[string]interface{}{"advertise": true})
}

func deleteProduct(c echo.Context) error {
	id := c.Param("id")
	res, err := coll(domain.Product{}).DeleteOne(c.Request().Context(),
		bson.M{"_id": id, "seller_email": callerEmail(c)})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete product", nil)
	}
	if res.DeletedCount == 0 {
		return fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", nil)
	}
	publishAudit(c, "product.delete", id)
	return ok(c, map[string]interface{}{"deleted": res.DeletedCount})
}

// listAdvertised serves the home-page section: advertised and still unsold.
func listAdvertised(c echo.Context) error {
	cursor, err := coll(domain.Product{}).Find(c.Request().Context(),
		bson.M{"advertise": true, "sold": false})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", nil)
	}
	products := []domain.Product{}
	if err := cursor.All(c.Request().Context(), &products); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to decode products", nil)
	}
	return ok(c, products)
}

// findProduct is shared by the booking and settlement handlers.
func findProduct(c echo.Context, id string) (*domain.Product, error) {
	var product domain.Product
	err := coll(domain.Product{}).FindOne(c.Request().Context(), bson.M{"_id": id}).Decode(&product)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}
