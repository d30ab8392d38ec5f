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

func registerBookingRoutes() {
	webserver.ApiGET("/bookings", listBookings)
	webserver.ApiGET("/bookings/:id", getBooking)
	webserver.ApiPOST("/bookings", createBooking)
	webserver.ApiDELETE("/bookings/:id", deleteBooking)
}

type bookingPayload struct {
	ProductID       string `json:"product_id"`
	MeetingLocation string `json:"meeting_location"`
	Phone           string `json:"phone"`
}

// listBookings returns the caller's own bookings.
func listBookings(c echo.Context) error {
	cursor, err := coll(domain.Booking{}).Find(c.Request().Context(),
		bson.M{"buyer_email": callerEmail(c)})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query bookings", nil)
	}
	bookings := []domain.Booking{}
	if err := cursor.All(c.Request().Context(), &bookings); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to decode bookings", nil)
	}
	return ok(c, bookings)
}

func getBooking(c echo.Context) error {
	id := c.Param("id")
	var booking domain.Booking
	err := coll(domain.Booking{}).FindOne(c.Request().Context(), bson.M{"_id": id}).Decode(&booking)
	if err == mongo.ErrNoDocuments {
		return fail(c, http.StatusNotFound, "BOOKING_NOT_FOUND", "Booking not found", nil)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query booking", nil)
	}
	return ok(c, booking)
}

// createBooking claims a product for the caller. The compound unique index
// on (buyer_email, product_id) rejects a second claim on the same product.
func createBooking(c echo.Context) error {
	var payload bookingPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse booking parameters", nil)
	}
	if strings.TrimSpace(payload.ProductID) == "" {
		return fail(c, http.StatusBadRequest, "MISSING_PRODUCT", "Product id is required", nil)
	}

	product, err := findProduct(c, payload.ProductID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query product", nil)
	}
	if product == nil {
		return fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", nil)
	}

	email := callerEmail(c)
	var buyer domain.User
	if err := coll(domain.User{}).FindOne(c.Request().Context(), bson.M{"email": email}).Decode(&buyer); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query buyer", nil)
	}

	booking := domain.Booking{
		ID:              common.UUID(),
		BuyerEmail:      buyer.Email,
		BuyerName:       buyer.Name,
		ProductID:       product.ID,
		ProductName:     product.Name,
		Price:           product.Price,
		MeetingLocation: payload.MeetingLocation,
		Phone:           payload.Phone,
		Paid:            false,
		CreatedAt:       time.Now(),
	}
	_, err = coll(domain.Booking{}).InsertOne(c.Request().Context(), booking)
	if isDup(err) {
		return fail(c, http.StatusConflict, "DUPLICATE_BOOKING", "Product already booked by this buyer", nil)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create booking", nil)
	}
	publishAudit(c, "booking.create", booking.ID)
	return ok(c, booking)
}

// deleteBooking removes a booking; the filter includes the caller's email so
// only the owning buyer can delete it.
func deleteBooking(c echo.Context) error {
	id := c.Param("id")
	res, err := coll(domain.Booking{}).DeleteOne(c.Request().Context(),
		bson.M{"_id": id, "buyer_email": callerEmail(c)})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete booking", nil)
	}
	if res.DeletedCount == 0 {
		return fail(c, http.StatusNotFound, "BOOKING_NOT_FOUND", "Booking not found", nil)
	}
	publishAudit(c, "booking.delete", id)
	return ok(c, map[string]interface{}{"deleted": res.DeletedCount})
}
