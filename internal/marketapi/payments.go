package marketapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/lapmart/lapmart/internal/domain"
	"github.com/lapmart/lapmart/internal/settlement"
	"github.com/lapmart/lapmart/internal/webserver"
)

func registerPaymentRoutes() {
	webserver.ApiPOST("/create-payment-intent", createPaymentIntent)
	webserver.ApiPOST("/payments/:id", settleBooking)
}

type intentPayload struct {
	Price float64 `json:"price"`
}

type settlePayload struct {
	IntentID string `json:"intent_id"`
}

// createPaymentIntent asks the external provider for a payment intent over
// the booking price and hands the client secret back to the frontend.
func createPaymentIntent(c echo.Context) error {
	var payload intentPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse payment parameters", nil)
	}
	if payload.Price <= 0 {
		return fail(c, http.StatusBadRequest, "INVALID_AMOUNT", "Price must be positive", nil)
	}

	intent, err := payClient.CreateIntent(c.Request().Context(), payload.Price)
	if err != nil {
		zap.L().Error("payment intent creation failed", zap.Error(err))
		return fail(c, http.StatusBadGateway, "PROVIDER_ERROR", "Payment provider unavailable", nil)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"clientSecret": intent.ClientSecret})
}

// settleBooking runs the settlement sequence for the product behind the
// booking: record the payment, mark the product sold, mark every booking on
// the product paid. Re-running for a settled product changes nothing.
func settleBooking(c echo.Context) error {
	id := c.Param("id")
	var payload settlePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse payment parameters", nil)
	}

	var booking domain.Booking
	err := coll(domain.Booking{}).FindOne(c.Request().Context(), bson.M{"_id": id}).Decode(&booking)
	if err == mongo.ErrNoDocuments {
		return fail(c, http.StatusNotFound, "BOOKING_NOT_FOUND", "Booking not found", nil)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query booking", nil)
	}

	result, err := appCtx.Settlement().Settle(c.Request().Context(), settlement.Request{
		ProductID:  booking.ProductID,
		BookingID:  booking.ID,
		BuyerEmail: booking.BuyerEmail,
		IntentID:   payload.IntentID,
		Amount:     booking.Price,
		Currency:   appCtx.Config().Payment.Currency,
	})
	if errors.Is(err, settlement.ErrAlreadySettled) {
		return ok(c, map[string]interface{}{
			"status":  domain.PaymentSettled,
			"already": true,
		})
	}
	if err != nil {
		zap.L().Error("settlement failed",
			zap.String("booking_id", booking.ID),
			zap.String("product_id", booking.ProductID),
			zap.Error(err),
		)
		return fail(c, http.StatusInternalServerError, "SETTLEMENT_ERROR", "Settlement did not complete", nil)
	}

	publishAudit(c, "payment.settle", booking.ProductID)
	return ok(c, result)
}
