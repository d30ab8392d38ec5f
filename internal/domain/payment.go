package domain

import "time"

// Payment settlement step states. A payment always exists before the
// product is marked sold; SettledAt is set when every booking on the
// product has been marked paid.
const (
	PaymentRecorded      = "recorded"
	PaymentProductMarked = "product_marked"
	PaymentSettled       = "settled"
)

type Payment struct {
	ID         string    `bson:"_id" json:"id"`
	ProductID  string    `bson:"product_id" json:"product_id"`
	BookingID  string    `bson:"booking_id" json:"booking_id"`
	BuyerEmail string    `bson:"buyer_email" json:"buyer_email"`
	Amount     float64   `bson:"amount" json:"amount"`
	Currency   string    `bson:"currency" json:"currency"`
	IntentID   string    `bson:"intent_id" json:"intent_id"`
	Status     string    `bson:"status" json:"status"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
	SettledAt  time.Time `bson:"settled_at,omitempty" json:"settled_at,omitempty"`
}

func (Payment) CollectionName() string {
	return "payments"
}
