package domain

import "time"

// Booking is a buyer's claim on a product ahead of payment.
// (BuyerEmail, ProductID) is unique per the bookings index.
type Booking struct {
	ID              string    `bson:"_id" json:"id"`
	BuyerEmail      string    `bson:"buyer_email" json:"buyer_email"`
	BuyerName       string    `bson:"buyer_name" json:"buyer_name"`
	ProductID       string    `bson:"product_id" json:"product_id"`
	ProductName     string    `bson:"product_name" json:"product_name"`
	Price           float64   `bson:"price" json:"price"`
	MeetingLocation string    `bson:"meeting_location" json:"meeting_location"`
	Phone           string    `bson:"phone" json:"phone"`
	Paid            bool      `bson:"paid" json:"paid"`
	CreatedAt       time.Time `bson:"created_at" json:"created_at"`
}

func (Booking) CollectionName() string {
	return "bookings"
}
