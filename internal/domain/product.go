package domain

import "time"

// Product represents a second-hand listing created by a seller.
// SellerVerified is a snapshot of User.Verified taken at creation time,
// refreshed only by the admin verify-user action.
type Product struct {
	ID             string    `bson:"_id" json:"id"`
	Name           string    `bson:"name" json:"name"`
	Price          float64   `bson:"price" json:"price"`
	Image          string    `bson:"image" json:"image"`
	SellerEmail    string    `bson:"seller_email" json:"seller_email"`
	SellerName     string    `bson:"seller_name" json:"seller_name"`
	CategoryID     string    `bson:"category_id" json:"category_id"`
	Condition      string    `bson:"condition" json:"condition"`
	Location       string    `bson:"location" json:"location"`
	PurchaseYear   string    `bson:"purchase_year" json:"purchase_year"`
	OriginalPrice  float64   `bson:"original_price" json:"original_price"`
	Description    string    `bson:"description" json:"description"`
	Advertise      bool      `bson:"advertise" json:"advertise"`
	Sold           bool      `bson:"sold" json:"sold"`
	SellerVerified bool      `bson:"seller_verified" json:"seller_verified"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
}

func (Product) CollectionName() string {
	return "products"
}
