package domain

import "time"

type Report struct {
	ID            string    `bson:"_id" json:"id"`
	Name          string    `bson:"name" json:"name"`
	ProductID     string    `bson:"product_id" json:"product_id"`
	ReporterEmail string    `bson:"reporter_email" json:"reporter_email"`
	Reason        string    `bson:"reason" json:"reason"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
}

func (Report) CollectionName() string {
	return "reports"
}
