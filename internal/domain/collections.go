package domain

// Named lists every collection the application owns, in index-migration order.
type Named interface {
	CollectionName() string
}

var Collections = []Named{
	User{},
	Product{},
	Category{},
	Booking{},
	Payment{},
	Report{},
	AuditLog{},
}
