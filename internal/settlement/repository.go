package settlement

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lapmart/lapmart/internal/domain"
)

// ErrDuplicatePayment signals that the payments unique index on product_id
// rejected a second payment record. This is the sole idempotency signal;
// there is no read-before-write check.
var ErrDuplicatePayment = errors.New("payment already recorded for product")

// PaymentRepository handles payment document persistence.
type PaymentRepository interface {
	// Create inserts a payment record, mapping a duplicate product_id
	// to ErrDuplicatePayment.
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByProductID retrieves the payment for a product, nil when absent.
	GetByProductID(ctx context.Context, productID string) (*domain.Payment, error)

	// UpdateStatus records step progression on a payment.
	UpdateStatus(ctx context.Context, id, status string) error

	// MarkSettled records the terminal step with its completion time.
	MarkSettled(ctx context.Context, id string, at time.Time) error

	// ListUnsettled retrieves payments whose settlement never reached the
	// terminal step, for the repair sweep.
	ListUnsettled(ctx context.Context, limit int) ([]*domain.Payment, error)
}

// ProductRepository is the settlement-side write access to products.
type ProductRepository interface {
	MarkSold(ctx context.Context, productID string) error
}

// BookingRepository is the settlement-side write access to bookings.
type BookingRepository interface {
	// MarkPaidByProduct flags every booking of the product as paid and
	// returns the number of bookings touched.
	MarkPaidByProduct(ctx context.Context, productID string) (int64, error)
}

// MongoPaymentRepository is the mongo implementation of PaymentRepository.
type MongoPaymentRepository struct {
	DB *mongo.Database
}

func (r *MongoPaymentRepository) coll() *mongo.Collection {
	return r.DB.Collection(domain.Payment{}.CollectionName())
}

func (r *MongoPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	_, err := r.coll().InsertOne(ctx, payment)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicatePayment
	}
	return errors.Wrap(err, "insert payment")
}

func (r *MongoPaymentRepository) GetByProductID(ctx context.Context, productID string) (*domain.Payment, error) {
	var payment domain.Payment
	err := r.coll().FindOne(ctx, bson.M{"product_id": productID}).Decode(&payment)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "find payment")
	}
	return &payment, nil
}

func (r *MongoPaymentRepository) UpdateStatus(ctx context.Context, id, status string) error {
	_, err := r.coll().UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status}})
	return errors.Wrap(err, "update payment status")
}

func (r *MongoPaymentRepository) MarkSettled(ctx context.Context, id string, at time.Time) error {
	_, err := r.coll().UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": domain.PaymentSettled, "settled_at": at}})
	return errors.Wrap(err, "mark payment settled")
}

func (r *MongoPaymentRepository) ListUnsettled(ctx context.Context, limit int) ([]*domain.Payment, error) {
	opts := options.Find().SetLimit(int64(limit)).SetSort(bson.M{"created_at": 1})
	cursor, err := r.coll().Find(ctx,
		bson.M{"status": bson.M{"$ne": domain.PaymentSettled}}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "list unsettled payments")
	}
	var payments []*domain.Payment
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, errors.Wrap(err, "decode unsettled payments")
	}
	return payments, nil
}

// MongoProductRepository is the mongo implementation of ProductRepository.
type MongoProductRepository struct {
	DB *mongo.Database
}

func (r *MongoProductRepository) MarkSold(ctx context.Context, productID string) error {
	_, err := r.DB.Collection(domain.Product{}.CollectionName()).UpdateOne(ctx,
		bson.M{"_id": productID},
		bson.M{"$set": bson.M{"sold": true}})
	return errors.Wrap(err, "mark product sold")
}

// MongoBookingRepository is the mongo implementation of BookingRepository.
type MongoBookingRepository struct {
	DB *mongo.Database
}

func (r *MongoBookingRepository) MarkPaidByProduct(ctx context.Context, productID string) (int64, error) {
	res, err := r.DB.Collection(domain.Booking{}.CollectionName()).UpdateMany(ctx,
		bson.M{"product_id": productID},
		bson.M{"$set": bson.M{"paid": true}})
	if err != nil {
		return 0, errors.Wrap(err, "mark bookings paid")
	}
	return res.ModifiedCount, nil
}
