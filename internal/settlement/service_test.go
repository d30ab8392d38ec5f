package settlement

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lapmart/lapmart/internal/domain"
)

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments map[string]*domain.Payment // keyed by product id
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: map[string]*domain.Payment{}}
}

func (r *fakePaymentRepo) Create(ctx context.Context, payment *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.payments[payment.ProductID]; ok {
		return ErrDuplicatePayment
	}
	clone := *payment
	r.payments[payment.ProductID] = &clone
	return nil
}

func (r *fakePaymentRepo) GetByProductID(ctx context.Context, productID string) (*domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	payment, ok := r.payments[productID]
	if !ok {
		return nil, nil
	}
	clone := *payment
	return &clone, nil
}

func (r *fakePaymentRepo) UpdateStatus(ctx context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, payment := range r.payments {
		if payment.ID == id {
			payment.Status = status
		}
	}
	return nil
}

func (r *fakePaymentRepo) MarkSettled(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, payment := range r.payments {
		if payment.ID == id {
			payment.Status = domain.PaymentSettled
			payment.SettledAt = at
		}
	}
	return nil
}

func (r *fakePaymentRepo) ListUnsettled(ctx context.Context, limit int) ([]*domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Payment
	for _, payment := range r.payments {
		if payment.Status != domain.PaymentSettled {
			clone := *payment
			out = append(out, &clone)
		}
	}
	return out, nil
}

type fakeProductRepo struct {
	mu   sync.Mutex
	sold map[string]bool
	fail bool
}

func (r *fakeProductRepo) MarkSold(ctx context.Context, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return assert.AnError
	}
	if r.sold == nil {
		r.sold = map[string]bool{}
	}
	r.sold[productID] = true
	return nil
}

type fakeBookingRepo struct {
	mu       sync.Mutex
	byProd   map[string]int64
	paidProd map[string]bool
}

func (r *fakeBookingRepo) MarkPaidByProduct(ctx context.Context, productID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.paidProd == nil {
		r.paidProd = map[string]bool{}
	}
	r.paidProd[productID] = true
	return r.byProd[productID], nil
}

func newFixture() (*Service, *fakePaymentRepo, *fakeProductRepo, *fakeBookingRepo) {
	payments := newFakePaymentRepo()
	products := &fakeProductRepo{}
	bookings := &fakeBookingRepo{byProd: map[string]int64{}}
	return NewService(payments, products, bookings), payments, products, bookings
}

func TestSettleHappyPath(t *testing.T) {
	svc, payments, products, bookings := newFixture()
	defer svc.Stop()
	bookings.byProd["P1"] = 2

	result, err := svc.Settle(context.Background(), Request{
		ProductID:  "P1",
		BookingID:  "B1",
		BuyerEmail: "buyer@example.com",
		Amount:     500,
		Currency:   "usd",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentSettled, result.Status)
	assert.EqualValues(t, 2, result.BookingsPaid)
	assert.False(t, result.Resumed)

	stored, err := payments.GetByProductID(context.Background(), "P1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, domain.PaymentSettled, stored.Status)
	assert.EqualValues(t, 500, stored.Amount)
	assert.True(t, products.sold["P1"])
	assert.True(t, bookings.paidProd["P1"])
}

func TestSettleIdempotent(t *testing.T) {
	svc, payments, _, bookings := newFixture()
	defer svc.Stop()
	bookings.byProd["P1"] = 1

	_, err := svc.Settle(context.Background(), Request{ProductID: "P1", Amount: 500})
	require.NoError(t, err)

	_, err = svc.Settle(context.Background(), Request{ProductID: "P1", Amount: 500})
	assert.ErrorIs(t, err, ErrAlreadySettled)

	payments.mu.Lock()
	assert.Len(t, payments.payments, 1, "no duplicate payment record")
	payments.mu.Unlock()
}

func TestSettleResumesPartial(t *testing.T) {
	svc, payments, products, bookings := newFixture()
	defer svc.Stop()
	bookings.byProd["P1"] = 2

	// a previous run recorded the payment but died before the later steps
	require.NoError(t, payments.Create(context.Background(), &domain.Payment{
		ID:        "PAY1",
		ProductID: "P1",
		Status:    domain.PaymentRecorded,
	}))

	result, err := svc.Settle(context.Background(), Request{ProductID: "P1", Amount: 500})
	require.NoError(t, err)

	assert.True(t, result.Resumed)
	assert.Equal(t, "PAY1", result.PaymentID)
	assert.EqualValues(t, 2, result.BookingsPaid)
	assert.True(t, products.sold["P1"])

	stored, _ := payments.GetByProductID(context.Background(), "P1")
	assert.Equal(t, domain.PaymentSettled, stored.Status)

	payments.mu.Lock()
	assert.Len(t, payments.payments, 1)
	payments.mu.Unlock()
}

func TestSettlePaymentRecordPrecedesSold(t *testing.T) {
	svc, payments, products, _ := newFixture()
	defer svc.Stop()
	products.fail = true

	_, err := svc.Settle(context.Background(), Request{ProductID: "P1", Amount: 500})
	require.Error(t, err)

	// the payment record survives the failed step for the repair sweep
	stored, _ := payments.GetByProductID(context.Background(), "P1")
	require.NotNil(t, stored)
	assert.Equal(t, domain.PaymentRecorded, stored.Status)
	assert.False(t, products.sold["P1"])
}

func TestRepairPendingDrivesPartialToSettled(t *testing.T) {
	svc, payments, products, bookings := newFixture()
	defer svc.Stop()
	bookings.byProd["P1"] = 1
	bookings.byProd["P2"] = 3

	for _, pid := range []string{"P1", "P2"} {
		require.NoError(t, payments.Create(context.Background(), &domain.Payment{
			ID:        "PAY-" + pid,
			ProductID: pid,
			Status:    domain.PaymentRecorded,
		}))
	}

	svc.RepairPending(context.Background())

	for _, pid := range []string{"P1", "P2"} {
		stored, _ := payments.GetByProductID(context.Background(), pid)
		assert.Equal(t, domain.PaymentSettled, stored.Status, pid)
		assert.True(t, products.sold[pid], pid)
	}

	remaining, _ := payments.ListUnsettled(context.Background(), 100)
	assert.Empty(t, remaining)
}
