package settlement

import (
	"context"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/lapmart/lapmart/internal/domain"
	"github.com/lapmart/lapmart/pkg/common"
)

// ErrAlreadySettled is returned when a settlement request targets a product
// whose payment has already reached the terminal step.
var ErrAlreadySettled = errors.New("product already settled")

// Request carries everything needed to settle one product purchase.
type Request struct {
	ProductID  string  `json:"product_id"`
	BookingID  string  `json:"booking_id"`
	BuyerEmail string  `json:"buyer_email"`
	IntentID   string  `json:"intent_id"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
}

// Result aggregates the outcome of the three settlement steps.
type Result struct {
	PaymentID    string `json:"payment_id"`
	Status       string `json:"status"`
	BookingsPaid int64  `json:"bookings_paid"`
	Resumed      bool   `json:"resumed"`
}

// Service drives the settlement steps over a product purchase:
//
//	recorded -> product_marked -> settled
//
// The payment record always exists before the product is marked sold. Each
// later step is an absolute-value write, so re-driving a partial settlement
// is safe. Partial settlements are picked up by the repair sweep.
type Service struct {
	payments PaymentRepository
	products ProductRepository
	bookings BookingRepository
	pool     *ants.Pool
}

func NewService(payments PaymentRepository, products ProductRepository, bookings BookingRepository) *Service {
	pool, err := ants.NewPool(8)
	if err != nil {
		panic(err)
	}
	return &Service{
		payments: payments,
		products: products,
		bookings: bookings,
		pool:     pool,
	}
}

// Stop releases the repair worker pool.
func (s *Service) Stop() {
	s.pool.Release()
}

// Settle runs the full settlement sequence for one purchase. Invoking it
// again for an already-settled product returns ErrAlreadySettled without
// creating a second payment record; a partial settlement is resumed instead.
func (s *Service) Settle(ctx context.Context, req Request) (*Result, error) {
	payment := &domain.Payment{
		ID:         common.UUID(),
		ProductID:  req.ProductID,
		BookingID:  req.BookingID,
		BuyerEmail: req.BuyerEmail,
		Amount:     req.Amount,
		Currency:   req.Currency,
		IntentID:   req.IntentID,
		Status:     domain.PaymentRecorded,
		CreatedAt:  time.Now(),
	}

	err := s.payments.Create(ctx, payment)
	if errors.Is(err, ErrDuplicatePayment) {
		existing, gerr := s.payments.GetByProductID(ctx, req.ProductID)
		if gerr != nil {
			return nil, gerr
		}
		if existing == nil {
			// lost a race with a concurrent delete, treat as settled
			return nil, ErrAlreadySettled
		}
		if existing.Status == domain.PaymentSettled {
			return nil, ErrAlreadySettled
		}
		count, rerr := s.resume(ctx, existing)
		if rerr != nil {
			return nil, rerr
		}
		return &Result{
			PaymentID:    existing.ID,
			Status:       domain.PaymentSettled,
			BookingsPaid: count,
			Resumed:      true,
		}, nil
	}
	if err != nil {
		return nil, err
	}

	count, err := s.resume(ctx, payment)
	if err != nil {
		return nil, err
	}
	return &Result{
		PaymentID:    payment.ID,
		Status:       domain.PaymentSettled,
		BookingsPaid: count,
	}, nil
}

// resume drives steps 2 and 3 for a recorded payment. A failure leaves the
// recorded step status behind for the repair sweep.
func (s *Service) resume(ctx context.Context, payment *domain.Payment) (int64, error) {
	if err := s.products.MarkSold(ctx, payment.ProductID); err != nil {
		return 0, err
	}
	if err := s.payments.UpdateStatus(ctx, payment.ID, domain.PaymentProductMarked); err != nil {
		return 0, err
	}
	count, err := s.bookings.MarkPaidByProduct(ctx, payment.ProductID)
	if err != nil {
		return 0, err
	}
	if err := s.payments.MarkSettled(ctx, payment.ID, time.Now()); err != nil {
		return count, err
	}
	return count, nil
}

// RepairPending re-drives settlements that never reached the terminal step.
// Called periodically from the scheduler.
func (s *Service) RepairPending(ctx context.Context) {
	pending, err := s.payments.ListUnsettled(ctx, 100)
	if err != nil {
		zap.L().Error("settlement repair sweep failed", zap.Error(err))
		return
	}
	if len(pending) == 0 {
		return
	}

	zap.L().Info("repairing partial settlements", zap.Int("count", len(pending)))

	var wg sync.WaitGroup
	for _, payment := range pending {
		payment := payment
		wg.Add(1)
		err := s.pool.Submit(func() {
			defer wg.Done()
			if _, err := s.resume(ctx, payment); err != nil {
				zap.L().Error("settlement repair failed",
					zap.String("payment_id", payment.ID),
					zap.String("product_id", payment.ProductID),
					zap.Error(err),
				)
			}
		})
		if err != nil {
			wg.Done()
			zap.L().Error("settlement repair submit failed", zap.Error(err))
		}
	}
	wg.Wait()
}
