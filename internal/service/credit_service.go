package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/skandahq/be-bills/internal/errors"
	"github.com/skandahq/be-bills/internal/logger"
	"github.com/skandahq/be-bills/internal/repository"
)

// CreditService handles credit recording and collection reporting.
type CreditService struct {
	creditRepo *repository.CreditRepository
	billRepo   *repository.BillRepository
	log        *logger.Logger
}

// NewCreditService creates a new credit service.
func NewCreditService(
	creditRepo *repository.CreditRepository,
	billRepo *repository.BillRepository,
	log *logger.Logger,
) *CreditService {
	return &CreditService{
		creditRepo: creditRepo,
		billRepo:   billRepo,
		log:        log,
	}
}

// RecordCreditRequest represents a record credit request
type RecordCreditRequest struct {
	BillID        string
	Amount        float64
	PaymentDate   string
	PaymentMethod string
	Notes         *string
	CreatedBy     string
}

// RecordCredit records a payment against a bill. A credit may not exceed
// the bill's outstanding balance.
func (s *CreditService) RecordCredit(ctx context.Context, req *RecordCreditRequest) (*repository.Credit, error) {
	if req.Amount <= 0 {
		return nil, errors.InvalidInput("amount", "amount must be positive")
	}

	paymentDate, err := time.Parse("2006-01-02", req.PaymentDate)
	if err != nil {
		return nil, errors.InvalidInput("payment_date", "invalid date format, expected YYYY-MM-DD")
	}

	bill, err := s.billRepo.GetByID(ctx, req.BillID)
	if err != nil {
		return nil, err
	}

	outstanding, err := s.OutstandingBalance(ctx, req.BillID)
	if err != nil {
		return nil, err
	}

	if decimal.NewFromFloat(req.Amount).GreaterThan(outstanding) {
		return nil, errors.New(errors.ErrCodeConflict, "credit exceeds outstanding balance")
	}

	credit := &repository.Credit{
		BillID:        req.BillID,
		Amount:        req.Amount,
		PaymentDate:   paymentDate,
		PaymentMethod: normalizePaymentMethod(req.PaymentMethod),
		Notes:         req.Notes,
		CreatedBy:     &req.CreatedBy,
	}

	if err := s.creditRepo.Create(ctx, credit); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("credit_id", credit.ID).
		Str("bill_id", req.BillID).
		Str("bill_number", bill.BillNumber).
		Float64("amount", req.Amount).
		Msg("Credit recorded")

	return credit, nil
}

// ListCredits lists credits recorded against a bill, oldest first.
func (s *CreditService) ListCredits(ctx context.Context, billID string) ([]*repository.Credit, error) {
	if _, err := s.billRepo.GetByID(ctx, billID); err != nil {
		return nil, err
	}
	return s.creditRepo.ListByBill(ctx, billID)
}

// OutstandingBalance returns the bill amount minus all recorded credits.
// Decimal arithmetic keeps repeated subtractions from drifting.
func (s *CreditService) OutstandingBalance(ctx context.Context, billID string) (decimal.Decimal, error) {
	bill, err := s.billRepo.GetByID(ctx, billID)
	if err != nil {
		return decimal.Zero, err
	}

	collected, err := s.creditRepo.TotalForBill(ctx, billID)
	if err != nil {
		return decimal.Zero, err
	}

	return decimal.NewFromFloat(bill.Amount).Sub(decimal.NewFromFloat(collected)), nil
}

// Summary returns dashboard collection totals.
func (s *CreditService) Summary(ctx context.Context) (*repository.CreditSummary, error) {
	return s.creditRepo.Summary(ctx)
}
