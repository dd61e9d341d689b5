package repository

import (
	"context"
	"time"

	"github.com/skandahq/be-bills/internal/database"
	"github.com/skandahq/be-bills/internal/errors"
)

// Credit is one payment recorded against a bill. Credits are append-only.
type Credit struct {
	ID            string
	BillID        string
	Amount        float64
	PaymentDate   time.Time
	PaymentMethod string
	Notes         *string
	CreatedBy     *string
	CreatedAt     time.Time
}

// CreditSummary aggregates collection figures for the dashboard.
type CreditSummary struct {
	TotalBills      int64
	TotalBillAmount float64
	TotalCollected  float64
	PendingBills    int64
}

// CreditRepository handles credit data operations.
type CreditRepository struct {
	db *database.DB
}

// NewCreditRepository creates a new credit repository.
func NewCreditRepository(db *database.DB) *CreditRepository {
	return &CreditRepository{db: db}
}

// Create records one credit against a bill.
func (r *CreditRepository) Create(ctx context.Context, credit *Credit) error {
	query := `
		INSERT INTO credits (bill_id, amount, payment_date, payment_method, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		credit.BillID,
		credit.Amount,
		credit.PaymentDate,
		credit.PaymentMethod,
		credit.Notes,
		credit.CreatedBy,
	).Scan(&credit.ID, &credit.CreatedAt)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to record credit")
	}
	return nil
}

// ListByBill returns all credits against a bill, oldest first.
func (r *CreditRepository) ListByBill(ctx context.Context, billID string) ([]*Credit, error) {
	query := `
		SELECT id, bill_id, amount, payment_date, payment_method, notes, created_by, created_at
		FROM credits
		WHERE bill_id = $1
		ORDER BY payment_date, created_at
	`

	rows, err := r.db.Query(ctx, query, billID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to list credits")
	}
	defer rows.Close()

	credits := make([]*Credit, 0)
	for rows.Next() {
		credit := &Credit{}
		if err := rows.Scan(
			&credit.ID, &credit.BillID, &credit.Amount, &credit.PaymentDate,
			&credit.PaymentMethod, &credit.Notes, &credit.CreatedBy, &credit.CreatedAt,
		); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to scan credit")
		}
		credits = append(credits, credit)
	}
	return credits, nil
}

// TotalForBill sums credits recorded against a bill.
func (r *CreditRepository) TotalForBill(ctx context.Context, billID string) (float64, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM credits WHERE bill_id = $1`

	var total float64
	if err := r.db.QueryRow(ctx, query, billID).Scan(&total); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeInternal, "failed to total credits")
	}
	return total, nil
}

// Summary aggregates bill and collection totals across all bills.
func (r *CreditRepository) Summary(ctx context.Context) (*CreditSummary, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(b.amount), 0),
		       COALESCE(SUM(c.collected), 0),
		       COUNT(*) FILTER (WHERE b.amount > COALESCE(c.collected, 0))
		FROM bills b
		LEFT JOIN (
			SELECT bill_id, SUM(amount) AS collected
			FROM credits
			GROUP BY bill_id
		) c ON c.bill_id = b.id
	`

	summary := &CreditSummary{}
	err := r.db.QueryRow(ctx, query).Scan(
		&summary.TotalBills,
		&summary.TotalBillAmount,
		&summary.TotalCollected,
		&summary.PendingBills,
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to aggregate credit summary")
	}
	return summary, nil
}
