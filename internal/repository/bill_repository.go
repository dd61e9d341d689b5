package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/skandahq/be-bills/internal/database"
	"github.com/skandahq/be-bills/internal/errors"
)

// Bill is a vendor bill with its stored (human-confirmed) fields and the
// OCR-derived columns maintained by the verification workflow.
type Bill struct {
	ID            string
	BillNumber    string
	VendorID      *string
	BillDate      *time.Time
	Amount        float64
	PaymentMethod string

	ImageFilename *string
	ExtractedText *string
	OCRConfidence *float64
	OCRBillNumber *string
	OCRAmount     *float64
	OCRDate       *time.Time
	OCRVendorName *string

	VerificationStatus string

	CreatedBy *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// billColumns is the canonical select list shared by all bill queries.
const billColumns = `
	id, bill_number, vendor_id, bill_date, amount, payment_method,
	image_filename, extracted_text, ocr_confidence,
	ocr_bill_number, ocr_amount, ocr_date, ocr_vendor_name,
	verification_status, created_by, created_at, updated_at`

// BillRepository handles bill data operations.
type BillRepository struct {
	db *database.DB
}

// NewBillRepository creates a new bill repository.
func NewBillRepository(db *database.DB) *BillRepository {
	return &BillRepository{db: db}
}

// Create inserts a new bill.
func (r *BillRepository) Create(ctx context.Context, bill *Bill) error {
	query := `
		INSERT INTO bills (bill_number, vendor_id, bill_date, amount,
		                   payment_method, verification_status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		bill.BillNumber,
		bill.VendorID,
		bill.BillDate,
		bill.Amount,
		bill.PaymentMethod,
		bill.VerificationStatus,
		bill.CreatedBy,
	).Scan(&bill.ID, &bill.CreatedAt, &bill.UpdatedAt)

	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to create bill")
	}
	return nil
}

// GetByID retrieves a bill by ID.
func (r *BillRepository) GetByID(ctx context.Context, id string) (*Bill, error) {
	query := `SELECT` + billColumns + ` FROM bills WHERE id = $1`

	bill := &Bill{}
	err := r.scanBill(r.db.QueryRow(ctx, query, id), bill)
	if err == pgx.ErrNoRows {
		return nil, errors.NotFound("bill", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to get bill")
	}
	return bill, nil
}

// GetByNumber looks a bill up by its human-entered number.
func (r *BillRepository) GetByNumber(ctx context.Context, billNumber string) (*Bill, error) {
	query := `SELECT` + billColumns + ` FROM bills WHERE bill_number = $1`

	bill := &Bill{}
	err := r.scanBill(r.db.QueryRow(ctx, query, billNumber), bill)
	if err == pgx.ErrNoRows {
		return nil, errors.NotFound("bill", billNumber)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to get bill by number")
	}
	return bill, nil
}

// List retrieves bills with optional vendor/status filters and pagination.
func (r *BillRepository) List(ctx context.Context, vendorID, status *string, limit, offset int) ([]*Bill, int64, error) {
	query := `SELECT` + billColumns + ` FROM bills WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM bills WHERE 1=1`

	args := []any{}
	argCount := 1

	if vendorID != nil {
		clause := fmt.Sprintf(" AND vendor_id = $%d", argCount)
		query += clause
		countQuery += clause
		args = append(args, *vendorID)
		argCount++
	}

	if status != nil {
		clause := fmt.Sprintf(" AND verification_status = $%d", argCount)
		query += clause
		countQuery += clause
		args = append(args, *status)
		argCount++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argCount, argCount+1)
	queryArgs := append(args, limit, offset)

	var total int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeInternal, "failed to count bills")
	}

	rows, err := r.db.Query(ctx, query, queryArgs...)
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeInternal, "failed to list bills")
	}
	defer rows.Close()

	bills := make([]*Bill, 0)
	for rows.Next() {
		bill := &Bill{}
		if err := r.scanBill(rows, bill); err != nil {
			return nil, 0, errors.Wrap(err, errors.ErrCodeInternal, "failed to scan bill")
		}
		bills = append(bills, bill)
	}
	return bills, total, nil
}

// UpdateStoredFields updates the human-confirmed columns of a bill.
func (r *BillRepository) UpdateStoredFields(ctx context.Context, id string, billNumber string, vendorID *string, billDate *time.Time, amount float64, paymentMethod string) error {
	query := `
		UPDATE bills
		SET bill_number = $2,
		    vendor_id = $3,
		    bill_date = $4,
		    amount = $5,
		    payment_method = $6,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING id
	`

	var returnedID string
	err := r.db.QueryRow(ctx, query, id, billNumber, vendorID, billDate, amount, paymentMethod).Scan(&returnedID)
	if err == pgx.ErrNoRows {
		return errors.NotFound("bill", id)
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to update bill")
	}
	return nil
}

// SaveOCRData persists the raw OCR result and the parsed candidate fields
// derived from it.
func (r *BillRepository) SaveOCRData(ctx context.Context, id string, imageFilename, extractedText string, confidence float64, ocrBillNumber *string, ocrAmount *float64, ocrDate *time.Time, ocrVendorName *string) error {
	query := `
		UPDATE bills
		SET image_filename = $2,
		    extracted_text = $3,
		    ocr_confidence = $4,
		    ocr_bill_number = $5,
		    ocr_amount = $6,
		    ocr_date = $7,
		    ocr_vendor_name = $8,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING id
	`

	var returnedID string
	err := r.db.QueryRow(ctx, query, id, imageFilename, extractedText, confidence,
		ocrBillNumber, ocrAmount, ocrDate, ocrVendorName).Scan(&returnedID)
	if err == pgx.ErrNoRows {
		return errors.NotFound("bill", id)
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to save OCR data")
	}
	return nil
}

// UpdateVerificationStatus transitions the bill's verification status.
func (r *BillRepository) UpdateVerificationStatus(ctx context.Context, id, status string) error {
	query := `
		UPDATE bills
		SET verification_status = $2,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING id
	`

	var returnedID string
	err := r.db.QueryRow(ctx, query, id, status).Scan(&returnedID)
	if err == pgx.ErrNoRows {
		return errors.NotFound("bill", id)
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to update verification status")
	}
	return nil
}

// Delete removes a bill that has no recorded credits.
func (r *BillRepository) Delete(ctx context.Context, id string) error {
	query := `
		DELETE FROM bills
		WHERE id = $1
		  AND NOT EXISTS (SELECT 1 FROM credits WHERE credits.bill_id = bills.id)
	`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to delete bill")
	}
	if tag.RowsAffected() == 0 {
		return errors.New(errors.ErrCodeConflict, "cannot delete a bill with recorded credits")
	}
	return nil
}

type billScanner interface {
	Scan(dest ...any) error
}

func (r *BillRepository) scanBill(sc billScanner, bill *Bill) error {
	return sc.Scan(
		&bill.ID,
		&bill.BillNumber,
		&bill.VendorID,
		&bill.BillDate,
		&bill.Amount,
		&bill.PaymentMethod,
		&bill.ImageFilename,
		&bill.ExtractedText,
		&bill.OCRConfidence,
		&bill.OCRBillNumber,
		&bill.OCRAmount,
		&bill.OCRDate,
		&bill.OCRVendorName,
		&bill.VerificationStatus,
		&bill.CreatedBy,
		&bill.CreatedAt,
		&bill.UpdatedAt,
	)
}
