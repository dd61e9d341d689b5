package repository

import (
	"context"
	"time"

	"github.com/skandahq/be-bills/internal/database"
	"github.com/skandahq/be-bills/internal/errors"
)

// VendorLinkEntry records one attempt to link a bill to a vendor from its
// extracted text.
type VendorLinkEntry struct {
	ID            string
	BillID        string
	VendorID      *string
	ExtractedName *string
	Score         float64
	MatchKind     string // exact | fuzzy | partial | no_match
	CreatedBy     string
	CreatedAt     time.Time
}

// VendorLinkRepository appends and reads vendor match audit entries.
type VendorLinkRepository struct {
	db *database.DB
}

// NewVendorLinkRepository creates a new VendorLinkRepository.
func NewVendorLinkRepository(db *database.DB) *VendorLinkRepository {
	return &VendorLinkRepository{db: db}
}

// Append inserts one match audit entry.
func (r *VendorLinkRepository) Append(ctx context.Context, entry *VendorLinkEntry) error {
	query := `
		INSERT INTO ocr_vendor_link_log
		    (bill_id, vendor_id, extracted_name, score, match_kind, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		entry.BillID,
		entry.VendorID,
		entry.ExtractedName,
		entry.Score,
		entry.MatchKind,
		entry.CreatedBy,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to append vendor link entry")
	}
	return nil
}

// ListByBill returns all match attempts for a bill, oldest first.
func (r *VendorLinkRepository) ListByBill(ctx context.Context, billID string) ([]*VendorLinkEntry, error) {
	query := `
		SELECT id, bill_id, vendor_id, extracted_name, score, match_kind, created_by, created_at
		FROM ocr_vendor_link_log
		WHERE bill_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(ctx, query, billID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to get vendor link log")
	}
	defer rows.Close()

	var entries []*VendorLinkEntry
	for rows.Next() {
		entry := &VendorLinkEntry{}
		err := rows.Scan(
			&entry.ID,
			&entry.BillID,
			&entry.VendorID,
			&entry.ExtractedName,
			&entry.Score,
			&entry.MatchKind,
			&entry.CreatedBy,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to scan vendor link entry")
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
