package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/skandahq/be-bills/internal/database"
	"github.com/skandahq/be-bills/internal/errors"
	"github.com/skandahq/be-bills/internal/verification"
)

// VerificationLogEntry is one immutable record in the bill verification
// audit trail.
type VerificationLogEntry struct {
	ID           string
	BillID       string
	Action       string // initial | reverify | approve | correct | reject
	Outcome      *string
	ReviewerID   string
	StatusBefore string
	StatusAfter  string
	Report       *verification.Report
	Remarks      *string
	CreatedAt    time.Time
}

// VerificationLogRepository appends and reads append-only verification audit
// entries.
type VerificationLogRepository struct {
	db *database.DB
}

// NewVerificationLogRepository creates a new VerificationLogRepository.
func NewVerificationLogRepository(db *database.DB) *VerificationLogRepository {
	return &VerificationLogRepository{db: db}
}

// Append inserts one audit entry. Entries are never updated or deleted.
func (r *VerificationLogRepository) Append(ctx context.Context, entry *VerificationLogEntry) error {
	var reportJSON []byte
	if entry.Report != nil {
		var err error
		reportJSON, err = json.Marshal(entry.Report)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeInternal, "failed to marshal discrepancy report")
		}
	}

	query := `
		INSERT INTO ocr_verification_log
		    (bill_id, action, outcome, reviewer_id,
		     status_before, status_after, report, remarks)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		entry.BillID,
		entry.Action,
		entry.Outcome,
		entry.ReviewerID,
		entry.StatusBefore,
		entry.StatusAfter,
		reportJSON,
		entry.Remarks,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to append verification log entry")
	}
	return nil
}

// ListByBill returns the full audit trail for a bill, oldest first.
func (r *VerificationLogRepository) ListByBill(ctx context.Context, billID string) ([]*VerificationLogEntry, error) {
	query := `
		SELECT id, bill_id, action, outcome, reviewer_id,
		       status_before, status_after, report, remarks, created_at
		FROM ocr_verification_log
		WHERE bill_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(ctx, query, billID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to get verification log")
	}
	defer rows.Close()

	return r.scanRows(rows)
}

func (r *VerificationLogRepository) scanRows(rows pgx.Rows) ([]*VerificationLogEntry, error) {
	var entries []*VerificationLogEntry
	for rows.Next() {
		entry := &VerificationLogEntry{}
		var reportJSON []byte

		err := rows.Scan(
			&entry.ID,
			&entry.BillID,
			&entry.Action,
			&entry.Outcome,
			&entry.ReviewerID,
			&entry.StatusBefore,
			&entry.StatusAfter,
			&reportJSON,
			&entry.Remarks,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to scan verification log entry")
		}

		if reportJSON != nil {
			entry.Report = &verification.Report{}
			if err := json.Unmarshal(reportJSON, entry.Report); err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to unmarshal discrepancy report")
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
