package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/skandahq/be-bills/internal/database"
	"github.com/skandahq/be-bills/internal/errors"
	"github.com/skandahq/be-bills/internal/vendormatch"
)

// Vendor is a supplier the business buys from.
type Vendor struct {
	ID        string
	Name      string
	Contact   *string
	Email     *string
	Address   *string
	GSTNumber *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// VendorRepository handles vendor data operations.
type VendorRepository struct {
	db *database.DB
}

// NewVendorRepository creates a new vendor repository.
func NewVendorRepository(db *database.DB) *VendorRepository {
	return &VendorRepository{db: db}
}

// Create inserts a new vendor.
func (r *VendorRepository) Create(ctx context.Context, vendor *Vendor) error {
	query := `
		INSERT INTO vendors (name, contact, email, address, gst_number)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		vendor.Name, vendor.Contact, vendor.Email, vendor.Address, vendor.GSTNumber,
	).Scan(&vendor.ID, &vendor.CreatedAt, &vendor.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to create vendor")
	}
	return nil
}

// GetByID retrieves a vendor by ID.
func (r *VendorRepository) GetByID(ctx context.Context, id string) (*Vendor, error) {
	query := `
		SELECT id, name, contact, email, address, gst_number, created_at, updated_at
		FROM vendors
		WHERE id = $1
	`

	vendor := &Vendor{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&vendor.ID, &vendor.Name, &vendor.Contact, &vendor.Email,
		&vendor.Address, &vendor.GSTNumber, &vendor.CreatedAt, &vendor.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, errors.NotFound("vendor", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to get vendor")
	}
	return vendor, nil
}

// List returns all vendors ordered by name.
func (r *VendorRepository) List(ctx context.Context) ([]*Vendor, error) {
	query := `
		SELECT id, name, contact, email, address, gst_number, created_at, updated_at
		FROM vendors
		ORDER BY name
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to list vendors")
	}
	defer rows.Close()

	vendors := make([]*Vendor, 0)
	for rows.Next() {
		vendor := &Vendor{}
		if err := rows.Scan(
			&vendor.ID, &vendor.Name, &vendor.Contact, &vendor.Email,
			&vendor.Address, &vendor.GSTNumber, &vendor.CreatedAt, &vendor.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to scan vendor")
		}
		vendors = append(vendors, vendor)
	}
	return vendors, nil
}

// Snapshot returns a point-in-time catalog for the matcher. Staleness is
// acceptable; a rename after the snapshot is resolved by the reviewer.
func (r *VendorRepository) Snapshot(ctx context.Context) ([]vendormatch.VendorCatalogEntry, error) {
	query := `SELECT id, name FROM vendors ORDER BY name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to snapshot vendor catalog")
	}
	defer rows.Close()

	catalog := make([]vendormatch.VendorCatalogEntry, 0)
	for rows.Next() {
		var entry vendormatch.VendorCatalogEntry
		if err := rows.Scan(&entry.ID, &entry.Name); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to scan catalog entry")
		}
		catalog = append(catalog, entry)
	}
	return catalog, nil
}
