package service

import (
	"context"
	"strings"

	"github.com/skandahq/be-bills/internal/errors"
	"github.com/skandahq/be-bills/internal/logger"
	"github.com/skandahq/be-bills/internal/repository"
)

// VendorService handles vendor catalog operations.
type VendorService struct {
	vendorRepo *repository.VendorRepository
	log        *logger.Logger
}

// NewVendorService creates a new vendor service.
func NewVendorService(vendorRepo *repository.VendorRepository, log *logger.Logger) *VendorService {
	return &VendorService{vendorRepo: vendorRepo, log: log}
}

// CreateVendorRequest represents a create vendor request
type CreateVendorRequest struct {
	Name      string
	Contact   *string
	Email     *string
	Address   *string
	GSTNumber *string
}

// CreateVendor adds a vendor to the catalog.
func (s *VendorService) CreateVendor(ctx context.Context, req *CreateVendorRequest) (*repository.Vendor, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errors.InvalidInput("name", "vendor name is required")
	}

	if req.Email != nil && !strings.Contains(*req.Email, "@") {
		return nil, errors.InvalidInput("email", "invalid email address")
	}

	vendor := &repository.Vendor{
		Name:      name,
		Contact:   req.Contact,
		Email:     req.Email,
		Address:   req.Address,
		GSTNumber: req.GSTNumber,
	}

	if err := s.vendorRepo.Create(ctx, vendor); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("vendor_id", vendor.ID).
		Str("name", vendor.Name).
		Msg("Vendor created")

	return vendor, nil
}

// GetVendor retrieves a vendor by ID
func (s *VendorService) GetVendor(ctx context.Context, id string) (*repository.Vendor, error) {
	return s.vendorRepo.GetByID(ctx, id)
}

// ListVendors lists all vendors ordered by name
func (s *VendorService) ListVendors(ctx context.Context) ([]*repository.Vendor, error) {
	return s.vendorRepo.List(ctx)
}
