package service

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/skandahq/be-bills/internal/client"
	"github.com/skandahq/be-bills/internal/errors"
	"github.com/skandahq/be-bills/internal/logger"
	"github.com/skandahq/be-bills/internal/ocr"
	"github.com/skandahq/be-bills/internal/repository"
	"github.com/skandahq/be-bills/internal/vendormatch"
	"github.com/skandahq/be-bills/internal/verification"
)

// allowedImageExtensions are the upload formats the OCR engine accepts.
var allowedImageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// BillService handles bill business logic, including the image upload and
// field extraction pipeline.
type BillService struct {
	billRepo       *repository.BillRepository
	vendorRepo     *repository.VendorRepository
	vendorLinkRepo *repository.VendorLinkRepository
	engine         *ocr.EngineProvider
	notifier       *client.NotificationPublisher

	uploadDir      string
	matchThreshold float64
	fuzzyMatching  bool

	log *logger.Logger
}

// NewBillService creates a new bill service.
func NewBillService(
	billRepo *repository.BillRepository,
	vendorRepo *repository.VendorRepository,
	vendorLinkRepo *repository.VendorLinkRepository,
	engine *ocr.EngineProvider,
	notifier *client.NotificationPublisher,
	uploadDir string,
	matchThreshold float64,
	fuzzyMatching bool,
	log *logger.Logger,
) *BillService {
	return &BillService{
		billRepo:       billRepo,
		vendorRepo:     vendorRepo,
		vendorLinkRepo: vendorLinkRepo,
		engine:         engine,
		notifier:       notifier,
		uploadDir:      uploadDir,
		matchThreshold: matchThreshold,
		fuzzyMatching:  fuzzyMatching,
		log:            log,
	}
}

// CreateBillRequest represents a create bill request
type CreateBillRequest struct {
	BillNumber    string
	VendorID      *string
	BillDate      *string
	Amount        float64
	PaymentMethod string
	CreatedBy     string
}

// UpdateBillRequest represents an update bill request
type UpdateBillRequest struct {
	ID            string
	BillNumber    string
	VendorID      *string
	BillDate      *string
	Amount        float64
	PaymentMethod string
}

// CreateBill creates a new bill with manually entered fields.
func (s *BillService) CreateBill(ctx context.Context, req *CreateBillRequest) (*repository.Bill, error) {
	billNumber := strings.ToUpper(strings.TrimSpace(req.BillNumber))
	if billNumber == "" {
		return nil, errors.InvalidInput("bill_number", "bill number is required")
	}

	if req.Amount <= 0 {
		return nil, errors.InvalidInput("amount", "amount must be positive")
	}

	billDate, err := parseOptionalDate(req.BillDate)
	if err != nil {
		return nil, err
	}

	if req.VendorID != nil {
		if _, err := s.vendorRepo.GetByID(ctx, *req.VendorID); err != nil {
			return nil, err
		}
	}

	bill := &repository.Bill{
		BillNumber:         billNumber,
		VendorID:           req.VendorID,
		BillDate:           billDate,
		Amount:             req.Amount,
		PaymentMethod:      normalizePaymentMethod(req.PaymentMethod),
		VerificationStatus: string(verification.StatusUnverified),
		CreatedBy:          &req.CreatedBy,
	}

	if err := s.billRepo.Create(ctx, bill); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("bill_id", bill.ID).
		Str("bill_number", bill.BillNumber).
		Float64("amount", bill.Amount).
		Msg("Bill created")

	return bill, nil
}

// GetBill retrieves a bill by ID
func (s *BillService) GetBill(ctx context.Context, id string) (*repository.Bill, error) {
	return s.billRepo.GetByID(ctx, id)
}

// GetBillByNumber looks a bill up by its human-entered number.
func (s *BillService) GetBillByNumber(ctx context.Context, billNumber string) (*repository.Bill, error) {
	return s.billRepo.GetByNumber(ctx, billNumber)
}

// VendorLinkTrail returns the vendor match attempts recorded for a bill,
// oldest first.
func (s *BillService) VendorLinkTrail(ctx context.Context, billID string) ([]*repository.VendorLinkEntry, error) {
	if _, err := s.billRepo.GetByID(ctx, billID); err != nil {
		return nil, err
	}
	return s.vendorLinkRepo.ListByBill(ctx, billID)
}

// ListBills lists bills with filtering and pagination
func (s *BillService) ListBills(ctx context.Context, vendorID, status *string, page, pageSize int) ([]*repository.Bill, int64, error) {
	if status != nil && !verification.ValidStatus(verification.Status(*status)) {
		return nil, 0, errors.InvalidInput("status", "unknown verification status")
	}
	offset := (page - 1) * pageSize
	return s.billRepo.List(ctx, vendorID, status, pageSize, offset)
}

// UpdateBill updates a bill's stored fields.
func (s *BillService) UpdateBill(ctx context.Context, req *UpdateBillRequest) (*repository.Bill, error) {
	billNumber := strings.ToUpper(strings.TrimSpace(req.BillNumber))
	if billNumber == "" {
		return nil, errors.InvalidInput("bill_number", "bill number is required")
	}

	if req.Amount <= 0 {
		return nil, errors.InvalidInput("amount", "amount must be positive")
	}

	billDate, err := parseOptionalDate(req.BillDate)
	if err != nil {
		return nil, err
	}

	if _, err := s.billRepo.GetByID(ctx, req.ID); err != nil {
		return nil, err
	}

	if req.VendorID != nil {
		if _, err := s.vendorRepo.GetByID(ctx, *req.VendorID); err != nil {
			return nil, err
		}
	}

	err = s.billRepo.UpdateStoredFields(ctx, req.ID, billNumber, req.VendorID, billDate, req.Amount, normalizePaymentMethod(req.PaymentMethod))
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("bill_id", req.ID).
		Str("bill_number", billNumber).
		Msg("Bill updated")

	return s.billRepo.GetByID(ctx, req.ID)
}

// DeleteBill deletes a bill. Bills with recorded credits cannot be deleted.
func (s *BillService) DeleteBill(ctx context.Context, id string) error {
	if _, err := s.billRepo.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.billRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info().Str("bill_id", id).Msg("Bill deleted")
	return nil
}

// UploadResult is the outcome of the image upload pipeline for one bill.
type UploadResult struct {
	Bill        *repository.Bill     `json:"bill"`
	Parsed      ocr.ParsedBillFields `json:"parsed_fields"`
	VendorMatch vendormatch.Result   `json:"vendor_match"`
	OCRError    string               `json:"ocr_error,omitempty"`
	Report      *verification.Report `json:"report,omitempty"`
}

// UploadBillImage stores the image, runs OCR, extracts fields and attempts
// to link the bill to a catalog vendor. OCR failure degrades to an empty
// extraction instead of failing the upload; the image and any error are
// still recorded so the bill can be verified manually.
func (s *BillService) UploadBillImage(ctx context.Context, billID, sourceName string, image io.Reader, uploadedBy string) (*UploadResult, error) {
	bill, err := s.billRepo.GetByID(ctx, billID)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(sourceName))
	if !allowedImageExtensions[ext] {
		return nil, errors.InvalidInput("image", "unsupported image format, expected png or jpeg")
	}

	filename := uuid.New().String() + ext
	if err := s.saveImage(filename, image); err != nil {
		return nil, err
	}

	raw := s.engine.Recognize(ctx, filepath.Join(s.uploadDir, filename))

	catalog, err := s.vendorRepo.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	knownNames := make([]string, 0, len(catalog))
	for _, entry := range catalog {
		knownNames = append(knownNames, entry.Name)
	}

	parsed := ocr.ExtractAll(raw.Text, knownNames)

	var match vendormatch.Result
	if s.fuzzyMatching {
		match = vendormatch.Match(raw.Text, catalog, s.matchThreshold)
	} else {
		match = vendormatch.SimpleMatch(raw.Text, catalog)
	}

	var matchedName *string
	if match.Kind != vendormatch.KindNoMatch {
		matchedName = &match.MatchedName
	} else {
		matchedName = parsed.VendorName
	}

	err = s.billRepo.SaveOCRData(ctx, billID, filename, raw.Text, raw.Confidence,
		parsed.BillNumber, parsed.Amount, parsed.Date, matchedName)
	if err != nil {
		return nil, err
	}

	linkEntry := &repository.VendorLinkEntry{
		BillID:        billID,
		ExtractedName: parsed.VendorName,
		Score:         match.Score,
		MatchKind:     string(match.Kind),
		CreatedBy:     uploadedBy,
	}
	if match.Kind != vendormatch.KindNoMatch {
		linkEntry.VendorID = &match.VendorID
	}
	if err := s.vendorLinkRepo.Append(ctx, linkEntry); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("bill_id", billID).
		Str("image_filename", filename).
		Float64("ocr_confidence", raw.Confidence).
		Str("match_kind", string(match.Kind)).
		Float64("match_score", match.Score).
		Msg("Bill image processed")

	s.notifier.PublishBillEvent(ctx, "bill_uploaded", billID, uploadedBy, map[string]interface{}{
		"bill_number": bill.BillNumber,
		"match_kind":  string(match.Kind),
	})

	updated, err := s.billRepo.GetByID(ctx, billID)
	if err != nil {
		return nil, err
	}

	report := uploadPreview(bill, catalog, parsed)

	return &UploadResult{
		Bill:        updated,
		Parsed:      parsed,
		VendorMatch: match,
		OCRError:    raw.Err,
		Report:      &report,
	}, nil
}

// uploadPreview reconciles the extraction against the bill's entered fields
// under the strict profile so the uploader sees mismatches immediately. The
// catalog snapshot already in hand resolves the entered vendor's name.
func uploadPreview(bill *repository.Bill, catalog []vendormatch.VendorCatalogEntry, parsed ocr.ParsedBillFields) verification.Report {
	stored := verification.FieldSet{
		BillNumber: &bill.BillNumber,
		Amount:     &bill.Amount,
		Date:       bill.BillDate,
	}
	if bill.VendorID != nil {
		for i := range catalog {
			if catalog[i].ID == *bill.VendorID {
				stored.VendorName = &catalog[i].Name
				break
			}
		}
	}
	return verification.Compare(stored, verification.FromParsed(parsed), verification.StrictProfile)
}

func (s *BillService) saveImage(filename string, image io.Reader) error {
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to create upload directory")
	}

	dst, err := os.Create(filepath.Join(s.uploadDir, filename))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to create image file")
	}
	defer dst.Close()

	if _, err := io.Copy(dst, image); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to write image file")
	}
	return nil
}

func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, errors.InvalidInput("bill_date", "invalid date format, expected YYYY-MM-DD")
	}
	return &t, nil
}

func normalizePaymentMethod(m string) string {
	m = strings.ToLower(strings.TrimSpace(m))
	if m == "" {
		return "credit"
	}
	return m
}
