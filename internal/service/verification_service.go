package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/skandahq/be-bills/internal/client"
	"github.com/skandahq/be-bills/internal/errors"
	"github.com/skandahq/be-bills/internal/logger"
	"github.com/skandahq/be-bills/internal/ocr"
	"github.com/skandahq/be-bills/internal/repository"
	"github.com/skandahq/be-bills/internal/verification"
)

// VerificationService drives a bill through the verification workflow:
// initial verification, re-verification over the stored OCR text, and
// reviewer adjudication of flagged discrepancies. Every transition appends
// an audit entry; the trail is never rewritten.
type VerificationService struct {
	billRepo   *repository.BillRepository
	vendorRepo *repository.VendorRepository
	logRepo    *repository.VerificationLogRepository
	notifier   *client.NotificationPublisher

	log *logger.Logger
}

// NewVerificationService creates a new verification service.
func NewVerificationService(
	billRepo *repository.BillRepository,
	vendorRepo *repository.VendorRepository,
	logRepo *repository.VerificationLogRepository,
	notifier *client.NotificationPublisher,
	log *logger.Logger,
) *VerificationService {
	return &VerificationService{
		billRepo:   billRepo,
		vendorRepo: vendorRepo,
		logRepo:    logRepo,
		notifier:   notifier,
		log:        log,
	}
}

// VerifyBillRequest represents an initial verification request. The reviewer
// confirms or corrects the extracted fields; their values become the stored
// record.
type VerifyBillRequest struct {
	BillID        string
	BillNumber    string
	VendorID      *string
	BillDate      *string
	Amount        float64
	PaymentMethod string
	ReviewerID    string
	Remarks       *string
}

// AdjudicateBillRequest represents a reviewer decision on a flagged bill.
// Corrected field values are only consulted when Action is correct.
type AdjudicateBillRequest struct {
	BillID        string
	Action        verification.Action
	BillNumber    *string
	VendorID      *string
	BillDate      *string
	Amount        *float64
	PaymentMethod *string
	ReviewerID    string
	Remarks       *string
}

// VerifyBill records the reviewer's confirmed field values and marks the
// bill verified. The reviewer's entries are reconciled against the OCR
// extraction under the strict profile; mismatches are recorded in the audit
// entry but do not block verification, since the reviewer's values win.
func (s *VerificationService) VerifyBill(ctx context.Context, req *VerifyBillRequest) (*repository.Bill, error) {
	bill, err := s.billRepo.GetByID(ctx, req.BillID)
	if err != nil {
		return nil, err
	}

	if bill.VerificationStatus != string(verification.StatusUnverified) {
		return nil, errors.New(errors.ErrCodeConflict,
			fmt.Sprintf("cannot verify bill with status '%s'", bill.VerificationStatus))
	}

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

	reviewed := verification.FieldSet{
		BillNumber: &billNumber,
		Amount:     &req.Amount,
		Date:       billDate,
	}
	extracted := s.extractedFields(bill)
	report := verification.Compare(reviewed, extracted, verification.StrictProfile)

	err = s.billRepo.UpdateStoredFields(ctx, req.BillID, billNumber, req.VendorID, billDate, req.Amount, normalizePaymentMethod(req.PaymentMethod))
	if err != nil {
		return nil, err
	}

	if err := s.billRepo.UpdateVerificationStatus(ctx, req.BillID, string(verification.StatusVerified)); err != nil {
		return nil, err
	}

	outcome := string(verification.OutcomeVerified)
	entry := &repository.VerificationLogEntry{
		BillID:       req.BillID,
		Action:       string(verification.ActionInitial),
		Outcome:      &outcome,
		ReviewerID:   req.ReviewerID,
		StatusBefore: bill.VerificationStatus,
		StatusAfter:  string(verification.StatusVerified),
		Report:       &report,
		Remarks:      req.Remarks,
	}
	if err := s.logRepo.Append(ctx, entry); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("bill_id", req.BillID).
		Str("bill_number", billNumber).
		Str("reviewer_id", req.ReviewerID).
		Bool("ocr_mismatch", report.HasDiscrepancy).
		Msg("Bill verified")

	s.notifier.PublishBillEvent(ctx, "bill_verified", req.BillID, req.ReviewerID, map[string]interface{}{
		"bill_number": billNumber,
	})

	return s.billRepo.GetByID(ctx, req.BillID)
}

// ReverifyBill re-runs the field extractor over the OCR text captured at
// upload and reconciles the extraction against the stored record under the
// review tolerance profile. The raw text never changes after upload, so the
// resulting report is reproducible from stored state. A mismatch moves the
// bill to discrepancy_found; a clean pass moves it to verified.
// Re-verification is allowed from any status, including rejected, so
// reviewers can reopen bills rejected by mistake.
func (s *VerificationService) ReverifyBill(ctx context.Context, billID, reviewerID string) (*repository.Bill, *verification.Report, error) {
	bill, err := s.billRepo.GetByID(ctx, billID)
	if err != nil {
		return nil, nil, err
	}

	text, err := s.recognizedText(bill)
	if err != nil {
		return nil, nil, err
	}

	knownNames, err := s.knownVendorNames(ctx)
	if err != nil {
		return nil, nil, err
	}

	parsed := ocr.ExtractAll(text, knownNames)
	stored, err := s.storedFields(ctx, bill)
	if err != nil {
		return nil, nil, err
	}

	report := verification.Compare(stored, verification.FromParsed(parsed), verification.ReviewProfile)
	nextStatus := verification.ReverifyStatus(report)

	if err := s.billRepo.UpdateVerificationStatus(ctx, billID, string(nextStatus)); err != nil {
		return nil, nil, err
	}

	entry := &repository.VerificationLogEntry{
		BillID:       billID,
		Action:       string(verification.ActionReverify),
		ReviewerID:   reviewerID,
		StatusBefore: bill.VerificationStatus,
		StatusAfter:  string(nextStatus),
		Report:       &report,
	}
	if err := s.logRepo.Append(ctx, entry); err != nil {
		return nil, nil, err
	}

	s.log.Info().
		Str("bill_id", billID).
		Str("status", string(nextStatus)).
		Int("discrepancies", len(report.Discrepancies)).
		Msg("Bill re-verified")

	if report.HasDiscrepancy {
		s.notifier.PublishBillEvent(ctx, "discrepancy_found", billID, reviewerID, map[string]interface{}{
			"bill_number":   bill.BillNumber,
			"discrepancies": len(report.Discrepancies),
		})
	}

	updated, err := s.billRepo.GetByID(ctx, billID)
	if err != nil {
		return nil, nil, err
	}
	return updated, &report, nil
}

// AdjudicateBill applies a reviewer decision to a flagged bill. Approve
// keeps the stored values, correct replaces them with the reviewer's before
// verifying, reject parks the bill as rejected.
func (s *VerificationService) AdjudicateBill(ctx context.Context, req *AdjudicateBillRequest) (*repository.Bill, error) {
	bill, err := s.billRepo.GetByID(ctx, req.BillID)
	if err != nil {
		return nil, err
	}

	if bill.VerificationStatus != string(verification.StatusDiscrepancyFound) {
		return nil, errors.New(errors.ErrCodeConflict,
			fmt.Sprintf("cannot adjudicate bill with status '%s'", bill.VerificationStatus))
	}

	nextStatus, outcome, ok := verification.AdjudicationStatus(req.Action)
	if !ok {
		return nil, errors.InvalidInput("action", "action must be approve, correct or reject")
	}

	if req.Action == verification.ActionCorrect {
		if err := s.applyCorrections(ctx, bill, req); err != nil {
			return nil, err
		}
	}

	if err := s.billRepo.UpdateVerificationStatus(ctx, req.BillID, string(nextStatus)); err != nil {
		return nil, err
	}

	// The audit entry reconciles the final stored values against the OCR
	// extraction, so the trail shows what the reviewer accepted or overrode.
	final, err := s.billRepo.GetByID(ctx, req.BillID)
	if err != nil {
		return nil, err
	}
	stored, err := s.storedFields(ctx, final)
	if err != nil {
		return nil, err
	}
	report := verification.Compare(stored, s.extractedFields(final), verification.ReviewProfile)

	outcomeStr := string(outcome)
	entry := &repository.VerificationLogEntry{
		BillID:       req.BillID,
		Action:       string(req.Action),
		Outcome:      &outcomeStr,
		ReviewerID:   req.ReviewerID,
		StatusBefore: bill.VerificationStatus,
		StatusAfter:  string(nextStatus),
		Report:       &report,
		Remarks:      req.Remarks,
	}
	if err := s.logRepo.Append(ctx, entry); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("bill_id", req.BillID).
		Str("action", string(req.Action)).
		Str("status", string(nextStatus)).
		Str("reviewer_id", req.ReviewerID).
		Msg("Bill adjudicated")

	event := map[verification.Action]string{
		verification.ActionApprove: "bill_verified",
		verification.ActionCorrect: "bill_corrected",
		verification.ActionReject:  "bill_rejected",
	}[req.Action]
	s.notifier.PublishBillEvent(ctx, event, req.BillID, req.ReviewerID, map[string]interface{}{
		"bill_number": bill.BillNumber,
	})

	return final, nil
}

// GetAuditTrail returns the verification history for a bill, oldest first.
func (s *VerificationService) GetAuditTrail(ctx context.Context, billID string) ([]*repository.VerificationLogEntry, error) {
	if _, err := s.billRepo.GetByID(ctx, billID); err != nil {
		return nil, err
	}
	return s.logRepo.ListByBill(ctx, billID)
}

func (s *VerificationService) applyCorrections(ctx context.Context, bill *repository.Bill, req *AdjudicateBillRequest) error {
	billNumber := bill.BillNumber
	if req.BillNumber != nil {
		billNumber = strings.ToUpper(strings.TrimSpace(*req.BillNumber))
		if billNumber == "" {
			return errors.InvalidInput("bill_number", "bill number is required")
		}
	}

	amount := bill.Amount
	if req.Amount != nil {
		if *req.Amount <= 0 {
			return errors.InvalidInput("amount", "amount must be positive")
		}
		amount = *req.Amount
	}

	vendorID := bill.VendorID
	if req.VendorID != nil {
		if _, err := s.vendorRepo.GetByID(ctx, *req.VendorID); err != nil {
			return err
		}
		vendorID = req.VendorID
	}

	billDate := bill.BillDate
	if req.BillDate != nil {
		parsed, err := parseOptionalDate(req.BillDate)
		if err != nil {
			return err
		}
		billDate = parsed
	}

	paymentMethod := bill.PaymentMethod
	if req.PaymentMethod != nil {
		paymentMethod = normalizePaymentMethod(*req.PaymentMethod)
	}

	return s.billRepo.UpdateStoredFields(ctx, bill.ID, billNumber, vendorID, billDate, amount, paymentMethod)
}

// recognizedText returns the raw OCR text captured at upload time. A new
// reading of the image only enters the record through another upload.
func (s *VerificationService) recognizedText(bill *repository.Bill) (string, error) {
	if bill.ExtractedText != nil && *bill.ExtractedText != "" {
		return *bill.ExtractedText, nil
	}
	return "", errors.InvalidInput("bill", "bill has no extracted text to verify against")
}

// storedFields assembles the comparable view of a bill's stored record.
func (s *VerificationService) storedFields(ctx context.Context, bill *repository.Bill) (verification.FieldSet, error) {
	fields := verification.FieldSet{
		BillNumber: &bill.BillNumber,
		Amount:     &bill.Amount,
	}
	if bill.BillDate != nil {
		d := *bill.BillDate
		fields.Date = &d
	}
	if bill.VendorID != nil {
		vendor, err := s.vendorRepo.GetByID(ctx, *bill.VendorID)
		if err != nil {
			return verification.FieldSet{}, err
		}
		fields.VendorName = &vendor.Name
	}
	return fields, nil
}

// extractedFields builds a field set from the OCR columns saved at upload.
func (s *VerificationService) extractedFields(bill *repository.Bill) verification.FieldSet {
	fields := verification.FieldSet{
		BillNumber: bill.OCRBillNumber,
		Amount:     bill.OCRAmount,
		VendorName: bill.OCRVendorName,
	}
	if bill.OCRDate != nil {
		d := *bill.OCRDate
		fields.Date = &d
	}
	return fields
}

func (s *VerificationService) knownVendorNames(ctx context.Context) ([]string, error) {
	catalog, err := s.vendorRepo.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(catalog))
	for _, entry := range catalog {
		names = append(names, entry.Name)
	}
	return names, nil
}
