// Package verification compares human-confirmed bill fields against
// OCR-extracted candidates and drives the bill verification workflow.
package verification

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/skandahq/be-bills/internal/ocr"
)

// FieldSet is one side of a reconciliation: either the stored, human-confirmed
// bill fields or a freshly extracted candidate set. Nil means absent.
type FieldSet struct {
	BillNumber *string
	Amount     *float64
	Date       *time.Time
	VendorName *string
}

// FromParsed adapts extractor output into a comparable field set.
func FromParsed(p ocr.ParsedBillFields) FieldSet {
	return FieldSet{
		BillNumber: p.BillNumber,
		Amount:     p.Amount,
		Date:       p.Date,
		VendorName: p.VendorName,
	}
}

// ToleranceProfile names the amount tolerance applied at a workflow stage.
// The strict profile re-checks OCR-derived data against itself; the review
// profile tolerates rounding in human-entered amounts.
type ToleranceProfile struct {
	Name          string
	AmountEpsilon decimal.Decimal
}

var (
	// StrictProfile flags any amount difference above one hundredth of a
	// currency unit. Used when reconciling OCR output against OCR output.
	StrictProfile = ToleranceProfile{
		Name:          "strict_reconciliation",
		AmountEpsilon: decimal.NewFromFloat(0.01),
	}

	// ReviewProfile tolerates up to five currency units, absorbing rounding
	// and minor OCR digit noise during live re-verification.
	ReviewProfile = ToleranceProfile{
		Name:          "review",
		AmountEpsilon: decimal.NewFromInt(5),
	}
)

// Discrepancy is one field-level mismatch with enough detail for a human to
// adjudicate.
type Discrepancy struct {
	Field      string   `json:"field"`
	Stored     string   `json:"stored_value"`
	OCR        string   `json:"ocr_value"`
	Difference *float64 `json:"difference,omitempty"`
}

// Report is the outcome of comparing two field sets. Derived, never mutated.
type Report struct {
	HasDiscrepancy bool          `json:"has_discrepancy"`
	Profile        string        `json:"tolerance_profile"`
	Discrepancies  []Discrepancy `json:"discrepancies"`
}

// Compare reports mismatches between stored and extracted fields under the
// given tolerance profile. A field missing on either side cannot be
// contradicted and is not flagged.
func Compare(stored, extracted FieldSet, profile ToleranceProfile) Report {
	report := Report{Profile: profile.Name}

	if stored.BillNumber != nil && extracted.BillNumber != nil {
		if normalizeBillNumber(*stored.BillNumber) != normalizeBillNumber(*extracted.BillNumber) {
			report.Discrepancies = append(report.Discrepancies, Discrepancy{
				Field:  "bill_number",
				Stored: *stored.BillNumber,
				OCR:    *extracted.BillNumber,
			})
		}
	}

	if stored.Amount != nil && extracted.Amount != nil {
		storedAmt := decimal.NewFromFloat(*stored.Amount)
		ocrAmt := decimal.NewFromFloat(*extracted.Amount)
		diff := storedAmt.Sub(ocrAmt).Abs()
		if diff.GreaterThan(profile.AmountEpsilon) {
			difference := diff.InexactFloat64()
			report.Discrepancies = append(report.Discrepancies, Discrepancy{
				Field:      "amount",
				Stored:     storedAmt.String(),
				OCR:        ocrAmt.String(),
				Difference: &difference,
			})
		}
	}

	if stored.Date != nil && extracted.Date != nil {
		if !sameCalendarDate(*stored.Date, *extracted.Date) {
			report.Discrepancies = append(report.Discrepancies, Discrepancy{
				Field:  "date",
				Stored: stored.Date.Format("2006-01-02"),
				OCR:    extracted.Date.Format("2006-01-02"),
			})
		}
	}

	if stored.VendorName != nil && extracted.VendorName != nil {
		if !strings.EqualFold(strings.TrimSpace(*stored.VendorName), strings.TrimSpace(*extracted.VendorName)) {
			report.Discrepancies = append(report.Discrepancies, Discrepancy{
				Field:  "vendor_name",
				Stored: *stored.VendorName,
				OCR:    *extracted.VendorName,
			})
		}
	}

	report.HasDiscrepancy = len(report.Discrepancies) > 0
	return report
}

func normalizeBillNumber(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func sameCalendarDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
