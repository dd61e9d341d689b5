package verification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string        { return &s }
func f64Ptr(f float64) *float64      { return &f }
func datePtr(t time.Time) *time.Time { return &t }

func TestCompare_AmountWithinReviewTolerance(t *testing.T) {
	stored := FieldSet{Amount: f64Ptr(1000)}
	extracted := FieldSet{Amount: f64Ptr(1004.99)}

	report := Compare(stored, extracted, ReviewProfile)

	assert.False(t, report.HasDiscrepancy)
	assert.Empty(t, report.Discrepancies)
	assert.Equal(t, "review", report.Profile)
}

func TestCompare_AmountBeyondReviewTolerance(t *testing.T) {
	stored := FieldSet{Amount: f64Ptr(1000)}
	extracted := FieldSet{Amount: f64Ptr(1006)}

	report := Compare(stored, extracted, ReviewProfile)

	require.True(t, report.HasDiscrepancy)
	require.Len(t, report.Discrepancies, 1)

	d := report.Discrepancies[0]
	assert.Equal(t, "amount", d.Field)
	assert.Equal(t, "1000", d.Stored)
	assert.Equal(t, "1006", d.OCR)
	require.NotNil(t, d.Difference)
	assert.InDelta(t, 6.00, *d.Difference, 0.0001)
}

func TestCompare_StrictProfileFlagsSmallDrift(t *testing.T) {
	stored := FieldSet{Amount: f64Ptr(100.00)}
	extracted := FieldSet{Amount: f64Ptr(100.02)}

	report := Compare(stored, extracted, StrictProfile)

	assert.True(t, report.HasDiscrepancy)

	// The same drift passes under the review profile.
	assert.False(t, Compare(stored, extracted, ReviewProfile).HasDiscrepancy)
}

func TestCompare_AmountAtExactEpsilonPasses(t *testing.T) {
	stored := FieldSet{Amount: f64Ptr(100.00)}
	extracted := FieldSet{Amount: f64Ptr(100.01)}

	report := Compare(stored, extracted, StrictProfile)

	assert.False(t, report.HasDiscrepancy)
}

func TestCompare_BillNumberCaseAndWhitespaceInsensitive(t *testing.T) {
	stored := FieldSet{BillNumber: strPtr("AB-1234")}
	extracted := FieldSet{BillNumber: strPtr("  ab-1234  ")}

	report := Compare(stored, extracted, StrictProfile)

	assert.False(t, report.HasDiscrepancy)
}

func TestCompare_BillNumberMismatch(t *testing.T) {
	stored := FieldSet{BillNumber: strPtr("AB-1234")}
	extracted := FieldSet{BillNumber: strPtr("AB-1235")}

	report := Compare(stored, extracted, StrictProfile)

	require.True(t, report.HasDiscrepancy)
	assert.Equal(t, "bill_number", report.Discrepancies[0].Field)
}

func TestCompare_DateCalendarEquality(t *testing.T) {
	utc := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	afternoon := time.Date(2024, 6, 1, 15, 30, 0, 0, time.UTC)

	report := Compare(
		FieldSet{Date: datePtr(utc)},
		FieldSet{Date: datePtr(afternoon)},
		StrictProfile,
	)

	assert.False(t, report.HasDiscrepancy, "same calendar day must not be flagged")
}

func TestCompare_DateMismatch(t *testing.T) {
	report := Compare(
		FieldSet{Date: datePtr(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))},
		FieldSet{Date: datePtr(time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC))},
		StrictProfile,
	)

	require.True(t, report.HasDiscrepancy)
	d := report.Discrepancies[0]
	assert.Equal(t, "date", d.Field)
	assert.Equal(t, "2024-06-01", d.Stored)
	assert.Equal(t, "2024-06-02", d.OCR)
}

func TestCompare_VendorNameFoldEquality(t *testing.T) {
	report := Compare(
		FieldSet{VendorName: strPtr("Skanda Enterprises")},
		FieldSet{VendorName: strPtr("skanda enterprises")},
		StrictProfile,
	)

	assert.False(t, report.HasDiscrepancy)
}

func TestCompare_MissingFieldsAreNotFlagged(t *testing.T) {
	stored := FieldSet{
		BillNumber: strPtr("AB-1234"),
		Amount:     f64Ptr(500),
		VendorName: strPtr("Skanda Enterprises"),
	}
	extracted := FieldSet{} // nothing extracted

	report := Compare(stored, extracted, StrictProfile)

	assert.False(t, report.HasDiscrepancy, "absence is not contradiction")
}

func TestCompare_MultipleDiscrepancies(t *testing.T) {
	stored := FieldSet{
		BillNumber: strPtr("AB-1234"),
		Amount:     f64Ptr(500),
	}
	extracted := FieldSet{
		BillNumber: strPtr("XY-9999"),
		Amount:     f64Ptr(720),
	}

	report := Compare(stored, extracted, ReviewProfile)

	require.True(t, report.HasDiscrepancy)
	assert.Len(t, report.Discrepancies, 2)
}
