package verification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skandahq/be-bills/internal/ocr"
	"github.com/skandahq/be-bills/internal/vendormatch"
)

// Exercises the full pipeline on one realistic bill: raw text in, extracted
// fields and a clean reconciliation out.
func TestPipeline_ExtractMatchReconcile(t *testing.T) {
	text := "ABC Traders\nBill No: XY-100\nDate: 01-06-2024\nTotal Rs 500.00"
	catalog := []vendormatch.VendorCatalogEntry{
		{ID: "v1", Name: "ABC Traders"},
		{ID: "v2", Name: "Skanda Enterprises"},
	}

	knownNames := []string{"ABC Traders", "Skanda Enterprises"}
	parsed := ocr.ExtractAll(text, knownNames)

	require.NotNil(t, parsed.BillNumber)
	assert.Equal(t, "XY-100", *parsed.BillNumber)
	require.NotNil(t, parsed.Amount)
	assert.InDelta(t, 500.00, *parsed.Amount, 0.001)
	require.NotNil(t, parsed.Date)
	assert.Equal(t, "2024-06-01", parsed.Date.Format("2006-01-02"))
	require.NotNil(t, parsed.VendorName)
	assert.Equal(t, "ABC Traders", *parsed.VendorName)

	match := vendormatch.Match(text, catalog, vendormatch.DefaultThreshold)
	assert.Equal(t, vendormatch.KindExact, match.Kind)
	assert.Equal(t, "v1", match.VendorID)
	assert.Equal(t, 100.0, match.Score)

	// A stored record agreeing with the extraction reconciles clean.
	storedDate := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	stored := FieldSet{
		BillNumber: strPtr("xy-100"),
		Amount:     f64Ptr(500.00),
		Date:       &storedDate,
		VendorName: strPtr("ABC Traders"),
	}

	report := Compare(stored, FromParsed(parsed), ReviewProfile)
	assert.False(t, report.HasDiscrepancy)
}

// A stored record typed from the wrong bill is flagged on re-verification.
func TestPipeline_MistypedRecordFlagged(t *testing.T) {
	text := "ABC Traders\nBill No: XY-100\nTotal Rs 500.00"

	parsed := ocr.ExtractAll(text, nil)
	stored := FieldSet{
		BillNumber: strPtr("XY-100"),
		Amount:     f64Ptr(550.00),
	}

	report := Compare(stored, FromParsed(parsed), ReviewProfile)

	require.True(t, report.HasDiscrepancy)
	require.Len(t, report.Discrepancies, 1)
	assert.Equal(t, "amount", report.Discrepancies[0].Field)
	assert.InDelta(t, 50.0, *report.Discrepancies[0].Difference, 0.0001)
}
