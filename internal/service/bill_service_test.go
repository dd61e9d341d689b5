package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skandahq/be-bills/internal/ocr"
	"github.com/skandahq/be-bills/internal/repository"
	"github.com/skandahq/be-bills/internal/vendormatch"
)

func TestUploadPreview_CleanExtraction(t *testing.T) {
	vendorID := "v1"
	billDate := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	bill := &repository.Bill{
		BillNumber: "XY-100",
		Amount:     500,
		BillDate:   &billDate,
		VendorID:   &vendorID,
	}
	catalog := []vendormatch.VendorCatalogEntry{
		{ID: "v1", Name: "Skanda Enterprises"},
		{ID: "v2", Name: "Ramesh Hardware"},
	}
	number := "XY-100"
	amount := 500.0
	vendor := "Skanda Enterprises"
	parsed := ocr.ParsedBillFields{
		BillNumber: &number,
		Amount:     &amount,
		Date:       &billDate,
		VendorName: &vendor,
	}

	report := uploadPreview(bill, catalog, parsed)
	assert.False(t, report.HasDiscrepancy)
	assert.Empty(t, report.Discrepancies)
}

func TestUploadPreview_FlagsAmountMismatchStrictly(t *testing.T) {
	bill := &repository.Bill{BillNumber: "XY-100", Amount: 500}
	number := "XY-100"
	amount := 500.02
	parsed := ocr.ParsedBillFields{BillNumber: &number, Amount: &amount}

	report := uploadPreview(bill, nil, parsed)
	require.True(t, report.HasDiscrepancy)
	require.Len(t, report.Discrepancies, 1)
	assert.Equal(t, "amount", report.Discrepancies[0].Field)
}

func TestUploadPreview_UnknownVendorNotCompared(t *testing.T) {
	// A vendor ID missing from the snapshot leaves the stored vendor name
	// unresolved; an unresolvable field cannot be contradicted.
	vendorID := "v9"
	bill := &repository.Bill{BillNumber: "XY-100", Amount: 500, VendorID: &vendorID}
	catalog := []vendormatch.VendorCatalogEntry{{ID: "v1", Name: "Skanda Enterprises"}}
	number := "XY-100"
	amount := 500.0
	vendor := "Zeta Industrial"
	parsed := ocr.ParsedBillFields{BillNumber: &number, Amount: &amount, VendorName: &vendor}

	report := uploadPreview(bill, catalog, parsed)
	assert.False(t, report.HasDiscrepancy)
}
