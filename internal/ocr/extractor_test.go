package ocr

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractBillNumber(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{"labeled bill no", "Bill No: AB1234", "AB1234", true},
		{"labeled with hash", "Bill #: 778/22", "778/22", true},
		{"invoice number", "Invoice Number INV-2024-001", "INV-2024-001", true},
		{"lowercase input uppercased", "bill no: ab1234", "AB1234", true},
		{"standalone token", "XY-100\nsome other line", "XY-100", true},
		{"no candidate", "just a plain receipt", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractBillNumber(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractAmount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
		ok   bool
	}{
		{"labeled total", "Total: 1234.50", 1234.50, true},
		{"currency prefix", "Rs. 250.00", 250, true},
		{"commas stripped", "Amount Due: 1,234.50", 1234.50, true},
		{"max of candidates", "Subtotal: 100\nTax: 150\nTotal: 250", 250, true},
		{"number before label", "500.00 TOTAL", 500, true},
		{"rupee symbol", "₹ 99.99", 99.99, true},
		{"no amount", "no figures here", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractAmount(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestExtractAmount_DateDoesNotOutrankTotal(t *testing.T) {
	got, ok := ExtractAmount("Date: 01-06-2024\nTotal Rs 500.00")
	require.True(t, ok)
	assert.InDelta(t, 500.00, got, 0.001)
}

func TestExtractDate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want time.Time
		ok   bool
	}{
		{"day month year slash", "15/03/2024", date(2024, 3, 15), true},
		{"two digit year", "15/03/24", date(2024, 3, 15), true},
		{"day month year dash", "01-06-2024", date(2024, 6, 1), true},
		{"iso order", "Date 2024-03-15", date(2024, 3, 15), true},
		{"month name", "15 March 2024", date(2024, 3, 15), true},
		{"month name abbreviated", "3 Jan 24", date(2024, 1, 3), true},
		{"invalid skipped then valid", "99/99/2024 then 15/03/2024", date(2024, 3, 15), true},
		{"month thirteen rejected", "15/13/2024", time.Time{}, false},
		{"day thirty two rejected", "32/01/2024", time.Time{}, false},
		{"no date", "no dates at all", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractDate(tt.text)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, got.Equal(tt.want), "got %s want %s", got, tt.want)
			}
		})
	}
}

func TestExtractVendorName(t *testing.T) {
	t.Run("corporate suffix wins", func(t *testing.T) {
		got, ok := ExtractVendorName("Sharma Traders Pvt Ltd\nTotal: 500", nil)
		require.True(t, ok)
		assert.Equal(t, "Sharma Traders Pvt Ltd", got)
	})

	t.Run("known name preferred over raw line", func(t *testing.T) {
		got, ok := ExtractVendorName("M/s Skanda Enterprises Store\nTotal: 500", []string{"Skanda Enterprises"})
		require.True(t, ok)
		assert.Equal(t, "Skanda Enterprises", got)
	})

	t.Run("skip words ignored", func(t *testing.T) {
		got, ok := ExtractVendorName("TAX INVOICE\nGST Statement\nRamesh Hardware\nTotal: 500", nil)
		require.True(t, ok)
		assert.Equal(t, "Ramesh Hardware", got)
	})

	t.Run("digit lines skipped", func(t *testing.T) {
		_, ok := ExtractVendorName("12345 67890\n99 Problems", nil)
		assert.False(t, ok)
	})

	t.Run("only first ten lines scanned", func(t *testing.T) {
		text := "\n\n\n\n\n\n\n\n\n\nRamesh Hardware"
		_, ok := ExtractVendorName(text, nil)
		assert.False(t, ok)
	})
}

func TestExtractAll(t *testing.T) {
	text := "ABC Traders\nBill No: XY-100\nDate: 01-06-2024\nTotal Rs 500.00"

	fields := ExtractAll(text, []string{"ABC Traders"})

	require.NotNil(t, fields.BillNumber)
	assert.Equal(t, "XY-100", *fields.BillNumber)

	require.NotNil(t, fields.Amount)
	assert.InDelta(t, 500.00, *fields.Amount, 0.001)

	require.NotNil(t, fields.Date)
	assert.True(t, fields.Date.Equal(date(2024, 6, 1)))

	require.NotNil(t, fields.VendorName)
	assert.Equal(t, "ABC Traders", *fields.VendorName)
}

func TestExtractAll_PartialResult(t *testing.T) {
	fields := ExtractAll("1234 5678\n9012", nil)

	assert.Nil(t, fields.BillNumber)
	assert.Nil(t, fields.Amount)
	assert.Nil(t, fields.Date)
	assert.Nil(t, fields.VendorName)
}

func TestExtractAll_Deterministic(t *testing.T) {
	text := "ABC Traders\nBill No: XY-100\nTotal: 99.50"

	first := ExtractAll(text, nil)
	second := ExtractAll(text, nil)

	assert.Equal(t, first, second)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
