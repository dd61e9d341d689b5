// Package ocr extracts structured bill fields from raw OCR text.
//
// Extraction is best-effort: every field is optional and a miss is data, not
// an error. All functions are pure; identical text always yields identical
// results.
package ocr

import "time"

// RawResult is the output of one OCR engine invocation over an image.
// A failed engine call is reported through Err with empty text and zero
// confidence; it is a degraded result, not an error, so manual entry stays
// possible.
type RawResult struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"` // 0-100
	Err        string  `json:"error,omitempty"`
}

// ParsedBillFields holds the candidate values extracted from OCR text.
// Nil means the field was not found.
type ParsedBillFields struct {
	BillNumber *string    `json:"bill_number,omitempty"`
	Amount     *float64   `json:"amount,omitempty"`
	Date       *time.Time `json:"date,omitempty"`
	VendorName *string    `json:"vendor_name,omitempty"`
}
