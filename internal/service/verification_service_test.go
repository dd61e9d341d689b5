package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skandahq/be-bills/internal/errors"
	"github.com/skandahq/be-bills/internal/repository"
)

func TestRecognizedText_UsesStoredTextEvenWithImage(t *testing.T) {
	// Re-verification reads the text captured at upload. The image on file
	// must not trigger a new engine pass; the report has to be reproducible
	// from stored state alone.
	text := "Bill No: XY-100\nTotal Rs 500.00"
	image := "a1b2c3.png"
	bill := &repository.Bill{
		ID:            "b1",
		ImageFilename: &image,
		ExtractedText: &text,
	}

	s := &VerificationService{}
	got, err := s.recognizedText(bill)
	require.NoError(t, err)
	assert.Equal(t, text, got)
}

func TestRecognizedText_NoStoredText(t *testing.T) {
	empty := ""
	image := "a1b2c3.png"
	tests := []struct {
		name string
		bill *repository.Bill
	}{
		{"nil text", &repository.Bill{ID: "b1", ImageFilename: &image}},
		{"empty text", &repository.Bill{ID: "b1", ImageFilename: &image, ExtractedText: &empty}},
	}

	s := &VerificationService{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.recognizedText(tt.bill)
			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeInvalidInput, errors.Code(err))
		})
	}
}
