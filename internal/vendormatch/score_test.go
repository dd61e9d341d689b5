package vendormatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	assert.Equal(t, 100.0, ratio("Skanda Enterprises", "skanda enterprises"))
	assert.Equal(t, 100.0, ratio("", ""))
	assert.Less(t, ratio("Skanda Enterprises", "Zeta Industrial"), 50.0)

	// Punctuation OCR noise is normalized away.
	assert.Equal(t, 100.0, ratio("Skanda, Enterprises.", "Skanda Enterprises"))
}

func TestTokenSortRatio(t *testing.T) {
	assert.Equal(t, 100.0, tokenSortRatio("Enterprises Skanda", "Skanda Enterprises"))
	assert.Greater(t, tokenSortRatio("Skanda Enterprise", "Skanda Enterprises"), 90.0)
	assert.Less(t, tokenSortRatio("Ramesh Hardware", "Skanda Enterprises"), 60.0)
}

func TestPartialRatio(t *testing.T) {
	// Shorter string aligned inside the longer one.
	assert.Equal(t, 100.0, partialRatio("Skanda", "Skanda Enterprises"))
	assert.Equal(t, 100.0, partialRatio("Skanda Enterprises", "Skanda"))
	assert.Equal(t, 0.0, partialRatio("", "Skanda"))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "ms skanda enterprises", normalize("M/s. Skanda Enterprises!"))
	assert.Equal(t, "", normalize("---"))
}
