package vendormatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var catalog = []VendorCatalogEntry{
	{ID: "v1", Name: "Skanda Enterprises"},
	{ID: "v2", Name: "Ramesh Hardware"},
	{ID: "v3", Name: "Zeta Industrial"},
}

func TestMatch_Exact(t *testing.T) {
	result := Match("Skanda Enterprises\nBill No: 42\nTotal: 500", catalog, DefaultThreshold)

	assert.Equal(t, KindExact, result.Kind)
	assert.Equal(t, "v1", result.VendorID)
	assert.Equal(t, "Skanda Enterprises", result.MatchedName)
	assert.Equal(t, 100.0, result.Score)
}

func TestMatch_ExactIsCaseInsensitive(t *testing.T) {
	result := Match("SKANDA ENTERPRISES", catalog, DefaultThreshold)

	assert.Equal(t, KindExact, result.Kind)
	assert.Equal(t, "v1", result.VendorID)
}

func TestMatch_ScrambledTokensAreFuzzy(t *testing.T) {
	// Token order is OCR noise; equality it is not.
	result := Match("Enterprises Skanda\nTotal: 500", catalog, DefaultThreshold)

	assert.Equal(t, KindFuzzy, result.Kind)
	assert.Equal(t, "v1", result.VendorID)
	assert.Greater(t, result.Score, 80.0)
}

func TestMatch_KeywordLineCandidate(t *testing.T) {
	result := Match("Receipt\nSupplier: Ramesh Hardware\nTotal: 120", catalog, DefaultThreshold)

	require.NotEqual(t, KindNoMatch, result.Kind)
	assert.Equal(t, "v2", result.VendorID)
}

func TestMatch_PartialContainment(t *testing.T) {
	shortCatalog := []VendorCatalogEntry{{ID: "v9", Name: "Skanda"}}

	result := Match("From: Skanda Enterprises Warehouse Seven", shortCatalog, DefaultThreshold)

	assert.Equal(t, KindPartial, result.Kind)
	assert.Equal(t, "v9", result.VendorID)
	assert.GreaterOrEqual(t, result.Score, 80.0)
}

func TestMatch_NoMatch(t *testing.T) {
	result := Match("Completely Different Trading House", catalog, DefaultThreshold)

	assert.Equal(t, KindNoMatch, result.Kind)
	assert.Empty(t, result.VendorID)
	assert.Less(t, result.Score, 80.0)
}

func TestMatch_EmptyInputs(t *testing.T) {
	assert.Equal(t, KindNoMatch, Match("", catalog, DefaultThreshold).Kind)
	assert.Equal(t, KindNoMatch, Match("Skanda Enterprises", nil, DefaultThreshold).Kind)
	assert.Equal(t, KindNoMatch, Match("   \n  ", catalog, DefaultThreshold).Kind)
}

func TestMatch_ThresholdFallback(t *testing.T) {
	// Threshold <= 0 uses the default instead of matching everything.
	result := Match("Completely Different Trading House", catalog, 0)
	assert.Equal(t, KindNoMatch, result.Kind)
}

func TestSimpleMatch(t *testing.T) {
	t.Run("line equality is exact", func(t *testing.T) {
		result := SimpleMatch("skanda enterprises\nTotal: 500", catalog)
		assert.Equal(t, KindExact, result.Kind)
		assert.Equal(t, "v1", result.VendorID)
		assert.Equal(t, 100.0, result.Score)
	})

	t.Run("substring is partial", func(t *testing.T) {
		result := SimpleMatch("Paid to Ramesh Hardware on Friday", catalog)
		assert.Equal(t, KindPartial, result.Kind)
		assert.Equal(t, "v2", result.VendorID)
		assert.Equal(t, 90.0, result.Score)
	})

	t.Run("no match", func(t *testing.T) {
		result := SimpleMatch("Unknown Shop", catalog)
		assert.Equal(t, KindNoMatch, result.Kind)
	})
}
