package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetBillByNumber_RequiresBillNumber(t *testing.T) {
	h := &HTTPHandler{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/bills/by-number", nil)
	rec := httptest.NewRecorder()

	h.GetBillByNumber(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INVALID_INPUT", body["code"])
}

func TestGetVendorLinkTrail_RequiresBillID(t *testing.T) {
	h := &HTTPHandler{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/bills/vendor-links", nil)
	rec := httptest.NewRecorder()

	h.GetVendorLinkTrail(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INVALID_INPUT", body["code"])
}
