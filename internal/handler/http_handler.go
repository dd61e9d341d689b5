package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/skandahq/be-bills/internal/errors"
	"github.com/skandahq/be-bills/internal/logger"
	"github.com/skandahq/be-bills/internal/service"
	"github.com/skandahq/be-bills/internal/verification"
)

// maxUploadBytes caps bill image uploads at 10 MiB.
const maxUploadBytes = 10 << 20

// HTTPHandler handles HTTP requests
type HTTPHandler struct {
	bills        *service.BillService
	verification *service.VerificationService
	credits      *service.CreditService
	vendors      *service.VendorService
	log          *logger.Logger
}

// NewHTTPHandler creates a new HTTP handler
func NewHTTPHandler(
	bills *service.BillService,
	verifications *service.VerificationService,
	credits *service.CreditService,
	vendors *service.VendorService,
	log *logger.Logger,
) *HTTPHandler {
	return &HTTPHandler{
		bills:        bills,
		verification: verifications,
		credits:      credits,
		vendors:      vendors,
		log:          log,
	}
}

// CreateBill handles create bill HTTP requests
func (h *HTTPHandler) CreateBill(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BillNumber    string  `json:"bill_number"`
		VendorID      *string `json:"vendor_id"`
		BillDate      *string `json:"bill_date"`
		Amount        float64 `json:"amount"`
		PaymentMethod string  `json:"payment_method"`
		CreatedBy     string  `json:"created_by"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.InvalidInput("body", "invalid request body"))
		return
	}

	bill, err := h.bills.CreateBill(r.Context(), &service.CreateBillRequest{
		BillNumber:    req.BillNumber,
		VendorID:      req.VendorID,
		BillDate:      req.BillDate,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		CreatedBy:     req.CreatedBy,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, bill)
}

// GetBill handles get bill HTTP requests
func (h *HTTPHandler) GetBill(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		respondError(w, errors.InvalidInput("id", "bill ID is required"))
		return
	}

	bill, err := h.bills.GetBill(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, bill)
}

// GetBillByNumber handles bill lookup by number HTTP requests
func (h *HTTPHandler) GetBillByNumber(w http.ResponseWriter, r *http.Request) {
	billNumber := r.URL.Query().Get("bill_number")
	if billNumber == "" {
		respondError(w, errors.InvalidInput("bill_number", "bill number is required"))
		return
	}

	bill, err := h.bills.GetBillByNumber(r.Context(), billNumber)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, bill)
}

// ListBills handles list bills HTTP requests
func (h *HTTPHandler) ListBills(w http.ResponseWriter, r *http.Request) {
	vendorID := optionalQuery(r, "vendor_id")
	status := optionalQuery(r, "status")

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 50
	}

	bills, total, err := h.bills.ListBills(r.Context(), vendorID, status, page, pageSize)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"bills":    bills,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
}

// UpdateBill handles update bill HTTP requests
func (h *HTTPHandler) UpdateBill(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID            string  `json:"id"`
		BillNumber    string  `json:"bill_number"`
		VendorID      *string `json:"vendor_id"`
		BillDate      *string `json:"bill_date"`
		Amount        float64 `json:"amount"`
		PaymentMethod string  `json:"payment_method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.InvalidInput("body", "invalid request body"))
		return
	}

	bill, err := h.bills.UpdateBill(r.Context(), &service.UpdateBillRequest{
		ID:            req.ID,
		BillNumber:    req.BillNumber,
		VendorID:      req.VendorID,
		BillDate:      req.BillDate,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, bill)
}

// DeleteBill handles delete bill HTTP requests
func (h *HTTPHandler) DeleteBill(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.InvalidInput("body", "invalid request body"))
		return
	}

	if err := h.bills.DeleteBill(r.Context(), req.ID); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// UploadBillImage handles bill image upload HTTP requests. The request is
// multipart form data with a bill_id field and an image file.
func (h *HTTPHandler) UploadBillImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, errors.InvalidInput("image", "invalid multipart form or file too large"))
		return
	}

	billID := r.FormValue("bill_id")
	if billID == "" {
		respondError(w, errors.InvalidInput("bill_id", "bill ID is required"))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, errors.InvalidInput("image", "image file is required"))
		return
	}
	defer file.Close()

	result, err := h.bills.UploadBillImage(r.Context(), billID, header.Filename, file, r.FormValue("uploaded_by"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// VerifyBill handles initial verification HTTP requests
func (h *HTTPHandler) VerifyBill(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BillID        string  `json:"bill_id"`
		BillNumber    string  `json:"bill_number"`
		VendorID      *string `json:"vendor_id"`
		BillDate      *string `json:"bill_date"`
		Amount        float64 `json:"amount"`
		PaymentMethod string  `json:"payment_method"`
		ReviewerID    string  `json:"reviewer_id"`
		Remarks       *string `json:"remarks"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.InvalidInput("body", "invalid request body"))
		return
	}

	bill, err := h.verification.VerifyBill(r.Context(), &service.VerifyBillRequest{
		BillID:        req.BillID,
		BillNumber:    req.BillNumber,
		VendorID:      req.VendorID,
		BillDate:      req.BillDate,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		ReviewerID:    req.ReviewerID,
		Remarks:       req.Remarks,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, bill)
}

// ReverifyBill handles re-verification HTTP requests
func (h *HTTPHandler) ReverifyBill(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BillID     string `json:"bill_id"`
		ReviewerID string `json:"reviewer_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.InvalidInput("body", "invalid request body"))
		return
	}

	bill, report, err := h.verification.ReverifyBill(r.Context(), req.BillID, req.ReviewerID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"bill":   bill,
		"report": report,
	})
}

// AdjudicateBill handles adjudication HTTP requests
func (h *HTTPHandler) AdjudicateBill(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BillID        string   `json:"bill_id"`
		Action        string   `json:"action"`
		BillNumber    *string  `json:"bill_number"`
		VendorID      *string  `json:"vendor_id"`
		BillDate      *string  `json:"bill_date"`
		Amount        *float64 `json:"amount"`
		PaymentMethod *string  `json:"payment_method"`
		ReviewerID    string   `json:"reviewer_id"`
		Remarks       *string  `json:"remarks"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.InvalidInput("body", "invalid request body"))
		return
	}

	bill, err := h.verification.AdjudicateBill(r.Context(), &service.AdjudicateBillRequest{
		BillID:        req.BillID,
		Action:        verification.Action(req.Action),
		BillNumber:    req.BillNumber,
		VendorID:      req.VendorID,
		BillDate:      req.BillDate,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		ReviewerID:    req.ReviewerID,
		Remarks:       req.Remarks,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, bill)
}

// GetAuditTrail handles audit trail HTTP requests
func (h *HTTPHandler) GetAuditTrail(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		respondError(w, errors.InvalidInput("id", "bill ID is required"))
		return
	}

	entries, err := h.verification.GetAuditTrail(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"bill_id": id,
		"entries": entries,
	})
}

// GetVendorLinkTrail handles vendor link trail HTTP requests
func (h *HTTPHandler) GetVendorLinkTrail(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		respondError(w, errors.InvalidInput("id", "bill ID is required"))
		return
	}

	links, err := h.bills.VendorLinkTrail(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"bill_id": id,
		"links":   links,
	})
}

// RecordCredit handles record credit HTTP requests
func (h *HTTPHandler) RecordCredit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BillID        string  `json:"bill_id"`
		Amount        float64 `json:"amount"`
		PaymentDate   string  `json:"payment_date"`
		PaymentMethod string  `json:"payment_method"`
		Notes         *string `json:"notes"`
		CreatedBy     string  `json:"created_by"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.InvalidInput("body", "invalid request body"))
		return
	}

	credit, err := h.credits.RecordCredit(r.Context(), &service.RecordCreditRequest{
		BillID:        req.BillID,
		Amount:        req.Amount,
		PaymentDate:   req.PaymentDate,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
		CreatedBy:     req.CreatedBy,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, credit)
}

// ListCredits handles list credits HTTP requests
func (h *HTTPHandler) ListCredits(w http.ResponseWriter, r *http.Request) {
	billID := r.URL.Query().Get("bill_id")
	if billID == "" {
		respondError(w, errors.InvalidInput("bill_id", "bill ID is required"))
		return
	}

	credits, err := h.credits.ListCredits(r.Context(), billID)
	if err != nil {
		respondError(w, err)
		return
	}

	balance, err := h.credits.OutstandingBalance(r.Context(), billID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"bill_id":             billID,
		"credits":             credits,
		"outstanding_balance": balance,
	})
}

// CreateVendor handles create vendor HTTP requests
func (h *HTTPHandler) CreateVendor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string  `json:"name"`
		Contact   *string `json:"contact"`
		Email     *string `json:"email"`
		Address   *string `json:"address"`
		GSTNumber *string `json:"gst_number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.InvalidInput("body", "invalid request body"))
		return
	}

	vendor, err := h.vendors.CreateVendor(r.Context(), &service.CreateVendorRequest{
		Name:      req.Name,
		Contact:   req.Contact,
		Email:     req.Email,
		Address:   req.Address,
		GSTNumber: req.GSTNumber,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, vendor)
}

// GetVendor handles get vendor HTTP requests
func (h *HTTPHandler) GetVendor(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		respondError(w, errors.InvalidInput("id", "vendor ID is required"))
		return
	}

	vendor, err := h.vendors.GetVendor(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, vendor)
}

// ListVendors handles list vendors HTTP requests
func (h *HTTPHandler) ListVendors(w http.ResponseWriter, r *http.Request) {
	vendors, err := h.vendors.ListVendors(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"vendors": vendors})
}

// DashboardSummary handles dashboard summary HTTP requests
func (h *HTTPHandler) DashboardSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.credits.Summary(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	outstanding := summary.TotalBillAmount - summary.TotalCollected
	collectionRate := 0.0
	if summary.TotalBillAmount > 0 {
		collectionRate = summary.TotalCollected / summary.TotalBillAmount * 100
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"total_bills":       summary.TotalBills,
		"total_bill_amount": summary.TotalBillAmount,
		"total_collected":   summary.TotalCollected,
		"outstanding":       outstanding,
		"collection_rate":   collectionRate,
		"pending_bills":     summary.PendingBills,
	})
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, err error) {
	respondJSON(w, errors.HTTPStatus(err), map[string]interface{}{
		"error": err.Error(),
		"code":  string(errors.Code(err)),
	})
}

func optionalQuery(r *http.Request, key string) *string {
	if v := r.URL.Query().Get(key); v != "" {
		return &v
	}
	return nil
}
