package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/solterra/solterra-api/internal/models"
	"github.com/solterra/solterra-api/internal/services"
	"github.com/solterra/solterra-api/internal/storage"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
	storage        *storage.LocalStorage
}

func NewPaymentHandler(paymentService *services.PaymentService, store *storage.LocalStorage) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, storage: store}
}

// @Summary List Reservation Transactions
// @Description Get the payment transactions registered against a reservation
// @Tags Payments
// @Accept json
// @Produce json
// @Param reservation_id path int true "Reservation ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /reservations/{reservation_id}/transactions [get]
func (h *PaymentHandler) IndexByReservation(c *gin.Context) {
	reservationID, _ := strconv.ParseUint(c.Param("reservation_id"), 10, 32)
	transactions, err := h.paymentService.FindTransactionsByReservation(c.Request.Context(), uint(reservationID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []models.PaymentTransactionResponse
	for _, t := range transactions {
		responses = append(responses, t.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{"transactions": responses})
}

// @Summary Get Transaction
// @Description Get a payment transaction by ID
// @Tags Payments
// @Accept json
// @Produce json
// @Param transaction_id path int true "Transaction ID"
// @Success 200 {object} models.PaymentTransactionResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /transactions/{transaction_id} [get]
func (h *PaymentHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("transaction_id"), 10, 32)
	txn, err := h.paymentService.FindTransactionByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Transacción no encontrada"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": txn.ToResponse()})
}

type AllocationRequest struct {
	PaymentID uint    `json:"payment_id" binding:"required"`
	Amount    float64 `json:"amount" binding:"required"`
}

type RegisterTransactionRequest struct {
	Amount      float64             `json:"amount" binding:"required"`
	Method      string              `json:"method" binding:"required"`
	Reference   *string             `json:"reference"`
	Allocations []AllocationRequest `json:"allocations" binding:"required"`
}

// @Summary Register Transaction
// @Description Register a payment against a reservation, allocated across installments
// @Tags Payments
// @Accept json
// @Produce json
// @Param reservation_id path int true "Reservation ID"
// @Param request body RegisterTransactionRequest true "Transaction Data"
// @Success 201 {object} models.PaymentTransactionResponse
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /reservations/{reservation_id}/transactions [post]
func (h *PaymentHandler) Register(c *gin.Context) {
	reservationID, _ := strconv.ParseUint(c.Param("reservation_id"), 10, 32)
	var req RegisterTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	allocations := make([]services.AllocationInput, 0, len(req.Allocations))
	for _, a := range req.Allocations {
		allocations = append(allocations, services.AllocationInput{PaymentID: a.PaymentID, Amount: a.Amount})
	}

	txn, err := h.paymentService.RegisterTransaction(c.Request.Context(), services.TransactionInput{
		ReservationID: uint(reservationID),
		Amount:        req.Amount,
		Method:        req.Method,
		Reference:     req.Reference,
		Allocations:   allocations,
	}, auditContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": txn.ToResponse(), "message": "Pago registrado"})
}

// @Summary Delete Transaction
// @Description Reverse a payment transaction on an issued reservation (Admin)
// @Tags Payments
// @Accept json
// @Produce json
// @Param transaction_id path int true "Transaction ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /transactions/{transaction_id} [delete]
func (h *PaymentHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("transaction_id"), 10, 32)
	if err := h.paymentService.DeleteTransaction(c.Request.Context(), uint(id), auditContext(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Transacción eliminada"})
}

// @Summary Upload Voucher
// @Description Attach a payment voucher image/pdf to a transaction
// @Tags Payments
// @Accept multipart/form-data
// @Produce json
// @Param transaction_id path int true "Transaction ID"
// @Param voucher formData file true "Voucher File"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /transactions/{transaction_id}/voucher [post]
func (h *PaymentHandler) UploadVoucher(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("transaction_id"), 10, 32)

	file, header, err := c.Request.FormFile("voucher")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Archivo requerido"})
		return
	}
	defer file.Close()

	if c.Request.ContentLength > 0 && c.Request.ContentLength > storage.MaxFileSize() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Archivo demasiado grande"})
		return
	}

	if !storage.IsValidContentType(header.Header.Get("Content-Type")) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tipo de archivo inválido"})
		return
	}

	if err := h.paymentService.AttachVoucher(c.Request.Context(), uint(id), file, header, auditContext(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comprobante subido exitosamente"})
}

// @Summary Download Voucher
// @Description Download the voucher attached to a transaction
// @Tags Payments
// @Produce application/octet-stream
// @Param transaction_id path int true "Transaction ID"
// @Success 200 {file} file "voucher"
// @Security BearerAuth
// @Router /transactions/{transaction_id}/voucher [get]
func (h *PaymentHandler) DownloadVoucher(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("transaction_id"), 10, 32)
	path, err := h.paymentService.VoucherPath(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comprobante no encontrado"})
		return
	}

	c.File(h.storage.GetFullPath(path))
}

// @Summary Overdue Installments
// @Description List installments past their due date on issued reservations
// @Tags Payments
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /payments/overdue [get]
func (h *PaymentHandler) Overdue(c *gin.Context) {
	payments, err := h.paymentService.FindOverdue(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []models.PaymentResponse
	for _, p := range payments {
		responses = append(responses, p.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{"payments": responses})
}
