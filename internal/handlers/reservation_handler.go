package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/solterra/solterra-api/internal/models"
	"github.com/solterra/solterra-api/internal/services"
)

type ReservationHandler struct {
	reservationService *services.ReservationService
	paymentService     *services.PaymentService
	documentService    *services.DocumentService
}

func NewReservationHandler(reservationService *services.ReservationService, paymentService *services.PaymentService, documentService *services.DocumentService) *ReservationHandler {
	return &ReservationHandler{
		reservationService: reservationService,
		paymentService:     paymentService,
		documentService:    documentService,
	}
}

// @Summary List Reservations
// @Description Get a paginated list of reservations
// @Tags Reservations
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 100)" default(20)
// @Param search query string false "Search by reference or client"
// @Param status query string false "Filter by status"
// @Param client_id query int false "Filter by client"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /reservations [get]
func (h *ReservationHandler) Index(c *gin.Context) {
	query := parseListQuery(c)
	query.Filters["status"] = c.Query("status")
	query.Filters["client_id"] = c.Query("client_id")

	reservations, total, err := h.reservationService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []models.ReservationResponse
	for _, r := range reservations {
		responses = append(responses, r.ToResponse())
	}

	c.JSON(http.StatusOK, paginated(responses, query, total))
}

// @Summary Get Reservation
// @Description Get a reservation by ID
// @Tags Reservations
// @Accept json
// @Produce json
// @Param reservation_id path int true "Reservation ID"
// @Success 200 {object} models.ReservationResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /reservations/{reservation_id} [get]
func (h *ReservationHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("reservation_id"), 10, 32)
	reservation, err := h.reservationService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reserva no encontrada"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservation": reservation.ToResponse()})
}

type CreateReservationRequest struct {
	QuotationID   uint             `json:"quotation_id" binding:"required"`
	PaymentMethod string           `json:"payment_method" binding:"required"`
	ExchangeRate  *float64         `json:"exchange_rate"`
	CoOwners      []models.CoOwner `json:"co_owners"`
}

// @Summary Create Reservation
// @Description Reserve a lot from an accepted quotation; generates the installment schedule
// @Tags Reservations
// @Accept json
// @Produce json
// @Param request body CreateReservationRequest true "Reservation Data"
// @Success 201 {object} models.ReservationResponse
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /reservations [post]
func (h *ReservationHandler) Create(c *gin.Context) {
	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reservation, err := h.reservationService.Create(c.Request.Context(), services.ReservationInput{
		QuotationID:   req.QuotationID,
		PaymentMethod: req.PaymentMethod,
		ExchangeRate:  req.ExchangeRate,
		CoOwners:      req.CoOwners,
	}, auditContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"reservation": reservation.ToResponse()})
}

type VoidReservationRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// @Summary Void Reservation
// @Description Void an issued reservation and release its lot
// @Tags Reservations
// @Accept json
// @Produce json
// @Param reservation_id path int true "Reservation ID"
// @Param request body VoidReservationRequest true "Void Reason"
// @Success 200 {object} models.ReservationResponse
// @Security BearerAuth
// @Router /reservations/{reservation_id}/void [post]
func (h *ReservationHandler) Void(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("reservation_id"), 10, 32)
	var req VoidReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reason es requerido"})
		return
	}

	reservation, err := h.reservationService.Void(c.Request.Context(), uint(id), req.Reason, auditContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reservation": reservation.ToResponse(), "message": "Reserva anulada"})
}

// @Summary Reservation Schedule
// @Description Get the installment schedule for a reservation
// @Tags Reservations
// @Accept json
// @Produce json
// @Param reservation_id path int true "Reservation ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /reservations/{reservation_id}/schedule [get]
func (h *ReservationHandler) Schedule(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("reservation_id"), 10, 32)
	payments, err := h.paymentService.FindByReservation(c.Request.Context(), uint(id))
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

// @Summary Reservation Quota Status
// @Description Get paid/unpaid installment counters and the remaining balance
// @Tags Reservations
// @Accept json
// @Produce json
// @Param reservation_id path int true "Reservation ID"
// @Success 200 {object} models.QuotaStatus
// @Security BearerAuth
// @Router /reservations/{reservation_id}/quota_status [get]
func (h *ReservationHandler) QuotaStatus(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("reservation_id"), 10, 32)
	status, err := h.paymentService.QuotaStatus(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// @Summary Reservation Statement PDF
// @Description Download the account statement for a reservation as PDF
// @Tags Reservations
// @Produce application/pdf
// @Param reservation_id path int true "Reservation ID"
// @Success 200 {file} file "statement.pdf"
// @Security BearerAuth
// @Router /reservations/{reservation_id}/statement_pdf [get]
func (h *ReservationHandler) StatementPDF(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("reservation_id"), 10, 32)
	buf, filename, err := h.documentService.GenerateReservationStatementPDF(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
