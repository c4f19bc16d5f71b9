package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/solterra/solterra-api/internal/middleware"
	"github.com/solterra/solterra-api/internal/models"
	"github.com/solterra/solterra-api/internal/services"
)

type QuotationHandler struct {
	quotationService *services.QuotationService
	documentService  *services.DocumentService
}

func NewQuotationHandler(quotationService *services.QuotationService, documentService *services.DocumentService) *QuotationHandler {
	return &QuotationHandler{
		quotationService: quotationService,
		documentService:  documentService,
	}
}

// @Summary List Quotations
// @Description Get a paginated list of quotations
// @Tags Quotations
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 100)" default(20)
// @Param search query string false "Search by code or client"
// @Param status query string false "Filter by status"
// @Param lead_id query int false "Filter by lead"
// @Param advisor_id query int false "Filter by advisor"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /quotations [get]
func (h *QuotationHandler) Index(c *gin.Context) {
	query := parseListQuery(c)
	query.Filters["status"] = c.Query("status")
	query.Filters["lead_id"] = c.Query("lead_id")
	query.Filters["advisor_id"] = c.Query("advisor_id")

	quotations, total, err := h.quotationService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []models.QuotationResponse
	for _, q := range quotations {
		responses = append(responses, q.ToResponse())
	}

	c.JSON(http.StatusOK, paginated(responses, query, total))
}

// @Summary List Quotations by Lead
// @Description Get every quotation issued for a lead
// @Tags Quotations
// @Produce json
// @Param lead_id path int true "Lead ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /leads/{lead_id}/quotations [get]
func (h *QuotationHandler) IndexByLead(c *gin.Context) {
	leadID, _ := strconv.ParseUint(c.Param("lead_id"), 10, 32)
	quotations, err := h.quotationService.FindByLead(c.Request.Context(), uint(leadID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []models.QuotationResponse
	for _, q := range quotations {
		responses = append(responses, q.ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"quotations": responses})
}

// @Summary Get Quotation
// @Description Get a quotation by ID
// @Tags Quotations
// @Accept json
// @Produce json
// @Param quotation_id path int true "Quotation ID"
// @Success 200 {object} models.QuotationResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /quotations/{quotation_id} [get]
func (h *QuotationHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("quotation_id"), 10, 32)
	quotation, err := h.quotationService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cotización no encontrada"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"quotation": quotation.ToResponse()})
}

type CreateQuotationRequest struct {
	LeadID         uint     `json:"lead_id" binding:"required"`
	LotID          uint     `json:"lot_id" binding:"required"`
	AdvisorID      *uint    `json:"advisor_id"`
	DiscountAmount float64  `json:"discount_amount"`
	DownPaymentPct *float64 `json:"down_payment_pct"`
	MonthsFinanced *int     `json:"months_financed"`
	ExchangeRate   *float64 `json:"exchange_rate"`
}

// @Summary Create Quotation
// @Description Issue a quotation for a lead over an available lot
// @Tags Quotations
// @Accept json
// @Produce json
// @Param request body CreateQuotationRequest true "Quotation Data"
// @Success 201 {object} models.QuotationResponse
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /quotations [post]
func (h *QuotationHandler) Create(c *gin.Context) {
	var req CreateQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Advisors quote under their own name unless stated otherwise
	if req.AdvisorID == nil {
		if userID := middleware.GetUserID(c); userID > 0 {
			req.AdvisorID = &userID
		}
	}

	quotation, err := h.quotationService.Create(c.Request.Context(), services.QuotationInput{
		LeadID:         req.LeadID,
		LotID:          req.LotID,
		AdvisorID:      req.AdvisorID,
		DiscountAmount: req.DiscountAmount,
		DownPaymentPct: req.DownPaymentPct,
		MonthsFinanced: req.MonthsFinanced,
		ExchangeRate:   req.ExchangeRate,
	}, auditContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"quotation": quotation.ToResponse()})
}

type UpdateQuotationRequest struct {
	DiscountAmount *float64   `json:"discount_amount"`
	DownPaymentPct *float64   `json:"down_payment_pct"`
	MonthsFinanced *int       `json:"months_financed"`
	QuotationDate  *time.Time `json:"quotation_date"`
	AdvisorID      *uint      `json:"advisor_id"`
}

// @Summary Update Quotation
// @Description Update financing terms of an issued quotation
// @Tags Quotations
// @Accept json
// @Produce json
// @Param quotation_id path int true "Quotation ID"
// @Param request body UpdateQuotationRequest true "Quotation Fields"
// @Success 200 {object} models.QuotationResponse
// @Security BearerAuth
// @Router /quotations/{quotation_id} [put]
func (h *QuotationHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("quotation_id"), 10, 32)
	var req UpdateQuotationRequest
	if err := BindNestedOrFlat(c, "quotation", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quotation, err := h.quotationService.Update(c.Request.Context(), uint(id), services.QuotationPatch{
		DiscountAmount: req.DiscountAmount,
		DownPaymentPct: req.DownPaymentPct,
		MonthsFinanced: req.MonthsFinanced,
		QuotationDate:  req.QuotationDate,
		AdvisorID:      req.AdvisorID,
	}, auditContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"quotation": quotation.ToResponse()})
}

// @Summary Accept Quotation
// @Description Mark a quotation as accepted by the client
// @Tags Quotations
// @Accept json
// @Produce json
// @Param quotation_id path int true "Quotation ID"
// @Success 200 {object} models.QuotationResponse
// @Security BearerAuth
// @Router /quotations/{quotation_id}/accept [post]
func (h *QuotationHandler) Accept(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("quotation_id"), 10, 32)
	quotation, err := h.quotationService.Accept(c.Request.Context(), uint(id), auditContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quotation": quotation.ToResponse(), "message": "Cotización aceptada"})
}

// @Summary Cancel Quotation
// @Description Cancel an issued quotation and release its lot
// @Tags Quotations
// @Accept json
// @Produce json
// @Param quotation_id path int true "Quotation ID"
// @Success 200 {object} models.QuotationResponse
// @Security BearerAuth
// @Router /quotations/{quotation_id}/cancel [post]
func (h *QuotationHandler) Cancel(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("quotation_id"), 10, 32)
	quotation, err := h.quotationService.Cancel(c.Request.Context(), uint(id), auditContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quotation": quotation.ToResponse(), "message": "Cotización cancelada"})
}

// @Summary Quotation PDF
// @Description Download the quotation document as PDF
// @Tags Quotations
// @Produce application/pdf
// @Param quotation_id path int true "Quotation ID"
// @Success 200 {file} file "quotation.pdf"
// @Security BearerAuth
// @Router /quotations/{quotation_id}/pdf [get]
func (h *QuotationHandler) PDF(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("quotation_id"), 10, 32)
	buf, filename, err := h.documentService.GenerateQuotationPDF(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
