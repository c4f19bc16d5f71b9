package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/solterra/solterra-api/internal/models"
	"github.com/solterra/solterra-api/internal/services"
)

type LeadHandler struct {
	leadService *services.LeadService
}

func NewLeadHandler(leadService *services.LeadService) *LeadHandler {
	return &LeadHandler{leadService: leadService}
}

// @Summary List Leads
// @Description Get a paginated list of leads
// @Tags Leads
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 100)" default(20)
// @Param search query string false "Search by client name or phone"
// @Param status query string false "Filter by status"
// @Param source query string false "Filter by source"
// @Param advisor_id query int false "Filter by assigned advisor"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /leads [get]
func (h *LeadHandler) Index(c *gin.Context) {
	query := parseListQuery(c)
	query.Filters["status"] = c.Query("status")
	query.Filters["source"] = c.Query("source")
	query.Filters["advisor_id"] = c.Query("advisor_id")

	leads, total, err := h.leadService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []models.LeadResponse
	for _, l := range leads {
		responses = append(responses, l.ToResponse())
	}

	c.JSON(http.StatusOK, paginated(responses, query, total))
}

// @Summary Get Lead
// @Description Get a lead by ID
// @Tags Leads
// @Accept json
// @Produce json
// @Param lead_id path int true "Lead ID"
// @Success 200 {object} models.LeadResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /leads/{lead_id} [get]
func (h *LeadHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("lead_id"), 10, 32)
	lead, err := h.leadService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lead no encontrado"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"lead": lead.ToResponse()})
}

type CaptureLeadRequest struct {
	DocumentType   string  `json:"document_type"`
	DocumentNumber string  `json:"document_number"`
	FullName       string  `json:"full_name"`
	LegalName      *string `json:"legal_name"`
	Phone          string  `json:"phone" binding:"required"`
	Email          *string `json:"email"`
	Address        *string `json:"address"`
	Source         string  `json:"source" binding:"required"`
	Note           *string `json:"note"`
}

// @Summary Capture Lead
// @Description Register a lead; reuses an existing client matched by phone
// @Tags Leads
// @Accept json
// @Produce json
// @Param request body CaptureLeadRequest true "Lead Data"
// @Success 201 {object} models.LeadResponse
// @Failure 400 {object} map[string]string
// @Router /leads [post]
func (h *LeadHandler) Capture(c *gin.Context) {
	var req CaptureLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	client := &models.Client{
		DocumentType:   req.DocumentType,
		DocumentNumber: req.DocumentNumber,
		FullName:       req.FullName,
		LegalName:      req.LegalName,
		Phone:          req.Phone,
		Email:          req.Email,
		Address:        req.Address,
	}

	lead, err := h.leadService.Capture(c.Request.Context(), client, req.Source, req.Note, auditContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"lead": lead.ToResponse()})
}

type AssignLeadRequest struct {
	AdvisorID uint `json:"advisor_id" binding:"required"`
}

// @Summary Assign Lead
// @Description Assign a lead to an advisor
// @Tags Leads
// @Accept json
// @Produce json
// @Param lead_id path int true "Lead ID"
// @Param request body AssignLeadRequest true "Advisor"
// @Success 200 {object} models.LeadResponse
// @Security BearerAuth
// @Router /leads/{lead_id}/assign [post]
func (h *LeadHandler) Assign(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("lead_id"), 10, 32)
	var req AssignLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "advisor_id es requerido"})
		return
	}

	lead, err := h.leadService.Assign(c.Request.Context(), uint(id), req.AdvisorID, auditContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"lead": lead.ToResponse(), "message": "Lead asignado"})
}

type ChangeLeadStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// @Summary Change Lead Status
// @Description Move a lead through its intake pipeline
// @Tags Leads
// @Accept json
// @Produce json
// @Param lead_id path int true "Lead ID"
// @Param request body ChangeLeadStatusRequest true "New Status"
// @Success 200 {object} models.LeadResponse
// @Security BearerAuth
// @Router /leads/{lead_id}/status [put]
func (h *LeadHandler) ChangeStatus(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("lead_id"), 10, 32)
	var req ChangeLeadStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status es requerido"})
		return
	}

	lead, err := h.leadService.ChangeStatus(c.Request.Context(), uint(id), req.Status, auditContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"lead": lead.ToResponse()})
}
