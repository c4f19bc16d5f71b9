package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/solterra/solterra-api/internal/services"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
	exportService    *services.ExportService
}

func NewDashboardHandler(dashboardService *services.DashboardService, exportService *services.ExportService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		exportService:    exportService,
	}
}

// year defaults to the current year when absent or malformed
func (h *DashboardHandler) year(c *gin.Context) int {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 2000 {
		return time.Now().Year()
	}
	return year
}

// @Summary Dashboard Summary
// @Description Get the yearly sales funnel summary (leads, quotations, reservations, revenue, inventory)
// @Tags Dashboard
// @Accept json
// @Produce json
// @Param year query int false "Year (defaults to current)"
// @Success 200 {object} models.DashboardSummary
// @Security BearerAuth
// @Router /dashboard/summary [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, err := h.dashboardService.Summary(c.Request.Context(), h.year(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// @Summary Export Dashboard CSV
// @Description Download the yearly sales report as CSV
// @Tags Dashboard
// @Produce text/csv
// @Param year query int false "Year (defaults to current)"
// @Success 200 {file} file "sales_report.csv"
// @Security BearerAuth
// @Router /dashboard/export/csv [get]
func (h *DashboardHandler) ExportCSV(c *gin.Context) {
	data, filename, err := h.exportService.ExportCSV(c.Request.Context(), h.year(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "text/csv", data)
}

// @Summary Export Dashboard XLSX
// @Description Download the yearly sales report as an Excel workbook
// @Tags Dashboard
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param year query int false "Year (defaults to current)"
// @Success 200 {file} file "sales_report.xlsx"
// @Security BearerAuth
// @Router /dashboard/export/xlsx [get]
func (h *DashboardHandler) ExportXLSX(c *gin.Context) {
	data, filename, err := h.exportService.ExportXLSX(c.Request.Context(), h.year(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// @Summary Export Dashboard PDF
// @Description Download the yearly sales report as PDF
// @Tags Dashboard
// @Produce application/pdf
// @Param year query int false "Year (defaults to current)"
// @Success 200 {file} file "sales_report.pdf"
// @Security BearerAuth
// @Router /dashboard/export/pdf [get]
func (h *DashboardHandler) ExportPDF(c *gin.Context) {
	data, filename, err := h.exportService.ExportPDF(c.Request.Context(), h.year(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/pdf", data)
}
