package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/solterra/solterra-api/internal/middleware"
	"github.com/solterra/solterra-api/internal/models"
	"github.com/solterra/solterra-api/internal/services"
)

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// @Summary List Projects
// @Description Get a paginated list of projects
// @Tags Projects
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 100)" default(20)
// @Param search query string false "Search term"
// @Param active query bool false "Filter by active flag"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /projects [get]
func (h *ProjectHandler) Index(c *gin.Context) {
	query := parseListQuery(c)
	query.Filters["active"] = c.Query("active")

	projects, total, err := h.projectService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []models.ProjectResponse
	for _, p := range projects {
		responses = append(responses, p.ToResponse())
	}

	c.JSON(http.StatusOK, paginated(responses, query, total))
}

// @Summary List All Projects
// @Description Get every project without pagination, for selection dropdowns
// @Tags Projects
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /projects/all [get]
func (h *ProjectHandler) All(c *gin.Context) {
	projects, err := h.projectService.FindAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []models.ProjectResponse
	for _, p := range projects {
		responses = append(responses, p.ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"projects": responses})
}

// @Summary Get Project
// @Description Get a project by ID
// @Tags Projects
// @Accept json
// @Produce json
// @Param project_id path int true "Project ID"
// @Success 200 {object} models.ProjectResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /projects/{project_id} [get]
func (h *ProjectHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("project_id"), 10, 32)
	project, err := h.projectService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Proyecto no encontrado"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": project.ToResponse()})
}

// @Summary Create Project
// @Description Create a new project (Admin)
// @Tags Projects
// @Accept json
// @Produce json
// @Param request body models.Project true "Project Data"
// @Success 201 {object} models.ProjectResponse
// @Security BearerAuth
// @Router /projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	var project models.Project
	if err := BindNestedOrFlat(c, "project", &project); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.projectService.Create(c.Request.Context(), &project, auditContext(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"project": project.ToResponse()})
}

// @Summary Update Project
// @Description Update an existing project (Admin)
// @Tags Projects
// @Accept json
// @Produce json
// @Param project_id path int true "Project ID"
// @Param request body models.Project true "Project Data"
// @Success 200 {object} models.ProjectResponse
// @Security BearerAuth
// @Router /projects/{project_id} [put]
func (h *ProjectHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("project_id"), 10, 32)
	project, err := h.projectService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Proyecto no encontrado"})
		return
	}

	if err := BindNestedOrFlat(c, "project", project); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	project.ID = uint(id)

	if err := h.projectService.Update(c.Request.Context(), project, auditContext(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"project": project.ToResponse()})
}

// @Summary Delete Project
// @Description Delete a project without committed inventory (Admin)
// @Tags Projects
// @Accept json
// @Produce json
// @Param project_id path int true "Project ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /projects/{project_id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("project_id"), 10, 32)
	if err := h.projectService.Delete(c.Request.Context(), uint(id), auditContext(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Proyecto eliminado"})
}

type SetActiveRequest struct {
	Active bool `json:"active"`
}

// @Summary Toggle Project
// @Description Activate or deactivate a project (Admin)
// @Tags Projects
// @Accept json
// @Produce json
// @Param project_id path int true "Project ID"
// @Param request body SetActiveRequest true "Active flag"
// @Success 200 {object} models.ProjectResponse
// @Security BearerAuth
// @Router /projects/{project_id}/toggle_active [put]
func (h *ProjectHandler) SetActive(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("project_id"), 10, 32)
	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := h.projectService.SetActive(c.Request.Context(), uint(id), req.Active, auditContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": project.ToResponse()})
}

type BlockHandler struct {
	blockService *services.BlockService
}

func NewBlockHandler(blockService *services.BlockService) *BlockHandler {
	return &BlockHandler{blockService: blockService}
}

// @Summary List Blocks
// @Description Get a paginated list of blocks for a project
// @Tags Blocks
// @Accept json
// @Produce json
// @Param project_id path int true "Project ID"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 100)" default(20)
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /projects/{project_id}/blocks [get]
func (h *BlockHandler) Index(c *gin.Context) {
	projectID, _ := strconv.ParseUint(c.Param("project_id"), 10, 32)
	query := parseListQuery(c)
	query.Filters["active"] = c.Query("active")

	blocks, total, err := h.blockService.List(c.Request.Context(), uint(projectID), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []models.BlockResponse
	for _, b := range blocks {
		responses = append(responses, b.ToResponse())
	}

	c.JSON(http.StatusOK, paginated(responses, query, total))
}

// @Summary Get Block
// @Description Get a block by ID
// @Tags Blocks
// @Accept json
// @Produce json
// @Param block_id path int true "Block ID"
// @Success 200 {object} models.BlockResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /projects/{project_id}/blocks/{block_id} [get]
func (h *BlockHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("block_id"), 10, 32)
	block, err := h.blockService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Manzana no encontrada"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"block": block.ToResponse()})
}

// @Summary Create Block
// @Description Create a new block in a project (Admin)
// @Tags Blocks
// @Accept json
// @Produce json
// @Param project_id path int true "Project ID"
// @Param request body models.Block true "Block Data"
// @Success 201 {object} models.BlockResponse
// @Security BearerAuth
// @Router /projects/{project_id}/blocks [post]
func (h *BlockHandler) Create(c *gin.Context) {
	projectID, _ := strconv.ParseUint(c.Param("project_id"), 10, 32)
	var block models.Block
	if err := BindNestedOrFlat(c, "block", &block); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	block.ProjectID = uint(projectID)

	if err := h.blockService.Create(c.Request.Context(), &block, auditContext(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"block": block.ToResponse()})
}

// @Summary Update Block
// @Description Update an existing block (Admin)
// @Tags Blocks
// @Accept json
// @Produce json
// @Param block_id path int true "Block ID"
// @Param request body models.Block true "Block Data"
// @Success 200 {object} models.BlockResponse
// @Security BearerAuth
// @Router /projects/{project_id}/blocks/{block_id} [put]
func (h *BlockHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("block_id"), 10, 32)
	block, err := h.blockService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Manzana no encontrada"})
		return
	}

	if err := BindNestedOrFlat(c, "block", block); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	block.ID = uint(id)

	if err := h.blockService.Update(c.Request.Context(), block, auditContext(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"block": block.ToResponse()})
}

// @Summary Delete Block
// @Description Delete a block without committed inventory (Admin)
// @Tags Blocks
// @Accept json
// @Produce json
// @Param block_id path int true "Block ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /projects/{project_id}/blocks/{block_id} [delete]
func (h *BlockHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("block_id"), 10, 32)
	if err := h.blockService.Delete(c.Request.Context(), uint(id), auditContext(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Manzana eliminada"})
}

// @Summary Toggle Block
// @Description Activate or deactivate a block (Admin)
// @Tags Blocks
// @Accept json
// @Produce json
// @Param block_id path int true "Block ID"
// @Param request body SetActiveRequest true "Active flag"
// @Success 200 {object} models.BlockResponse
// @Security BearerAuth
// @Router /projects/{project_id}/blocks/{block_id}/toggle_active [put]
func (h *BlockHandler) SetActive(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("block_id"), 10, 32)
	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	block, err := h.blockService.SetActive(c.Request.Context(), uint(id), req.Active, auditContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"block": block.ToResponse()})
}

type LotHandler struct {
	lotService *services.LotService
}

func NewLotHandler(lotService *services.LotService) *LotHandler {
	return &LotHandler{lotService: lotService}
}

// @Summary List Lots
// @Description Get a paginated list of lots
// @Tags Lots
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 100)" default(20)
// @Param project_id query int false "Filter by project"
// @Param block_id query int false "Filter by block"
// @Param status query string false "Filter by status"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /lots [get]
func (h *LotHandler) Index(c *gin.Context) {
	query := parseListQuery(c)
	query.Filters["project_id"] = c.Query("project_id")
	query.Filters["block_id"] = c.Query("block_id")
	query.Filters["status"] = c.Query("status")

	lots, total, err := h.lotService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []models.LotResponse
	for _, l := range lots {
		responses = append(responses, l.ToResponse())
	}

	c.JSON(http.StatusOK, paginated(responses, query, total))
}

// @Summary Get Lot
// @Description Get a lot by ID
// @Tags Lots
// @Accept json
// @Produce json
// @Param lot_id path int true "Lot ID"
// @Success 200 {object} models.LotResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /lots/{lot_id} [get]
func (h *LotHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("lot_id"), 10, 32)
	lot, err := h.lotService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lote no encontrado"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"lot": lot.ToResponse()})
}

// @Summary Create Lot
// @Description Create a new lot in a block (Admin)
// @Tags Lots
// @Accept json
// @Produce json
// @Param request body models.Lot true "Lot Data"
// @Success 201 {object} models.LotResponse
// @Security BearerAuth
// @Router /lots [post]
func (h *LotHandler) Create(c *gin.Context) {
	var lot models.Lot
	if err := BindNestedOrFlat(c, "lot", &lot); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.lotService.Create(c.Request.Context(), &lot, auditContext(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"lot": lot.ToResponse()})
}

type UpdateLotRequest struct {
	Number *string  `json:"number"`
	Area   *float64 `json:"area"`
	Price  *float64 `json:"price"`
}

// @Summary Update Lot
// @Description Update lot number, area or price (Admin). Status is owned by the sales flow.
// @Tags Lots
// @Accept json
// @Produce json
// @Param lot_id path int true "Lot ID"
// @Param request body UpdateLotRequest true "Lot Fields"
// @Success 200 {object} models.LotResponse
// @Security BearerAuth
// @Router /lots/{lot_id} [put]
func (h *LotHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("lot_id"), 10, 32)
	var req UpdateLotRequest
	if err := BindNestedOrFlat(c, "lot", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lot, err := h.lotService.Update(c.Request.Context(), uint(id), req.Number, req.Area, req.Price, auditContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"lot": lot.ToResponse()})
}

// @Summary Delete Lot
// @Description Delete a lot not tied to a reservation or sale (Admin)
// @Tags Lots
// @Accept json
// @Produce json
// @Param lot_id path int true "Lot ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /lots/{lot_id} [delete]
func (h *LotHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("lot_id"), 10, 32)
	if err := h.lotService.Delete(c.Request.Context(), uint(id), auditContext(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Lote eliminado"})
}

// @Summary Toggle Lot
// @Description Activate or deactivate a lot (Admin)
// @Tags Lots
// @Accept json
// @Produce json
// @Param lot_id path int true "Lot ID"
// @Param request body SetActiveRequest true "Active flag"
// @Success 200 {object} models.LotResponse
// @Security BearerAuth
// @Router /lots/{lot_id}/toggle_active [put]
func (h *LotHandler) SetActive(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("lot_id"), 10, 32)
	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lot, err := h.lotService.SetActive(c.Request.Context(), uint(id), req.Active, auditContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lot": lot.ToResponse()})
}

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// @Summary List Notifications
// @Description Get a paginated list of notifications for the current user
// @Tags Notifications
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 100)" default(20)
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /notifications [get]
func (h *NotificationHandler) Index(c *gin.Context) {
	userID := middleware.GetUserID(c)
	query := parseListQuery(c)
	query.Filters["status"] = c.Query("status")

	notifications, total, err := h.notificationService.FindByUser(c.Request.Context(), userID, query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	unread, _ := h.notificationService.CountUnread(c.Request.Context(), userID)

	var responses []models.NotificationResponse
	for _, n := range notifications {
		responses = append(responses, n.ToResponse())
	}

	body := paginated(responses, query, total)
	body["unread_count"] = unread
	c.JSON(http.StatusOK, body)
}

// @Summary Mark Notification Read
// @Description Mark a notification as read
// @Tags Notifications
// @Accept json
// @Produce json
// @Param notification_id path int true "Notification ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /notifications/{notification_id}/mark_as_read [post]
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("notification_id"), 10, 32)
	if err := h.notificationService.MarkAsRead(c.Request.Context(), uint(id)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notificación marcada como leída"})
}

// @Summary Mark All Notifications Read
// @Description Mark all notifications as read for current user
// @Tags Notifications
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /notifications/mark_all_as_read [post]
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if err := h.notificationService.MarkAllAsRead(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Todas las notificaciones marcadas como leídas"})
}

// @Summary Delete Notification
// @Description Delete a notification
// @Tags Notifications
// @Accept json
// @Produce json
// @Param notification_id path int true "Notification ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /notifications/{notification_id} [delete]
func (h *NotificationHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("notification_id"), 10, 32)
	if err := h.notificationService.Delete(c.Request.Context(), uint(id)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notificación eliminada"})
}

type AuditHandler struct {
	auditService *services.AuditService
}

func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// @Summary List Audit Logs
// @Description Get a paginated list of system audit logs
// @Tags Audit
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 100)" default(50)
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /audits [get]
func (h *AuditHandler) Index(c *gin.Context) {
	query := parseListQuery(c)
	if c.Query("pageSize") == "" {
		query.PerPage = 50
	}
	offset := (query.Page - 1) * query.PerPage

	logs, total, err := h.auditService.List(c.Request.Context(), query.PerPage, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, paginated(logs, query, total))
}
