package handlers

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/solterra/solterra-api/internal/middleware"
	"github.com/solterra/solterra-api/internal/repository"
	"github.com/solterra/solterra-api/internal/services"
	"github.com/solterra/solterra-api/internal/storage"
)

// Handlers holds all HTTP handler instances
type Handlers struct {
	Health       *HealthHandler
	Auth         *AuthHandler
	User         *UserHandler
	Client       *ClientHandler
	Lead         *LeadHandler
	Project      *ProjectHandler
	Block        *BlockHandler
	Lot          *LotHandler
	Quotation    *QuotationHandler
	Reservation  *ReservationHandler
	Payment      *PaymentHandler
	Dashboard    *DashboardHandler
	Notification *NotificationHandler
	Audit        *AuditHandler
	Job          *JobHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services, store *storage.LocalStorage) *Handlers {
	return &Handlers{
		Health:       NewHealthHandler(),
		Auth:         NewAuthHandler(svcs.Auth),
		User:         NewUserHandler(svcs.User),
		Client:       NewClientHandler(svcs.Client),
		Lead:         NewLeadHandler(svcs.Lead),
		Project:      NewProjectHandler(svcs.Project),
		Block:        NewBlockHandler(svcs.Block),
		Lot:          NewLotHandler(svcs.Lot),
		Quotation:    NewQuotationHandler(svcs.Quotation, svcs.Document),
		Reservation:  NewReservationHandler(svcs.Reservation, svcs.Payment, svcs.Document),
		Payment:      NewPaymentHandler(svcs.Payment, store),
		Dashboard:    NewDashboardHandler(svcs.Dashboard, svcs.Export),
		Notification: NewNotificationHandler(svcs.Notification),
		Audit:        NewAuditHandler(svcs.Audit),
		Job:          NewJobHandler(svcs.Job),
	}
}

// auditContext builds the actor context passed down to services
func auditContext(c *gin.Context) services.AuditContext {
	return services.AuditContext{
		UserID:    middleware.GetUserID(c),
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

// respondError maps service errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrDuplicate), errors.Is(err, services.ErrInventoryInUse):
		status = http.StatusConflict
	case errors.Is(err, services.ErrInvalidState):
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// orderByColumn guards the orderBy query param before it reaches SQL
var orderByColumn = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// parseListQuery reads the shared pagination params: page (1-based),
// pageSize (1-100), search, orderBy, orderDirection, preselectedId.
func parseListQuery(c *gin.Context) *repository.ListQuery {
	query := repository.NewListQuery()

	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && page > 0 {
		query.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("pageSize", "20")); err == nil && size > 0 {
		if size > 100 {
			size = 100
		}
		query.PerPage = size
	}
	query.Search = c.Query("search")
	if orderBy := c.Query("orderBy"); orderByColumn.MatchString(orderBy) {
		query.SortBy = orderBy
	}
	query.SortDir = c.Query("orderDirection")
	if id, err := strconv.ParseUint(c.Query("preselectedId"), 10, 32); err == nil {
		query.PreselectedID = uint(id)
	}
	return query
}

// paginated wraps a list result in the data/meta envelope
func paginated(data interface{}, query *repository.ListQuery, total int64) gin.H {
	totalPages := int64(0)
	if query.PerPage > 0 {
		totalPages = (total + int64(query.PerPage) - 1) / int64(query.PerPage)
	}
	return gin.H{
		"data": data,
		"meta": gin.H{
			"total":       total,
			"page":        query.Page,
			"pageSize":    query.PerPage,
			"totalPages":  totalPages,
			"hasNext":     int64(query.Page) < totalPages,
			"hasPrevious": query.Page > 1,
		},
	}
}
