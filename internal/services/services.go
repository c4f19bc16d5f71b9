package services

import (
	"github.com/solterra/solterra-api/internal/config"
	"github.com/solterra/solterra-api/internal/jobs"
	"github.com/solterra/solterra-api/internal/repository"
	"github.com/solterra/solterra-api/internal/storage"
	"gorm.io/gorm"
)

// Services holds all service instances
type Services struct {
	Auth         *AuthService
	User         *UserService
	Client       *ClientService
	Lead         *LeadService
	Project      *ProjectService
	Block        *BlockService
	Lot          *LotService
	Quotation    *QuotationService
	Reservation  *ReservationService
	Payment      *PaymentService
	Schedule     *ScheduleService
	Dashboard    *DashboardService
	Export       *ExportService
	Document     *DocumentService
	Notification *NotificationService
	Audit        *AuditService
	Job          *JobService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, store *storage.LocalStorage, cfg *config.Config, db *gorm.DB) *Services {
	notificationSvc := NewNotificationService(repos.Notification, repos.User)
	auditSvc := NewAuditService(db)
	scheduleSvc := NewScheduleService()

	clientSvc := NewClientService(repos.Client, auditSvc)
	dashboardSvc := NewDashboardService(repos.Dashboard)

	return &Services{
		Auth:         NewAuthService(repos.User, repos.RefreshToken, cfg),
		User:         NewUserService(repos.User, notificationSvc, auditSvc, worker),
		Client:       clientSvc,
		Lead:         NewLeadService(repos.Lead, repos.User, clientSvc, notificationSvc, auditSvc, worker),
		Project:      NewProjectService(repos.Project, auditSvc),
		Block:        NewBlockService(repos.Block, repos.Project, auditSvc),
		Lot:          NewLotService(repos.Lot, repos.Block, auditSvc),
		Quotation:    NewQuotationService(repos.Quotation, repos.Lot, repos.Lead, notificationSvc, auditSvc, worker, cfg),
		Reservation:  NewReservationService(repos.Reservation, repos.Quotation, repos.Lot, scheduleSvc, notificationSvc, auditSvc, worker, cfg),
		Payment:      NewPaymentService(repos.Payment, repos.Reservation, repos.Lot, store, notificationSvc, auditSvc, worker),
		Schedule:     scheduleSvc,
		Dashboard:    dashboardSvc,
		Export:       NewExportService(dashboardSvc),
		Document:     NewDocumentService(repos.Quotation, repos.Reservation, scheduleSvc),
		Notification: notificationSvc,
		Audit:        auditSvc,
		Job:          NewJobService(worker),
	}
}
