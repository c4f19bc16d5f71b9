package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/solterra/solterra-api/internal/jobs"
	"github.com/solterra/solterra-api/internal/models"
	"github.com/solterra/solterra-api/internal/repository"
	"gorm.io/gorm"
)

// LeadService handles prospective buyer intake
type LeadService struct {
	repo            repository.LeadRepository
	userRepo        repository.UserRepository
	clientSvc       *ClientService
	notificationSvc *NotificationService
	auditSvc        *AuditService
	worker          *jobs.Worker
}

func NewLeadService(repo repository.LeadRepository, userRepo repository.UserRepository, clientSvc *ClientService, notificationSvc *NotificationService, auditSvc *AuditService, worker *jobs.Worker) *LeadService {
	return &LeadService{
		repo:            repo,
		userRepo:        userRepo,
		clientSvc:       clientSvc,
		notificationSvc: notificationSvc,
		auditSvc:        auditSvc,
		worker:          worker,
	}
}

func (s *LeadService) FindByID(ctx context.Context, id uint) (*models.Lead, error) {
	lead, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return lead, err
}

func (s *LeadService) List(ctx context.Context, query *repository.ListQuery) ([]models.Lead, int64, error) {
	return s.repo.List(ctx, query)
}

// Capture registers a lead for an incoming prospect. The client is
// deduped by phone so repeated landing submissions reuse the same party.
func (s *LeadService) Capture(ctx context.Context, client *models.Client, source string, note *string, actor AuditContext) (*models.Lead, error) {
	resolved, _, err := s.clientSvc.FindOrCreateByPhone(ctx, client, actor)
	if err != nil {
		return nil, err
	}

	lead := &models.Lead{
		ClientID: resolved.ID,
		Source:   source,
		Status:   models.LeadStatusNew,
		Note:     note,
	}
	if err := s.repo.Create(ctx, lead); err != nil {
		return nil, err
	}
	lead.Client = *resolved

	s.auditSvc.Log(ctx, actor, "CREATE", "Lead", lead.ID, fmt.Sprintf("lead capturado desde %s", source))
	return lead, nil
}

// Assign hands the lead to an advisor and notifies them
func (s *LeadService) Assign(ctx context.Context, leadID, advisorID uint, actor AuditContext) (*models.Lead, error) {
	lead, err := s.FindByID(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if lead.IsClosed() {
		return nil, ErrInvalidState
	}

	advisor, err := s.userRepo.FindByID(ctx, advisorID)
	if err != nil {
		return nil, ErrNotFound
	}
	if !advisor.IsActive() {
		return nil, errors.New("el asesor no está activo")
	}

	lead.AdvisorID = &advisor.ID
	if lead.Status == models.LeadStatusNew {
		lead.Status = models.LeadStatusAssigned
	}
	if err := s.repo.Update(ctx, lead); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actor, "UPDATE", "Lead", lead.ID, fmt.Sprintf("asignado al asesor #%d", advisor.ID))

	assignedID := advisor.ID
	clientName := lead.Client.DisplayName()
	s.worker.EnqueueAsync(func(jobCtx context.Context) error {
		return s.notificationSvc.NotifyUser(jobCtx, assignedID,
			"Lead asignado",
			fmt.Sprintf("Se te asignó el lead de %s", clientName),
			models.NotificationTypeLeadAssigned)
	})

	return lead, nil
}

// ChangeStatus updates the lead pipeline status
func (s *LeadService) ChangeStatus(ctx context.Context, leadID uint, status string, actor AuditContext) (*models.Lead, error) {
	lead, err := s.FindByID(ctx, leadID)
	if err != nil {
		return nil, err
	}

	switch status {
	case models.LeadStatusNew, models.LeadStatusAssigned, models.LeadStatusContacted,
		models.LeadStatusQuoted, models.LeadStatusClosedWon, models.LeadStatusClosedLost:
	default:
		return nil, errors.New("estado de lead inválido")
	}

	if lead.IsClosed() {
		return nil, ErrInvalidState
	}

	lead.Status = status
	if err := s.repo.Update(ctx, lead); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actor, "STATUS_CHANGE", "Lead", lead.ID, "estado: "+status)
	return lead, nil
}
