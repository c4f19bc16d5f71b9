package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/solterra/solterra-api/internal/models"
	"github.com/solterra/solterra-api/internal/repository"
	"gorm.io/gorm"
)

// ClientService handles buyer party management
type ClientService struct {
	repo     repository.ClientRepository
	auditSvc *AuditService
}

func NewClientService(repo repository.ClientRepository, auditSvc *AuditService) *ClientService {
	return &ClientService{repo: repo, auditSvc: auditSvc}
}

func (s *ClientService) FindByID(ctx context.Context, id uint) (*models.Client, error) {
	client, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return client, err
}

func (s *ClientService) List(ctx context.Context, query *repository.ListQuery) ([]models.Client, int64, error) {
	return s.repo.List(ctx, query)
}

func (s *ClientService) Create(ctx context.Context, client *models.Client, actor AuditContext) error {
	if client.DocumentType != models.DocumentTypeDNI && client.DocumentType != models.DocumentTypeRUC {
		return errors.New("tipo de documento inválido")
	}
	if err := s.repo.Create(ctx, client); err != nil {
		return err
	}
	s.auditSvc.Log(ctx, actor, "CREATE", "Client", client.ID, fmt.Sprintf("cliente %s registrado", client.DisplayName()))
	return nil
}

func (s *ClientService) Update(ctx context.Context, client *models.Client, actor AuditContext) error {
	if err := s.repo.Update(ctx, client); err != nil {
		return err
	}
	s.auditSvc.Log(ctx, actor, "UPDATE", "Client", client.ID, "cliente actualizado")
	return nil
}

// FindOrCreateByPhone dedupes landing-page intake by phone number.
// When the phone is already known the existing client is returned and
// only missing fields are filled in.
func (s *ClientService) FindOrCreateByPhone(ctx context.Context, client *models.Client, actor AuditContext) (*models.Client, bool, error) {
	existing, err := s.repo.FindByPhone(ctx, client.Phone)
	if err == nil {
		changed := false
		if existing.Email == nil && client.Email != nil {
			existing.Email = client.Email
			changed = true
		}
		if existing.Address == nil && client.Address != nil {
			existing.Address = client.Address
			changed = true
		}
		if changed {
			if err := s.repo.Update(ctx, existing); err != nil {
				return nil, false, err
			}
		}
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	if err := s.Create(ctx, client, actor); err != nil {
		return nil, false, err
	}
	return client, true, nil
}
