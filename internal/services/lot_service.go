package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/solterra/solterra-api/internal/models"
	"github.com/solterra/solterra-api/internal/repository"
	"gorm.io/gorm"
)

// LotService handles lot management
type LotService struct {
	repo      repository.LotRepository
	blockRepo repository.BlockRepository
	auditSvc  *AuditService
}

func NewLotService(repo repository.LotRepository, blockRepo repository.BlockRepository, auditSvc *AuditService) *LotService {
	return &LotService{repo: repo, blockRepo: blockRepo, auditSvc: auditSvc}
}

func (s *LotService) FindByID(ctx context.Context, id uint) (*models.Lot, error) {
	lot, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return lot, err
}

func (s *LotService) List(ctx context.Context, query *repository.ListQuery) ([]models.Lot, int64, error) {
	return s.repo.List(ctx, query)
}

func (s *LotService) Create(ctx context.Context, lot *models.Lot, actor AuditContext) error {
	if lot.Area <= 0 {
		return errors.New("el área debe ser mayor a cero")
	}
	if lot.Price <= 0 {
		return errors.New("el precio debe ser mayor a cero")
	}

	if _, err := s.blockRepo.FindByID(ctx, lot.BlockID); errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	} else if err != nil {
		return err
	}

	lot.Status = models.LotStatusAvailable
	lot.Active = true

	if err := s.repo.Create(ctx, lot); err != nil {
		return err
	}

	s.auditSvc.Log(ctx, actor, "CREATE", "Lot", lot.ID, fmt.Sprintf("lote %s creado en manzana #%d", lot.Number, lot.BlockID))
	return nil
}

// Update patches the editable fields. Status is owned by the quotation
// and reservation lifecycle and cannot be set here.
func (s *LotService) Update(ctx context.Context, id uint, number *string, area, price *float64, actor AuditContext) (*models.Lot, error) {
	lot, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if number != nil {
		lot.Number = *number
	}
	if area != nil {
		if *area <= 0 {
			return nil, errors.New("el área debe ser mayor a cero")
		}
		lot.Area = *area
	}
	if price != nil {
		if *price <= 0 {
			return nil, errors.New("el precio debe ser mayor a cero")
		}
		lot.Price = *price
	}

	if err := s.repo.Update(ctx, lot); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actor, "UPDATE", "Lot", lot.ID, "lote actualizado")
	return lot, nil
}

// Delete removes a lot unless it has been reserved or sold
func (s *LotService) Delete(ctx context.Context, id uint, actor AuditContext) error {
	lot, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if lot.BlocksDeletion() {
		return ErrInventoryInUse
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.auditSvc.Log(ctx, actor, "DELETE", "Lot", id, "lote eliminado")
	return nil
}

// SetActive toggles the activation flag, idempotently
func (s *LotService) SetActive(ctx context.Context, id uint, active bool, actor AuditContext) (*models.Lot, error) {
	lot, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	lot.Active = active
	if err := s.repo.Update(ctx, lot); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actor, "STATUS_CHANGE", "Lot", id, fmt.Sprintf("activo: %t", active))
	return lot, nil
}
