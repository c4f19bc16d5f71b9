package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/solterra/solterra-api/internal/models"
	"github.com/solterra/solterra-api/internal/repository"
	"gorm.io/gorm"
)

// ProjectService handles project management
type ProjectService struct {
	repo     repository.ProjectRepository
	auditSvc *AuditService
}

func NewProjectService(repo repository.ProjectRepository, auditSvc *AuditService) *ProjectService {
	return &ProjectService{repo: repo, auditSvc: auditSvc}
}

func (s *ProjectService) FindByID(ctx context.Context, id uint) (*models.Project, error) {
	project, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return project, err
}

func (s *ProjectService) List(ctx context.Context, query *repository.ListQuery) ([]models.Project, int64, error) {
	return s.repo.List(ctx, query)
}

func (s *ProjectService) FindAll(ctx context.Context) ([]models.Project, error) {
	return s.repo.FindAll(ctx)
}

func (s *ProjectService) Create(ctx context.Context, project *models.Project, actor AuditContext) error {
	if project.Currency == "" {
		project.Currency = "PEN"
	}
	project.Active = true

	// The unique index on lower(name) is the backstop for concurrent creates
	if _, err := s.repo.FindByName(ctx, project.Name); err == nil {
		return repository.DuplicateError("Ya existe un proyecto con este nombre")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if err := s.repo.Create(ctx, project); err != nil {
		return err
	}

	s.auditSvc.Log(ctx, actor, "CREATE", "Project", project.ID, fmt.Sprintf("proyecto %s creado", project.Name))
	return nil
}

func (s *ProjectService) Update(ctx context.Context, project *models.Project, actor AuditContext) error {
	if err := s.repo.Update(ctx, project); err != nil {
		return err
	}
	s.auditSvc.Log(ctx, actor, "UPDATE", "Project", project.ID, "proyecto actualizado")
	return nil
}

// Delete removes a project unless it holds reserved or sold lots
func (s *ProjectService) Delete(ctx context.Context, id uint, actor AuditContext) error {
	if _, err := s.FindByID(ctx, id); err != nil {
		return err
	}

	blocking, err := s.repo.CountBlockingLots(ctx, id)
	if err != nil {
		return err
	}
	if blocking > 0 {
		return ErrInventoryInUse
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.auditSvc.Log(ctx, actor, "DELETE", "Project", id, "proyecto eliminado")
	return nil
}

// SetActive toggles the activation flag. Repeated calls with the same
// value are idempotent and only advance UpdatedAt.
func (s *ProjectService) SetActive(ctx context.Context, id uint, active bool, actor AuditContext) (*models.Project, error) {
	project, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	project.Active = active
	if err := s.repo.Update(ctx, project); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actor, "STATUS_CHANGE", "Project", id, fmt.Sprintf("activo: %t", active))
	return project, nil
}

// BlockService handles block management within projects
type BlockService struct {
	repo        repository.BlockRepository
	projectRepo repository.ProjectRepository
	auditSvc    *AuditService
}

func NewBlockService(repo repository.BlockRepository, projectRepo repository.ProjectRepository, auditSvc *AuditService) *BlockService {
	return &BlockService{repo: repo, projectRepo: projectRepo, auditSvc: auditSvc}
}

func (s *BlockService) FindByID(ctx context.Context, id uint) (*models.Block, error) {
	block, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return block, err
}

func (s *BlockService) List(ctx context.Context, projectID uint, query *repository.ListQuery) ([]models.Block, int64, error) {
	return s.repo.List(ctx, projectID, query)
}

// Create adds a block to an active project, rejecting duplicate names
// within the project regardless of casing
func (s *BlockService) Create(ctx context.Context, block *models.Block, actor AuditContext) error {
	project, err := s.projectRepo.FindByID(ctx, block.ProjectID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if !project.Active {
		return ErrProjectInactive
	}

	if _, err := s.repo.FindByProjectAndName(ctx, block.ProjectID, block.Name); err == nil {
		return repository.DuplicateError("Ya existe una manzana con este nombre en el proyecto")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	block.Active = true
	if err := s.repo.Create(ctx, block); err != nil {
		return err
	}

	s.auditSvc.Log(ctx, actor, "CREATE", "Block", block.ID, fmt.Sprintf("manzana %s creada en proyecto #%d", block.Name, block.ProjectID))
	return nil
}

func (s *BlockService) Update(ctx context.Context, block *models.Block, actor AuditContext) error {
	if err := s.repo.Update(ctx, block); err != nil {
		return err
	}
	s.auditSvc.Log(ctx, actor, "UPDATE", "Block", block.ID, "manzana actualizada")
	return nil
}

// Delete removes a block unless it holds reserved or sold lots
func (s *BlockService) Delete(ctx context.Context, id uint, actor AuditContext) error {
	if _, err := s.FindByID(ctx, id); err != nil {
		return err
	}

	blocking, err := s.repo.CountBlockingLots(ctx, id)
	if err != nil {
		return err
	}
	if blocking > 0 {
		return ErrInventoryInUse
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.auditSvc.Log(ctx, actor, "DELETE", "Block", id, "manzana eliminada")
	return nil
}

// SetActive toggles the activation flag, idempotently
func (s *BlockService) SetActive(ctx context.Context, id uint, active bool, actor AuditContext) (*models.Block, error) {
	block, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	block.Active = active
	if err := s.repo.Update(ctx, block); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actor, "STATUS_CHANGE", "Block", id, fmt.Sprintf("activo: %t", active))
	return block, nil
}
