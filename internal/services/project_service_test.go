package services

import (
	"context"
	"testing"

	"github.com/solterra/solterra-api/internal/models"
	"github.com/solterra/solterra-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type mockProjectRepo struct {
	repository.ProjectRepository
	mockFindByID          func(ctx context.Context, id uint) (*models.Project, error)
	mockFindByName        func(ctx context.Context, name string) (*models.Project, error)
	mockCreate            func(ctx context.Context, project *models.Project) error
	mockUpdate            func(ctx context.Context, project *models.Project) error
	mockDelete            func(ctx context.Context, id uint) error
	mockCountBlockingLots func(ctx context.Context, projectID uint) (int64, error)
}

func (m *mockProjectRepo) FindByID(ctx context.Context, id uint) (*models.Project, error) {
	return m.mockFindByID(ctx, id)
}

func (m *mockProjectRepo) FindByName(ctx context.Context, name string) (*models.Project, error) {
	return m.mockFindByName(ctx, name)
}

func (m *mockProjectRepo) Create(ctx context.Context, project *models.Project) error {
	return m.mockCreate(ctx, project)
}

func (m *mockProjectRepo) Update(ctx context.Context, project *models.Project) error {
	if m.mockUpdate != nil {
		return m.mockUpdate(ctx, project)
	}
	return nil
}

func (m *mockProjectRepo) Delete(ctx context.Context, id uint) error {
	if m.mockDelete != nil {
		return m.mockDelete(ctx, id)
	}
	return nil
}

func (m *mockProjectRepo) CountBlockingLots(ctx context.Context, projectID uint) (int64, error) {
	return m.mockCountBlockingLots(ctx, projectID)
}

type mockBlockRepo struct {
	repository.BlockRepository
	mockFindByID             func(ctx context.Context, id uint) (*models.Block, error)
	mockFindByProjectAndName func(ctx context.Context, projectID uint, name string) (*models.Block, error)
	mockCreate               func(ctx context.Context, block *models.Block) error
	mockCountBlockingLots    func(ctx context.Context, blockID uint) (int64, error)
	mockDelete               func(ctx context.Context, id uint) error
}

func (m *mockBlockRepo) FindByID(ctx context.Context, id uint) (*models.Block, error) {
	return m.mockFindByID(ctx, id)
}

func (m *mockBlockRepo) FindByProjectAndName(ctx context.Context, projectID uint, name string) (*models.Block, error) {
	return m.mockFindByProjectAndName(ctx, projectID, name)
}

func (m *mockBlockRepo) Create(ctx context.Context, block *models.Block) error {
	return m.mockCreate(ctx, block)
}

func (m *mockBlockRepo) CountBlockingLots(ctx context.Context, blockID uint) (int64, error) {
	return m.mockCountBlockingLots(ctx, blockID)
}

func (m *mockBlockRepo) Delete(ctx context.Context, id uint) error {
	if m.mockDelete != nil {
		return m.mockDelete(ctx, id)
	}
	return nil
}

func TestProjectService_Create_RejectsDuplicateName(t *testing.T) {
	repo := &mockProjectRepo{
		mockFindByName: func(ctx context.Context, name string) (*models.Project, error) {
			return &models.Project{ID: 1, Name: "Sol Naciente"}, nil
		},
	}
	svc := NewProjectService(repo, NewAuditService(nil))

	err := svc.Create(context.Background(), &models.Project{Name: "sol naciente"}, AuditContext{})
	assert.Error(t, err)
	assert.Equal(t, "Ya existe un proyecto con este nombre", err.Error())
}

func TestProjectService_Delete_BlockedByReservedLots(t *testing.T) {
	repo := &mockProjectRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.Project, error) {
			return &models.Project{ID: 1, Name: "Sol Naciente"}, nil
		},
		mockCountBlockingLots: func(ctx context.Context, projectID uint) (int64, error) { return 2, nil },
	}
	svc := NewProjectService(repo, NewAuditService(nil))

	err := svc.Delete(context.Background(), 1, AuditContext{})
	assert.ErrorIs(t, err, ErrInventoryInUse)
}

func TestProjectService_SetActive_Idempotent(t *testing.T) {
	project := &models.Project{ID: 1, Name: "Sol Naciente", Active: true}
	updates := 0
	repo := &mockProjectRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.Project, error) { return project, nil },
		mockUpdate: func(ctx context.Context, p *models.Project) error {
			updates++
			return nil
		},
	}
	svc := NewProjectService(repo, NewAuditService(nil))

	// Activating an already active project succeeds and still persists
	updated, err := svc.SetActive(context.Background(), 1, true, AuditContext{})
	assert.NoError(t, err)
	assert.True(t, updated.Active)

	updated, err = svc.SetActive(context.Background(), 1, true, AuditContext{})
	assert.NoError(t, err)
	assert.True(t, updated.Active)
	assert.Equal(t, 2, updates)
}

func TestBlockService_Create_RejectsInactiveProject(t *testing.T) {
	projectRepo := &mockProjectRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.Project, error) {
			return &models.Project{ID: 1, Active: false}, nil
		},
	}
	svc := NewBlockService(&mockBlockRepo{}, projectRepo, NewAuditService(nil))

	err := svc.Create(context.Background(), &models.Block{ProjectID: 1, Name: "A"}, AuditContext{})
	assert.ErrorIs(t, err, ErrProjectInactive)
}

func TestBlockService_Create_RejectsDuplicateNameCaseInsensitive(t *testing.T) {
	projectRepo := &mockProjectRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.Project, error) {
			return &models.Project{ID: 1, Active: true}, nil
		},
	}
	blockRepo := &mockBlockRepo{
		mockFindByProjectAndName: func(ctx context.Context, projectID uint, name string) (*models.Block, error) {
			return &models.Block{ID: 5, ProjectID: projectID, Name: "A"}, nil
		},
	}
	svc := NewBlockService(blockRepo, projectRepo, NewAuditService(nil))

	err := svc.Create(context.Background(), &models.Block{ProjectID: 1, Name: "a"}, AuditContext{})
	assert.Error(t, err)
	assert.Equal(t, "Ya existe una manzana con este nombre en el proyecto", err.Error())
}

func TestBlockService_Create_MissingProject(t *testing.T) {
	projectRepo := &mockProjectRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.Project, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := NewBlockService(&mockBlockRepo{}, projectRepo, NewAuditService(nil))

	err := svc.Create(context.Background(), &models.Block{ProjectID: 99, Name: "A"}, AuditContext{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBlockService_Delete_BlockedBySoldLots(t *testing.T) {
	blockRepo := &mockBlockRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.Block, error) {
			return &models.Block{ID: 5, Name: "A"}, nil
		},
		mockCountBlockingLots: func(ctx context.Context, blockID uint) (int64, error) { return 1, nil },
	}
	svc := NewBlockService(blockRepo, &mockProjectRepo{}, NewAuditService(nil))

	err := svc.Delete(context.Background(), 5, AuditContext{})
	assert.ErrorIs(t, err, ErrInventoryInUse)
}
