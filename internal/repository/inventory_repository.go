package repository

import (
	"context"

	"github.com/solterra/solterra-api/internal/models"
	"gorm.io/gorm"
)

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Project, error)
	FindByName(ctx context.Context, name string) (*models.Project, error)
	Create(ctx context.Context, project *models.Project) error
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.Project, int64, error)
	FindAll(ctx context.Context) ([]models.Project, error)
	CountBlockingLots(ctx context.Context, projectID uint) (int64, error)
}

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) FindByID(ctx context.Context, id uint) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).
		Preload("Blocks.Lots").
		First(&project, id).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) FindByName(ctx context.Context, name string) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?)", name).
		First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		if isDuplicateKeyError(err, "idx_projects_name_ci") {
			return DuplicateError("Ya existe un proyecto con este nombre")
		}
		return err
	}
	return nil
}

func (r *projectRepository) Update(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Save(project).Error
}

func (r *projectRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Project{}, id).Error
}

func (r *projectRepository) List(ctx context.Context, query *ListQuery) ([]models.Project, int64, error) {
	var projects []models.Project
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Project{})

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("name ILIKE ? OR location ILIKE ?", search, search)
	}

	if query.Filters["active"] != "" {
		db = db.Where("active = ?", query.Filters["active"] == "true")
	}

	countDB := db.Session(&gorm.Session{})
	if err := countDB.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = excludePreselected(db, query, "projects.id")
	db = applyListOptions(db, query, "projects.id", "created_at DESC")

	err := db.Preload("Blocks.Lots").Find(&projects).Error
	return projects, total, err
}

func (r *projectRepository) FindAll(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.WithContext(ctx).Find(&projects).Error
	return projects, err
}

// CountBlockingLots counts reserved or sold lots under a project,
// which prevent the project from being deleted.
func (r *projectRepository) CountBlockingLots(ctx context.Context, projectID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Lot{}).
		Joins("JOIN blocks ON blocks.id = lots.block_id").
		Where("blocks.project_id = ? AND lots.status IN ?", projectID,
			[]string{models.LotStatusReserved, models.LotStatusSold}).
		Count(&count).Error
	return count, err
}

// BlockRepository defines the interface for block data access
type BlockRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Block, error)
	FindByProjectAndName(ctx context.Context, projectID uint, name string) (*models.Block, error)
	Create(ctx context.Context, block *models.Block) error
	Update(ctx context.Context, block *models.Block) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, projectID uint, query *ListQuery) ([]models.Block, int64, error)
	CountBlockingLots(ctx context.Context, blockID uint) (int64, error)
}

type blockRepository struct {
	db *gorm.DB
}

// NewBlockRepository creates a new block repository
func NewBlockRepository(db *gorm.DB) BlockRepository {
	return &blockRepository{db: db}
}

func (r *blockRepository) FindByID(ctx context.Context, id uint) (*models.Block, error) {
	var block models.Block
	err := r.db.WithContext(ctx).
		Preload("Project").
		Preload("Lots").
		First(&block, id).Error
	if err != nil {
		return nil, err
	}
	return &block, nil
}

func (r *blockRepository) FindByProjectAndName(ctx context.Context, projectID uint, name string) (*models.Block, error) {
	var block models.Block
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND LOWER(name) = LOWER(?)", projectID, name).
		First(&block).Error
	if err != nil {
		return nil, err
	}
	return &block, nil
}

func (r *blockRepository) Create(ctx context.Context, block *models.Block) error {
	if err := r.db.WithContext(ctx).Create(block).Error; err != nil {
		if isDuplicateKeyError(err, "idx_blocks_project_name_ci") {
			return DuplicateError("Ya existe una manzana con este nombre en el proyecto")
		}
		return err
	}
	return nil
}

func (r *blockRepository) Update(ctx context.Context, block *models.Block) error {
	return r.db.WithContext(ctx).Save(block).Error
}

func (r *blockRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Block{}, id).Error
}

func (r *blockRepository) List(ctx context.Context, projectID uint, query *ListQuery) ([]models.Block, int64, error) {
	var blocks []models.Block
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Block{})

	if projectID > 0 {
		db = db.Where("project_id = ?", projectID)
	}

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("name ILIKE ?", search)
	}

	if query.Filters["active"] != "" {
		db = db.Where("active = ?", query.Filters["active"] == "true")
	}

	countDB := db.Session(&gorm.Session{})
	if err := countDB.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = excludePreselected(db, query, "blocks.id")
	db = applyListOptions(db, query, "blocks.id", "name ASC")

	err := db.Preload("Project").Preload("Lots").Find(&blocks).Error
	return blocks, total, err
}

func (r *blockRepository) CountBlockingLots(ctx context.Context, blockID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Lot{}).
		Where("block_id = ? AND status IN ?", blockID,
			[]string{models.LotStatusReserved, models.LotStatusSold}).
		Count(&count).Error
	return count, err
}

// LotRepository defines the interface for lot data access
type LotRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Lot, error)
	Create(ctx context.Context, lot *models.Lot) error
	Update(ctx context.Context, lot *models.Lot) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.Lot, int64, error)
}

type lotRepository struct {
	db *gorm.DB
}

// NewLotRepository creates a new lot repository
func NewLotRepository(db *gorm.DB) LotRepository {
	return &lotRepository{db: db}
}

func (r *lotRepository) FindByID(ctx context.Context, id uint) (*models.Lot, error) {
	var lot models.Lot
	err := r.db.WithContext(ctx).
		Preload("Block.Project").
		First(&lot, id).Error
	if err != nil {
		return nil, err
	}
	return &lot, nil
}

func (r *lotRepository) Create(ctx context.Context, lot *models.Lot) error {
	if err := r.db.WithContext(ctx).Create(lot).Error; err != nil {
		if isDuplicateKeyError(err, "idx_lots_block_number") {
			return DuplicateError("Ya existe un lote con este número en la manzana")
		}
		return err
	}
	return nil
}

func (r *lotRepository) Update(ctx context.Context, lot *models.Lot) error {
	return r.db.WithContext(ctx).Save(lot).Error
}

func (r *lotRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Lot{}, id).Error
}

func (r *lotRepository) List(ctx context.Context, query *ListQuery) ([]models.Lot, int64, error) {
	var lots []models.Lot
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Lot{})

	if query.Filters["block_id"] != "" {
		db = db.Where("lots.block_id = ?", query.Filters["block_id"])
	}
	if query.Filters["status"] != "" {
		db = db.Where("lots.status = ?", query.Filters["status"])
	}
	if query.Filters["project_id"] != "" {
		db = db.Joins("JOIN blocks ON blocks.id = lots.block_id").
			Where("blocks.project_id = ?", query.Filters["project_id"])
	}

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("lots.number ILIKE ?", search)
	}

	countDB := db.Session(&gorm.Session{})
	if err := countDB.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = excludePreselected(db, query, "lots.id")
	db = applyListOptions(db, query, "lots.id", "lots.number ASC")

	err := db.Preload("Block.Project").Find(&lots).Error
	return lots, total, err
}
