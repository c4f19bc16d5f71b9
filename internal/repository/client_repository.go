package repository

import (
	"context"

	"github.com/solterra/solterra-api/internal/models"
	"gorm.io/gorm"
)

// ClientRepository defines the interface for client data access
type ClientRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Client, error)
	FindByPhone(ctx context.Context, phone string) (*models.Client, error)
	FindByDocument(ctx context.Context, docType, docNumber string) (*models.Client, error)
	Create(ctx context.Context, client *models.Client) error
	Update(ctx context.Context, client *models.Client) error
	List(ctx context.Context, query *ListQuery) ([]models.Client, int64, error)
}

type clientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) FindByID(ctx context.Context, id uint) (*models.Client, error) {
	var client models.Client
	err := r.db.WithContext(ctx).First(&client, id).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) FindByPhone(ctx context.Context, phone string) (*models.Client, error) {
	var client models.Client
	err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) FindByDocument(ctx context.Context, docType, docNumber string) (*models.Client, error) {
	var client models.Client
	err := r.db.WithContext(ctx).
		Where("document_type = ? AND document_number = ?", docType, docNumber).
		First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) Create(ctx context.Context, client *models.Client) error {
	if err := r.db.WithContext(ctx).Create(client).Error; err != nil {
		if isDuplicateKeyError(err, "idx_clients_document") {
			return DuplicateError("Ya existe un cliente con este documento")
		}
		return err
	}
	return nil
}

func (r *clientRepository) Update(ctx context.Context, client *models.Client) error {
	return r.db.WithContext(ctx).Save(client).Error
}

func (r *clientRepository) List(ctx context.Context, query *ListQuery) ([]models.Client, int64, error) {
	var clients []models.Client
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Client{})

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("full_name ILIKE ? OR COALESCE(legal_name, '') ILIKE ? OR phone ILIKE ? OR document_number ILIKE ?",
			search, search, search, search)
	}

	if query.Filters["document_type"] != "" {
		db = db.Where("document_type = ?", query.Filters["document_type"])
	}

	db.Count(&total)

	db = excludePreselected(db, query, "clients.id")
	db = applyListOptions(db, query, "clients.id", "created_at DESC")

	err := db.Find(&clients).Error
	return clients, total, err
}

// LeadRepository defines the interface for lead data access
type LeadRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Lead, error)
	FindByClient(ctx context.Context, clientID uint) ([]models.Lead, error)
	Create(ctx context.Context, lead *models.Lead) error
	Update(ctx context.Context, lead *models.Lead) error
	List(ctx context.Context, query *ListQuery) ([]models.Lead, int64, error)
}

type leadRepository struct {
	db *gorm.DB
}

// NewLeadRepository creates a new lead repository
func NewLeadRepository(db *gorm.DB) LeadRepository {
	return &leadRepository{db: db}
}

func (r *leadRepository) FindByID(ctx context.Context, id uint) (*models.Lead, error) {
	var lead models.Lead
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Advisor").
		First(&lead, id).Error
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *leadRepository) FindByClient(ctx context.Context, clientID uint) ([]models.Lead, error) {
	var leads []models.Lead
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Preload("Advisor").
		Order("created_at DESC").
		Find(&leads).Error
	return leads, err
}

func (r *leadRepository) Create(ctx context.Context, lead *models.Lead) error {
	return r.db.WithContext(ctx).Create(lead).Error
}

func (r *leadRepository) Update(ctx context.Context, lead *models.Lead) error {
	return r.db.WithContext(ctx).Save(lead).Error
}

func (r *leadRepository) List(ctx context.Context, query *ListQuery) ([]models.Lead, int64, error) {
	var leads []models.Lead
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Lead{})

	if query.Filters["status"] != "" {
		db = db.Where("leads.status = ?", query.Filters["status"])
	}
	if query.Filters["source"] != "" {
		db = db.Where("leads.source = ?", query.Filters["source"])
	}
	if query.Filters["advisor_id"] != "" {
		db = db.Where("leads.advisor_id = ?", query.Filters["advisor_id"])
	}

	// JOIN only for filtering; Client is loaded via Preload below
	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Joins("LEFT JOIN clients ON clients.id = leads.client_id").
			Where("clients.full_name ILIKE ? OR COALESCE(clients.legal_name, '') ILIKE ? OR clients.phone ILIKE ?",
				search, search, search)
	}

	countDB := db.Session(&gorm.Session{})
	if err := countDB.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = excludePreselected(db, query, "leads.id")
	db = applyListOptions(db, query, "leads.id", "leads.created_at DESC")

	err := db.
		Preload("Client").
		Preload("Advisor").
		Find(&leads).Error
	return leads, total, err
}
