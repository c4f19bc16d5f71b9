package repository

import (
	"context"
	"fmt"

	"github.com/solterra/solterra-api/internal/models"
	"gorm.io/gorm"
)

// QuotationRepository defines the interface for quotation data access
type QuotationRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Quotation, error)
	FindByIDWithDetails(ctx context.Context, id uint) (*models.Quotation, error)
	FindByLead(ctx context.Context, leadID uint) ([]models.Quotation, error)
	Create(ctx context.Context, quotation *models.Quotation, lot *models.Lot) error
	Update(ctx context.Context, quotation *models.Quotation) error
	UpdateWithLot(ctx context.Context, quotation *models.Quotation, lot *models.Lot) error
	List(ctx context.Context, query *ListQuery) ([]models.Quotation, int64, error)
	MaxCodeSequence(ctx context.Context, year int) (int, error)
	FindExpiredIssued(ctx context.Context) ([]models.Quotation, error)
	IsDuplicateCode(err error) bool
}

type quotationRepository struct {
	db *gorm.DB
}

// NewQuotationRepository creates a new quotation repository
func NewQuotationRepository(db *gorm.DB) QuotationRepository {
	return &quotationRepository{db: db}
}

func (r *quotationRepository) FindByID(ctx context.Context, id uint) (*models.Quotation, error) {
	var quotation models.Quotation
	err := r.db.WithContext(ctx).First(&quotation, id).Error
	if err != nil {
		return nil, err
	}
	return &quotation, nil
}

func (r *quotationRepository) FindByIDWithDetails(ctx context.Context, id uint) (*models.Quotation, error) {
	var quotation models.Quotation
	err := r.db.WithContext(ctx).
		Preload("Lead.Client").
		Preload("Lot.Block.Project").
		Preload("Advisor").
		First(&quotation, id).Error
	if err != nil {
		return nil, err
	}
	return &quotation, nil
}

func (r *quotationRepository) FindByLead(ctx context.Context, leadID uint) ([]models.Quotation, error) {
	var quotations []models.Quotation
	err := r.db.WithContext(ctx).
		Where("lead_id = ?", leadID).
		Preload("Lot.Block.Project").
		Order("created_at DESC").
		Find(&quotations).Error
	return quotations, err
}

// Create persists the quotation and the lot status change in one transaction,
// so a code collision rolls back the lot as well.
func (r *quotationRepository) Create(ctx context.Context, quotation *models.Quotation, lot *models.Lot) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(quotation).Error; err != nil {
			return err
		}
		if lot != nil {
			if err := tx.Save(lot).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *quotationRepository) Update(ctx context.Context, quotation *models.Quotation) error {
	return r.db.WithContext(ctx).Save(quotation).Error
}

func (r *quotationRepository) UpdateWithLot(ctx context.Context, quotation *models.Quotation, lot *models.Lot) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(quotation).Error; err != nil {
			return err
		}
		if lot != nil {
			if err := tx.Save(lot).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *quotationRepository) List(ctx context.Context, query *ListQuery) ([]models.Quotation, int64, error) {
	var quotations []models.Quotation
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Quotation{})

	if query.Filters["status"] != "" {
		db = db.Where("quotations.status = ?", query.Filters["status"])
	}
	if query.Filters["lead_id"] != "" {
		db = db.Where("quotations.lead_id = ?", query.Filters["lead_id"])
	}
	if query.Filters["advisor_id"] != "" {
		db = db.Where("quotations.advisor_id = ?", query.Filters["advisor_id"])
	}

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Joins("LEFT JOIN leads ON leads.id = quotations.lead_id").
			Joins("LEFT JOIN clients ON clients.id = leads.client_id").
			Joins("LEFT JOIN lots ON lots.id = quotations.lot_id").
			Where("quotations.code ILIKE ? OR clients.full_name ILIKE ? OR lots.number ILIKE ?",
				search, search, search)
	}

	countDB := db.Session(&gorm.Session{})
	if err := countDB.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = excludePreselected(db, query, "quotations.id")
	db = applyListOptions(db, query, "quotations.id", "quotations.created_at DESC")

	err := db.
		Preload("Lead.Client").
		Preload("Lot.Block.Project").
		Preload("Advisor").
		Find(&quotations).Error
	return quotations, total, err
}

// MaxCodeSequence returns the highest sequence already issued for the year.
// The caller still races with concurrent inserts; the unique index on code
// is the backstop and the caller retries on conflict.
func (r *quotationRepository) MaxCodeSequence(ctx context.Context, year int) (int, error) {
	var maxSeq int
	prefix := fmt.Sprintf("COT-%d-", year)
	err := r.db.WithContext(ctx).
		Model(&models.Quotation{}).
		Select("COALESCE(MAX(CAST(RIGHT(code, 5) AS INTEGER)), 0)").
		Where("code LIKE ?", prefix+"%").
		Scan(&maxSeq).Error
	return maxSeq, err
}

func (r *quotationRepository) FindExpiredIssued(ctx context.Context) ([]models.Quotation, error) {
	var quotations []models.Quotation
	err := r.db.WithContext(ctx).
		Where("status = ? AND valid_until < CURRENT_DATE", models.QuotationStatusIssued).
		Preload("Lot").
		Find(&quotations).Error
	return quotations, err
}

func (r *quotationRepository) IsDuplicateCode(err error) bool {
	return isDuplicateKeyError(err, "idx_quotations_code")
}
