package repository

import (
	"context"
	"fmt"

	"github.com/solterra/solterra-api/internal/models"
	"gorm.io/gorm"
)

// ReservationRepository defines the interface for reservation data access
type ReservationRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Reservation, error)
	FindByIDWithDetails(ctx context.Context, id uint) (*models.Reservation, error)
	FindByQuotation(ctx context.Context, quotationID uint) (*models.Reservation, error)
	Create(ctx context.Context, reservation *models.Reservation, schedule []models.Payment, quotation *models.Quotation, lot *models.Lot) error
	Void(ctx context.Context, reservation *models.Reservation, lot *models.Lot) error
	List(ctx context.Context, query *ListQuery) ([]models.Reservation, int64, error)
	FindExpiredIssued(ctx context.Context) ([]models.Reservation, error)
	FindExpiringWithin(ctx context.Context, hours int) ([]models.Reservation, error)
}

type reservationRepository struct {
	db *gorm.DB
}

// NewReservationRepository creates a new reservation repository
func NewReservationRepository(db *gorm.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) FindByID(ctx context.Context, id uint) (*models.Reservation, error) {
	var reservation models.Reservation
	err := r.db.WithContext(ctx).First(&reservation, id).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *reservationRepository) FindByIDWithDetails(ctx context.Context, id uint) (*models.Reservation, error) {
	var reservation models.Reservation
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Quotation.Lot.Block.Project").
		Preload("CoOwners").
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("number ASC")
		}).
		Preload("Transactions", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Transactions.Allocations.Payment").
		First(&reservation, id).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *reservationRepository) FindByQuotation(ctx context.Context, quotationID uint) (*models.Reservation, error) {
	var reservation models.Reservation
	err := r.db.WithContext(ctx).
		Where("quotation_id = ?", quotationID).
		First(&reservation).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// Create persists the reservation with its co-owners and installment
// schedule, the quotation acceptance and the lot status change in one
// transaction.
func (r *reservationRepository) Create(ctx context.Context, reservation *models.Reservation, schedule []models.Payment, quotation *models.Quotation, lot *models.Lot) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(reservation).Error; err != nil {
			if isAnyDuplicateKeyError(err) {
				return DuplicateError("Ya existe una reserva para esta cotización")
			}
			return err
		}
		if len(schedule) > 0 {
			for i := range schedule {
				schedule[i].ReservationID = reservation.ID
			}
			if err := tx.Create(&schedule).Error; err != nil {
				return err
			}
		}
		if quotation != nil {
			if err := tx.Save(quotation).Error; err != nil {
				return err
			}
		}
		if lot != nil {
			if err := tx.Save(lot).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Void saves the voided reservation, releases the lot and cancels the
// pending installments in one transaction.
func (r *reservationRepository) Void(ctx context.Context, reservation *models.Reservation, lot *models.Lot) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(reservation).Error; err != nil {
			return err
		}
		if lot != nil {
			if err := tx.Save(lot).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.Payment{}).
			Where("reservation_id = ? AND status = ?", reservation.ID, models.PaymentStatusPending).
			Update("status", models.PaymentStatusCanceled).Error
	})
}

func (r *reservationRepository) List(ctx context.Context, query *ListQuery) ([]models.Reservation, int64, error) {
	var reservations []models.Reservation
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Reservation{})

	if query.Filters["status"] != "" {
		db = db.Where("reservations.status = ?", query.Filters["status"])
	}
	if query.Filters["client_id"] != "" {
		db = db.Where("reservations.client_id = ?", query.Filters["client_id"])
	}

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Joins("LEFT JOIN clients ON clients.id = reservations.client_id").
			Joins("LEFT JOIN quotations ON quotations.id = reservations.quotation_id").
			Where("reservations.reference ILIKE ? OR clients.full_name ILIKE ? OR quotations.code ILIKE ?",
				search, search, search)
	}

	countDB := db.Session(&gorm.Session{})
	if err := countDB.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = excludePreselected(db, query, "reservations.id")
	db = applyListOptions(db, query, "reservations.id", "reservations.created_at DESC")

	err := db.
		Preload("Client").
		Preload("Quotation.Lot.Block.Project").
		Preload("CoOwners").
		Find(&reservations).Error
	return reservations, total, err
}

func (r *reservationRepository) FindExpiredIssued(ctx context.Context) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < NOW()", models.ReservationStatusIssued).
		Preload("Quotation.Lot").
		Preload("Client").
		Find(&reservations).Error
	return reservations, err
}

func (r *reservationRepository) FindExpiringWithin(ctx context.Context, hours int) ([]models.Reservation, error) {
	var reservations []models.Reservation
	interval := fmt.Sprintf("%d hours", hours)
	err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at BETWEEN NOW() AND NOW() + INTERVAL '"+interval+"'",
			models.ReservationStatusIssued).
		Preload("Quotation").
		Preload("Client").
		Find(&reservations).Error
	return reservations, err
}
