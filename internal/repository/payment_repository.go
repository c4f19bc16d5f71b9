package repository

import (
	"context"

	"github.com/solterra/solterra-api/internal/models"
	"gorm.io/gorm"
)

// PaymentRepository defines the interface for installment and
// payment-transaction data access
type PaymentRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Payment, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.Payment, error)
	FindByReservation(ctx context.Context, reservationID uint) ([]models.Payment, error)
	Update(ctx context.Context, payment *models.Payment) error
	FindOverdue(ctx context.Context) ([]models.Payment, error)

	FindTransactionByID(ctx context.Context, id uint) (*models.PaymentTransaction, error)
	FindTransactionsByReservation(ctx context.Context, reservationID uint) ([]models.PaymentTransaction, error)
	UpdateTransaction(ctx context.Context, txn *models.PaymentTransaction) error
	RegisterTransaction(ctx context.Context, txn *models.PaymentTransaction, payments []*models.Payment, reservation *models.Reservation, lot *models.Lot) error
	DeleteTransaction(ctx context.Context, txn *models.PaymentTransaction, payments []*models.Payment, reservation *models.Reservation, lot *models.Lot) error
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) FindByID(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).First(&payment, id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.Payment, error) {
	var payments []models.Payment
	if len(ids) == 0 {
		return payments, nil
	}
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("number ASC").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) FindByReservation(ctx context.Context, reservationID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("reservation_id = ?", reservationID).
		Order("number ASC").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

func (r *paymentRepository) FindOverdue(ctx context.Context) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("payments.status = ? AND payments.due_date < CURRENT_DATE", models.PaymentStatusPending).
		Preload("Reservation.Client").
		Order("due_date ASC").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) FindTransactionByID(ctx context.Context, id uint) (*models.PaymentTransaction, error) {
	var txn models.PaymentTransaction
	err := r.db.WithContext(ctx).
		Preload("Allocations.Payment").
		Preload("CreatedBy").
		First(&txn, id).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *paymentRepository) FindTransactionsByReservation(ctx context.Context, reservationID uint) ([]models.PaymentTransaction, error) {
	var txns []models.PaymentTransaction
	err := r.db.WithContext(ctx).
		Where("reservation_id = ?", reservationID).
		Preload("Allocations.Payment").
		Preload("CreatedBy").
		Order("created_at ASC").
		Find(&txns).Error
	return txns, err
}

func (r *paymentRepository) UpdateTransaction(ctx context.Context, txn *models.PaymentTransaction) error {
	return r.db.WithContext(ctx).Omit("Allocations", "CreatedBy", "Reservation").Save(txn).Error
}

// RegisterTransaction persists the transaction with its allocations and
// the recomputed installment and reservation state in one transaction.
// The lot is included when the reservation completes and the lot sells.
func (r *paymentRepository) RegisterTransaction(ctx context.Context, txn *models.PaymentTransaction, payments []*models.Payment, reservation *models.Reservation, lot *models.Lot) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(txn).Error; err != nil {
			return err
		}
		for _, p := range payments {
			if err := tx.Save(p).Error; err != nil {
				return err
			}
		}
		if reservation != nil {
			if err := tx.Save(reservation).Error; err != nil {
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

// DeleteTransaction removes the transaction and its allocations and
// persists the reversed installment and reservation state atomically.
func (r *paymentRepository) DeleteTransaction(ctx context.Context, txn *models.PaymentTransaction, payments []*models.Payment, reservation *models.Reservation, lot *models.Lot) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("payment_transaction_id = ?", txn.ID).
			Delete(&models.PaymentAllocation{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.PaymentTransaction{}, txn.ID).Error; err != nil {
			return err
		}
		for _, p := range payments {
			if err := tx.Save(p).Error; err != nil {
				return err
			}
		}
		if reservation != nil {
			if err := tx.Save(reservation).Error; err != nil {
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
