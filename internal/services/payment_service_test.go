package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/solterra/solterra-api/internal/jobs"
	"github.com/solterra/solterra-api/internal/models"
	"github.com/solterra/solterra-api/internal/repository"
	"github.com/stretchr/testify/assert"
)

type mockPaymentRepo struct {
	repository.PaymentRepository
	mockFindByIDs           func(ctx context.Context, ids []uint) ([]models.Payment, error)
	mockFindByReservation   func(ctx context.Context, reservationID uint) ([]models.Payment, error)
	mockFindTransactionByID func(ctx context.Context, id uint) (*models.PaymentTransaction, error)
	mockRegisterTransaction func(ctx context.Context, txn *models.PaymentTransaction, payments []*models.Payment, reservation *models.Reservation, lot *models.Lot) error
	mockDeleteTransaction   func(ctx context.Context, txn *models.PaymentTransaction, payments []*models.Payment, reservation *models.Reservation, lot *models.Lot) error
}

func (m *mockPaymentRepo) FindByIDs(ctx context.Context, ids []uint) ([]models.Payment, error) {
	return m.mockFindByIDs(ctx, ids)
}

func (m *mockPaymentRepo) FindByReservation(ctx context.Context, reservationID uint) ([]models.Payment, error) {
	return m.mockFindByReservation(ctx, reservationID)
}

func (m *mockPaymentRepo) FindTransactionByID(ctx context.Context, id uint) (*models.PaymentTransaction, error) {
	return m.mockFindTransactionByID(ctx, id)
}

func (m *mockPaymentRepo) RegisterTransaction(ctx context.Context, txn *models.PaymentTransaction, payments []*models.Payment, reservation *models.Reservation, lot *models.Lot) error {
	return m.mockRegisterTransaction(ctx, txn, payments, reservation, lot)
}

func (m *mockPaymentRepo) DeleteTransaction(ctx context.Context, txn *models.PaymentTransaction, payments []*models.Payment, reservation *models.Reservation, lot *models.Lot) error {
	return m.mockDeleteTransaction(ctx, txn, payments, reservation, lot)
}

type mockReservationRepo struct {
	repository.ReservationRepository
	mockFindByID            func(ctx context.Context, id uint) (*models.Reservation, error)
	mockFindByIDWithDetails func(ctx context.Context, id uint) (*models.Reservation, error)
	mockFindByQuotation     func(ctx context.Context, quotationID uint) (*models.Reservation, error)
	mockCreate              func(ctx context.Context, reservation *models.Reservation, schedule []models.Payment, quotation *models.Quotation, lot *models.Lot) error
	mockVoid                func(ctx context.Context, reservation *models.Reservation, lot *models.Lot) error
}

func (m *mockReservationRepo) FindByID(ctx context.Context, id uint) (*models.Reservation, error) {
	return m.mockFindByID(ctx, id)
}

func (m *mockReservationRepo) FindByIDWithDetails(ctx context.Context, id uint) (*models.Reservation, error) {
	return m.mockFindByIDWithDetails(ctx, id)
}

func (m *mockReservationRepo) FindByQuotation(ctx context.Context, quotationID uint) (*models.Reservation, error) {
	return m.mockFindByQuotation(ctx, quotationID)
}

func (m *mockReservationRepo) Create(ctx context.Context, reservation *models.Reservation, schedule []models.Payment, quotation *models.Quotation, lot *models.Lot) error {
	return m.mockCreate(ctx, reservation, schedule, quotation, lot)
}

func (m *mockReservationRepo) Void(ctx context.Context, reservation *models.Reservation, lot *models.Lot) error {
	return m.mockVoid(ctx, reservation, lot)
}

func newPaymentTestService(t *testing.T, repo *mockPaymentRepo, resvRepo *mockReservationRepo, lotRepo *mockLotRepo) *PaymentService {
	t.Helper()
	worker := jobs.NewWorker(1)
	t.Cleanup(worker.Shutdown)
	notificationSvc := NewNotificationService(&mockNotificationRepo{}, nil)
	return NewPaymentService(repo, resvRepo, lotRepo, nil, notificationSvc, NewAuditService(nil), worker)
}

func testReservation() *models.Reservation {
	return &models.Reservation{
		ID:                  1,
		Reference:           "RSV-1",
		QuotationID:         2,
		Status:              models.ReservationStatusIssued,
		AmountPaid:          0,
		TotalAmountRequired: 50000,
		RemainingAmount:     50000,
		Currency:            "PEN",
		Quotation:           models.Quotation{ID: 2, LotID: 10},
	}
}

func TestPaymentService_QuotaStatus(t *testing.T) {
	payments := []models.Payment{
		{ID: 1, ReservationID: 1, Number: 1, AmountDue: 5000, PaidAmount: 5000, Status: models.PaymentStatusPaid},
		{ID: 2, ReservationID: 1, Number: 2, AmountDue: 1250, PaidAmount: 500, Status: models.PaymentStatusPending},
		{ID: 3, ReservationID: 1, Number: 3, AmountDue: 1250, Status: models.PaymentStatusPending},
		{ID: 4, ReservationID: 1, Number: 4, AmountDue: 1250, Status: models.PaymentStatusPending},
	}

	repo := &mockPaymentRepo{
		mockFindByReservation: func(ctx context.Context, reservationID uint) ([]models.Payment, error) {
			return payments, nil
		},
	}
	resvRepo := &mockReservationRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.Reservation, error) { return testReservation(), nil },
	}

	svc := newPaymentTestService(t, repo, resvRepo, &mockLotRepo{})

	status, err := svc.QuotaStatus(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, 2, status.MinQuotasToPay)
	assert.Equal(t, 3, status.MaxQuotasToPay)
	assert.InDelta(t, 3250.0, status.TotalAmountRemaining, 0.001)
}

func TestPaymentService_RegisterTransaction_MarksCoveredInstallmentsPaid(t *testing.T) {
	reservation := testReservation()
	payments := []models.Payment{
		{ID: 1, ReservationID: 1, Number: 1, AmountDue: 5000, Status: models.PaymentStatusPending},
		{ID: 2, ReservationID: 1, Number: 2, AmountDue: 1250, Status: models.PaymentStatusPending},
	}

	var persisted *models.PaymentTransaction
	repo := &mockPaymentRepo{
		mockFindByIDs: func(ctx context.Context, ids []uint) ([]models.Payment, error) { return payments, nil },
		mockRegisterTransaction: func(ctx context.Context, txn *models.PaymentTransaction, p []*models.Payment, r *models.Reservation, l *models.Lot) error {
			txn.ID = 100
			persisted = txn
			assert.Nil(t, l)
			return nil
		},
	}
	resvRepo := &mockReservationRepo{
		mockFindByIDWithDetails: func(ctx context.Context, id uint) (*models.Reservation, error) { return reservation, nil },
	}

	svc := newPaymentTestService(t, repo, resvRepo, &mockLotRepo{})

	txn, err := svc.RegisterTransaction(context.Background(), TransactionInput{
		ReservationID: 1,
		Amount:        5500,
		Method:        models.PaymentMethodTransfer,
		Allocations: []AllocationInput{
			{PaymentID: 1, Amount: 5000},
			{PaymentID: 2, Amount: 500},
		},
	}, AuditContext{UserID: 9})
	assert.NoError(t, err)
	assert.NotNil(t, persisted)
	assert.Equal(t, uint(9), txn.CreatedByID)
	assert.Len(t, txn.Allocations, 2)

	// Installment #1 fully covered, #2 partially
	assert.Equal(t, models.PaymentStatusPaid, payments[0].Status)
	assert.NotNil(t, payments[0].PaidAt)
	assert.Equal(t, models.PaymentStatusPending, payments[1].Status)
	assert.Equal(t, 500.0, payments[1].PaidAmount)

	assert.Equal(t, 5500.0, reservation.AmountPaid)
	assert.Equal(t, 44500.0, reservation.RemainingAmount)
	assert.Equal(t, models.ReservationStatusIssued, reservation.Status)
}

func TestPaymentService_RegisterTransaction_AllocationMismatch(t *testing.T) {
	resvRepo := &mockReservationRepo{
		mockFindByIDWithDetails: func(ctx context.Context, id uint) (*models.Reservation, error) { return testReservation(), nil },
	}
	svc := newPaymentTestService(t, &mockPaymentRepo{}, resvRepo, &mockLotRepo{})

	_, err := svc.RegisterTransaction(context.Background(), TransactionInput{
		ReservationID: 1,
		Amount:        1000,
		Method:        models.PaymentMethodCash,
		Allocations:   []AllocationInput{{PaymentID: 1, Amount: 900}},
	}, AuditContext{})
	assert.ErrorIs(t, err, ErrAllocationMismatch)
}

func TestPaymentService_RegisterTransaction_AllocationExceedsInstallmentBalance(t *testing.T) {
	payments := []models.Payment{
		{ID: 1, ReservationID: 1, Number: 1, AmountDue: 1000, PaidAmount: 800, Status: models.PaymentStatusPending},
	}
	repo := &mockPaymentRepo{
		mockFindByIDs: func(ctx context.Context, ids []uint) ([]models.Payment, error) { return payments, nil },
	}
	resvRepo := &mockReservationRepo{
		mockFindByIDWithDetails: func(ctx context.Context, id uint) (*models.Reservation, error) { return testReservation(), nil },
	}
	svc := newPaymentTestService(t, repo, resvRepo, &mockLotRepo{})

	_, err := svc.RegisterTransaction(context.Background(), TransactionInput{
		ReservationID: 1,
		Amount:        500,
		Method:        models.PaymentMethodCash,
		Allocations:   []AllocationInput{{PaymentID: 1, Amount: 500}},
	}, AuditContext{})
	assert.ErrorIs(t, err, ErrAllocationExceedsBalance)
}

func TestPaymentService_RegisterTransaction_RejectsSettledInstallment(t *testing.T) {
	payments := []models.Payment{
		{ID: 1, ReservationID: 1, Number: 1, AmountDue: 1000, PaidAmount: 1000, Status: models.PaymentStatusPaid},
	}
	repo := &mockPaymentRepo{
		mockFindByIDs: func(ctx context.Context, ids []uint) ([]models.Payment, error) { return payments, nil },
	}
	resvRepo := &mockReservationRepo{
		mockFindByIDWithDetails: func(ctx context.Context, id uint) (*models.Reservation, error) { return testReservation(), nil },
	}
	svc := newPaymentTestService(t, repo, resvRepo, &mockLotRepo{})

	_, err := svc.RegisterTransaction(context.Background(), TransactionInput{
		ReservationID: 1,
		Amount:        100,
		Method:        models.PaymentMethodCash,
		Allocations:   []AllocationInput{{PaymentID: 1, Amount: 100}},
	}, AuditContext{})
	assert.ErrorIs(t, err, ErrInstallmentNotPayable)
}

func TestPaymentService_RegisterTransaction_FullPayoffCompletesAndSellsLot(t *testing.T) {
	reservation := testReservation()
	reservation.TotalAmountRequired = 1000
	reservation.AmountPaid = 900
	reservation.RemainingAmount = 100

	payments := []models.Payment{
		{ID: 5, ReservationID: 1, Number: 37, AmountDue: 1000, PaidAmount: 900, Status: models.PaymentStatusPending},
	}
	lot := &models.Lot{ID: 10, Status: models.LotStatusReserved}

	var soldLot *models.Lot
	repo := &mockPaymentRepo{
		mockFindByIDs: func(ctx context.Context, ids []uint) ([]models.Payment, error) { return payments, nil },
		mockRegisterTransaction: func(ctx context.Context, txn *models.PaymentTransaction, p []*models.Payment, r *models.Reservation, l *models.Lot) error {
			soldLot = l
			return nil
		},
	}
	resvRepo := &mockReservationRepo{
		mockFindByIDWithDetails: func(ctx context.Context, id uint) (*models.Reservation, error) { return reservation, nil },
	}
	lotRepo := &mockLotRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.Lot, error) { return lot, nil },
	}

	svc := newPaymentTestService(t, repo, resvRepo, lotRepo)

	_, err := svc.RegisterTransaction(context.Background(), TransactionInput{
		ReservationID: 1,
		Amount:        100,
		Method:        models.PaymentMethodCash,
		Allocations:   []AllocationInput{{PaymentID: 5, Amount: 100}},
	}, AuditContext{})
	assert.NoError(t, err)

	assert.Equal(t, models.ReservationStatusCompleted, reservation.Status)
	assert.NotNil(t, reservation.CompletedAt)
	assert.Equal(t, 0.0, reservation.RemainingAmount)
	assert.NotNil(t, soldLot)
	assert.Equal(t, models.LotStatusSold, soldLot.Status)
}

func TestPaymentService_RegisterTransaction_RejectsVoidedReservation(t *testing.T) {
	reservation := testReservation()
	reservation.Status = models.ReservationStatusVoided

	resvRepo := &mockReservationRepo{
		mockFindByIDWithDetails: func(ctx context.Context, id uint) (*models.Reservation, error) { return reservation, nil },
	}
	svc := newPaymentTestService(t, &mockPaymentRepo{}, resvRepo, &mockLotRepo{})

	_, err := svc.RegisterTransaction(context.Background(), TransactionInput{
		ReservationID: 1,
		Amount:        100,
		Method:        models.PaymentMethodCash,
		Allocations:   []AllocationInput{{PaymentID: 1, Amount: 100}},
	}, AuditContext{})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestPaymentService_DeleteTransaction_ReversesAllocations(t *testing.T) {
	reservation := testReservation()
	reservation.AmountPaid = 5500
	reservation.RemainingAmount = 44500

	paidAt := time.Now()
	payments := []models.Payment{
		{ID: 1, ReservationID: 1, Number: 1, AmountDue: 5000, PaidAmount: 5000, Status: models.PaymentStatusPaid, PaidAt: &paidAt},
		{ID: 2, ReservationID: 1, Number: 2, AmountDue: 1250, PaidAmount: 500, Status: models.PaymentStatusPending},
	}

	txn := &models.PaymentTransaction{
		ID:            100,
		ReservationID: 1,
		Amount:        5500,
		Allocations: []models.PaymentAllocation{
			{PaymentTransactionID: 100, PaymentID: 1, Amount: 5000},
			{PaymentTransactionID: 100, PaymentID: 2, Amount: 500},
		},
	}

	deleted := false
	repo := &mockPaymentRepo{
		mockFindTransactionByID: func(ctx context.Context, id uint) (*models.PaymentTransaction, error) { return txn, nil },
		mockFindByIDs:           func(ctx context.Context, ids []uint) ([]models.Payment, error) { return payments, nil },
		mockDeleteTransaction: func(ctx context.Context, tx *models.PaymentTransaction, p []*models.Payment, r *models.Reservation, l *models.Lot) error {
			deleted = true
			return nil
		},
	}
	resvRepo := &mockReservationRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.Reservation, error) { return reservation, nil },
	}

	svc := newPaymentTestService(t, repo, resvRepo, &mockLotRepo{})

	err := svc.DeleteTransaction(context.Background(), 100, AuditContext{UserID: 9})
	assert.NoError(t, err)
	assert.True(t, deleted)

	assert.Equal(t, models.PaymentStatusPending, payments[0].Status)
	assert.Nil(t, payments[0].PaidAt)
	assert.Equal(t, 0.0, payments[0].PaidAmount)
	assert.Equal(t, 0.0, payments[1].PaidAmount)

	assert.Equal(t, 0.0, reservation.AmountPaid)
	assert.Equal(t, 50000.0, reservation.RemainingAmount)
}

func TestPaymentService_DeleteTransaction_RejectsCompletedReservation(t *testing.T) {
	reservation := testReservation()
	reservation.Status = models.ReservationStatusCompleted

	repo := &mockPaymentRepo{
		mockFindTransactionByID: func(ctx context.Context, id uint) (*models.PaymentTransaction, error) {
			return &models.PaymentTransaction{ID: 100, ReservationID: 1}, nil
		},
	}
	resvRepo := &mockReservationRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.Reservation, error) { return reservation, nil },
	}

	svc := newPaymentTestService(t, repo, resvRepo, &mockLotRepo{})

	err := svc.DeleteTransaction(context.Background(), 100, AuditContext{})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestPaymentService_VoucherPath_ReturnsStoredPath(t *testing.T) {
	stored := "vouchers/2026/09/recibo.pdf"
	repo := &mockPaymentRepo{
		mockFindTransactionByID: func(ctx context.Context, id uint) (*models.PaymentTransaction, error) {
			return &models.PaymentTransaction{ID: id, VoucherPath: &stored}, nil
		},
	}
	svc := newPaymentTestService(t, repo, &mockReservationRepo{}, &mockLotRepo{})

	path, err := svc.VoucherPath(context.Background(), 9)
	assert.NoError(t, err)

	// The service hands back the path exactly as persisted; resolving it
	// against the storage root is the download site's job, so a prefixed
	// path here would make every download point at a missing file.
	assert.Equal(t, stored, path)
	assert.False(t, filepath.IsAbs(path))
}

func TestPaymentService_VoucherPath_NoVoucher(t *testing.T) {
	repo := &mockPaymentRepo{
		mockFindTransactionByID: func(ctx context.Context, id uint) (*models.PaymentTransaction, error) {
			return &models.PaymentTransaction{ID: id}, nil
		},
	}
	svc := newPaymentTestService(t, repo, &mockReservationRepo{}, &mockLotRepo{})

	_, err := svc.VoucherPath(context.Background(), 9)
	assert.ErrorIs(t, err, ErrNotFound)
}
