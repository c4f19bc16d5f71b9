package services

import (
	"context"
	"testing"
	"time"

	"github.com/solterra/solterra-api/internal/config"
	"github.com/solterra/solterra-api/internal/jobs"
	"github.com/solterra/solterra-api/internal/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func newReservationTestService(t *testing.T, repo *mockReservationRepo, qRepo *mockQuotationRepo, lotRepo *mockLotRepo) *ReservationService {
	t.Helper()
	worker := jobs.NewWorker(1)
	t.Cleanup(worker.Shutdown)
	notificationSvc := NewNotificationService(&mockNotificationRepo{}, nil)
	cfg := &config.Config{ReservationExpiryHours: 72}
	return NewReservationService(repo, qRepo, lotRepo, NewScheduleService(), notificationSvc, NewAuditService(nil), worker, cfg)
}

func acceptedQuotation() *models.Quotation {
	return &models.Quotation{
		ID:             2,
		Code:           "COT-2026-00001",
		LeadID:         3,
		LotID:          10,
		Status:         models.QuotationStatusAccepted,
		FinalPrice:     50000,
		DownPaymentPct: 10,
		AmountFinanced: 45000,
		MonthsFinanced: 36,
		Currency:       "PEN",
		ExchangeRate:   1,
		Lead:           models.Lead{ID: 3, ClientID: 7},
	}
}

func TestReservationService_Create_GeneratesScheduleAndReservesLot(t *testing.T) {
	quotation := acceptedQuotation()
	lot := &models.Lot{ID: 10, Status: models.LotStatusQuoted}

	var createdSchedule []models.Payment
	var reservedLot *models.Lot
	repo := &mockReservationRepo{
		mockFindByQuotation: func(ctx context.Context, quotationID uint) (*models.Reservation, error) {
			return nil, gorm.ErrRecordNotFound
		},
		mockCreate: func(ctx context.Context, reservation *models.Reservation, schedule []models.Payment, q *models.Quotation, l *models.Lot) error {
			reservation.ID = 1
			createdSchedule = schedule
			reservedLot = l
			return nil
		},
	}
	qRepo := &mockQuotationRepo{
		mockFindByIDWithDetails: func(ctx context.Context, id uint) (*models.Quotation, error) { return quotation, nil },
	}
	lotRepo := &mockLotRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.Lot, error) { return lot, nil },
	}

	svc := newReservationTestService(t, repo, qRepo, lotRepo)

	reservation, err := svc.Create(context.Background(), ReservationInput{
		QuotationID:   2,
		PaymentMethod: models.PaymentMethodTransfer,
		CoOwners: []models.CoOwner{
			{DocumentType: models.DocumentTypeDNI, DocumentNumber: "12345678", FullName: "Ana Torres"},
		},
	}, AuditContext{UserID: 1})
	assert.NoError(t, err)

	assert.NotEmpty(t, reservation.Reference)
	assert.Equal(t, uint(7), reservation.ClientID)
	assert.Equal(t, 50000.0, reservation.TotalAmountRequired)
	assert.Equal(t, 50000.0, reservation.RemainingAmount)
	assert.Equal(t, models.ReservationStatusIssued, reservation.Status)
	assert.NotNil(t, reservation.ExpiresAt)
	assert.Len(t, reservation.CoOwners, 1)

	assert.Len(t, createdSchedule, 37)
	var sum float64
	for _, p := range createdSchedule {
		sum += p.AmountDue
	}
	assert.InDelta(t, 50000.0, sum, 0.001)

	assert.NotNil(t, reservedLot)
	assert.Equal(t, models.LotStatusReserved, reservedLot.Status)
}

func TestReservationService_Create_RequiresAcceptedQuotation(t *testing.T) {
	quotation := acceptedQuotation()
	quotation.Status = models.QuotationStatusIssued

	qRepo := &mockQuotationRepo{
		mockFindByIDWithDetails: func(ctx context.Context, id uint) (*models.Quotation, error) { return quotation, nil },
	}

	svc := newReservationTestService(t, &mockReservationRepo{}, qRepo, &mockLotRepo{})

	_, err := svc.Create(context.Background(), ReservationInput{
		QuotationID:   2,
		PaymentMethod: models.PaymentMethodCash,
	}, AuditContext{})
	assert.ErrorIs(t, err, ErrQuotationNotReady)
}

func TestReservationService_Create_RejectsDuplicateReservation(t *testing.T) {
	quotation := acceptedQuotation()

	repo := &mockReservationRepo{
		mockFindByQuotation: func(ctx context.Context, quotationID uint) (*models.Reservation, error) {
			return &models.Reservation{ID: 99, QuotationID: quotationID}, nil
		},
	}
	qRepo := &mockQuotationRepo{
		mockFindByIDWithDetails: func(ctx context.Context, id uint) (*models.Quotation, error) { return quotation, nil },
	}

	svc := newReservationTestService(t, repo, qRepo, &mockLotRepo{})

	_, err := svc.Create(context.Background(), ReservationInput{
		QuotationID:   2,
		PaymentMethod: models.PaymentMethodCash,
	}, AuditContext{})
	assert.Error(t, err)
	assert.Equal(t, "Ya existe una reserva para esta cotización", err.Error())
}

func TestReservationService_Void_ReleasesLotAndRecordsReason(t *testing.T) {
	reservation := testReservation()
	reservation.Quotation = *acceptedQuotation()
	lot := &models.Lot{ID: 10, Status: models.LotStatusReserved}

	var releasedLot *models.Lot
	repo := &mockReservationRepo{
		mockFindByIDWithDetails: func(ctx context.Context, id uint) (*models.Reservation, error) { return reservation, nil },
		mockVoid: func(ctx context.Context, r *models.Reservation, l *models.Lot) error {
			releasedLot = l
			return nil
		},
	}
	lotRepo := &mockLotRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.Lot, error) { return lot, nil },
	}

	svc := newReservationTestService(t, repo, &mockQuotationRepo{}, lotRepo)

	voided, err := svc.Void(context.Background(), 1, "cliente desistió", AuditContext{UserID: 1})
	assert.NoError(t, err)
	assert.Equal(t, models.ReservationStatusVoided, voided.Status)
	assert.NotNil(t, voided.VoidedAt)
	assert.Equal(t, "cliente desistió", *voided.VoidReason)
	assert.NotNil(t, releasedLot)
	assert.Equal(t, models.LotStatusAvailable, releasedLot.Status)
}

func TestReservationService_Void_RejectsCompletedReservation(t *testing.T) {
	reservation := testReservation()
	reservation.Status = models.ReservationStatusCompleted
	now := time.Now()
	reservation.CompletedAt = &now

	repo := &mockReservationRepo{
		mockFindByIDWithDetails: func(ctx context.Context, id uint) (*models.Reservation, error) { return reservation, nil },
	}

	svc := newReservationTestService(t, repo, &mockQuotationRepo{}, &mockLotRepo{})

	_, err := svc.Void(context.Background(), 1, "tarde", AuditContext{})
	assert.ErrorIs(t, err, ErrInvalidState)
}
