package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/solterra/solterra-api/internal/config"
	"github.com/solterra/solterra-api/internal/jobs"
	"github.com/solterra/solterra-api/internal/models"
	"github.com/solterra/solterra-api/internal/repository"
	"github.com/solterra/solterra-api/internal/statemachine"
	"github.com/solterra/solterra-api/pkg/logger"
	"gorm.io/gorm"
)

// ReservationInput carries the caller-provided fields for a new reservation
type ReservationInput struct {
	QuotationID   uint
	PaymentMethod string
	ExchangeRate  *float64
	CoOwners      []models.CoOwner
}

// ReservationService handles the reservation lifecycle
type ReservationService struct {
	repo            repository.ReservationRepository
	quotationRepo   repository.QuotationRepository
	lotRepo         repository.LotRepository
	scheduleSvc     *ScheduleService
	notificationSvc *NotificationService
	auditSvc        *AuditService
	worker          *jobs.Worker
	cfg             *config.Config
}

func NewReservationService(repo repository.ReservationRepository, quotationRepo repository.QuotationRepository, lotRepo repository.LotRepository, scheduleSvc *ScheduleService, notificationSvc *NotificationService, auditSvc *AuditService, worker *jobs.Worker, cfg *config.Config) *ReservationService {
	return &ReservationService{
		repo:            repo,
		quotationRepo:   quotationRepo,
		lotRepo:         lotRepo,
		scheduleSvc:     scheduleSvc,
		notificationSvc: notificationSvc,
		auditSvc:        auditSvc,
		worker:          worker,
		cfg:             cfg,
	}
}

func (s *ReservationService) FindByID(ctx context.Context, id uint) (*models.Reservation, error) {
	reservation, err := s.repo.FindByIDWithDetails(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return reservation, err
}

func (s *ReservationService) List(ctx context.Context, query *repository.ListQuery) ([]models.Reservation, int64, error) {
	return s.repo.List(ctx, query)
}

// Create registers a reservation over an accepted quotation. The lot is
// locked as reserved and the installment schedule is generated in the
// same transaction, so a duplicate reservation rolls everything back.
func (s *ReservationService) Create(ctx context.Context, input ReservationInput, actor AuditContext) (*models.Reservation, error) {
	switch input.PaymentMethod {
	case models.PaymentMethodCash, models.PaymentMethodTransfer, models.PaymentMethodCard, models.PaymentMethodDeposit:
	default:
		return nil, errors.New("método de pago inválido")
	}

	quotation, err := s.quotationRepo.FindByIDWithDetails(ctx, input.QuotationID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if quotation.Status != models.QuotationStatusAccepted {
		return nil, ErrQuotationNotReady
	}

	if _, err := s.repo.FindByQuotation(ctx, quotation.ID); err == nil {
		return nil, repository.DuplicateError("Ya existe una reserva para esta cotización")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	lot, err := s.lotRepo.FindByID(ctx, quotation.LotID)
	if err != nil {
		return nil, err
	}
	lotFSM := statemachine.NewLotFSM(lot)
	if err := lotFSM.Reserve(ctx); err != nil {
		return nil, ErrLotUnavailable
	}

	exchangeRate := quotation.ExchangeRate
	if input.ExchangeRate != nil && *input.ExchangeRate > 0 {
		exchangeRate = *input.ExchangeRate
	}

	now := time.Now()
	expiresAt := now.Add(time.Duration(s.cfg.ReservationExpiryHours) * time.Hour)

	reservation := &models.Reservation{
		Reference:           uuid.NewString(),
		QuotationID:         quotation.ID,
		ClientID:            quotation.Lead.ClientID,
		Status:              models.ReservationStatusIssued,
		AmountPaid:          0,
		TotalAmountRequired: quotation.FinalPrice,
		RemainingAmount:     quotation.FinalPrice,
		Currency:            quotation.Currency,
		PaymentMethod:       input.PaymentMethod,
		ExchangeRate:        exchangeRate,
		ExpiresAt:           &expiresAt,
		CoOwners:            input.CoOwners,
	}

	schedule := s.scheduleSvc.GenerateSchedule(quotation, now)

	if err := s.repo.Create(ctx, reservation, schedule, nil, lot); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actor, "CREATE", "Reservation", reservation.ID,
		fmt.Sprintf("reserva %s creada sobre la cotización %s", reservation.Reference, quotation.Code))

	if quotation.AdvisorID != nil {
		advisorID := *quotation.AdvisorID
		reference := reservation.Reference
		s.worker.EnqueueAsync(func(jobCtx context.Context) error {
			return s.notificationSvc.NotifyUser(jobCtx, advisorID,
				"Reserva creada",
				fmt.Sprintf("Se registró la reserva %s", reference),
				models.NotificationTypeReservationCreated)
		})
	}

	return reservation, nil
}

// Void cancels an issued reservation, releases the lot and cancels the
// pending installments
func (s *ReservationService) Void(ctx context.Context, id uint, reason string, actor AuditContext) (*models.Reservation, error) {
	reservation, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	reservationFSM := statemachine.NewReservationFSM(reservation)
	if err := reservationFSM.Void(ctx); err != nil {
		return nil, ErrInvalidState
	}

	now := time.Now()
	reservation.VoidedAt = &now
	if reason != "" {
		reservation.VoidReason = &reason
	}

	lot, err := s.lotRepo.FindByID(ctx, reservation.Quotation.LotID)
	if err != nil {
		return nil, err
	}
	var releasedLot *models.Lot
	if lot.Status == models.LotStatusReserved {
		lotFSM := statemachine.NewLotFSM(lot)
		if err := lotFSM.Release(ctx); err != nil {
			return nil, err
		}
		releasedLot = lot
	}

	if err := s.repo.Void(ctx, reservation, releasedLot); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actor, "STATUS_CHANGE", "Reservation", reservation.ID, "reserva anulada: "+reason)

	if reservation.Quotation.AdvisorID != nil {
		advisorID := *reservation.Quotation.AdvisorID
		reference := reservation.Reference
		s.worker.EnqueueAsync(func(jobCtx context.Context) error {
			return s.notificationSvc.NotifyUser(jobCtx, advisorID,
				"Reserva anulada",
				fmt.Sprintf("La reserva %s fue anulada", reference),
				models.NotificationTypeReservationVoided)
		})
	}

	return reservation, nil
}

// ReleaseExpired voids issued reservations past their expiry and returns
// their lots to the market. Intended to run as a scheduled job.
func (s *ReservationService) ReleaseExpired(ctx context.Context) error {
	expired, err := s.repo.FindExpiredIssued(ctx)
	if err != nil {
		return err
	}

	reason := "reserva expirada sin completar el pago"
	for i := range expired {
		reservation := &expired[i]

		reservation.Status = models.ReservationStatusVoided
		now := time.Now()
		reservation.VoidedAt = &now
		reservation.VoidReason = &reason

		var releasedLot *models.Lot
		if reservation.Quotation.Lot.ID != 0 && reservation.Quotation.Lot.Status == models.LotStatusReserved {
			lot := reservation.Quotation.Lot
			lotFSM := statemachine.NewLotFSM(&lot)
			if err := lotFSM.Release(ctx); err == nil {
				releasedLot = &lot
			}
		}

		if err := s.repo.Void(ctx, reservation, releasedLot); err != nil {
			logger.Error("failed to release expired reservation", "reservation_id", reservation.ID, "error", err)
			continue
		}

		s.auditSvc.Log(ctx, AuditContext{}, "STATUS_CHANGE", "Reservation", reservation.ID, "reserva expirada")

		if reservation.Quotation.AdvisorID != nil {
			advisorID := *reservation.Quotation.AdvisorID
			reference := reservation.Reference
			s.worker.EnqueueAsync(func(jobCtx context.Context) error {
				return s.notificationSvc.NotifyUser(jobCtx, advisorID,
					"Reserva anulada",
					fmt.Sprintf("La reserva %s expiró sin completar el pago", reference),
					models.NotificationTypeReservationVoided)
			})
		}
	}

	if len(expired) > 0 {
		logger.Info("released expired reservations", "count", len(expired))
	}
	return nil
}

// NotifyExpiring warns advisors about reservations expiring within the
// next day. Intended to run as a scheduled job.
func (s *ReservationService) NotifyExpiring(ctx context.Context) error {
	expiring, err := s.repo.FindExpiringWithin(ctx, 24)
	if err != nil {
		return err
	}

	for i := range expiring {
		reservation := &expiring[i]
		if reservation.Quotation.AdvisorID == nil {
			continue
		}
		advisorID := *reservation.Quotation.AdvisorID
		reference := reservation.Reference
		clientName := reservation.Client.DisplayName()
		s.worker.EnqueueAsync(func(jobCtx context.Context) error {
			return s.notificationSvc.NotifyUser(jobCtx, advisorID,
				"Reserva por vencer",
				fmt.Sprintf("La reserva %s de %s vence en menos de 24 horas", reference, clientName),
				models.NotificationTypeReservationExpiring)
		})
	}

	return nil
}
