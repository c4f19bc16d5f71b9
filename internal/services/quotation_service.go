package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/solterra/solterra-api/internal/config"
	"github.com/solterra/solterra-api/internal/jobs"
	"github.com/solterra/solterra-api/internal/models"
	"github.com/solterra/solterra-api/internal/repository"
	"github.com/solterra/solterra-api/internal/statemachine"
	"github.com/solterra/solterra-api/pkg/logger"
	"gorm.io/gorm"
)

// maxCodeAttempts bounds the retry loop when two quotations race for the
// same sequential code
const maxCodeAttempts = 3

// QuotationInput carries the caller-provided fields for a new quotation.
// Pricing snapshots are taken from the lot at creation time.
type QuotationInput struct {
	LeadID         uint
	LotID          uint
	AdvisorID      *uint
	DiscountAmount float64
	DownPaymentPct *float64
	MonthsFinanced *int
	ExchangeRate   *float64
}

// QuotationPatch carries the editable fields of an issued quotation
type QuotationPatch struct {
	DiscountAmount *float64
	DownPaymentPct *float64
	MonthsFinanced *int
	QuotationDate  *time.Time
	AdvisorID      *uint
}

// QuotationService handles the quotation lifecycle
type QuotationService struct {
	repo            repository.QuotationRepository
	lotRepo         repository.LotRepository
	leadRepo        repository.LeadRepository
	notificationSvc *NotificationService
	auditSvc        *AuditService
	worker          *jobs.Worker
	cfg             *config.Config
}

func NewQuotationService(repo repository.QuotationRepository, lotRepo repository.LotRepository, leadRepo repository.LeadRepository, notificationSvc *NotificationService, auditSvc *AuditService, worker *jobs.Worker, cfg *config.Config) *QuotationService {
	return &QuotationService{
		repo:            repo,
		lotRepo:         lotRepo,
		leadRepo:        leadRepo,
		notificationSvc: notificationSvc,
		auditSvc:        auditSvc,
		worker:          worker,
		cfg:             cfg,
	}
}

func (s *QuotationService) FindByID(ctx context.Context, id uint) (*models.Quotation, error) {
	quotation, err := s.repo.FindByIDWithDetails(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return quotation, err
}

func (s *QuotationService) List(ctx context.Context, query *repository.ListQuery) ([]models.Quotation, int64, error) {
	return s.repo.List(ctx, query)
}

func (s *QuotationService) FindByLead(ctx context.Context, leadID uint) ([]models.Quotation, error) {
	return s.repo.FindByLead(ctx, leadID)
}

// Create issues a quotation for an available lot, snapshotting the lot's
// price and area so later repricing never alters issued offers. The lot
// moves to quoted in the same transaction.
func (s *QuotationService) Create(ctx context.Context, input QuotationInput, actor AuditContext) (*models.Quotation, error) {
	lead, err := s.leadRepo.FindByID(ctx, input.LeadID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if lead.IsClosed() {
		return nil, ErrInvalidState
	}

	lot, err := s.lotRepo.FindByID(ctx, input.LotID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	project := lot.Block.Project
	if !project.Active {
		return nil, ErrProjectInactive
	}
	if !lot.IsAvailable() {
		return nil, ErrLotUnavailable
	}

	if input.DiscountAmount < 0 {
		return nil, errors.New("el descuento no puede ser negativo")
	}
	maxDiscount := lot.Price * project.MaxDiscountPct / 100
	if input.DiscountAmount > maxDiscount {
		return nil, ErrDiscountTooHigh
	}

	downPaymentPct := project.DefaultDownPaymentPct
	if input.DownPaymentPct != nil {
		downPaymentPct = *input.DownPaymentPct
	}
	if downPaymentPct < 0 || downPaymentPct > 100 {
		return nil, errors.New("el porcentaje de inicial debe estar entre 0 y 100")
	}

	monthsFinanced := project.DefaultFinancingMonths
	if input.MonthsFinanced != nil {
		monthsFinanced = *input.MonthsFinanced
	}
	if monthsFinanced < 0 {
		return nil, errors.New("los meses de financiamiento no pueden ser negativos")
	}

	exchangeRate := 1.0
	if input.ExchangeRate != nil && *input.ExchangeRate > 0 {
		exchangeRate = *input.ExchangeRate
	}

	now := time.Now()
	finalPrice := roundCents(lot.Price - input.DiscountAmount)

	quotation := &models.Quotation{
		LeadID:         lead.ID,
		LotID:          lot.ID,
		AdvisorID:      input.AdvisorID,
		Status:         models.QuotationStatusIssued,
		QuotationDate:  now,
		ValidUntil:     now.AddDate(0, 0, s.cfg.QuotationValidityDays),
		LotPrice:       lot.Price,
		LotArea:        lot.Area,
		PricePerM2:     lot.PricePerM2(),
		DiscountAmount: input.DiscountAmount,
		FinalPrice:     finalPrice,
		DownPaymentPct: downPaymentPct,
		AmountFinanced: roundCents(finalPrice * (1 - downPaymentPct/100)),
		MonthsFinanced: monthsFinanced,
		Currency:       project.Currency,
		ExchangeRate:   exchangeRate,
	}
	if quotation.AdvisorID == nil {
		quotation.AdvisorID = lead.AdvisorID
	}

	lotFSM := statemachine.NewLotFSM(lot)
	if err := lotFSM.Quote(ctx); err != nil {
		return nil, ErrLotUnavailable
	}

	if err := s.createWithCode(ctx, quotation, lot); err != nil {
		return nil, err
	}

	if !lead.IsClosed() && lead.Status != models.LeadStatusQuoted {
		lead.Status = models.LeadStatusQuoted
		if err := s.leadRepo.Update(ctx, lead); err != nil {
			logger.Error("failed to mark lead as quoted", "lead_id", lead.ID, "error", err)
		}
	}

	s.auditSvc.Log(ctx, actor, "CREATE", "Quotation", quotation.ID,
		fmt.Sprintf("cotización %s emitida para el lote %s", quotation.Code, lot.Number))

	return quotation, nil
}

// createWithCode assigns the next sequential code for the year and retries
// on a code collision with a concurrent insert
func (s *QuotationService) createWithCode(ctx context.Context, quotation *models.Quotation, lot *models.Lot) error {
	year := quotation.QuotationDate.Year()
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		seq, err := s.repo.MaxCodeSequence(ctx, year)
		if err != nil {
			return err
		}
		quotation.Code = fmt.Sprintf("COT-%d-%05d", year, seq+1)

		err = s.repo.Create(ctx, quotation, lot)
		if err == nil {
			return nil
		}
		if !s.repo.IsDuplicateCode(err) {
			return err
		}
	}
	return errors.New("no se pudo generar el código de cotización")
}

// Update patches an issued quotation, recomputing derived amounts only
// when their inputs change. Accepted and canceled quotations are immutable.
func (s *QuotationService) Update(ctx context.Context, id uint, patch QuotationPatch, actor AuditContext) (*models.Quotation, error) {
	quotation, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if quotation.Status != models.QuotationStatusIssued {
		return nil, ErrInvalidState
	}

	recompute := false
	if patch.DiscountAmount != nil {
		if *patch.DiscountAmount < 0 {
			return nil, errors.New("el descuento no puede ser negativo")
		}
		lot, err := s.lotRepo.FindByID(ctx, quotation.LotID)
		if err != nil {
			return nil, err
		}
		maxDiscount := quotation.LotPrice * lot.Block.Project.MaxDiscountPct / 100
		if *patch.DiscountAmount > maxDiscount {
			return nil, ErrDiscountTooHigh
		}
		quotation.DiscountAmount = *patch.DiscountAmount
		recompute = true
	}
	if patch.DownPaymentPct != nil {
		if *patch.DownPaymentPct < 0 || *patch.DownPaymentPct > 100 {
			return nil, errors.New("el porcentaje de inicial debe estar entre 0 y 100")
		}
		quotation.DownPaymentPct = *patch.DownPaymentPct
		recompute = true
	}
	if patch.MonthsFinanced != nil {
		if *patch.MonthsFinanced < 0 {
			return nil, errors.New("los meses de financiamiento no pueden ser negativos")
		}
		quotation.MonthsFinanced = *patch.MonthsFinanced
	}
	if patch.QuotationDate != nil {
		quotation.QuotationDate = *patch.QuotationDate
		quotation.ValidUntil = patch.QuotationDate.AddDate(0, 0, s.cfg.QuotationValidityDays)
	}
	if patch.AdvisorID != nil {
		quotation.AdvisorID = patch.AdvisorID
	}

	if recompute {
		quotation.FinalPrice = roundCents(quotation.LotPrice - quotation.DiscountAmount)
		quotation.AmountFinanced = roundCents(quotation.FinalPrice * (1 - quotation.DownPaymentPct/100))
	}

	if err := s.repo.Update(ctx, quotation); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actor, "UPDATE", "Quotation", quotation.ID, "cotización actualizada")
	return quotation, nil
}

// Accept marks the quotation accepted. The lot stays quoted until the
// reservation is registered.
func (s *QuotationService) Accept(ctx context.Context, id uint, actor AuditContext) (*models.Quotation, error) {
	quotation, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	quotationFSM := statemachine.NewQuotationFSM(quotation)
	if err := quotationFSM.Accept(ctx); err != nil {
		if quotation.Status == models.QuotationStatusIssued && quotation.IsExpired() {
			return nil, ErrQuotationExpired
		}
		return nil, ErrInvalidState
	}

	if err := s.repo.Update(ctx, quotation); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actor, "STATUS_CHANGE", "Quotation", quotation.ID, "cotización aceptada")

	if quotation.AdvisorID != nil {
		advisorID := *quotation.AdvisorID
		code := quotation.Code
		s.worker.EnqueueAsync(func(jobCtx context.Context) error {
			return s.notificationSvc.NotifyUser(jobCtx, advisorID,
				"Cotización aceptada",
				fmt.Sprintf("La cotización %s fue aceptada", code),
				models.NotificationTypeQuotationAccepted)
		})
	}

	return quotation, nil
}

// Cancel voids an issued quotation and returns its lot to the market
func (s *QuotationService) Cancel(ctx context.Context, id uint, actor AuditContext) (*models.Quotation, error) {
	quotation, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	quotationFSM := statemachine.NewQuotationFSM(quotation)
	if err := quotationFSM.Cancel(ctx); err != nil {
		return nil, ErrInvalidState
	}

	lot, err := s.lotRepo.FindByID(ctx, quotation.LotID)
	if err != nil {
		return nil, err
	}

	var releasedLot *models.Lot
	if lot.Status == models.LotStatusQuoted {
		lotFSM := statemachine.NewLotFSM(lot)
		if err := lotFSM.Release(ctx); err != nil {
			return nil, err
		}
		releasedLot = lot
	}

	if err := s.repo.UpdateWithLot(ctx, quotation, releasedLot); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actor, "STATUS_CHANGE", "Quotation", quotation.ID, "cotización cancelada")
	return quotation, nil
}

// ExpireStale cancels issued quotations past their validity date and
// releases their lots. Intended to run as a scheduled job.
func (s *QuotationService) ExpireStale(ctx context.Context) error {
	expired, err := s.repo.FindExpiredIssued(ctx)
	if err != nil {
		return err
	}

	system := AuditContext{}
	for i := range expired {
		quotation := &expired[i]

		quotation.Status = models.QuotationStatusCanceled

		var releasedLot *models.Lot
		if quotation.Lot.ID != 0 && quotation.Lot.Status == models.LotStatusQuoted {
			lot := quotation.Lot
			lotFSM := statemachine.NewLotFSM(&lot)
			if err := lotFSM.Release(ctx); err == nil {
				releasedLot = &lot
			}
		}

		if err := s.repo.UpdateWithLot(ctx, quotation, releasedLot); err != nil {
			logger.Error("failed to expire quotation", "quotation_id", quotation.ID, "error", err)
			continue
		}

		s.auditSvc.Log(ctx, system, "STATUS_CHANGE", "Quotation", quotation.ID, "cotización expirada")

		if quotation.AdvisorID != nil {
			advisorID := *quotation.AdvisorID
			code := quotation.Code
			s.worker.EnqueueAsync(func(jobCtx context.Context) error {
				return s.notificationSvc.NotifyUser(jobCtx, advisorID,
					"Cotización expirada",
					fmt.Sprintf("La cotización %s venció sin ser aceptada", code),
					models.NotificationTypeQuotationExpired)
			})
		}
	}

	if len(expired) > 0 {
		logger.Info("expired stale quotations", "count", len(expired))
	}
	return nil
}
