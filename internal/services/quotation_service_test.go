package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/solterra/solterra-api/internal/config"
	"github.com/solterra/solterra-api/internal/jobs"
	"github.com/solterra/solterra-api/internal/models"
	"github.com/solterra/solterra-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type mockQuotationRepo struct {
	repository.QuotationRepository
	mockFindByIDWithDetails func(ctx context.Context, id uint) (*models.Quotation, error)
	mockCreate              func(ctx context.Context, quotation *models.Quotation, lot *models.Lot) error
	mockUpdate              func(ctx context.Context, quotation *models.Quotation) error
	mockUpdateWithLot       func(ctx context.Context, quotation *models.Quotation, lot *models.Lot) error
	mockMaxCodeSequence     func(ctx context.Context, year int) (int, error)
	mockIsDuplicateCode     func(err error) bool
}

func (m *mockQuotationRepo) FindByIDWithDetails(ctx context.Context, id uint) (*models.Quotation, error) {
	return m.mockFindByIDWithDetails(ctx, id)
}

func (m *mockQuotationRepo) Create(ctx context.Context, quotation *models.Quotation, lot *models.Lot) error {
	return m.mockCreate(ctx, quotation, lot)
}

func (m *mockQuotationRepo) Update(ctx context.Context, quotation *models.Quotation) error {
	if m.mockUpdate != nil {
		return m.mockUpdate(ctx, quotation)
	}
	return nil
}

func (m *mockQuotationRepo) UpdateWithLot(ctx context.Context, quotation *models.Quotation, lot *models.Lot) error {
	if m.mockUpdateWithLot != nil {
		return m.mockUpdateWithLot(ctx, quotation, lot)
	}
	return nil
}

func (m *mockQuotationRepo) MaxCodeSequence(ctx context.Context, year int) (int, error) {
	return m.mockMaxCodeSequence(ctx, year)
}

func (m *mockQuotationRepo) IsDuplicateCode(err error) bool {
	if m.mockIsDuplicateCode != nil {
		return m.mockIsDuplicateCode(err)
	}
	return false
}

type mockLotRepo struct {
	repository.LotRepository
	mockFindByID func(ctx context.Context, id uint) (*models.Lot, error)
	mockUpdate   func(ctx context.Context, lot *models.Lot) error
}

func (m *mockLotRepo) FindByID(ctx context.Context, id uint) (*models.Lot, error) {
	return m.mockFindByID(ctx, id)
}

func (m *mockLotRepo) Update(ctx context.Context, lot *models.Lot) error {
	if m.mockUpdate != nil {
		return m.mockUpdate(ctx, lot)
	}
	return nil
}

type mockLeadRepo struct {
	repository.LeadRepository
	mockFindByID func(ctx context.Context, id uint) (*models.Lead, error)
	mockCreateFn func(ctx context.Context, lead *models.Lead) error
	mockUpdate   func(ctx context.Context, lead *models.Lead) error
}

func (m *mockLeadRepo) FindByID(ctx context.Context, id uint) (*models.Lead, error) {
	return m.mockFindByID(ctx, id)
}

func (m *mockLeadRepo) Create(ctx context.Context, lead *models.Lead) error {
	return m.mockCreateFn(ctx, lead)
}

func (m *mockLeadRepo) Update(ctx context.Context, lead *models.Lead) error {
	if m.mockUpdate != nil {
		return m.mockUpdate(ctx, lead)
	}
	return nil
}

type mockNotificationRepo struct {
	repository.NotificationRepository
	mockCreate func(ctx context.Context, notification *models.Notification) error
}

func (m *mockNotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	if m.mockCreate != nil {
		return m.mockCreate(ctx, notification)
	}
	return nil
}

func testLot(price, area float64) *models.Lot {
	return &models.Lot{
		ID:     10,
		Number: "12",
		Area:   area,
		Price:  price,
		Status: models.LotStatusAvailable,
		Block: models.Block{
			ID:   5,
			Name: "A",
			Project: models.Project{
				ID:                     1,
				Name:                   "Sol Naciente",
				Active:                 true,
				Currency:               "PEN",
				DefaultDownPaymentPct:  10,
				DefaultFinancingMonths: 36,
				MaxDiscountPct:         5,
			},
		},
	}
}

func newQuotationTestService(t *testing.T, qRepo *mockQuotationRepo, lotRepo *mockLotRepo, leadRepo *mockLeadRepo) *QuotationService {
	t.Helper()
	worker := jobs.NewWorker(1)
	t.Cleanup(worker.Shutdown)
	notificationSvc := NewNotificationService(&mockNotificationRepo{}, nil)
	cfg := &config.Config{QuotationValidityDays: 30}
	return NewQuotationService(qRepo, lotRepo, leadRepo, notificationSvc, NewAuditService(nil), worker, cfg)
}

func TestQuotationService_Create_SnapshotsAndDefaults(t *testing.T) {
	lot := testLot(50000, 120)
	lead := &models.Lead{ID: 3, ClientID: 7, Status: models.LeadStatusAssigned}

	qRepo := &mockQuotationRepo{
		mockMaxCodeSequence: func(ctx context.Context, year int) (int, error) { return 0, nil },
		mockCreate: func(ctx context.Context, quotation *models.Quotation, l *models.Lot) error {
			quotation.ID = 1
			return nil
		},
	}
	lotRepo := &mockLotRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.Lot, error) { return lot, nil },
	}
	leadRepo := &mockLeadRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.Lead, error) { return lead, nil },
	}

	svc := newQuotationTestService(t, qRepo, lotRepo, leadRepo)

	quotation, err := svc.Create(context.Background(), QuotationInput{LeadID: 3, LotID: 10}, AuditContext{UserID: 1})
	assert.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("COT-%d-00001", time.Now().Year()), quotation.Code)
	assert.Equal(t, 50000.0, quotation.LotPrice)
	assert.Equal(t, 120.0, quotation.LotArea)
	assert.InDelta(t, 416.67, quotation.PricePerM2, 0.01)
	assert.Equal(t, 0.0, quotation.DiscountAmount)
	assert.Equal(t, 50000.0, quotation.FinalPrice)
	assert.Equal(t, 10.0, quotation.DownPaymentPct)
	assert.Equal(t, 45000.0, quotation.AmountFinanced)
	assert.Equal(t, 36, quotation.MonthsFinanced)
	assert.Equal(t, "PEN", quotation.Currency)
	assert.Equal(t, models.QuotationStatusIssued, quotation.Status)
	assert.Equal(t, models.LotStatusQuoted, lot.Status)
	assert.Equal(t, models.LeadStatusQuoted, lead.Status)
}

func TestQuotationService_Create_DiscountAboveProjectCap(t *testing.T) {
	lot := testLot(50000, 120)
	qRepo := &mockQuotationRepo{}
	lotRepo := &mockLotRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.Lot, error) { return lot, nil },
	}
	leadRepo := &mockLeadRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.Lead, error) {
			return &models.Lead{ID: 3, Status: models.LeadStatusNew}, nil
		},
	}

	svc := newQuotationTestService(t, qRepo, lotRepo, leadRepo)

	// Cap is 5% of 50000 = 2500
	_, err := svc.Create(context.Background(), QuotationInput{LeadID: 3, LotID: 10, DiscountAmount: 2600}, AuditContext{})
	assert.ErrorIs(t, err, ErrDiscountTooHigh)
	assert.Equal(t, models.LotStatusAvailable, lot.Status)
}

func TestQuotationService_Create_LotNotAvailable(t *testing.T) {
	lot := testLot(50000, 120)
	lot.Status = models.LotStatusReserved

	svc := newQuotationTestService(t,
		&mockQuotationRepo{},
		&mockLotRepo{mockFindByID: func(ctx context.Context, id uint) (*models.Lot, error) { return lot, nil }},
		&mockLeadRepo{mockFindByID: func(ctx context.Context, id uint) (*models.Lead, error) {
			return &models.Lead{ID: 3, Status: models.LeadStatusNew}, nil
		}},
	)

	_, err := svc.Create(context.Background(), QuotationInput{LeadID: 3, LotID: 10}, AuditContext{})
	assert.ErrorIs(t, err, ErrLotUnavailable)
}

func TestQuotationService_Create_InactiveProject(t *testing.T) {
	lot := testLot(50000, 120)
	lot.Block.Project.Active = false

	svc := newQuotationTestService(t,
		&mockQuotationRepo{},
		&mockLotRepo{mockFindByID: func(ctx context.Context, id uint) (*models.Lot, error) { return lot, nil }},
		&mockLeadRepo{mockFindByID: func(ctx context.Context, id uint) (*models.Lead, error) {
			return &models.Lead{ID: 3, Status: models.LeadStatusNew}, nil
		}},
	)

	_, err := svc.Create(context.Background(), QuotationInput{LeadID: 3, LotID: 10}, AuditContext{})
	assert.ErrorIs(t, err, ErrProjectInactive)
}

func TestQuotationService_Create_RetriesOnCodeCollision(t *testing.T) {
	lot := testLot(50000, 120)
	dupErr := errors.New("duplicate key")

	attempts := 0
	qRepo := &mockQuotationRepo{
		mockMaxCodeSequence: func(ctx context.Context, year int) (int, error) { return attempts, nil },
		mockCreate: func(ctx context.Context, quotation *models.Quotation, l *models.Lot) error {
			attempts++
			if attempts == 1 {
				return dupErr
			}
			return nil
		},
		mockIsDuplicateCode: func(err error) bool { return errors.Is(err, dupErr) },
	}

	svc := newQuotationTestService(t, qRepo,
		&mockLotRepo{mockFindByID: func(ctx context.Context, id uint) (*models.Lot, error) { return lot, nil }},
		&mockLeadRepo{mockFindByID: func(ctx context.Context, id uint) (*models.Lead, error) {
			return &models.Lead{ID: 3, Status: models.LeadStatusNew}, nil
		}},
	)

	quotation, err := svc.Create(context.Background(), QuotationInput{LeadID: 3, LotID: 10}, AuditContext{})
	assert.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, fmt.Sprintf("COT-%d-00002", time.Now().Year()), quotation.Code)
}

func TestQuotationService_Update_RecomputesDerivedAmounts(t *testing.T) {
	lot := testLot(50000, 120)
	quotation := &models.Quotation{
		ID:             1,
		LotID:          10,
		Status:         models.QuotationStatusIssued,
		ValidUntil:     time.Now().AddDate(0, 0, 10),
		LotPrice:       50000,
		FinalPrice:     50000,
		DownPaymentPct: 10,
		AmountFinanced: 45000,
		MonthsFinanced: 36,
	}

	qRepo := &mockQuotationRepo{
		mockFindByIDWithDetails: func(ctx context.Context, id uint) (*models.Quotation, error) { return quotation, nil },
	}
	lotRepo := &mockLotRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.Lot, error) { return lot, nil },
	}

	svc := newQuotationTestService(t, qRepo, lotRepo, &mockLeadRepo{})

	discount := 2000.0
	updated, err := svc.Update(context.Background(), 1, QuotationPatch{DiscountAmount: &discount}, AuditContext{})
	assert.NoError(t, err)
	assert.Equal(t, 48000.0, updated.FinalPrice)
	assert.Equal(t, 43200.0, updated.AmountFinanced)
}

func TestQuotationService_Update_RejectsAcceptedQuotation(t *testing.T) {
	quotation := &models.Quotation{ID: 1, Status: models.QuotationStatusAccepted}
	qRepo := &mockQuotationRepo{
		mockFindByIDWithDetails: func(ctx context.Context, id uint) (*models.Quotation, error) { return quotation, nil },
	}

	svc := newQuotationTestService(t, qRepo, &mockLotRepo{}, &mockLeadRepo{})

	months := 24
	_, err := svc.Update(context.Background(), 1, QuotationPatch{MonthsFinanced: &months}, AuditContext{})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestQuotationService_Accept_Expired(t *testing.T) {
	quotation := &models.Quotation{
		ID:         1,
		Status:     models.QuotationStatusIssued,
		ValidUntil: time.Now().AddDate(0, 0, -1),
	}
	qRepo := &mockQuotationRepo{
		mockFindByIDWithDetails: func(ctx context.Context, id uint) (*models.Quotation, error) { return quotation, nil },
	}

	svc := newQuotationTestService(t, qRepo, &mockLotRepo{}, &mockLeadRepo{})

	_, err := svc.Accept(context.Background(), 1, AuditContext{})
	assert.ErrorIs(t, err, ErrQuotationExpired)
	assert.Equal(t, models.QuotationStatusIssued, quotation.Status)
}

func TestQuotationService_Cancel_ReleasesLot(t *testing.T) {
	lot := testLot(50000, 120)
	lot.Status = models.LotStatusQuoted
	quotation := &models.Quotation{
		ID:         1,
		LotID:      10,
		Status:     models.QuotationStatusIssued,
		ValidUntil: time.Now().AddDate(0, 0, 10),
	}

	var savedLot *models.Lot
	qRepo := &mockQuotationRepo{
		mockFindByIDWithDetails: func(ctx context.Context, id uint) (*models.Quotation, error) { return quotation, nil },
		mockUpdateWithLot: func(ctx context.Context, q *models.Quotation, l *models.Lot) error {
			savedLot = l
			return nil
		},
	}
	lotRepo := &mockLotRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.Lot, error) { return lot, nil },
	}

	svc := newQuotationTestService(t, qRepo, lotRepo, &mockLeadRepo{})

	canceled, err := svc.Cancel(context.Background(), 1, AuditContext{})
	assert.NoError(t, err)
	assert.Equal(t, models.QuotationStatusCanceled, canceled.Status)
	assert.NotNil(t, savedLot)
	assert.Equal(t, models.LotStatusAvailable, savedLot.Status)
}

func TestQuotationService_Create_LeadNotFound(t *testing.T) {
	svc := newQuotationTestService(t,
		&mockQuotationRepo{},
		&mockLotRepo{},
		&mockLeadRepo{mockFindByID: func(ctx context.Context, id uint) (*models.Lead, error) {
			return nil, gorm.ErrRecordNotFound
		}},
	)

	_, err := svc.Create(context.Background(), QuotationInput{LeadID: 99, LotID: 10}, AuditContext{})
	assert.ErrorIs(t, err, ErrNotFound)
}
