package services

import (
	"context"
	"testing"

	"github.com/solterra/solterra-api/internal/jobs"
	"github.com/solterra/solterra-api/internal/models"
	"github.com/solterra/solterra-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type mockClientRepo struct {
	repository.ClientRepository
	mockFindByPhone func(ctx context.Context, phone string) (*models.Client, error)
	mockCreate      func(ctx context.Context, client *models.Client) error
	mockUpdate      func(ctx context.Context, client *models.Client) error
}

func (m *mockClientRepo) FindByPhone(ctx context.Context, phone string) (*models.Client, error) {
	return m.mockFindByPhone(ctx, phone)
}

func (m *mockClientRepo) Create(ctx context.Context, client *models.Client) error {
	return m.mockCreate(ctx, client)
}

func (m *mockClientRepo) Update(ctx context.Context, client *models.Client) error {
	if m.mockUpdate != nil {
		return m.mockUpdate(ctx, client)
	}
	return nil
}

func newLeadTestService(t *testing.T, repo *mockLeadRepo, userRepo *mockUserRepo, clientRepo *mockClientRepo) *LeadService {
	t.Helper()
	worker := jobs.NewWorker(1)
	t.Cleanup(worker.Shutdown)
	auditSvc := NewAuditService(nil)
	clientSvc := NewClientService(clientRepo, auditSvc)
	notificationSvc := NewNotificationService(&mockNotificationRepo{}, nil)
	return NewLeadService(repo, userRepo, clientSvc, notificationSvc, auditSvc, worker)
}

func TestLeadService_Capture_ReusesClientByPhone(t *testing.T) {
	email := "nuevo@example.com"
	existing := &models.Client{
		ID:             7,
		DocumentType:   models.DocumentTypeDNI,
		DocumentNumber: "12345678",
		FullName:       "Juan Pérez",
		Phone:          "+51999888777",
	}

	created := false
	clientRepo := &mockClientRepo{
		mockFindByPhone: func(ctx context.Context, phone string) (*models.Client, error) { return existing, nil },
		mockCreate: func(ctx context.Context, client *models.Client) error {
			created = true
			return nil
		},
	}
	var capturedLead *models.Lead
	leadRepo := &mockLeadRepo{mockCreateFn: func(ctx context.Context, lead *models.Lead) error {
		lead.ID = 1
		capturedLead = lead
		return nil
	}}

	svc := newLeadTestService(t, leadRepo, &mockUserRepo{}, clientRepo)

	lead, err := svc.Capture(context.Background(), &models.Client{Phone: "+51999888777", Email: &email}, models.LeadSourceLanding, nil, AuditContext{})
	assert.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, existing.ID, lead.ClientID)
	assert.Equal(t, models.LeadStatusNew, lead.Status)
	assert.NotNil(t, capturedLead)
	// Missing contact data is filled in from the new submission
	assert.Equal(t, &email, existing.Email)
}

func TestLeadService_Capture_CreatesNewClient(t *testing.T) {
	clientRepo := &mockClientRepo{
		mockFindByPhone: func(ctx context.Context, phone string) (*models.Client, error) {
			return nil, gorm.ErrRecordNotFound
		},
		mockCreate: func(ctx context.Context, client *models.Client) error {
			client.ID = 8
			return nil
		},
	}
	leadRepo := &mockLeadRepo{mockCreateFn: func(ctx context.Context, lead *models.Lead) error {
		lead.ID = 2
		return nil
	}}

	svc := newLeadTestService(t, leadRepo, &mockUserRepo{}, clientRepo)

	lead, err := svc.Capture(context.Background(), &models.Client{
		DocumentType:   models.DocumentTypeDNI,
		DocumentNumber: "87654321",
		FullName:       "María López",
		Phone:          "+51911222333",
	}, models.LeadSourceReferral, nil, AuditContext{})
	assert.NoError(t, err)
	assert.Equal(t, uint(8), lead.ClientID)
}

func TestLeadService_Assign_RejectsInactiveAdvisor(t *testing.T) {
	leadRepo := &mockLeadRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.Lead, error) {
			return &models.Lead{ID: 1, Status: models.LeadStatusNew}, nil
		},
	}
	userRepo := &mockUserRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Role: models.RoleAdvisor, Status: models.StatusInactive}, nil
		},
	}

	svc := newLeadTestService(t, leadRepo, userRepo, &mockClientRepo{})

	_, err := svc.Assign(context.Background(), 1, 5, AuditContext{})
	assert.Error(t, err)
	assert.Equal(t, "el asesor no está activo", err.Error())
}

func TestLeadService_Assign_MovesNewLeadToAssigned(t *testing.T) {
	lead := &models.Lead{ID: 1, Status: models.LeadStatusNew, Client: models.Client{FullName: "Juan Pérez"}}
	leadRepo := &mockLeadRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.Lead, error) { return lead, nil },
	}
	userRepo := &mockUserRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Role: models.RoleAdvisor, Status: models.StatusActive}, nil
		},
	}

	svc := newLeadTestService(t, leadRepo, userRepo, &mockClientRepo{})

	assigned, err := svc.Assign(context.Background(), 1, 5, AuditContext{UserID: 2})
	assert.NoError(t, err)
	assert.Equal(t, models.LeadStatusAssigned, assigned.Status)
	assert.Equal(t, uint(5), *assigned.AdvisorID)
}

func TestLeadService_ChangeStatus_RejectsClosedLead(t *testing.T) {
	leadRepo := &mockLeadRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.Lead, error) {
			return &models.Lead{ID: 1, Status: models.LeadStatusClosedWon}, nil
		},
	}

	svc := newLeadTestService(t, leadRepo, &mockUserRepo{}, &mockClientRepo{})

	_, err := svc.ChangeStatus(context.Background(), 1, models.LeadStatusContacted, AuditContext{})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestLeadService_ChangeStatus_RejectsUnknownStatus(t *testing.T) {
	leadRepo := &mockLeadRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.Lead, error) {
			return &models.Lead{ID: 1, Status: models.LeadStatusNew}, nil
		},
	}

	svc := newLeadTestService(t, leadRepo, &mockUserRepo{}, &mockClientRepo{})

	_, err := svc.ChangeStatus(context.Background(), 1, "limbo", AuditContext{})
	assert.Error(t, err)
	assert.Equal(t, "estado de lead inválido", err.Error())
}
