package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/solterra/solterra-api/internal/jobs"
	"github.com/solterra/solterra-api/internal/models"
	"github.com/solterra/solterra-api/internal/repository"
	"gorm.io/gorm"
)

// UserService handles staff account management
type UserService struct {
	repo            repository.UserRepository
	notificationSvc *NotificationService
	auditSvc        *AuditService
	worker          *jobs.Worker
}

func NewUserService(repo repository.UserRepository, notificationSvc *NotificationService, auditSvc *AuditService, worker *jobs.Worker) *UserService {
	return &UserService{
		repo:            repo,
		notificationSvc: notificationSvc,
		auditSvc:        auditSvc,
		worker:          worker,
	}
}

func (s *UserService) FindByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return user, err
}

func (s *UserService) List(ctx context.Context, query *repository.ListQuery) ([]models.User, int64, error) {
	return s.repo.List(ctx, query)
}

// Create registers a new staff account with a hashed password
func (s *UserService) Create(ctx context.Context, user *models.User, password string, actor AuditContext) error {
	if password == "" {
		return ErrInvalidPassword
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("error al generar hash de contraseña: %w", err)
	}
	user.EncryptedPassword = hashed
	if actor.UserID > 0 {
		user.CreatedBy = &actor.UserID
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return err
	}

	s.auditSvc.Log(ctx, actor, "CREATE", "User", user.ID, fmt.Sprintf("usuario %s creado con rol %s", user.Email, user.Role))

	createdID := user.ID
	fullName := user.FullName
	s.worker.EnqueueAsync(func(jobCtx context.Context) error {
		return s.notificationSvc.NotifyAdmins(jobCtx,
			"Nuevo usuario",
			fmt.Sprintf("Se creó la cuenta %s (#%d)", fullName, createdID),
			models.NotificationTypeNewUser)
	})

	return nil
}

// Update patches the editable profile fields
func (s *UserService) Update(ctx context.Context, id uint, fullName, phone, role *string, actor AuditContext) (*models.User, error) {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if fullName != nil {
		user.FullName = *fullName
	}
	if phone != nil {
		user.Phone = *phone
	}
	if role != nil {
		user.Role = *role
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actor, "UPDATE", "User", user.ID, "perfil actualizado")
	return user, nil
}

// ToggleStatus flips the account between active and inactive
func (s *UserService) ToggleStatus(ctx context.Context, id uint, actor AuditContext) (*models.User, error) {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if user.Status == models.StatusActive {
		user.Status = models.StatusInactive
	} else {
		user.Status = models.StatusActive
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actor, "STATUS_CHANGE", "User", user.ID, "estado: "+user.Status)
	return user, nil
}

// SoftDelete discards the account without destroying its history
func (s *UserService) SoftDelete(ctx context.Context, id uint, actor AuditContext) error {
	if _, err := s.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.auditSvc.Log(ctx, actor, "DELETE", "User", id, "cuenta descartada")
	return nil
}

// ChangePassword verifies the current password and sets a new one
func (s *UserService) ChangePassword(ctx context.Context, id uint, currentPassword, newPassword string) error {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if !VerifyPassword(currentPassword, user.EncryptedPassword) {
		return ErrInvalidPassword
	}

	hashed, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("error al generar hash de contraseña: %w", err)
	}
	user.EncryptedPassword = hashed
	return s.repo.Update(ctx, user)
}
