package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"mime/multipart"
	"time"

	"github.com/solterra/solterra-api/internal/jobs"
	"github.com/solterra/solterra-api/internal/models"
	"github.com/solterra/solterra-api/internal/repository"
	"github.com/solterra/solterra-api/internal/statemachine"
	"github.com/solterra/solterra-api/internal/storage"
	"gorm.io/gorm"
)

// allocationTolerance absorbs float error when comparing money sums
const allocationTolerance = 0.01

// AllocationInput assigns part of a transaction to one installment
type AllocationInput struct {
	PaymentID uint
	Amount    float64
}

// TransactionInput carries the caller-provided fields for a payment event
type TransactionInput struct {
	ReservationID uint
	Amount        float64
	Method        string
	Reference     *string
	Allocations   []AllocationInput
}

// PaymentService handles installment collection against reservations
type PaymentService struct {
	repo            repository.PaymentRepository
	reservationRepo repository.ReservationRepository
	lotRepo         repository.LotRepository
	storage         *storage.LocalStorage
	notificationSvc *NotificationService
	auditSvc        *AuditService
	worker          *jobs.Worker
}

func NewPaymentService(repo repository.PaymentRepository, reservationRepo repository.ReservationRepository, lotRepo repository.LotRepository, store *storage.LocalStorage, notificationSvc *NotificationService, auditSvc *AuditService, worker *jobs.Worker) *PaymentService {
	return &PaymentService{
		repo:            repo,
		reservationRepo: reservationRepo,
		lotRepo:         lotRepo,
		storage:         store,
		notificationSvc: notificationSvc,
		auditSvc:        auditSvc,
		worker:          worker,
	}
}

func (s *PaymentService) FindByReservation(ctx context.Context, reservationID uint) ([]models.Payment, error) {
	return s.repo.FindByReservation(ctx, reservationID)
}

func (s *PaymentService) FindTransactionsByReservation(ctx context.Context, reservationID uint) ([]models.PaymentTransaction, error) {
	return s.repo.FindTransactionsByReservation(ctx, reservationID)
}

func (s *PaymentService) FindTransactionByID(ctx context.Context, id uint) (*models.PaymentTransaction, error) {
	txn, err := s.repo.FindTransactionByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return txn, err
}

// QuotaStatus summarizes how many installments the next transaction may
// settle: the minimum counts only untouched installments, the maximum
// counts every installment still owing anything.
func (s *PaymentService) QuotaStatus(ctx context.Context, reservationID uint) (*models.QuotaStatus, error) {
	if _, err := s.reservationRepo.FindByID(ctx, reservationID); errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}

	payments, err := s.repo.FindByReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	status := &models.QuotaStatus{}
	for i := range payments {
		p := &payments[i]
		if p.IsFullyUnpaid() {
			status.MinQuotasToPay++
		}
		if p.HasRemainingBalance() {
			status.MaxQuotasToPay++
			status.TotalAmountRemaining = roundCents(status.TotalAmountRemaining + p.RemainingAmount())
		}
	}
	return status, nil
}

// RegisterTransaction records a payment event and allocates it across the
// chosen installments. Fully covered installments are marked paid, and
// when the reservation balance reaches zero it completes and the lot sells,
// all in one transaction.
func (s *PaymentService) RegisterTransaction(ctx context.Context, input TransactionInput, actor AuditContext) (*models.PaymentTransaction, error) {
	if input.Amount <= 0 {
		return nil, errors.New("el monto debe ser mayor a cero")
	}
	switch input.Method {
	case models.PaymentMethodCash, models.PaymentMethodTransfer, models.PaymentMethodCard, models.PaymentMethodDeposit:
	default:
		return nil, errors.New("método de pago inválido")
	}
	if len(input.Allocations) == 0 {
		return nil, errors.New("debe asignar el pago al menos a una cuota")
	}

	reservation, err := s.reservationRepo.FindByIDWithDetails(ctx, input.ReservationID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if reservation.Status != models.ReservationStatusIssued {
		return nil, ErrInvalidState
	}

	ids := make([]uint, 0, len(input.Allocations))
	seen := make(map[uint]bool, len(input.Allocations))
	var allocated float64
	for _, a := range input.Allocations {
		if seen[a.PaymentID] {
			return nil, errors.New("no se puede asignar dos veces a la misma cuota")
		}
		seen[a.PaymentID] = true
		if a.Amount <= 0 {
			return nil, errors.New("cada asignación debe ser mayor a cero")
		}
		ids = append(ids, a.PaymentID)
		allocated += a.Amount
	}
	if math.Abs(allocated-input.Amount) > allocationTolerance {
		return nil, ErrAllocationMismatch
	}

	payments, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(payments) != len(ids) {
		return nil, ErrNotFound
	}

	byID := make(map[uint]*models.Payment, len(payments))
	for i := range payments {
		p := &payments[i]
		if p.ReservationID != reservation.ID {
			return nil, errors.New("la cuota no pertenece a la reserva")
		}
		if !p.HasRemainingBalance() {
			return nil, ErrInstallmentNotPayable
		}
		byID[p.ID] = p
	}

	now := time.Now()
	txn := &models.PaymentTransaction{
		ReservationID: reservation.ID,
		Amount:        input.Amount,
		Method:        input.Method,
		Reference:     input.Reference,
		CreatedByID:   actor.UserID,
	}

	updated := make([]*models.Payment, 0, len(input.Allocations))
	for _, a := range input.Allocations {
		p := byID[a.PaymentID]
		if a.Amount > p.RemainingAmount()+allocationTolerance {
			return nil, ErrAllocationExceedsBalance
		}
		p.PaidAmount = roundCents(p.PaidAmount + a.Amount)
		if p.RemainingAmount() <= allocationTolerance {
			p.PaidAmount = p.AmountDue
			p.Status = models.PaymentStatusPaid
			paidAt := now
			p.PaidAt = &paidAt
		}
		updated = append(updated, p)
		txn.Allocations = append(txn.Allocations, models.PaymentAllocation{
			PaymentID: a.PaymentID,
			Amount:    a.Amount,
		})
	}

	reservation.AmountPaid = roundCents(reservation.AmountPaid + input.Amount)
	reservation.RemainingAmount = roundCents(reservation.TotalAmountRequired - reservation.AmountPaid)
	if reservation.RemainingAmount <= allocationTolerance {
		reservation.RemainingAmount = 0
	}

	var soldLot *models.Lot
	if reservation.MayComplete() {
		reservationFSM := statemachine.NewReservationFSM(reservation)
		if err := reservationFSM.Complete(ctx); err != nil {
			return nil, err
		}
		completedAt := now
		reservation.CompletedAt = &completedAt

		lot, err := s.lotRepo.FindByID(ctx, reservation.Quotation.LotID)
		if err != nil {
			return nil, err
		}
		lotFSM := statemachine.NewLotFSM(lot)
		if err := lotFSM.Sell(ctx); err != nil {
			return nil, err
		}
		soldLot = lot
	}

	if err := s.repo.RegisterTransaction(ctx, txn, updated, reservation, soldLot); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actor, "CREATE", "PaymentTransaction", txn.ID,
		fmt.Sprintf("pago de %.2f %s registrado en la reserva %s", txn.Amount, reservation.Currency, reservation.Reference))
	if soldLot != nil {
		s.auditSvc.Log(ctx, actor, "STATUS_CHANGE", "Reservation", reservation.ID, "reserva completada, lote vendido")
	}

	if reservation.Quotation.AdvisorID != nil {
		advisorID := *reservation.Quotation.AdvisorID
		reference := reservation.Reference
		amount := txn.Amount
		currency := reservation.Currency
		s.worker.EnqueueAsync(func(jobCtx context.Context) error {
			return s.notificationSvc.NotifyUser(jobCtx, advisorID,
				"Pago registrado",
				fmt.Sprintf("Se registró un pago de %.2f %s en la reserva %s", amount, currency, reference),
				models.NotificationTypePaymentRegistered)
		})
	}

	return txn, nil
}

// DeleteTransaction reverses a mistaken payment event, restoring the
// installments and reservation balance. Transactions on completed or
// voided reservations cannot be deleted.
func (s *PaymentService) DeleteTransaction(ctx context.Context, txnID uint, actor AuditContext) error {
	txn, err := s.FindTransactionByID(ctx, txnID)
	if err != nil {
		return err
	}

	reservation, err := s.reservationRepo.FindByID(ctx, txn.ReservationID)
	if err != nil {
		return err
	}
	if reservation.Status != models.ReservationStatusIssued {
		return ErrInvalidState
	}

	ids := make([]uint, 0, len(txn.Allocations))
	for _, a := range txn.Allocations {
		ids = append(ids, a.PaymentID)
	}
	payments, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[uint]*models.Payment, len(payments))
	for i := range payments {
		byID[payments[i].ID] = &payments[i]
	}

	reversed := make([]*models.Payment, 0, len(txn.Allocations))
	for _, a := range txn.Allocations {
		p, ok := byID[a.PaymentID]
		if !ok {
			return ErrNotFound
		}
		p.PaidAmount = roundCents(p.PaidAmount - a.Amount)
		if p.PaidAmount < 0 {
			p.PaidAmount = 0
		}
		if p.Status == models.PaymentStatusPaid && p.RemainingAmount() > 0 {
			p.Status = models.PaymentStatusPending
			p.PaidAt = nil
		}
		reversed = append(reversed, p)
	}

	reservation.AmountPaid = roundCents(reservation.AmountPaid - txn.Amount)
	if reservation.AmountPaid < 0 {
		reservation.AmountPaid = 0
	}
	reservation.RemainingAmount = roundCents(reservation.TotalAmountRequired - reservation.AmountPaid)

	if err := s.repo.DeleteTransaction(ctx, &models.PaymentTransaction{ID: txn.ID}, reversed, reservation, nil); err != nil {
		return err
	}

	if txn.VoucherPath != nil && *txn.VoucherPath != "" {
		s.storage.Delete(*txn.VoucherPath)
	}

	s.auditSvc.Log(ctx, actor, "DELETE", "PaymentTransaction", txn.ID,
		fmt.Sprintf("pago de %.2f eliminado de la reserva #%d", txn.Amount, txn.ReservationID))
	return nil
}

// AttachVoucher stores the uploaded receipt and links it to the transaction
func (s *PaymentService) AttachVoucher(ctx context.Context, txnID uint, file multipart.File, header *multipart.FileHeader, actor AuditContext) error {
	txn, err := s.FindTransactionByID(ctx, txnID)
	if err != nil {
		return err
	}

	if header.Size > storage.MaxFileSize() {
		return errors.New("el archivo excede el tamaño máximo permitido")
	}
	if !storage.IsValidContentType(header.Header.Get("Content-Type")) {
		return errors.New("tipo de archivo no permitido")
	}

	path, err := s.storage.Upload(file, header, "vouchers")
	if err != nil {
		return err
	}

	if txn.VoucherPath != nil && *txn.VoucherPath != "" {
		s.storage.Delete(*txn.VoucherPath)
	}

	txn.VoucherPath = &path
	if err := s.repo.UpdateTransaction(ctx, txn); err != nil {
		s.storage.Delete(path)
		return err
	}

	s.auditSvc.Log(ctx, actor, "UPDATE", "PaymentTransaction", txn.ID, "comprobante adjuntado")
	return nil
}

// VoucherPath returns the stored path of a transaction's receipt,
// relative to the storage root. Callers resolve it against the store.
func (s *PaymentService) VoucherPath(ctx context.Context, txnID uint) (string, error) {
	txn, err := s.FindTransactionByID(ctx, txnID)
	if err != nil {
		return "", err
	}
	if txn.VoucherPath == nil || *txn.VoucherPath == "" {
		return "", ErrNotFound
	}
	return *txn.VoucherPath, nil
}

// FindOverdue lists pending installments past their due date
func (s *PaymentService) FindOverdue(ctx context.Context) ([]models.Payment, error) {
	return s.repo.FindOverdue(ctx)
}
