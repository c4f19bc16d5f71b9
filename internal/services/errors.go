package services

import (
	"errors"

	"github.com/solterra/solterra-api/internal/repository"
)

// Common service errors
var (
	ErrNotFound        = errors.New("registro no encontrado")
	ErrInvalidPassword = errors.New("contraseña inválida")
	ErrUnauthorized    = errors.New("no autorizado")
	ErrInvalidState    = errors.New("transición de estado inválida")

	// ErrDuplicate surfaces unique-constraint violations raised by the
	// repositories, so handlers match either layer with errors.Is.
	ErrDuplicate = repository.ErrDuplicate

	// Inventory errors
	ErrProjectInactive = errors.New("el proyecto está inactivo")
	ErrInventoryInUse  = errors.New("no se puede eliminar: existen lotes reservados o vendidos")
	ErrLotUnavailable  = errors.New("el lote no está disponible")

	// Quotation errors
	ErrDiscountTooHigh   = errors.New("el descuento excede el máximo permitido del proyecto")
	ErrQuotationExpired  = errors.New("la cotización está vencida")
	ErrQuotationNotReady = errors.New("la cotización debe estar aceptada")

	// Payment errors
	ErrAllocationExceedsBalance = errors.New("el monto asignado excede el saldo de la cuota")
	ErrAllocationMismatch       = errors.New("la suma de las asignaciones no coincide con el monto de la transacción")
	ErrInstallmentNotPayable    = errors.New("la cuota no pertenece a la reserva o no admite pagos")
)
