package models

import (
	"time"
)

// Payment represents one scheduled installment of a reservation's payment plan
type Payment struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	ReservationID uint       `gorm:"not null;index" json:"reservation_id"`
	Number        int        `gorm:"not null" json:"number"`
	DueDate       time.Time  `gorm:"type:date;not null;index" json:"due_date"`
	AmountDue     float64    `gorm:"type:decimal(15,2);not null" json:"amount_due"`
	PaidAmount    float64    `gorm:"type:decimal(15,2);default:0" json:"paid_amount"`
	Status        string     `gorm:"default:pending;not null;index" json:"status"`
	PaidAt        *time.Time `json:"paid_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Associations
	Reservation Reservation         `gorm:"foreignKey:ReservationID" json:"-"`
	Allocations []PaymentAllocation `gorm:"foreignKey:PaymentID" json:"allocations,omitempty"`
}

// TableName specifies the table name for Payment
func (Payment) TableName() string {
	return "payments"
}

// Payment status constants
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusCanceled = "canceled"
)

// RemainingAmount returns the unpaid balance of the installment
func (p *Payment) RemainingAmount() float64 {
	remaining := p.AmountDue - p.PaidAmount
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsFullyUnpaid returns true if nothing has been allocated to this installment
func (p *Payment) IsFullyUnpaid() bool {
	return p.Status == PaymentStatusPending && p.PaidAmount == 0
}

// HasRemainingBalance returns true if the installment still owes any amount
func (p *Payment) HasRemainingBalance() bool {
	return p.Status == PaymentStatusPending && p.RemainingAmount() > 0
}

// IsOverdue returns true if a pending installment is past its due date
func (p *Payment) IsOverdue() bool {
	return p.Status == PaymentStatusPending && time.Now().After(p.DueDate)
}

// PaymentResponse is the JSON response format for installments
type PaymentResponse struct {
	ID              uint       `json:"id"`
	ReservationID   uint       `json:"reservation_id"`
	Number          int        `json:"number"`
	DueDate         time.Time  `json:"due_date"`
	AmountDue       float64    `json:"amount_due"`
	PaidAmount      float64    `json:"paid_amount"`
	RemainingAmount float64    `json:"remaining_amount"`
	Status          string     `json:"status"`
	Overdue         bool       `json:"overdue"`
	PaidAt          *time.Time `json:"paid_at"`
}

// ToResponse converts Payment to PaymentResponse
func (p *Payment) ToResponse() PaymentResponse {
	return PaymentResponse{
		ID:              p.ID,
		ReservationID:   p.ReservationID,
		Number:          p.Number,
		DueDate:         p.DueDate,
		AmountDue:       p.AmountDue,
		PaidAmount:      p.PaidAmount,
		RemainingAmount: p.RemainingAmount(),
		Status:          p.Status,
		Overdue:         p.IsOverdue(),
		PaidAt:          p.PaidAt,
	}
}

// PaymentTransaction represents a single real-world payment event,
// possibly covering multiple installments
type PaymentTransaction struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ReservationID uint      `gorm:"not null;index" json:"reservation_id"`
	Amount        float64   `gorm:"type:decimal(15,2);not null" json:"amount"`
	Method        string    `gorm:"not null" json:"method"`
	Reference     *string   `json:"reference"`
	VoucherPath   *string   `json:"-"`
	CreatedByID   uint      `gorm:"not null;index" json:"created_by_id"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Associations
	Reservation Reservation         `gorm:"foreignKey:ReservationID" json:"-"`
	CreatedBy   User                `gorm:"foreignKey:CreatedByID" json:"-"`
	Allocations []PaymentAllocation `gorm:"foreignKey:PaymentTransactionID" json:"allocations,omitempty"`
}

// TableName specifies the table name for PaymentTransaction
func (PaymentTransaction) TableName() string {
	return "payment_transactions"
}

// AllocatedAmount returns the total allocated across installments
func (t *PaymentTransaction) AllocatedAmount() float64 {
	var total float64
	for _, a := range t.Allocations {
		total += a.Amount
	}
	return total
}

// PaymentTransactionResponse is the JSON response format for transactions
type PaymentTransactionResponse struct {
	ID            uint                        `json:"id"`
	ReservationID uint                        `json:"reservation_id"`
	Amount        float64                     `json:"amount"`
	Method        string                      `json:"method"`
	Reference     *string                     `json:"reference"`
	HasVoucher    bool                        `json:"has_voucher"`
	CreatedByID   uint                        `json:"created_by_id"`
	CreatedByName string                      `json:"created_by_name,omitempty"`
	Allocations   []PaymentAllocationResponse `json:"allocations"`
	CreatedAt     time.Time                   `json:"created_at"`
}

// ToResponse converts PaymentTransaction to PaymentTransactionResponse
func (t *PaymentTransaction) ToResponse() PaymentTransactionResponse {
	resp := PaymentTransactionResponse{
		ID:            t.ID,
		ReservationID: t.ReservationID,
		Amount:        t.Amount,
		Method:        t.Method,
		Reference:     t.Reference,
		HasVoucher:    t.VoucherPath != nil && *t.VoucherPath != "",
		CreatedByID:   t.CreatedByID,
		CreatedAt:     t.CreatedAt,
		Allocations:   []PaymentAllocationResponse{},
	}
	if t.CreatedBy.ID != 0 {
		resp.CreatedByName = t.CreatedBy.FullName
	}
	for _, a := range t.Allocations {
		resp.Allocations = append(resp.Allocations, a.ToResponse())
	}
	return resp
}

// PaymentAllocation records how much of a transaction settles one installment
type PaymentAllocation struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	PaymentTransactionID uint      `gorm:"not null;index;uniqueIndex:idx_allocations_txn_payment" json:"payment_transaction_id"`
	PaymentID            uint      `gorm:"not null;index;uniqueIndex:idx_allocations_txn_payment" json:"payment_id"`
	Amount               float64   `gorm:"type:decimal(15,2);not null" json:"amount"`
	CreatedAt            time.Time `json:"created_at"`

	// Associations
	PaymentTransaction PaymentTransaction `gorm:"foreignKey:PaymentTransactionID" json:"-"`
	Payment            Payment            `gorm:"foreignKey:PaymentID" json:"-"`
}

// TableName specifies the table name for PaymentAllocation
func (PaymentAllocation) TableName() string {
	return "payment_allocations"
}

// PaymentAllocationResponse is the JSON response format for allocations
type PaymentAllocationResponse struct {
	ID        uint    `json:"id"`
	PaymentID uint    `json:"payment_id"`
	Number    int     `json:"number,omitempty"`
	Amount    float64 `json:"amount"`
}

// ToResponse converts PaymentAllocation to PaymentAllocationResponse
func (a *PaymentAllocation) ToResponse() PaymentAllocationResponse {
	resp := PaymentAllocationResponse{
		ID:        a.ID,
		PaymentID: a.PaymentID,
		Amount:    a.Amount,
	}
	if a.Payment.ID != 0 {
		resp.Number = a.Payment.Number
	}
	return resp
}

// QuotaStatus summarizes how many installments a new transaction may settle
type QuotaStatus struct {
	MinQuotasToPay       int     `json:"min_quotas_to_pay"`
	MaxQuotasToPay       int     `json:"max_quotas_to_pay"`
	TotalAmountRemaining float64 `json:"total_amount_remaining"`
}
