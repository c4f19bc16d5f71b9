package models

import (
	"time"
)

// Reservation represents a binding commitment over an accepted quotation
type Reservation struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	Reference           string     `gorm:"uniqueIndex;not null" json:"reference"`
	QuotationID         uint       `gorm:"not null;uniqueIndex" json:"quotation_id"`
	ClientID            uint       `gorm:"not null;index" json:"client_id"`
	Status              string     `gorm:"default:issued;index" json:"status"`
	AmountPaid          float64    `gorm:"type:decimal(15,2);default:0" json:"amount_paid"`
	TotalAmountRequired float64    `gorm:"type:decimal(15,2);not null" json:"total_amount_required"`
	RemainingAmount     float64    `gorm:"type:decimal(15,2);not null" json:"remaining_amount"`
	Currency            string     `gorm:"default:PEN" json:"currency"`
	PaymentMethod       string     `gorm:"not null" json:"payment_method"`
	ExchangeRate        float64    `gorm:"type:decimal(10,4);default:1" json:"exchange_rate"`
	ExpiresAt           *time.Time `gorm:"index" json:"expires_at"`
	CompletedAt         *time.Time `json:"completed_at"`
	VoidedAt            *time.Time `json:"voided_at"`
	VoidReason          *string    `gorm:"type:text" json:"void_reason"`
	CreatedAt           time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`

	// Associations
	Quotation    Quotation            `gorm:"foreignKey:QuotationID" json:"quotation,omitempty"`
	Client       Client               `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	CoOwners     []CoOwner            `gorm:"foreignKey:ReservationID" json:"co_owners,omitempty"`
	Payments     []Payment            `gorm:"foreignKey:ReservationID" json:"payments,omitempty"`
	Transactions []PaymentTransaction `gorm:"foreignKey:ReservationID" json:"transactions,omitempty"`
}

// TableName specifies the table name for Reservation
func (Reservation) TableName() string {
	return "reservations"
}

// Reservation status constants
const (
	ReservationStatusIssued    = "issued"
	ReservationStatusCompleted = "completed"
	ReservationStatusVoided    = "voided"
)

// Payment method constants
const (
	PaymentMethodCash     = "cash"
	PaymentMethodTransfer = "transfer"
	PaymentMethodCard     = "card"
	PaymentMethodDeposit  = "deposit"
)

// MayComplete returns true if the reservation can transition to completed
func (r *Reservation) MayComplete() bool {
	return r.Status == ReservationStatusIssued && r.RemainingAmount <= 0
}

// MayVoid returns true if the reservation can be voided
func (r *Reservation) MayVoid() bool {
	return r.Status == ReservationStatusIssued
}

// IsExpired returns true if the reservation passed its expiry without completing
func (r *Reservation) IsExpired() bool {
	if r.ExpiresAt == nil || r.Status != ReservationStatusIssued {
		return false
	}
	return time.Now().After(*r.ExpiresAt)
}

// CoOwner represents an additional owner registered on a reservation
type CoOwner struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	ReservationID        uint      `gorm:"not null;index" json:"reservation_id"`
	DocumentType         string    `gorm:"not null" json:"document_type"`
	DocumentNumber       string    `gorm:"not null" json:"document_number"`
	FullName             string    `gorm:"not null" json:"full_name"`
	Phone                *string   `json:"phone"`
	SeparationOfProperty bool      `gorm:"default:false" json:"separation_of_property"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`

	// Associations
	Reservation Reservation `gorm:"foreignKey:ReservationID" json:"-"`
}

// TableName specifies the table name for CoOwner
func (CoOwner) TableName() string {
	return "co_owners"
}

// CoOwnerResponse is the JSON response format for co-owners
type CoOwnerResponse struct {
	ID                   uint    `json:"id"`
	DocumentType         string  `json:"document_type"`
	DocumentNumber       string  `json:"document_number"`
	FullName             string  `json:"full_name"`
	Phone                *string `json:"phone"`
	SeparationOfProperty bool    `json:"separation_of_property"`
}

// ToResponse converts CoOwner to CoOwnerResponse
func (c *CoOwner) ToResponse() CoOwnerResponse {
	return CoOwnerResponse{
		ID:                   c.ID,
		DocumentType:         c.DocumentType,
		DocumentNumber:       c.DocumentNumber,
		FullName:             c.FullName,
		Phone:                c.Phone,
		SeparationOfProperty: c.SeparationOfProperty,
	}
}

// ReservationResponse is the JSON response format for reservations
type ReservationResponse struct {
	ID                  uint       `json:"id"`
	Reference           string     `json:"reference"`
	QuotationID         uint       `json:"quotation_id"`
	QuotationCode       string     `json:"quotation_code,omitempty"`
	ClientID            uint       `json:"client_id"`
	ClientName          string     `json:"client_name,omitempty"`
	Status              string     `json:"status"`
	AmountPaid          float64    `json:"amount_paid"`
	TotalAmountRequired float64    `json:"total_amount_required"`
	RemainingAmount     float64    `json:"remaining_amount"`
	Currency            string     `json:"currency"`
	PaymentMethod       string     `json:"payment_method"`
	ExchangeRate        float64    `json:"exchange_rate"`
	ExpiresAt           *time.Time `json:"expires_at"`
	Expired             bool       `json:"expired"`
	CompletedAt         *time.Time `json:"completed_at"`
	VoidedAt            *time.Time `json:"voided_at"`
	VoidReason          *string    `json:"void_reason"`
	CreatedAt           time.Time  `json:"created_at"`

	// Related details
	LotNumber   string            `json:"lot_number,omitempty"`
	BlockName   string            `json:"block_name,omitempty"`
	ProjectName string            `json:"project_name,omitempty"`
	CoOwners    []CoOwnerResponse `json:"co_owners,omitempty"`
}

// ToResponse converts Reservation to ReservationResponse
func (r *Reservation) ToResponse() ReservationResponse {
	resp := ReservationResponse{
		ID:                  r.ID,
		Reference:           r.Reference,
		QuotationID:         r.QuotationID,
		ClientID:            r.ClientID,
		Status:              r.Status,
		AmountPaid:          r.AmountPaid,
		TotalAmountRequired: r.TotalAmountRequired,
		RemainingAmount:     r.RemainingAmount,
		Currency:            r.Currency,
		PaymentMethod:       r.PaymentMethod,
		ExchangeRate:        r.ExchangeRate,
		ExpiresAt:           r.ExpiresAt,
		Expired:             r.IsExpired(),
		CompletedAt:         r.CompletedAt,
		VoidedAt:            r.VoidedAt,
		VoidReason:          r.VoidReason,
		CreatedAt:           r.CreatedAt,
	}

	if r.Client.ID != 0 {
		resp.ClientName = r.Client.DisplayName()
	}
	if r.Quotation.ID != 0 {
		resp.QuotationCode = r.Quotation.Code
		if r.Quotation.Lot.ID != 0 {
			resp.LotNumber = r.Quotation.Lot.Number
			if r.Quotation.Lot.Block.ID != 0 {
				resp.BlockName = r.Quotation.Lot.Block.Name
				if r.Quotation.Lot.Block.Project.ID != 0 {
					resp.ProjectName = r.Quotation.Lot.Block.Project.Name
				}
			}
		}
	}
	for _, co := range r.CoOwners {
		resp.CoOwners = append(resp.CoOwners, co.ToResponse())
	}

	return resp
}
