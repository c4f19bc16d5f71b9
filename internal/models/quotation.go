package models

import (
	"time"
)

// Quotation represents a priced, time-boxed offer for a specific lot.
// Lot price, area and price per m2 are snapshots taken at quote time
// and never re-derived from the lot.
type Quotation struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Code           string    `gorm:"uniqueIndex;not null" json:"code"`
	LeadID         uint      `gorm:"not null;index" json:"lead_id"`
	LotID          uint      `gorm:"not null;index" json:"lot_id"`
	AdvisorID      *uint     `gorm:"index" json:"advisor_id"`
	Status         string    `gorm:"default:issued;index" json:"status"`
	QuotationDate  time.Time `gorm:"type:date;not null" json:"quotation_date"`
	ValidUntil     time.Time `gorm:"type:date;not null;index" json:"valid_until"`
	LotPrice       float64   `gorm:"type:decimal(15,2);not null" json:"lot_price"`
	LotArea        float64   `gorm:"type:decimal(10,2);not null" json:"lot_area"`
	PricePerM2     float64   `gorm:"type:decimal(15,2);not null" json:"price_per_m2"`
	DiscountAmount float64   `gorm:"type:decimal(15,2);default:0" json:"discount_amount"`
	FinalPrice     float64   `gorm:"type:decimal(15,2);not null" json:"final_price"`
	DownPaymentPct float64   `gorm:"type:decimal(5,2);not null" json:"down_payment_pct"`
	AmountFinanced float64   `gorm:"type:decimal(15,2);not null" json:"amount_financed"`
	MonthsFinanced int       `gorm:"not null" json:"months_financed"`
	Currency       string    `gorm:"default:PEN" json:"currency"`
	ExchangeRate   float64   `gorm:"type:decimal(10,4);default:1" json:"exchange_rate"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Associations
	Lead    Lead  `gorm:"foreignKey:LeadID" json:"lead,omitempty"`
	Lot     Lot   `gorm:"foreignKey:LotID" json:"lot,omitempty"`
	Advisor *User `gorm:"foreignKey:AdvisorID" json:"advisor,omitempty"`
}

// TableName specifies the table name for Quotation
func (Quotation) TableName() string {
	return "quotations"
}

// Quotation status constants
const (
	QuotationStatusIssued   = "issued"
	QuotationStatusAccepted = "accepted"
	QuotationStatusCanceled = "canceled"
)

// MayAccept returns true if the quotation can transition to accepted
func (q *Quotation) MayAccept() bool {
	return q.Status == QuotationStatusIssued && !q.IsExpired()
}

// MayCancel returns true if the quotation can be canceled
func (q *Quotation) MayCancel() bool {
	return q.Status == QuotationStatusIssued
}

// IsExpired returns true if the validity window has passed
func (q *Quotation) IsExpired() bool {
	return time.Now().After(q.ValidUntil)
}

// DownPaymentAmount returns the absolute down payment
func (q *Quotation) DownPaymentAmount() float64 {
	return q.FinalPrice * q.DownPaymentPct / 100
}

// QuotationResponse is the JSON response format for quotations
type QuotationResponse struct {
	ID             uint      `json:"id"`
	Code           string    `json:"code"`
	LeadID         uint      `json:"lead_id"`
	LotID          uint      `json:"lot_id"`
	AdvisorID      *uint     `json:"advisor_id"`
	Status         string    `json:"status"`
	QuotationDate  time.Time `json:"quotation_date"`
	ValidUntil     time.Time `json:"valid_until"`
	Expired        bool      `json:"expired"`
	LotPrice       float64   `json:"lot_price"`
	LotArea        float64   `json:"lot_area"`
	PricePerM2     float64   `json:"price_per_m2"`
	DiscountAmount float64   `json:"discount_amount"`
	FinalPrice     float64   `json:"final_price"`
	DownPaymentPct float64   `json:"down_payment_pct"`
	DownPayment    float64   `json:"down_payment"`
	AmountFinanced float64   `json:"amount_financed"`
	MonthsFinanced int       `json:"months_financed"`
	Currency       string    `json:"currency"`
	ExchangeRate   float64   `json:"exchange_rate"`
	CreatedAt      time.Time `json:"created_at"`

	// Related details
	ClientName  string `json:"client_name,omitempty"`
	ClientPhone string `json:"client_phone,omitempty"`
	LotNumber   string `json:"lot_number,omitempty"`
	BlockName   string `json:"block_name,omitempty"`
	ProjectName string `json:"project_name,omitempty"`
	AdvisorName string `json:"advisor_name,omitempty"`
}

// ToResponse converts Quotation to QuotationResponse
func (q *Quotation) ToResponse() QuotationResponse {
	resp := QuotationResponse{
		ID:             q.ID,
		Code:           q.Code,
		LeadID:         q.LeadID,
		LotID:          q.LotID,
		AdvisorID:      q.AdvisorID,
		Status:         q.Status,
		QuotationDate:  q.QuotationDate,
		ValidUntil:     q.ValidUntil,
		Expired:        q.IsExpired(),
		LotPrice:       q.LotPrice,
		LotArea:        q.LotArea,
		PricePerM2:     q.PricePerM2,
		DiscountAmount: q.DiscountAmount,
		FinalPrice:     q.FinalPrice,
		DownPaymentPct: q.DownPaymentPct,
		DownPayment:    q.DownPaymentAmount(),
		AmountFinanced: q.AmountFinanced,
		MonthsFinanced: q.MonthsFinanced,
		Currency:       q.Currency,
		ExchangeRate:   q.ExchangeRate,
		CreatedAt:      q.CreatedAt,
	}

	if q.Lead.ID != 0 && q.Lead.Client.ID != 0 {
		resp.ClientName = q.Lead.Client.DisplayName()
		resp.ClientPhone = q.Lead.Client.Phone
	}
	if q.Lot.ID != 0 {
		resp.LotNumber = q.Lot.Number
		if q.Lot.Block.ID != 0 {
			resp.BlockName = q.Lot.Block.Name
			if q.Lot.Block.Project.ID != 0 {
				resp.ProjectName = q.Lot.Block.Project.Name
			}
		}
	}
	if q.Advisor != nil && q.Advisor.ID != 0 {
		resp.AdvisorName = q.Advisor.FullName
	}

	return resp
}
