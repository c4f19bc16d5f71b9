package models

import (
	"time"
)

// Client represents a buying party, natural (DNI) or juridical (RUC)
type Client struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	DocumentType   string    `gorm:"not null;index:idx_clients_document,unique" json:"document_type"`
	DocumentNumber string    `gorm:"not null;index:idx_clients_document,unique" json:"document_number"`
	FullName       string    `gorm:"not null" json:"full_name"`
	LegalName      *string   `json:"legal_name"`
	Phone          string    `gorm:"not null;index" json:"phone"`
	Email          *string   `json:"email"`
	Address        *string   `json:"address"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Associations
	Leads        []Lead        `gorm:"foreignKey:ClientID" json:"leads,omitempty"`
	Reservations []Reservation `gorm:"foreignKey:ClientID" json:"reservations,omitempty"`
}

// TableName specifies the table name for Client
func (Client) TableName() string {
	return "clients"
}

// Document type constants
const (
	DocumentTypeDNI = "dni"
	DocumentTypeRUC = "ruc"
)

// IsJuridical returns true if the client is a juridical party
func (c *Client) IsJuridical() bool {
	return c.DocumentType == DocumentTypeRUC
}

// DisplayName returns the legal name for juridical clients, full name otherwise
func (c *Client) DisplayName() string {
	if c.IsJuridical() && c.LegalName != nil && *c.LegalName != "" {
		return *c.LegalName
	}
	return c.FullName
}

// ClientResponse is the JSON response format for clients
type ClientResponse struct {
	ID             uint      `json:"id"`
	DocumentType   string    `json:"document_type"`
	DocumentNumber string    `json:"document_number"`
	FullName       string    `json:"full_name"`
	LegalName      *string   `json:"legal_name"`
	Phone          string    `json:"phone"`
	Email          *string   `json:"email"`
	Address        *string   `json:"address"`
	CreatedAt      time.Time `json:"created_at"`
}

// ToResponse converts Client to ClientResponse
func (c *Client) ToResponse() ClientResponse {
	return ClientResponse{
		ID:             c.ID,
		DocumentType:   c.DocumentType,
		DocumentNumber: c.DocumentNumber,
		FullName:       c.FullName,
		LegalName:      c.LegalName,
		Phone:          c.Phone,
		Email:          c.Email,
		Address:        c.Address,
		CreatedAt:      c.CreatedAt,
	}
}

// Lead represents a prospective buyer captured before a quotation exists
type Lead struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ClientID  uint      `gorm:"not null;index" json:"client_id"`
	Source    string    `gorm:"not null;index" json:"source"`
	Status    string    `gorm:"default:new;index" json:"status"`
	AdvisorID *uint     `gorm:"index" json:"advisor_id"`
	Note      *string   `gorm:"type:text" json:"note"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Associations
	Client     Client      `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Advisor    *User       `gorm:"foreignKey:AdvisorID" json:"advisor,omitempty"`
	Quotations []Quotation `gorm:"foreignKey:LeadID" json:"quotations,omitempty"`
}

// TableName specifies the table name for Lead
func (Lead) TableName() string {
	return "leads"
}

// Lead source constants
const (
	LeadSourceLanding  = "landing"
	LeadSourceReferral = "referral"
	LeadSourceWalkIn   = "walk_in"
	LeadSourceSocial   = "social"
	LeadSourceFair     = "fair"
)

// Lead status constants
const (
	LeadStatusNew        = "new"
	LeadStatusAssigned   = "assigned"
	LeadStatusContacted  = "contacted"
	LeadStatusQuoted     = "quoted"
	LeadStatusClosedWon  = "closed_won"
	LeadStatusClosedLost = "closed_lost"
)

// IsClosed returns true if the lead reached a terminal status
func (l *Lead) IsClosed() bool {
	return l.Status == LeadStatusClosedWon || l.Status == LeadStatusClosedLost
}

// LeadResponse is the JSON response format for leads
type LeadResponse struct {
	ID          uint      `json:"id"`
	ClientID    uint      `json:"client_id"`
	ClientName  string    `json:"client_name"`
	ClientPhone string    `json:"client_phone"`
	Source      string    `json:"source"`
	Status      string    `json:"status"`
	AdvisorID   *uint     `json:"advisor_id"`
	AdvisorName string    `json:"advisor_name,omitempty"`
	Note        *string   `json:"note"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToResponse converts Lead to LeadResponse
func (l *Lead) ToResponse() LeadResponse {
	resp := LeadResponse{
		ID:        l.ID,
		ClientID:  l.ClientID,
		Source:    l.Source,
		Status:    l.Status,
		AdvisorID: l.AdvisorID,
		Note:      l.Note,
		CreatedAt: l.CreatedAt,
	}

	if l.Client.ID != 0 {
		resp.ClientName = l.Client.DisplayName()
		resp.ClientPhone = l.Client.Phone
	}
	if l.Advisor != nil && l.Advisor.ID != 0 {
		resp.AdvisorName = l.Advisor.FullName
	}

	return resp
}
