package models

import (
	"time"
)

// Project represents a real estate development
type Project struct {
	ID                     uint      `gorm:"primaryKey" json:"id"`
	Name                   string    `gorm:"not null;uniqueIndex:idx_projects_name_ci,expression:lower(name)" json:"name"`
	Location               string    `gorm:"not null" json:"location"`
	Currency               string    `gorm:"default:PEN" json:"currency"`
	Active                 bool      `gorm:"default:true;index" json:"active"`
	DefaultDownPaymentPct  float64   `gorm:"type:decimal(5,2);default:10" json:"default_down_payment_pct"`
	DefaultFinancingMonths int       `gorm:"default:36" json:"default_financing_months"`
	MaxDiscountPct         float64   `gorm:"type:decimal(5,2);default:0" json:"max_discount_pct"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`

	// Associations
	Blocks []Block `gorm:"foreignKey:ProjectID" json:"blocks,omitempty"`
}

// TableName specifies the table name for Project
func (Project) TableName() string {
	return "projects"
}

// ProjectResponse is the JSON response format for projects
type ProjectResponse struct {
	ID                     uint      `json:"id"`
	Name                   string    `json:"name"`
	Location               string    `json:"location"`
	Currency               string    `json:"currency"`
	Active                 bool      `json:"active"`
	DefaultDownPaymentPct  float64   `json:"default_down_payment_pct"`
	DefaultFinancingMonths int       `json:"default_financing_months"`
	MaxDiscountPct         float64   `json:"max_discount_pct"`
	TotalLots              int       `json:"total_lots"`
	AvailableLots          int       `json:"available_lots"`
	QuotedLots             int       `json:"quoted_lots"`
	ReservedLots           int       `json:"reserved_lots"`
	SoldLots               int       `json:"sold_lots"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// ToResponse converts Project to ProjectResponse.
// Lot counters require Blocks.Lots to be preloaded.
func (p *Project) ToResponse() ProjectResponse {
	var total, available, quoted, reserved, sold int
	for _, block := range p.Blocks {
		for _, lot := range block.Lots {
			total++
			switch lot.Status {
			case LotStatusAvailable:
				available++
			case LotStatusQuoted:
				quoted++
			case LotStatusReserved:
				reserved++
			case LotStatusSold:
				sold++
			}
		}
	}

	return ProjectResponse{
		ID:                     p.ID,
		Name:                   p.Name,
		Location:               p.Location,
		Currency:               p.Currency,
		Active:                 p.Active,
		DefaultDownPaymentPct:  p.DefaultDownPaymentPct,
		DefaultFinancingMonths: p.DefaultFinancingMonths,
		MaxDiscountPct:         p.MaxDiscountPct,
		TotalLots:              total,
		AvailableLots:          available,
		QuotedLots:             quoted,
		ReservedLots:           reserved,
		SoldLots:               sold,
		CreatedAt:              p.CreatedAt,
		UpdatedAt:              p.UpdatedAt,
	}
}

// Block represents a sub-area within a project
type Block struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"not null;index;uniqueIndex:idx_blocks_project_name_ci" json:"project_id"`
	Name      string    `gorm:"not null;uniqueIndex:idx_blocks_project_name_ci,expression:lower(name)" json:"name"`
	Active    bool      `gorm:"default:true;index" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Associations
	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Lots    []Lot   `gorm:"foreignKey:BlockID" json:"lots,omitempty"`
}

// TableName specifies the table name for Block
func (Block) TableName() string {
	return "blocks"
}

// BlockResponse is the JSON response format for blocks
type BlockResponse struct {
	ID            uint      `json:"id"`
	ProjectID     uint      `json:"project_id"`
	ProjectName   string    `json:"project_name,omitempty"`
	Name          string    `json:"name"`
	Active        bool      `json:"active"`
	TotalLots     int       `json:"total_lots"`
	AvailableLots int       `json:"available_lots"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ToResponse converts Block to BlockResponse
func (b *Block) ToResponse() BlockResponse {
	var available int
	for _, lot := range b.Lots {
		if lot.Status == LotStatusAvailable {
			available++
		}
	}

	resp := BlockResponse{
		ID:            b.ID,
		ProjectID:     b.ProjectID,
		Name:          b.Name,
		Active:        b.Active,
		TotalLots:     len(b.Lots),
		AvailableLots: available,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
	if b.Project.ID != 0 {
		resp.ProjectName = b.Project.Name
	}
	return resp
}
