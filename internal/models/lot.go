package models

import (
	"time"
)

// Lot represents a sellable property unit within a block
type Lot struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BlockID   uint      `gorm:"not null;index;uniqueIndex:idx_lots_block_number" json:"block_id"`
	Number    string    `gorm:"not null;uniqueIndex:idx_lots_block_number" json:"number"`
	Area      float64   `gorm:"type:decimal(10,2);not null" json:"area"`
	Price     float64   `gorm:"type:decimal(15,2);not null" json:"price"`
	Status    string    `gorm:"default:available;index" json:"status"`
	Active    bool      `gorm:"default:true;index" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Associations
	Block      Block       `gorm:"foreignKey:BlockID" json:"block,omitempty"`
	Quotations []Quotation `gorm:"foreignKey:LotID" json:"quotations,omitempty"`
}

// TableName specifies the table name for Lot
func (Lot) TableName() string {
	return "lots"
}

// Lot status constants
const (
	LotStatusAvailable = "available"
	LotStatusQuoted    = "quoted"
	LotStatusReserved  = "reserved"
	LotStatusSold      = "sold"
)

// PricePerM2 returns the list price per square meter
func (l *Lot) PricePerM2() float64 {
	if l.Area <= 0 {
		return 0
	}
	return l.Price / l.Area
}

// IsAvailable returns true if the lot can be quoted
func (l *Lot) IsAvailable() bool {
	return l.Status == LotStatusAvailable
}

// BlocksDeletion returns true if the lot prevents deleting its block or project
func (l *Lot) BlocksDeletion() bool {
	return l.Status == LotStatusReserved || l.Status == LotStatusSold
}

// LotResponse is the JSON response format for lots
type LotResponse struct {
	ID          uint      `json:"id"`
	BlockID     uint      `json:"block_id"`
	BlockName   string    `json:"block_name,omitempty"`
	ProjectID   uint      `json:"project_id,omitempty"`
	ProjectName string    `json:"project_name,omitempty"`
	Number      string    `json:"number"`
	Area        float64   `json:"area"`
	Price       float64   `json:"price"`
	PricePerM2  float64   `json:"price_per_m2"`
	Status      string    `json:"status"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToResponse converts Lot to LotResponse
func (l *Lot) ToResponse() LotResponse {
	resp := LotResponse{
		ID:         l.ID,
		BlockID:    l.BlockID,
		Number:     l.Number,
		Area:       l.Area,
		Price:      l.Price,
		PricePerM2: l.PricePerM2(),
		Status:     l.Status,
		Active:     l.Active,
		CreatedAt:  l.CreatedAt,
		UpdatedAt:  l.UpdatedAt,
	}

	if l.Block.ID != 0 {
		resp.BlockName = l.Block.Name
		resp.ProjectID = l.Block.ProjectID
		if l.Block.Project.ID != 0 {
			resp.ProjectName = l.Block.Project.Name
		}
	}

	return resp
}
