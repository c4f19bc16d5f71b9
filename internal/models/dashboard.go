package models

// SourceCount is one slice of the leads-by-source breakdown
type SourceCount struct {
	Source     string  `json:"source"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// StatusCount is one slice of a status breakdown
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// MonthRevenue is the collected amount for one month of the selected year
type MonthRevenue struct {
	Month  int     `json:"month"`
	Amount float64 `json:"amount"`
}

// LotDistribution summarizes lot statuses with an occupancy rate
type LotDistribution struct {
	Total         int64   `json:"total"`
	Available     int64   `json:"available"`
	Quoted        int64   `json:"quoted"`
	Reserved      int64   `json:"reserved"`
	Sold          int64   `json:"sold"`
	OccupancyRate float64 `json:"occupancy_rate"`
}

// DashboardSummary aggregates the yearly reporting view
type DashboardSummary struct {
	Year                 int             `json:"year"`
	TotalLeads           int64           `json:"total_leads"`
	LeadsBySource        []SourceCount   `json:"leads_by_source"`
	TotalQuotations      int64           `json:"total_quotations"`
	QuotationsByStatus   []StatusCount   `json:"quotations_by_status"`
	TotalReservations    int64           `json:"total_reservations"`
	ReservationsByStatus []StatusCount   `json:"reservations_by_status"`
	RevenueByMonth       []MonthRevenue  `json:"revenue_by_month"`
	TotalCollected       float64         `json:"total_collected"`
	LotDistribution      LotDistribution `json:"lot_distribution"`
}
