package repository

import (
	"context"

	"github.com/solterra/solterra-api/internal/models"
	"gorm.io/gorm"
)

// DashboardRepository defines the read-only aggregation queries for reporting
type DashboardRepository interface {
	CountLeadsBySource(ctx context.Context, year int) ([]models.SourceCount, int64, error)
	CountQuotationsByStatus(ctx context.Context, year int) ([]models.StatusCount, int64, error)
	CountReservationsByStatus(ctx context.Context, year int) ([]models.StatusCount, int64, error)
	RevenueByMonth(ctx context.Context, year int) ([]models.MonthRevenue, float64, error)
	LotDistribution(ctx context.Context) (*models.LotDistribution, error)
}

type dashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository creates a new dashboard repository
func NewDashboardRepository(db *gorm.DB) DashboardRepository {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) CountLeadsBySource(ctx context.Context, year int) ([]models.SourceCount, int64, error) {
	rows, err := r.db.WithContext(ctx).
		Model(&models.Lead{}).
		Select("source, count(*) as count").
		Where("EXTRACT(YEAR FROM created_at) = ?", year).
		Group("source").
		Order("count DESC").
		Rows()
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var counts []models.SourceCount
	var total int64
	for rows.Next() {
		var sc models.SourceCount
		if err := rows.Scan(&sc.Source, &sc.Count); err != nil {
			return nil, 0, err
		}
		total += sc.Count
		counts = append(counts, sc)
	}
	return counts, total, nil
}

func (r *dashboardRepository) CountQuotationsByStatus(ctx context.Context, year int) ([]models.StatusCount, int64, error) {
	return r.countByStatus(ctx, &models.Quotation{}, year)
}

func (r *dashboardRepository) CountReservationsByStatus(ctx context.Context, year int) ([]models.StatusCount, int64, error) {
	return r.countByStatus(ctx, &models.Reservation{}, year)
}

func (r *dashboardRepository) countByStatus(ctx context.Context, model interface{}, year int) ([]models.StatusCount, int64, error) {
	rows, err := r.db.WithContext(ctx).
		Model(model).
		Select("status, count(*) as count").
		Where("EXTRACT(YEAR FROM created_at) = ?", year).
		Group("status").
		Rows()
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var counts []models.StatusCount
	var total int64
	for rows.Next() {
		var sc models.StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, 0, err
		}
		total += sc.Count
		counts = append(counts, sc)
	}
	return counts, total, nil
}

// RevenueByMonth sums registered payment transactions per month of the year.
func (r *dashboardRepository) RevenueByMonth(ctx context.Context, year int) ([]models.MonthRevenue, float64, error) {
	rows, err := r.db.WithContext(ctx).
		Model(&models.PaymentTransaction{}).
		Select("EXTRACT(MONTH FROM created_at)::int as month, COALESCE(SUM(amount), 0) as amount").
		Where("EXTRACT(YEAR FROM created_at) = ?", year).
		Group("month").
		Order("month ASC").
		Rows()
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	byMonth := make(map[int]float64)
	var total float64
	for rows.Next() {
		var month int
		var amount float64
		if err := rows.Scan(&month, &amount); err != nil {
			return nil, 0, err
		}
		byMonth[month] = amount
		total += amount
	}

	// Always return the full 12-month series
	revenue := make([]models.MonthRevenue, 0, 12)
	for m := 1; m <= 12; m++ {
		revenue = append(revenue, models.MonthRevenue{Month: m, Amount: byMonth[m]})
	}
	return revenue, total, nil
}

func (r *dashboardRepository) LotDistribution(ctx context.Context) (*models.LotDistribution, error) {
	rows, err := r.db.WithContext(ctx).
		Model(&models.Lot{}).
		Select("status, count(*) as count").
		Group("status").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dist := &models.LotDistribution{}
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		dist.Total += count
		switch status {
		case models.LotStatusAvailable:
			dist.Available = count
		case models.LotStatusQuoted:
			dist.Quoted = count
		case models.LotStatusReserved:
			dist.Reserved = count
		case models.LotStatusSold:
			dist.Sold = count
		}
	}

	if dist.Total > 0 {
		dist.OccupancyRate = float64(dist.Reserved+dist.Sold) / float64(dist.Total) * 100
	}
	return dist, nil
}
