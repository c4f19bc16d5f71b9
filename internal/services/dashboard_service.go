package services

import (
	"context"

	"github.com/solterra/solterra-api/internal/models"
	"github.com/solterra/solterra-api/internal/repository"
)

// DashboardService composes the yearly reporting view
type DashboardService struct {
	repo repository.DashboardRepository
}

func NewDashboardService(repo repository.DashboardRepository) *DashboardService {
	return &DashboardService{repo: repo}
}

// Summary aggregates leads, quotations, reservations, collections and
// inventory occupancy for the given year
func (s *DashboardService) Summary(ctx context.Context, year int) (*models.DashboardSummary, error) {
	leads, totalLeads, err := s.repo.CountLeadsBySource(ctx, year)
	if err != nil {
		return nil, err
	}
	for i := range leads {
		if totalLeads > 0 {
			leads[i].Percentage = roundCents(float64(leads[i].Count) / float64(totalLeads) * 100)
		}
	}

	quotations, totalQuotations, err := s.repo.CountQuotationsByStatus(ctx, year)
	if err != nil {
		return nil, err
	}

	reservations, totalReservations, err := s.repo.CountReservationsByStatus(ctx, year)
	if err != nil {
		return nil, err
	}

	revenue, totalCollected, err := s.repo.RevenueByMonth(ctx, year)
	if err != nil {
		return nil, err
	}

	distribution, err := s.repo.LotDistribution(ctx)
	if err != nil {
		return nil, err
	}

	return &models.DashboardSummary{
		Year:                 year,
		TotalLeads:           totalLeads,
		LeadsBySource:        leads,
		TotalQuotations:      totalQuotations,
		QuotationsByStatus:   quotations,
		TotalReservations:    totalReservations,
		ReservationsByStatus: reservations,
		RevenueByMonth:       revenue,
		TotalCollected:       totalCollected,
		LotDistribution:      *distribution,
	}, nil
}
