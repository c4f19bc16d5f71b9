package services

import (
	"math"
	"time"

	"github.com/solterra/solterra-api/internal/models"
)

// ScheduleService builds installment plans for reservations
type ScheduleService struct{}

func NewScheduleService() *ScheduleService {
	return &ScheduleService{}
}

// roundCents keeps monetary math stable at two decimals
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// GenerateSchedule produces the installment plan for an accepted quotation.
// The down payment is installment #1, due one week after the reservation,
// and the financed amount is split evenly across the financed months with
// the rounding remainder carried by the first financed installment, so the
// schedule always sums to the quotation's final price.
func (s *ScheduleService) GenerateSchedule(quotation *models.Quotation, startDate time.Time) []models.Payment {
	downPayment := roundCents(quotation.FinalPrice - quotation.AmountFinanced)

	if quotation.MonthsFinanced <= 0 || quotation.AmountFinanced <= 0 {
		return []models.Payment{{
			Number:    1,
			DueDate:   startDate.AddDate(0, 0, 7),
			AmountDue: quotation.FinalPrice,
			Status:    models.PaymentStatusPending,
		}}
	}

	schedule := make([]models.Payment, 0, quotation.MonthsFinanced+1)
	schedule = append(schedule, models.Payment{
		Number:    1,
		DueDate:   startDate.AddDate(0, 0, 7),
		AmountDue: downPayment,
		Status:    models.PaymentStatusPending,
	})

	months := quotation.MonthsFinanced
	base := math.Floor(quotation.AmountFinanced/float64(months)*100) / 100
	first := roundCents(quotation.AmountFinanced - base*float64(months-1))

	for i := 0; i < months; i++ {
		amount := base
		if i == 0 {
			amount = first
		}
		schedule = append(schedule, models.Payment{
			Number:    i + 2,
			DueDate:   startDate.AddDate(0, i+1, 0),
			AmountDue: amount,
			Status:    models.PaymentStatusPending,
		})
	}

	return schedule
}
