package services

import (
	"testing"
	"time"

	"github.com/solterra/solterra-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestScheduleService_GenerateSchedule_EvenSplit(t *testing.T) {
	svc := NewScheduleService()
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	quotation := &models.Quotation{
		FinalPrice:     50000,
		DownPaymentPct: 10,
		AmountFinanced: 45000,
		MonthsFinanced: 36,
	}

	schedule := svc.GenerateSchedule(quotation, start)

	assert.Len(t, schedule, 37)

	// Down payment is installment #1, due one week out
	assert.Equal(t, 1, schedule[0].Number)
	assert.Equal(t, 5000.0, schedule[0].AmountDue)
	assert.Equal(t, start.AddDate(0, 0, 7), schedule[0].DueDate)
	assert.Equal(t, models.PaymentStatusPending, schedule[0].Status)

	// 45000 over 36 months splits exactly
	for i := 1; i < len(schedule); i++ {
		assert.Equal(t, i+1, schedule[i].Number)
		assert.Equal(t, 1250.0, schedule[i].AmountDue)
		assert.Equal(t, start.AddDate(0, i, 0), schedule[i].DueDate)
	}

	var sum float64
	for _, p := range schedule {
		sum += p.AmountDue
	}
	assert.InDelta(t, quotation.FinalPrice, sum, 0.001)
}

func TestScheduleService_GenerateSchedule_RemainderOnFirstInstallment(t *testing.T) {
	svc := NewScheduleService()
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	quotation := &models.Quotation{
		FinalPrice:     1100,
		DownPaymentPct: 10,
		AmountFinanced: 1000,
		MonthsFinanced: 3,
	}

	schedule := svc.GenerateSchedule(quotation, start)

	assert.Len(t, schedule, 4)
	assert.Equal(t, 100.0, schedule[0].AmountDue)
	assert.Equal(t, 333.34, schedule[1].AmountDue)
	assert.Equal(t, 333.33, schedule[2].AmountDue)
	assert.Equal(t, 333.33, schedule[3].AmountDue)

	var sum float64
	for _, p := range schedule {
		sum += p.AmountDue
	}
	assert.InDelta(t, quotation.FinalPrice, sum, 0.001)
}

func TestScheduleService_GenerateSchedule_NoFinancing(t *testing.T) {
	svc := NewScheduleService()
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	quotation := &models.Quotation{
		FinalPrice:     20000,
		DownPaymentPct: 100,
		AmountFinanced: 0,
		MonthsFinanced: 0,
	}

	schedule := svc.GenerateSchedule(quotation, start)

	assert.Len(t, schedule, 1)
	assert.Equal(t, 1, schedule[0].Number)
	assert.Equal(t, 20000.0, schedule[0].AmountDue)
	assert.Equal(t, start.AddDate(0, 0, 7), schedule[0].DueDate)
}
