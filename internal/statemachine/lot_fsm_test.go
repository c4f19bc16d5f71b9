package statemachine

import (
	"context"
	"testing"
	"time"

	"github.com/solterra/solterra-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func farFuture() time.Time { return time.Now().AddDate(1, 0, 0) }
func farPast() time.Time   { return time.Now().AddDate(-1, 0, 0) }

func TestLotFSM_FullLifecycle(t *testing.T) {
	ctx := context.Background()
	lot := &models.Lot{Status: models.LotStatusAvailable}
	m := NewLotFSM(lot)

	require.NoError(t, m.Quote(ctx))
	assert.Equal(t, models.LotStatusQuoted, lot.Status)

	require.NoError(t, m.Reserve(ctx))
	assert.Equal(t, models.LotStatusReserved, lot.Status)

	require.NoError(t, m.Sell(ctx))
	assert.Equal(t, models.LotStatusSold, lot.Status)
}

func TestLotFSM_ReleaseFromQuoted(t *testing.T) {
	ctx := context.Background()
	lot := &models.Lot{Status: models.LotStatusQuoted}
	m := NewLotFSM(lot)

	require.NoError(t, m.Release(ctx))
	assert.Equal(t, models.LotStatusAvailable, lot.Status)
}

func TestLotFSM_InvalidTransitions(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		status string
		call   func(*LotFSM) error
	}{
		{"sell an available lot", models.LotStatusAvailable, func(m *LotFSM) error { return m.Sell(ctx) }},
		{"reserve an available lot", models.LotStatusAvailable, func(m *LotFSM) error { return m.Reserve(ctx) }},
		{"quote a reserved lot", models.LotStatusReserved, func(m *LotFSM) error { return m.Quote(ctx) }},
		{"release a sold lot", models.LotStatusSold, func(m *LotFSM) error { return m.Release(ctx) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lot := &models.Lot{Status: tt.status}
			m := NewLotFSM(lot)
			err := tt.call(m)
			assert.Error(t, err)
			assert.Equal(t, tt.status, lot.Status, "status must not change on a rejected transition")
		})
	}
}

func TestQuotationFSM_AcceptAndCancel(t *testing.T) {
	ctx := context.Background()

	q := &models.Quotation{Status: models.QuotationStatusIssued, ValidUntil: farFuture()}
	m := NewQuotationFSM(q)
	require.NoError(t, m.Accept(ctx))
	assert.Equal(t, models.QuotationStatusAccepted, q.Status)

	// accepted is terminal
	assert.Error(t, m.Cancel(ctx))
	assert.Equal(t, models.QuotationStatusAccepted, q.Status)

	q2 := &models.Quotation{Status: models.QuotationStatusIssued, ValidUntil: farFuture()}
	m2 := NewQuotationFSM(q2)
	require.NoError(t, m2.Cancel(ctx))
	assert.Equal(t, models.QuotationStatusCanceled, q2.Status)
}

func TestQuotationFSM_ExpiredCannotAccept(t *testing.T) {
	q := &models.Quotation{Status: models.QuotationStatusIssued, ValidUntil: farPast()}
	m := NewQuotationFSM(q)

	err := m.Accept(context.Background())
	assert.Error(t, err)
	assert.Equal(t, models.QuotationStatusIssued, q.Status)
}

func TestReservationFSM_CompleteRequiresZeroBalance(t *testing.T) {
	ctx := context.Background()

	r := &models.Reservation{Status: models.ReservationStatusIssued, RemainingAmount: 100}
	m := NewReservationFSM(r)
	assert.Error(t, m.Complete(ctx))
	assert.Equal(t, models.ReservationStatusIssued, r.Status)

	r.RemainingAmount = 0
	m = NewReservationFSM(r)
	require.NoError(t, m.Complete(ctx))
	assert.Equal(t, models.ReservationStatusCompleted, r.Status)
}

func TestReservationFSM_VoidOnlyFromIssued(t *testing.T) {
	ctx := context.Background()

	r := &models.Reservation{Status: models.ReservationStatusIssued}
	m := NewReservationFSM(r)
	require.NoError(t, m.Void(ctx))
	assert.Equal(t, models.ReservationStatusVoided, r.Status)

	completed := &models.Reservation{Status: models.ReservationStatusCompleted}
	assert.Error(t, NewReservationFSM(completed).Void(ctx))
}
