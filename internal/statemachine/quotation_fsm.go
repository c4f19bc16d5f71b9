package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/solterra/solterra-api/internal/models"
)

// QuotationFSM wraps a quotation with its state machine
type QuotationFSM struct {
	quotation *models.Quotation
	fsm       *fsm.FSM
}

// NewQuotationFSM creates a new quotation state machine
func NewQuotationFSM(quotation *models.Quotation) *QuotationFSM {
	q := &QuotationFSM{
		quotation: quotation,
	}

	q.fsm = fsm.NewFSM(
		quotation.Status,
		fsm.Events{
			// issued → accepted
			{Name: "accept", Src: []string{models.QuotationStatusIssued}, Dst: models.QuotationStatusAccepted},

			// issued → canceled
			{Name: "cancel", Src: []string{models.QuotationStatusIssued}, Dst: models.QuotationStatusCanceled},
		},
		fsm.Callbacks{},
	)

	return q
}

// Accept transitions quotation to accepted state
func (q *QuotationFSM) Accept(ctx context.Context) error {
	if !q.quotation.MayAccept() {
		return fmt.Errorf("quotation cannot be accepted in current state: %s", q.quotation.Status)
	}

	if err := q.fsm.Event(ctx, "accept"); err != nil {
		return fmt.Errorf("failed to accept quotation: %w", err)
	}

	q.quotation.Status = q.fsm.Current()
	return nil
}

// Cancel transitions quotation to canceled state
func (q *QuotationFSM) Cancel(ctx context.Context) error {
	if !q.quotation.MayCancel() {
		return fmt.Errorf("quotation cannot be canceled in current state: %s", q.quotation.Status)
	}

	if err := q.fsm.Event(ctx, "cancel"); err != nil {
		return fmt.Errorf("failed to cancel quotation: %w", err)
	}

	q.quotation.Status = q.fsm.Current()
	return nil
}

// Current returns the current state
func (q *QuotationFSM) Current() string {
	return q.fsm.Current()
}

// Can checks if a transition is possible
func (q *QuotationFSM) Can(event string) bool {
	return q.fsm.Can(event)
}
