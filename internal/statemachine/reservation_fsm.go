package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/solterra/solterra-api/internal/models"
)

// ReservationFSM wraps a reservation with its state machine
type ReservationFSM struct {
	reservation *models.Reservation
	fsm         *fsm.FSM
}

// NewReservationFSM creates a new reservation state machine
func NewReservationFSM(reservation *models.Reservation) *ReservationFSM {
	r := &ReservationFSM{
		reservation: reservation,
	}

	r.fsm = fsm.NewFSM(
		reservation.Status,
		fsm.Events{
			// issued → completed (fully paid)
			{Name: "complete", Src: []string{models.ReservationStatusIssued}, Dst: models.ReservationStatusCompleted},

			// issued → voided
			{Name: "void", Src: []string{models.ReservationStatusIssued}, Dst: models.ReservationStatusVoided},
		},
		fsm.Callbacks{},
	)

	return r
}

// Complete transitions reservation to completed state
func (r *ReservationFSM) Complete(ctx context.Context) error {
	if !r.reservation.MayComplete() {
		return fmt.Errorf("reservation cannot be completed: remaining amount is %.2f", r.reservation.RemainingAmount)
	}

	if err := r.fsm.Event(ctx, "complete"); err != nil {
		return fmt.Errorf("failed to complete reservation: %w", err)
	}

	r.reservation.Status = r.fsm.Current()
	return nil
}

// Void transitions reservation to voided state
func (r *ReservationFSM) Void(ctx context.Context) error {
	if !r.reservation.MayVoid() {
		return fmt.Errorf("reservation cannot be voided in current state: %s", r.reservation.Status)
	}

	if err := r.fsm.Event(ctx, "void"); err != nil {
		return fmt.Errorf("failed to void reservation: %w", err)
	}

	r.reservation.Status = r.fsm.Current()
	return nil
}

// Current returns the current state
func (r *ReservationFSM) Current() string {
	return r.fsm.Current()
}

// Can checks if a transition is possible
func (r *ReservationFSM) Can(event string) bool {
	return r.fsm.Can(event)
}
