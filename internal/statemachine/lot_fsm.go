package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/solterra/solterra-api/internal/models"
)

// LotFSM wraps a lot with its inventory state machine.
// Transitions are driven by the quotation and reservation lifecycle:
// quoting moves available → quoted, reserving quoted → reserved,
// full payment reserved → sold, and cancellations release the lot.
type LotFSM struct {
	lot *models.Lot
	fsm *fsm.FSM
}

// NewLotFSM creates a new lot state machine
func NewLotFSM(lot *models.Lot) *LotFSM {
	l := &LotFSM{
		lot: lot,
	}

	l.fsm = fsm.NewFSM(
		lot.Status,
		fsm.Events{
			{Name: "quote", Src: []string{models.LotStatusAvailable}, Dst: models.LotStatusQuoted},
			{Name: "reserve", Src: []string{models.LotStatusQuoted}, Dst: models.LotStatusReserved},
			{Name: "sell", Src: []string{models.LotStatusReserved}, Dst: models.LotStatusSold},

			// releasing returns the lot to the market from any non-sold state
			{Name: "release", Src: []string{models.LotStatusQuoted, models.LotStatusReserved}, Dst: models.LotStatusAvailable},
		},
		fsm.Callbacks{},
	)

	return l
}

// Quote transitions lot to quoted state
func (l *LotFSM) Quote(ctx context.Context) error {
	if err := l.fsm.Event(ctx, "quote"); err != nil {
		return fmt.Errorf("lot cannot be quoted in current state %s: %w", l.lot.Status, err)
	}
	l.lot.Status = l.fsm.Current()
	return nil
}

// Reserve transitions lot to reserved state
func (l *LotFSM) Reserve(ctx context.Context) error {
	if err := l.fsm.Event(ctx, "reserve"); err != nil {
		return fmt.Errorf("lot cannot be reserved in current state %s: %w", l.lot.Status, err)
	}
	l.lot.Status = l.fsm.Current()
	return nil
}

// Sell transitions lot to sold state
func (l *LotFSM) Sell(ctx context.Context) error {
	if err := l.fsm.Event(ctx, "sell"); err != nil {
		return fmt.Errorf("lot cannot be sold in current state %s: %w", l.lot.Status, err)
	}
	l.lot.Status = l.fsm.Current()
	return nil
}

// Release returns the lot to the available state
func (l *LotFSM) Release(ctx context.Context) error {
	if err := l.fsm.Event(ctx, "release"); err != nil {
		return fmt.Errorf("lot cannot be released in current state %s: %w", l.lot.Status, err)
	}
	l.lot.Status = l.fsm.Current()
	return nil
}

// Current returns the current state
func (l *LotFSM) Current() string {
	return l.fsm.Current()
}

// Can checks if a transition is possible
func (l *LotFSM) Can(event string) bool {
	return l.fsm.Can(event)
}
