// Package state owns the canonical trading lifecycle record: the phase
// machine, the held position, and running equity. Every mutation persists
// a snapshot and lands in the audit journal as one serialized unit.
package state

import (
	"encoding/json"
	"errors"
	"time"
)

// Phase says whether a position is currently held.
type Phase string

const (
	PhaseIdle Phase = "IDLE"
	PhaseLong Phase = "LONG"
)

// ExitReason labels why a position was closed.
type ExitReason string

const (
	ExitStopLoss   ExitReason = "STOP_LOSS"
	ExitTakeProfit ExitReason = "TAKE_PROFIT"
	ExitEmergency  ExitReason = "EMERGENCY_EXIT"
)

var (
	// ErrNoOpenPosition is returned when an exit is requested with no
	// position held.
	ErrNoOpenPosition = errors.New("no open position")

	// ErrPositionOpen is returned when an entry is requested while a
	// position is already held.
	ErrPositionOpen = errors.New("position already open")

	// ErrPersistence means the snapshot could not be written; the
	// in-memory state was rolled back to the pre-mutation value.
	ErrPersistence = errors.New("state persistence failed")
)

// Position is the record of a single held position.
// Invariant at creation: StopLoss < EntryPrice < TakeProfit.
type Position struct {
	Ticker     string    `json:"ticker"`
	EntryPrice float64   `json:"entry_price"`
	Quantity   int64     `json:"quantity"`
	StopLoss   float64   `json:"stop_loss"`
	TakeProfit float64   `json:"take_profit"`
	EntryTime  time.Time `json:"entry_time"`
}

// Value returns the position's notional value at entry.
func (p Position) Value() float64 {
	return p.EntryPrice * float64(p.Quantity)
}

// Snapshot is an immutable copy of the lifecycle state.
// Invariant: Position != nil exactly when Phase == PhaseLong.
type Snapshot struct {
	Phase       Phase     `json:"phase"`
	Active      bool      `json:"active"`
	Ticker      string    `json:"ticker,omitempty"`
	Profile     string    `json:"profile"`
	Equity      float64   `json:"equity"`
	Position    *Position `json:"position"`
	LastUpdated time.Time `json:"last_updated"`
}

func (s Snapshot) clone() Snapshot {
	out := s
	if s.Position != nil {
		pos := *s.Position
		out.Position = &pos
	}
	return out
}

// valid reports whether a loaded snapshot is internally consistent
// enough to trust.
func (s Snapshot) valid() bool {
	switch s.Phase {
	case PhaseIdle:
		if s.Position != nil {
			return false
		}
	case PhaseLong:
		if s.Position == nil || s.Position.Quantity <= 0 {
			return false
		}
	default:
		return false
	}
	return s.Profile != ""
}

func (s Snapshot) mustJSON() json.RawMessage {
	b, err := json.Marshal(s)
	if err != nil {
		// Snapshot contains only plain fields; this cannot fail.
		panic(err)
	}
	return b
}

// Change is a partial update merged into the state. Nil pointers leave a
// field untouched; ClearPosition removes the position record.
type Change struct {
	Phase         *Phase
	Active        *bool
	Ticker        *string
	Profile       *string
	Equity        *float64
	Position      *Position
	ClearPosition bool
}

// significant reports whether the change touches the audited key set
// (phase, position, equity).
func (c Change) significant() bool {
	return c.Phase != nil || c.Equity != nil || c.Position != nil || c.ClearPosition
}
