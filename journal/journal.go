// Package journal is the append-only audit log for the trading lifecycle.
//
// Every state-affecting event (entries, exits, state changes, crash
// recovery) is recorded as one immutable Entry. The log is never rewritten
// or compacted; readers tolerate malformed lines by skipping them.
package journal

import (
	"encoding/json"
	"time"
)

// Kind classifies an audit entry.
type Kind string

const (
	KindEntry       Kind = "ENTRY"
	KindExit        Kind = "EXIT"
	KindStateChange Kind = "STATE_CHANGE"
	KindRecovery    Kind = "STATE_RECOVERY"
)

// Entry is a single audit record. Fields that do not apply to a given
// event kind are omitted from the serialized form.
//
// Before and After hold full state snapshots as raw JSON so each line is
// independently parseable without importing the state package.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Event     Kind      `json:"event"`
	Message   string    `json:"message,omitempty"`

	Ticker        string  `json:"ticker,omitempty"`
	Action        string  `json:"action,omitempty"`
	Profile       string  `json:"profile,omitempty"`
	Quantity      int64   `json:"quantity,omitempty"`
	Price         float64 `json:"price,omitempty"`
	PositionValue float64 `json:"position_value,omitempty"`
	StopLoss      float64 `json:"stop_loss,omitempty"`
	TakeProfit    float64 `json:"take_profit,omitempty"`

	ExitReason string   `json:"exit_reason,omitempty"`
	PnL        *float64 `json:"pnl,omitempty"`

	Before json.RawMessage `json:"before_state,omitempty"`
	After  json.RawMessage `json:"after_state,omitempty"`
}

// StateBearing reports whether the entry carries an after-state usable
// for recovery probes.
func (e Entry) StateBearing() bool {
	switch e.Event {
	case KindEntry, KindExit, KindStateChange:
		return len(e.After) > 0
	}
	return false
}

// Journal records audit entries and answers recent-history queries.
// Append must serialize concurrent writers so entries land in the order
// the transitions they describe were applied.
type Journal interface {
	Append(Entry) error

	// Recent returns up to limit entries, oldest first, most recent last.
	Recent(limit int) ([]Entry, error)

	// LastStateBearing returns the most recent entry that carries an
	// after-state, or false if none exists.
	LastStateBearing() (Entry, bool, error)

	Close() error
}
