package state

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rustyeddy/daytrader/journal"
	"github.com/rustyeddy/daytrader/profiles"
)

// Options configures a Store.
type Options struct {
	// Path of the snapshot file.
	Path string

	Journal  journal.Journal
	Profiles profiles.Store

	// Defaults used when no snapshot exists or it is unreadable.
	DefaultProfile string
	InitialEquity  float64
}

// Store is the single process-wide holder of TradingState. All mutations
// are serialized by its mutex; the snapshot write and the journal append
// happen inside the critical section so audit order matches transition
// order.
type Store struct {
	mu       sync.Mutex
	path     string
	snap     Snapshot
	journal  journal.Journal
	profiles profiles.Store
}

// Open loads the snapshot at opts.Path, falling back to a default IDLE
// state when the file is missing or unreadable. Recovering a non-IDLE
// state emits a STATE_RECOVERY audit entry; the recovered position data
// is trusted at face value.
func Open(opts Options) (*Store, error) {
	s := &Store{
		path:     opts.Path,
		journal:  opts.Journal,
		profiles: opts.Profiles,
	}

	def := Snapshot{
		Phase:       PhaseIdle,
		Active:      false,
		Profile:     opts.DefaultProfile,
		Equity:      opts.InitialEquity,
		LastUpdated: time.Now().UTC(),
	}

	snap, recovered := loadSnapshot(opts.Path)
	if !recovered {
		snap = def
	}
	s.snap = snap

	if recovered && snap.Phase != PhaseIdle {
		err := s.journal.Append(journal.Entry{
			Event:   journal.KindRecovery,
			Message: fmt.Sprintf("Recovered state: %s", snap.Phase),
			Ticker:  snap.Ticker,
			After:   snap.mustJSON(),
		})
		if err != nil {
			return nil, fmt.Errorf("record recovery: %w", err)
		}
		log.Warn().
			Str("phase", string(snap.Phase)).
			Str("ticker", snap.Ticker).
			Msg("recovered non-idle trading state")
	}

	return s, nil
}

// loadSnapshot reads and validates a persisted snapshot. Any problem
// (missing file, bad JSON, inconsistent fields) is non-fatal and reported
// as not-recovered.
func loadSnapshot(path string) (Snapshot, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, false
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("corrupt state snapshot, using defaults")
		return Snapshot{}, false
	}
	if !snap.valid() {
		log.Warn().Str("path", path).Msg("inconsistent state snapshot, using defaults")
		return Snapshot{}, false
	}
	return snap, true
}

// Snapshot returns a tear-free copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.clone()
}

// Update merges a partial change, persists the snapshot, and appends a
// STATE_CHANGE audit entry when phase, position, or equity changed. On a
// persistence failure (after one retry) the in-memory state is rolled
// back and ErrPersistence returned.
func (s *Store) Update(ch Change) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(ch)
}

func (s *Store) updateLocked(ch Change) error {
	before := s.snap.clone()

	s.applyLocked(ch)
	s.snap.LastUpdated = time.Now().UTC()

	if err := s.persistLocked(); err != nil {
		if err = s.persistLocked(); err != nil {
			s.snap = before
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}
	}

	if !ch.significant() {
		return nil
	}

	err := s.journal.Append(journal.Entry{
		Event:  journal.KindStateChange,
		Before: before.mustJSON(),
		After:  s.snap.mustJSON(),
	})
	if err != nil {
		// The audit log must not fall behind the snapshot: restore both.
		applied := s.snap
		s.snap = before
		if perr := s.persistLocked(); perr != nil {
			// Disk kept the new state; keep memory matching it.
			s.snap = applied
			return fmt.Errorf("%w: audit append: %v (snapshot rollback also failed: %v)", ErrPersistence, err, perr)
		}
		return fmt.Errorf("%w: audit append: %v", ErrPersistence, err)
	}
	return nil
}

func (s *Store) applyLocked(ch Change) {
	if ch.Phase != nil {
		s.snap.Phase = *ch.Phase
	}
	if ch.Active != nil {
		s.snap.Active = *ch.Active
	}
	if ch.Ticker != nil {
		s.snap.Ticker = *ch.Ticker
	}
	if ch.Profile != nil {
		s.snap.Profile = *ch.Profile
	}
	if ch.Equity != nil {
		s.snap.Equity = *ch.Equity
	}
	if ch.Position != nil {
		pos := *ch.Position
		s.snap.Position = &pos
	} else if ch.ClearPosition {
		s.snap.Position = nil
	}
}

// persistLocked writes the snapshot atomically: temp file then rename.
func (s *Store) persistLocked() error {
	b, err := json.MarshalIndent(s.snap, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// EnterPosition opens a long position. Stop-loss and take-profit levels
// come from the active profile: stop = price*(1-sl%/100), take =
// price*(1+tp%/100).
func (s *Store) EnterPosition(ticker string, entryPrice float64, quantity int64) error {
	if entryPrice <= 0 || quantity <= 0 {
		return fmt.Errorf("invalid entry: price=%.4f quantity=%d", entryPrice, quantity)
	}

	// Profile lookup may hit the database; keep it outside the lock.
	profileName := s.Snapshot().Profile
	prof, err := s.profiles.Get(profileName)
	if err != nil {
		return err
	}
	if prof.StopLossPct <= 0 || prof.TakeProfitPct <= 0 {
		return fmt.Errorf("profile %q has non-positive risk thresholds", profileName)
	}

	pos := Position{
		Ticker:     ticker,
		EntryPrice: entryPrice,
		Quantity:   quantity,
		StopLoss:   entryPrice * (1 - prof.StopLossPct/100),
		TakeProfit: entryPrice * (1 + prof.TakeProfitPct/100),
		EntryTime:  time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snap.Phase == PhaseLong {
		return ErrPositionOpen
	}

	before := s.snap.clone()
	long := PhaseLong
	if err := s.updateLocked(Change{Phase: &long, Ticker: &ticker, Position: &pos}); err != nil {
		return err
	}

	err = s.journal.Append(journal.Entry{
		Event:         journal.KindEntry,
		Ticker:        ticker,
		Profile:       profileName,
		Action:        "BUY",
		Quantity:      quantity,
		Price:         entryPrice,
		PositionValue: pos.Value(),
		StopLoss:      pos.StopLoss,
		TakeProfit:    pos.TakeProfit,
		Message:       fmt.Sprintf("BUY %d shares of %s at $%.2f", quantity, ticker, entryPrice),
		Before:        before.mustJSON(),
		After:         s.snap.mustJSON(),
	})
	if err != nil {
		log.Error().Err(err).Str("ticker", ticker).Msg("failed to journal ENTRY event")
	}
	return nil
}

// ExitPosition closes the held position at exitPrice and realizes the
// P&L into equity. Returns ErrNoOpenPosition when nothing is held.
func (s *Store) ExitPosition(exitPrice float64, reason ExitReason) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snap.Position == nil {
		return 0, ErrNoOpenPosition
	}

	before := s.snap.clone()
	pos := *s.snap.Position

	pnl := (exitPrice - pos.EntryPrice) * float64(pos.Quantity)
	equity := s.snap.Equity + pnl
	idle := PhaseIdle

	if err := s.updateLocked(Change{Phase: &idle, Equity: &equity, ClearPosition: true}); err != nil {
		return 0, err
	}

	err := s.journal.Append(journal.Entry{
		Event:      journal.KindExit,
		Ticker:     pos.Ticker,
		ExitReason: string(reason),
		Price:      exitPrice,
		Quantity:   pos.Quantity,
		PnL:        &pnl,
		Before:     before.mustJSON(),
		After:      s.snap.mustJSON(),
	})
	if err != nil {
		log.Error().Err(err).Str("ticker", pos.Ticker).Msg("failed to journal EXIT event")
	}
	return pnl, nil
}

// Save persists the current snapshot; called on normal shutdown.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persistLocked(); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// Path returns the snapshot file location.
func (s *Store) Path() string {
	return s.path
}
