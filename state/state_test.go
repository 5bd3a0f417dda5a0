package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/daytrader/journal"
	"github.com/rustyeddy/daytrader/profiles"
)

func newStore(t *testing.T) (*Store, *journal.Memory) {
	t.Helper()

	j := journal.NewMemory()
	s, err := Open(Options{
		Path:           filepath.Join(t.TempDir(), "state.json"),
		Journal:        j,
		Profiles:       profiles.NewMemory(),
		DefaultProfile: "safe_mode",
		InitialEquity:  100000,
	})
	require.NoError(t, err)
	return s, j
}

func TestOpenDefaults(t *testing.T) {
	t.Parallel()

	s, j := newStore(t)
	snap := s.Snapshot()

	assert.Equal(t, PhaseIdle, snap.Phase)
	assert.False(t, snap.Active)
	assert.Equal(t, "safe_mode", snap.Profile)
	assert.InDelta(t, 100000.0, snap.Equity, 1e-9)
	assert.Nil(t, snap.Position)

	entries, err := j.Recent(0)
	require.NoError(t, err)
	assert.Empty(t, entries, "fresh start must not emit a recovery entry")
}

func TestEnterPositionRiskLevels(t *testing.T) {
	t.Parallel()

	s, j := newStore(t)
	// safe_mode: 1% stop, 2% take.
	require.NoError(t, s.EnterPosition("XYZ", 100, 10))

	snap := s.Snapshot()
	require.NotNil(t, snap.Position)
	assert.Equal(t, PhaseLong, snap.Phase)
	assert.Equal(t, "XYZ", snap.Ticker)
	assert.InDelta(t, 99.0, snap.Position.StopLoss, 1e-9)
	assert.InDelta(t, 102.0, snap.Position.TakeProfit, 1e-9)
	assert.Less(t, snap.Position.StopLoss, snap.Position.EntryPrice)
	assert.Less(t, snap.Position.EntryPrice, snap.Position.TakeProfit)

	entries, err := j.Recent(0)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	last := entries[len(entries)-1]
	assert.Equal(t, journal.KindEntry, last.Event)
	assert.Equal(t, "BUY", last.Action)
	assert.Equal(t, int64(10), last.Quantity)
	assert.InDelta(t, 1000.0, last.PositionValue, 1e-9)
	assert.Equal(t, "BUY 10 shares of XYZ at $100.00", last.Message)
}

func TestEnterWhileLongRejected(t *testing.T) {
	t.Parallel()

	s, _ := newStore(t)
	require.NoError(t, s.EnterPosition("XYZ", 100, 10))

	err := s.EnterPosition("ABC", 50, 5)
	assert.ErrorIs(t, err, ErrPositionOpen)

	snap := s.Snapshot()
	assert.Equal(t, "XYZ", snap.Position.Ticker)
}

func TestExitPosition(t *testing.T) {
	t.Parallel()

	s, j := newStore(t)
	require.NoError(t, s.EnterPosition("XYZ", 100, 10))

	pnl, err := s.ExitPosition(104, ExitTakeProfit)
	require.NoError(t, err)
	assert.InDelta(t, 40.0, pnl, 1e-9)

	snap := s.Snapshot()
	assert.Equal(t, PhaseIdle, snap.Phase)
	assert.Nil(t, snap.Position)
	assert.InDelta(t, 100040.0, snap.Equity, 1e-9)

	entries, err := j.Recent(0)
	require.NoError(t, err)
	last := entries[len(entries)-1]
	assert.Equal(t, journal.KindExit, last.Event)
	assert.Equal(t, string(ExitTakeProfit), last.ExitReason)
	require.NotNil(t, last.PnL)
	assert.InDelta(t, 40.0, *last.PnL, 1e-9)
}

func TestExitLoss(t *testing.T) {
	t.Parallel()

	s, _ := newStore(t)
	require.NoError(t, s.EnterPosition("XYZ", 100, 10))

	pnl, err := s.ExitPosition(97, ExitStopLoss)
	require.NoError(t, err)
	assert.InDelta(t, -30.0, pnl, 1e-9)
	assert.InDelta(t, 99970.0, s.Snapshot().Equity, 1e-9)
}

func TestExitWithoutPosition(t *testing.T) {
	t.Parallel()

	s, _ := newStore(t)
	_, err := s.ExitPosition(100, ExitEmergency)
	assert.ErrorIs(t, err, ErrNoOpenPosition)
}

func TestPositionPhaseInvariant(t *testing.T) {
	t.Parallel()

	s, _ := newStore(t)
	check := func() {
		snap := s.Snapshot()
		assert.Equal(t, snap.Phase == PhaseLong, snap.Position != nil)
	}

	check()
	require.NoError(t, s.EnterPosition("XYZ", 100, 10))
	check()
	_, err := s.ExitPosition(101, ExitTakeProfit)
	require.NoError(t, err)
	check()
	require.NoError(t, s.EnterPosition("ABC", 40, 3))
	check()
}

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.json")
	j := journal.NewMemory()
	opts := Options{
		Path:           path,
		Journal:        j,
		Profiles:       profiles.NewMemory(),
		DefaultProfile: "safe_mode",
		InitialEquity:  100000,
	}

	s, err := Open(opts)
	require.NoError(t, err)
	require.NoError(t, s.EnterPosition("NVDA", 900, 2))

	// Reopen from disk as if the process restarted.
	s2, err := Open(opts)
	require.NoError(t, err)

	snap := s2.Snapshot()
	assert.Equal(t, PhaseLong, snap.Phase)
	require.NotNil(t, snap.Position)
	assert.Equal(t, "NVDA", snap.Position.Ticker)
	assert.InDelta(t, 900.0, snap.Position.EntryPrice, 1e-9)
	assert.Equal(t, int64(2), snap.Position.Quantity)

	rec, ok, err := j.LastStateBearing()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, journal.KindEntry, rec.Event)

	entries, err := j.Recent(0)
	require.NoError(t, err)
	last := entries[len(entries)-1]
	assert.Equal(t, journal.KindRecovery, last.Event)
	assert.Equal(t, "Recovered state: LONG", last.Message)
}

func TestCorruptSnapshotFallsBackToDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s, err := Open(Options{
		Path:           path,
		Journal:        journal.NewMemory(),
		Profiles:       profiles.NewMemory(),
		DefaultProfile: "safe_mode",
		InitialEquity:  100000,
	})
	require.NoError(t, err)

	snap := s.Snapshot()
	assert.Equal(t, PhaseIdle, snap.Phase)
	assert.InDelta(t, 100000.0, snap.Equity, 1e-9)
}

func TestInconsistentSnapshotFallsBackToDefaults(t *testing.T) {
	t.Parallel()

	// LONG with no position is not trustworthy.
	bad := Snapshot{
		Phase:       PhaseLong,
		Profile:     "safe_mode",
		Equity:      5,
		LastUpdated: time.Now().UTC(),
	}
	b, err := json.Marshal(bad)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, b, 0o644))

	s, err := Open(Options{
		Path:           path,
		Journal:        journal.NewMemory(),
		Profiles:       profiles.NewMemory(),
		DefaultProfile: "safe_mode",
		InitialEquity:  100000,
	})
	require.NoError(t, err)
	assert.Equal(t, PhaseIdle, s.Snapshot().Phase)
	assert.InDelta(t, 100000.0, s.Snapshot().Equity, 1e-9)
}

func TestPersistFailureRollsBack(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))

	s, err := Open(Options{
		Path:           filepath.Join(sub, "state.json"),
		Journal:        journal.NewMemory(),
		Profiles:       profiles.NewMemory(),
		DefaultProfile: "safe_mode",
		InitialEquity:  100000,
	})
	require.NoError(t, err)

	// Removing the directory makes the snapshot write fail.
	require.NoError(t, os.RemoveAll(sub))

	active := true
	err = s.Update(Change{Active: &active})
	assert.ErrorIs(t, err, ErrPersistence)
	assert.False(t, s.Snapshot().Active, "failed update must not change memory")
}

func TestUnknownProfileBlocksEntry(t *testing.T) {
	t.Parallel()

	s, _ := newStore(t)
	ghost := "yolo_mode"
	require.NoError(t, s.Update(Change{Profile: &ghost}))

	err := s.EnterPosition("XYZ", 100, 10)
	assert.ErrorIs(t, err, profiles.ErrNotFound)
	assert.Equal(t, PhaseIdle, s.Snapshot().Phase)
}

func TestInvalidEntryArguments(t *testing.T) {
	t.Parallel()

	s, _ := newStore(t)
	assert.Error(t, s.EnterPosition("XYZ", 0, 10))
	assert.Error(t, s.EnterPosition("XYZ", 100, 0))
	assert.Error(t, s.EnterPosition("XYZ", -5, -1))
	assert.Equal(t, PhaseIdle, s.Snapshot().Phase)
}

func TestSave(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.json")
	s, err := Open(Options{
		Path:           path,
		Journal:        journal.NewMemory(),
		Profiles:       profiles.NewMemory(),
		DefaultProfile: "safe_mode",
		InitialEquity:  100000,
	})
	require.NoError(t, err)
	require.NoError(t, s.Save())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(raw, &snap))
	assert.Equal(t, PhaseIdle, snap.Phase)
}
