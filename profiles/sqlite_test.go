package profiles

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()

	s, err := NewSQLite(filepath.Join(t.TempDir(), "profiles.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestSQLiteSeedsDefaults(t *testing.T) {
	t.Parallel()

	s := newTestSQLite(t)

	names, err := s.All()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"risky_business", "safe_mode"}, names)

	p, err := s.Get("safe_mode")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, p.StopLossPct, 1e-9)
	assert.InDelta(t, 2.0, p.TakeProfitPct, 1e-9)
	assert.InDelta(t, 1.0, p.CapitalAllocationPct, 1e-9)
}

func TestSQLiteGetUnknown(t *testing.T) {
	t.Parallel()

	s := newTestSQLite(t)

	_, err := s.Get("does_not_exist")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSQLiteCreateAndGet(t *testing.T) {
	t.Parallel()

	s := newTestSQLite(t)

	want := Profile{StopLossPct: 2.5, TakeProfitPct: 5, CapitalAllocationPct: 3}
	require.NoError(t, s.Create("swing", want))

	got, err := s.Get("swing")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Create replaces an existing profile.
	want.TakeProfitPct = 7.5
	require.NoError(t, s.Create("swing", want))
	got, err = s.Get("swing")
	require.NoError(t, err)
	assert.InDelta(t, 7.5, got.TakeProfitPct, 1e-9)
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	s := NewMemory()

	_, err := s.Get("nope")
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, s.Create("custom", Profile{StopLossPct: 1, TakeProfitPct: 2, CapitalAllocationPct: 1}))
	names, err := s.All()
	require.NoError(t, err)
	assert.Contains(t, names, "custom")
	assert.Contains(t, names, "safe_mode")
}
