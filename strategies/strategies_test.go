package strategies

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rising(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + float64(i)
	}
	return out
}

func flat(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestWarmupBlocksEntry(t *testing.T) {
	t.Parallel()

	sig := Default().Evaluate(rising(19))
	assert.False(t, sig.Enter)
	assert.Empty(t, sig.Met)
}

func TestRisingSeriesSignalsEntry(t *testing.T) {
	t.Parallel()

	// A steady climb satisfies trend and momentum; the latest price is the
	// high, so the distance-from-high check fails. Two of three is enough.
	sig := Default().Evaluate(rising(30))
	assert.True(t, sig.Enter)
	assert.Contains(t, sig.Met, TrendUp)
	assert.Contains(t, sig.Met, Momentum)
	assert.NotContains(t, sig.Met, NotAtHigh)
}

func TestFlatSeriesNoEntry(t *testing.T) {
	t.Parallel()

	sig := Default().Evaluate(flat(30, 100))
	assert.False(t, sig.Enter)
	assert.Empty(t, sig.Met)
}

func TestPullbackAloneNotEnough(t *testing.T) {
	t.Parallel()

	// Peak then a hard drop: well below the high, but trend and momentum
	// both point down.
	prices := rising(25)
	for i := 0; i < 5; i++ {
		prices = append(prices, 90-float64(i))
	}

	sig := Default().Evaluate(prices)
	assert.False(t, sig.Enter)
	assert.Equal(t, []Condition{NotAtHigh}, sig.Met)
}

func TestMomentumNeedsSixObservations(t *testing.T) {
	t.Parallel()

	assert.False(t, holds(Momentum, rising(5)))
	assert.True(t, holds(Momentum, rising(6)))
}

func TestExtendedConditions(t *testing.T) {
	t.Parallel()

	rs := RuleSet{
		Name:       "cautious",
		Conditions: []Condition{AboveEMA, RSINotOverbought},
		MinMet:     2,
	}
	require.NoError(t, rs.Validate())

	// Relentless gains push RSI to 100, tripping the overbought guard.
	sig := rs.Evaluate(rising(40))
	assert.False(t, sig.Enter)
	assert.Contains(t, sig.Met, AboveEMA)
	assert.NotContains(t, sig.Met, RSINotOverbought)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		rs      RuleSet
		wantErr bool
	}{
		{"default ok", Default(), false},
		{"no conditions", RuleSet{Name: "empty", MinMet: 1}, true},
		{"min_met too high", RuleSet{Name: "x", Conditions: []Condition{TrendUp}, MinMet: 2}, true},
		{"min_met zero", RuleSet{Name: "x", Conditions: []Condition{TrendUp}, MinMet: 0}, true},
		{"unknown condition", RuleSet{Name: "x", Conditions: []Condition{"moon_phase"}, MinMet: 1}, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.rs.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadRules(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rules.yaml")
	doc := `name: custom
conditions:
  - trend_up
  - above_ema
  - rsi_not_overbought
min_met: 2
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	rs, err := LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, "custom", rs.Name)
	assert.Len(t, rs.Conditions, 3)
	assert.Equal(t, 2, rs.MinMet)
}

func TestLoadRulesRejectsBadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("conditions: [warp_drive]\nmin_met: 1\n"), 0o644))

	_, err := LoadRules(path)
	assert.Error(t, err)

	_, err = LoadRules(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
