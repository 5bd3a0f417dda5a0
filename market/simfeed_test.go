package market

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimFeedDeterministicWithSeed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	a := NewSimFeed(42)
	b := NewSimFeed(42)

	for i := 0; i < 50; i++ {
		pa, err := a.Latest(ctx, "SPY")
		require.NoError(t, err)
		pb, err := b.Latest(ctx, "SPY")
		require.NoError(t, err)
		assert.Equal(t, pa, pb)
	}
}

func TestSimFeedPricesStayPositive(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := NewSimFeed(7)

	for _, ticker := range []string{"SPY", "TSLA", "UNKNOWN"} {
		for i := 0; i < 500; i++ {
			p, err := f.Latest(ctx, ticker)
			require.NoError(t, err)
			assert.Greater(t, p, 0.0)
		}
	}
}

func TestSimFeedTickersIndependent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := NewSimFeed(1)

	pa, err := f.Latest(ctx, "AAPL")
	require.NoError(t, err)
	ps, err := f.Latest(ctx, "SPY")
	require.NoError(t, err)

	// Different base levels, separate walks.
	assert.NotEqual(t, pa, ps)
}

func TestStaticFeed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := NewStaticFeed()

	_, err := f.Latest(ctx, "SPY")
	assert.ErrorIs(t, err, ErrNoPrice)

	f.Set("SPY", 451.25)
	p, err := f.Latest(ctx, "SPY")
	require.NoError(t, err)
	assert.InDelta(t, 451.25, p, 1e-9)
}
