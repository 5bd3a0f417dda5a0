package sim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/daytrader/broker"
)

func TestPlaceOrderFillsAtReferencePrice(t *testing.T) {
	t.Parallel()

	e := NewEngine(100000)
	res, err := e.PlaceOrder(context.Background(), broker.OrderRequest{
		Ticker:         "SPY",
		Quantity:       10,
		Kind:           broker.Market,
		ReferencePrice: 451.5,
	})
	require.NoError(t, err)

	assert.Equal(t, broker.StatusFilled, res.Status)
	assert.InDelta(t, 451.5, res.ExecutedPrice, 1e-9)
	assert.NotEmpty(t, res.OrderID)

	pos, err := e.GetPosition(context.Background(), "SPY")
	require.NoError(t, err)
	assert.Equal(t, int64(10), pos.Quantity)
	assert.InDelta(t, 451.5, pos.AveragePrice, 1e-9)
}

func TestPlaceOrderFallbackPrice(t *testing.T) {
	t.Parallel()

	e := NewEngine(100000)
	res, err := e.PlaceOrder(context.Background(), broker.OrderRequest{
		Ticker:   "XYZ",
		Quantity: 5,
		Kind:     broker.Market,
	})
	require.NoError(t, err)
	assert.InDelta(t, fallbackPrice, res.ExecutedPrice, 1e-9)
}

func TestWeightedAverageCostBasis(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	e := NewEngine(100000)

	_, err := e.PlaceOrder(ctx, broker.OrderRequest{Ticker: "AAPL", Quantity: 10, Kind: broker.Market, ReferencePrice: 100})
	require.NoError(t, err)
	_, err = e.PlaceOrder(ctx, broker.OrderRequest{Ticker: "AAPL", Quantity: 10, Kind: broker.Market, ReferencePrice: 200})
	require.NoError(t, err)

	pos, err := e.GetPosition(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, int64(20), pos.Quantity)
	assert.InDelta(t, 150.0, pos.AveragePrice, 1e-9)
}

func TestSellFlattensPosition(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	e := NewEngine(100000)

	_, err := e.PlaceOrder(ctx, broker.OrderRequest{Ticker: "TSLA", Quantity: 8, Kind: broker.Market, ReferencePrice: 240})
	require.NoError(t, err)
	_, err = e.PlaceOrder(ctx, broker.OrderRequest{Ticker: "TSLA", Quantity: -8, Kind: broker.Market, ReferencePrice: 250})
	require.NoError(t, err)

	pos, err := e.GetPosition(ctx, "TSLA")
	require.NoError(t, err)
	assert.Zero(t, pos.Quantity)

	acct, err := e.GetAccount(ctx)
	require.NoError(t, err)
	assert.NotContains(t, acct.Positions, "TSLA")
}

func TestZeroQuantityRejected(t *testing.T) {
	t.Parallel()

	e := NewEngine(100000)
	_, err := e.PlaceOrder(context.Background(), broker.OrderRequest{Ticker: "SPY", Kind: broker.Market})
	assert.ErrorIs(t, err, broker.ErrRejected)
}

func TestCancelOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	e := NewEngine(100000)

	res, err := e.PlaceOrder(ctx, broker.OrderRequest{Ticker: "SPY", Quantity: 1, Kind: broker.Market, ReferencePrice: 450})
	require.NoError(t, err)

	ok, err := e.CancelOrder(ctx, res.OrderID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.CancelOrder(ctx, "SIM-UNKNOWN")
	require.NoError(t, err)
	assert.False(t, ok)
}
