// Package market provides price feeds for the monitor loop: a simulated
// random-walk feed for paper trading and a static feed for tests.
package market

import (
	"context"
	"errors"
	"sync"
)

// ErrNoPrice is returned when a feed has no price for a ticker.
var ErrNoPrice = errors.New("no price for ticker")

// Feed produces the latest price for a ticker. Implementations must be
// safe for concurrent use; the monitor loop and on-demand exit pricing
// both call Latest.
type Feed interface {
	Latest(ctx context.Context, ticker string) (float64, error)
}

// StaticFeed serves fixed prices set by the caller. Useful in tests and
// as a stand-in when no market data source is configured.
type StaticFeed struct {
	mu     sync.RWMutex
	prices map[string]float64
}

func NewStaticFeed() *StaticFeed {
	return &StaticFeed{prices: make(map[string]float64)}
}

// Set replaces the price for ticker.
func (f *StaticFeed) Set(ticker string, price float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prices[ticker] = price
}

func (f *StaticFeed) Latest(_ context.Context, ticker string) (float64, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	p, ok := f.prices[ticker]
	if !ok {
		return 0, ErrNoPrice
	}
	return p, nil
}
