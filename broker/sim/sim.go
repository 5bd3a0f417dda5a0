// Package sim is the paper-trading execution adapter. Market orders fill
// immediately at the supplied reference price and positions are tracked
// against a weighted-average cost basis.
package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rustyeddy/daytrader/broker"
	"github.com/rustyeddy/daytrader/pkg/id"
)

// fallbackPrice fills orders that arrive without a reference price.
const fallbackPrice = 100.0

type position struct {
	quantity     int64
	averagePrice float64
}

type Engine struct {
	mu        sync.Mutex
	equity    float64
	positions map[string]*position
	orders    map[string]broker.OrderResult
}

func NewEngine(initialEquity float64) *Engine {
	return &Engine{
		equity:    initialEquity,
		positions: make(map[string]*position),
		orders:    make(map[string]broker.OrderResult),
	}
}

func (e *Engine) Name() string { return "sim" }

func (e *Engine) PlaceOrder(_ context.Context, req broker.OrderRequest) (broker.OrderResult, error) {
	if req.Quantity == 0 {
		return broker.OrderResult{}, fmt.Errorf("%w: zero quantity", broker.ErrRejected)
	}

	executed := req.ReferencePrice
	if executed <= 0 {
		executed = fallbackPrice
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	result := broker.OrderResult{
		OrderID:       "SIM-" + id.New(),
		Ticker:        req.Ticker,
		Quantity:      req.Quantity,
		Kind:          req.Kind,
		ExecutedPrice: executed,
		Status:        broker.StatusFilled,
		Time:          time.Now().UTC(),
	}

	e.apply(req.Ticker, req.Quantity, executed)
	e.orders[result.OrderID] = result

	return result, nil
}

// apply folds a fill into the book. Increases move the weighted-average
// cost basis; a fill that flattens the ticker removes it.
func (e *Engine) apply(ticker string, delta int64, price float64) {
	pos, ok := e.positions[ticker]
	if !ok {
		e.positions[ticker] = &position{quantity: delta, averagePrice: price}
		return
	}

	newQty := pos.quantity + delta
	if newQty == 0 {
		delete(e.positions, ticker)
		return
	}

	if (pos.quantity > 0) == (delta > 0) {
		// Same direction: re-average the cost basis.
		pos.averagePrice = (pos.averagePrice*float64(pos.quantity) + price*float64(delta)) / float64(newQty)
	}
	pos.quantity = newQty
}

func (e *Engine) CancelOrder(_ context.Context, orderID string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	o, ok := e.orders[orderID]
	if !ok {
		return false, nil
	}
	o.Status = broker.StatusCancelled
	e.orders[orderID] = o
	return true, nil
}

func (e *Engine) GetPosition(_ context.Context, ticker string) (broker.Position, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pos, ok := e.positions[ticker]
	if !ok {
		return broker.Position{Ticker: ticker}, nil
	}
	return broker.Position{
		Ticker:       ticker,
		Quantity:     pos.quantity,
		AveragePrice: pos.averagePrice,
	}, nil
}

func (e *Engine) GetAccount(_ context.Context) (broker.Account, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	acct := broker.Account{
		Equity:      e.equity,
		BuyingPower: e.equity,
		Positions:   make(map[string]broker.Position, len(e.positions)),
	}
	for ticker, pos := range e.positions {
		acct.Positions[ticker] = broker.Position{
			Ticker:       ticker,
			Quantity:     pos.quantity,
			AveragePrice: pos.averagePrice,
		}
	}
	return acct, nil
}
