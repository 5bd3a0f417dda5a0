// Package broker defines the execution-adapter abstraction the lifecycle
// controller places orders through. Two implementations exist: sim (paper
// fills, in-memory book) and das (HTTP client for a live order bridge).
package broker

import (
	"context"
	"errors"
	"time"
)

// Order direction convention: positive quantity buys, negative sells.

type OrderKind string

const (
	Market OrderKind = "MARKET"
	Limit  OrderKind = "LIMIT"
)

// Status is the broker-reported outcome of an order.
type Status string

const (
	// StatusFilled means the order executed; ExecutedPrice is valid.
	StatusFilled Status = "FILLED"

	// StatusSubmitted means the order was accepted but the fill outcome
	// is unknown. Callers must not assume execution.
	StatusSubmitted Status = "SUBMITTED"

	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
)

var (
	// ErrRejected indicates the broker refused the order.
	ErrRejected = errors.New("order rejected")

	// ErrUnavailable indicates the broker could not be reached.
	ErrUnavailable = errors.New("broker unavailable")
)

type OrderRequest struct {
	Ticker   string
	Quantity int64 // signed: +buy, -sell
	Kind     OrderKind

	// ReferencePrice is the price the decision was made at. The sim
	// broker fills at it; the live broker passes it as a hint.
	ReferencePrice float64
}

type OrderResult struct {
	OrderID       string
	Ticker        string
	Quantity      int64
	Kind          OrderKind
	ExecutedPrice float64
	Status        Status
	Time          time.Time
}

type Position struct {
	Ticker       string
	Quantity     int64
	AveragePrice float64
}

type Account struct {
	Equity      float64
	BuyingPower float64
	Positions   map[string]Position
}

// Broker turns trade decisions into order outcomes.
type Broker interface {
	Name() string
	PlaceOrder(ctx context.Context, req OrderRequest) (OrderResult, error)
	CancelOrder(ctx context.Context, orderID string) (bool, error)
	GetPosition(ctx context.Context, ticker string) (Position, error)
	GetAccount(ctx context.Context) (Account, error)
}
