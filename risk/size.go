// Package risk holds position-sizing rules as pure functions so they can
// be tested independently of the trading loop.
package risk

import "math"

// PositionSize returns the number of shares to buy for the given account
// equity, share price and capital allocation percentage.
//
// The allocation amount is equity * allocationPct/100; the result is the
// floor of allocation/price, never less than one share. Deterministic for
// any (equity, price, allocationPct).
func PositionSize(equity, price, allocationPct float64) int64 {
	if equity <= 0 || price <= 0 {
		return 0
	}

	allocation := equity * (allocationPct / 100)
	qty := int64(math.Floor(allocation / price))
	if qty < 1 {
		qty = 1
	}
	return qty
}
