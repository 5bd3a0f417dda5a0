// Package profiles stores named risk-parameter bundles: stop-loss,
// take-profit and capital-allocation percentages.
package profiles

import "errors"

// ErrNotFound is returned when a profile name cannot be resolved.
var ErrNotFound = errors.New("profile not found")

// Profile is a bundle of risk parameters, all expressed in percent.
type Profile struct {
	StopLossPct          float64 `json:"stop_loss_pct" yaml:"stop_loss_pct"`
	TakeProfitPct        float64 `json:"take_profit_pct" yaml:"take_profit_pct"`
	CapitalAllocationPct float64 `json:"capital_allocation_pct" yaml:"capital_allocation_pct"`
}

// Store resolves profile names to risk parameters.
type Store interface {
	// Get returns the profile for name, or ErrNotFound.
	Get(name string) (Profile, error)

	// All lists the available profile names.
	All() ([]string, error)

	// Create inserts or replaces a profile.
	Create(name string, p Profile) error

	Close() error
}

// Defaults are the profiles seeded into a fresh store.
func Defaults() map[string]Profile {
	return map[string]Profile{
		"safe_mode": {
			StopLossPct:          1.0,
			TakeProfitPct:        2.0,
			CapitalAllocationPct: 1.0,
		},
		"risky_business": {
			StopLossPct:          3.0,
			TakeProfitPct:        6.0,
			CapitalAllocationPct: 5.0,
		},
	}
}
