// Package strategies evaluates entry conditions over a price history.
//
// A RuleSet names the conditions to check and how many must hold for an
// entry signal. Condition semantics are fixed; rule sets only choose the
// combination and threshold, so new risk appetites need a YAML file, not
// a rebuild.
package strategies

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/daytrader/indicators"
)

// Condition is a named entry check.
type Condition string

const (
	// TrendUp holds when the latest price is above its 20-interval SMA.
	TrendUp Condition = "trend_up"

	// Momentum holds when the latest price is above the price five
	// intervals earlier. Needs at least six observations.
	Momentum Condition = "momentum"

	// NotAtHigh holds when the latest price is below 98% of the
	// 20-interval high, avoiding chasing a local top.
	NotAtHigh Condition = "not_at_high"

	// AboveEMA holds when the latest price is above its 20-interval EMA.
	AboveEMA Condition = "above_ema"

	// RSINotOverbought holds when the 14-interval RSI is below 70.
	RSINotOverbought Condition = "rsi_not_overbought"
)

const (
	trendPeriod    = 20
	momentumLag    = 5
	highPeriod     = 20
	highProximity  = 0.98
	emaPeriod      = 20
	rsiPeriod      = 14
	rsiOverbought  = 70.0
	warmupRequired = 20
)

// RuleSet is a named combination of conditions with an entry threshold.
type RuleSet struct {
	Name       string      `yaml:"name"`
	Conditions []Condition `yaml:"conditions"`
	MinMet     int         `yaml:"min_met"`
}

// Default returns the baseline rule set: two of trend, momentum, and
// distance-from-high must hold.
func Default() RuleSet {
	return RuleSet{
		Name:       "baseline",
		Conditions: []Condition{TrendUp, Momentum, NotAtHigh},
		MinMet:     2,
	}
}

// Validate rejects unknown conditions and nonsensical thresholds.
func (r RuleSet) Validate() error {
	if len(r.Conditions) == 0 {
		return fmt.Errorf("rule set %q has no conditions", r.Name)
	}
	if r.MinMet < 1 || r.MinMet > len(r.Conditions) {
		return fmt.Errorf("rule set %q: min_met %d out of range [1,%d]", r.Name, r.MinMet, len(r.Conditions))
	}
	for _, c := range r.Conditions {
		switch c {
		case TrendUp, Momentum, NotAtHigh, AboveEMA, RSINotOverbought:
		default:
			return fmt.Errorf("rule set %q: unknown condition %q", r.Name, c)
		}
	}
	return nil
}

// Signal is the outcome of evaluating a rule set against a price series.
type Signal struct {
	Enter bool
	Met   []Condition
}

// Evaluate checks the rule set against prices (oldest first). Fewer than
// warmupRequired observations never signals an entry.
func (r RuleSet) Evaluate(prices []float64) Signal {
	if len(prices) < warmupRequired {
		return Signal{}
	}

	var met []Condition
	for _, c := range r.Conditions {
		if holds(c, prices) {
			met = append(met, c)
		}
	}
	return Signal{Enter: len(met) >= r.MinMet, Met: met}
}

func holds(c Condition, prices []float64) bool {
	latest := prices[len(prices)-1]

	switch c {
	case TrendUp:
		sma := indicators.SMA(prices, trendPeriod)
		return sma > 0 && latest > sma
	case Momentum:
		if len(prices) < momentumLag+1 {
			return false
		}
		return latest > prices[len(prices)-1-momentumLag]
	case NotAtHigh:
		high := indicators.Highest(prices, highPeriod)
		return high > 0 && latest < highProximity*high
	case AboveEMA:
		ema := indicators.EMA(prices, emaPeriod)
		return ema > 0 && latest > ema
	case RSINotOverbought:
		rsi := indicators.RSI(prices, rsiPeriod)
		return rsi > 0 && rsi < rsiOverbought
	}
	return false
}

// LoadRules reads a rule set from a YAML file and validates it.
func LoadRules(path string) (RuleSet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("read rules: %w", err)
	}

	var rs RuleSet
	if err := yaml.Unmarshal(raw, &rs); err != nil {
		return RuleSet{}, fmt.Errorf("parse rules: %w", err)
	}
	if err := rs.Validate(); err != nil {
		return RuleSet{}, err
	}
	return rs, nil
}
