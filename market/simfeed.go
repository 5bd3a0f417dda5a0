package market

import (
	"context"
	"math"
	"math/rand"
	"sync"
)

// basePrices seeds the simulator with plausible starting levels; unknown
// tickers start at 100.
var basePrices = map[string]float64{
	"SPY":  450.0,
	"AAPL": 175.0,
	"QQQ":  380.0,
	"TSLA": 240.0,
	"NVDA": 900.0,
	"AMD":  180.0,
	"MSTR": 1500.0,
	"COIN": 250.0,
}

// intervalsPerDay scales daily volatility down to a single observation
// (6.5 trading hours at 5-minute intervals).
const intervalsPerDay = 78

type trend struct {
	price      float64
	drift      float64
	volatility float64
}

// SimFeed simulates per-ticker prices as a random walk with a persistent
// daily drift. Each call to Latest advances the walk one step.
type SimFeed struct {
	mu     sync.Mutex
	rng    *rand.Rand
	trends map[string]*trend
}

// NewSimFeed creates a simulated feed. The seed makes runs reproducible;
// pass time.Now().UnixNano() for live-ish behavior.
func NewSimFeed(seed int64) *SimFeed {
	return &SimFeed{
		rng:    rand.New(rand.NewSource(seed)),
		trends: make(map[string]*trend),
	}
}

func (f *SimFeed) Latest(_ context.Context, ticker string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	tr, ok := f.trends[ticker]
	if !ok {
		base, known := basePrices[ticker]
		if !known {
			base = 100.0
		}
		tr = &trend{
			price:      base,
			drift:      f.rng.Float64()*0.04 - 0.02,  // -2%..+2% daily drift
			volatility: f.rng.Float64()*0.04 + 0.01,  // 1%..5% daily volatility
		}
		f.trends[ticker] = tr
	}

	move := tr.drift + f.rng.NormFloat64()*tr.volatility/math.Sqrt(intervalsPerDay)
	tr.price *= 1 + move
	if tr.price < 0.01 {
		tr.price = 0.01
	}

	return math.Round(tr.price*100) / 100, nil
}
