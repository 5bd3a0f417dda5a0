// Package indicators provides the technical-analysis primitives used by
// the entry conditions. All functions operate on a price series ordered
// oldest first and return 0 when the series is too short.
package indicators

// SMA returns the simple moving average of the last period prices.
func SMA(prices []float64, period int) float64 {
	if period <= 0 || len(prices) < period {
		return 0
	}

	sum := 0.0
	for _, p := range prices[len(prices)-period:] {
		sum += p
	}
	return sum / float64(period)
}

// EMA returns the exponential moving average over the series, seeded with
// the SMA of the first period values.
func EMA(prices []float64, period int) float64 {
	if period <= 0 || len(prices) < period {
		return 0
	}

	ema := SMA(prices[:period], period)
	multiplier := 2.0 / float64(period+1)
	for _, p := range prices[period:] {
		ema = (p-ema)*multiplier + ema
	}
	return ema
}

// RSI returns Wilder's relative strength index over the last period
// intervals. A series with no losses yields 100.
func RSI(prices []float64, period int) float64 {
	if period <= 0 || len(prices) < period+1 {
		return 0
	}

	window := prices[len(prices)-period-1:]
	var gains, losses float64
	for i := 1; i < len(window); i++ {
		delta := window[i] - window[i-1]
		if delta > 0 {
			gains += delta
		} else {
			losses -= delta
		}
	}

	if losses == 0 {
		return 100
	}
	rs := gains / losses
	return 100 - 100/(1+rs)
}

// Highest returns the maximum of the last period prices.
func Highest(prices []float64, period int) float64 {
	if period <= 0 || len(prices) < period {
		return 0
	}

	max := prices[len(prices)-period]
	for _, p := range prices[len(prices)-period:] {
		if p > max {
			max = p
		}
	}
	return max
}
