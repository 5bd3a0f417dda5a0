package controller

import "sync"

// historyCap bounds the per-ticker price window. It comfortably exceeds
// the longest indicator lookback the entry conditions use.
const historyCap = 50

// history keeps a bounded window of recent prices per ticker.
type history struct {
	mu     sync.Mutex
	series map[string][]float64
}

func newHistory() *history {
	return &history{series: make(map[string][]float64)}
}

// Observe appends a price, dropping the oldest once the window is full.
func (h *history) Observe(ticker string, price float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := append(h.series[ticker], price)
	if len(s) > historyCap {
		s = s[len(s)-historyCap:]
	}
	h.series[ticker] = s
}

// Prices returns a copy of the window, oldest first.
func (h *history) Prices(ticker string) []float64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.series[ticker]
	out := make([]float64, len(s))
	copy(out, s)
	return out
}
