package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPositionSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		equity        float64
		price         float64
		allocationPct float64
		want          int64
	}{
		{"one percent", 100000, 100, 1.0, 10},
		{"tiny allocation floors to one", 100000, 100, 0.001, 1},
		{"floors fractional shares", 100000, 333, 1.0, 3},
		{"five percent", 100000, 250, 5.0, 20},
		{"zero equity", 0, 100, 1.0, 0},
		{"zero price", 100000, 0, 1.0, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, PositionSize(tt.equity, tt.price, tt.allocationPct))
		})
	}
}

func TestPositionSizeDeterministic(t *testing.T) {
	t.Parallel()

	first := PositionSize(54321.99, 87.65, 2.5)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, PositionSize(54321.99, 87.65, 2.5))
	}
	assert.GreaterOrEqual(t, first, int64(1))
}
