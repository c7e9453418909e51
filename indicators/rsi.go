package indicators

import (
	"fmt"

	"backsim/market"
)

// RSI is a streaming Relative Strength Index using Wilder's smoothing
// (alpha = 1/period), the convention trading platforms use.
type RSI struct {
	period    int
	avgGain   float64
	avgLoss   float64
	count     int
	prevClose float64
	hasPrev   bool
}

// NewRSI creates a Relative Strength Index indicator with the given period.
func NewRSI(period int) *RSI {
	return &RSI{period: period}
}

func (r *RSI) Name() string {
	return fmt.Sprintf("RSI(%d)", r.period)
}

func (r *RSI) Warmup() int {
	// Need period+1 bars because the first delta requires a previous close.
	return r.period + 1
}

func (r *RSI) Reset() {
	r.avgGain = 0
	r.avgLoss = 0
	r.count = 0
	r.prevClose = 0
	r.hasPrev = false
}

func (r *RSI) Update(b market.Bar) {
	if !r.hasPrev {
		r.prevClose = b.Close
		r.hasPrev = true
		return
	}

	delta := b.Close - r.prevClose
	r.prevClose = b.Close

	gain, loss := 0.0, 0.0
	if delta > 0 {
		gain = delta
	} else {
		loss = -delta
	}

	if r.count < r.period {
		// Warmup: plain average of the first period deltas.
		r.avgGain += gain
		r.avgLoss += loss
		r.count++
		if r.count == r.period {
			r.avgGain /= float64(r.period)
			r.avgLoss /= float64(r.period)
		}
		return
	}

	// Wilder's smoothing
	n := float64(r.period)
	r.avgGain = (r.avgGain*(n-1) + gain) / n
	r.avgLoss = (r.avgLoss*(n-1) + loss) / n
}

func (r *RSI) Ready() bool {
	return r.count >= r.period
}

func (r *RSI) Value() float64 {
	if !r.Ready() {
		return 0
	}
	if r.avgLoss == 0 {
		return 100
	}
	rs := r.avgGain / r.avgLoss
	return 100 - 100/(1+rs)
}
