package strategies

import (
	"math"

	"backsim/indicators"
	"backsim/market"
)

const (
	trendFastPeriod = 50
	trendSlowPeriod = 200
	trendRSIPeriod  = 14

	// Fast and slow EMA must be separated by at least 0.1% of price,
	// otherwise the regime is treated as sideways.
	trendMinEMADistance = 0.001

	trendPullbackBars = 3
	trendRSILow       = 40
	trendRSIHigh      = 60
)

// pullbackBar snapshots the bar extremes against the fast EMA at the time
// the bar closed, so the pullback test uses the EMA as it was then.
type pullbackBar struct {
	low, high, ema float64
}

// TrendFollower trades pullbacks within an EMA50/EMA200 trend.
//
// Long setup: fast EMA above slow, price touched the fast EMA within the
// last three bars, RSI was in the 40-60 band and is now rising, and the
// bar closed bullish above the fast EMA. Shorts mirror every condition.
type TrendFollower struct {
	fast *indicators.EMA
	slow *indicators.EMA
	rsi  *indicators.RSI

	recent  []pullbackBar
	prevRSI float64
	haveRSI bool
	sig     Signal
}

func NewTrendFollower() *TrendFollower {
	return &TrendFollower{
		fast: indicators.NewEMA(trendFastPeriod),
		slow: indicators.NewEMA(trendSlowPeriod),
		rsi:  indicators.NewRSI(trendRSIPeriod),
	}
}

func (t *TrendFollower) Name() string { return "trend" }

func (t *TrendFollower) Warmup() int {
	// The slow EMA dominates; one extra bar gives the RSI a previous value.
	return t.slow.Warmup() + 1
}

func (t *TrendFollower) Profile() Profile {
	return Profile{StopATR: 1.5, TakeATR: 2.0}
}

func (t *TrendFollower) Reset() {
	t.fast.Reset()
	t.slow.Reset()
	t.rsi.Reset()
	t.recent = nil
	t.prevRSI = 0
	t.haveRSI = false
	t.sig = Hold
}

func (t *TrendFollower) Update(b market.Bar) {
	rsiPrev, havePrev := t.rsi.Value(), t.rsi.Ready()

	t.fast.Update(b)
	t.slow.Update(b)
	t.rsi.Update(b)

	t.recent = append(t.recent, pullbackBar{low: b.Low, high: b.High, ema: t.fast.Value()})
	if len(t.recent) > trendPullbackBars {
		t.recent = t.recent[1:]
	}
	t.prevRSI, t.haveRSI = rsiPrev, havePrev

	t.sig = t.classify(b)
}

func (t *TrendFollower) Signal() Signal { return t.sig }

func (t *TrendFollower) classify(b market.Bar) Signal {
	if !t.fast.Ready() || !t.slow.Ready() || !t.rsi.Ready() || !t.haveRSI {
		return Hold
	}
	if len(t.recent) < trendPullbackBars {
		return Hold
	}

	emaFast, emaSlow := t.fast.Value(), t.slow.Value()
	if b.Close <= 0 || math.Abs(emaFast-emaSlow)/b.Close < trendMinEMADistance {
		return Hold
	}

	rsiNow := t.rsi.Value()

	if emaFast > emaSlow {
		if !t.touchedFromAbove() {
			return Hold
		}
		if t.prevRSI < trendRSILow || t.prevRSI > trendRSIHigh || rsiNow <= t.prevRSI {
			return Hold
		}
		if b.Close > b.Open && b.Close > emaFast {
			return Buy
		}
		return Hold
	}

	if emaFast < emaSlow {
		if !t.touchedFromBelow() {
			return Hold
		}
		if t.prevRSI < trendRSILow || t.prevRSI > trendRSIHigh || rsiNow >= t.prevRSI {
			return Hold
		}
		if b.Close < b.Open && b.Close < emaFast {
			return Sell
		}
	}
	return Hold
}

// touchedFromAbove reports a pullback in an uptrend: some recent bar's low
// reached down to its fast EMA.
func (t *TrendFollower) touchedFromAbove() bool {
	for _, r := range t.recent {
		if r.low <= r.ema {
			return true
		}
	}
	return false
}

// touchedFromBelow reports a pullback in a downtrend.
func (t *TrendFollower) touchedFromBelow() bool {
	for _, r := range t.recent {
		if r.high >= r.ema {
			return true
		}
	}
	return false
}
