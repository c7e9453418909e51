package strategies

import (
	"time"

	"backsim/market"
)

const (
	asianStartHour  = 0
	asianEndHour    = 8
	asianEntryStart = 8
	asianEntryEnd   = 11

	// Minimum bars observed in the Asian session for the range to count.
	asianMinBars = 5

	// Range bounds in price units. Too narrow breaks out violently, too
	// wide has already spent its energy.
	asianMinRange = 5.0
	asianMaxRange = 40.0
)

// AsianBreakout trades the first London-session break of the Asian range.
// The range accumulates over 00:00-08:00 UTC; a close beyond either bound
// during 08:00-11:00 UTC signals in the break direction. One signal per
// day and direction-less afterwards: once the range is consumed, the
// strategy holds until the next session.
type AsianBreakout struct {
	day       time.Time
	rangeHigh float64
	rangeLow  float64
	rangeBars int
	consumed  bool

	sig Signal
}

func NewAsianBreakout() *AsianBreakout {
	return &AsianBreakout{}
}

func (a *AsianBreakout) Name() string { return "asian" }

func (a *AsianBreakout) Warmup() int { return asianMinBars }

func (a *AsianBreakout) Profile() Profile {
	return Profile{
		StopATR:        1.5,
		TakeATR:        2.0,
		EntryStartHour: asianEntryStart,
		EntryEndHour:   asianEntryEnd,
	}
}

func (a *AsianBreakout) Reset() {
	a.day = time.Time{}
	a.rangeBars = 0
	a.consumed = false
	a.sig = Hold
}

func (a *AsianBreakout) Update(b market.Bar) {
	day := b.Time.UTC().Truncate(24 * time.Hour)
	if !day.Equal(a.day) {
		a.day = day
		a.rangeHigh = 0
		a.rangeLow = 0
		a.rangeBars = 0
		a.consumed = false
	}

	hour := b.Time.UTC().Hour()
	if hour >= asianStartHour && hour < asianEndHour {
		if a.rangeBars == 0 || b.High > a.rangeHigh {
			a.rangeHigh = b.High
		}
		if a.rangeBars == 0 || b.Low < a.rangeLow {
			a.rangeLow = b.Low
		}
		a.rangeBars++
	}

	a.sig = a.classify(b, hour)
	if a.sig != Hold {
		a.consumed = true
	}
}

func (a *AsianBreakout) Signal() Signal { return a.sig }

func (a *AsianBreakout) classify(b market.Bar, hour int) Signal {
	if a.consumed {
		return Hold
	}
	if hour < asianEntryStart || hour >= asianEntryEnd {
		return Hold
	}
	if a.rangeBars < asianMinBars {
		return Hold
	}

	size := a.rangeHigh - a.rangeLow
	if size < asianMinRange || size > asianMaxRange {
		return Hold
	}

	if b.Close > a.rangeHigh {
		return Buy
	}
	if b.Close < a.rangeLow {
		return Sell
	}
	return Hold
}
