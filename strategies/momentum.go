package strategies

import (
	"math"
	"time"

	"backsim/indicators"
	"backsim/market"
)

const (
	momentumLondonOpen = 7
	momentumNYOpen     = 13
	momentumSessionEnd = 18

	momentumDisplacementATR = 2.0
	momentumStrongBodyATR   = 0.6
	momentumATRPeriod       = 14
)

// MomentumContinuation follows intraday displacement on trending metals.
// When price moves more than 2x ATR away from the session open and the
// current bar body confirms (>= 0.6x ATR), it joins the move. Positions
// carry a six-bar horizon so stale momentum gets flushed.
type MomentumContinuation struct {
	atr *indicators.ATR

	day        time.Time
	londonOpen float64
	nyOpen     float64
	haveLondon bool
	haveNY     bool

	sig Signal
}

func NewMomentumContinuation() *MomentumContinuation {
	return &MomentumContinuation{atr: indicators.NewATR(momentumATRPeriod)}
}

func (m *MomentumContinuation) Name() string { return "momentum" }

func (m *MomentumContinuation) Warmup() int { return m.atr.Warmup() }

func (m *MomentumContinuation) Profile() Profile {
	return Profile{
		StopATR:        1.5,
		TakeATR:        2.0,
		TimeExitBars:   6,
		EntryStartHour: momentumLondonOpen,
		EntryEndHour:   momentumSessionEnd,
	}
}

func (m *MomentumContinuation) Reset() {
	m.atr.Reset()
	m.day = time.Time{}
	m.haveLondon = false
	m.haveNY = false
	m.sig = Hold
}

func (m *MomentumContinuation) Update(b market.Bar) {
	m.atr.Update(b)

	day := b.Time.UTC().Truncate(24 * time.Hour)
	if !day.Equal(m.day) {
		m.day = day
		m.haveLondon = false
		m.haveNY = false
	}

	hour := b.Time.UTC().Hour()
	if !m.haveLondon && hour >= momentumLondonOpen {
		m.londonOpen = b.Close
		m.haveLondon = true
	}
	if !m.haveNY && hour >= momentumNYOpen {
		m.nyOpen = b.Close
		m.haveNY = true
	}

	m.sig = m.classify(b, hour)
}

func (m *MomentumContinuation) Signal() Signal { return m.sig }

func (m *MomentumContinuation) classify(b market.Bar, hour int) Signal {
	if !m.atr.Ready() {
		return Hold
	}
	if hour < momentumLondonOpen || hour >= momentumSessionEnd {
		return Hold
	}

	// Measure displacement from the most recent session open.
	var sessionOpen float64
	switch {
	case hour >= momentumNYOpen && m.haveNY:
		sessionOpen = m.nyOpen
	case m.haveLondon:
		sessionOpen = m.londonOpen
	default:
		return Hold
	}

	atr := m.atr.Value()
	displacement := b.Close - sessionOpen
	if math.Abs(displacement) < momentumDisplacementATR*atr {
		return Hold
	}
	if math.Abs(b.Close-b.Open) < momentumStrongBodyATR*atr {
		return Hold
	}

	if displacement > 0 {
		return Buy
	}
	return Sell
}
