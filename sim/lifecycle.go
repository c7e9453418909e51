package sim

import (
	"math"

	"backsim/market"
)

// ExitPrecedence decides which fill wins when stop-loss and take-profit are
// both touched inside the same bar. Intrabar sequencing is unknowable from
// OHLC data, so StopFirst (the adverse outcome) is the conservative default.
type ExitPrecedence int

const (
	StopFirst ExitPrecedence = iota
	TakeFirst
)

// ExitRules parameterizes how positions are protected and closed.
// Distances are in multiples of the current ATR. TimeExitBars and
// TimeExitHour are both optional (<= 0 disables); strategies with a
// bar-count horizon or a session cutoff get their time exit evaluated
// before SL/TP on the same bar.
type ExitRules struct {
	StopATR float64 // initial stop distance
	TakeATR float64 // take-profit distance

	Trailing      bool    // enable breakeven + trailing stop revision
	BreakevenATR  float64 // favorable excursion that moves the stop to entry
	TrailStartATR float64 // favorable excursion that starts trailing
	TrailDistATR  float64 // trail distance behind the bar extreme

	TimeExitBars int // close after this many bars held
	TimeExitHour int // close when the bar's UTC hour reaches this cutoff

	Precedence ExitPrecedence
}

// hasTimeExit reports whether these rules define any time-based exit.
func (r ExitRules) hasTimeExit() bool {
	return r.TimeExitBars > 0 || r.TimeExitHour > 0
}

// StopDistance returns the initial stop distance in price units for the
// given ATR. Zero or negative results mean the entry must be rejected.
func (r ExitRules) StopDistance(atr float64) float64 {
	return r.StopATR * atr
}

// Manager owns every open position and applies the per-bar transition order:
// stop revision (breakeven, then trailing), then time exit, then SL/TP.
// Closes convert positions into immutable ClosedTrades exactly once.
type Manager struct {
	instr market.InstrumentMeta
	costs CostModel
	rules ExitRules

	open []*Position
}

// NewManager creates a lifecycle manager for one instrument.
func NewManager(instr market.InstrumentMeta, costs CostModel, rules ExitRules) *Manager {
	return &Manager{instr: instr, costs: costs, rules: rules}
}

// OpenCount returns the number of currently open positions.
func (m *Manager) OpenCount() int { return len(m.open) }

// Open creates a position filled at the bar close plus entry costs, with
// stop and target placed at the rules' ATR multiples from the fill.
func (m *Manager) Open(id string, dir Direction, bar market.Bar, barIdx int, atr, lots float64) *Position {
	entry := m.costs.EntryPrice(bar.Close, dir)
	slDist := m.rules.StopDistance(atr)
	tpDist := m.rules.TakeATR * atr

	p := &Position{
		ID:         id,
		Direction:  dir,
		EntryTime:  bar.Time,
		EntryPrice: entry,
		Lots:       lots,
		EntryBar:   barIdx,
	}
	if dir == Long {
		p.StopLoss = entry - slDist
		p.TakeProfit = entry + tpDist
	} else {
		p.StopLoss = entry + slDist
		p.TakeProfit = entry - tpDist
	}

	m.open = append(m.open, p)
	return p
}

// Step advances every open position through one bar and returns the trades
// closed on it, in position-open order.
func (m *Manager) Step(barIdx int, bar market.Bar, atr float64) []ClosedTrade {
	var closed []ClosedTrade
	remaining := m.open[:0]

	for _, p := range m.open {
		if m.rules.Trailing && atr > 0 {
			m.reviseStop(p, bar, atr)
		}

		if reason, rawExit, hit := m.checkExit(p, bar, barIdx); hit {
			closed = append(closed, m.close(p, bar, barIdx, rawExit, reason))
			continue
		}
		remaining = append(remaining, p)
	}

	m.open = remaining
	return closed
}

// CloseAll force-closes every open position at the bar close. Used at the
// end of the data stream; the normal cost path still applies.
func (m *Manager) CloseAll(barIdx int, bar market.Bar, reason ExitReason) []ClosedTrade {
	var closed []ClosedTrade
	for _, p := range m.open {
		closed = append(closed, m.close(p, bar, barIdx, bar.Close, reason))
	}
	m.open = nil
	return closed
}

// reviseStop applies breakeven and trailing adjustments. The stop only ever
// tightens: max() for longs, min() for shorts.
func (m *Manager) reviseStop(p *Position, bar market.Bar, atr float64) {
	if p.Direction == Long {
		excursion := bar.High - p.EntryPrice

		if excursion >= m.rules.BreakevenATR*atr {
			p.StopLoss = math.Max(p.StopLoss, p.EntryPrice)
			if !p.BreakevenActive && p.StopLoss >= p.EntryPrice {
				p.BreakevenActive = true
			}
		}
		if excursion >= m.rules.TrailStartATR*atr {
			p.StopLoss = math.Max(p.StopLoss, bar.High-m.rules.TrailDistATR*atr)
		}
		return
	}

	excursion := p.EntryPrice - bar.Low

	if excursion >= m.rules.BreakevenATR*atr {
		p.StopLoss = math.Min(p.StopLoss, p.EntryPrice)
		if !p.BreakevenActive && p.StopLoss <= p.EntryPrice {
			p.BreakevenActive = true
		}
	}
	if excursion >= m.rules.TrailStartATR*atr {
		p.StopLoss = math.Min(p.StopLoss, bar.Low+m.rules.TrailDistATR*atr)
	}
}

// checkExit evaluates the exit conditions for one bar. Time exits, when the
// rules define one, win over SL/TP on the same bar; otherwise SL/TP are
// checked with the configured same-bar precedence.
func (m *Manager) checkExit(p *Position, bar market.Bar, barIdx int) (ExitReason, float64, bool) {
	if m.rules.hasTimeExit() {
		if m.rules.TimeExitBars > 0 && barIdx-p.EntryBar >= m.rules.TimeExitBars {
			return ExitTime, bar.Close, true
		}
		if m.rules.TimeExitHour > 0 && bar.Time.UTC().Hour() >= m.rules.TimeExitHour {
			return ExitTime, bar.Close, true
		}
	}

	var stopHit, takeHit bool
	if p.Direction == Long {
		stopHit = p.StopLoss > 0 && bar.Low <= p.StopLoss
		takeHit = p.TakeProfit > 0 && bar.High >= p.TakeProfit
	} else {
		stopHit = p.StopLoss > 0 && bar.High >= p.StopLoss
		takeHit = p.TakeProfit > 0 && bar.Low <= p.TakeProfit
	}

	switch {
	case stopHit && takeHit:
		if m.rules.Precedence == TakeFirst {
			return ExitTakeProfit, p.TakeProfit, true
		}
		return ExitStopLoss, p.StopLoss, true
	case stopHit:
		return ExitStopLoss, p.StopLoss, true
	case takeHit:
		return ExitTakeProfit, p.TakeProfit, true
	}
	return "", 0, false
}

// close applies exit costs and commission, computes the realized PnL, and
// produces the immutable ledger record.
func (m *Manager) close(p *Position, bar market.Bar, barIdx int, rawExit float64, reason ExitReason) ClosedTrade {
	exit := m.costs.ExitPrice(rawExit, p.Direction)
	commission := m.costs.Commission(p.Lots)

	points := m.instr.Points(exit-p.EntryPrice) * float64(p.Direction)
	pnl := points*m.instr.TickValue*p.Lots - commission

	return ClosedTrade{
		ID:          p.ID,
		Direction:   p.Direction,
		EntryTime:   p.EntryTime,
		EntryPrice:  p.EntryPrice,
		ExitTime:    bar.Time,
		ExitPrice:   exit,
		Lots:        p.Lots,
		Commission:  commission,
		RealizedPnL: pnl,
		Reason:      reason,
		BarsHeld:    barIdx - p.EntryBar,
	}
}
