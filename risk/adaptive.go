package risk

// Drawdown and loss-streak thresholds for the adaptive policy.
const (
	ddHaltLevel  = 0.15 // trading stops entirely
	ddHeavyLevel = 0.10 // risk halved
	ddLightLevel = 0.05 // risk reduced to 75%
	streakHeavy  = 5    // multiplier *= 0.25
	streakLight  = 3    // multiplier *= 0.5
)

// AdaptiveRisk scales the per-trade risk fraction down as drawdown from the
// balance peak deepens or a losing streak builds, and halts trading past a
// hard drawdown level.
//
// It is path-dependent state: Risk and RecordResult must be called in
// chronological trade order, RecordResult exactly once per closed trade.
type AdaptiveRisk struct {
	baseRisk float64

	peakBalance  float64
	havePeak     bool
	consecLosses int
}

// NewAdaptiveRisk creates an adaptive policy around a base per-trade risk
// fraction (e.g. 0.01 for 1%).
func NewAdaptiveRisk(baseRisk float64) *AdaptiveRisk {
	return &AdaptiveRisk{baseRisk: baseRisk}
}

// Risk returns the risk fraction to use for the next trade given the current
// balance. A zero return means trading is halted by drawdown.
func (a *AdaptiveRisk) Risk(balance float64) float64 {
	if !a.havePeak {
		a.peakBalance = balance
		a.havePeak = true
	}
	if balance > a.peakBalance {
		a.peakBalance = balance
	}
	if a.peakBalance <= 0 {
		return 0
	}

	drawdown := (a.peakBalance - balance) / a.peakBalance

	if drawdown >= ddHaltLevel {
		return 0
	}

	multiplier := 1.0
	switch {
	case drawdown >= ddHeavyLevel:
		multiplier = 0.5
	case drawdown >= ddLightLevel:
		multiplier = 0.75
	}

	switch {
	case a.consecLosses >= streakHeavy:
		multiplier *= 0.25
	case a.consecLosses >= streakLight:
		multiplier *= 0.5
	}

	return a.baseRisk * multiplier
}

// RecordResult feeds a closed trade's PnL into the loss-streak counter.
// Any non-losing trade resets the streak.
func (a *AdaptiveRisk) RecordResult(pnl float64) {
	if pnl < 0 {
		a.consecLosses++
	} else {
		a.consecLosses = 0
	}
}

// PeakBalance exposes the high-water mark, monotonically non-decreasing.
func (a *AdaptiveRisk) PeakBalance() float64 { return a.peakBalance }

// ConsecutiveLosses exposes the current losing streak length.
func (a *AdaptiveRisk) ConsecutiveLosses() int { return a.consecLosses }
