// Package risk implements position sizing, drawdown-adaptive risk, and the
// daily trading gatekeeper.
package risk

import "math"

// SizerInputs are the parameters for fixed-fractional position sizing.
type SizerInputs struct {
	Balance    float64 // current account balance, > 0
	RiskPct    float64 // fraction of balance risked per trade, e.g. 0.01
	StopPoints float64 // stop distance in points
	TickValue  float64 // account-currency value of one point for 1.0 lot

	LotStep float64 // broker volume step, e.g. 0.01
	MinLot  float64 // smallest tradable volume
	MaxLot  float64 // largest tradable volume
}

// SizerResult carries the computed volume plus the intermediate risk amount,
// useful for journaling and diagnostics.
type SizerResult struct {
	Lots       float64
	RiskAmount float64
}

// Size computes a broker-valid lot size so that RiskPct of Balance is lost if
// the stop is hit. The raw size is floored to LotStep, clamped to
// [MinLot, MaxLot], and rounded to two decimals to shed float residue.
//
// A zero result means "do not open a position" — it is returned, not an
// error, when StopPoints or TickValue are non-positive.
func Size(in SizerInputs) SizerResult {
	if in.StopPoints <= 0 || in.TickValue <= 0 {
		return SizerResult{}
	}

	step := in.LotStep
	if step <= 0 {
		step = 0.01
	}

	riskAmount := in.Balance * in.RiskPct
	rawLots := riskAmount / (in.StopPoints * in.TickValue)

	lots := math.Floor(rawLots/step) * step
	lots = math.Max(in.MinLot, math.Min(lots, in.MaxLot))

	// Shed float residue like 0.120000000000001.
	lots = math.Round(lots*100) / 100

	return SizerResult{Lots: lots, RiskAmount: riskAmount}
}
