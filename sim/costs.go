// Package sim implements the trade simulation primitives: the execution cost
// model, open positions, and the per-bar position lifecycle.
package sim

import "math"

// CostModel converts raw candle prices into executable fills by charging
// half of spread+slippage on each side, and computes lot-based commission.
// All methods are pure; the zero value simulates free, frictionless fills.
type CostModel struct {
	Spread           float64 // full spread in price units, e.g. 0.30 for XAUUSD
	Slippage         float64 // average slippage in price units, e.g. 0.10
	CommissionPerLot float64 // round-trip commission per 1.0 lot, e.g. 7.0
	MinLots          float64 // commission floor, e.g. 0.01
}

// halfCost is the adverse price shift applied per fill. Entry and exit each
// pay half of spread+slippage, so a round trip pays the full amount once.
func (c CostModel) halfCost() float64 {
	return (c.Spread + c.Slippage) / 2
}

// EntryPrice shifts a raw fill price against the trader on entry:
// longs pay up, shorts receive less.
func (c CostModel) EntryPrice(raw float64, dir Direction) float64 {
	if dir == Long {
		return raw + c.halfCost()
	}
	return raw - c.halfCost()
}

// ExitPrice shifts a raw fill price against the trader on exit, mirroring
// EntryPrice: closing a long sells lower, closing a short buys higher.
func (c CostModel) ExitPrice(raw float64, dir Direction) float64 {
	if dir == Long {
		return raw - c.halfCost()
	}
	return raw + c.halfCost()
}

// Commission returns the round-trip commission for a position of the given
// lot volume, floored at MinLots.
func (c CostModel) Commission(lots float64) float64 {
	if c.CommissionPerLot == 0 {
		return 0
	}
	return c.CommissionPerLot * math.Max(lots, c.MinLots)
}
