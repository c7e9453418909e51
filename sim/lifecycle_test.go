package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backsim/market"
)

var xauMeta = market.Instrument("XAUUSD")

func bar(hour int, o, h, l, c float64) market.Bar {
	return market.Bar{
		Time:  time.Date(2024, 3, 1, hour, 0, 0, 0, time.UTC),
		Open:  o,
		High:  h,
		Low:   l,
		Close: c,
	}
}

func trailingRules() ExitRules {
	return ExitRules{
		StopATR:       1.5,
		TakeATR:       5.0,
		Trailing:      true,
		BreakevenATR:  1.0,
		TrailStartATR: 1.5,
		TrailDistATR:  1.0,
	}
}

func TestBreakevenMovesStopToEntry(t *testing.T) {
	t.Parallel()

	m := NewManager(xauMeta, CostModel{}, trailingRules())
	p := m.Open("t1", Long, bar(9, 1899, 1900, 1898, 1900), 0, 2.0, 0.01)
	require.InDelta(t, 1897.0, p.StopLoss, 1e-9)

	// Excursion 2.0 = 1.0 x ATR: stop moves to entry, trailing not yet armed.
	closed := m.Step(1, bar(10, 1900.5, 1902, 1900.5, 1901.5), 2.0)
	assert.Empty(t, closed)
	assert.InDelta(t, 1900.0, p.StopLoss, 1e-9)
	assert.True(t, p.BreakevenActive)
}

func TestTrailingStopFollowsHighAndOnlyTightens(t *testing.T) {
	t.Parallel()

	m := NewManager(xauMeta, CostModel{}, trailingRules())
	p := m.Open("t1", Long, bar(9, 1899, 1900, 1898, 1900), 0, 2.0, 0.01)

	// Excursion 4.0 >= 1.5 x ATR: trail to high - 1.0 x ATR = 1902.
	closed := m.Step(1, bar(10, 1901, 1904, 1902.2, 1903), 2.0)
	require.Empty(t, closed)
	assert.InDelta(t, 1902.0, p.StopLoss, 1e-9)

	// A weaker bar never loosens the stop.
	closed = m.Step(2, bar(11, 1903, 1903.5, 1902.3, 1902.5), 2.0)
	require.Empty(t, closed)
	assert.InDelta(t, 1902.0, p.StopLoss, 1e-9)

	// Price falls through the trailed stop: filled at the stop level.
	closed = m.Step(3, bar(12, 1902.5, 1902.6, 1901, 1901.2), 2.0)
	require.Len(t, closed, 1)
	assert.Equal(t, ExitStopLoss, closed[0].Reason)
	assert.InDelta(t, 1902.0, closed[0].ExitPrice, 1e-9)
	// 200 points x $1/point x 0.01 lots.
	assert.InDelta(t, 2.0, closed[0].RealizedPnL, 1e-9)
	assert.Equal(t, 0, m.OpenCount())
}

func TestShortBreakevenAndTrail(t *testing.T) {
	t.Parallel()

	m := NewManager(xauMeta, CostModel{}, trailingRules())
	p := m.Open("t1", Short, bar(9, 1901, 1902, 1900, 1900), 0, 2.0, 0.01)
	require.InDelta(t, 1903.0, p.StopLoss, 1e-9)

	closed := m.Step(1, bar(10, 1899.5, 1899.5, 1898, 1898.5), 2.0)
	require.Empty(t, closed)
	assert.InDelta(t, 1900.0, p.StopLoss, 1e-9)
	assert.True(t, p.BreakevenActive)

	// Excursion 4.0: trail to low + 1.0 x ATR = 1898.
	closed = m.Step(2, bar(11, 1897.5, 1897.5, 1896, 1897), 2.0)
	require.Empty(t, closed)
	assert.InDelta(t, 1898.0, p.StopLoss, 1e-9)
}

func TestSameBarStopAndTakePrecedence(t *testing.T) {
	t.Parallel()

	rules := ExitRules{StopATR: 1.0, TakeATR: 1.0}
	wide := bar(10, 1900, 1903, 1897, 1900) // sweeps both levels

	m := NewManager(xauMeta, CostModel{}, rules)
	m.Open("t1", Long, bar(9, 1899, 1900, 1898, 1900), 0, 2.0, 0.01)
	closed := m.Step(1, wide, 2.0)
	require.Len(t, closed, 1)
	assert.Equal(t, ExitStopLoss, closed[0].Reason)

	rules.Precedence = TakeFirst
	m = NewManager(xauMeta, CostModel{}, rules)
	m.Open("t2", Long, bar(9, 1899, 1900, 1898, 1900), 0, 2.0, 0.01)
	closed = m.Step(1, wide, 2.0)
	require.Len(t, closed, 1)
	assert.Equal(t, ExitTakeProfit, closed[0].Reason)
}

func TestBarCountTimeExitWinsOverStops(t *testing.T) {
	t.Parallel()

	rules := ExitRules{StopATR: 1.0, TakeATR: 10.0, TimeExitBars: 2}
	m := NewManager(xauMeta, CostModel{}, rules)
	m.Open("t1", Long, bar(9, 1899, 1900, 1898, 1900), 0, 2.0, 0.01)

	closed := m.Step(1, bar(10, 1900, 1901, 1899, 1900.5), 2.0)
	require.Empty(t, closed)

	// Bar 2 reaches the horizon and also trades through the stop; the
	// time exit is evaluated first and fills at the close.
	closed = m.Step(2, bar(11, 1900.5, 1901, 1897, 1900.2), 2.0)
	require.Len(t, closed, 1)
	assert.Equal(t, ExitTime, closed[0].Reason)
	assert.InDelta(t, 1900.2, closed[0].ExitPrice, 1e-9)
	assert.Equal(t, 2, closed[0].BarsHeld)
}

func TestSessionCutoffTimeExit(t *testing.T) {
	t.Parallel()

	rules := ExitRules{StopATR: 1.0, TakeATR: 10.0, TimeExitHour: 20}
	m := NewManager(xauMeta, CostModel{}, rules)
	m.Open("t1", Long, bar(18, 1899, 1900, 1898, 1900), 0, 2.0, 0.01)

	closed := m.Step(1, bar(19, 1900, 1901, 1899.5, 1900.5), 2.0)
	require.Empty(t, closed)

	closed = m.Step(2, bar(20, 1900.5, 1901, 1900, 1900.8), 2.0)
	require.Len(t, closed, 1)
	assert.Equal(t, ExitTime, closed[0].Reason)
}

func TestCloseAllAtEndOfData(t *testing.T) {
	t.Parallel()

	m := NewManager(xauMeta, xauCosts, ExitRules{StopATR: 5.0, TakeATR: 10.0})
	m.Open("t1", Long, bar(9, 1899, 1900, 1898, 1900), 0, 2.0, 0.10)

	closed := m.CloseAll(5, bar(14, 1904, 1905.5, 1903.5, 1905), ExitEndOfData)
	require.Len(t, closed, 1)

	trade := closed[0]
	assert.Equal(t, ExitEndOfData, trade.Reason)
	assert.Equal(t, 0, m.OpenCount())

	// Entry 1900.20, exit 1904.80, 460 points x $1 x 0.10 lots - $0.70.
	assert.InDelta(t, 1900.20, trade.EntryPrice, 1e-9)
	assert.InDelta(t, 1904.80, trade.ExitPrice, 1e-9)
	assert.InDelta(t, 0.70, trade.Commission, 1e-9)
	assert.InDelta(t, 45.30, trade.RealizedPnL, 1e-9)
	assert.True(t, trade.Win())
}
