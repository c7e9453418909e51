package sim

import "time"

// Direction of a position: +1 long, -1 short.
type Direction int

const (
	Long  Direction = +1
	Short Direction = -1
)

func (d Direction) String() string {
	if d == Short {
		return "SELL"
	}
	return "BUY"
}

// ExitReason records why a position was closed.
type ExitReason string

const (
	ExitStopLoss   ExitReason = "STOP_LOSS"
	ExitTakeProfit ExitReason = "TAKE_PROFIT"
	ExitTime       ExitReason = "TIME"
	ExitEndOfData  ExitReason = "END_OF_DATA"
)

// Position is one open trade, owned exclusively by the Manager while open.
// StopLoss is the only mutable level; breakeven and trailing revisions only
// ever move it in the position's favor.
type Position struct {
	ID         string
	Direction  Direction
	EntryTime  time.Time
	EntryPrice float64
	Lots       float64
	StopLoss   float64
	TakeProfit float64
	EntryBar   int

	// BreakevenActive is set once when the stop first reaches entry and is
	// never reset while the position is open.
	BreakevenActive bool
}

// ClosedTrade is the immutable ledger record a Position becomes on close.
type ClosedTrade struct {
	ID          string
	Direction   Direction
	EntryTime   time.Time
	EntryPrice  float64
	ExitTime    time.Time
	ExitPrice   float64
	Lots        float64
	Commission  float64
	RealizedPnL float64
	Reason      ExitReason
	BarsHeld    int
}

// Win reports whether the trade was profitable after costs.
func (t ClosedTrade) Win() bool { return t.RealizedPnL > 0 }
