// Package strategies holds the signal generators. Each strategy consumes
// bars one at a time through Update and classifies the bar just seen; the
// engine never looks ahead, so neither can a strategy.
package strategies

import (
	"fmt"
	"sort"

	"backsim/market"
)

// Signal is a strategy's verdict on the bar that just closed.
type Signal int

const (
	Hold Signal = iota
	Buy
	Sell
)

func (s Signal) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	}
	return "HOLD"
}

// Profile describes the exit and session parameters a strategy trades
// with. Hour fields are UTC; EntryStartHour == EntryEndHour means the
// strategy trades around the clock. TimeExitBars and TimeExitHour of zero
// disable the respective time exit.
type Profile struct {
	StopATR        float64
	TakeATR        float64
	TimeExitBars   int
	TimeExitHour   int
	EntryStartHour int
	EntryEndHour   int
}

// InSession reports whether a bar at the given UTC hour falls inside the
// strategy's entry window.
func (p Profile) InSession(hour int) bool {
	if p.EntryStartHour == p.EntryEndHour {
		return true
	}
	if p.EntryStartHour < p.EntryEndHour {
		return hour >= p.EntryStartHour && hour < p.EntryEndHour
	}
	// Window wraps midnight.
	return hour >= p.EntryStartHour || hour < p.EntryEndHour
}

// Strategy classifies closed bars into trade signals. Update must be called
// for every bar in order; Signal reports the verdict for the bar passed to
// the most recent Update and is only meaningful after Warmup bars.
type Strategy interface {
	Name() string
	Warmup() int
	Profile() Profile
	Update(b market.Bar)
	Signal() Signal
	Reset()
}

var registry = map[string]func() Strategy{
	"trend":    func() Strategy { return NewTrendFollower() },
	"momentum": func() Strategy { return NewMomentumContinuation() },
	"asian":    func() Strategy { return NewAsianBreakout() },
	"noop":     func() Strategy { return NewNoop() },
}

// ByName constructs a fresh strategy instance by its registry name.
func ByName(name string) (Strategy, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (have %v)", name, Names())
	}
	return factory(), nil
}

// Names lists the registered strategies in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
