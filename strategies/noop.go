package strategies

import "backsim/market"

// Noop never signals. Useful for exercising the engine plumbing and for
// measuring the zero-trade baseline of a dataset.
type Noop struct{}

func NewNoop() *Noop { return &Noop{} }

func (Noop) Name() string        { return "noop" }
func (Noop) Warmup() int         { return 0 }
func (Noop) Profile() Profile    { return Profile{StopATR: 1.5, TakeATR: 2.0} }
func (Noop) Update(_ market.Bar) {}
func (Noop) Signal() Signal      { return Hold }
func (Noop) Reset()              {}
