package risk

import (
	"fmt"
	"time"
)

// Violation is one reason an entry was rejected.
type Violation struct {
	Code string
	Msg  string
}

// Decision is the gatekeeper's verdict on a prospective entry.
type Decision struct {
	Allowed    bool
	Violations []Violation
}

func (d *Decision) add(code, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
	d.Allowed = false
}

// MonitorConfig bounds daily trading activity.
type MonitorConfig struct {
	MaxOpenTrades   int     // concurrent position cap, e.g. 1
	MaxDailyTrades  int     // entries per calendar day, e.g. 3
	MaxDailyLossPct float64 // kill switch threshold, e.g. 0.03
}

// Monitor is the gatekeeper. It tracks per-day realized PnL and trade count
// from bar timestamps and enforces the daily limits, including a kill switch
// that stays latched for the remainder of the trading day once the daily
// loss limit is breached.
type Monitor struct {
	cfg MonitorConfig

	day           time.Time // start of current simulated calendar day (UTC)
	dailyTrades   int
	dailyRealized float64
	killSwitch    bool
}

// NewMonitor creates a gatekeeper with the given limits.
func NewMonitor(cfg MonitorConfig) *Monitor {
	return &Monitor{cfg: cfg}
}

// rollDay resets the daily counters when the simulated date advances.
// Time flows from bar timestamps, never from the wall clock, so runs stay
// deterministic.
func (m *Monitor) rollDay(now time.Time) {
	day := now.UTC().Truncate(24 * time.Hour)
	if day.After(m.day) {
		m.day = day
		m.dailyTrades = 0
		m.dailyRealized = 0
		m.killSwitch = false
	}
}

// RecordClose feeds a closed trade's PnL into the daily tallies and latches
// the kill switch if the daily loss limit is breached.
//
// The limit is measured against the current balance rather than the
// start-of-day balance; the original system did the same and the intent is
// ambiguous, so the behavior is kept.
func (m *Monitor) RecordClose(now time.Time, pnl, balance float64) {
	m.rollDay(now)
	m.dailyRealized += pnl

	if m.cfg.MaxDailyLossPct > 0 && m.dailyRealized <= -(m.cfg.MaxDailyLossPct*balance) {
		m.killSwitch = true
	}
}

// RecordEntry counts a new position against the daily trade limit.
func (m *Monitor) RecordEntry(now time.Time) {
	m.rollDay(now)
	m.dailyTrades++
}

// CheckEntry reports whether a new position may be opened at now.
func (m *Monitor) CheckEntry(now time.Time, openPositions int) Decision {
	m.rollDay(now)

	d := Decision{Allowed: true}

	if m.killSwitch {
		d.add("DAILY_LOSS_LIMIT", "kill switch active for remainder of day")
		return d
	}
	if m.cfg.MaxDailyTrades > 0 && m.dailyTrades >= m.cfg.MaxDailyTrades {
		d.add("MAX_DAILY_TRADES",
			fmt.Sprintf("daily trades %d >= max %d", m.dailyTrades, m.cfg.MaxDailyTrades))
	}
	if m.cfg.MaxOpenTrades > 0 && openPositions >= m.cfg.MaxOpenTrades {
		d.add("MAX_OPEN_TRADES",
			fmt.Sprintf("open positions %d >= max %d", openPositions, m.cfg.MaxOpenTrades))
	}
	return d
}

// KillSwitchActive exposes the latch for reporting and tests.
func (m *Monitor) KillSwitchActive() bool { return m.killSwitch }

// DailyRealized exposes today's realized PnL.
func (m *Monitor) DailyRealized() float64 { return m.dailyRealized }
