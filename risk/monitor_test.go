package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var monCfg = MonitorConfig{
	MaxOpenTrades:   1,
	MaxDailyTrades:  3,
	MaxDailyLossPct: 0.03,
}

func TestMonitorAllowsByDefault(t *testing.T) {
	t.Parallel()

	m := NewMonitor(monCfg)
	d := m.CheckEntry(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), 0)
	assert.True(t, d.Allowed)
	assert.Empty(t, d.Violations)
}

func TestMonitorMaxOpenTrades(t *testing.T) {
	t.Parallel()

	m := NewMonitor(monCfg)
	d := m.CheckEntry(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), 1)
	assert.False(t, d.Allowed)
	assert.Equal(t, "MAX_OPEN_TRADES", d.Violations[0].Code)
}

func TestMonitorDailyTradeLimit(t *testing.T) {
	t.Parallel()

	m := NewMonitor(monCfg)
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		m.RecordEntry(now.Add(time.Duration(i) * time.Hour))
	}
	d := m.CheckEntry(now.Add(4*time.Hour), 0)
	assert.False(t, d.Allowed)
	assert.Equal(t, "MAX_DAILY_TRADES", d.Violations[0].Code)

	// Next calendar day: counter resets.
	d = m.CheckEntry(now.Add(24*time.Hour), 0)
	assert.True(t, d.Allowed)
}

func TestMonitorKillSwitchLatchesForDay(t *testing.T) {
	t.Parallel()

	m := NewMonitor(monCfg)
	day1 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	// 3% of 10000 = 300; a 350 loss trips the switch.
	m.RecordClose(day1, -350, 10000)
	assert.True(t, m.KillSwitchActive())

	d := m.CheckEntry(day1.Add(time.Hour), 0)
	assert.False(t, d.Allowed)
	assert.Equal(t, "DAILY_LOSS_LIMIT", d.Violations[0].Code)

	// Still latched later the same day, even after a winning close.
	m.RecordClose(day1.Add(2*time.Hour), +500, 10150)
	d = m.CheckEntry(day1.Add(3*time.Hour), 0)
	assert.False(t, d.Allowed)

	// Date advances: switch clears.
	d = m.CheckEntry(day1.Add(24*time.Hour), 0)
	assert.True(t, d.Allowed)
	assert.False(t, m.KillSwitchActive())
}

func TestMonitorSmallLossDoesNotTrip(t *testing.T) {
	t.Parallel()

	m := NewMonitor(monCfg)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	m.RecordClose(now, -100, 10000)
	assert.False(t, m.KillSwitchActive())
	assert.InDelta(t, -100.0, m.DailyRealized(), 1e-9)
}
