package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *SQLite {
	t.Helper()

	j, err := NewSQLite(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func sampleRun(id string, created time.Time) Run {
	return Run{
		RunID:        id,
		Created:      created,
		Strategy:     "momentum",
		Instrument:   "XAUUSD",
		Dataset:      "xau_h1_2024.csv",
		Start:        created.Add(-30 * 24 * time.Hour),
		End:          created,
		RiskPct:      0.01,
		StartBalance: 10000,
		EndBalance:   10450,
		Trades:       42,
		WinRate:      0.55,
		ProfitFactor: 1.4,
		MaxDrawdown:  0.08,
		Sharpe:       0.2,
		Calmar:       0.55,
	}
}

func TestSQLiteRunRoundTrip(t *testing.T) {
	t.Parallel()

	j := openTestDB(t)
	want := sampleRun("run-1", time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, j.RecordRun(want))

	got, err := j.GetRun("run-1")
	require.NoError(t, err)
	assert.Equal(t, want.Strategy, got.Strategy)
	assert.Equal(t, want.Dataset, got.Dataset)
	assert.Equal(t, want.Trades, got.Trades)
	assert.InDelta(t, want.ProfitFactor, got.ProfitFactor, 1e-9)
	assert.True(t, want.Created.Equal(got.Created))
	assert.True(t, want.Start.Equal(got.Start))
}

func TestSQLiteGetRunNotFound(t *testing.T) {
	t.Parallel()

	j := openTestDB(t)
	_, err := j.GetRun("missing")
	assert.ErrorContains(t, err, "not found")
}

func TestSQLiteDuplicateRunRejected(t *testing.T) {
	t.Parallel()

	j := openTestDB(t)
	run := sampleRun("run-1", time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, j.RecordRun(run))
	assert.Error(t, j.RecordRun(run))
}

func TestSQLiteListRunsNewestFirst(t *testing.T) {
	t.Parallel()

	j := openTestDB(t)
	base := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, j.RecordRun(sampleRun("run-old", base)))
	require.NoError(t, j.RecordRun(sampleRun("run-new", base.Add(time.Hour))))

	runs, err := j.ListRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-new", runs[0].RunID)

	runs, err = j.ListRuns(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-new", runs[0].RunID)
}

func TestSQLiteTradesAndEquityByRun(t *testing.T) {
	t.Parallel()

	j := openTestDB(t)
	at := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, j.RecordRun(sampleRun("run-1", at)))

	require.NoError(t, j.RecordTrade(TradeRecord{
		TradeID: "t2", RunID: "run-1", Instrument: "XAUUSD", Direction: "SELL",
		Lots: 0.05, EntryPrice: 2310, ExitPrice: 2305,
		OpenTime: at.Add(2 * time.Hour), CloseTime: at.Add(5 * time.Hour),
		Commission: 0.35, RealizedPnL: 24.65, Reason: "TAKE_PROFIT", BarsHeld: 3,
	}))
	require.NoError(t, j.RecordTrade(TradeRecord{
		TradeID: "t1", RunID: "run-1", Instrument: "XAUUSD", Direction: "BUY",
		Lots: 0.10, EntryPrice: 2300, ExitPrice: 2297,
		OpenTime: at, CloseTime: at.Add(time.Hour),
		Commission: 0.70, RealizedPnL: -30.70, Reason: "STOP_LOSS", BarsHeld: 1,
	}))
	// A trade from another run must not leak in.
	require.NoError(t, j.RecordTrade(TradeRecord{
		TradeID: "x1", RunID: "run-2", Instrument: "XAUUSD", Direction: "BUY",
		OpenTime: at, CloseTime: at, Reason: "TIME",
	}))

	trades, err := j.ListTradesByRun("run-1")
	require.NoError(t, err)
	require.Len(t, trades, 2)
	// Close order, not insert order.
	assert.Equal(t, "t1", trades[0].TradeID)
	assert.Equal(t, "t2", trades[1].TradeID)
	assert.InDelta(t, -30.70, trades[0].RealizedPnL, 1e-9)
	assert.Equal(t, 3, trades[1].BarsHeld)

	for i := 0; i < 3; i++ {
		require.NoError(t, j.RecordEquity(EquityPoint{
			RunID: "run-1", Time: at.Add(time.Duration(i) * time.Hour),
			Balance: 10000 + float64(i)*10,
		}))
	}
	equity, err := j.ListEquityByRun("run-1")
	require.NoError(t, err)
	require.Len(t, equity, 3)
	assert.InDelta(t, 10020.0, equity[2].Balance, 1e-9)
}
