package data

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backsim/market"
)

func TestTickPointSize(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.001, TickPointSize("XAUUSD"), 1e-12)
	assert.InDelta(t, 0.001, TickPointSize("usdjpy"), 1e-12)
	assert.InDelta(t, 0.00001, TickPointSize("EURUSD"), 1e-12)
}

func TestBuildBarsFromCachedHours(t *testing.T) {
	t.Parallel()

	outDir := t.TempDir()
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	writeHour := func(at time.Time, recs []byte) {
		bin := strings.TrimSuffix(HourPath(outDir, "XAUUSD", at), ".bi5") + ".bin"
		require.NoError(t, os.MkdirAll(filepath.Dir(bin), 0o755))
		require.NoError(t, os.WriteFile(bin, recs, 0o644))
	}

	// Hour 09: two ticks; hour 10 missing (market closed); hour 11: one tick.
	writeHour(start, append(
		tickRecord(0, 2300450, 2300150, 1, 1),
		tickRecord(30000, 2301450, 2301150, 1, 1)...,
	))
	writeHour(start.Add(2*time.Hour), tickRecord(1000, 2305450, 2305150, 1, 1))

	bars, err := BuildBars(outDir, "xauusd", start, start.Add(3*time.Hour), time.Hour)
	require.NoError(t, err)
	require.Len(t, bars, 2)

	assert.True(t, start.Equal(bars[0].Time))
	assert.InDelta(t, 2300.15, bars[0].Open, 1e-9)
	assert.InDelta(t, 2301.15, bars[0].Close, 1e-9)
	assert.True(t, start.Add(2*time.Hour).Equal(bars[1].Time))
}

func TestBuildBarsNoData(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	_, err := BuildBars(t.TempDir(), "XAUUSD", start, start.Add(time.Hour), time.Hour)
	assert.Error(t, err)
}

func TestWriteBarsCSVRoundTripsThroughLoader(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	bars := []market.Bar{
		{Time: start, Open: 2300.15, High: 2301.5, Low: 2299.8, Close: 2301.15, Volume: 12},
		{Time: start.Add(time.Hour), Open: 2301.15, High: 2302, Low: 2300.5, Close: 2301.7, Volume: 8},
	}

	path := filepath.Join(t.TempDir(), "xau_h1.csv")
	require.NoError(t, WriteBarsCSV(path, bars))

	series, err := market.LoadCSV(path, "XAUUSD")
	require.NoError(t, err)
	require.Equal(t, 2, series.Len())
	assert.True(t, bars[0].Time.Equal(series.Bars[0].Time))
	assert.InDelta(t, bars[0].Close, series.Bars[0].Close, 1e-9)
	assert.InDelta(t, bars[1].Volume, series.Bars[1].Volume, 1e-9)
}
