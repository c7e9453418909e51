package data

import (
	"fmt"
	"os"
	"strings"
	"time"

	"backsim/market"
)

// TickPointSize returns the feed's integer-price scale for a symbol.
// Metals and JPY crosses quote three decimals, everything else five.
func TickPointSize(symbol string) float64 {
	symbol = strings.ToUpper(symbol)
	if strings.HasPrefix(symbol, "XAU") || strings.HasPrefix(symbol, "XAG") ||
		strings.HasSuffix(symbol, "JPY") {
		return 0.001
	}
	return 0.00001
}

// BuildBars assembles bars of the given timeframe from the decompressed
// hour files cached under outDir for [start, end). Hours without a cached
// file are skipped; the feed has none for closed markets.
func BuildBars(outDir, symbol string, start, end time.Time, timeframe time.Duration) ([]market.Bar, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	pointSize := TickPointSize(symbol)

	var ticks []Tick
	for t := start.UTC().Truncate(time.Hour); t.Before(end); t = t.Add(time.Hour) {
		bin := strings.TrimSuffix(HourPath(outDir, symbol, t), ".bi5") + ".bin"
		raw, err := os.ReadFile(bin)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}

		hour, err := ParseTicks(raw, t, pointSize)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", bin, err)
		}
		ticks = append(ticks, hour...)
	}

	if len(ticks) == 0 {
		return nil, fmt.Errorf("no cached tick data for %s in range", symbol)
	}
	return AggregateBars(ticks, timeframe), nil
}

// WriteBarsCSV writes bars in the semicolon layout the series loader
// accepts: time;open;high;low;close;volume.
func WriteBarsCSV(path string, bars []market.Bar) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	for _, b := range bars {
		_, err := fmt.Fprintf(f, "%s;%g;%g;%g;%g;%g\n",
			b.Time.UTC().Format("2006-01-02 15:04:05"),
			b.Open, b.High, b.Low, b.Close, b.Volume)
		if err != nil {
			f.Close()
			return err
		}
	}
	return f.Close()
}
