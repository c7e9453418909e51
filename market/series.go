package market

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Series is an ordered, deduplicated bar sequence with strictly increasing
// timestamps. The loader enforces ordering so the engine never has to.
type Series struct {
	Instrument string
	Bars       []Bar

	duplicates int
	badLines   int
}

// Len returns the number of bars.
func (s *Series) Len() int { return len(s.Bars) }

// Start returns the time of the first bar, or the zero time for an empty series.
func (s *Series) Start() time.Time {
	if len(s.Bars) == 0 {
		return time.Time{}
	}
	return s.Bars[0].Time
}

// End returns the time of the last bar, or the zero time for an empty series.
func (s *Series) End() time.Time {
	if len(s.Bars) == 0 {
		return time.Time{}
	}
	return s.Bars[len(s.Bars)-1].Time
}

// Duplicates reports how many duplicate-timestamp rows the loader dropped.
func (s *Series) Duplicates() int { return s.duplicates }

// BadLines reports how many unparseable rows the loader dropped.
func (s *Series) BadLines() int { return s.badLines }

// Supported timestamp layouts, tried in order. Covers MT-style exports
// ("18.01.2010 13:00"), Dukascopy CSVs ("20100118 130000"), and RFC3339.
var timeLayouts = []string{
	"02.01.2006 15:04",
	"20060102 150405",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// LoadCSV reads a bar series from a CSV file. Both ';' and ',' separators are
// accepted; a header row is skipped if present. Rows must carry at least
// time, open, high, low, close; volume is optional.
//
// Out-of-order rows are rejected with an error, duplicate timestamps keep the
// first occurrence, and unparseable rows are counted and skipped. An empty
// result is an error: the simulation must not start on no data.
func LoadCSV(path, instrument string) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load bars: %w", err)
	}
	defer f.Close()

	s, err := ReadCSV(f, instrument)
	if err != nil {
		return nil, fmt.Errorf("load bars %s: %w", path, err)
	}
	return s, nil
}

// ReadCSV parses a bar series from r. See LoadCSV for format rules.
func ReadCSV(r io.Reader, instrument string) (*Series, error) {
	s := &Series{Instrument: instrument}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var prev time.Time
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}

		sep := ";"
		if !strings.Contains(text, ";") {
			sep = ","
		}
		parts := strings.Split(text, sep)
		if len(parts) < 5 {
			s.badLines++
			continue
		}

		ts, err := parseTime(strings.TrimSpace(parts[0]))
		if err != nil {
			// Tolerate a header row, count anything else as bad.
			if line > 1 {
				s.badLines++
			}
			continue
		}

		b := Bar{Time: ts}
		fields := []*float64{&b.Open, &b.High, &b.Low, &b.Close}
		ok := true
		for i, dst := range fields {
			v, err := strconv.ParseFloat(strings.TrimSpace(parts[i+1]), 64)
			if err != nil {
				ok = false
				break
			}
			*dst = v
		}
		if !ok {
			s.badLines++
			continue
		}
		if len(parts) > 5 {
			// Volume is best-effort; a bad volume does not invalidate the bar.
			b.Volume, _ = strconv.ParseFloat(strings.TrimSpace(parts[5]), 64)
		}

		if !prev.IsZero() {
			if b.Time.Equal(prev) {
				// keep-first policy for duplicates
				s.duplicates++
				continue
			}
			if b.Time.Before(prev) {
				return nil, fmt.Errorf("line %d: bar %s out of order (previous %s)",
					line, b.Time.Format(time.RFC3339), prev.Format(time.RFC3339))
			}
		}
		prev = b.Time
		s.Bars = append(s.Bars, b)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(s.Bars) == 0 {
		return nil, fmt.Errorf("no valid bars found")
	}
	return s, nil
}

func parseTime(v string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, v, time.UTC); err == nil {
			return t, nil
		}
	}
	// Unix seconds or milliseconds as a fallback.
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", v)
}
