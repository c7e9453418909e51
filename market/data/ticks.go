package data

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"backsim/market"
)

// tickRecordSize is the fixed width of one Dukascopy tick record:
// ms offset, ask, bid as big-endian uint32, then ask and bid volume as
// big-endian float32.
const tickRecordSize = 20

// Tick is one decoded quote.
type Tick struct {
	Time   time.Time
	Bid    float64
	Ask    float64
	BidVol float64
	AskVol float64
}

// ParseTicks decodes a decompressed hour file. hour anchors the per-record
// millisecond offsets; pointSize converts the feed's integer prices, e.g.
// 0.001 for XAUUSD and 0.00001 for most FX pairs.
func ParseTicks(raw []byte, hour time.Time, pointSize float64) ([]Tick, error) {
	if len(raw)%tickRecordSize != 0 {
		return nil, fmt.Errorf("tick data length %d not a multiple of %d", len(raw), tickRecordSize)
	}
	if pointSize <= 0 {
		return nil, fmt.Errorf("point size %f must be positive", pointSize)
	}

	ticks := make([]Tick, 0, len(raw)/tickRecordSize)
	for off := 0; off < len(raw); off += tickRecordSize {
		rec := raw[off : off+tickRecordSize]

		ms := binary.BigEndian.Uint32(rec[0:4])
		ask := binary.BigEndian.Uint32(rec[4:8])
		bid := binary.BigEndian.Uint32(rec[8:12])
		askVol := float32FromBits(rec[12:16])
		bidVol := float32FromBits(rec[16:20])

		ticks = append(ticks, Tick{
			Time:   hour.Add(time.Duration(ms) * time.Millisecond),
			Ask:    float64(ask) * pointSize,
			Bid:    float64(bid) * pointSize,
			AskVol: float64(askVol),
			BidVol: float64(bidVol),
		})
	}
	return ticks, nil
}

func float32FromBits(b []byte) float32 {
	return math.Float32frombits(binary.BigEndian.Uint32(b))
}

// AggregateBars buckets ticks into bid-price bars of the given timeframe.
// Ticks must be in time order; empty buckets produce no bar, matching how
// the CSV datasets omit market-closed hours.
func AggregateBars(ticks []Tick, timeframe time.Duration) []market.Bar {
	if timeframe <= 0 || len(ticks) == 0 {
		return nil
	}

	var bars []market.Bar
	var cur *market.Bar

	for _, tk := range ticks {
		bucket := tk.Time.Truncate(timeframe)

		if cur == nil || !cur.Time.Equal(bucket) {
			if cur != nil {
				bars = append(bars, *cur)
			}
			cur = &market.Bar{
				Time: bucket,
				Open: tk.Bid,
				High: tk.Bid,
				Low:  tk.Bid,
			}
		}

		if tk.Bid > cur.High {
			cur.High = tk.Bid
		}
		if tk.Bid < cur.Low {
			cur.Low = tk.Bid
		}
		cur.Close = tk.Bid
		cur.Volume += tk.BidVol
	}
	bars = append(bars, *cur)

	return bars
}
