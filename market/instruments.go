package market

// InstrumentMeta describes the contract arithmetic for one symbol.
//
// PointSize is the price increment of one point; TickValue is the
// account-currency value of a one-point move for 1.0 lot. For XAUUSD with a
// 100 oz lot, a 0.01 move is worth $1.00.
type InstrumentMeta struct {
	Symbol    string
	PointSize float64
	TickValue float64
	LotStep   float64
	MinLot    float64
	MaxLot    float64
}

var Instruments = map[string]InstrumentMeta{
	"XAUUSD": {
		Symbol:    "XAUUSD",
		PointSize: 0.01,
		TickValue: 1.0,
		LotStep:   0.01,
		MinLot:    0.01,
		MaxLot:    100.0,
	},
	"EURUSD": {
		Symbol:    "EURUSD",
		PointSize: 0.00001,
		TickValue: 1.0,
		LotStep:   0.01,
		MinLot:    0.01,
		MaxLot:    100.0,
	},
}

// Instrument returns metadata for symbol, falling back to a 1-point,
// 1-dollar-per-point contract so unknown symbols still simulate sanely.
func Instrument(symbol string) InstrumentMeta {
	if meta, ok := Instruments[symbol]; ok {
		return meta
	}
	return InstrumentMeta{
		Symbol:    symbol,
		PointSize: 1.0,
		TickValue: 1.0,
		LotStep:   0.01,
		MinLot:    0.01,
		MaxLot:    100.0,
	}
}

// Points converts a price distance into points for this instrument.
func (m InstrumentMeta) Points(priceDistance float64) float64 {
	if m.PointSize <= 0 {
		return priceDistance
	}
	return priceDistance / m.PointSize
}
