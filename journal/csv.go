package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

// CSV writes trades and equity as flat files for spreadsheets and plotting
// tools. Run headers are not written; the SQLite backend owns those.
type CSV struct {
	trades *csv.Writer
	equity *csv.Writer
	tf, ef *os.File
}

func NewCSV(tradesPath, equityPath string) (*CSV, error) {
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, err
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		tf.Close()
		return nil, err
	}

	j := &CSV{
		trades: csv.NewWriter(tf),
		equity: csv.NewWriter(ef),
		tf:     tf,
		ef:     ef,
	}

	if err := j.trades.Write([]string{
		"trade_id", "run_id", "instrument", "direction", "lots", "entry_price",
		"exit_price", "open_time", "close_time", "commission", "realized_pnl",
		"reason", "bars_held",
	}); err != nil {
		j.Close()
		return nil, err
	}
	if err := j.equity.Write([]string{"run_id", "time", "balance"}); err != nil {
		j.Close()
		return nil, err
	}

	return j, nil
}

// RecordRun is a no-op for the CSV backend.
func (j *CSV) RecordRun(Run) error { return nil }

func (j *CSV) RecordTrade(t TradeRecord) error {
	return j.trades.Write([]string{
		t.TradeID,
		t.RunID,
		t.Instrument,
		t.Direction,
		f(t.Lots),
		f(t.EntryPrice),
		f(t.ExitPrice),
		t.OpenTime.Format(time.RFC3339),
		t.CloseTime.Format(time.RFC3339),
		f(t.Commission),
		f(t.RealizedPnL),
		t.Reason,
		strconv.Itoa(t.BarsHeld),
	})
}

func (j *CSV) RecordEquity(e EquityPoint) error {
	return j.equity.Write([]string{
		e.RunID,
		e.Time.Format(time.RFC3339),
		f(e.Balance),
	})
}

func (j *CSV) Close() error {
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	j.equity.Flush()
	if err := j.equity.Error(); err != nil {
		return err
	}

	if err := j.tf.Close(); err != nil {
		return err
	}
	return j.ef.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
