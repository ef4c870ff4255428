package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

// CSVJournal appends trade and mark records to two CSV files, flushing
// after every record so a killed session leaves usable files behind.
type CSVJournal struct {
	trades *csv.Writer
	marks  *csv.Writer
	tf, mf *os.File
}

func NewCSV(tradesPath, marksPath string) (*CSVJournal, error) {
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, err
	}
	mf, err := os.Create(marksPath)
	if err != nil {
		tf.Close()
		return nil, err
	}

	tw := csv.NewWriter(tf)
	mw := csv.NewWriter(mf)

	if err := tw.Write([]string{"trade_id", "symbol", "instrument", "side", "quantity", "entry_price", "exit_price", "strike", "premium", "open_time", "close_time", "realized_pl", "reason"}); err != nil {
		return nil, err
	}
	if err := mw.Write([]string{"time", "balance", "equity", "open_trades"}); err != nil {
		return nil, err
	}

	tw.Flush()
	if err := tw.Error(); err != nil {
		return nil, err
	}
	mw.Flush()
	if err := mw.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{tw, mw, tf, mf}, nil
}

func (j *CSVJournal) RecordTrade(t TradeRecord) error {
	err := j.trades.Write([]string{
		t.TradeID,
		t.Symbol,
		t.Instrument,
		t.Side,
		f(t.Quantity),
		f(t.EntryPrice),
		f(t.ExitPrice),
		f(t.Strike),
		f(t.Premium),
		t.OpenTime.Format(time.RFC3339),
		t.CloseTime.Format(time.RFC3339),
		f(t.RealizedPL),
		t.Reason,
	})
	if err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSVJournal) RecordMark(m MarkSnapshot) error {
	err := j.marks.Write([]string{
		m.Time.Format(time.RFC3339),
		f(m.Balance),
		f(m.Equity),
		strconv.Itoa(m.OpenTrades),
	})
	if err != nil {
		return err
	}
	j.marks.Flush()
	return j.marks.Error()
}

func (j *CSVJournal) Close() error {
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	j.marks.Flush()
	if err := j.marks.Error(); err != nil {
		return err
	}

	if err := j.tf.Close(); err != nil {
		return err
	}
	return j.mf.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
