package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteJournal writes records to a SQLite database. ULID trade IDs keep
// the primary key time-sortable.
type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, symbol, instrument, side, quantity, entry_price, exit_price, strike, premium, open_time, close_time, realized_pl, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.Symbol, t.Instrument, t.Side, t.Quantity, t.EntryPrice,
		t.ExitPrice, t.Strike, t.Premium, t.OpenTime, t.CloseTime, t.RealizedPL, t.Reason,
	)
	return err
}

func (j *SQLiteJournal) RecordMark(m MarkSnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO marks (time, balance, equity, open_trades)
		VALUES (?, ?, ?, ?)`,
		m.Time, m.Balance, m.Equity, m.OpenTrades,
	)
	return err
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
