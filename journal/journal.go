package journal

import "time"

// TradeRecord is written once per squared-off trade.
type TradeRecord struct {
	TradeID    string
	Symbol     string
	Instrument string
	Side       string
	Quantity   float64
	EntryPrice float64
	ExitPrice  float64
	Strike     float64
	Premium    float64
	OpenTime   time.Time
	CloseTime  time.Time
	RealizedPL float64
	Reason     string
}

// MarkSnapshot is written once per tick: the balance and mark-to-market
// equity of the session at that moment.
type MarkSnapshot struct {
	Time       time.Time
	Balance    float64
	Equity     float64
	OpenTrades int
}

// Journal is a write-only sink for session records. Nothing is ever read
// back at startup; sessions stay ephemeral.
type Journal interface {
	RecordTrade(TradeRecord) error
	RecordMark(MarkSnapshot) error
	Close() error
}
