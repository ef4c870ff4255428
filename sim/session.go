package sim

import (
	"context"
	"time"

	"github.com/marketsim/fosim/journal"
	"github.com/marketsim/fosim/market"
)

// Session is the single explicit context for one simulator run: the cash
// balance, the trade book, and one price series per symbol. There are no
// process-wide singletons; every session is independent.
//
// The per-symbol series map doubles as the historical-data cache: a symbol
// is fetched at most once per session.
type Session struct {
	balance float64
	book    *Book
	series  map[string]*market.Series
	journal journal.Journal
}

// NewSession creates a session with the given starting balance. A nil
// journal defaults to the in-memory one.
func NewSession(balance float64, j journal.Journal) *Session {
	if j == nil {
		j = journal.NewMemory()
	}
	s := &Session{
		balance: balance,
		book:    NewBook(),
		series:  make(map[string]*market.Series),
		journal: j,
	}
	s.book.SetFundsCheck(s.checkFunds)
	return s
}

func (s *Session) Book() *Book      { return s.book }
func (s *Session) Balance() float64 { return s.balance }

func (s *Session) checkFunds(cost float64) error {
	if cost > s.balance {
		return ErrInsufficientBalance
	}
	return nil
}

// AddSeries registers a price series for a symbol, replacing any existing one.
func (s *Session) AddSeries(symbol string, ser *market.Series) {
	s.series[symbol] = ser
}

// Series returns the registered series for a symbol.
func (s *Session) Series(symbol string) (*market.Series, bool) {
	ser, ok := s.series[symbol]
	return ser, ok
}

// LoadSeries fetches a symbol's historical series through the provider,
// caching the result for the rest of the session. Repeated calls return the
// cached series without touching the provider again.
func (s *Session) LoadSeries(ctx context.Context, p market.Provider, symbol string, lookback, interval time.Duration, mode market.Mode) (*market.Series, error) {
	if ser, ok := s.series[symbol]; ok {
		return ser, nil
	}
	ser, err := market.LoadHistorical(ctx, p, symbol, lookback, interval, mode)
	if err != nil {
		return nil, err
	}
	s.series[symbol] = ser
	return ser, nil
}

// Spot returns the current price for a symbol, or ErrEmptySeries when the
// symbol has no registered series.
func (s *Session) Spot(symbol string) (float64, error) {
	ser, ok := s.series[symbol]
	if !ok || ser.Len() == 0 {
		return 0, market.ErrEmptySeries
	}
	return ser.Current().Price, nil
}

// OpenTrade validates the request against the balance, appends the trade,
// and debits quantity * entry price. A zero EntryPrice is stamped with the
// symbol's current spot. Nothing mutates on a rejected request.
func (s *Session) OpenTrade(req TradeRequest) (*Trade, error) {
	if req.EntryPrice == 0 {
		spot, err := s.Spot(req.Symbol)
		if err != nil {
			return nil, err
		}
		req.EntryPrice = spot
	}

	t, err := s.book.Open(req)
	if err != nil {
		return nil, err
	}
	s.balance -= t.Quantity * t.EntryPrice
	return t, nil
}

// SquareOff closes every open trade at its symbol's current spot, crediting
// quantity * spot back to the balance (cash settlement). Returns how many
// trades were closed. Idempotent.
func (s *Session) SquareOff(at time.Time) int {
	n := 0
	for _, t := range s.book.Trades() {
		if !t.Open {
			continue
		}

		// Flat close at entry when the symbol's series is gone.
		spot, err := s.Spot(t.Symbol)
		if err != nil {
			spot = t.EntryPrice
		}

		realized := Valuate(*t, spot)
		s.book.closeTrade(t, spot, at)
		s.balance += t.Quantity * spot
		n++

		s.journal.RecordTrade(journal.TradeRecord{
			TradeID:    t.ID,
			Symbol:     t.Symbol,
			Instrument: t.Instrument.String(),
			Side:       t.Side.String(),
			Quantity:   t.Quantity,
			EntryPrice: t.EntryPrice,
			ExitPrice:  spot,
			Strike:     t.Strike,
			Premium:    t.Premium,
			OpenTime:   t.OpenTime,
			CloseTime:  at,
			RealizedPL: realized,
			Reason:     "SquareOff",
		})
	}
	return n
}

// Tick advances every registered series one step and journals a mark
// snapshot. The external driver calls this at its own cadence.
func (s *Session) Tick(at time.Time) error {
	for _, ser := range s.series {
		ser.Advance()
	}
	return s.journal.RecordMark(journal.MarkSnapshot{
		Time:       at,
		Balance:    s.balance,
		Equity:     s.Equity(),
		OpenTrades: s.book.OpenCount(),
	})
}

// Equity is the balance plus the mark-to-market value of every open trade
// at its symbol's current spot.
func (s *Session) Equity() float64 {
	eq := s.balance
	for _, t := range s.book.Trades() {
		if !t.Open {
			continue
		}
		spot, err := s.Spot(t.Symbol)
		if err != nil {
			spot = t.EntryPrice
		}
		eq += Valuate(*t, spot)
	}
	return eq
}
