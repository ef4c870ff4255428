package sim

import (
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/marketsim/fosim/market"
	"github.com/marketsim/fosim/pkg/id"
)

var (
	// ErrInvalidPremium rejects a nonzero premium on a future or spot trade.
	ErrInvalidPremium = errors.New("premium must be zero for futures")
	// ErrInvalidQuantity rejects a zero or negative quantity.
	ErrInvalidQuantity = errors.New("quantity must be positive")
	// ErrInsufficientBalance rejects a trade whose cost exceeds available funds.
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// TradeRequest carries the user-entered parameters for a new trade.
type TradeRequest struct {
	Symbol     string
	Instrument Instrument
	Side       Side
	Quantity   float64
	EntryPrice float64
	Strike     float64
	Premium    float64
	Expiry     time.Time
	OpenTime   time.Time // zero means now
}

// Book is the append-only ledger of a session's trades.
//
// The book does not own the cash balance; a funds check hook, normally
// installed by the session, guards against callers that skipped their own
// balance validation. One logical actor per session; no locking.
type Book struct {
	trades     []*Trade
	fundsCheck func(cost float64) error
}

func NewBook() *Book {
	return &Book{}
}

// SetFundsCheck installs the balance guard consulted on every Open.
func (b *Book) SetFundsCheck(fn func(cost float64) error) {
	b.fundsCheck = fn
}

// Open validates the request and appends a new open trade. Nothing is
// appended unless every check passes.
func (b *Book) Open(req TradeRequest) (*Trade, error) {
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if !req.Instrument.IsOption() && req.Premium != 0 {
		return nil, ErrInvalidPremium
	}
	if b.fundsCheck != nil {
		if err := b.fundsCheck(req.Quantity * req.EntryPrice); err != nil {
			return nil, err
		}
	}

	at := req.OpenTime
	if at.IsZero() {
		at = time.Now().UTC()
	}

	t := &Trade{
		ID:         id.New(),
		Symbol:     req.Symbol,
		Instrument: req.Instrument,
		Side:       req.Side,
		Quantity:   req.Quantity,
		EntryPrice: req.EntryPrice,
		Strike:     req.Strike,
		Premium:    req.Premium,
		Expiry:     req.Expiry,
		OpenTime:   at,
		Open:       true,
	}
	b.trades = append(b.trades, t)
	return t, nil
}

// Close squares off a single trade at the given spot price.
func (b *Book) Close(tradeID string, spot float64, at time.Time) error {
	for _, t := range b.trades {
		if t.ID != tradeID {
			continue
		}
		if !t.Open {
			return fmt.Errorf("close trade: %q is already closed", tradeID)
		}
		b.closeTrade(t, spot, at)
		return nil
	}
	return fmt.Errorf("close trade: %q not found", tradeID)
}

// CloseAll squares off every open trade at the given spot price and returns
// how many were closed. Already-closed trades are untouched.
func (b *Book) CloseAll(spot float64, at time.Time) int {
	n := 0
	for _, t := range b.trades {
		if !t.Open {
			continue
		}
		b.closeTrade(t, spot, at)
		n++
	}
	return n
}

func (b *Book) closeTrade(t *Trade, spot float64, at time.Time) {
	t.ClosePrice = spot
	t.CloseTime = at
	t.Open = false
}

// AggregatePnL sums the valuation of every trade at the given spot. Closed
// trades contribute zero, so no filtering is needed.
func (b *Book) AggregatePnL(spot float64) float64 {
	var total float64
	for _, t := range b.trades {
		total += Valuate(*t, spot)
	}
	return total
}

// PnLCurve yields (index, total P&L) for every sample of a price series.
// The sequence is lazy and restartable: each range walks the live trade set,
// so trades added or closed between ranges show up on the next pass.
func (b *Book) PnLCurve(s *market.Series) iter.Seq2[int, float64] {
	return func(yield func(int, float64) bool) {
		for i := 0; i < s.Len(); i++ {
			if !yield(i, b.AggregatePnL(s.At(i).Price)) {
				return
			}
		}
	}
}

// Trades returns the ledger in insertion order.
func (b *Book) Trades() []*Trade {
	return b.trades
}

// OpenCount returns the number of currently open trades.
func (b *Book) OpenCount() int {
	n := 0
	for _, t := range b.trades {
		if t.Open {
			n++
		}
	}
	return n
}
