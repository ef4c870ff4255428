package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketsim/fosim/market"
)

func TestBookOpenValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  TradeRequest
		want error
	}{
		{
			name: "future_with_premium",
			req:  TradeRequest{Instrument: Future, Side: Buy, Quantity: 10, EntryPrice: 100, Premium: 7},
			want: ErrInvalidPremium,
		},
		{
			name: "spot_with_premium",
			req:  TradeRequest{Instrument: Spot, Side: Buy, Quantity: 1, EntryPrice: 100, Premium: 1},
			want: ErrInvalidPremium,
		},
		{
			name: "zero_quantity",
			req:  TradeRequest{Instrument: Call, Side: Buy, Quantity: 0, Strike: 100, Premium: 5},
			want: ErrInvalidQuantity,
		},
		{
			name: "negative_quantity",
			req:  TradeRequest{Instrument: Future, Side: Sell, Quantity: -3, EntryPrice: 100},
			want: ErrInvalidQuantity,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := NewBook()
			_, err := b.Open(tt.req)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, b.Trades(), "rejected trade must not be appended")
		})
	}
}

func TestBookOpenAppends(t *testing.T) {
	t.Parallel()

	b := NewBook()
	at := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	trade, err := b.Open(TradeRequest{
		Symbol:     "TCS.NS",
		Instrument: Call,
		Side:       Buy,
		Quantity:   2,
		EntryPrice: 3400,
		Strike:     3500,
		Premium:    40,
		OpenTime:   at,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, trade.ID)
	assert.True(t, trade.Open)
	assert.Equal(t, at, trade.OpenTime)
	assert.Len(t, b.Trades(), 1)
	assert.Equal(t, 1, b.OpenCount())
}

func TestBookFundsCheck(t *testing.T) {
	t.Parallel()

	b := NewBook()
	b.SetFundsCheck(func(cost float64) error {
		if cost > 1000 {
			return ErrInsufficientBalance
		}
		return nil
	})

	_, err := b.Open(TradeRequest{Instrument: Future, Side: Buy, Quantity: 100, EntryPrice: 100})
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Empty(t, b.Trades())

	_, err = b.Open(TradeRequest{Instrument: Future, Side: Buy, Quantity: 5, EntryPrice: 100})
	assert.NoError(t, err)
}

func TestBookAggregatePnL(t *testing.T) {
	t.Parallel()

	b := NewBook()
	now := time.Now().UTC()

	// three open trades
	b.Open(TradeRequest{Instrument: Future, Side: Buy, Quantity: 10, EntryPrice: 100})
	b.Open(TradeRequest{Instrument: Call, Side: Buy, Quantity: 1, Strike: 100, Premium: 5})
	b.Open(TradeRequest{Instrument: Put, Side: Sell, Quantity: 2, Strike: 100, Premium: 5})

	// two closed trades that must contribute nothing
	c1, _ := b.Open(TradeRequest{Instrument: Future, Side: Buy, Quantity: 50, EntryPrice: 10})
	c2, _ := b.Open(TradeRequest{Instrument: Call, Side: Sell, Quantity: 4, Strike: 90, Premium: 2})
	require.NoError(t, b.Close(c1.ID, 120, now))
	require.NoError(t, b.Close(c2.ID, 120, now))

	spot := 120.0
	var want float64
	for _, tr := range b.Trades() {
		want += Valuate(*tr, spot)
	}

	got := b.AggregatePnL(spot)
	assert.InDelta(t, want, got, 1e-9)
	// future: +200, call: +15, put sell: -(0-5)*... = +10 → 225
	assert.InDelta(t, 225.0, got, 1e-9)
}

func TestBookCloseAllIdempotent(t *testing.T) {
	t.Parallel()

	b := NewBook()
	b.Open(TradeRequest{Instrument: Future, Side: Buy, Quantity: 1, EntryPrice: 100})
	b.Open(TradeRequest{Instrument: Future, Side: Sell, Quantity: 2, EntryPrice: 100})

	now := time.Now().UTC()
	assert.Equal(t, 2, b.CloseAll(110, now))
	assert.Equal(t, 0, b.CloseAll(110, now), "second close must be a no-op")
	assert.Equal(t, 0, b.OpenCount())

	for _, tr := range b.Trades() {
		assert.False(t, tr.Open)
		assert.Equal(t, 110.0, tr.ClosePrice)
		assert.Zero(t, Valuate(*tr, 500))
	}
}

func TestBookCloseUnknownTrade(t *testing.T) {
	t.Parallel()

	b := NewBook()
	err := b.Close("01ARZ3NDEKTSV4RRFFQ69G5FAV", 100, time.Now())
	assert.Error(t, err)
}

func TestBookPnLCurve(t *testing.T) {
	t.Parallel()

	series, err := market.New([]market.Point{
		{Price: 90}, {Price: 100}, {Price: 120},
	}, market.Bounded)
	require.NoError(t, err)

	b := NewBook()
	b.Open(TradeRequest{Instrument: Future, Side: Buy, Quantity: 10, EntryPrice: 100})

	collect := func() []float64 {
		var out []float64
		for _, pnl := range b.PnLCurve(series) {
			out = append(out, pnl)
		}
		return out
	}

	assert.Equal(t, []float64{-100, 0, 200}, collect())

	// restartable, and it reflects trades added between ranges
	b.Open(TradeRequest{Instrument: Call, Side: Buy, Quantity: 1, Strike: 100, Premium: 5})
	assert.Equal(t, []float64{-105, -5, 215}, collect())
}

func TestBookPnLCurveEarlyStop(t *testing.T) {
	t.Parallel()

	series, err := market.New([]market.Point{{Price: 1}, {Price: 2}, {Price: 3}}, market.Wrap)
	require.NoError(t, err)

	b := NewBook()
	n := 0
	for range b.PnLCurve(series) {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}
