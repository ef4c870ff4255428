package sim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketsim/fosim/journal"
	"github.com/marketsim/fosim/market"
)

func sessionWithSeries(t *testing.T, balance float64, prices ...float64) (*Session, *journal.Memory) {
	t.Helper()

	j := journal.NewMemory()
	s := NewSession(balance, j)

	points := make([]market.Point, len(prices))
	t0 := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	for i, p := range prices {
		points[i] = market.Point{Time: t0.Add(time.Duration(i) * time.Hour), Price: p}
	}
	series, err := market.New(points, market.Bounded)
	require.NoError(t, err)
	s.AddSeries("TCS.NS", series)
	return s, j
}

func TestSessionOpenTradeDebitsBalance(t *testing.T) {
	t.Parallel()

	s, _ := sessionWithSeries(t, 10_000, 100, 120)

	trade, err := s.OpenTrade(TradeRequest{
		Symbol:     "TCS.NS",
		Instrument: Future,
		Side:       Buy,
		Quantity:   10,
	})
	require.NoError(t, err)

	assert.Equal(t, 100.0, trade.EntryPrice, "entry stamped from current spot")
	assert.Equal(t, 9_000.0, s.Balance())
}

func TestSessionRejectsUnaffordableTrade(t *testing.T) {
	t.Parallel()

	s, _ := sessionWithSeries(t, 500, 100)

	_, err := s.OpenTrade(TradeRequest{
		Symbol:     "TCS.NS",
		Instrument: Future,
		Side:       Buy,
		Quantity:   10, // costs 1000
	})
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, 500.0, s.Balance(), "balance untouched on rejection")
	assert.Empty(t, s.Book().Trades())
}

func TestSessionOpenTradeUnknownSymbol(t *testing.T) {
	t.Parallel()

	s := NewSession(1000, nil)
	_, err := s.OpenTrade(TradeRequest{Symbol: "NOPE", Instrument: Future, Side: Buy, Quantity: 1})
	assert.ErrorIs(t, err, market.ErrEmptySeries)
}

func TestSessionSquareOffCreditsAtSpot(t *testing.T) {
	t.Parallel()

	s, j := sessionWithSeries(t, 10_000, 100, 120)

	_, err := s.OpenTrade(TradeRequest{
		Symbol:     "TCS.NS",
		Instrument: Future,
		Side:       Buy,
		Quantity:   10,
	})
	require.NoError(t, err)
	require.Equal(t, 9_000.0, s.Balance())

	// spot moves 100 -> 120
	series, _ := s.Series("TCS.NS")
	series.Advance()

	at := time.Now().UTC()
	assert.Equal(t, 1, s.SquareOff(at))
	assert.Equal(t, 10_200.0, s.Balance(), "credited quantity * exit spot")
	assert.Equal(t, 0, s.Book().OpenCount())

	// idempotent
	assert.Equal(t, 0, s.SquareOff(at))

	records := j.Trades()
	require.Len(t, records, 1)
	assert.Equal(t, "future", records[0].Instrument)
	assert.Equal(t, 120.0, records[0].ExitPrice)
	assert.InDelta(t, 200.0, records[0].RealizedPL, 1e-9)
	assert.Equal(t, "SquareOff", records[0].Reason)
}

func TestSessionEquityMarksOpenTrades(t *testing.T) {
	t.Parallel()

	s, _ := sessionWithSeries(t, 10_000, 100, 120)

	_, err := s.OpenTrade(TradeRequest{Symbol: "TCS.NS", Instrument: Future, Side: Buy, Quantity: 10})
	require.NoError(t, err)

	// flat at entry: equity == balance + 0
	assert.InDelta(t, 9_000.0, s.Equity(), 1e-9)

	series, _ := s.Series("TCS.NS")
	series.Advance()
	assert.InDelta(t, 9_200.0, s.Equity(), 1e-9)
}

func TestSessionTickAdvancesAndJournals(t *testing.T) {
	t.Parallel()

	s, j := sessionWithSeries(t, 5_000, 100, 110, 90)

	at := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Tick(at))

	spot, err := s.Spot("TCS.NS")
	require.NoError(t, err)
	assert.Equal(t, 110.0, spot)

	marks := j.Marks()
	require.Len(t, marks, 1)
	assert.Equal(t, at, marks[0].Time)
	assert.Equal(t, 5_000.0, marks[0].Balance)
}

func TestSessionLoadSeriesCaches(t *testing.T) {
	t.Parallel()

	calls := 0
	p := providerFunc(func(ctx context.Context, symbol string, lookback, interval time.Duration) ([]market.Point, error) {
		calls++
		return []market.Point{{Time: time.Now(), Price: 42}}, nil
	})

	s := NewSession(1000, nil)
	_, err := s.LoadSeries(context.Background(), p, "TCS.NS", 24*time.Hour, time.Hour, market.Wrap)
	require.NoError(t, err)
	_, err = s.LoadSeries(context.Background(), p, "TCS.NS", 24*time.Hour, time.Hour, market.Wrap)
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "provider hit once per symbol per session")
}

type providerFunc func(ctx context.Context, symbol string, lookback, interval time.Duration) ([]market.Point, error)

func (f providerFunc) Candles(ctx context.Context, symbol string, lookback, interval time.Duration) ([]market.Point, error) {
	return f(ctx, symbol, lookback, interval)
}
