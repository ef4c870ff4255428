package market

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Provider supplies historical closing prices for a symbol, chronologically
// ascending. Gaps in the data simply mean fewer samples.
type Provider interface {
	Candles(ctx context.Context, symbol string, lookback, interval time.Duration) ([]Point, error)
}

// LoadHistorical fetches a symbol's closing prices from the provider and
// wraps them in a series with the given advance mode.
//
// An empty result surfaces as ErrDataUnavailable; a transport failure is
// wrapped in ErrProvider. Retry, if any, belongs to the caller — this is
// expected to run at most once per symbol per session, with the result
// cached by the session.
func LoadHistorical(ctx context.Context, p Provider, symbol string, lookback, interval time.Duration, mode Mode) (*Series, error) {
	points, err := p.Candles(ctx, symbol, lookback, interval)
	if err != nil {
		if errors.Is(err, ErrDataUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrProvider, symbol, err)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrDataUnavailable, symbol)
	}
	return New(points, mode)
}
