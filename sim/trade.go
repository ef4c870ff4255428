package sim

import (
	"fmt"
	"strings"
	"time"
)

// Instrument is the kind of contract a trade holds.
type Instrument int

const (
	Future Instrument = iota
	Call
	Put
	// Spot is a plain holding, valued as a future with zero premium and no strike.
	Spot
)

func (i Instrument) String() string {
	switch i {
	case Future:
		return "future"
	case Call:
		return "call"
	case Put:
		return "put"
	case Spot:
		return "spot"
	}
	return "unknown"
}

// IsOption reports whether the instrument carries a strike and premium.
func (i Instrument) IsOption() bool {
	return i == Call || i == Put
}

// ParseInstrument maps a user-entered string to an Instrument.
func ParseInstrument(s string) (Instrument, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "future", "futures":
		return Future, nil
	case "call":
		return Call, nil
	case "put":
		return Put, nil
	case "spot", "stock":
		return Spot, nil
	}
	return 0, fmt.Errorf("unknown instrument %q", s)
}

// Side is the direction of a trade: Buy is long, Sell is short.
type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Sell {
		return "sell"
	}
	return "buy"
}

// ParseSide maps a user-entered string to a Side.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy", "long":
		return Buy, nil
	case "sell", "short":
		return Sell, nil
	}
	return 0, fmt.Errorf("unknown side %q", s)
}

// Sign returns +1 for Buy and -1 for Sell.
func (s Side) Sign() float64 {
	if s == Sell {
		return -1
	}
	return 1
}

// Trade is one recorded paper position. All fields are fixed at creation;
// only the close transition (Open, ClosePrice, CloseTime) mutates later.
type Trade struct {
	ID         string
	Symbol     string
	Instrument Instrument
	Side       Side
	Quantity   float64
	EntryPrice float64 // spot at creation; futures are valued against it
	Strike     float64 // options only
	Premium    float64 // options only; always 0 for futures and spot
	Expiry     time.Time
	OpenTime   time.Time

	Open       bool
	ClosePrice float64
	CloseTime  time.Time
}
