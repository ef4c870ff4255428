package sim

import "math"

// Valuate returns the mark-to-market P&L of a trade at the given spot price.
//
// Closed trades are worth 0. Futures (and spot holdings) pay the move from
// entry; options pay intrinsic value minus premium. Sell flips the sign.
// Plain float arithmetic, no rounding.
func Valuate(t Trade, spot float64) float64 {
	if !t.Open {
		return 0
	}

	switch t.Instrument {
	case Call:
		intrinsic := math.Max(spot-t.Strike, 0)
		return (intrinsic - t.Premium) * t.Quantity * t.Side.Sign()
	case Put:
		intrinsic := math.Max(t.Strike-spot, 0)
		return (intrinsic - t.Premium) * t.Quantity * t.Side.Sign()
	default:
		return (spot - t.EntryPrice) * t.Quantity * t.Side.Sign()
	}
}
