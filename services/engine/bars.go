// Package engine implements the Gann squaring backtest core: swing
// detection, forward square scanning, the trade state machine, equity
// replay and performance metrics. Everything here is deterministic and
// free of I/O; callers own the bar slice.
package engine

import (
	"fmt"
	"math"
	"time"
)

// Bar is a single daily OHLCV record. ATR and the swing flags are derived
// columns filled in by ComputeATR/DetectSwings before a backtest runs;
// Equity is filled in by ReplayEquity afterwards.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64

	ATR       float64
	SwingHigh bool
	SwingLow  bool
	Equity    float64
}

// ValidateSeries checks the input contract: dates strictly increasing with
// no duplicates. Loaders must call this before handing bars to the core.
func ValidateSeries(bars []Bar) error {
	for i := 1; i < len(bars); i++ {
		if !bars[i].Date.After(bars[i-1].Date) {
			return fmt.Errorf("bar dates not strictly increasing at index %d (%s then %s)",
				i, bars[i-1].Date.Format("2006-01-02"), bars[i].Date.Format("2006-01-02"))
		}
	}
	return nil
}

// NotAvailable marks a derived numeric field that could not be computed
// (out-of-range lookups, missing calendar entries). Never a silent zero.
func NotAvailable() float64 { return math.NaN() }

// IsAvailable reports whether a derived field holds a real value.
func IsAvailable(v float64) bool { return !math.IsNaN(v) }

// daysBetween returns whole calendar days from a to b, truncated.
// Dates are expected at UTC midnight.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours()) / 24
}
