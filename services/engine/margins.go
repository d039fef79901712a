package engine

import "time"

// EarlyCloseCalendar maps a trading date (UTC midnight) to that session's
// early close price. Lookups are exact-date only, no interpolation.
type EarlyCloseCalendar map[time.Time]float64

// AttachEarlyMargins returns a copy of the trades with the early-close
// margin overlay filled in. For each trade the calendar is probed at the
// entry date; a miss leaves every margin field not-available. The neutral
// buffer measures the early close against the signal bar's protective
// extreme, the flip buffer against the opposite extreme.
func AttachEarlyMargins(trades []Trade, bars []Bar, calendar EarlyCloseCalendar) []Trade {
	out := make([]Trade, len(trades))
	copy(out, trades)

	for i := range out {
		t := &out[i]
		ec, ok := calendar[t.EntryDate]
		if !ok {
			continue // fields already NaN from finalization
		}

		sig := bars[t.SignalIndex]
		var neutral, flip float64
		if t.Side == SideLong {
			neutral = ec - sig.High
			flip = ec - sig.Low
		} else {
			neutral = sig.Low - ec
			flip = sig.High - ec
		}

		t.EarlyClose = ec
		t.MarginNeutralPts = neutral
		t.MarginFlipPts = flip
		t.MarginNeutralPct = 100.0 * neutral / ec
		t.MarginFlipPct = 100.0 * flip / ec
	}
	return out
}
