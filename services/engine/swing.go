package engine

// SwingFlags is the per-bar output arena of DetectSwings. Keeping it
// separate from the bars makes the detector a pure function; callers fold
// the flags back in with ApplySwings.
type SwingFlags struct {
	High bool
	Low  bool
}

// Default lookback radii: a tight ±1 pivot plus a Williams-style 5-bar
// fractal (radius 2).
const (
	DefaultLookbackMain    = 1
	DefaultLookbackFractal = 2
)

// DetectSwings flags swing highs and lows at two lookback radii and ORs the
// results. A bar is a swing high at radius r iff its high is the strict
// unique maximum of the 2r+1 highs centered on it; ties disqualify. Bars
// within r of a boundary cannot be flagged at that radius.
func DetectSwings(bars []Bar, lookbackMain, lookbackFractal int) []SwingFlags {
	flags := make([]SwingFlags, len(bars))
	markSwings(bars, lookbackMain, flags)
	markSwings(bars, lookbackFractal, flags)
	return flags
}

func markSwings(bars []Bar, radius int, flags []SwingFlags) {
	if radius <= 0 {
		return
	}
	for i := radius; i < len(bars)-radius; i++ {
		isHigh, isLow := true, true
		for j := i - radius; j <= i+radius; j++ {
			if j == i {
				continue
			}
			if bars[j].High >= bars[i].High {
				isHigh = false
			}
			if bars[j].Low <= bars[i].Low {
				isLow = false
			}
			if !isHigh && !isLow {
				break
			}
		}
		if isHigh {
			flags[i].High = true
		}
		if isLow {
			flags[i].Low = true
		}
	}
}

// ApplySwings writes the detected flags onto the bars.
func ApplySwings(bars []Bar, flags []SwingFlags) {
	for i := range bars {
		bars[i].SwingHigh = flags[i].High
		bars[i].SwingLow = flags[i].Low
	}
}
