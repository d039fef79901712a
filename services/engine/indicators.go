package engine

// DefaultATRPeriod matches the 14-day window the squaring system sizes its
// stops with.
const DefaultATRPeriod = 14

// trueRange for bar i: max of high-low, |high-prevClose|, |low-prevClose|.
// The first bar has no previous close and degrades to high-low.
func trueRange(bars []Bar, i int) float64 {
	tr := bars[i].High - bars[i].Low
	if i == 0 {
		return tr
	}
	prev := bars[i-1].Close
	if d := abs(bars[i].High - prev); d > tr {
		tr = d
	}
	if d := abs(bars[i].Low - prev); d > tr {
		tr = d
	}
	return tr
}

// ComputeATR returns the simple rolling mean of true range. Early bars use
// however many bars are available (a 1-bar window at index 0), so the value
// is defined everywhere.
func ComputeATR(bars []Bar, period int) []float64 {
	if period <= 0 {
		period = DefaultATRPeriod
	}
	atr := make([]float64, len(bars))
	var sum float64
	trs := make([]float64, len(bars))
	for i := range bars {
		trs[i] = trueRange(bars, i)
		sum += trs[i]
		if i >= period {
			sum -= trs[i-period]
		}
		n := i + 1
		if n > period {
			n = period
		}
		atr[i] = sum / float64(n)
	}
	return atr
}

// ApplyATR writes the derived column onto the bars.
func ApplyATR(bars []Bar, atr []float64) {
	for i := range bars {
		bars[i].ATR = atr[i]
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
