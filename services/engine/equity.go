package engine

import "sort"

// ReplayEquity builds the per-bar equity trace. Trades are applied in
// exit-date order regardless of discovery order: a fixed fraction of the
// running equity is risked per trade and the realized R-multiple compounds
// it at the bar whose date reaches the trade's exit date. Equity starts at
// 1.0 and is flat between exits.
func ReplayEquity(bars []Bar, trades []Trade, riskPerTrade float64) []float64 {
	byExit := make([]Trade, len(trades))
	copy(byExit, trades)
	sort.SliceStable(byExit, func(i, j int) bool {
		return byExit[i].ExitDate.Before(byExit[j].ExitDate)
	})

	trace := make([]float64, len(bars))
	equity := 1.0
	next := 0
	for i := range bars {
		for next < len(byExit) && !byExit[next].ExitDate.After(bars[i].Date) {
			equity += byExit[next].R * (riskPerTrade * equity)
			next++
		}
		trace[i] = equity
	}
	return trace
}

// ApplyEquity writes the trace onto the bars.
func ApplyEquity(bars []Bar, trace []float64) {
	for i := range bars {
		bars[i].Equity = trace[i]
	}
}
