package engine

import (
	"math"
	"time"
)

// Metrics summarizes one symbol's backtest against its compounded equity
// trace. An empty trade set degrades to defined zero values.
type Metrics struct {
	NTrades     int
	WinRate     float64 // percent
	AvgR        float64
	CAGR        float64
	MaxDrawdown float64 // fraction of running peak, <= 0
	StartDate   time.Time
	EndDate     time.Time
	Years       float64
}

// ComputeMetrics derives the per-symbol summary. The bars must carry the
// equity trace (see ReplayEquity/ApplyEquity).
func ComputeMetrics(trades []Trade, bars []Bar) Metrics {
	if len(trades) == 0 {
		return Metrics{}
	}

	m := Metrics{NTrades: len(trades)}
	wins := 0
	sumR := 0.0
	for _, t := range trades {
		if t.R > 0 {
			wins++
		}
		sumR += t.R
	}
	m.WinRate = 100.0 * float64(wins) / float64(len(trades))
	m.AvgR = sumR / float64(len(trades))

	if len(bars) == 0 {
		return m
	}
	m.StartDate = bars[0].Date
	m.EndDate = bars[len(bars)-1].Date
	m.Years = float64(daysBetween(m.StartDate, m.EndDate)) / 365.25

	startEq := bars[0].Equity
	endEq := bars[len(bars)-1].Equity
	if m.Years > 0 && startEq > 0 {
		m.CAGR = math.Pow(endEq/startEq, 1.0/m.Years) - 1.0
	}

	peak := startEq
	for _, b := range bars {
		if b.Equity > peak {
			peak = b.Equity
		}
		if peak > 0 {
			if dd := (b.Equity - peak) / peak; dd < m.MaxDrawdown {
				m.MaxDrawdown = dd
			}
		}
	}
	return m
}

// profitFactorCap is reported when the trade set has no losing R at all.
const profitFactorCap = 999.0

// HistoricalMetrics is the cross-symbol aggregation variant: drawdown is
// tracked on the cumulative sum of R (not compounded equity) and win rates
// are additionally windowed to the trailing one and three years.
type HistoricalMetrics struct {
	TotalTrades  int
	WinRate      float64 // percent
	AvgR         float64
	ProfitFactor float64
	MaxDrawdown  float64 // cumulative-R drawdown × 100, <= 0
	WinRate1Y    float64 // percent, signals in the trailing year
	WinRate3Y    float64 // percent, signals in the trailing three years
}

// ComputeHistoricalMetrics aggregates a symbol's realized trades for the
// historical test table. today anchors the trailing windows.
func ComputeHistoricalMetrics(trades []Trade, today time.Time) HistoricalMetrics {
	if len(trades) == 0 {
		return HistoricalMetrics{}
	}

	h := HistoricalMetrics{TotalTrades: len(trades)}

	wins := 0
	sumR, grossWin, grossLoss := 0.0, 0.0, 0.0
	cum, peak := 0.0, 0.0
	for _, t := range trades {
		if t.R > 0 {
			wins++
			grossWin += t.R
		} else if t.R < 0 {
			grossLoss += -t.R
		}
		sumR += t.R
		cum += t.R
		if cum > peak {
			peak = cum
		}
		if dd := (cum - peak) * 100.0; dd < h.MaxDrawdown {
			h.MaxDrawdown = dd
		}
	}
	h.WinRate = 100.0 * float64(wins) / float64(len(trades))
	h.AvgR = sumR / float64(len(trades))
	if grossLoss > 0 {
		h.ProfitFactor = grossWin / grossLoss
	} else {
		h.ProfitFactor = profitFactorCap
	}

	h.WinRate1Y = windowedWinRate(trades, today.AddDate(-1, 0, 0))
	h.WinRate3Y = windowedWinRate(trades, today.AddDate(-3, 0, 0))
	return h
}

func windowedWinRate(trades []Trade, cutoff time.Time) float64 {
	n, wins := 0, 0
	for _, t := range trades {
		if t.SignalDate.Before(cutoff) {
			continue
		}
		n++
		if t.R > 0 {
			wins++
		}
	}
	if n == 0 {
		return 0
	}
	return 100.0 * float64(wins) / float64(n)
}
