package engine

import (
	"math"
	"testing"
	"time"
)

func TestComputeMetricsEmpty(t *testing.T) {
	m := ComputeMetrics(nil, dailyBars(10, 100))
	if m.NTrades != 0 || m.WinRate != 0 || m.AvgR != 0 || m.CAGR != 0 || m.MaxDrawdown != 0 {
		t.Fatalf("empty trade set must degrade to zeros, got %+v", m)
	}
}

func TestComputeMetricsBasic(t *testing.T) {
	bars := dailyBars(10, 100)
	equities := []float64{1.0, 1.0, 1.1, 1.1, 0.99, 0.99, 1.05, 1.05, 1.05, 1.05}
	for i := range bars {
		bars[i].Equity = equities[i]
	}
	trades := []Trade{{R: 2}, {R: -1}, {R: 0.5}}

	m := ComputeMetrics(trades, bars)
	if m.NTrades != 3 {
		t.Fatalf("n trades = %d", m.NTrades)
	}
	if math.Abs(m.WinRate-100.0*2/3) > 1e-12 {
		t.Fatalf("win rate = %v", m.WinRate)
	}
	if math.Abs(m.AvgR-0.5) > 1e-12 {
		t.Fatalf("avg R = %v", m.AvgR)
	}
	// Peak 1.1, trough 0.99.
	if want := (0.99 - 1.1) / 1.1; math.Abs(m.MaxDrawdown-want) > 1e-12 {
		t.Fatalf("max dd = %v, want %v", m.MaxDrawdown, want)
	}
	if m.CAGR <= 0 {
		t.Fatalf("9 days of growth from 1.0 to 1.05 must annualize positive, got %v", m.CAGR)
	}
}

func TestComputeMetricsFlatEquityZeroCAGR(t *testing.T) {
	bars := dailyBars(400, 100)
	for i := range bars {
		bars[i].Equity = 1.0
	}
	m := ComputeMetrics([]Trade{{R: 1}, {R: -1}}, bars)
	if m.CAGR != 0 {
		t.Fatalf("flat equity must give CAGR 0, got %v", m.CAGR)
	}
	if m.MaxDrawdown != 0 {
		t.Fatalf("flat equity must give dd 0, got %v", m.MaxDrawdown)
	}
}

func TestComputeHistoricalMetrics(t *testing.T) {
	today := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	old := today.AddDate(-5, 0, 0)
	recent := today.AddDate(0, -6, 0)
	twoYears := today.AddDate(-2, 0, 0)

	trades := []Trade{
		{R: 2, SignalDate: old},
		{R: -1, SignalDate: twoYears},
		{R: 1, SignalDate: recent},
	}

	h := ComputeHistoricalMetrics(trades, today)
	if h.TotalTrades != 3 {
		t.Fatalf("total = %d", h.TotalTrades)
	}
	if math.Abs(h.ProfitFactor-3.0) > 1e-12 {
		t.Fatalf("profit factor = %v, want 3", h.ProfitFactor)
	}
	// Cumulative R path 2, 1, 2: deepest excursion from the peak is -1R.
	if h.MaxDrawdown != -100.0 {
		t.Fatalf("max dd = %v, want -100", h.MaxDrawdown)
	}
	if h.WinRate1Y != 100.0 {
		t.Fatalf("1y win rate = %v", h.WinRate1Y)
	}
	if h.WinRate3Y != 50.0 {
		t.Fatalf("3y win rate = %v", h.WinRate3Y)
	}
}

func TestComputeHistoricalMetricsNoLosses(t *testing.T) {
	h := ComputeHistoricalMetrics([]Trade{{R: 1}, {R: 2}}, time.Now())
	if h.ProfitFactor != 999.0 {
		t.Fatalf("lossless set must report the sentinel, got %v", h.ProfitFactor)
	}
	if h.MaxDrawdown != 0 {
		t.Fatalf("monotone cumulative R must give dd 0, got %v", h.MaxDrawdown)
	}
}

func TestComputeHistoricalMetricsEmpty(t *testing.T) {
	h := ComputeHistoricalMetrics(nil, time.Now())
	if h != (HistoricalMetrics{}) {
		t.Fatalf("empty set must be all zeros, got %+v", h)
	}
}
