package engine

import (
	"math"
	"testing"
)

// shortScenario builds a series where bar 0 is a swing low, bar 10 squares
// (close 110, 10 bars/days from anchor close 100), bar 11 confirms the
// breakout below bar 10's low and becomes the entry bar.
func shortScenario() []Bar {
	bars := dailyBars(14, 100)
	for i := range bars {
		bars[i].ATR = 2.5
	}
	for i := 1; i < 10; i++ {
		bars[i].Close = 99
	}
	bars[0].SwingLow = true
	bars[10].Close = 110
	bars[10].High = 112
	bars[10].Low = 108

	bars[11].Open = 107
	bars[11].Close = 104.5 // < bar 10 low: short confirmed
	bars[11].High = 106

	bars[12].Close = 108
	bars[12].High = 113 // breaches the trailed stop at 112

	bars[13].Close = 100
	return bars
}

func TestBacktestShortStopExit(t *testing.T) {
	bars := shortScenario()
	trades := Backtest(bars, DefaultParams())
	if len(trades) != 1 {
		t.Fatalf("want 1 trade, got %d", len(trades))
	}
	tr := trades[0]

	if tr.Side != SideShort {
		t.Fatalf("want short, got %s", tr.Side)
	}
	if tr.SignalIndex != 10 || tr.EntryIndex != 11 || tr.ExitIndex != 12 {
		t.Fatalf("indices: signal=%d entry=%d exit=%d", tr.SignalIndex, tr.EntryIndex, tr.ExitIndex)
	}
	if tr.EntryPrice != 107 {
		t.Fatalf("entry at the open after the target, got %v", tr.EntryPrice)
	}
	// Initial stop = target high 112 + 2×ATR(2.5) = 117.
	if tr.InitialStop != 117 {
		t.Fatalf("initial stop = %v, want 117", tr.InitialStop)
	}
	// Entry-bar close 104.5 trails the stop to 112; the final stop never
	// loosens back up.
	if tr.FinalStop != 112 {
		t.Fatalf("final stop = %v, want 112", tr.FinalStop)
	}
	if tr.ExitReason != ExitStop || tr.ExitPrice != 112 {
		t.Fatalf("exit %s at %v, want SL at 112", tr.ExitReason, tr.ExitPrice)
	}
	// Risk 10 points, adverse move 5 points: R = −0.5 exactly.
	if tr.R != -0.5 {
		t.Fatalf("R = %v, want -0.5", tr.R)
	}
	if tr.PnL != -5 {
		t.Fatalf("pnl = %v, want -5", tr.PnL)
	}
	if tr.SquareType != SquarePriceTime {
		t.Fatalf("square type = %s", tr.SquareType)
	}
}

func TestBacktestShortPointProfits(t *testing.T) {
	bars := shortScenario()
	trades := Backtest(bars, DefaultParams())
	tr := trades[0]

	// T-1 is anchored at the signal bar: -(close[11] - close[10]).
	if got, want := tr.PtsTm1, -(104.5 - 110.0); got != want {
		t.Fatalf("pts T-1 = %v, want %v", got, want)
	}
	// T..T+2 compare closes against the entry price with short sign.
	if got, want := tr.PtsT, -(104.5 - 107.0); got != want {
		t.Fatalf("pts T = %v, want %v", got, want)
	}
	if got, want := tr.PtsT1, -(108.0 - 107.0); got != want {
		t.Fatalf("pts T+1 = %v, want %v", got, want)
	}
	if got, want := tr.PtsT2, -(100.0 - 107.0); got != want {
		t.Fatalf("pts T+2 = %v, want %v", got, want)
	}
	// Entry+3 and entry+4 run past the sequence.
	if IsAvailable(tr.PtsT3) || IsAvailable(tr.PtsT4) {
		t.Fatalf("out-of-range point profits must be not-available, got %v %v", tr.PtsT3, tr.PtsT4)
	}
	// Margin fields stay not-available until a calendar is attached.
	if IsAvailable(tr.EarlyClose) || IsAvailable(tr.MarginNeutralPts) {
		t.Fatal("margin fields must start not-available")
	}
}

// longScenario mirrors shortScenario: swing high at bar 0, down-move square
// at bar 10, breakout above its high at bar 11, and no stop breach through
// the last bar.
func longScenario() []Bar {
	bars := dailyBars(14, 100)
	for i := range bars {
		bars[i].ATR = 1
		bars[i].Low = 95
	}
	for i := 1; i < 10; i++ {
		bars[i].Close = 101 // wrong direction for the down-scan
	}
	bars[0].SwingHigh = true
	bars[10].Close = 90
	bars[10].High = 92
	bars[10].Low = 88

	bars[11].Open = 93
	bars[11].Close = 94 // > bar 10 high: long confirmed
	bars[11].Low = 92.5

	bars[12].Close = 95
	bars[12].Low = 93

	bars[13].Close = 96
	bars[13].Low = 94
	return bars
}

func TestBacktestLongEndOfDataExit(t *testing.T) {
	bars := longScenario()
	trades := Backtest(bars, DefaultParams())
	if len(trades) != 1 {
		t.Fatalf("want 1 trade, got %d", len(trades))
	}
	tr := trades[0]

	if tr.Side != SideLong {
		t.Fatalf("want long, got %s", tr.Side)
	}
	// Initial stop = target low 88 − 2×ATR(1) = 86; trailing walks it up
	// behind the closes (91, 92, 93) without ever breaching.
	if tr.InitialStop != 86 {
		t.Fatalf("initial stop = %v, want 86", tr.InitialStop)
	}
	if tr.FinalStop != 93 {
		t.Fatalf("final stop = %v, want 93", tr.FinalStop)
	}
	if tr.ExitReason != ExitEndOfData || tr.ExitPrice != 96 {
		t.Fatalf("exit %s at %v, want End at 96", tr.ExitReason, tr.ExitPrice)
	}
	if got, want := tr.R, 3.0/7.0; math.Abs(got-want) > 1e-12 {
		t.Fatalf("R = %v, want %v", got, want)
	}
}

func TestBacktestTrailingStopMonotonic(t *testing.T) {
	// Replay the long scenario bar by bar and assert the stop never
	// loosens: each later trailing value is >= the previous.
	bars := longScenario()
	p := DefaultParams()
	trades := Backtest(bars, p)
	tr := trades[0]

	stop := tr.InitialStop
	for i := tr.EntryIndex; i <= tr.ExitIndex; i++ {
		if trail := bars[i].Close - p.TrailStopATR*bars[i].ATR; trail > stop {
			stop = trail
		}
		if stop < tr.InitialStop {
			t.Fatalf("stop loosened below initial at bar %d", i)
		}
	}
	if stop != tr.FinalStop {
		t.Fatalf("replayed stop %v != final stop %v", stop, tr.FinalStop)
	}
}

func TestFinalizeTradeZeroRisk(t *testing.T) {
	bars := dailyBars(6, 100)
	pos := &openPosition{
		side: SideShort, signalIdx: 1, entryIdx: 2,
		entryPrice: 100, initialStop: 100, currentStop: 100,
		squareType: SquarePriceDate,
	}
	tr := finalizeTrade(bars, pos, 4, 95, ExitStop, 1)
	if tr.R != 0 {
		t.Fatalf("zero risk must give R=0, got %v", tr.R)
	}

	pos.side = SideLong
	tr = finalizeTrade(bars, pos, 4, 105, ExitStop, 1)
	if tr.R != 0 {
		t.Fatalf("zero risk must give R=0 for longs too, got %v", tr.R)
	}
}

func TestBacktestAtMostOnePosition(t *testing.T) {
	// A second swing flag inside the open trade's lifetime must not open
	// an overlapping position.
	bars := shortScenario()
	bars[11].SwingLow = true
	trades := Backtest(bars, DefaultParams())
	if len(trades) != 1 {
		t.Fatalf("overlapping signals must not stack positions, got %d trades", len(trades))
	}
	for i := 1; i < len(trades); i++ {
		if trades[i].EntryIndex <= trades[i-1].ExitIndex {
			t.Fatal("trade overlap")
		}
	}
}
