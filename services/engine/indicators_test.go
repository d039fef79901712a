package engine

import (
	"math"
	"testing"
)

func TestComputeATRWarmup(t *testing.T) {
	bars := dailyBars(3, 100)
	bars[0].High, bars[0].Low, bars[0].Close = 10, 8, 9
	bars[1].High, bars[1].Low, bars[1].Close = 11, 9, 10
	bars[2].High, bars[2].Low, bars[2].Close = 14, 9, 12

	atr := ComputeATR(bars, 14)

	// First bar has no previous close: TR = high − low.
	if atr[0] != 2 {
		t.Fatalf("atr[0] = %v, want 2", atr[0])
	}
	// TR(1) = max(2, |11−9|, |9−9|) = 2; mean over the 2 available bars.
	if atr[1] != 2 {
		t.Fatalf("atr[1] = %v, want 2", atr[1])
	}
	// TR(2) = max(5, |14−10|, |9−10|) = 5.
	if want := (2.0 + 2.0 + 5.0) / 3.0; math.Abs(atr[2]-want) > 1e-12 {
		t.Fatalf("atr[2] = %v, want %v", atr[2], want)
	}
}

func TestComputeATRWindowSlides(t *testing.T) {
	// Constant 2-point ranges with no gaps: ATR stays 2 forever once the
	// window fills, and the rolling sum must not drift.
	bars := dailyBars(40, 100)
	for i := range bars {
		bars[i].High = 101
		bars[i].Low = 99
		bars[i].Close = 100
	}
	atr := ComputeATR(bars, 14)
	for i, v := range atr {
		if math.Abs(v-2) > 1e-12 {
			t.Fatalf("atr[%d] = %v, want 2", i, v)
		}
	}
}

func TestValidateSeries(t *testing.T) {
	bars := dailyBars(5, 100)
	if err := ValidateSeries(bars); err != nil {
		t.Fatalf("strictly increasing dates must validate: %v", err)
	}
	bars[3].Date = bars[2].Date
	if err := ValidateSeries(bars); err == nil {
		t.Fatal("duplicate date must fail validation")
	}
}
