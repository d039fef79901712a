package engine

import (
	"math"
	"testing"
)

func TestAttachEarlyMargins(t *testing.T) {
	bars := dailyBars(6, 100)
	bars[2].High, bars[2].Low = 100, 95 // signal bar

	trades := []Trade{
		{
			Side: SideLong, SignalIndex: 2, EntryDate: bars[3].Date,
			EarlyClose: NotAvailable(), MarginNeutralPts: NotAvailable(),
			MarginNeutralPct: NotAvailable(), MarginFlipPts: NotAvailable(),
			MarginFlipPct: NotAvailable(),
		},
		{
			Side: SideShort, SignalIndex: 2, EntryDate: bars[4].Date,
			EarlyClose: NotAvailable(), MarginNeutralPts: NotAvailable(),
			MarginNeutralPct: NotAvailable(), MarginFlipPts: NotAvailable(),
			MarginFlipPct: NotAvailable(),
		},
	}

	cal := EarlyCloseCalendar{bars[3].Date: 102}
	out := AttachEarlyMargins(trades, bars, cal)

	long := out[0]
	if long.EarlyClose != 102 {
		t.Fatalf("early close = %v", long.EarlyClose)
	}
	if long.MarginNeutralPts != 2 || long.MarginFlipPts != 7 {
		t.Fatalf("long margins = %v / %v, want 2 / 7", long.MarginNeutralPts, long.MarginFlipPts)
	}
	if want := 100.0 * 2 / 102; math.Abs(long.MarginNeutralPct-want) > 1e-12 {
		t.Fatalf("neutral pct = %v, want %v", long.MarginNeutralPct, want)
	}

	// No calendar entry for the short's entry date: everything stays
	// not-available, never zero.
	short := out[1]
	if IsAvailable(short.EarlyClose) || IsAvailable(short.MarginNeutralPts) ||
		IsAvailable(short.MarginFlipPct) {
		t.Fatalf("missing calendar entry must leave margins not-available, got %+v", short)
	}

	// Input slice untouched.
	if IsAvailable(trades[0].EarlyClose) {
		t.Fatal("AttachEarlyMargins must not mutate its input")
	}
}

func TestAttachEarlyMarginsShortSide(t *testing.T) {
	bars := dailyBars(6, 100)
	bars[1].High, bars[1].Low = 110, 104

	trades := []Trade{{
		Side: SideShort, SignalIndex: 1, EntryDate: bars[2].Date,
		EarlyClose: NotAvailable(),
	}}
	out := AttachEarlyMargins(trades, bars, EarlyCloseCalendar{bars[2].Date: 100})

	// Short: neutral = signal low − early close, flip = signal high − early close.
	if out[0].MarginNeutralPts != 4 || out[0].MarginFlipPts != 10 {
		t.Fatalf("short margins = %v / %v, want 4 / 10", out[0].MarginNeutralPts, out[0].MarginFlipPts)
	}
}
