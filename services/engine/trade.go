package engine

import "time"

// PositionSide tags the state machine: flat, or holding long/short.
type PositionSide int

const (
	SideFlat PositionSide = iota
	SideLong
	SideShort
)

func (s PositionSide) String() string {
	switch s {
	case SideLong:
		return "long"
	case SideShort:
		return "short"
	default:
		return "flat"
	}
}

// ExitReason values match the report vocabulary.
type ExitReason string

const (
	ExitStop      ExitReason = "SL"  // trailing stop breached
	ExitEndOfData ExitReason = "End" // forced liquidation at the last bar
)

// Trade is created on entry confirmation, mutated only through the trailing
// stop while open, and finalized exactly once on exit. Point-profit and
// margin fields hold NaN when the underlying lookup was out of range.
type Trade struct {
	No          int
	SignalIndex int
	SignalDate  time.Time
	EntryIndex  int
	EntryDate   time.Time
	ExitIndex   int
	ExitDate    time.Time
	Side        PositionSide
	EntryPrice  float64
	ExitPrice   float64
	InitialStop float64
	FinalStop   float64
	PnL         float64
	R           float64
	ExitReason  ExitReason
	SquareType  SquareType

	// Forward point profits. PtsTm1 is anchored at the signal bar (its
	// close against the next close); PtsT..PtsT4 measure the close at
	// entry+k against the entry price.
	PtsTm1 float64
	PtsT   float64
	PtsT1  float64
	PtsT2  float64
	PtsT3  float64
	PtsT4  float64

	// Early-close margin overlay, attached by AttachEarlyMargins.
	EarlyClose       float64
	MarginNeutralPts float64
	MarginNeutralPct float64
	MarginFlipPts    float64
	MarginFlipPct    float64
}

// Params collects every knob of the squaring system.
type Params struct {
	ATRPeriod       int
	LookbackMain    int
	LookbackFractal int
	SlopeTol        float64
	MaxLookahead    int
	RiskPerTrade    float64
	InitialStopATR  float64 // stop offset from the signal bar, in ATRs
	TrailStopATR    float64 // trailing offset from the live close, in ATRs
}

// DefaultParams are the production report settings. The 2×ATR initial vs
// 3×ATR trailing asymmetry is observed strategy behaviour; do not unify.
func DefaultParams() Params {
	return Params{
		ATRPeriod:       DefaultATRPeriod,
		LookbackMain:    DefaultLookbackMain,
		LookbackFractal: DefaultLookbackFractal,
		SlopeTol:        0.25,
		MaxLookahead:    160,
		RiskPerTrade:    0.02,
		InitialStopATR:  2,
		TrailStopATR:    3,
	}
}

func (p Params) squareParams() SquareParams {
	return SquareParams{SlopeTol: p.SlopeTol, MaxLookahead: p.MaxLookahead}
}

// openPosition is the InPosition variant of the state machine. All fields
// are meaningful whenever the pointer is non-nil; there is no half-open
// state.
type openPosition struct {
	side        PositionSide
	signalIdx   int
	entryIdx    int
	entryPrice  float64
	initialStop float64
	currentStop float64
	squareType  SquareType
}

// Backtest runs the trade state machine over a prepared bar sequence (ATR
// and swing flags already applied). At most one position is open at a time.
func Backtest(bars []Bar, p Params) []Trade {
	var trades []Trade
	var pos *openPosition

	n := len(bars)
	i := 0
	for i < n {
		if pos == nil {
			// Entries need a square target before the last bar plus a
			// confirmation bar, so stop scanning near the end.
			if i >= n-2 {
				break
			}
			if next, entered := tryEnter(bars, i, p, &pos); entered {
				i = next
				continue
			}
			i++
			continue
		}

		bar := bars[i]

		// Trailing stop only ever tightens.
		if pos.side == SideLong {
			if t := bar.Close - p.TrailStopATR*bar.ATR; t > pos.currentStop {
				pos.currentStop = t
			}
		} else {
			if t := bar.Close + p.TrailStopATR*bar.ATR; t < pos.currentStop {
				pos.currentStop = t
			}
		}

		exitPrice := 0.0
		var reason ExitReason
		if pos.side == SideLong && bar.Low <= pos.currentStop {
			exitPrice, reason = pos.currentStop, ExitStop
		} else if pos.side == SideShort && bar.High >= pos.currentStop {
			exitPrice, reason = pos.currentStop, ExitStop
		} else if i == n-1 {
			exitPrice, reason = bar.Close, ExitEndOfData
		}

		if reason != "" {
			trades = append(trades, finalizeTrade(bars, pos, i, exitPrice, reason, len(trades)+1))
			pos = nil
		}
		i++
	}

	return trades
}

// tryEnter runs the two entry checks for a flat bar. A swing low sets up a
// short (square on an up-move, breakout below the target's low); a swing
// high sets up a long. On confirmation the cursor jumps to the entry bar.
func tryEnter(bars []Bar, i int, p Params, pos **openPosition) (int, bool) {
	n := len(bars)
	sq := p.squareParams()

	if bars[i].SwingLow {
		if res, ok := FindSquareFromSwingLow(bars, i, sq); ok && res.Index < n-1 {
			t := bars[res.Index]
			if bars[res.Index+1].Close < t.Low {
				*pos = &openPosition{
					side:        SideShort,
					signalIdx:   res.Index,
					entryIdx:    res.Index + 1,
					entryPrice:  bars[res.Index+1].Open,
					initialStop: t.High + p.InitialStopATR*t.ATR,
					currentStop: t.High + p.InitialStopATR*t.ATR,
					squareType:  res.Type,
				}
				return res.Index + 1, true
			}
		}
	}

	if bars[i].SwingHigh {
		if res, ok := FindSquareFromSwingHigh(bars, i, sq); ok && res.Index < n-1 {
			t := bars[res.Index]
			if bars[res.Index+1].Close > t.High {
				*pos = &openPosition{
					side:        SideLong,
					signalIdx:   res.Index,
					entryIdx:    res.Index + 1,
					entryPrice:  bars[res.Index+1].Open,
					initialStop: t.Low - p.InitialStopATR*t.ATR,
					currentStop: t.Low - p.InitialStopATR*t.ATR,
					squareType:  res.Type,
				}
				return res.Index + 1, true
			}
		}
	}

	return 0, false
}

func finalizeTrade(bars []Bar, pos *openPosition, exitIdx int, exitPrice float64, reason ExitReason, no int) Trade {
	var risk, pnl float64
	if pos.side == SideLong {
		risk = pos.entryPrice - pos.initialStop
		pnl = exitPrice - pos.entryPrice
	} else {
		risk = pos.initialStop - pos.entryPrice
		pnl = pos.entryPrice - exitPrice
	}
	r := 0.0
	if risk != 0 {
		r = pnl / risk
	}

	tr := Trade{
		No:          no,
		SignalIndex: pos.signalIdx,
		SignalDate:  bars[pos.signalIdx].Date,
		EntryIndex:  pos.entryIdx,
		EntryDate:   bars[pos.entryIdx].Date,
		ExitIndex:   exitIdx,
		ExitDate:    bars[exitIdx].Date,
		Side:        pos.side,
		EntryPrice:  pos.entryPrice,
		ExitPrice:   exitPrice,
		InitialStop: pos.initialStop,
		FinalStop:   pos.currentStop,
		PnL:         pnl,
		R:           r,
		ExitReason:  reason,
		SquareType:  pos.squareType,

		EarlyClose:       NotAvailable(),
		MarginNeutralPts: NotAvailable(),
		MarginNeutralPct: NotAvailable(),
		MarginFlipPts:    NotAvailable(),
		MarginFlipPct:    NotAvailable(),
	}

	sign := 1.0
	if pos.side == SideShort {
		sign = -1.0
	}

	tr.PtsTm1 = signalBarProfit(bars, pos.signalIdx, sign)
	fwd := [5]*float64{&tr.PtsT, &tr.PtsT1, &tr.PtsT2, &tr.PtsT3, &tr.PtsT4}
	for k, dst := range fwd {
		idx := pos.entryIdx + k
		if idx >= len(bars) {
			*dst = NotAvailable()
		} else {
			*dst = sign * (bars[idx].Close - pos.entryPrice)
		}
	}

	return tr
}

// signalBarProfit is the one-bar-forward check anchored at the signal bar,
// independent of the actual entry price.
func signalBarProfit(bars []Bar, signalIdx int, sign float64) float64 {
	if signalIdx+1 >= len(bars) {
		return NotAvailable()
	}
	return sign * (bars[signalIdx+1].Close - bars[signalIdx].Close)
}
