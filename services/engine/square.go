package engine

import "math"

// SquareType classifies which displacement ratio squared against price.
type SquareType string

const (
	SquarePriceTime SquareType = "price_time" // price vs bar count
	SquarePriceDate SquareType = "price_date" // price vs calendar days
)

// Canonical Gann magnitudes. Closeness of the price displacement to one of
// these is rewarded in ranking but never required.
var gannSquareLevels = []float64{25, 36, 49, 64, 81, 100, 121, 50, 72, 98, 128}

// SquareParams tunes the forward scan.
type SquareParams struct {
	SlopeTol     float64 // max deviation of a ratio from 1.0 to qualify
	MaxLookahead int     // scan horizon in bars
}

// DefaultSquareParams mirrors the production report settings.
func DefaultSquareParams() SquareParams {
	return SquareParams{SlopeTol: 0.25, MaxLookahead: 160}
}

// SquareResult is a qualifying forward bar and its classification.
type SquareResult struct {
	Index int
	Type  SquareType
}

type scanDirection int

const (
	scanUp scanDirection = iota
	scanDown
)

// classifySquare decides whether the displacement triple forms a square.
// The qualification gate is the raw deviation of a ratio from 1.0 against
// SlopeTol; the returned error adds the canonical-level penalty and is used
// only for ranking. The two metrics are deliberately separate.
func classifySquare(dP float64, dBars, dDays int, slopeTol float64) (SquareType, float64, bool) {
	if dP <= 0 {
		return "", 0, false
	}

	var bestType SquareType
	bestErr := math.Inf(1)

	if dBars > 0 {
		err := abs(dP/float64(dBars) - 1.0)
		if err <= slopeTol && err < bestErr {
			bestType = SquarePriceTime
			bestErr = err
		}
	}
	if dDays > 0 {
		err := abs(dP/float64(dDays) - 1.0)
		if err <= slopeTol && err < bestErr {
			bestType = SquarePriceDate
			bestErr = err
		}
	}
	if bestType == "" {
		return "", 0, false
	}

	nearest := gannSquareLevels[0]
	for _, lvl := range gannSquareLevels[1:] {
		if abs(lvl-dP) < abs(nearest-dP) {
			nearest = lvl
		}
	}
	penalty := abs(nearest-dP) / math.Max(nearest, 1.0)
	return bestType, bestErr + 0.5*penalty, true
}

// scanForwardForSquare walks candidate bars after startIdx looking for the
// lowest combined error. Only bars whose close moved in the required
// direction are considered; ties keep the earliest bar (a later bar must
// strictly improve).
func scanForwardForSquare(bars []Bar, startIdx int, dir scanDirection, p SquareParams) (SquareResult, bool) {
	baseClose := bars[startIdx].Close
	baseDate := bars[startIdx].Date

	maxIdx := startIdx + p.MaxLookahead
	if last := len(bars) - 1; maxIdx > last {
		maxIdx = last
	}

	best := SquareResult{Index: -1}
	bestErr := math.Inf(1)

	for j := startIdx + 1; j <= maxIdx; j++ {
		c := bars[j].Close
		if dir == scanUp && c <= baseClose {
			continue
		}
		if dir == scanDown && c >= baseClose {
			continue
		}

		dP := abs(c - baseClose)
		dBars := j - startIdx
		dDays := daysBetween(baseDate, bars[j].Date)

		sqType, err, ok := classifySquare(dP, dBars, dDays, p.SlopeTol)
		if !ok {
			continue
		}
		if err < bestErr {
			bestErr = err
			best = SquareResult{Index: j, Type: sqType}
		}
	}

	return best, best.Index >= 0
}

// FindSquareFromSwingLow scans forward from a swing low for an up-move that
// squares price against time or calendar days.
func FindSquareFromSwingLow(bars []Bar, swingIdx int, p SquareParams) (SquareResult, bool) {
	return scanForwardForSquare(bars, swingIdx, scanUp, p)
}

// FindSquareFromSwingHigh scans forward from a swing high for a down-move
// that squares price against time or calendar days.
func FindSquareFromSwingHigh(bars []Bar, swingIdx int, p SquareParams) (SquareResult, bool) {
	return scanForwardForSquare(bars, swingIdx, scanDown, p)
}
