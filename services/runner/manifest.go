package runner

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Manifest records what a run produced, for later comparison of parameter
// sets against the archived trades.
type Manifest struct {
	RunID      string    `json:"run_id"`
	FinishedAt time.Time `json:"finished_at"`
	Symbols    int       `json:"symbols"`
	Failed     int       `json:"failed"`

	ATRPeriod       int     `json:"atr_period"`
	LookbackMain    int     `json:"lookback_main"`
	LookbackFractal int     `json:"lookback_fractal"`
	SlopeTol        float64 `json:"slope_tol"`
	MaxLookahead    int     `json:"max_lookahead"`
	RiskPerTrade    float64 `json:"risk_per_trade"`
	InitialStopATR  float64 `json:"initial_stop_atr"`
	TrailStopATR    float64 `json:"trail_stop_atr"`
}

func (r *Runner) writeManifest(results []Result, failed int) error {
	p := r.cfg.EngineParams()
	m := Manifest{
		RunID:      r.runID.String(),
		FinishedAt: r.now().UTC(),
		Symbols:    len(results),
		Failed:     failed,

		ATRPeriod:       p.ATRPeriod,
		LookbackMain:    p.LookbackMain,
		LookbackFractal: p.LookbackFractal,
		SlopeTol:        p.SlopeTol,
		MaxLookahead:    p.MaxLookahead,
		RiskPerTrade:    p.RiskPerTrade,
		InitialStopATR:  p.InitialStopATR,
		TrailStopATR:    p.TrailStopATR,
	}
	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(r.cfg.Report.DocsDir, "run-manifest.json")
	return os.WriteFile(path, raw, 0o644)
}
