// Package runner orchestrates a full backtest run over the EOD catalog:
// a worker pool maps symbols through the squaring engine, then the
// aggregated outputs (reports, JSON feed, archive) are published once.
package runner

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pritamkhande/nifty500-eod-upstox/services/archive"
	"github.com/pritamkhande/nifty500-eod-upstox/services/config"
	"github.com/pritamkhande/nifty500-eod-upstox/services/engine"
	"github.com/pritamkhande/nifty500-eod-upstox/services/eoddata"
	"github.com/pritamkhande/nifty500-eod-upstox/services/report"
)

// Result is one symbol's outcome within a run.
type Result struct {
	Symbol     string
	Trades     []engine.Trade
	Metrics    engine.Metrics
	Historical engine.HistoricalMetrics
	Err        error
}

// Runner drives one backtest run across the catalog.
type Runner struct {
	cfg   config.Config
	log   *zap.Logger
	store *archive.Store // nil disables archiving
	runID uuid.UUID
	now   func() time.Time
}

// New builds a Runner. store may be nil when ClickHouse archiving is off.
func New(cfg config.Config, log *zap.Logger, store *archive.Store) *Runner {
	return &Runner{
		cfg:   cfg,
		log:   log,
		store: store,
		runID: uuid.New(),
		now:   time.Now,
	}
}

// RunID identifies this run in the archive and the manifest.
func (r *Runner) RunID() uuid.UUID { return r.runID }

func (r *Runner) workers() int {
	if n := r.cfg.Runner.Workers; n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// Run processes every symbol in the catalog and publishes the aggregate
// outputs. A symbol that fails is logged and skipped; it never aborts the
// run.
func (r *Runner) Run(ctx context.Context) ([]Result, error) {
	files, err := eoddata.Discover(r.cfg.Data.EODRoot)
	if err != nil {
		return nil, err
	}
	r.log.Info("run started",
		zap.String("run_id", r.runID.String()),
		zap.Int("symbols", len(files)),
		zap.Int("workers", r.workers()))

	jobs := make(chan eoddata.SymbolFile)
	results := make([]Result, 0, len(files))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for w := 0; w < r.workers(); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sf := range jobs {
				res := r.processSymbol(ctx, sf)
				mu.Lock()
				results = append(results, res)
				mu.Unlock()
			}
		}()
	}

	for _, sf := range files {
		if ctx.Err() != nil {
			close(jobs)
			wg.Wait()
			return nil, ctx.Err()
		}
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, ctx.Err()
		case jobs <- sf:
		}
	}
	close(jobs)
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Symbol < results[j].Symbol })

	if err := r.publish(results); err != nil {
		return results, err
	}
	return results, nil
}

// processSymbol runs the full pipeline for one series and writes its
// per-symbol outputs.
func (r *Runner) processSymbol(ctx context.Context, sf eoddata.SymbolFile) Result {
	log := r.log.With(zap.String("symbol", sf.Symbol))

	bars, err := eoddata.LoadSeries(sf.Path)
	if err != nil {
		log.Warn("skipping symbol", zap.Error(err))
		return Result{Symbol: sf.Symbol, Err: err}
	}

	p := r.cfg.EngineParams()
	engine.ApplyATR(bars, engine.ComputeATR(bars, p.ATRPeriod))
	engine.ApplySwings(bars, engine.DetectSwings(bars, p.LookbackMain, p.LookbackFractal))

	trades := engine.Backtest(bars, p)
	engine.ApplyEquity(bars, engine.ReplayEquity(bars, trades, p.RiskPerTrade))

	if cal, err := eoddata.EarlyCloseForSymbol(r.cfg.Data.EarlyCloseDir, sf.Symbol); err != nil {
		log.Warn("early-close calendar unreadable", zap.Error(err))
	} else if cal != nil {
		trades = engine.AttachEarlyMargins(trades, bars, cal)
	}

	m := engine.ComputeMetrics(trades, bars)
	h := engine.ComputeHistoricalMetrics(trades, r.now().UTC())

	if err := report.WriteTradesCSV(report.TradesCSVPath(r.cfg.Report.TradesDir, sf.Symbol), trades); err != nil {
		log.Error("write trades csv", zap.Error(err))
		return Result{Symbol: sf.Symbol, Err: err}
	}
	if err := report.WriteSymbolReport(r.cfg.Report.DocsDir, sf.Symbol, bars, trades, m, h); err != nil {
		log.Error("write report", zap.Error(err))
		return Result{Symbol: sf.Symbol, Err: err}
	}

	if r.store != nil {
		if err := r.store.InsertTrades(ctx, r.runID, sf.Symbol, trades); err != nil {
			// Archiving is best effort; the CSV remains the source of truth.
			log.Warn("archive insert failed", zap.Error(err))
		}
	}

	log.Info("symbol done",
		zap.Int("bars", len(bars)),
		zap.Int("trades", len(trades)),
		zap.Float64("win_rate", m.WinRate))
	return Result{Symbol: sf.Symbol, Trades: trades, Metrics: m, Historical: h}
}

// publish writes the cross-symbol outputs: the JSON feed, the index page,
// and the run manifest.
func (r *Runner) publish(results []Result) error {
	var records []report.HistoricalRecord
	var rows []report.IndexRow
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			continue
		}
		rec := report.NewHistoricalRecord(res.Symbol, res.Symbol+".html", res.Historical)
		records = append(records, rec)
		rows = append(rows, report.IndexRowFromRecord(rec))
	}

	if err := report.WriteHistoricalJSON(r.cfg.Report.DocsDir, records); err != nil {
		return err
	}
	if err := report.WriteIndexPage(r.cfg.Report.DocsDir, rows); err != nil {
		return err
	}
	if err := r.writeManifest(results, failed); err != nil {
		return err
	}

	r.log.Info("run finished",
		zap.String("run_id", r.runID.String()),
		zap.Int("ok", len(records)),
		zap.Int("failed", failed))
	return nil
}
