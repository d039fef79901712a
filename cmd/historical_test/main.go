// Command historical_test rebuilds the aggregated historical feed from the
// trade CSVs already on disk, without re-running any backtest. Useful after
// hand-pruning trade logs or when only the feed needs regenerating.
package main

import (
	"flag"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pritamkhande/nifty500-eod-upstox/services/config"
	"github.com/pritamkhande/nifty500-eod-upstox/services/engine"
	"github.com/pritamkhande/nifty500-eod-upstox/services/report"
)

const tradesSuffix = "_gann_trades.csv"

func main() {
	cfgPath := flag.String("config", "", "Path to YAML config (optional)")
	tradesDir := flag.String("trades", "", "Override trades CSV directory")
	docsDir := flag.String("docs", "", "Override docs output directory")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if *tradesDir != "" {
		cfg.Report.TradesDir = *tradesDir
	}
	if *docsDir != "" {
		cfg.Report.DocsDir = *docsDir
	}

	paths, err := filepath.Glob(filepath.Join(cfg.Report.TradesDir, "*"+tradesSuffix))
	if err != nil {
		logger.Fatal("scan trades dir", zap.Error(err))
	}
	today := time.Now().UTC()

	var records []report.HistoricalRecord
	var rows []report.IndexRow
	for _, path := range paths {
		symbol := strings.TrimSuffix(filepath.Base(path), tradesSuffix)
		trades, err := report.ReadTradesCSV(path)
		if err != nil {
			logger.Warn("skipping trade log", zap.String("path", path), zap.Error(err))
			continue
		}
		h := engine.ComputeHistoricalMetrics(trades, today)
		rec := report.NewHistoricalRecord(symbol, symbol+".html", h)
		records = append(records, rec)
		rows = append(rows, report.IndexRowFromRecord(rec))
	}

	if err := report.WriteHistoricalJSON(cfg.Report.DocsDir, records); err != nil {
		logger.Fatal("write feed", zap.Error(err))
	}
	if err := report.WriteIndexPage(cfg.Report.DocsDir, rows); err != nil {
		logger.Fatal("write index", zap.Error(err))
	}
	logger.Info("historical feed rebuilt", zap.Int("symbols", len(records)))
}
