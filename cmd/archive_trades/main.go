// Command archive_trades loads trade CSVs from disk and batch-inserts them
// into ClickHouse under a fresh run id.
package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pritamkhande/nifty500-eod-upstox/services/archive"
	"github.com/pritamkhande/nifty500-eod-upstox/services/config"
	"github.com/pritamkhande/nifty500-eod-upstox/services/report"
)

const tradesSuffix = "_gann_trades.csv"

func main() {
	cfgPath := flag.String("config", "", "Path to YAML config (optional)")
	tradesDir := flag.String("trades", "", "Override trades CSV directory")
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

	ctx := context.Background()
	store, err := archive.Open(ctx, archive.Options{
		Addr:     cfg.ClickHouse.Addr,
		Database: cfg.ClickHouse.Database,
		Username: cfg.ClickHouse.Username,
		Password: cfg.ClickHouse.Password,
		Table:    cfg.ClickHouse.Table,
	})
	if err != nil {
		logger.Fatal("open clickhouse", zap.Error(err))
	}
	defer store.Close()

	paths, err := filepath.Glob(filepath.Join(cfg.Report.TradesDir, "*"+tradesSuffix))
	if err != nil {
		logger.Fatal("scan trades dir", zap.Error(err))
	}

	runID := uuid.New()
	logger.Info("archiving trades",
		zap.String("run_id", runID.String()),
		zap.Int("files", len(paths)))

	failed := 0
	total := 0
	for _, path := range paths {
		symbol := strings.TrimSuffix(filepath.Base(path), tradesSuffix)
		trades, err := report.ReadTradesCSV(path)
		if err != nil {
			logger.Warn("skipping trade log", zap.String("path", path), zap.Error(err))
			failed++
			continue
		}
		if err := store.InsertTrades(ctx, runID, symbol, trades); err != nil {
			logger.Warn("insert failed", zap.String("symbol", symbol), zap.Error(err))
			failed++
			continue
		}
		total += len(trades)
	}

	logger.Info("archive done", zap.Int("trades", total), zap.Int("failed", failed))
	if failed > 0 {
		os.Exit(1)
	}
}
