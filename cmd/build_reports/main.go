// Command build_reports runs the Gann squaring backtest over the whole EOD
// catalog and writes the trade CSVs, HTML reports, and the historical JSON
// feed.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/pritamkhande/nifty500-eod-upstox/services/archive"
	"github.com/pritamkhande/nifty500-eod-upstox/services/config"
	"github.com/pritamkhande/nifty500-eod-upstox/services/runner"
)

func main() {
	cfgPath := flag.String("config", "", "Path to YAML config (optional)")
	eodRoot := flag.String("eod-root", "", "Override EOD catalog root")
	docsDir := flag.String("docs", "", "Override docs output directory")
	workers := flag.Int("workers", 0, "Worker count (0 = NumCPU)")
	useArchive := flag.Bool("archive", false, "Also archive trades to ClickHouse")
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
	if *eodRoot != "" {
		cfg.Data.EODRoot = *eodRoot
	}
	if *docsDir != "" {
		cfg.Report.DocsDir = *docsDir
	}
	if *workers > 0 {
		cfg.Runner.Workers = *workers
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store *archive.Store
	if *useArchive {
		store, err = archive.Open(ctx, archive.Options{
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
	}

	r := runner.New(cfg, logger, store)
	results, err := r.Run(ctx)
	if err != nil {
		logger.Fatal("run failed", zap.Error(err))
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		logger.Warn("run completed with skipped symbols", zap.Int("failed", failed))
	}
	// Per-symbol failures are skips; only a run that produced nothing fails.
	if len(results) > 0 && failed == len(results) {
		os.Exit(1)
	}
}
