// Command download_eod pulls daily candles from Upstox for every NIFTY 500
// constituent and maintains the on-disk EOD catalog. Existing series are
// extended incrementally; new symbols download from the global start date.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/pritamkhande/nifty500-eod-upstox/services/config"
	"github.com/pritamkhande/nifty500-eod-upstox/services/engine"
	"github.com/pritamkhande/nifty500-eod-upstox/services/eoddata"
	"github.com/pritamkhande/nifty500-eod-upstox/services/upstox"
)

func main() {
	cfgPath := flag.String("config", "", "Path to YAML config (optional)")
	listPath := flag.String("list", "", "Override instrument list CSV")
	eodRoot := flag.String("eod-root", "", "Override EOD catalog root")
	overlap := flag.Int("overlap-days", 5, "Re-download this many trailing days of an existing series")
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
	if *listPath != "" {
		cfg.Data.InstrumentList = *listPath
	}
	if *eodRoot != "" {
		cfg.Data.EODRoot = *eodRoot
	}
	if cfg.Upstox.AccessToken == "" {
		logger.Fatal("UPSTOX_ACCESS_TOKEN is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	instruments, err := upstox.LoadInstrumentList(cfg.Data.InstrumentList)
	if err != nil {
		logger.Fatal("load instrument list", zap.Error(err))
	}
	logger.Info("downloading catalog", zap.Int("instruments", len(instruments)))

	client := upstox.NewClient(cfg.Upstox.AccessToken)
	today := time.Now().UTC().Truncate(24 * time.Hour)

	failed := 0
	for _, inst := range instruments {
		if ctx.Err() != nil {
			logger.Warn("interrupted", zap.Int("remaining", len(instruments)))
			os.Exit(1)
		}
		if err := downloadSymbol(ctx, client, cfg, inst, today, *overlap); err != nil {
			logger.Warn("symbol failed", zap.String("symbol", inst.Symbol), zap.Error(err))
			failed++
		}
	}

	logger.Info("download finished",
		zap.Int("instruments", len(instruments)),
		zap.Int("failed", failed))
	if len(instruments) > 0 && failed == len(instruments) {
		os.Exit(1)
	}
}

func downloadSymbol(ctx context.Context, client *upstox.Client, cfg config.Config, inst upstox.Instrument, today time.Time, overlapDays int) error {
	path, err := eoddata.EnsureBucket(cfg.Data.EODRoot, inst.Symbol)
	if err != nil {
		return err
	}

	from := upstox.GlobalStart
	prior, err := loadExisting(path)
	if err != nil {
		return err
	}
	if len(prior) > 0 {
		from = prior[len(prior)-1].Date.AddDate(0, 0, -overlapDays)
	}

	fresh, err := client.FetchDailyCandles(ctx, upstox.InstrumentKey(inst.ISIN), from, today)
	if err != nil {
		return err
	}
	merged := upstox.MergeIncremental(prior, fresh)
	return eoddata.SaveSeries(path, inst.Symbol, merged)
}

// loadExisting tolerates a missing file; that just means a fresh symbol.
func loadExisting(path string) ([]engine.Bar, error) {
	bars, err := eoddata.LoadSeries(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return bars, nil
}
