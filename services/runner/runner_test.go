package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/pritamkhande/nifty500-eod-upstox/services/config"
	"github.com/pritamkhande/nifty500-eod-upstox/services/eoddata"
	"github.com/pritamkhande/nifty500-eod-upstox/services/engine"
)

// writeCatalogSymbol drops a small but tradeable series into the catalog.
func writeCatalogSymbol(t *testing.T, root, symbol string) {
	t.Helper()
	path, err := eoddata.EnsureBucket(root, symbol)
	if err != nil {
		t.Fatal(err)
	}
	bars := make([]engine.Bar, 120)
	price := 100.0
	for i := range bars {
		// A slow drift with a sharp dip keeps the series valid without
		// caring whether any square actually fires.
		if i%37 == 20 {
			price -= 8
		} else {
			price += 0.5
		}
		bars[i] = engine.Bar{
			Date: time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Open: price, High: price + 2, Low: price - 2, Close: price + 1,
			Volume: 1000,
		}
	}
	if err := eoddata.SaveSeries(path, symbol, bars); err != nil {
		t.Fatal(err)
	}
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Data.EODRoot = filepath.Join(base, "eod")
	cfg.Data.EarlyCloseDir = filepath.Join(base, "early")
	cfg.Report.TradesDir = filepath.Join(base, "trades")
	cfg.Report.DocsDir = filepath.Join(base, "docs")
	cfg.Runner.Workers = 2
	if err := os.MkdirAll(cfg.Data.EODRoot, 0o755); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestRunProcessesCatalog(t *testing.T) {
	cfg := testConfig(t)
	for _, sym := range []string{"AAA", "BBB", "CCC"} {
		writeCatalogSymbol(t, cfg.Data.EODRoot, sym)
	}

	r := New(cfg, zaptest.NewLogger(t), nil)
	results, err := r.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("want 3 results, got %d", len(results))
	}
	// Results come back sorted regardless of worker completion order.
	for i, want := range []string{"AAA", "BBB", "CCC"} {
		if results[i].Symbol != want {
			t.Fatalf("results[%d] = %q, want %q", i, results[i].Symbol, want)
		}
		if results[i].Err != nil {
			t.Fatalf("%s failed: %v", want, results[i].Err)
		}
	}

	for _, name := range []string{"historical-test-data.json", "gann-index.html", "run-manifest.json"} {
		if _, err := os.Stat(filepath.Join(cfg.Report.DocsDir, name)); err != nil {
			t.Fatalf("missing aggregate output %s: %v", name, err)
		}
	}
	for _, sym := range []string{"AAA", "BBB", "CCC"} {
		if _, err := os.Stat(filepath.Join(cfg.Report.TradesDir, sym+"_gann_trades.csv")); err != nil {
			t.Fatalf("missing trades csv for %s: %v", sym, err)
		}
		if _, err := os.Stat(filepath.Join(cfg.Report.DocsDir, sym+".html")); err != nil {
			t.Fatalf("missing report for %s: %v", sym, err)
		}
	}
}

func TestRunSkipsBrokenSymbol(t *testing.T) {
	cfg := testConfig(t)
	writeCatalogSymbol(t, cfg.Data.EODRoot, "GOOD")

	badPath, err := eoddata.EnsureBucket(cfg.Data.EODRoot, "BAD")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(badPath, []byte("Symbol,Date,Open\nX,2020-01-01,1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := New(cfg, zaptest.NewLogger(t), nil)
	results, err := r.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	var good, bad *Result
	for i := range results {
		switch results[i].Symbol {
		case "GOOD":
			good = &results[i]
		case "BAD":
			bad = &results[i]
		}
	}
	if bad == nil || bad.Err == nil {
		t.Fatal("broken symbol must surface its error")
	}
	if good == nil || good.Err != nil {
		t.Fatalf("good symbol must still run: %+v", good)
	}
}

func TestRunHonorsContextCancel(t *testing.T) {
	cfg := testConfig(t)
	for i := 0; i < 20; i++ {
		writeCatalogSymbol(t, cfg.Data.EODRoot, fmt.Sprintf("SYM%02d", i))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := New(cfg, zaptest.NewLogger(t), nil)
	if _, err := r.Run(ctx); err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
