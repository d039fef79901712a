package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Engine.SlopeTol != 0.25 || cfg.Engine.MaxLookahead != 160 {
		t.Fatalf("engine defaults wrong: %+v", cfg.Engine)
	}
	p := cfg.EngineParams()
	if p.RiskPerTrade != 0.02 || p.InitialStopATR != 2 || p.TrailStopATR != 3 {
		t.Fatalf("params conversion wrong: %+v", p)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gann.yaml")
	body := `
engine:
  slope_tol: 0.3
  max_lookahead: 120
clickhouse:
  addr: ch.internal:9000
runner:
  workers: 4
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CLICKHOUSE_ADDR", "override:9000")
	t.Setenv("UPSTOX_ACCESS_TOKEN", "tok-from-env")
	t.Setenv("RUNNER_WORKERS", "8")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Engine.SlopeTol != 0.3 || cfg.Engine.MaxLookahead != 120 {
		t.Fatalf("yaml values not applied: %+v", cfg.Engine)
	}
	// Untouched keys keep their defaults.
	if cfg.Engine.RiskPerTrade != 0.02 {
		t.Fatalf("default lost on partial yaml: %v", cfg.Engine.RiskPerTrade)
	}
	// Env beats the file.
	if cfg.ClickHouse.Addr != "override:9000" {
		t.Fatalf("env override ignored: %q", cfg.ClickHouse.Addr)
	}
	if cfg.Upstox.AccessToken != "tok-from-env" {
		t.Fatalf("token not read from env: %q", cfg.Upstox.AccessToken)
	}
	if cfg.Runner.Workers != 8 {
		t.Fatalf("workers = %d, want 8", cfg.Runner.Workers)
	}
}
