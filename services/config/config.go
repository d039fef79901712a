// Package config loads the application configuration: a YAML file with
// environment overrides for anything secret or deployment-specific.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/pritamkhande/nifty500-eod-upstox/services/engine"
)

// Config is the full application configuration.
type Config struct {
	Data       DataConfig       `yaml:"data"`
	Engine     EngineConfig     `yaml:"engine"`
	Upstox     UpstoxConfig     `yaml:"upstox"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
	Report     ReportConfig     `yaml:"report"`
	Runner     RunnerConfig     `yaml:"runner"`
}

type DataConfig struct {
	EODRoot        string `yaml:"eod_root"`
	InstrumentList string `yaml:"instrument_list"`
	EarlyCloseDir  string `yaml:"early_close_dir"`
}

type EngineConfig struct {
	ATRPeriod       int     `yaml:"atr_period"`
	LookbackMain    int     `yaml:"lookback_main"`
	LookbackFractal int     `yaml:"lookback_fractal"`
	SlopeTol        float64 `yaml:"slope_tol"`
	MaxLookahead    int     `yaml:"max_lookahead"`
	RiskPerTrade    float64 `yaml:"risk_per_trade"`
	InitialStopATR  float64 `yaml:"initial_stop_atr"`
	TrailStopATR    float64 `yaml:"trail_stop_atr"`
}

type UpstoxConfig struct {
	AccessToken  string `yaml:"access_token"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RefreshToken string `yaml:"refresh_token"`
}

type ClickHouseConfig struct {
	Addr     string `yaml:"addr"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Table    string `yaml:"table"`
}

type ReportConfig struct {
	TradesDir string `yaml:"trades_dir"`
	DocsDir   string `yaml:"docs_dir"`
}

type RunnerConfig struct {
	Workers int `yaml:"workers"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Data: DataConfig{
			EODRoot:        "data/eod",
			InstrumentList: "data/nifty500_list.csv",
			EarlyCloseDir:  "Early_Data",
		},
		Engine: EngineConfig{
			ATRPeriod:       engine.DefaultATRPeriod,
			LookbackMain:    engine.DefaultLookbackMain,
			LookbackFractal: engine.DefaultLookbackFractal,
			SlopeTol:        0.25,
			MaxLookahead:    160,
			RiskPerTrade:    0.02,
			InitialStopATR:  2,
			TrailStopATR:    3,
		},
		ClickHouse: ClickHouseConfig{
			Addr:     "localhost:9000",
			Database: "gann",
			Username: "default",
			Table:    "trades",
		},
		Report: ReportConfig{
			TradesDir: "data/gann_trades",
			DocsDir:   "docs",
		},
		Runner: RunnerConfig{Workers: 0}, // 0 means NumCPU
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overlays well-known environment variables. Secrets belong in
// the environment, not the YAML file.
func (c *Config) applyEnv() {
	envStr(&c.Upstox.AccessToken, "UPSTOX_ACCESS_TOKEN")
	envStr(&c.Upstox.ClientID, "UPSTOX_CLIENT_ID")
	envStr(&c.Upstox.ClientSecret, "UPSTOX_CLIENT_SECRET")
	envStr(&c.Upstox.RefreshToken, "UPSTOX_REFRESH_TOKEN")
	envStr(&c.ClickHouse.Addr, "CLICKHOUSE_ADDR")
	envStr(&c.ClickHouse.Database, "CLICKHOUSE_DB")
	envStr(&c.ClickHouse.Username, "CLICKHOUSE_USER")
	envStr(&c.ClickHouse.Password, "CLICKHOUSE_PASSWORD")
	envInt(&c.Runner.Workers, "RUNNER_WORKERS")
}

func envStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// EngineParams converts the config block into engine parameters.
func (c Config) EngineParams() engine.Params {
	return engine.Params{
		ATRPeriod:       c.Engine.ATRPeriod,
		LookbackMain:    c.Engine.LookbackMain,
		LookbackFractal: c.Engine.LookbackFractal,
		SlopeTol:        c.Engine.SlopeTol,
		MaxLookahead:    c.Engine.MaxLookahead,
		RiskPerTrade:    c.Engine.RiskPerTrade,
		InitialStopATR:  c.Engine.InitialStopATR,
		TrailStopATR:    c.Engine.TrailStopATR,
	}
}
