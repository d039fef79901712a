package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pritamkhande/nifty500-eod-upstox/services/engine"
)

// HistoricalRecord is one symbol's row in the published JSON feed. Field
// names are part of the published contract; the dashboard consumes them.
type HistoricalRecord struct {
	TotalTrades  int     `json:"total_trades"`
	WinRate      float64 `json:"winrate"`
	AvgR         float64 `json:"avg_r"`
	ProfitFactor float64 `json:"profit_factor"`
	MaxDD        float64 `json:"max_dd"`
	WinRate1Y    float64 `json:"last_1_year_winrate"`
	WinRate3Y    float64 `json:"last_3_year_winrate"`
	Symbol       string  `json:"symbol"`
	Link         string  `json:"link"`
}

// NewHistoricalRecord converts engine aggregates into a feed row.
func NewHistoricalRecord(symbol, link string, h engine.HistoricalMetrics) HistoricalRecord {
	return HistoricalRecord{
		TotalTrades:  h.TotalTrades,
		WinRate:      h.WinRate,
		AvgR:         h.AvgR,
		ProfitFactor: h.ProfitFactor,
		MaxDD:        h.MaxDrawdown,
		WinRate1Y:    h.WinRate1Y,
		WinRate3Y:    h.WinRate3Y,
		Symbol:       symbol,
		Link:         link,
	}
}

// WriteHistoricalJSON publishes the feed at docsDir/historical-test-data.json.
func WriteHistoricalJSON(docsDir string, records []HistoricalRecord) error {
	if err := os.MkdirAll(docsDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(docsDir, "historical-test-data.json")
	raw, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// IndexRowFromRecord adapts a feed record for the HTML index table.
func IndexRowFromRecord(rec HistoricalRecord) IndexRow {
	return IndexRow{
		Symbol:       rec.Symbol,
		Link:         rec.Link,
		TotalTrades:  rec.TotalTrades,
		WinRate:      rec.WinRate,
		AvgR:         rec.AvgR,
		ProfitFactor: rec.ProfitFactor,
		MaxDD:        rec.MaxDD,
		WinRate1Y:    rec.WinRate1Y,
		WinRate3Y:    rec.WinRate3Y,
	}
}
