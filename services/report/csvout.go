// Package report renders backtest results: per-symbol trade CSVs, HTML
// report pages with inline SVG charts, and the aggregated historical
// metrics feed.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pritamkhande/nifty500-eod-upstox/services/engine"
)

var tradeCSVHeader = []string{
	"trade_no", "signal_index", "signal_date", "entry_index", "exit_index",
	"entry_date", "exit_date", "position", "entry_price", "exit_price",
	"initial_stop_price", "final_stop_price", "R", "pnl", "exit_reason",
	"square_type",
	"pts_Tm1", "pts_T", "pts_T1", "pts_T2", "pts_T3", "pts_T4",
	"early_close", "margin_neutral_pts", "margin_neutral_pct",
	"margin_flip_pts", "margin_flip_pct",
}

// TradesCSVPath is the catalog location of a symbol's trade log.
func TradesCSVPath(dir, symbol string) string {
	return filepath.Join(dir, symbol+"_gann_trades.csv")
}

// WriteTradesCSV writes the full trade log for one symbol. Not-available
// numerics render as empty cells.
func WriteTradesCSV(path string, trades []engine.Trade) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(tradeCSVHeader); err != nil {
		return err
	}
	for _, tr := range trades {
		rec := []string{
			strconv.Itoa(tr.No),
			strconv.Itoa(tr.SignalIndex),
			tr.SignalDate.Format("2006-01-02"),
			strconv.Itoa(tr.EntryIndex),
			strconv.Itoa(tr.ExitIndex),
			tr.EntryDate.Format("2006-01-02"),
			tr.ExitDate.Format("2006-01-02"),
			tr.Side.String(),
			num(tr.EntryPrice),
			num(tr.ExitPrice),
			num(tr.InitialStop),
			num(tr.FinalStop),
			num(tr.R),
			num(tr.PnL),
			string(tr.ExitReason),
			string(tr.SquareType),
			num(tr.PtsTm1), num(tr.PtsT), num(tr.PtsT1),
			num(tr.PtsT2), num(tr.PtsT3), num(tr.PtsT4),
			num(tr.EarlyClose),
			num(tr.MarginNeutralPts), num(tr.MarginNeutralPct),
			num(tr.MarginFlipPts), num(tr.MarginFlipPct),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ReadTradesCSV loads a trade log back; the historical aggregator works
// from these files rather than re-running backtests.
func ReadTradesCSV(path string) ([]engine.Trade, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	col := map[string]int{}
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, name := range []string{"trade_no", "signal_date", "exit_date", "R", "pnl"} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("%s: missing column %q", path, name)
		}
	}

	var trades []engine.Trade
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		get := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		tr := engine.Trade{
			No:          atoi(get("trade_no")),
			SignalIndex: atoi(get("signal_index")),
			EntryIndex:  atoi(get("entry_index")),
			ExitIndex:   atoi(get("exit_index")),
			EntryPrice:  atof(get("entry_price")),
			ExitPrice:   atof(get("exit_price")),
			InitialStop: atof(get("initial_stop_price")),
			FinalStop:   atof(get("final_stop_price")),
			R:           atof(get("R")),
			PnL:         atof(get("pnl")),
			ExitReason:  engine.ExitReason(get("exit_reason")),
			SquareType:  engine.SquareType(get("square_type")),
			PtsTm1:      atof(get("pts_Tm1")),
			PtsT:        atof(get("pts_T")),
			PtsT1:       atof(get("pts_T1")),
			PtsT2:       atof(get("pts_T2")),
			PtsT3:       atof(get("pts_T3")),
			PtsT4:       atof(get("pts_T4")),
			EarlyClose:  atof(get("early_close")),

			MarginNeutralPts: atof(get("margin_neutral_pts")),
			MarginNeutralPct: atof(get("margin_neutral_pct")),
			MarginFlipPts:    atof(get("margin_flip_pts")),
			MarginFlipPct:    atof(get("margin_flip_pct")),
		}
		switch get("position") {
		case "long":
			tr.Side = engine.SideLong
		case "short":
			tr.Side = engine.SideShort
		}
		tr.SignalDate, _ = time.Parse("2006-01-02", get("signal_date"))
		tr.EntryDate, _ = time.Parse("2006-01-02", get("entry_date"))
		tr.ExitDate, _ = time.Parse("2006-01-02", get("exit_date"))
		trades = append(trades, tr)
	}
	return trades, nil
}

// num formats a float for CSV, mapping not-available to an empty cell.
func num(v float64) string {
	if !engine.IsAvailable(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// atof maps empty cells back to not-available.
func atof(s string) float64 {
	if s == "" {
		return engine.NotAvailable()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return engine.NotAvailable()
	}
	return v
}
