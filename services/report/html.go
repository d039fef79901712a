package report

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/pritamkhande/nifty500-eod-upstox/services/engine"
)

var symbolPageTmpl = template.Must(template.New("symbol").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Symbol}} Gann Squaring Report</title>
<style>
body { font-family: -apple-system, Segoe UI, sans-serif; margin: 2rem auto; max-width: 960px; color: #1f2328; }
table { border-collapse: collapse; width: 100%; font-size: 14px; }
th, td { border: 1px solid #d0d7de; padding: 4px 8px; text-align: right; }
th { background: #f6f8fa; }
td.l, th.l { text-align: left; }
.metrics { display: grid; grid-template-columns: repeat(4, 1fr); gap: 12px; margin: 1rem 0; }
.metric { border: 1px solid #d0d7de; border-radius: 6px; padding: 10px; }
.metric .v { font-size: 20px; font-weight: 600; }
.metric .k { font-size: 12px; color: #57606a; }
.commentary { background: #f6f8fa; border-radius: 6px; padding: 12px; margin: 1rem 0; }
.neg { color: #cf222e; }
.pos { color: #1a7f37; }
</style>
</head>
<body>
<h1>{{.Symbol}} Gann Squaring Backtest</h1>
<p>{{.Metrics.StartDate.Format "2006-01-02"}} to {{.Metrics.EndDate.Format "2006-01-02"}}</p>

<div class="metrics">
<div class="metric"><div class="v">{{.Metrics.NTrades}}</div><div class="k">Trades</div></div>
<div class="metric"><div class="v">{{printf "%.1f%%" .Metrics.WinRate}}</div><div class="k">Win rate</div></div>
<div class="metric"><div class="v">{{printf "%.2f" .Metrics.AvgR}}</div><div class="k">Average R</div></div>
<div class="metric"><div class="v">{{printf "%.1f%%" .CAGRPct}}</div><div class="k">CAGR</div></div>
<div class="metric"><div class="v">{{printf "%.1f%%" .MaxDDPct}}</div><div class="k">Max drawdown</div></div>
<div class="metric"><div class="v">{{printf "%.1f" .Metrics.Years}}</div><div class="k">Years</div></div>
<div class="metric"><div class="v">{{printf "%.2f" .Historical.ProfitFactor}}</div><div class="k">Profit factor</div></div>
<div class="metric"><div class="v">{{printf "%.1f%%" .Historical.WinRate1Y}}</div><div class="k">1y win rate</div></div>
</div>

<div class="commentary">{{.Commentary}}</div>

<h2>Equity</h2>
{{.EquityChart}}
<h2>Drawdown</h2>
{{.DrawdownChart}}

<h2>Trades</h2>
<table>
<tr>
<th>#</th><th class="l">Signal</th><th class="l">Entry</th><th class="l">Exit</th>
<th class="l">Side</th><th>Entry</th><th>Exit</th><th>R</th><th class="l">Reason</th><th class="l">Square</th><th class="l"></th>
</tr>
{{range .Trades}}
<tr>
<td>{{.No}}</td>
<td class="l">{{.SignalDate.Format "2006-01-02"}}</td>
<td class="l">{{.EntryDate.Format "2006-01-02"}}</td>
<td class="l">{{.ExitDate.Format "2006-01-02"}}</td>
<td class="l">{{.Side}}</td>
<td>{{printf "%.2f" .EntryPrice}}</td>
<td>{{printf "%.2f" .ExitPrice}}</td>
<td class="{{if ge .R 0.0}}pos{{else}}neg{{end}}">{{printf "%.2f" .R}}</td>
<td class="l">{{.ExitReason}}</td>
<td class="l">{{.SquareType}}</td>
<td class="l"><a href="trades/trade_{{printf "%03d" .No}}.html">chart</a></td>
</tr>
{{end}}
</table>
</body>
</html>
`))

var tradePageTmpl = template.Must(template.New("trade").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Symbol}} trade {{.Trade.No}}</title>
<style>body { font-family: -apple-system, Segoe UI, sans-serif; margin: 2rem auto; max-width: 960px; }</style>
</head>
<body>
<h1>{{.Symbol}} trade {{.Trade.No}} ({{.Trade.Side}})</h1>
<p>{{.Trade.SignalDate.Format "2006-01-02"}} signal, entered {{.Trade.EntryDate.Format "2006-01-02"}} at {{printf "%.2f" .Trade.EntryPrice}},
exited {{.Trade.ExitDate.Format "2006-01-02"}} at {{printf "%.2f" .Trade.ExitPrice}} ({{.Trade.ExitReason}}), R {{printf "%.2f" .Trade.R}}.</p>
{{.Chart}}
<p><a href="../{{.Symbol}}.html">Back to {{.Symbol}}</a></p>
</body>
</html>
`))

var indexPageTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Gann Squaring Reports</title>
<style>
body { font-family: -apple-system, Segoe UI, sans-serif; margin: 2rem auto; max-width: 960px; color: #1f2328; }
table { border-collapse: collapse; width: 100%; font-size: 14px; }
th, td { border: 1px solid #d0d7de; padding: 4px 8px; text-align: right; }
th { background: #f6f8fa; }
td.l, th.l { text-align: left; }
</style>
</head>
<body>
<h1>Gann Squaring Reports</h1>
<table>
<tr><th class="l">Symbol</th><th>Trades</th><th>Win rate</th><th>Avg R</th><th>Profit factor</th><th>Max DD</th><th>1y win</th><th>3y win</th></tr>
{{range .}}
<tr>
<td class="l"><a href="{{.Link}}">{{.Symbol}}</a></td>
<td>{{.TotalTrades}}</td>
<td>{{printf "%.1f%%" .WinRate}}</td>
<td>{{printf "%.2f" .AvgR}}</td>
<td>{{printf "%.2f" .ProfitFactor}}</td>
<td>{{printf "%.1f" .MaxDD}}</td>
<td>{{printf "%.1f%%" .WinRate1Y}}</td>
<td>{{printf "%.1f%%" .WinRate3Y}}</td>
</tr>
{{end}}
</table>
</body>
</html>
`))

// SymbolPage bundles everything the per-symbol template needs.
type SymbolPage struct {
	Symbol        string
	Metrics       engine.Metrics
	Historical    engine.HistoricalMetrics
	Trades        []engine.Trade
	Commentary    string
	EquityChart   template.HTML
	DrawdownChart template.HTML
}

func (p SymbolPage) CAGRPct() float64  { return 100.0 * p.Metrics.CAGR }
func (p SymbolPage) MaxDDPct() float64 { return -100.0 * p.Metrics.MaxDrawdown }

// WriteSymbolReport renders the symbol page plus one chart page per trade
// under docsDir. The page lands at {docsDir}/{symbol}.html with trade
// charts in {docsDir}/trades/.
func WriteSymbolReport(docsDir, symbol string, bars []engine.Bar, trades []engine.Trade, m engine.Metrics, h engine.HistoricalMetrics) error {
	if err := os.MkdirAll(filepath.Join(docsDir, "trades"), 0o755); err != nil {
		return err
	}

	page := SymbolPage{
		Symbol:        symbol,
		Metrics:       m,
		Historical:    h,
		Trades:        trades,
		Commentary:    Commentary(symbol, m),
		EquityChart:   EquityChartSVG(bars),
		DrawdownChart: DrawdownChartSVG(bars),
	}
	if err := renderTo(filepath.Join(docsDir, symbol+".html"), symbolPageTmpl, page); err != nil {
		return err
	}

	for _, tr := range trades {
		data := struct {
			Symbol string
			Trade  engine.Trade
			Chart  template.HTML
		}{symbol, tr, TradeChartSVG(bars, tr)}
		path := filepath.Join(docsDir, "trades", fmt.Sprintf("trade_%03d.html", tr.No))
		if err := renderTo(path, tradePageTmpl, data); err != nil {
			return err
		}
	}
	return nil
}

// IndexRow is one symbol line on the master index page.
type IndexRow struct {
	Symbol       string
	Link         string
	TotalTrades  int
	WinRate      float64
	AvgR         float64
	ProfitFactor float64
	MaxDD        float64
	WinRate1Y    float64
	WinRate3Y    float64
}

// WriteIndexPage renders the cross-symbol index at docsDir/gann-index.html.
func WriteIndexPage(docsDir string, rows []IndexRow) error {
	if err := os.MkdirAll(docsDir, 0o755); err != nil {
		return err
	}
	return renderTo(filepath.Join(docsDir, "gann-index.html"), indexPageTmpl, rows)
}

func renderTo(path string, tmpl *template.Template, data any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := tmpl.Execute(f, data); err != nil {
		f.Close()
		return fmt.Errorf("render %s: %w", path, err)
	}
	return f.Close()
}
