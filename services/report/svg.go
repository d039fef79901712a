package report

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/pritamkhande/nifty500-eod-upstox/services/engine"
)

// Chart geometry shared by all inline SVGs.
const (
	chartWidth  = 900
	chartHeight = 260
	chartPad    = 40
)

// EquityChartSVG renders the compounded equity trace as an inline SVG
// line chart. Returns an empty string when there is nothing to plot.
func EquityChartSVG(bars []engine.Bar) template.HTML {
	values := make([]float64, len(bars))
	for i, b := range bars {
		values[i] = b.Equity
	}
	return lineChartSVG(values, "#1a7f37", "Equity")
}

// DrawdownChartSVG renders drawdown from the running equity peak, in
// percent below zero.
func DrawdownChartSVG(bars []engine.Bar) template.HTML {
	values := make([]float64, len(bars))
	peak := 0.0
	for i, b := range bars {
		if b.Equity > peak {
			peak = b.Equity
		}
		if peak > 0 {
			values[i] = 100.0 * (b.Equity - peak) / peak
		}
	}
	return lineChartSVG(values, "#cf222e", "Drawdown %")
}

func lineChartSVG(values []float64, stroke, label string) template.HTML {
	if len(values) < 2 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi == lo {
		hi = lo + 1
	}

	plotW := float64(chartWidth - 2*chartPad)
	plotH := float64(chartHeight - 2*chartPad)
	var pts strings.Builder
	for i, v := range values {
		x := float64(chartPad) + plotW*float64(i)/float64(len(values)-1)
		y := float64(chartPad) + plotH*(1-(v-lo)/(hi-lo))
		if i > 0 {
			pts.WriteByte(' ')
		}
		fmt.Fprintf(&pts, "%.1f,%.1f", x, y)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg" role="img">`, chartWidth, chartHeight)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="#ffffff"/>`, chartWidth, chartHeight)
	fmt.Fprintf(&b, `<text x="%d" y="%d" font-size="13" fill="#57606a">%s</text>`, chartPad, chartPad-14, template.HTMLEscapeString(label))
	fmt.Fprintf(&b, `<text x="%d" y="%d" font-size="11" fill="#57606a" text-anchor="end">%.2f</text>`, chartPad-6, chartPad+6, hi)
	fmt.Fprintf(&b, `<text x="%d" y="%d" font-size="11" fill="#57606a" text-anchor="end">%.2f</text>`, chartPad-6, chartHeight-chartPad, lo)
	fmt.Fprintf(&b, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="#d0d7de"/>`, chartPad, chartHeight-chartPad, chartWidth-chartPad, chartHeight-chartPad)
	fmt.Fprintf(&b, `<polyline fill="none" stroke="%s" stroke-width="1.5" points="%s"/>`, stroke, pts.String())
	b.WriteString(`</svg>`)
	return template.HTML(b.String())
}

// TradeChartSVG renders a candlestick window around one trade, with the
// entry and exit marked.
func TradeChartSVG(bars []engine.Bar, tr engine.Trade) template.HTML {
	const margin = 10
	lo := tr.SignalIndex - margin
	if lo < 0 {
		lo = 0
	}
	hi := tr.ExitIndex + margin
	if hi > len(bars)-1 {
		hi = len(bars) - 1
	}
	window := bars[lo : hi+1]
	if len(window) < 2 {
		return ""
	}

	pLo, pHi := window[0].Low, window[0].High
	for _, b := range window {
		if b.Low < pLo {
			pLo = b.Low
		}
		if b.High > pHi {
			pHi = b.High
		}
	}
	if pHi == pLo {
		pHi = pLo + 1
	}

	plotW := float64(chartWidth - 2*chartPad)
	plotH := float64(chartHeight - 2*chartPad)
	step := plotW / float64(len(window))
	candleW := step * 0.6
	if candleW < 1 {
		candleW = 1
	}
	yOf := func(p float64) float64 {
		return float64(chartPad) + plotH*(1-(p-pLo)/(pHi-pLo))
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg" role="img">`, chartWidth, chartHeight)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="#ffffff"/>`, chartWidth, chartHeight)
	for i, bar := range window {
		x := float64(chartPad) + step*float64(i) + step/2
		color := "#1a7f37"
		if bar.Close < bar.Open {
			color = "#cf222e"
		}
		fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s"/>`,
			x, yOf(bar.High), x, yOf(bar.Low), color)
		top, bot := bar.Open, bar.Close
		if bot > top {
			top, bot = bot, top
		}
		h := yOf(bot) - yOf(top)
		if h < 1 {
			h = 1
		}
		fmt.Fprintf(&b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`,
			x-candleW/2, yOf(top), candleW, h, color)
	}

	marker := func(idx int, price float64, color, label string) {
		if idx < lo || idx > hi {
			return
		}
		x := float64(chartPad) + step*float64(idx-lo) + step/2
		fmt.Fprintf(&b, `<circle cx="%.1f" cy="%.1f" r="4" fill="none" stroke="%s" stroke-width="2"/>`, x, yOf(price), color)
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" font-size="11" fill="%s">%s</text>`, x+6, yOf(price)-6, color, label)
	}
	marker(tr.EntryIndex, tr.EntryPrice, "#0969da", "entry")
	marker(tr.ExitIndex, tr.ExitPrice, "#9a6700", "exit")

	// Stop levels as dashed horizontal lines, clipped to the plot range.
	stopLine := func(price float64, label string) {
		if price < pLo || price > pHi {
			return
		}
		y := yOf(price)
		fmt.Fprintf(&b, `<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="#8250df" stroke-dasharray="4 3"/>`,
			chartPad, y, chartWidth-chartPad, y)
		fmt.Fprintf(&b, `<text x="%d" y="%.1f" font-size="11" fill="#8250df">%s</text>`,
			chartWidth-chartPad+4, y+4, label)
	}
	stopLine(tr.InitialStop, "stop")
	if tr.FinalStop != tr.InitialStop {
		stopLine(tr.FinalStop, "trail")
	}

	b.WriteString(`</svg>`)
	return template.HTML(b.String())
}
