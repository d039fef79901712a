package report

import (
	"fmt"
	"strings"

	"github.com/pritamkhande/nifty500-eod-upstox/services/engine"
)

// Commentary turns the headline metrics into the short plain-English
// assessment shown at the top of each symbol page.
func Commentary(symbol string, m engine.Metrics) string {
	if m.NTrades == 0 {
		return fmt.Sprintf("No trades were generated for %s. The current parameter set is too strict for this series.", symbol)
	}

	var b strings.Builder

	perYear := 0.0
	if m.Years > 0 {
		perYear = float64(m.NTrades) / m.Years
	}
	switch {
	case perYear < 5:
		b.WriteString("This is a very selective, long-term system")
	case perYear < 15:
		b.WriteString("This is a moderately active swing system")
	default:
		b.WriteString("This is an active swing/position system")
	}
	fmt.Fprintf(&b, " with %d trades over %.1f years. ", m.NTrades, m.Years)

	ddPct := -100.0 * m.MaxDrawdown
	switch {
	case ddPct < 5:
		fmt.Fprintf(&b, "Drawdown stayed shallow at %.1f%%, indicating low equity stress. ", ddPct)
	case ddPct < 12:
		fmt.Fprintf(&b, "Drawdown reached %.1f%%, a moderate level for a trend approach. ", ddPct)
	default:
		fmt.Fprintf(&b, "Drawdown reached %.1f%%, which demands meaningful risk tolerance. ", ddPct)
	}

	cagrPct := 100.0 * m.CAGR
	switch {
	case cagrPct < 2:
		fmt.Fprintf(&b, "Compounded growth of %.1f%% per year is modest on this series.", cagrPct)
	case cagrPct < 8:
		fmt.Fprintf(&b, "Compounded growth of %.1f%% per year is respectable for a single-symbol overlay.", cagrPct)
	default:
		fmt.Fprintf(&b, "Compounded growth of %.1f%% per year is strong for a single-symbol overlay.", cagrPct)
	}

	return b.String()
}
