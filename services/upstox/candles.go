package upstox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/pritamkhande/nifty500-eod-upstox/services/engine"
)

// GlobalStart is the earliest date any download reaches back to.
var GlobalStart = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// InstrumentKey builds the Upstox identifier for an NSE equity ISIN.
func InstrumentKey(isin string) string {
	return "NSE_EQ|" + isin
}

// candleResponse mirrors the v3 historical-candle payload: each candle is
// a positional array [timestamp, open, high, low, close, volume, oi].
type candleResponse struct {
	Status string `json:"status"`
	Data   struct {
		Candles [][]json.Number `json:"candles"`
	} `json:"data"`
}

// dateWindows splits [from, to] into decade-sized chunks, oldest first.
// The API caps how far a single request may span, so long histories are
// fetched in pieces.
func dateWindows(from, to time.Time) [][2]time.Time {
	if from.After(to) {
		return nil
	}
	var out [][2]time.Time
	cur := from
	for {
		end := cur.AddDate(10, 0, 0).AddDate(0, 0, -1)
		if end.After(to) {
			end = to
		}
		out = append(out, [2]time.Time{cur, end})
		if !end.Before(to) {
			return out
		}
		cur = end.AddDate(0, 0, 1)
	}
}

// FetchDailyCandles downloads all daily candles for the instrument between
// from and to inclusive, sorted ascending by date.
func (c *Client) FetchDailyCandles(ctx context.Context, instrumentKey string, from, to time.Time) ([]engine.Bar, error) {
	var bars []engine.Bar
	for _, win := range dateWindows(from, to) {
		u := fmt.Sprintf("%s/historical-candle/%s/days/1/%s/%s",
			c.baseURL,
			url.PathEscape(instrumentKey),
			win[1].Format("2006-01-02"),
			win[0].Format("2006-01-02"))
		body, err := c.getJSON(ctx, u)
		if err != nil {
			return nil, err
		}
		chunk, err := parseCandles(body)
		if err != nil {
			return nil, fmt.Errorf("decode candles for %s: %w", instrumentKey, err)
		}
		bars = append(bars, chunk...)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return dedupBars(bars), nil
}

func parseCandles(body []byte) ([]engine.Bar, error) {
	var resp candleResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	bars := make([]engine.Bar, 0, len(resp.Data.Candles))
	for _, c := range resp.Data.Candles {
		if len(c) < 6 {
			continue
		}
		ts, err := time.Parse(time.RFC3339, c[0].String())
		if err != nil {
			continue
		}
		bar := engine.Bar{
			Date: time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC),
		}
		vals := []*float64{&bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume}
		ok := true
		for i, dst := range vals {
			v, err := c[i+1].Float64()
			if err != nil {
				ok = false
				break
			}
			*dst = v
		}
		if !ok {
			continue
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func dedupBars(bars []engine.Bar) []engine.Bar {
	out := bars[:0]
	for i, b := range bars {
		if i > 0 && b.Date.Equal(bars[i-1].Date) {
			out[len(out)-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

// MergeIncremental appends fresh bars onto an existing series, replacing
// any overlap so a re-download of recent days wins over stale rows.
func MergeIncremental(existing, fresh []engine.Bar) []engine.Bar {
	if len(fresh) == 0 {
		return existing
	}
	cutoff := fresh[0].Date
	merged := make([]engine.Bar, 0, len(existing)+len(fresh))
	for _, b := range existing {
		if b.Date.Before(cutoff) {
			merged = append(merged, b)
		}
	}
	return append(merged, fresh...)
}
