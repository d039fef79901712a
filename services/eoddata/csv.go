package eoddata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/pritamkhande/nifty500-eod-upstox/services/engine"
)

// Accepted date layouts. Provider exports sometimes carry a time component
// or an offset; everything normalizes to UTC midnight.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05Z07:00",
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// bomTolerantReader strips a UTF-8/UTF-16 BOM if one is present, so files
// round-tripped through spreadsheets still load.
func bomTolerantReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// LoadSeries reads a symbol's EOD CSV into bars: required columns Date,
// Open, High, Low, Close, Volume (a missing column is fatal), rows sorted
// by date with duplicates dropped. This is the validation gate the core
// relies on.
func LoadSeries(path string) ([]engine.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(bomTolerantReader(f))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	col := map[string]int{}
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, name := range []string{"Date", "Open", "High", "Low", "Close", "Volume"} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("%s: missing column %q", path, name)
		}
	}

	var bars []engine.Bar
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		date, err := parseDate(rec[col["Date"]])
		if err != nil {
			continue // unparseable dates are dropped, as the loader always has
		}
		bar := engine.Bar{Date: date}
		fields := []struct {
			name string
			dst  *float64
		}{
			{"Open", &bar.Open}, {"High", &bar.High}, {"Low", &bar.Low},
			{"Close", &bar.Close}, {"Volume", &bar.Volume},
		}
		bad := false
		for _, fld := range fields {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[col[fld.name]]), 64)
			if err != nil {
				bad = true
				break
			}
			*fld.dst = v
		}
		if bad {
			continue
		}
		bars = append(bars, bar)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	bars = dedupByDate(bars)

	if err := engine.ValidateSeries(bars); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return bars, nil
}

func dedupByDate(bars []engine.Bar) []engine.Bar {
	out := bars[:0]
	for i, b := range bars {
		if i > 0 && b.Date.Equal(bars[i-1].Date) {
			out[len(out)-1] = b // keep the later row, as a re-download would
			continue
		}
		out = append(out, b)
	}
	return out
}

// SaveSeries writes bars back in the catalog format, with a leading Symbol
// column.
func SaveSeries(path, symbol string, bars []engine.Bar) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Symbol", "Date", "Open", "High", "Low", "Close", "Volume"}); err != nil {
		return err
	}
	for _, b := range bars {
		rec := []string{
			symbol,
			b.Date.Format("2006-01-02"),
			formatPrice(b.Open),
			formatPrice(b.High),
			formatPrice(b.Low),
			formatPrice(b.Close),
			formatPrice(b.Volume),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
