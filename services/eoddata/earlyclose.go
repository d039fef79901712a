package eoddata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pritamkhande/nifty500-eod-upstox/services/engine"
)

// LoadEarlyCloseCalendar reads a Date,EarlyClose CSV into the exact-date
// lookup map the margin overlay uses.
func LoadEarlyCloseCalendar(path string) (engine.EarlyCloseCalendar, error) {
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
	dateCol, priceCol := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case "Date":
			dateCol = i
		case "EarlyClose":
			priceCol = i
		}
	}
	if dateCol < 0 || priceCol < 0 {
		return nil, fmt.Errorf("%s: need Date and EarlyClose columns", path)
	}

	cal := engine.EarlyCloseCalendar{}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		date, err := parseDate(rec[dateCol])
		if err != nil {
			continue
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(rec[priceCol]), 64)
		if err != nil {
			continue
		}
		cal[date] = price
	}
	return cal, nil
}

// EarlyCloseForSymbol probes the calendar directory for a symbol-specific
// file, with the shared index file as a special case for NIFTY. A missing
// calendar is not an error; margins simply stay not-available.
func EarlyCloseForSymbol(dir, symbol string) (engine.EarlyCloseCalendar, error) {
	candidates := []string{filepath.Join(dir, symbol+"_early.csv")}
	switch strings.ToLower(symbol) {
	case "nifty", "nifty 50":
		candidates = append(candidates, filepath.Join(dir, "nifty_early_close.csv"))
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return LoadEarlyCloseCalendar(path)
	}
	return nil, nil
}
