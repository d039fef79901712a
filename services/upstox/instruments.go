package upstox

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Instrument is one row of the index constituents list.
type Instrument struct {
	Symbol string
	ISIN   string
}

// LoadInstrumentList reads the NSE constituents CSV. The official NIFTY 500
// export names its columns ISIN and TckrSymb; both are required.
func LoadInstrumentList(path string) ([]Instrument, error) {
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
	isinCol, symCol := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")) {
		case "ISIN":
			isinCol = i
		case "TckrSymb":
			symCol = i
		}
	}
	if isinCol < 0 || symCol < 0 {
		return nil, fmt.Errorf("%s: need ISIN and TckrSymb columns", path)
	}

	var out []Instrument
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		isin := strings.TrimSpace(rec[isinCol])
		sym := strings.TrimSpace(rec[symCol])
		if isin == "" || sym == "" {
			continue
		}
		out = append(out, Instrument{Symbol: sym, ISIN: isin})
	}
	return out, nil
}
