// Package eoddata manages the on-disk EOD catalog: per-symbol CSVs in
// first-letter bucket directories, plus the optional early-close calendars.
package eoddata

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
)

const eodSuffix = "_EOD.csv"

// SymbolPath returns the catalog location for a symbol's EOD file,
// bucketed by first letter; non-alphabetic leaders share the 0-9 bucket.
func SymbolPath(root, symbol string) string {
	bucket := "0-9"
	if symbol != "" {
		first := unicode.ToUpper(rune(symbol[0]))
		if first >= 'A' && first <= 'Z' {
			bucket = string(first)
		}
	}
	return filepath.Join(root, bucket, symbol+eodSuffix)
}

// SymbolFile pairs a discovered symbol with its CSV path.
type SymbolFile struct {
	Symbol string
	Path   string
}

// Discover walks the catalog for every *_EOD.csv, sorted by symbol.
func Discover(root string) ([]SymbolFile, error) {
	var out []SymbolFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), eodSuffix) {
			return nil
		}
		out = append(out, SymbolFile{
			Symbol: strings.TrimSuffix(d.Name(), eodSuffix),
			Path:   path,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

// EnsureBucket creates the symbol's bucket directory if needed and returns
// the symbol path.
func EnsureBucket(root, symbol string) (string, error) {
	path := SymbolPath(root, symbol)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	return path, nil
}
