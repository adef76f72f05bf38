// Package tickers loads the list of symbols a batch valuation runs over.
package tickers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Entry is one row of a ticker list.
type Entry struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name,omitempty"`
}

// Read parses a CSV with a "symbol" (or "ticker") column and an optional
// "name" column. Header names are case-insensitive. Blank and duplicate
// symbols are skipped. When suffix is set (e.g. ".BO") it is appended to
// symbols that carry no exchange suffix of their own.
func Read(r io.Reader, suffix string) ([]Entry, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	headerMap := make(map[string]int, len(header))
	for i, name := range header {
		headerMap[strings.ToLower(strings.TrimSpace(name))] = i
	}

	symbolIdx, ok := headerMap["symbol"]
	if !ok {
		symbolIdx, ok = headerMap["ticker"]
	}
	if !ok {
		return nil, errors.New("missing required column: symbol or ticker")
	}
	nameIdx, hasName := headerMap["name"]

	var entries []Entry
	seen := make(map[string]bool)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading csv record: %w", err)
		}
		if symbolIdx >= len(record) {
			continue
		}

		symbol := strings.ToUpper(strings.TrimSpace(record[symbolIdx]))
		if symbol == "" {
			continue
		}
		if suffix != "" && !strings.Contains(symbol, ".") {
			symbol += strings.ToUpper(suffix)
		}
		if seen[symbol] {
			continue
		}
		seen[symbol] = true

		e := Entry{Symbol: symbol}
		if hasName && nameIdx < len(record) {
			e.Name = strings.TrimSpace(record[nameIdx])
		}
		entries = append(entries, e)
	}

	return entries, nil
}

// ReadFile opens path and calls Read.
func ReadFile(path, suffix string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ticker list: %w", err)
	}
	defer f.Close()
	return Read(f, suffix)
}

// Symbols returns the symbols of entries in order.
func Symbols(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Symbol
	}
	return out
}
