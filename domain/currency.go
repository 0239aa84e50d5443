package domain

import (
	"slices"
	"strings"
	"time"
)

// RateTable maps currency codes to the amount of that currency one unit of
// Base buys. A table is replaced wholesale on refresh and never edited.
type RateTable struct {
	Base      string             `json:"base"`
	Rates     map[string]float64 `json:"rates"`
	FetchedAt time.Time          `json:"fetched_at"`
}

// Rate reports the rate for code and whether the table carries it.
func (t RateTable) Rate(code string) (float64, bool) {
	r, ok := t.Rates[code]
	return r, ok
}

// Clone returns a deep copy so callers can never reach the converter's map.
func (t RateTable) Clone() RateTable {
	rates := make(map[string]float64, len(t.Rates))
	for code, r := range t.Rates {
		rates[code] = r
	}
	return RateTable{Base: t.Base, Rates: rates, FetchedAt: t.FetchedAt}
}

// RateRow is the presentation form of one RateTable entry.
type RateRow struct {
	Code        string  `json:"code"`
	Rate        float64 `json:"rate"`
	InverseRate float64 `json:"inverse_rate"`
}

// Rows flattens the table ordered by code, so ties under any other sort key
// come out the same way on every call.
func (t RateTable) Rows() []RateRow {
	rows := make([]RateRow, 0, len(t.Rates))
	for code, r := range t.Rates {
		row := RateRow{Code: code, Rate: r}
		if r != 0 {
			row.InverseRate = 1 / r
		}
		rows = append(rows, row)
	}
	slices.SortFunc(rows, func(a, b RateRow) int { return strings.Compare(a.Code, b.Code) })
	return rows
}

type ConverterState string

const (
	ConverterLoading ConverterState = "loading"
	ConverterReady   ConverterState = "ready"
	ConverterError   ConverterState = "error"
)

// ConverterSnapshot is a point-in-time copy of a converter.
type ConverterSnapshot struct {
	Base  string         `json:"base"`
	State ConverterState `json:"state"`
	Error string         `json:"error,omitempty"`
	Table RateTable      `json:"-"`
}
