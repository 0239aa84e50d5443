package service

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"emi-calculator/domain"
)

// TableSpec describes how rows of one table are searched and sorted.
type TableSpec[T any] struct {
	// SearchText returns the field the search term is matched against.
	SearchText func(T) string
	// SortKeys maps a sort key to an ascending comparator.
	SortKeys        map[string]func(a, b T) int
	DefaultSortKey  string
	DefaultPageSize int
}

// DefaultState is the initial view of a table built from spec.
func (s TableSpec[T]) DefaultState() domain.PresentationState {
	return domain.PresentationState{
		SortKey:       s.DefaultSortKey,
		SortDirection: domain.SortAscending,
		PageIndex:     1,
		PageSize:      s.DefaultPageSize,
	}
}

// Present filters, sorts and slices rows without modifying them.
//
// TotalPages is never below 1. A page past the end yields an empty page;
// keeping PageIndex in range is the caller's job.
func Present[T any](rows []T, state domain.PresentationState, spec TableSpec[T]) domain.Page[T] {
	pageSize := state.PageSize
	if pageSize <= 0 {
		pageSize = spec.DefaultPageSize
	}
	if pageSize <= 0 {
		pageSize = 1
	}
	pageIndex := max(state.PageIndex, 1)

	filtered := filterRows(rows, state.SearchTerm, spec.SearchText)

	if asc, ok := spec.SortKeys[state.SortKey]; ok {
		compare := asc
		if state.SortDirection == domain.SortDescending {
			compare = func(a, b T) int { return asc(b, a) }
		}
		slices.SortStableFunc(filtered, compare)
	}

	totalPages := max((len(filtered)+pageSize-1)/pageSize, 1)

	start := (pageIndex - 1) * pageSize
	pageRows := []T{}
	if start < len(filtered) {
		end := min(start+pageSize, len(filtered))
		pageRows = append(pageRows, filtered[start:end]...)
	}

	return domain.Page[T]{
		Rows:       pageRows,
		PageIndex:  pageIndex,
		PageSize:   pageSize,
		TotalPages: totalPages,
		TotalRows:  len(filtered),
	}
}

func filterRows[T any](rows []T, term string, text func(T) string) []T {
	out := make([]T, 0, len(rows))
	needle := strings.ToLower(term)
	if needle == "" || text == nil {
		return append(out, rows...)
	}
	for _, row := range rows {
		if strings.Contains(strings.ToLower(text(row)), needle) {
			out = append(out, row)
		}
	}
	return out
}

// Table keeps one PresentationState next to its spec.
type Table[T any] struct {
	spec  TableSpec[T]
	state domain.PresentationState
}

func NewTable[T any](spec TableSpec[T]) *Table[T] {
	return &Table[T]{spec: spec, state: spec.DefaultState()}
}

func (t *Table[T]) State() domain.PresentationState {
	return t.state
}

// SetSearch changes the search term and returns to the first page.
func (t *Table[T]) SetSearch(term string) {
	t.state.SearchTerm = term
	t.state.PageIndex = 1
}

// SetSort flips the direction when key is already active, otherwise sorts
// ascending by key.
func (t *Table[T]) SetSort(key string) {
	if t.state.SortKey == key {
		if t.state.SortDirection == domain.SortAscending {
			t.state.SortDirection = domain.SortDescending
		} else {
			t.state.SortDirection = domain.SortAscending
		}
		return
	}
	t.state.SortKey = key
	t.state.SortDirection = domain.SortAscending
}

func (t *Table[T]) SetSortDirection(dir domain.SortDirection) {
	t.state.SortDirection = dir
}

func (t *Table[T]) SetPage(index int) {
	t.state.PageIndex = index
}

func (t *Table[T]) SetPageSize(size int) {
	t.state.PageSize = size
}

func (t *Table[T]) Present(rows []T) domain.Page[T] {
	return Present(rows, t.state, t.spec)
}

// ScheduleTableSpec searches by month number.
var ScheduleTableSpec = TableSpec[domain.AmortizationRow]{
	SearchText: func(r domain.AmortizationRow) string { return strconv.Itoa(r.Month) },
	SortKeys: map[string]func(a, b domain.AmortizationRow) int{
		"month":       func(a, b domain.AmortizationRow) int { return cmp.Compare(a.Month, b.Month) },
		"principal":   func(a, b domain.AmortizationRow) int { return cmp.Compare(a.PrincipalPortion, b.PrincipalPortion) },
		"interest":    func(a, b domain.AmortizationRow) int { return cmp.Compare(a.InterestPortion, b.InterestPortion) },
		"balance":     func(a, b domain.AmortizationRow) int { return cmp.Compare(a.RemainingBalance, b.RemainingBalance) },
		"installment": func(a, b domain.AmortizationRow) int { return cmp.Compare(a.Installment, b.Installment) },
	},
	DefaultSortKey:  "month",
	DefaultPageSize: ScheduleDefaultPageSize,
}

// RateTableSpec searches by currency code.
var RateTableSpec = TableSpec[domain.RateRow]{
	SearchText: func(r domain.RateRow) string { return r.Code },
	SortKeys: map[string]func(a, b domain.RateRow) int{
		"code":    func(a, b domain.RateRow) int { return strings.Compare(a.Code, b.Code) },
		"rate":    func(a, b domain.RateRow) int { return cmp.Compare(a.Rate, b.Rate) },
		"inverse": func(a, b domain.RateRow) int { return cmp.Compare(a.InverseRate, b.InverseRate) },
	},
	DefaultSortKey:  "code",
	DefaultPageSize: RatesDefaultPageSize,
}
