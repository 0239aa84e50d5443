package domain

type SortDirection string

const (
	SortAscending  SortDirection = "asc"
	SortDescending SortDirection = "desc"
)

// ParseSortDirection maps anything other than "desc" to ascending.
func ParseSortDirection(s string) SortDirection {
	if s == string(SortDescending) {
		return SortDescending
	}
	return SortAscending
}

// PresentationState is the per-table view state. PageIndex is 1-based.
type PresentationState struct {
	SortKey       string        `json:"sort"`
	SortDirection SortDirection `json:"direction"`
	SearchTerm    string        `json:"search"`
	PageIndex     int           `json:"page"`
	PageSize      int           `json:"page_size"`
}

type Page[T any] struct {
	Rows       []T `json:"rows"`
	PageIndex  int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
	TotalRows  int `json:"total_rows"`
}
