package cli

import (
	"github.com/spf13/cobra"

	"emi-calculator/domain"
)

// tableFlags are the presentation flags shared by listing commands.
type tableFlags struct {
	search   string
	sort     string
	desc     bool
	page     int
	pageSize int
}

func (f *tableFlags) register(cmd *cobra.Command, defaultSort string) {
	cmd.Flags().StringVar(&f.search, "search", "", "case-insensitive filter")
	cmd.Flags().StringVar(&f.sort, "sort", defaultSort, "sort key")
	cmd.Flags().BoolVar(&f.desc, "desc", false, "sort descending")
	cmd.Flags().IntVar(&f.page, "page", 1, "page number, starting at 1")
	cmd.Flags().IntVar(&f.pageSize, "page-size", 0, "rows per page (0 for the table default)")
}

func (f *tableFlags) apply(state domain.PresentationState) domain.PresentationState {
	state.SearchTerm = f.search
	state.SortKey = f.sort
	if f.desc {
		state.SortDirection = domain.SortDescending
	}
	state.PageIndex = f.page
	if f.pageSize > 0 {
		state.PageSize = f.pageSize
	}
	return state
}
