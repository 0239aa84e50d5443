package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"emi-calculator/domain"
)

// reporter renders tables as aligned plain text.
type reporter struct {
	w io.Writer
}

func newReporter(w io.Writer) *reporter {
	return &reporter{w: w}
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func (r *reporter) schedule(totals domain.Totals, months int, page domain.Page[domain.AmortizationRow]) error {
	fmt.Fprintf(r.w, "Monthly EMI:    %s\n", money(totals.Installment))
	fmt.Fprintf(r.w, "Total interest: %s\n", money(totals.TotalInterest))
	fmt.Fprintf(r.w, "Total payment:  %s\n", money(totals.TotalPayment))
	fmt.Fprintf(r.w, "Months:         %d\n\n", months)

	tw := tabwriter.NewWriter(r.w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Month\tPrincipal\tInterest\tBalance\t")
	for _, row := range page.Rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t\n",
			row.Month, money(row.PrincipalPortion), money(row.InterestPortion), money(row.RemainingBalance))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return r.footer(page.PageIndex, page.TotalPages, page.TotalRows)
}

func (r *reporter) rates(base string, page domain.Page[domain.RateRow]) error {
	fmt.Fprintf(r.w, "Base: %s\n\n", base)

	tw := tabwriter.NewWriter(r.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Code\tRate\tInverse")
	for _, row := range page.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", row.Code,
			decimal.NewFromFloat(row.Rate).StringFixed(4),
			decimal.NewFromFloat(row.InverseRate).StringFixed(4))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return r.footer(page.PageIndex, page.TotalPages, page.TotalRows)
}

func (r *reporter) footer(pageIndex, totalPages, totalRows int) error {
	_, err := fmt.Fprintf(r.w, "\nPage %d of %d (%d rows)\n", pageIndex, totalPages, totalRows)
	return err
}
