package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"emi-calculator/service"
)

func (cli *CLI) newRatesCmd() *cobra.Command {
	var (
		base  string
		flags tableFlags
	)

	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Fetch exchange rates for a base currency and print one page",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cli.loadConfig()
			if err != nil {
				return err
			}
			if base == "" {
				base = cfg.DefaultBaseCurrency
			}
			base = strings.ToUpper(strings.TrimSpace(base))

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RateFetchTimeout)
			defer cancel()

			table, err := cli.rateSource(cfg).FetchRates(ctx, base)
			if err != nil {
				return &service.RateFetchError{Base: base, Err: err}
			}

			page := service.Present(table.Rows(), flags.apply(service.RateTableSpec.DefaultState()), service.RateTableSpec)
			return newReporter(cmd.OutOrStdout()).rates(table.Base, page)
		},
	}

	cmd.Flags().StringVar(&base, "base", "", "base currency code (defaults to DEFAULT_BASE_CURRENCY)")
	flags.register(cmd, "code")

	return cmd
}
