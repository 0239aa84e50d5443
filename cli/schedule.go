package cli

import (
	"github.com/spf13/cobra"

	"emi-calculator/domain"
	"emi-calculator/service"
)

func (cli *CLI) newScheduleCmd() *cobra.Command {
	var (
		input domain.LoanInput
		flags tableFlags
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Print the monthly installment and one page of the amortization schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := service.ValidateLoanInput(input); err != nil {
				return err
			}
			totals, schedule := service.ComputeSchedule(input.Principal, input.AnnualRatePercent, input.TermYears)
			page := service.Present(schedule, flags.apply(service.ScheduleTableSpec.DefaultState()), service.ScheduleTableSpec)
			return newReporter(cmd.OutOrStdout()).schedule(totals, len(schedule), page)
		},
	}

	cmd.Flags().Float64Var(&input.Principal, "principal", 0, "loan amount")
	cmd.Flags().Float64Var(&input.AnnualRatePercent, "rate", 0, "annual interest rate in percent")
	cmd.Flags().Float64Var(&input.TermYears, "years", 0, "loan term in years")
	_ = cmd.MarkFlagRequired("principal")
	_ = cmd.MarkFlagRequired("years")
	flags.register(cmd, "month")

	return cmd
}
