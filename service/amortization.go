package service

import (
	"math"

	"emi-calculator/domain"
)

// ComputeSchedule amortizes principal over round(termYears*12) monthly
// periods at a fixed rate on the reducing balance.
//
// It does not validate its arguments. Non-finite intermediate values are
// reported as 0 so the result is always renderable. The balance is floored at
// zero in every period, which absorbs the final-period residual instead of
// adjusting the last installment.
func ComputeSchedule(principal, annualRatePercent, termYears float64) (domain.Totals, domain.Schedule) {
	monthlyRate := annualRatePercent / 12 / 100
	n := termMonths(termYears)
	if n <= 0 {
		return domain.Totals{}, domain.Schedule{}
	}

	installment := finiteOrZero(Installment(principal, monthlyRate, n))

	schedule := make(domain.Schedule, 0, n)
	balance := principal
	totalInterest := 0.0

	for month := 1; month <= n; month++ {
		interest := balance * monthlyRate
		principalPortion := installment - interest
		balance = math.Max(0, balance-principalPortion)

		row := domain.AmortizationRow{
			Month:            month,
			PrincipalPortion: finiteOrZero(principalPortion),
			InterestPortion:  finiteOrZero(interest),
			RemainingBalance: finiteOrZero(balance),
			Installment:      installment,
		}
		totalInterest += row.InterestPortion
		schedule = append(schedule, row)
	}

	totals := domain.Totals{
		Installment:   installment,
		TotalInterest: totalInterest,
		TotalPayment:  finiteOrZero(principal + totalInterest),
	}
	return totals, schedule
}

// Installment is the fixed payment for n periods at monthlyRate. The
// zero-rate case is split evenly since the annuity formula divides by zero.
func Installment(principal, monthlyRate float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	if monthlyRate == 0 {
		return principal / float64(n)
	}
	factor := math.Pow(1+monthlyRate, float64(n))
	return principal * monthlyRate * factor / (factor - 1)
}

func termMonths(termYears float64) int {
	months := math.Round(termYears * 12)
	if math.IsNaN(months) || math.IsInf(months, 0) || months <= 0 {
		return 0
	}
	return int(months)
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
