package domain

// LoanInput is the validated form input handed to the amortization engine.
type LoanInput struct {
	Principal         float64 `json:"principal"`
	AnnualRatePercent float64 `json:"annual_rate_percent"`
	TermYears         float64 `json:"term_years"`
}

// AmortizationRow is one monthly period of a schedule.
type AmortizationRow struct {
	Month            int     `json:"month"`
	PrincipalPortion float64 `json:"principal"`
	InterestPortion  float64 `json:"interest"`
	RemainingBalance float64 `json:"balance"`
	Installment      float64 `json:"installment"`
}

// Schedule is ordered by month ascending.
type Schedule []AmortizationRow

type Totals struct {
	Installment   float64 `json:"installment"`
	TotalInterest float64 `json:"total_interest"`
	TotalPayment  float64 `json:"total_payment"`
}

type LoanResult struct {
	Totals   Totals   `json:"totals"`
	Schedule Schedule `json:"schedule"`
}
