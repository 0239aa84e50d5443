package domain

type TermPreference string

const (
	PreferMinimizeInterest TermPreference = "minimize_interest"
	PreferMinimizePayment  TermPreference = "minimize_payment"
	PreferBalanced         TermPreference = "balanced"
)

type TermComparisonInput struct {
	Principal         float64        `json:"principal"`
	AnnualRatePercent float64        `json:"annual_rate_percent"`
	MinTermYears      int            `json:"min_term_years"`
	MaxTermYears      int            `json:"max_term_years"`
	MaxInstallment    float64        `json:"max_installment"`
	Preference        TermPreference `json:"preference"`
}

type TermOption struct {
	TermYears     int     `json:"term_years"`
	Installment   float64 `json:"installment"`
	TotalInterest float64 `json:"total_interest"`
	Score         float64 `json:"score"`
	Reason        string  `json:"reason"`
}

type TermComparisonResult struct {
	RecommendedTermYears int          `json:"recommended_term_years"`
	Options              []TermOption `json:"options"`
}
