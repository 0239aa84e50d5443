package repository

import (
	"time"

	"emi-calculator/domain"
)

type CalculationRecord struct {
	Input      domain.LoanInput
	Totals     domain.Totals
	Months     int
	RecordedAt time.Time
}

type LoanRepository interface {
	Save(input domain.LoanInput, result domain.LoanResult) error
	Recent(limit int) []CalculationRecord
}
