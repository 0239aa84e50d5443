package service

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"emi-calculator/domain"
)

type TermRecommendationService struct {
	log logrus.FieldLogger
}

func NewTermRecommendationService(log logrus.FieldLogger) *TermRecommendationService {
	return &TermRecommendationService{log: log}
}

// CompareTerms amortizes the loan over every whole-year term in range and
// ranks the affordable ones by preference.
func (s *TermRecommendationService) CompareTerms(
	input domain.TermComparisonInput,
) (domain.TermComparisonResult, error) {
	if err := validateTermComparison(input); err != nil {
		return domain.TermComparisonResult{}, err
	}

	shortest, _ := ComputeSchedule(input.Principal, input.AnnualRatePercent, float64(input.MinTermYears))
	longest, _ := ComputeSchedule(input.Principal, input.AnnualRatePercent, float64(input.MaxTermYears))

	options := []domain.TermOption{}
	for term := input.MinTermYears; term <= input.MaxTermYears; term++ {
		totals, _ := ComputeSchedule(input.Principal, input.AnnualRatePercent, float64(term))

		if totals.Installment > input.MaxInstallment {
			continue
		}

		options = append(options, domain.TermOption{
			TermYears:     term,
			Installment:   roundTo2Decimals(totals.Installment),
			TotalInterest: roundTo2Decimals(totals.TotalInterest),
			Score:         s.calculateScore(totals, shortest, longest, input, term),
			Reason:        reasonFor(input.Preference),
		})
	}

	if len(options) == 0 {
		return domain.TermComparisonResult{}, errors.New("no term in range keeps the installment under the maximum")
	}

	// Highest score first; shorter term wins ties
	sort.SliceStable(options, func(i, j int) bool {
		return options[i].Score > options[j].Score
	})

	s.log.WithFields(logrus.Fields{
		"evaluated":   input.MaxTermYears - input.MinTermYears + 1,
		"affordable":  len(options),
		"recommended": options[0].TermYears,
	}).Debug("terms compared")

	return domain.TermComparisonResult{
		RecommendedTermYears: options[0].TermYears,
		Options:              options,
	}, nil
}

func validateTermComparison(input domain.TermComparisonInput) error {
	if err := ValidateLoanInput(domain.LoanInput{
		Principal:         input.Principal,
		AnnualRatePercent: input.AnnualRatePercent,
		TermYears:         float64(max(input.MinTermYears, 1)),
	}); err != nil {
		return err
	}
	switch {
	case input.MinTermYears <= 0 || input.MaxTermYears <= 0:
		return &ValidationError{Field: "term_years", Reason: "min and max must be greater than zero"}
	case input.MinTermYears > input.MaxTermYears:
		return &ValidationError{Field: "term_years", Reason: "min must not exceed max"}
	case float64(input.MaxTermYears) > MaxTermYears:
		return &ValidationError{Field: "max_term_years", Reason: fmt.Sprintf("exceeds the limit of %.0f years", MaxTermYears)}
	case input.MaxTermYears-input.MinTermYears > MaxTermRangeYears:
		return &ValidationError{Field: "term_years", Reason: fmt.Sprintf("range exceeds %d years", MaxTermRangeYears)}
	case !isFinite(input.MaxInstallment) || input.MaxInstallment <= 0:
		return &ValidationError{Field: "max_installment", Reason: "must be greater than zero"}
	}

	switch input.Preference {
	case domain.PreferMinimizeInterest, domain.PreferMinimizePayment, domain.PreferBalanced:
		return nil
	}
	return &ValidationError{Field: "preference", Reason: fmt.Sprintf("unknown preference %q", input.Preference)}
}

// calculateScore rates a term from 0 to 10, weighting interest, payment and
// term length by preference.
func (s *TermRecommendationService) calculateScore(
	totals, shortest, longest domain.Totals,
	input domain.TermComparisonInput,
	term int,
) float64 {
	interestScore := normalizedScore(totals.TotalInterest, shortest.TotalInterest, longest.TotalInterest)
	paymentScore := normalizedScore(totals.Installment, longest.Installment, shortest.Installment)

	termScore := 10.0
	if span := input.MaxTermYears - input.MinTermYears; span > 0 {
		termScore = 10.0 * (1.0 - float64(term-input.MinTermYears)/float64(span))
	}

	var score float64
	switch input.Preference {
	case domain.PreferMinimizeInterest:
		score = 0.6*interestScore + 0.2*paymentScore + 0.2*termScore
	case domain.PreferMinimizePayment:
		score = 0.2*interestScore + 0.6*paymentScore + 0.2*termScore
	case domain.PreferBalanced:
		score = 0.4*interestScore + 0.4*paymentScore + 0.2*termScore
	}

	return roundTo2Decimals(score)
}

// normalizedScore maps best to 10 and worst to 0.
func normalizedScore(value, best, worst float64) float64 {
	span := worst - best
	if span == 0 || math.IsNaN(span) {
		return 10.0
	}
	return 10.0 * (1.0 - (value-best)/span)
}

func reasonFor(pref domain.TermPreference) string {
	switch pref {
	case domain.PreferMinimizeInterest:
		return "Term optimized to minimize total interest cost"
	case domain.PreferMinimizePayment:
		return "Term optimized to minimize the monthly installment"
	case domain.PreferBalanced:
		return "Balance between monthly installment and total cost"
	}
	return "Recommendation based on the provided parameters"
}
