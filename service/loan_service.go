package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"emi-calculator/domain"
	"emi-calculator/repository"
)

// roundTo2Decimals rounds a float64 to 2 decimals
func roundTo2Decimals(value float64) float64 {
	return math.Round(value*100) / 100
}

type LoanService struct {
	repo     repository.LoanRepository
	cache    repository.CacheRepository
	cacheTTL time.Duration
	log      logrus.FieldLogger
}

// NewLoanService creates a new LoanService. cache may be nil.
func NewLoanService(repo repository.LoanRepository,
	cache repository.CacheRepository,
	cacheTTL time.Duration,
	log logrus.FieldLogger,
) *LoanService {
	return &LoanService{repo: repo, cache: cache, cacheTTL: cacheTTL, log: log}
}

// ValidateLoanInput is the form-layer check the engine relies on.
func ValidateLoanInput(input domain.LoanInput) error {
	switch {
	case !isFinite(input.Principal):
		return &ValidationError{Field: "principal", Reason: "must be a number"}
	case input.Principal <= 0:
		return &ValidationError{Field: "principal", Reason: "must be greater than zero"}
	case input.Principal > MaxPrincipal:
		return &ValidationError{Field: "principal", Reason: fmt.Sprintf("exceeds the maximum of %.2f", MaxPrincipal)}
	case !isFinite(input.AnnualRatePercent):
		return &ValidationError{Field: "annual_rate_percent", Reason: "must be a number"}
	case input.AnnualRatePercent < 0:
		return &ValidationError{Field: "annual_rate_percent", Reason: "must not be negative"}
	case input.AnnualRatePercent > MaxInterestRate:
		return &ValidationError{Field: "annual_rate_percent", Reason: fmt.Sprintf("exceeds the maximum of %.2f%%", MaxInterestRate)}
	case !isFinite(input.TermYears):
		return &ValidationError{Field: "term_years", Reason: "must be a number"}
	case input.TermYears <= 0:
		return &ValidationError{Field: "term_years", Reason: "must be greater than zero"}
	case input.TermYears > MaxTermYears:
		return &ValidationError{Field: "term_years", Reason: fmt.Sprintf("exceeds the maximum of %.0f years", MaxTermYears)}
	case termMonths(input.TermYears) == 0:
		return &ValidationError{Field: "term_years", Reason: "must cover at least one month"}
	}
	return nil
}

// CalculateLoan validates input, then computes or loads the schedule.
func (s *LoanService) CalculateLoan(
	ctx context.Context,
	input domain.LoanInput,
) (domain.LoanResult, error) {
	if err := ValidateLoanInput(input); err != nil {
		return domain.LoanResult{}, err
	}

	key := scheduleCacheKey(input)
	result, hit := s.cached(ctx, key)
	if hit {
		s.log.WithField("key", key).Debug("schedule cache hit")
	} else {
		totals, schedule := ComputeSchedule(input.Principal, input.AnnualRatePercent, input.TermYears)
		result = domain.LoanResult{Totals: totals, Schedule: schedule}
		s.store(ctx, key, result)
	}

	// Not critical if saving fails
	if err := s.repo.Save(input, result); err != nil {
		s.log.WithError(err).Warn("failed to save loan calculation")
	}

	s.log.WithFields(logrus.Fields{
		"principal":   input.Principal,
		"rate":        input.AnnualRatePercent,
		"term_years":  input.TermYears,
		"installment": roundTo2Decimals(result.Totals.Installment),
		"months":      len(result.Schedule),
		"cached":      hit,
	}).Info("loan calculated")

	return result, nil
}

// History exposes the recent calculation log.
func (s *LoanService) History(limit int) []repository.CalculationRecord {
	return s.repo.Recent(limit)
}

func (s *LoanService) cached(ctx context.Context, key string) (domain.LoanResult, bool) {
	if s.cache == nil {
		return domain.LoanResult{}, false
	}
	raw, ok := s.cache.Get(ctx, key)
	if !ok {
		return domain.LoanResult{}, false
	}
	var result domain.LoanResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		s.log.WithError(err).Warn("discarding unreadable cached schedule")
		return domain.LoanResult{}, false
	}
	return result, true
}

func (s *LoanService) store(ctx context.Context, key string, result domain.LoanResult) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		s.log.WithError(err).Warn("failed to encode schedule for cache")
		return
	}
	if err := s.cache.Set(ctx, key, string(data), s.cacheTTL); err != nil {
		s.log.WithError(err).Warn("failed to cache schedule")
	}
}

func scheduleCacheKey(input domain.LoanInput) string {
	return fmt.Sprintf("schedule:%g:%g:%g", input.Principal, input.AnnualRatePercent, input.TermYears)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
