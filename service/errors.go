package service

import (
	"errors"
	"fmt"
)

var (
	ErrConverterLoading = errors.New("exchange rates are still loading")
	ErrSessionNotFound  = errors.New("session not found")
	ErrNoSchedule       = errors.New("no schedule has been calculated for this session")
	ErrRatesUnavailable = errors.New("exchange rates are unavailable")
)

// ValidationError rejects form input before it reaches the engine.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// RateFetchError wraps any failure of a RateSource for one base currency.
type RateFetchError struct {
	Base string
	Err  error
}

func (e *RateFetchError) Error() string {
	return fmt.Sprintf("fetch rates for %s: %v", e.Base, e.Err)
}

func (e *RateFetchError) Unwrap() error {
	return e.Err
}
