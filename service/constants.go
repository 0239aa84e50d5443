package service

import "time"

const (
	MaxPrincipal        = 1_000_000_000.0
	MaxInterestRate     = 1000.0 // percent per year
	MaxTermYears        = 50.0
	MaxTermRangeYears   = 30 // widest min..max span accepted by term comparison
	BalanceTolerance    = 0.01
	DefaultFetchTimeout = 10 * time.Second

	ScheduleDefaultPageSize = 10
	RatesDefaultPageSize    = 15
)
