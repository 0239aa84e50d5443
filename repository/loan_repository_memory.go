package repository

import (
	"sync"
	"time"

	"emi-calculator/domain"
)

const defaultLogCapacity = 100

// LoanRepositoryMemory keeps the most recent calculations in a ring.
// Schedules are not retained, only their totals and length.
type LoanRepositoryMemory struct {
	mu       sync.Mutex
	data     []CalculationRecord
	capacity int
}

// NewLoanRepositoryMemory creates a new in-memory loan repository. A
// non-positive capacity selects the default.
func NewLoanRepositoryMemory(capacity int) *LoanRepositoryMemory {
	if capacity <= 0 {
		capacity = defaultLogCapacity
	}
	return &LoanRepositoryMemory{
		data:     make([]CalculationRecord, 0, capacity),
		capacity: capacity,
	}
}

// Save stores the loan result in memory, dropping the oldest record once full.
func (r *LoanRepositoryMemory) Save(
	input domain.LoanInput,
	result domain.LoanResult,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.data) == r.capacity {
		copy(r.data, r.data[1:])
		r.data = r.data[:len(r.data)-1]
	}
	r.data = append(r.data, CalculationRecord{
		Input:      input,
		Totals:     result.Totals,
		Months:     len(result.Schedule),
		RecordedAt: time.Now(),
	})
	return nil
}

// Recent returns up to limit records, newest first.
func (r *LoanRepositoryMemory) Recent(limit int) []CalculationRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 || limit > len(r.data) {
		limit = len(r.data)
	}
	out := make([]CalculationRecord, 0, limit)
	for i := len(r.data) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.data[i])
	}
	return out
}
