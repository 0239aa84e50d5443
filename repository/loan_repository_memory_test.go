package repository

import (
	"testing"

	"emi-calculator/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoanRepositoryMemory_RecentNewestFirst(t *testing.T) {
	repo := NewLoanRepositoryMemory(2)

	for _, p := range []float64{100, 200, 300} {
		require.NoError(t, repo.Save(
			domain.LoanInput{Principal: p, TermYears: 1},
			domain.LoanResult{Schedule: make(domain.Schedule, 12)},
		))
	}

	recent := repo.Recent(0)
	require.Len(t, recent, 2)
	assert.Equal(t, 300.0, recent[0].Input.Principal)
	assert.Equal(t, 200.0, recent[1].Input.Principal)
	assert.Equal(t, 12, recent[0].Months)

	assert.Len(t, repo.Recent(1), 1)
}
