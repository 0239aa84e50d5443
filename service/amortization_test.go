package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sumPrincipal(t *testing.T, principal, rate, years float64) (float64, float64) {
	t.Helper()
	_, schedule := ComputeSchedule(principal, rate, years)
	sum := 0.0
	for _, row := range schedule {
		sum += row.PrincipalPortion
	}
	return sum, float64(len(schedule))
}

func TestComputeSchedule_WithInterest(t *testing.T) {
	totals, schedule := ComputeSchedule(100000, 8.5, 5)

	require.Len(t, schedule, 60)
	assert.InDelta(t, 2051.65, totals.Installment, 0.005)
	assert.InDelta(t, totals.Installment*60-100000, totals.TotalInterest, 1e-6)
	assert.InDelta(t, 100000+totals.TotalInterest, totals.TotalPayment, 1e-9)
	assert.InDelta(t, 0, schedule[59].RemainingBalance, 0.005)

	for i, row := range schedule {
		assert.Equal(t, i+1, row.Month)
		assert.Equal(t, totals.Installment, row.Installment)
		assert.GreaterOrEqual(t, row.RemainingBalance, 0.0)
	}
}

func TestComputeSchedule_ZeroInterest(t *testing.T) {
	totals, schedule := ComputeSchedule(50000, 0, 2)

	require.Len(t, schedule, 24)
	assert.Equal(t, 50000.0/24, totals.Installment)
	assert.Equal(t, 0.0, totals.TotalInterest)
	assert.Equal(t, 50000.0, totals.TotalPayment)

	for i, row := range schedule {
		assert.Equal(t, 0.0, row.InterestPortion)
		assert.Equal(t, totals.Installment, row.PrincipalPortion)
		expected := 50000 - float64(i+1)*totals.Installment
		assert.InDelta(t, math.Max(0, expected), row.RemainingBalance, 1e-6)
	}
	assert.InDelta(t, 0, schedule[23].RemainingBalance, 1e-6)
}

func TestComputeSchedule_PrincipalAmortizesToZero(t *testing.T) {
	cases := []struct {
		name      string
		principal float64
		rate      float64
		years     float64
	}{
		{"short term", 1000, 12, 1},
		{"mortgage", 350000, 6.25, 30},
		{"high rate", 20000, 95, 3},
		{"fractional years", 15000, 4.5, 2.5},
		{"zero rate", 9999.99, 0, 7},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sum, months := sumPrincipal(t, tc.principal, tc.rate, tc.years)
			assert.InDelta(t, tc.principal, sum, 0.01*months)

			_, schedule := ComputeSchedule(tc.principal, tc.rate, tc.years)
			assert.InDelta(t, 0, schedule[len(schedule)-1].RemainingBalance, 0.01*months)
		})
	}
}

func TestComputeSchedule_Monotonic(t *testing.T) {
	_, schedule := ComputeSchedule(250000, 7.2, 20)

	for i := 1; i < len(schedule); i++ {
		prev, cur := schedule[i-1], schedule[i]
		assert.LessOrEqual(t, cur.InterestPortion, prev.InterestPortion, "month %d", cur.Month)
		assert.GreaterOrEqual(t, cur.PrincipalPortion, prev.PrincipalPortion, "month %d", cur.Month)
		assert.LessOrEqual(t, cur.RemainingBalance, prev.RemainingBalance, "month %d", cur.Month)
	}
}

func TestComputeSchedule_TermRounding(t *testing.T) {
	_, schedule := ComputeSchedule(1000, 5, 1.5)
	assert.Len(t, schedule, 18)

	_, schedule = ComputeSchedule(1000, 5, 0.04)
	assert.Len(t, schedule, 0)
}

func TestComputeSchedule_DegenerateInputIsAbsorbed(t *testing.T) {
	totals, schedule := ComputeSchedule(math.Inf(1), 5, 1)

	require.Len(t, schedule, 12)
	assert.Equal(t, 0.0, totals.Installment)
	for _, row := range schedule {
		assert.False(t, math.IsNaN(row.PrincipalPortion))
		assert.False(t, math.IsNaN(row.InterestPortion))
		assert.False(t, math.IsNaN(row.RemainingBalance))
	}

	totals, schedule = ComputeSchedule(1000, 5, math.NaN())
	assert.Empty(t, schedule)
	assert.Equal(t, 0.0, totals.TotalPayment)
}

func TestInstallment(t *testing.T) {
	assert.Equal(t, 100.0, Installment(1200, 0, 12))
	assert.Equal(t, 0.0, Installment(1200, 0.01, 0))
	assert.InDelta(t, 88.85, Installment(1000, 0.01, 12), 0.005)
}
