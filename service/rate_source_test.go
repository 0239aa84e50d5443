package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"emi-calculator/domain"
	"emi-calculator/repository"
)

func TestCachedRateSource_ServesFromCache(t *testing.T) {
	source := new(mockRateSource)
	source.On("FetchRates", mock.Anything, "USD").Return(usdTable(), nil).Once()
	logger, _ := test.NewNullLogger()
	cached := NewCachedRateSource(source, repository.NewMemoryCache(), time.Hour, logger)

	first, err := cached.FetchRates(context.Background(), "USD")
	require.NoError(t, err)
	second, err := cached.FetchRates(context.Background(), "usd")
	require.NoError(t, err)

	assert.Equal(t, first.Rates, second.Rates)
	source.AssertNumberOfCalls(t, "FetchRates", 1)
}

func TestCachedRateSource_ErrorsAreNotCached(t *testing.T) {
	source := new(mockRateSource)
	source.On("FetchRates", mock.Anything, "EUR").Return(domain.RateTable{}, errors.New("boom")).Once()
	source.On("FetchRates", mock.Anything, "EUR").Return(usdTable(), nil).Once()
	logger, _ := test.NewNullLogger()
	cached := NewCachedRateSource(source, repository.NewMemoryCache(), time.Hour, logger)

	_, err := cached.FetchRates(context.Background(), "EUR")
	assert.Error(t, err)

	table, err := cached.FetchRates(context.Background(), "EUR")
	require.NoError(t, err)
	assert.NotEmpty(t, table.Rates)
}
