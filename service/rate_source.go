package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"emi-calculator/domain"
	"emi-calculator/repository"
)

// RateSource supplies the full rate table for one base currency.
type RateSource interface {
	FetchRates(ctx context.Context, base string) (domain.RateTable, error)
}

// RateSourceFunc adapts a function to RateSource.
type RateSourceFunc func(ctx context.Context, base string) (domain.RateTable, error)

func (f RateSourceFunc) FetchRates(ctx context.Context, base string) (domain.RateTable, error) {
	return f(ctx, base)
}

// CachedRateSource serves rate tables from a CacheRepository for ttl before
// asking the wrapped source again. Cache failures fall through to the source.
type CachedRateSource struct {
	next  RateSource
	cache repository.CacheRepository
	ttl   time.Duration
	log   logrus.FieldLogger
}

func NewCachedRateSource(next RateSource, cache repository.CacheRepository, ttl time.Duration, log logrus.FieldLogger) *CachedRateSource {
	return &CachedRateSource{next: next, cache: cache, ttl: ttl, log: log}
}

func (c *CachedRateSource) FetchRates(ctx context.Context, base string) (domain.RateTable, error) {
	key := "rates:" + strings.ToUpper(base)

	if raw, ok := c.cache.Get(ctx, key); ok {
		var table domain.RateTable
		if err := json.Unmarshal([]byte(raw), &table); err == nil && len(table.Rates) > 0 {
			return table, nil
		}
		c.log.WithField("base", base).Warn("discarding unreadable cached rate table")
	}

	table, err := c.next.FetchRates(ctx, base)
	if err != nil {
		return domain.RateTable{}, err
	}

	if data, err := json.Marshal(table); err == nil {
		if err := c.cache.Set(ctx, key, string(data), c.ttl); err != nil {
			c.log.WithError(err).WithField("base", base).Warn("failed to cache rate table")
		}
	}
	return table, nil
}
