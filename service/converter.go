package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"emi-calculator/domain"
)

// CurrencyConverter holds the rate table for one session's base currency.
//
// SetBaseCurrency starts a fetch in the background. Only the most recent
// request may update the converter: each fetch carries a generation number
// and a result whose generation is no longer current is dropped.
type CurrencyConverter struct {
	source  RateSource
	timeout time.Duration
	log     logrus.FieldLogger

	mu         sync.RWMutex
	base       string
	state      domain.ConverterState
	errMsg     string
	table      domain.RateTable
	generation uint64
	cancel     context.CancelFunc
}

// NewCurrencyConverter returns a converter with no base selected. A
// non-positive timeout selects DefaultFetchTimeout.
func NewCurrencyConverter(source RateSource, timeout time.Duration, log logrus.FieldLogger) *CurrencyConverter {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &CurrencyConverter{
		source:  source,
		timeout: timeout,
		log:     log,
		state:   domain.ConverterLoading,
	}
}

// SetBaseCurrency switches the base, discards the current table and starts a
// refresh. The returned channel is closed once this refresh has been applied
// or discarded.
func (c *CurrencyConverter) SetBaseCurrency(code string) <-chan struct{} {
	code = strings.ToUpper(strings.TrimSpace(code))

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.generation++
	gen := c.generation
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	c.cancel = cancel
	c.base = code
	c.state = domain.ConverterLoading
	c.errMsg = ""
	c.table = domain.RateTable{}
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()

		table, err := c.source.FetchRates(ctx, code)
		c.apply(gen, code, table, err)
	}()
	return done
}

func (c *CurrencyConverter) apply(gen uint64, code string, table domain.RateTable, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	log := c.log.WithFields(logrus.Fields{"base": code, "generation": gen})
	if gen != c.generation {
		log.Debug("discarding superseded rate fetch")
		return
	}
	c.cancel = nil

	if err != nil {
		fetchErr := &RateFetchError{Base: code, Err: err}
		c.state = domain.ConverterError
		c.errMsg = fetchErr.Error()
		log.WithError(err).Warn("rate fetch failed")
		return
	}

	table = table.Clone()
	table.Base = code
	if table.FetchedAt.IsZero() {
		table.FetchedAt = time.Now()
	}
	c.table = table
	c.state = domain.ConverterReady
	log.WithField("currencies", len(table.Rates)).Info("rate table refreshed")
}

// Convert multiplies amount by the rate for target. A target missing from
// the current table, including while loading, leaves amount unchanged.
func (c *CurrencyConverter) Convert(amount float64, target string) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rate, ok := c.table.Rate(strings.ToUpper(target))
	if !ok {
		return amount
	}
	return amount * rate
}

// ConvertReady is Convert for callers that must not see a refresh in
// progress. It returns the converted amount with the base it was converted
// from, both read from one table, or ErrConverterLoading.
func (c *CurrencyConverter) ConvertReady(amount float64, target string) (float64, string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.state == domain.ConverterLoading {
		return 0, c.base, ErrConverterLoading
	}
	rate, ok := c.table.Rate(strings.ToUpper(target))
	if !ok {
		return amount, c.base, nil
	}
	return amount * rate, c.base, nil
}

func (c *CurrencyConverter) Snapshot() domain.ConverterSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return domain.ConverterSnapshot{
		Base:  c.base,
		State: c.state,
		Error: c.errMsg,
		Table: c.table.Clone(),
	}
}

func (c *CurrencyConverter) Base() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.base
}

func (c *CurrencyConverter) State() domain.ConverterState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *CurrencyConverter) IsLoading() bool {
	return c.State() == domain.ConverterLoading
}

// Close cancels any in-flight fetch; its result will be discarded.
func (c *CurrencyConverter) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.generation++
}
