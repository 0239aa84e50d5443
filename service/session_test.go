package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emi-calculator/domain"
)

func newTestSessionManager(source RateSource) *SessionManager {
	logger, _ := test.NewNullLogger()
	return NewSessionManager(func() *CurrencyConverter {
		return NewCurrencyConverter(source, time.Second, logger)
	}, "USD", time.Minute, logger)
}

func staticSource(table domain.RateTable) RateSource {
	return RateSourceFunc(func(context.Context, string) (domain.RateTable, error) {
		return table.Clone(), nil
	})
}

func waitState(t *testing.T, conv *CurrencyConverter, want domain.ConverterState) {
	t.Helper()
	require.Eventually(t, func() bool { return conv.State() == want }, 2*time.Second, 5*time.Millisecond)
}

func TestSessionManager_CreateAndGet(t *testing.T) {
	m := newTestSessionManager(staticSource(usdTable()))

	sess := m.Create()
	require.NotEmpty(t, sess.ID)
	assert.Equal(t, "USD", sess.Converter.Base())

	got, err := m.Get(sess.ID)
	require.NoError(t, err)
	assert.Same(t, sess, got)

	_, err = m.Get("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionManager_GetOrCreate(t *testing.T) {
	m := newTestSessionManager(staticSource(usdTable()))

	first, created := m.GetOrCreate("")
	assert.True(t, created)

	again, created := m.GetOrCreate(first.ID)
	assert.False(t, created)
	assert.Same(t, first, again)

	_, created = m.GetOrCreate("unknown-id")
	assert.True(t, created)
	assert.Equal(t, 2, m.Len())
}

func TestSessionManager_SessionsAreIsolated(t *testing.T) {
	m := newTestSessionManager(staticSource(usdTable()))
	a, b := m.Create(), m.Create()
	waitState(t, a.Converter, domain.ConverterReady)
	waitState(t, b.Converter, domain.ConverterReady)

	_, schedule := ComputeSchedule(1000, 5, 1)
	a.SetResult(domain.LoanResult{Schedule: schedule})

	_, err := b.SchedulePage(nil)
	assert.ErrorIs(t, err, ErrNoSchedule)

	b.SetResult(domain.LoanResult{Schedule: schedule})
	_, err = a.SchedulePage(func(tb *Table[domain.AmortizationRow]) { tb.SetPage(2) })
	require.NoError(t, err)
	page, err := b.SchedulePage(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, page.PageIndex)

	assert.NotSame(t, a.Converter, b.Converter)
}

func TestSessionManager_Sweep(t *testing.T) {
	m := newTestSessionManager(staticSource(usdTable()))
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	stale := m.Create()
	now = now.Add(50 * time.Second)
	fresh := m.Create()

	now = now.Add(30 * time.Second)
	assert.Equal(t, 1, m.Sweep())

	_, err := m.Get(stale.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.Get(fresh.ID)
	assert.NoError(t, err)
}

func TestSessionManager_StartRejectsBadSpec(t *testing.T) {
	m := newTestSessionManager(staticSource(usdTable()))
	assert.Error(t, m.Start("not a cron spec"))
}

func TestSessionManager_StartStop(t *testing.T) {
	m := newTestSessionManager(staticSource(usdTable()))
	require.NoError(t, m.Start("@every 1h"))
	m.Create()

	m.Stop()
	assert.Equal(t, 0, m.Len())
}

func TestSession_RatePageStates(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	source := RateSourceFunc(func(ctx context.Context, base string) (domain.RateTable, error) {
		if calls.Add(1) == 1 {
			<-release
			return usdTable(), nil
		}
		return domain.RateTable{}, errors.New("provider said no")
	})
	m := newTestSessionManager(source)
	sess := m.Create()

	_, err := sess.RatePage(nil)
	assert.ErrorIs(t, err, ErrConverterLoading)

	close(release)
	waitState(t, sess.Converter, domain.ConverterReady)

	page, err := sess.RatePage(func(tb *Table[domain.RateRow]) { tb.SetSearch("in") })
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "INR", page.Rows[0].Code)
	assert.InDelta(t, 1/83.2, page.Rows[0].InverseRate, 1e-12)

	<-sess.Converter.SetBaseCurrency("EUR")
	_, err = sess.RatePage(nil)
	assert.ErrorIs(t, err, ErrRatesUnavailable)
	assert.Contains(t, err.Error(), "provider said no")
}
