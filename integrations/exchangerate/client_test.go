package exchangerate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	logger, _ := test.NewNullLogger()
	return NewClient(srv.URL, "key123", time.Second, logger)
}

func TestFetchRates_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v6/key123/latest/USD", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write([]byte(`{
			"result": "success",
			"base_code": "USD",
			"time_last_update_unix": 1700000000,
			"conversion_rates": {"USD": 1, "EUR": 0.9134, "INR": 83.25, "BAD": 0}
		}`))
	})

	table, err := client.FetchRates(context.Background(), "usd")

	require.NoError(t, err)
	assert.Equal(t, "USD", table.Base)
	assert.Equal(t, map[string]float64{"USD": 1, "EUR": 0.9134, "INR": 83.25}, table.Rates)
	assert.Equal(t, int64(1700000000), table.FetchedAt.Unix())
}

func TestFetchRates_ProviderFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result": "error", "error-type": "unsupported-code"}`))
	})

	_, err := client.FetchRates(context.Background(), "XXX")

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "unsupported-code", perr.Type)
}

func TestFetchRates_BadStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"result": "error", "error-type": "invalid-key"}`))
	})

	_, err := client.FetchRates(context.Background(), "USD")

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, err.Error(), "403")
}

func TestFetchRates_BadStatusWithoutBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.FetchRates(context.Background(), "USD")

	assert.EqualError(t, err, "unexpected status code: 502")
}

func TestFetchRates_Malformed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>`))
	})

	_, err := client.FetchRates(context.Background(), "USD")

	assert.ErrorContains(t, err, "failed to decode response")
}

func TestFetchRates_EmptyRates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result": "success", "conversion_rates": {}}`))
	})

	_, err := client.FetchRates(context.Background(), "USD")

	assert.Error(t, err)
}

func TestFetchRates_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.FetchRates(ctx, "USD")

	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestFetchRates_MissingKey(t *testing.T) {
	logger, _ := test.NewNullLogger()
	client := NewClient("", "", time.Second, logger)

	_, err := client.FetchRates(context.Background(), "USD")

	assert.ErrorIs(t, err, ErrMissingAPIKey)
}
