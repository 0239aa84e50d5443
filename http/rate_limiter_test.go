package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"

	"emi-calculator/service"
)

func TestRateLimiter_AllowAndRefill(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := newRateLimiter(2, time.Minute, func() time.Time { return now })

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"), "keys have separate buckets")

	now = now.Add(time.Minute)
	assert.True(t, rl.Allow("a"))
}

func TestRateLimiter_AllKeysMustHaveTokens(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := newRateLimiter(1, time.Minute, func() time.Time { return now })

	assert.True(t, rl.Allow("ip:1"))
	assert.False(t, rl.Allow("ip:1", "session:x"))
	assert.True(t, rl.Allow("ip:2", "session:x"), "refused request spent nothing")
	assert.False(t, rl.Allow())
}

func TestRateLimiter_Cleanup(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := newRateLimiter(2, time.Minute, func() time.Time { return now })
	rl.Allow("a")

	now = now.Add(2 * time.Hour)
	rl.Allow("b")

	assert.Equal(t, 1, rl.cleanup())
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	defer rl.Stop()
	logger, _ := test.NewNullLogger()

	handler := RateLimitMiddleware(rl, nil, logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRateLimitMiddleware_ChargesKnownSessions(t *testing.T) {
	logger, _ := test.NewNullLogger()
	sessions := service.NewSessionManager(func() *service.CurrencyConverter {
		return service.NewCurrencyConverter(staticRates(), time.Second, logger)
	}, "USD", time.Hour, logger)
	t.Cleanup(sessions.Stop)
	sess := sessions.Create()

	rl := newRateLimiter(2, time.Hour, time.Now)
	handler := RateLimitMiddleware(rl, sessions, logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func(addr, session string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		req.Header.Set(SessionHeader, session)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, send("10.0.0.1:1", sess.ID))
	assert.Equal(t, http.StatusNoContent, send("10.0.0.2:1", sess.ID))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.3:1", sess.ID), "session allowance is shared across addresses")

	assert.Equal(t, http.StatusNoContent, send("10.0.0.3:1", "made-up-id"))
	assert.Equal(t, http.StatusNoContent, send("10.0.0.3:1", "another-made-up-id"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.3:1", "third-made-up-id"), "unknown ids fall back to the address")
}
