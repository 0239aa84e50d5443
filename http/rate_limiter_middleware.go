package http

import (
	"net"
	"net/http"

	"github.com/sirupsen/logrus"

	"emi-calculator/service"
)

// rateLimitKeys charges every request to the client address and, for a
// session that already exists, to that session too. Unknown session ids are
// only charged to the address so rotating ids cannot buy extra requests.
func rateLimitKeys(r *http.Request, sessions *service.SessionManager) []string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	keys := []string{"ip:" + ip}

	if id := r.Header.Get(SessionHeader); id != "" && sessions != nil && sessions.Has(id) {
		keys = append(keys, "session:"+id)
	}
	return keys
}

func RateLimitMiddleware(
	limiter *RateLimiter,
	sessions *service.SessionManager,
	log logrus.FieldLogger,
	next http.Handler,
) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys := rateLimitKeys(r, sessions)
		if !limiter.Allow(keys...) {
			log.WithField("keys", keys).Warn("rate limit exceeded")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
