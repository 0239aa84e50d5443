package http

import (
	"net/http"

	"emi-calculator/service"
)

// sessionFor resolves the caller's session from SessionHeader, creating one
// when the header is missing or stale, and echoes the id back.
func sessionFor(sessions *service.SessionManager, w http.ResponseWriter, r *http.Request) *service.Session {
	sess, _ := sessions.GetOrCreate(r.Header.Get(SessionHeader))
	w.Header().Set(SessionHeader, sess.ID)
	return sess
}
