package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"emi-calculator/domain"
	"emi-calculator/service"
)

type LoanHandler struct {
	service  *service.LoanService
	sessions *service.SessionManager
	log      logrus.FieldLogger
}

func NewLoanHandler(service *service.LoanService, sessions *service.SessionManager, log logrus.FieldLogger) *LoanHandler {
	return &LoanHandler{service: service, sessions: sessions, log: log}
}

type calculateResponse struct {
	Totals   totalsView        `json:"totals"`
	Months   int               `json:"months"`
	Schedule pageView[rowView] `json:"schedule"`
}

// CalculateLoan computes a schedule, stores it in the session and returns
// the totals with the first schedule page.
func (h *LoanHandler) CalculateLoan(w http.ResponseWriter, r *http.Request) {
	var input domain.LoanInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.service.CalculateLoan(r.Context(), input)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	sess := sessionFor(h.sessions, w, r)
	sess.SetResult(result)

	var state domain.PresentationState
	page, err := sess.SchedulePage(applyTableQuery[domain.AmortizationRow](tableQuery{}, &state))
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, h.log, http.StatusOK, calculateResponse{
		Totals:   newTotalsView(result.Totals),
		Months:   len(result.Schedule),
		Schedule: newPageView(page, state, scheduleRowView),
	})
}

// GetSchedule pages through the session's last schedule.
func (h *LoanHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	tq, err := parseTableQuery(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	sess := sessionFor(h.sessions, w, r)

	var state domain.PresentationState
	page, err := sess.SchedulePage(applyTableQuery[domain.AmortizationRow](tq, &state))
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, h.log, http.StatusOK, newPageView(page, state, scheduleRowView))
}

type historyEntry struct {
	Input      domain.LoanInput `json:"input"`
	Totals     totalsView       `json:"totals"`
	Months     int              `json:"months"`
	RecordedAt time.Time        `json:"recorded_at"`
}

// History lists recent calculations across all sessions, newest first.
func (h *LoanHandler) History(w http.ResponseWriter, r *http.Request) {
	limit, err := optionalPositiveInt(r.URL.Query().Get("limit"), "limit")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if limit == 0 {
		limit = 10
	}

	records := h.service.History(limit)
	entries := make([]historyEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, historyEntry{
			Input:      rec.Input,
			Totals:     newTotalsView(rec.Totals),
			Months:     rec.Months,
			RecordedAt: rec.RecordedAt,
		})
	}
	writeJSON(w, h.log, http.StatusOK, entries)
}
