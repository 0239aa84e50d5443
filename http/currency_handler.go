package http

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"emi-calculator/domain"
	"emi-calculator/service"
)

type CurrencyHandler struct {
	sessions *service.SessionManager
	log      logrus.FieldLogger
}

func NewCurrencyHandler(sessions *service.SessionManager, log logrus.FieldLogger) *CurrencyHandler {
	return &CurrencyHandler{sessions: sessions, log: log}
}

type statusResponse struct {
	Base       string                `json:"base"`
	State      domain.ConverterState `json:"state"`
	Error      string                `json:"error,omitempty"`
	Currencies int                   `json:"currencies"`
	FetchedAt  *time.Time            `json:"fetched_at,omitempty"`
}

func newStatusResponse(snap domain.ConverterSnapshot) statusResponse {
	resp := statusResponse{
		Base:       snap.Base,
		State:      snap.State,
		Error:      snap.Error,
		Currencies: len(snap.Table.Rates),
	}
	if !snap.Table.FetchedAt.IsZero() {
		at := snap.Table.FetchedAt
		resp.FetchedAt = &at
	}
	return resp
}

type setBaseRequest struct {
	Base string `json:"base"`
}

// SetBase switches the session's base currency. The refresh runs in the
// background; clients poll Status until the state leaves "loading".
func (h *CurrencyHandler) SetBase(w http.ResponseWriter, r *http.Request) {
	var req setBaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	code := strings.TrimSpace(req.Base)
	if len(code) != 3 {
		writeError(w, h.log, &service.ValidationError{Field: "base", Reason: "must be a three-letter currency code"})
		return
	}

	sess := sessionFor(h.sessions, w, r)
	sess.Converter.SetBaseCurrency(code)

	writeJSON(w, h.log, http.StatusAccepted, newStatusResponse(sess.Converter.Snapshot()))
}

func (h *CurrencyHandler) Status(w http.ResponseWriter, r *http.Request) {
	sess := sessionFor(h.sessions, w, r)
	writeJSON(w, h.log, http.StatusOK, newStatusResponse(sess.Converter.Snapshot()))
}

type convertResponse struct {
	From      string          `json:"from"`
	To        string          `json:"to"`
	Amount    decimal.Decimal `json:"amount"`
	Converted decimal.Decimal `json:"converted"`
}

// Convert converts amount, or the session's installment when amount is
// omitted, into the target currency.
func (h *CurrencyHandler) Convert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	to := strings.ToUpper(strings.TrimSpace(q.Get("to")))
	if to == "" {
		writeError(w, h.log, &service.ValidationError{Field: "to", Reason: "is required"})
		return
	}

	sess := sessionFor(h.sessions, w, r)

	var amount float64
	if raw := q.Get("amount"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			writeError(w, h.log, &service.ValidationError{Field: "amount", Reason: "must be a non-negative number"})
			return
		}
		amount = v
	} else {
		result, ok := sess.Result()
		if !ok {
			writeError(w, h.log, service.ErrNoSchedule)
			return
		}
		amount = result.Totals.Installment
	}

	converted, base, err := sess.Converter.ConvertReady(amount, to)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, h.log, http.StatusOK, convertResponse{
		From:      base,
		To:        to,
		Amount:    money(amount),
		Converted: money(converted),
	})
}

type ratesResponse struct {
	Base string `json:"base"`
	pageView[rateView]
}

// Rates pages through the session's rate table.
func (h *CurrencyHandler) Rates(w http.ResponseWriter, r *http.Request) {
	tq, err := parseTableQuery(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	sess := sessionFor(h.sessions, w, r)

	var state domain.PresentationState
	page, err := sess.RatePage(applyTableQuery[domain.RateRow](tq, &state))
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, h.log, http.StatusOK, ratesResponse{
		Base:     sess.Converter.Base(),
		pageView: newPageView(page, state, rateRowView),
	})
}
