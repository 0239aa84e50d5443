package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"emi-calculator/domain"
	"emi-calculator/service"
)

const SessionHeader = "X-Session-ID"

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON encodes into a buffer first so a failed encode never leaves a
// half-written 200 behind.
func writeJSON(w http.ResponseWriter, log logrus.FieldLogger, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		log.WithError(err).Error("error encoding response")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.WithError(err).Warn("error writing response")
	}
}

// writeError maps service errors onto status codes.
func writeError(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	status := http.StatusInternalServerError
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrNoSchedule), errors.Is(err, service.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrConverterLoading):
		status = http.StatusConflict
	case errors.Is(err, service.ErrRatesUnavailable):
		status = http.StatusBadGateway
	}
	if status == http.StatusInternalServerError {
		log.WithError(err).Error("request failed")
	}
	writeJSON(w, log, status, errorResponse{Error: err.Error()})
}

func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

func rate(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(6)
}

type totalsView struct {
	Installment   decimal.Decimal `json:"installment"`
	TotalInterest decimal.Decimal `json:"total_interest"`
	TotalPayment  decimal.Decimal `json:"total_payment"`
}

func newTotalsView(t domain.Totals) totalsView {
	return totalsView{
		Installment:   money(t.Installment),
		TotalInterest: money(t.TotalInterest),
		TotalPayment:  money(t.TotalPayment),
	}
}

type rowView struct {
	Month       int             `json:"month"`
	Principal   decimal.Decimal `json:"principal"`
	Interest    decimal.Decimal `json:"interest"`
	Balance     decimal.Decimal `json:"balance"`
	Installment decimal.Decimal `json:"installment"`
}

type rateView struct {
	Code        string          `json:"code"`
	Rate        decimal.Decimal `json:"rate"`
	InverseRate decimal.Decimal `json:"inverse_rate"`
}

type pageView[T any] struct {
	Rows       []T                      `json:"rows"`
	State      domain.PresentationState `json:"state"`
	TotalPages int                      `json:"total_pages"`
	TotalRows  int                      `json:"total_rows"`
}

func newPageView[R, T any](page domain.Page[R], state domain.PresentationState, convert func(R) T) pageView[T] {
	rows := make([]T, 0, len(page.Rows))
	for _, r := range page.Rows {
		rows = append(rows, convert(r))
	}
	state.PageIndex = page.PageIndex
	state.PageSize = page.PageSize
	return pageView[T]{
		Rows:       rows,
		State:      state,
		TotalPages: page.TotalPages,
		TotalRows:  page.TotalRows,
	}
}

func scheduleRowView(r domain.AmortizationRow) rowView {
	return rowView{
		Month:       r.Month,
		Principal:   money(r.PrincipalPortion),
		Interest:    money(r.InterestPortion),
		Balance:     money(r.RemainingBalance),
		Installment: money(r.Installment),
	}
}

func rateRowView(r domain.RateRow) rateView {
	return rateView{Code: r.Code, Rate: rate(r.Rate), InverseRate: rate(r.InverseRate)}
}

// tableQuery reads search/sort/direction/page/page_size into an update for
// a session table.
type tableQuery struct {
	search    *string
	sort      string
	direction string
	page      int
	pageSize  int
}

func parseTableQuery(r *http.Request) (tableQuery, error) {
	q := r.URL.Query()
	var tq tableQuery
	if q.Has("search") {
		s := q.Get("search")
		tq.search = &s
	}
	tq.sort = q.Get("sort")
	tq.direction = q.Get("direction")
	if tq.direction != "" && tq.direction != string(domain.SortAscending) && tq.direction != string(domain.SortDescending) {
		return tq, &service.ValidationError{Field: "direction", Reason: "must be asc or desc"}
	}

	var err error
	if tq.page, err = optionalPositiveInt(q.Get("page"), "page"); err != nil {
		return tq, err
	}
	if tq.pageSize, err = optionalPositiveInt(q.Get("page_size"), "page_size"); err != nil {
		return tq, err
	}
	return tq, nil
}

func optionalPositiveInt(raw, field string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, &service.ValidationError{Field: field, Reason: "must be a positive integer"}
	}
	return n, nil
}

// applyTableQuery builds the table update for a request and records the
// resulting state in out. A changed search term always returns to page 1 and
// overrides any page in the same request. Sorting by the active key without
// a direction toggles it.
func applyTableQuery[T any](tq tableQuery, out *domain.PresentationState) func(*service.Table[T]) {
	return func(t *service.Table[T]) {
		defer func() { *out = t.State() }()

		if tq.pageSize > 0 {
			t.SetPageSize(tq.pageSize)
		}
		if tq.sort != "" {
			switch {
			case tq.direction != "":
				if tq.sort != t.State().SortKey {
					t.SetSort(tq.sort)
				}
				t.SetSortDirection(domain.ParseSortDirection(tq.direction))
			default:
				t.SetSort(tq.sort)
			}
		} else if tq.direction != "" {
			t.SetSortDirection(domain.ParseSortDirection(tq.direction))
		}

		if tq.search != nil && *tq.search != t.State().SearchTerm {
			t.SetSearch(*tq.search)
			return
		}
		if tq.page > 0 {
			t.SetPage(tq.page)
		}
	}
}
