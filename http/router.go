package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"emi-calculator/service"
)

type Dependencies struct {
	Loans       *service.LoanService
	Terms       *service.TermRecommendationService
	Sessions    *service.SessionManager
	RateLimiter *RateLimiter
	Logger      logrus.FieldLogger
}

func NewRouter(deps Dependencies) *mux.Router {
	loanHandler := NewLoanHandler(deps.Loans, deps.Sessions, deps.Logger)
	termHandler := NewTermRecommendationHandler(deps.Terms, deps.Logger)
	currencyHandler := NewCurrencyHandler(deps.Sessions, deps.Logger)

	r := mux.NewRouter()
	r.Use(RecoverMiddleware(deps.Logger))
	r.Use(LoggingMiddleware(deps.Logger))

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, deps.Logger, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/").Subrouter()
	if deps.RateLimiter != nil {
		api.Use(func(next http.Handler) http.Handler {
			return RateLimitMiddleware(deps.RateLimiter, deps.Sessions, deps.Logger, next)
		})
	}

	api.HandleFunc("/loan/calculate", loanHandler.CalculateLoan).Methods(http.MethodPost)
	api.HandleFunc("/loan/schedule", loanHandler.GetSchedule).Methods(http.MethodGet)
	api.HandleFunc("/loan/history", loanHandler.History).Methods(http.MethodGet)
	api.HandleFunc("/loan/compare-terms", termHandler.CompareTerms).Methods(http.MethodPost)

	api.HandleFunc("/currency/base", currencyHandler.SetBase).Methods(http.MethodPost)
	api.HandleFunc("/currency/status", currencyHandler.Status).Methods(http.MethodGet)
	api.HandleFunc("/currency/convert", currencyHandler.Convert).Methods(http.MethodGet)
	api.HandleFunc("/currency/rates", currencyHandler.Rates).Methods(http.MethodGet)

	return r
}
