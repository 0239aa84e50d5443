package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"emi-calculator/domain"
	"emi-calculator/service"
)

type TermRecommendationHandler struct {
	service *service.TermRecommendationService
	log     logrus.FieldLogger
}

func NewTermRecommendationHandler(service *service.TermRecommendationService, log logrus.FieldLogger) *TermRecommendationHandler {
	return &TermRecommendationHandler{service: service, log: log}
}

func (h *TermRecommendationHandler) CompareTerms(w http.ResponseWriter, r *http.Request) {
	contentType := r.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
		return
	}

	var input domain.TermComparisonInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.log.WithError(err).Debug("error decoding request body")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.service.CompareTerms(input)
	if err != nil {
		h.log.WithError(err).Debug("error comparing terms")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, h.log, http.StatusOK, result)
}
