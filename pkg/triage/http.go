package triage

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atul23g/multiDiseasePred/pkg/api/middleware"
	"github.com/atul23g/multiDiseasePred/pkg/common/logger"
	"github.com/atul23g/multiDiseasePred/pkg/common/models"
	"github.com/atul23g/multiDiseasePred/pkg/predict"
	"github.com/gorilla/mux"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/triage", h.handleTriage).Methods(http.MethodPost)
	router.HandleFunc("/session/submit", h.handleSubmit).Methods(http.MethodPost)
}

func (h *HTTPHandler) handleTriage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.TriageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.PredictionID == "" {
		http.Error(w, "prediction_id is required", http.StatusBadRequest)
		return
	}
	if !h.service.Enabled() {
		http.Error(w, "triage backend is not configured", http.StatusServiceUnavailable)
		return
	}

	resp, err := h.service.Triage(r.Context(), userID, req)
	if err != nil {
		h.writeError(w, err, "failed to generate triage")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *HTTPHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.SessionSubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.PredictionID == "" {
		http.Error(w, "prediction_id is required", http.StatusBadRequest)
		return
	}

	resp, err := h.service.Submit(r.Context(), userID, req)
	if err != nil {
		h.writeError(w, err, "failed to submit session")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, predict.ErrNotFound):
		http.Error(w, "prediction not found", http.StatusNotFound)
	default:
		logger.Log.WithError(err).Error(logMsg)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
