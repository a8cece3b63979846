package predict

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atul23g/multiDiseasePred/pkg/api/middleware"
	"github.com/atul23g/multiDiseasePred/pkg/common/logger"
	"github.com/atul23g/multiDiseasePred/pkg/common/models"
	"github.com/atul23g/multiDiseasePred/pkg/report"
	"github.com/atul23g/multiDiseasePred/pkg/schema"
	"github.com/gorilla/mux"
)

type HTTPHandler struct {
	registry *schema.Registry
	service  *Service
}

func NewHTTPHandler(registry *schema.Registry, service *Service) *HTTPHandler {
	return &HTTPHandler{registry: registry, service: service}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/features/schema", h.handleSchema).Methods(http.MethodGet)
	router.HandleFunc("/features/complete", h.handleComplete).Methods(http.MethodPost)
	router.HandleFunc("/predict/with_features", h.handlePredict).Methods(http.MethodPost)
	router.HandleFunc("/history/predictions", h.handleHistory).Methods(http.MethodGet)
}

func (h *HTTPHandler) handleSchema(w http.ResponseWriter, r *http.Request) {
	task, err := schema.ParseTask(r.URL.Query().Get("task"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	fields, err := h.registry.SchemaFor(task)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	out := make([]models.SchemaField, 0, len(fields))
	for _, f := range fields {
		out = append(out, models.SchemaField{
			Name:        f.Name,
			Label:       f.Label,
			Type:        f.Type,
			Unit:        f.Unit,
			NormalRange: f.Normal,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models.FeatureSchemaResponse{Task: string(task), FeatureSchema: out})
}

func (h *HTTPHandler) handleComplete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.FeatureCompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.Complete(r.Context(), userID, req)
	if err != nil {
		h.writeError(w, err, "failed to complete features")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *HTTPHandler) handlePredict(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.PredictWithFeaturesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.Predict(r.Context(), userID, req)
	if err != nil {
		h.writeError(w, err, "failed to predict")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *HTTPHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	rows, err := h.service.History(r.Context(), userID)
	if err != nil {
		logger.Log.WithError(err).Error("failed to fetch prediction history")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rows)
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error, logMsg string) {
	var taskErr schema.UnknownTaskError
	switch {
	case errors.As(err, &taskErr):
		http.Error(w, taskErr.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, ErrGeneralUnsupported):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, report.ErrNotFound):
		http.Error(w, "report not found", http.StatusNotFound)
	default:
		logger.Log.WithError(err).Error(logMsg)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
