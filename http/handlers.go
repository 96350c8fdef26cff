package http

import (
	"net/http"
	"strconv"

	"github.com/tom5610/sagemaker-101-workshop/db"
)

// RegisterHandlers wires the health and metadata routes. /ping follows the
// hosted endpoint's health-check convention: healthy only once a model is
// loaded.
func RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /ping", handlePing)
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("GET /api/models", handleModel)
	mux.HandleFunc("GET /api/runs", handleRuns)
	mux.HandleFunc("GET /api/datasets", handleDatasets)
	mux.HandleFunc("GET /api/predictions", handlePredictions)
}

func handlePing(w http.ResponseWriter, r *http.Request) {
	if CurrentPipeline() == nil {
		http.Error(w, `{"error":"no model loaded"}`, http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "ok",
		"model_loaded": CurrentPipeline() != nil,
	})
}

func handleModel(w http.ResponseWriter, r *http.Request) {
	pipeline := CurrentPipeline()
	if pipeline == nil {
		http.Error(w, `{"error":"no model loaded"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, pipeline.Manifest)
}

func handleRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := db.ListTrainingRuns(queryLimit(r, 20))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}

func handleDatasets(w http.ResponseWriter, r *http.Request) {
	datasets, err := db.ListDatasets()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"datasets": datasets})
}

func handlePredictions(w http.ResponseWriter, r *http.Request) {
	predictions, err := db.RecentPredictions(queryLimit(r, 50))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"predictions": predictions})
}

func queryLimit(r *http.Request, fallback int) int {
	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		return fallback
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}
