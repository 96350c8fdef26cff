package http

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/tom5610/sagemaker-101-workshop/db"
)

// PredictRequest carries either an encoded feature vector or raw text.
type PredictRequest struct {
	Features []float64 `json:"features,omitempty"`
	Text     string    `json:"text,omitempty"`
}

// PredictResponse is the inference result.
type PredictResponse struct {
	Label      int     `json:"label"`
	Class      string  `json:"class,omitempty"`
	Confidence float64 `json:"confidence"`
	ModelType  string  `json:"model_type"`
	Cached     bool    `json:"cached,omitempty"`
}

var predictCache *lru.Cache[string, PredictResponse]

// InitPredictCache sizes the response cache. Zero disables caching.
func InitPredictCache(size int) error {
	if size <= 0 {
		predictCache = nil
		return nil
	}
	cache, err := lru.New[string, PredictResponse](size)
	if err != nil {
		return err
	}
	predictCache = cache
	return nil
}

// RegisterPredictHandlers wires the prediction routes. /invocations follows
// the hosted endpoint's serving convention, /api/predict is the same handler
// for local use.
func RegisterPredictHandlers(mux *http.ServeMux) {
	mux.HandleFunc("POST /invocations", handlePredict)
	mux.HandleFunc("POST /api/predict", handlePredict)
}

func handlePredict(w http.ResponseWriter, r *http.Request) {
	pipeline := CurrentPipeline()
	if pipeline == nil {
		serverMetrics.errors.Add(1)
		http.Error(w, `{"error":"no model loaded"}`, http.StatusServiceUnavailable)
		return
	}

	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		serverMetrics.errors.Add(1)
		http.Error(w, fmt.Sprintf(`{"error":%q}`, "invalid request body: "+err.Error()), http.StatusBadRequest)
		return
	}
	if len(req.Features) == 0 && req.Text == "" {
		serverMetrics.errors.Add(1)
		http.Error(w, `{"error":"features or text required"}`, http.StatusBadRequest)
		return
	}

	key := cacheKey(req)
	if predictCache != nil {
		if cached, ok := predictCache.Get(key); ok {
			serverMetrics.cacheHits.Add(1)
			cached.Cached = true
			writeJSON(w, http.StatusOK, cached)
			return
		}
	}

	var (
		label      int
		confidence float64
		err        error
	)
	if req.Text != "" {
		label, confidence, err = pipeline.PredictText(req.Text)
	} else {
		label, confidence, err = pipeline.PredictFeatures(req.Features)
	}
	if err != nil {
		serverMetrics.errors.Add(1)
		http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), http.StatusBadRequest)
		return
	}

	resp := PredictResponse{
		Label:      label,
		Class:      pipeline.ClassName(label),
		Confidence: confidence,
		ModelType:  pipeline.Manifest.ModelType,
	}
	serverMetrics.predictions.Add(1)
	if predictCache != nil {
		predictCache.Add(key, resp)
	}

	if err := db.SavePrediction(db.Prediction{
		ModelName:  pipeline.Manifest.ModelType,
		InputHash:  key,
		Label:      resp.Label,
		Class:      resp.Class,
		Confidence: resp.Confidence,
		Source:     r.URL.Path,
	}); err != nil {
		serverLogger.Warn("record prediction", zap.Error(err))
	}

	writeJSON(w, http.StatusOK, resp)
}

// cacheKey hashes the canonical JSON form of the request.
func cacheKey(req PredictRequest) string {
	payload, err := json.Marshal(req)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
