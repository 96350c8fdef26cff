package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tom5610/sagemaker-101-workshop/train"
)

type fakeModel struct {
	label      int
	confidence float64
	err        error
}

func (f *fakeModel) Train(features [][]float64, labels []int) error { return nil }
func (f *fakeModel) Save(path string) error                         { return nil }
func (f *fakeModel) Load(path string) error                         { return nil }

func (f *fakeModel) Predict(features []float64) (int, float64, error) {
	return f.label, f.confidence, f.err
}

func setupPredictTest(t *testing.T) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	RegisterPredictHandlers(mux)
	if err := InitPredictCache(8); err != nil {
		t.Fatalf("init cache: %v", err)
	}
	SetPipeline(&Pipeline{
		Model: &fakeModel{label: 1, confidence: 0.9},
		Manifest: train.Manifest{
			ModelType: "random_forest",
			Classes:   []string{"no", "yes"},
		},
	})
	t.Cleanup(func() {
		SetPipeline(nil)
		InitPredictCache(0)
	})
	return mux
}

func TestHandlePredict(t *testing.T) {
	mux := setupPredictTest(t)

	req := httptest.NewRequest(http.MethodPost, "/invocations", strings.NewReader(`{"features":[0.1,0.2]}`))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp PredictResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Label != 1 || resp.Class != "yes" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Confidence != 0.9 || resp.ModelType != "random_forest" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Cached {
		t.Fatal("first request should not be cached")
	}
}

func TestHandlePredictCacheHit(t *testing.T) {
	mux := setupPredictTest(t)
	body := `{"features":[0.3,0.4]}`

	first := httptest.NewRecorder()
	mux.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(body)))
	if first.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	mux.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(body)))
	if second.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", second.Code)
	}

	var resp PredictResponse
	if err := json.Unmarshal(second.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !resp.Cached {
		t.Fatal("second identical request should come from the cache")
	}
	if resp.Label != 1 {
		t.Fatalf("cached response diverged: %+v", resp)
	}
}

func TestHandlePredictCacheDroppedOnModelSwap(t *testing.T) {
	mux := setupPredictTest(t)
	body := `{"features":[0.5,0.5]}`

	first := httptest.NewRecorder()
	mux.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/invocations", strings.NewReader(body)))
	if first.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", first.Code)
	}

	// A retrain swaps in a model that predicts a different label.
	SetPipeline(&Pipeline{
		Model: &fakeModel{label: 0, confidence: 0.8},
		Manifest: train.Manifest{
			ModelType: "random_forest",
			Classes:   []string{"no", "yes"},
		},
	})

	second := httptest.NewRecorder()
	mux.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/invocations", strings.NewReader(body)))
	if second.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", second.Code)
	}

	var resp PredictResponse
	if err := json.Unmarshal(second.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Cached {
		t.Fatal("response from before the model swap was served from the cache")
	}
	if resp.Label != 0 || resp.Class != "no" {
		t.Fatalf("expected the swapped-in model's prediction, got %+v", resp)
	}
}

func TestHandlePredictNoModel(t *testing.T) {
	mux := http.NewServeMux()
	RegisterPredictHandlers(mux)
	SetPipeline(nil)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/invocations", strings.NewReader(`{"features":[1]}`)))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestHandlePredictBadRequest(t *testing.T) {
	mux := setupPredictTest(t)

	tests := []struct {
		name string
		body string
	}{
		{"not json", "not json"},
		{"empty input", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/invocations", strings.NewReader(tt.body)))
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestHandlePredictTextWithoutTokenizer(t *testing.T) {
	mux := setupPredictTest(t)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/invocations", strings.NewReader(`{"text":"hello"}`)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for text input on a tabular model, got %d", w.Code)
	}
}
