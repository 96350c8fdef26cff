package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tom5610/sagemaker-101-workshop/train"
)

func TestHandlePing(t *testing.T) {
	mux := http.NewServeMux()
	RegisterHandlers(mux)

	SetPipeline(nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without a model, got %d", w.Code)
	}

	SetPipeline(&Pipeline{Model: &fakeModel{}, Manifest: train.Manifest{ModelType: "linear"}})
	defer SetPipeline(nil)

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with a model, got %d", w.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	mux := http.NewServeMux()
	RegisterHandlers(mux)
	SetPipeline(nil)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if payload["status"] != "ok" {
		t.Fatalf("unexpected status: %v", payload["status"])
	}
	if payload["model_loaded"] != false {
		t.Fatalf("expected model_loaded false, got %v", payload["model_loaded"])
	}
}

func TestHandleModel(t *testing.T) {
	mux := http.NewServeMux()
	RegisterHandlers(mux)

	SetPipeline(nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/models", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without a model, got %d", w.Code)
	}

	SetPipeline(&Pipeline{
		Model:    &fakeModel{},
		Manifest: train.Manifest{ModelType: "random_forest", Target: "label", Classes: []string{"a", "b"}},
	})
	defer SetPipeline(nil)

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/models", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var manifest train.Manifest
	if err := json.Unmarshal(w.Body.Bytes(), &manifest); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if manifest.ModelType != "random_forest" || len(manifest.Classes) != 2 {
		t.Fatalf("unexpected manifest: %+v", manifest)
	}
}

func TestQueryLimit(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"missing", "", 20},
		{"valid", "limit=5", 5},
		{"not a number", "limit=abc", 20},
		{"negative", "limit=-1", 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/runs?"+tt.query, nil)
			if got := queryLimit(r, 20); got != tt.want {
				t.Fatalf("queryLimit() = %d, want %d", got, tt.want)
			}
		})
	}
}
