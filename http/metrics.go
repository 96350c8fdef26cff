package http

import (
	"net/http"
	"sync/atomic"
	"time"
)

// serverMetricsCounters counts what the endpoint has served since startup.
type serverMetricsCounters struct {
	requests    atomic.Int64
	predictions atomic.Int64
	cacheHits   atomic.Int64
	errors      atomic.Int64
	startTime   time.Time
}

var serverMetrics = &serverMetricsCounters{startTime: time.Now()}

// MetricsSnapshot is the wire form of the counters.
type MetricsSnapshot struct {
	Requests       int64     `json:"requests"`
	Predictions    int64     `json:"predictions"`
	CacheHits      int64     `json:"cache_hits"`
	Errors         int64     `json:"errors"`
	ModelType      string    `json:"model_type,omitempty"`
	ModelTrainedAt time.Time `json:"model_trained_at,omitempty"`
	UptimeSeconds  float64   `json:"uptime_seconds"`
	Timestamp      time.Time `json:"timestamp"`
}

func snapshotMetrics() MetricsSnapshot {
	snap := MetricsSnapshot{
		Requests:      serverMetrics.requests.Load(),
		Predictions:   serverMetrics.predictions.Load(),
		CacheHits:     serverMetrics.cacheHits.Load(),
		Errors:        serverMetrics.errors.Load(),
		UptimeSeconds: time.Since(serverMetrics.startTime).Seconds(),
		Timestamp:     time.Now(),
	}
	if p := CurrentPipeline(); p != nil {
		snap.ModelType = p.Manifest.ModelType
		snap.ModelTrainedAt = p.Manifest.TrainedAt
	}
	return snap
}

// MetricsMiddleware counts every request.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serverMetrics.requests.Add(1)
		next.ServeHTTP(w, r)
	})
}
