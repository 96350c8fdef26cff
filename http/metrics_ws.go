package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var metricsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// metricsInterval is how often a connected client receives a snapshot.
var metricsInterval = 5 * time.Second

// RegisterMetricsWS wires the metrics stream route.
func RegisterMetricsWS(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/ws/metrics", handleMetricsWS)
}

// handleMetricsWS pushes a metrics snapshot on an interval until the client
// disconnects.
func handleMetricsWS(w http.ResponseWriter, r *http.Request) {
	conn, err := metricsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		serverLogger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(metricsInterval)
	defer ticker.Stop()

	// First snapshot immediately, then on the ticker.
	if err := writeSnapshot(conn); err != nil {
		return
	}
	for {
		select {
		case <-closed:
			return
		case <-ticker.C:
			if err := writeSnapshot(conn); err != nil {
				return
			}
		}
	}
}

func writeSnapshot(conn *websocket.Conn) error {
	payload, err := json.Marshal(snapshotMetrics())
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, payload)
}
