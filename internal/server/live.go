package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	liveInterval  = time.Second
	liveWriteWait = 10 * time.Second
	livePongWait  = 60 * time.Second
)

type liveMessage struct {
	Type      string      `json:"type"`
	Timestamp int64       `json:"timestamp"`
	Health    interface{} `json:"health"`
}

// handleLive streams the health snapshot over a websocket at a fixed one
// second cadence. Diagnostic only; it never touches the request counters.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(livePongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(livePongWait))
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(liveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			msg := liveMessage{
				Type:      "health",
				Timestamp: time.Now().UnixMilli(),
				Health:    s.stats.Snapshot(),
			}
			data, err := json.Marshal(msg)
			if err != nil {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}
}
