package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/jmylchreest/plugsunset/internal/events"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler upgrades the request and streams bus events to the client. When
// snapshot is non-nil its result is sent first as a status.snapshot event.
func Handler(hub *Hub, logger *slog.Logger, snapshot func() any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("ws: upgrade failed", "error", err, "remote_addr", r.RemoteAddr)
			return
		}

		client := hub.NewClient(conn)
		if snapshot != nil {
			if data, err := json.Marshal(events.NewEvent(events.StatusSnapshot, snapshot())); err == nil {
				client.send <- data
			}
		}
		if !hub.Register(client) {
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
			conn.Close()
			return
		}

		go client.WritePump()
		go client.ReadPump()
	}
}
