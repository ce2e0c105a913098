package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"chatterbox/internal/app/chat"
	"chatterbox/internal/pkg/logx"
)

// HandleWebSocket upgrades the connection and runs the client pumps until it closes.
// Presence is established afterwards by add-user events, not by the request.
func HandleWebSocket(deps *AppDeps, upgrader websocket.Upgrader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.FromRequest(r).Warn().Err(err).Msg("Failed to upgrade connection to WebSocket")
			return
		}

		client := chat.NewClient(conn, deps.Registry, deps.Relay)
		if err := deps.Registry.Attach(client); err != nil {
			logx.FromRequest(r).Info().Err(err).Msg("WebSocket connection refused during shutdown")
			refuse(r, conn)
			return
		}

		logx.FromRequest(r).Info().Str("conn_id", client.ID).Msg("WebSocket connection established")

		go client.WritePump()
		client.ReadPump()
	}
}

// refuse sends a going-away close frame and drops the connection.
func refuse(r *http.Request, conn *websocket.Conn) {
	logger := logx.FromRequest(r)

	closeMessage := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	if err := conn.WriteControl(websocket.CloseMessage, closeMessage, time.Now().Add(time.Second)); err != nil {
		logger.Debug().Err(err).Msg("Failed to send close frame to refused connection")
	}

	if err := conn.Close(); err != nil {
		logger.Debug().Err(err).Msg("Refused connection close error")
	}
}
