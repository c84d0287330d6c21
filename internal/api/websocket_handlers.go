package api

import (
	"log/slog"
	"net/http"

	"cloud-drive/internal/apperror"
	"cloud-drive/internal/websocket"
)

// ServeWsHandler upgrades an authenticated connection and subscribes it to the
// caller's drive events. Browsers cannot set headers on a websocket handshake,
// so the access token travels in the query string.
func (s *Server) ServeWsHandler(w http.ResponseWriter, r *http.Request) {
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		HandleError(w, r, apperror.Unauthenticated("Token required"))
		return
	}

	session, err := s.sessionFromToken(tokenString)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	conn, err := websocket.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	client := websocket.NewClient(s.wsHub, conn, session.UserID)
	if !s.wsHub.Add(client) {
		conn.Close()
		return
	}

	go client.ReadPump()
	go client.WritePump()
}
