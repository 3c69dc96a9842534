package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Лента только для чтения и открыта всем, как и GET /api/*.
		return true
	},
}

// FeedHub принимает websocket-соединения подписчиков ленты. Реализуется broadcast.Hub.
type FeedHub interface {
	Serve(conn *websocket.Conn)
}

type WebSocketHandler struct {
	hub FeedHub
}

func NewWebSocketHandler(hub FeedHub) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
	}
}

// ServeWs godoc
// @Summary Лента событий
// @Tags feed
// @Description Websocket: сообщения {"type": "...", "payload": ...} о новых партиях, игроках и обновлениях каталога.
// @Router /ws/feed [get]
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader.Upgrade сам отправляет HTTP ошибку клиенту, так что здесь просто логируем.
		slog.WarnContext(r.Context(), "failed to upgrade feed connection", slog.Any("error", err))
		return
	}

	h.hub.Serve(conn)
}
