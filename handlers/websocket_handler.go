package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/ssched/scrimmage-api/events"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: ограничить Origin списком доверенных доменов фронтенда.
		return true
	},
}

type WebSocketHandler struct {
	hub *events.Hub
}

func NewWebSocketHandler(hub *events.Hub) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
	}
}

// ServeScrimmage подписывает клиента на события одного скримa:
// подключение к /ws/scrimmages/{id}.
func (h *WebSocketHandler) ServeScrimmage(w http.ResponseWriter, r *http.Request) {
	scrimmageID, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту HTTP-ошибкой.
		slog.Error("failed to upgrade websocket connection",
			slog.Int("scrimmage_id", scrimmageID),
			slog.Any("error", err),
		)
		return
	}

	client := events.NewClient(h.hub, conn, scrimmageID)
	h.hub.Register(client)
}
