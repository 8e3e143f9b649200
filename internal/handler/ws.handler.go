package handler

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/usecase"
	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/ws"
	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/pkg/response"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WSHandler struct {
	hub        *ws.Hub
	reconciler *usecase.AuthReconciler
	logger     *zap.Logger
}

func NewWSHandler(hub *ws.Hub, reconciler *usecase.AuthReconciler, logger *zap.Logger) *WSHandler {
	return &WSHandler{hub: hub, reconciler: reconciler, logger: logger}
}

// HandleWS upgrades the shell's connection and streams state and content
// pushes. The current state is sent immediately so a reconnecting client
// needs no extra round trip.
func (h *WSHandler) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "websocket upgrade failed")
		return
	}

	h.hub.Register(conn)
	defer h.hub.Unregister(conn)

	if err := conn.WriteJSON(ws.Message{
		Type: ws.MsgTypeAuthState,
		Data: stateView(h.reconciler.Snapshot()),
	}); err != nil {
		h.logger.Debug("initial state push failed", zap.Error(err))
		return
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.logger.Debug("client disconnected", zap.Error(err))
			return
		}
	}
}
