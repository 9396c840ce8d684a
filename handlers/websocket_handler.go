package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/Dosada05/clubhub/live"
	"github.com/Dosada05/clubhub/services"
	"github.com/Dosada05/clubhub/session"
)

type WebSocketHandler struct {
	hub               *live.Hub
	state             *session.State
	tournamentService services.TournamentService
	upgrader          websocket.Upgrader
	logger            *slog.Logger
}

// NewWebSocketHandler allows any origin when allowedOrigins is empty.
func NewWebSocketHandler(hub *live.Hub, state *session.State, ts services.TournamentService, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	h := &WebSocketHandler{
		hub:               hub,
		state:             state,
		tournamentService: ts,
		logger:            logger,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, o := range allowedOrigins {
				if o == "*" || o == origin {
					return true
				}
			}
			return false
		},
	}
	return h
}

// ServeWs подключает клиента к комнате турнира.
// Клиент подключается к /ws/tournaments/{tournamentID}?token=...
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	id, ok := currentIdentity(w, r)
	if !ok {
		return
	}
	tournamentID, err := urlParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if _, err := h.tournamentService.GetByID(r.Context(), tournamentID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту ошибкой
		h.logger.Warn("failed to upgrade websocket", "tournament_id", tournamentID, "error", err)
		return
	}
	h.hub.Attach(conn, tournamentID, id.UID, h.state)
}
