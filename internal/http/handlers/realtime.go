package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/situacio-backend/internal/http/response"
	"github.com/yungbote/situacio-backend/internal/platform/ctxutil"
	"github.com/yungbote/situacio-backend/internal/platform/logger"
	"github.com/yungbote/situacio-backend/internal/realtime"
)

type RealtimeHandler struct {
	log *logger.Logger
	hub *realtime.Hub
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{log: log.With("handler", "RealtimeHandler"), hub: hub}
}

// GET /api/session/events streams the session's export status changes.
func (h *RealtimeHandler) Events(c *gin.Context) {
	sid := ctxutil.SessionID(c.Request.Context())
	if sid == "" {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	client := h.hub.NewClient()
	h.hub.AddChannel(client, realtime.SessionChannel(sid))
	h.log.Debug("SSE stream open", "session_id", sid, "client_id", client.ID)

	h.hub.ServeHTTP(c.Writer, c.Request, client)

	h.hub.CloseClient(client)
	h.log.Debug("SSE stream closed", "session_id", sid, "client_id", client.ID)
}
