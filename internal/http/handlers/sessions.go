package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/situacio-backend/internal/http/response"
	"github.com/yungbote/situacio-backend/internal/modules/situacio/model"
	"github.com/yungbote/situacio-backend/internal/modules/situacio/session"
	"github.com/yungbote/situacio-backend/internal/platform/apierr"
	"github.com/yungbote/situacio-backend/internal/platform/ctxutil"
	"github.com/yungbote/situacio-backend/internal/platform/logger"
	"github.com/yungbote/situacio-backend/internal/realtime"
)

type SessionHandler struct {
	log      *logger.Logger
	sessions *session.Manager
	tokens   TokenIssuer
	notifier Notifier
}

func NewSessionHandler(log *logger.Logger, sessions *session.Manager, tokens TokenIssuer, notifier Notifier) *SessionHandler {
	return &SessionHandler{
		log:      log.With("handler", "SessionHandler"),
		sessions: sessions,
		tokens:   tokens,
		notifier: notifier,
	}
}

type sessionView struct {
	SessionID string                          `json:"session_id"`
	Unit      *model.CurriculumUnit           `json:"unit"`
	LoadedAt  *time.Time                      `json:"loaded_at,omitempty"`
	Warnings  []string                        `json:"warnings,omitempty"`
	Exports   map[string]session.TargetStatus `json:"exports"`
}

func newSessionView(id string, st session.State) sessionView {
	v := sessionView{SessionID: id, Unit: st.Unit, Exports: map[string]session.TargetStatus{}}
	if st.Unit != nil {
		loaded := st.LoadedAt
		v.LoadedAt = &loaded
		v.Warnings = st.Unit.Warnings()
	}
	for _, t := range session.Targets {
		v.Exports[t.String()] = st.Exports[t]
	}
	return v
}

// POST /api/sessions
func (h *SessionHandler) Create(c *gin.Context) {
	id, err := h.sessions.Create(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, toAPIError(err))
		return
	}
	token, exp, err := h.tokens.Issue(id)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "issue_token_failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session_id": id, "token": token, "expires_at": exp})
}

// GET /api/session
func (h *SessionHandler) Get(c *gin.Context) {
	sid := ctxutil.SessionID(c.Request.Context())
	st, err := h.sessions.Get(c.Request.Context(), sid)
	if err != nil {
		response.RespondAPIError(c, toAPIError(err))
		return
	}
	response.RespondOK(c, newSessionView(sid, st))
}

// PUT /api/session/unit replaces the held unit wholesale with an edited one.
func (h *SessionHandler) PutUnit(c *gin.Context) {
	var unit model.CurriculumUnit
	if err := c.ShouldBindJSON(&unit); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := unit.Validate(); err != nil {
		response.RespondAPIError(c, apierr.New(http.StatusUnprocessableEntity, "invalid_unit", err))
		return
	}
	sid := ctxutil.SessionID(c.Request.Context())
	st, err := h.sessions.Update(c.Request.Context(), sid, func(s session.State, now time.Time) (session.State, error) {
		return session.Load(s, &unit, now), nil
	})
	if err != nil {
		response.RespondAPIError(c, toAPIError(err))
		return
	}
	notifyUnitChanged(c, h.notifier, sid, true)
	response.RespondOK(c, newSessionView(sid, st))
}

// DELETE /api/session/unit
func (h *SessionHandler) DeleteUnit(c *gin.Context) {
	sid := ctxutil.SessionID(c.Request.Context())
	st, err := h.sessions.Update(c.Request.Context(), sid, func(s session.State, _ time.Time) (session.State, error) {
		return session.Discard(s), nil
	})
	if err != nil {
		response.RespondAPIError(c, toAPIError(err))
		return
	}
	notifyUnitChanged(c, h.notifier, sid, false)
	response.RespondOK(c, newSessionView(sid, st))
}

func notifyUnitChanged(c *gin.Context, n Notifier, sid string, loaded bool) {
	if n == nil {
		return
	}
	n.Publish(c.Request.Context(), realtime.Message{
		Channel: realtime.SessionChannel(sid),
		Event:   realtime.EventUnitChanged,
		Data:    gin.H{"loaded": loaded},
	})
}

// loadUnit returns the held unit or a no_document error.
func loadUnit(c *gin.Context, sessions *session.Manager) (*model.CurriculumUnit, error) {
	st, err := sessions.Get(c.Request.Context(), ctxutil.SessionID(c.Request.Context()))
	if err != nil {
		return nil, err
	}
	if st.Unit == nil {
		return nil, apierr.New(http.StatusConflict, "no_document", errors.New("no unit loaded"))
	}
	return st.Unit, nil
}
