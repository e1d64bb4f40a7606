package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/situacio-backend/internal/http/response"
	"github.com/yungbote/situacio-backend/internal/modules/situacio/derive"
	"github.com/yungbote/situacio-backend/internal/modules/situacio/export"
	"github.com/yungbote/situacio-backend/internal/modules/situacio/render/markup"
	"github.com/yungbote/situacio-backend/internal/modules/situacio/render/paged"
	"github.com/yungbote/situacio-backend/internal/modules/situacio/session"
	"github.com/yungbote/situacio-backend/internal/platform/apierr"
	"github.com/yungbote/situacio-backend/internal/platform/ctxutil"
	"github.com/yungbote/situacio-backend/internal/platform/logger"
)

const htmlContentType = "text/html; charset=utf-8"

// PreviewHandler serves the rendered views of the held unit.
type PreviewHandler struct {
	log      *logger.Logger
	sessions *session.Manager
	exporter Exporter
}

func NewPreviewHandler(log *logger.Logger, sessions *session.Manager, exporter Exporter) *PreviewHandler {
	return &PreviewHandler{log: log.With("handler", "PreviewHandler"), sessions: sessions, exporter: exporter}
}

// GET /api/session/preview[?exporting=1]
func (h *PreviewHandler) Preview(c *gin.Context) {
	unit, err := loadUnit(c, h.sessions)
	if err != nil {
		response.RespondAPIError(c, toAPIError(err))
		return
	}
	exporting, _ := strconv.ParseBool(c.DefaultQuery("exporting", "false"))
	body, err := paged.Render(derive.Build(unit), paged.Options{Exporting: exporting})
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "render_failed", err)
		return
	}
	c.Data(http.StatusOK, htmlContentType, body)
}

// GET /api/session/preview/pages/:page
func (h *PreviewHandler) Page(c *gin.Context) {
	page, err := strconv.Atoi(c.Param("page"))
	if err != nil || page < 1 || page > paged.PageCount {
		response.RespondAPIError(c, apierr.New(http.StatusBadRequest, "invalid_page", err))
		return
	}
	img, err := h.exporter.Snapshot(c.Request.Context(), ctxutil.SessionID(c.Request.Context()), page)
	if err != nil {
		response.RespondAPIError(c, toAPIError(err))
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, export.JPEGContentType, img)
}

// GET /api/session/markup
func (h *PreviewHandler) Markup(c *gin.Context) {
	unit, err := loadUnit(c, h.sessions)
	if err != nil {
		response.RespondAPIError(c, toAPIError(err))
		return
	}
	body, err := markup.Render(derive.Build(unit))
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "render_failed", err)
		return
	}
	c.Data(http.StatusOK, markup.ContentType, body)
}
