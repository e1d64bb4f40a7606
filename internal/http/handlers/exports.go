package handlers

import (
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/situacio-backend/internal/http/middleware"
	"github.com/yungbote/situacio-backend/internal/http/response"
	"github.com/yungbote/situacio-backend/internal/modules/situacio/export"
	"github.com/yungbote/situacio-backend/internal/modules/situacio/session"
	"github.com/yungbote/situacio-backend/internal/platform/apierr"
	"github.com/yungbote/situacio-backend/internal/platform/ctxutil"
	"github.com/yungbote/situacio-backend/internal/platform/logger"
	"github.com/yungbote/situacio-backend/internal/types"
)

type ExportHandler struct {
	log      *logger.Logger
	exporter Exporter
	ledger   ExportLedger
}

func NewExportHandler(log *logger.Logger, exporter Exporter, ledger ExportLedger) *ExportHandler {
	return &ExportHandler{log: log.With("handler", "ExportHandler"), exporter: exporter, ledger: ledger}
}

// POST /api/session/exports/:target
func (h *ExportHandler) Export(c *gin.Context) {
	target, err := session.ParseTarget(c.Param("target"))
	if err != nil {
		response.RespondAPIError(c, apierr.New(http.StatusBadRequest, "invalid_target", err))
		return
	}
	sid := ctxutil.SessionID(c.Request.Context())
	art, err := h.exporter.Run(c.Request.Context(), sid, target, export.RunOptions{
		GoogleAccessToken: strings.TrimSpace(c.GetHeader(middleware.HeaderGoogleAccessToken)),
	})
	if err != nil {
		response.RespondAPIError(c, toAPIError(err))
		return
	}

	if target == export.TargetGDoc {
		response.RespondOK(c, gin.H{"id": art.DocumentID, "url": art.URL})
		return
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": art.Filename}))
	c.Data(http.StatusOK, art.ContentType, art.Data)
}

// GET /api/session/exports[?limit=N]
func (h *ExportHandler) List(c *gin.Context) {
	if h.ledger == nil {
		response.RespondOK(c, gin.H{"exports": []*types.ExportRecord{}})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	rows, err := h.ledger.ListBySession(c.Request.Context(), nil, ctxutil.SessionID(c.Request.Context()), limit)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "list_exports_failed", err)
		return
	}
	if rows == nil {
		rows = []*types.ExportRecord{}
	}
	response.RespondOK(c, gin.H{"exports": rows})
}
