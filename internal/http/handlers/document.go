package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/situacio-backend/internal/http/middleware"
	"github.com/yungbote/situacio-backend/internal/http/response"
	"github.com/yungbote/situacio-backend/internal/modules/situacio/extract"
	"github.com/yungbote/situacio-backend/internal/modules/situacio/ingest"
	"github.com/yungbote/situacio-backend/internal/modules/situacio/session"
	"github.com/yungbote/situacio-backend/internal/platform/ctxutil"
	"github.com/yungbote/situacio-backend/internal/platform/logger"
)

// maxUploadFiles bounds one ingest request.
const maxUploadFiles = 10

// DocumentHandler turns uploads and pasted notes into a held unit.
type DocumentHandler struct {
	log       *logger.Logger
	sessions  *session.Manager
	reader    TextReader
	extractor UnitExtractor
	notifier  Notifier
}

func NewDocumentHandler(log *logger.Logger, sessions *session.Manager, reader TextReader, extractor UnitExtractor, notifier Notifier) *DocumentHandler {
	return &DocumentHandler{
		log:       log.With("handler", "DocumentHandler"),
		sessions:  sessions,
		reader:    reader,
		extractor: extractor,
		notifier:  notifier,
	}
}

// POST /api/session/ingest (multipart "files")
func (h *DocumentHandler) Ingest(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	headers := form.File["files"]
	switch {
	case len(headers) == 0:
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("no files uploaded"))
		return
	case len(headers) > maxUploadFiles:
		response.RespondError(c, http.StatusBadRequest, "too_many_files", fmt.Errorf("at most %d files per request", maxUploadFiles))
		return
	}

	files := make([]ingest.File, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > ingest.MaxFileBytes {
			response.RespondError(c, http.StatusRequestEntityTooLarge, "file_too_large", fmt.Errorf("%s exceeds %d bytes", fh.Filename, ingest.MaxFileBytes))
			return
		}
		f, err := fh.Open()
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
		data, err := io.ReadAll(io.LimitReader(f, ingest.MaxFileBytes+1))
		_ = f.Close()
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
		files = append(files, ingest.File{Name: fh.Filename, Data: data})
	}

	text, err := h.reader.ReadAll(c.Request.Context(), files)
	if err != nil {
		response.RespondAPIError(c, toAPIError(err))
		return
	}
	response.RespondOK(c, gin.H{"text": text, "files": len(files)})
}

type extractRequest struct {
	Text string `json:"text"`
}

// POST /api/session/extract
func (h *DocumentHandler) Extract(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	sid := ctxutil.SessionID(c.Request.Context())
	// Fail on an expired session before paying for a model call.
	if _, err := h.sessions.Get(c.Request.Context(), sid); err != nil {
		response.RespondAPIError(c, toAPIError(err))
		return
	}

	opts := []extract.CallOption{extract.WithClient(sid)}
	if key := strings.TrimSpace(c.GetHeader(middleware.HeaderLLMAPIKey)); key != "" {
		opts = append(opts, extract.WithAPIKey(key))
	}
	unit, err := h.extractor.Extract(c.Request.Context(), req.Text, opts...)
	if err != nil {
		response.RespondAPIError(c, toAPIError(err))
		return
	}

	st, err := h.sessions.Update(c.Request.Context(), sid, func(s session.State, now time.Time) (session.State, error) {
		return session.Load(s, unit, now), nil
	})
	if err != nil {
		response.RespondAPIError(c, toAPIError(err))
		return
	}
	notifyUnitChanged(c, h.notifier, sid, true)
	response.RespondOK(c, newSessionView(sid, st))
}
