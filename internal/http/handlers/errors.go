package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/yungbote/situacio-backend/internal/modules/situacio/export"
	"github.com/yungbote/situacio-backend/internal/modules/situacio/extract"
	"github.com/yungbote/situacio-backend/internal/modules/situacio/ingest"
	"github.com/yungbote/situacio-backend/internal/modules/situacio/session"
	"github.com/yungbote/situacio-backend/internal/platform/apierr"
)

// toAPIError maps domain failures to HTTP status and code.
func toAPIError(err error) *apierr.Error {
	if ae, ok := apierr.As(err); ok {
		return ae
	}

	var ef *extract.Failure
	var inf *ingest.Failure
	var xf *export.Failure
	switch {
	case errors.Is(err, session.ErrNotFound):
		return apierr.New(http.StatusNotFound, "session_not_found", err)
	case errors.Is(err, export.ErrExportInProgress):
		return apierr.New(http.StatusConflict, "export_in_progress", err)
	case errors.Is(err, export.ErrNoDocument):
		return apierr.New(http.StatusConflict, "no_document", err)
	case errors.Is(err, export.ErrUnknownTarget):
		return apierr.New(http.StatusBadRequest, "invalid_target", err)
	case errors.Is(err, extract.ErrEmptyInput):
		return apierr.New(http.StatusBadRequest, "empty_input", err)
	case errors.Is(err, extract.ErrRateLimited):
		return apierr.New(http.StatusTooManyRequests, "rate_limited", err)
	case errors.As(err, &ef):
		switch ef.Kind {
		case extract.QuotaExhausted:
			return apierr.New(http.StatusPaymentRequired, "llm_quota_exhausted",
				fmt.Errorf("%w; retry with a paid API key in X-LLM-Api-Key", err))
		case extract.KeyMissing:
			return apierr.New(http.StatusUnauthorized, "llm_key_missing", err)
		default:
			return apierr.New(http.StatusBadGateway, "extraction_failed", err)
		}
	case errors.As(err, &inf):
		return apierr.New(http.StatusUnprocessableEntity, "ingestion_failed", err)
	case errors.As(err, &xf):
		switch xf.Kind {
		case export.AuthFailed:
			return apierr.New(http.StatusUnauthorized, "export_auth_failed", err)
		case export.UploadRejected:
			return apierr.New(http.StatusBadGateway, "export_upload_rejected", err)
		case export.PackFailed:
			return apierr.New(http.StatusInternalServerError, "export_pack_failed", err)
		default:
			return apierr.New(http.StatusInternalServerError, "export_capture_failed", err)
		}
	case errors.Is(err, context.DeadlineExceeded):
		return apierr.New(http.StatusGatewayTimeout, "timeout", err)
	}
	return apierr.New(http.StatusInternalServerError, "internal_error", err)
}
