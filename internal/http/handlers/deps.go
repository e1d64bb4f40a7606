package handlers

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/situacio-backend/internal/modules/situacio/export"
	"github.com/yungbote/situacio-backend/internal/modules/situacio/extract"
	"github.com/yungbote/situacio-backend/internal/modules/situacio/ingest"
	"github.com/yungbote/situacio-backend/internal/modules/situacio/model"
	"github.com/yungbote/situacio-backend/internal/realtime"
	"github.com/yungbote/situacio-backend/internal/types"
)

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(sessionID string) (string, time.Time, error)
}

// Notifier fans events out to a session's listeners.
type Notifier interface {
	Publish(ctx context.Context, msg realtime.Message)
}

type TextReader interface {
	ReadAll(ctx context.Context, files []ingest.File) (string, error)
}

type UnitExtractor interface {
	Extract(ctx context.Context, raw string, opts ...extract.CallOption) (*model.CurriculumUnit, error)
}

type Exporter interface {
	Run(ctx context.Context, sessionID string, target export.Target, opts export.RunOptions) (*export.Artifact, error)
	Snapshot(ctx context.Context, sessionID string, page int) ([]byte, error)
}

type ExportLedger interface {
	ListBySession(ctx context.Context, tx *gorm.DB, sessionID string, limit int) ([]*types.ExportRecord, error)
}
