package repos

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/situacio-backend/internal/modules/situacio/export"
	"github.com/yungbote/situacio-backend/internal/platform/logger"
	"github.com/yungbote/situacio-backend/internal/types"
)

type ExportRecordRepo interface {
	Create(ctx context.Context, tx *gorm.DB, recs []*types.ExportRecord) ([]*types.ExportRecord, error)
	ListBySession(ctx context.Context, tx *gorm.DB, sessionID string, limit int) ([]*types.ExportRecord, error)
	// RecordExport satisfies export.Recorder.
	RecordExport(ctx context.Context, rec export.Record) error
}

type exportRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

var _ export.Recorder = (*exportRecordRepo)(nil)

func NewExportRecordRepo(db *gorm.DB, baseLog *logger.Logger) ExportRecordRepo {
	return &exportRecordRepo{db: db, log: baseLog.With("repo", "ExportRecordRepo")}
}

func (r *exportRecordRepo) Create(ctx context.Context, tx *gorm.DB, recs []*types.ExportRecord) ([]*types.ExportRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(recs) == 0 {
		return []*types.ExportRecord{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

// ListBySession returns the session's rows, newest first. limit <= 0 means 50.
func (r *exportRecordRepo) ListBySession(ctx context.Context, tx *gorm.DB, sessionID string, limit int) ([]*types.ExportRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 50
	}
	var out []*types.ExportRecord
	if err := transaction.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("finished_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *exportRecordRepo) RecordExport(ctx context.Context, rec export.Record) error {
	row := &types.ExportRecord{
		SessionID:  rec.SessionID,
		Target:     rec.Target.String(),
		Status:     rec.Status,
		Title:      rec.Title,
		Filename:   rec.Filename,
		SizeBytes:  int64(rec.SizeBytes),
		DocumentID: rec.DocumentID,
		URL:        rec.URL,
		ArchiveURI: rec.ArchiveURI,
		Error:      rec.Error,
		StartedAt:  rec.StartedAt,
		FinishedAt: rec.FinishedAt,
	}
	details := map[string]any{
		"duration_ms": rec.FinishedAt.Sub(rec.StartedAt).Milliseconds(),
	}
	if rec.Kind != "" {
		details["failure_kind"] = rec.Kind
	}
	row.Details = datatypes.JSON(mustJSON(details))
	if row.FinishedAt.IsZero() {
		row.FinishedAt = time.Now().UTC()
	}
	_, err := r.Create(ctx, nil, []*types.ExportRecord{row})
	return err
}
