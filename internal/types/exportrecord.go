package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ExportRecord is one finished export attempt, successful or not.
type ExportRecord struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID  string         `gorm:"column:session_id;index;not null" json:"session_id"`
	Target     string         `gorm:"column:target;not null" json:"target"`
	Status     string         `gorm:"column:status;not null" json:"status"`
	Title      string         `gorm:"column:title" json:"title"`
	Filename   string         `gorm:"column:filename" json:"filename,omitempty"`
	SizeBytes  int64          `gorm:"column:size_bytes" json:"size_bytes"`
	DocumentID string         `gorm:"column:document_id" json:"document_id,omitempty"`
	URL        string         `gorm:"column:url" json:"url,omitempty"`
	ArchiveURI string         `gorm:"column:archive_uri" json:"archive_uri,omitempty"`
	Error      string         `gorm:"column:error" json:"error,omitempty"`
	Details    datatypes.JSON `gorm:"column:details" json:"details,omitempty"`
	StartedAt  time.Time      `gorm:"column:started_at" json:"started_at"`
	FinishedAt time.Time      `gorm:"column:finished_at;index" json:"finished_at"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
}

func (ExportRecord) TableName() string {
	return "export_record"
}

func (r *ExportRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
