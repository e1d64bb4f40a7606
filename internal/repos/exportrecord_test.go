package repos

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/yungbote/situacio-backend/internal/db"
	"github.com/yungbote/situacio-backend/internal/modules/situacio/export"
	"github.com/yungbote/situacio-backend/internal/platform/logger"
)

func newRepo(t *testing.T) ExportRecordRepo {
	t.Helper()
	svc, err := db.Open(logger.Nop(), db.Config{Driver: db.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "ledger.db")})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	if err := svc.AutoMigrateAll(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewExportRecordRepo(svc.DB(), logger.Nop())
}

func TestRecordExportAndListBySession(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	if err := repo.RecordExport(ctx, export.Record{
		SessionID: "s1", Target: export.TargetPDF, Status: "succeeded",
		Filename: "SA_x.pdf", SizeBytes: 10, StartedAt: base, FinishedAt: base.Add(2 * time.Second),
	}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := repo.RecordExport(ctx, export.Record{
		SessionID: "s1", Target: export.TargetGDoc, Status: "failed", Error: "denied", Kind: "auth_failed",
		StartedAt: base.Add(time.Minute), FinishedAt: base.Add(time.Minute + time.Second),
	}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := repo.RecordExport(ctx, export.Record{SessionID: "other", Target: export.TargetDOCX, Status: "succeeded", FinishedAt: base}); err != nil {
		t.Fatalf("record: %v", err)
	}

	rows, err := repo.ListBySession(ctx, nil, "s1", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("want=2 rows got=%d", len(rows))
	}
	if rows[0].Target != "gdoc" || rows[1].Target != "pdf" {
		t.Fatalf("want newest first got=%s,%s", rows[0].Target, rows[1].Target)
	}
	var details map[string]any
	if err := json.Unmarshal(rows[0].Details, &details); err != nil {
		t.Fatalf("details: %v", err)
	}
	if details["failure_kind"] != "auth_failed" {
		t.Fatalf("want failure_kind=auth_failed got=%v", details["failure_kind"])
	}
	if rows[1].SizeBytes != 10 || rows[1].Filename != "SA_x.pdf" {
		t.Fatalf("unexpected pdf row %+v", rows[1])
	}
}
