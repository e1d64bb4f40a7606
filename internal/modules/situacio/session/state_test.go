package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/yungbote/situacio-backend/internal/modules/situacio/situaciotest"
	"github.com/yungbote/situacio-backend/internal/platform/logger"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func TestParseTarget(t *testing.T) {
	for _, tg := range Targets {
		got, err := ParseTarget(tg.String())
		if err != nil || got != tg {
			t.Fatalf("round trip %s: got=%v err=%v", tg, got, err)
		}
	}
	if _, err := ParseTarget("odt"); err == nil {
		t.Fatalf("want error for unknown target")
	}
}

func TestBeginExportRequiresUnit(t *testing.T) {
	if _, ok := BeginExport(State{}, TargetPDF, t0); ok {
		t.Fatalf("want BeginExport refused without a unit")
	}
}

func TestBeginExportIsCompareAndSet(t *testing.T) {
	s := Load(State{}, situaciotest.Unit(), t0)
	s, ok := BeginExport(s, TargetPDF, t0)
	if !ok || !s.Busy(TargetPDF) {
		t.Fatalf("want pdf claimed")
	}
	again, ok := BeginExport(s, TargetPDF, t0)
	if ok {
		t.Fatalf("want second claim refused")
	}
	if again != s {
		t.Fatalf("refused claim must not change state")
	}
	s, ok = BeginExport(s, TargetDOCX, t0)
	if !ok || !s.Busy(TargetDOCX) || !s.Busy(TargetPDF) {
		t.Fatalf("targets must not share a slot")
	}
}

func TestEndExportAlwaysIdle(t *testing.T) {
	u := situaciotest.Unit()
	s := Load(State{}, u, t0)
	s, _ = BeginExport(s, TargetGDoc, t0)
	s = EndExport(s, TargetGDoc, errors.New("upload rejected"), t0.Add(time.Second))
	if s.Busy(TargetGDoc) {
		t.Fatalf("want idle after failure")
	}
	if s.Exports[TargetGDoc].Notice != "upload rejected" {
		t.Fatalf("want notice kept got=%q", s.Exports[TargetGDoc].Notice)
	}
	if s.Unit != u {
		t.Fatalf("export failure must not touch the unit")
	}
	s, _ = BeginExport(s, TargetGDoc, t0)
	s = EndExport(s, TargetGDoc, nil, t0)
	if s.Exports[TargetGDoc].Notice != "" {
		t.Fatalf("want notice cleared on success")
	}
}

func TestDiscardResetsExports(t *testing.T) {
	s := Load(State{}, situaciotest.Unit(), t0)
	s, _ = BeginExport(s, TargetPDF, t0)
	s = Discard(s)
	if s.Unit != nil || s.Busy(TargetPDF) {
		t.Fatalf("want empty state after discard")
	}
}

func TestManagerUpdateSerializes(t *testing.T) {
	ctx := context.Background()
	m := NewManager(logger.Nop(), NewMemoryStore(time.Hour))
	id, err := m.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := m.Update(ctx, id, func(s State, now time.Time) (State, error) {
		return Load(s, situaciotest.Unit(), now), nil
	}); err != nil {
		t.Fatalf("load: %v", err)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		claimed int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Update(ctx, id, func(s State, now time.Time) (State, error) {
				next, ok := BeginExport(s, TargetPDF, now)
				if !ok {
					return s, errors.New("busy")
				}
				return next, nil
			})
			if err == nil {
				mu.Lock()
				claimed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if claimed != 1 {
		t.Fatalf("want exactly one claim got=%d", claimed)
	}
}

func TestManagerUnknownSession(t *testing.T) {
	m := NewManager(logger.Nop(), NewMemoryStore(time.Hour))
	_, err := m.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound got=%v", err)
	}
}

func TestStateJSONKeepsBusyFlag(t *testing.T) {
	s, _ := BeginExport(Load(State{}, situaciotest.Unit(), t0), TargetDOCX, t0)
	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"state":"in_progress"`) {
		t.Fatalf("want readable state in %s", raw)
	}
	var back State
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Busy(TargetDOCX) || back.Busy(TargetPDF) {
		t.Fatalf("busy flags lost: %+v", back.Exports)
	}
}

func TestManagerGetDoesNotUndoUpdates(t *testing.T) {
	ctx := context.Background()
	m := NewManager(logger.Nop(), NewMemoryStore(time.Hour))
	id, err := m.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	stop := make(chan struct{})
	var readers sync.WaitGroup
	for i := 0; i < 4; i++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				if _, err := m.Get(ctx, id); err != nil {
					t.Errorf("get: %v", err)
					return
				}
			}
		}()
	}

	const updates = 5000
	for i := 0; i < updates; i++ {
		if _, err := m.Update(ctx, id, func(s State, _ time.Time) (State, error) {
			s.LoadedAt = s.LoadedAt.Add(time.Nanosecond)
			return s, nil
		}); err != nil {
			t.Fatalf("update: %v", err)
		}
	}
	close(stop)
	readers.Wait()

	st, err := m.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got := st.LoadedAt.Sub(time.Time{}); got != updates*time.Nanosecond {
		t.Fatalf("want=%d committed updates got=%d", updates, got)
	}
}

func TestMemoryStoreTouchKeepsValue(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour)
	if err := s.Put(ctx, "a", Load(State{}, situaciotest.Unit(), t0)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Touch(ctx, "a"); err != nil {
		t.Fatalf("touch: %v", err)
	}
	got, err := s.Get(ctx, "a")
	if err != nil || got.Unit == nil || !got.LoadedAt.Equal(t0) {
		t.Fatalf("want stored state after touch got=%+v err=%v", got, err)
	}
	if err := s.Touch(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound got=%v", err)
	}
}

func TestUnknownTargetIsRejected(t *testing.T) {
	s := Load(State{}, situaciotest.Unit(), t0)
	for _, bad := range []Target{-1, targetCount, 42} {
		next, ok := BeginExport(s, bad, t0)
		if ok {
			t.Fatalf("want claim refused for %v", bad)
		}
		if next.Busy(bad) {
			t.Fatalf("want %v not busy", bad)
		}
		_ = EndExport(next, bad, nil, t0)
	}
}

func TestIdleTargetsOmitTimestamps(t *testing.T) {
	raw, err := json.Marshal(Load(State{}, situaciotest.Unit(), t0))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "started_at") || strings.Contains(string(raw), "finished_at") {
		t.Fatalf("want no export timestamps on idle targets in %s", raw)
	}
	s, _ := BeginExport(Load(State{}, situaciotest.Unit(), t0), TargetPDF, t0)
	s = EndExport(s, TargetPDF, nil, t0.Add(time.Second))
	if s.Exports[TargetPDF].StartedAt == nil || !s.Exports[TargetPDF].FinishedAt.Equal(t0.Add(time.Second)) {
		t.Fatalf("want timestamps on finished target got=%+v", s.Exports[TargetPDF])
	}
}
