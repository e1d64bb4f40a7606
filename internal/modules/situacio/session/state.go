// Package session holds the per-session application state: the single held unit and
// one export state per target. State changes go through pure functions.
package session

import (
	"fmt"
	"time"

	"github.com/yungbote/situacio-backend/internal/modules/situacio/model"
)

// Target is an export destination.
type Target int

const (
	TargetPDF Target = iota
	TargetDOCX
	TargetGDoc
	targetCount
)

// Targets lists every target in display order.
var Targets = [targetCount]Target{TargetPDF, TargetDOCX, TargetGDoc}

func (t Target) String() string {
	switch t {
	case TargetPDF:
		return "pdf"
	case TargetDOCX:
		return "docx"
	case TargetGDoc:
		return "gdoc"
	default:
		return fmt.Sprintf("target(%d)", int(t))
	}
}

// ParseTarget maps the wire name back to a Target.
func ParseTarget(s string) (Target, error) {
	for _, t := range Targets {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown export target %q", s)
}

// ExportState is the state machine of one target. Failures never stick: a finished
// run always lands back on ExportIdle, with the failure kept as a notice.
type ExportState int

const (
	ExportIdle ExportState = iota
	ExportInProgress
)

func (s ExportState) String() string {
	if s == ExportInProgress {
		return "in_progress"
	}
	return "idle"
}

func (s ExportState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *ExportState) UnmarshalText(b []byte) error {
	switch string(b) {
	case "idle", "":
		*s = ExportIdle
	case "in_progress":
		*s = ExportInProgress
	default:
		return fmt.Errorf("unknown export state %q", b)
	}
	return nil
}

// TargetStatus is what the UI shows for one target.
type TargetStatus struct {
	State      ExportState `json:"state"`
	Notice     string      `json:"notice,omitempty"`
	StartedAt  *time.Time  `json:"started_at,omitempty"`
	FinishedAt *time.Time  `json:"finished_at,omitempty"`
}

// State is the whole application state of one session.
type State struct {
	Unit     *model.CurriculumUnit     `json:"unit"`
	LoadedAt time.Time                 `json:"loaded_at,omitempty"`
	Exports  [targetCount]TargetStatus `json:"exports"`
}

// Load holds a new unit, replacing any previous one wholesale.
func Load(s State, u *model.CurriculumUnit, now time.Time) State {
	s.Unit = u
	s.LoadedAt = now
	return s
}

// Discard drops the unit and resets every export state.
func Discard(s State) State {
	return State{}
}

// Valid reports whether t names one of Targets.
func (t Target) Valid() bool { return t >= 0 && t < targetCount }

// BeginExport claims the target. ok is false when there is no unit, the target is
// unknown or already in progress; the returned state is then unchanged.
func BeginExport(s State, t Target, now time.Time) (State, bool) {
	if s.Unit == nil || !t.Valid() || s.Exports[t].State == ExportInProgress {
		return s, false
	}
	s.Exports[t] = TargetStatus{State: ExportInProgress, StartedAt: &now}
	return s, true
}

// EndExport returns the target to idle, recording failure as a notice.
func EndExport(s State, t Target, failure error, now time.Time) State {
	if !t.Valid() {
		return s
	}
	st := s.Exports[t]
	st.State = ExportIdle
	st.FinishedAt = &now
	st.Notice = ""
	if failure != nil {
		st.Notice = failure.Error()
	}
	s.Exports[t] = st
	return s
}

// Busy reports whether a target is in progress.
func (s State) Busy(t Target) bool {
	return t.Valid() && s.Exports[t].State == ExportInProgress
}
