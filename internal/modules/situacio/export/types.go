// Package export runs the three finalization paths (PDF capture, DOCX pack, Google Doc
// upload) behind a per-session, per-target busy guard.
package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yungbote/situacio-backend/internal/modules/situacio/session"
)

type Target = session.Target

const (
	TargetPDF  = session.TargetPDF
	TargetDOCX = session.TargetDOCX
	TargetGDoc = session.TargetGDoc
)

var (
	// ErrExportInProgress is returned when the target is already running for the session.
	// Nothing is queued.
	ErrExportInProgress = errors.New("export already in progress")
	// ErrNoDocument is returned when the session holds no unit.
	ErrNoDocument = errors.New("no document to export")
	// ErrUnknownTarget is returned by Run for a Target outside session.Targets.
	ErrUnknownTarget = errors.New("unknown export target")
)

type FailureKind int

const (
	CaptureFailed FailureKind = iota + 1
	PackFailed
	AuthFailed
	UploadRejected
)

func (k FailureKind) String() string {
	switch k {
	case CaptureFailed:
		return "capture_failed"
	case PackFailed:
		return "pack_failed"
	case AuthFailed:
		return "auth_failed"
	case UploadRejected:
		return "upload_rejected"
	default:
		return "unknown"
	}
}

// Failure is a finalization error tagged with its kind.
type Failure struct {
	Kind   FailureKind
	Target Target
	Err    error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s export: %s: %v", f.Target, f.Kind, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// FailureKindOf returns the kind of a *Failure in err's chain, or 0.
func FailureKindOf(err error) FailureKind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return 0
}

// Artifact is the result of a successful run. File targets fill Data; the Google Doc
// target fills DocumentID and URL.
type Artifact struct {
	Target      Target
	Filename    string
	ContentType string
	Data        []byte
	DocumentID  string
	URL         string
}

// RunOptions carries per-request inputs.
type RunOptions struct {
	// GoogleAccessToken is a token the caller already holds for the Drive upload.
	GoogleAccessToken string
}

// CaptureConfig is the fixed page-capture setup.
type CaptureConfig struct {
	PaperFormat   string
	Landscape     bool
	WidthPx       int
	Scale         float64
	JPEGQuality   float64
	PageBreakMode string
}

// DefaultCaptureConfig is A4 landscape at the paged renderer's width, 2x scale, one
// logical page per physical page.
var DefaultCaptureConfig = CaptureConfig{
	PaperFormat:   "a4",
	Landscape:     true,
	WidthPx:       1123,
	Scale:         2,
	JPEGQuality:   0.98,
	PageBreakMode: "css",
}

// Capturer turns rendered HTML into PDF bytes or a JPEG of one element.
type Capturer interface {
	CapturePDF(ctx context.Context, html []byte, cfg CaptureConfig) ([]byte, error)
	CaptureJPEG(ctx context.Context, html []byte, selector string, cfg CaptureConfig) ([]byte, error)
}

// TokenSource acquires a bearer token for the given scopes. fallback is a token the
// caller supplied and may be empty.
type TokenSource interface {
	Token(ctx context.Context, fallback string, scopes []string) (string, error)
}

// Uploader stores an HTML document in the cloud, converted to a native document,
// and returns the new file id.
type Uploader interface {
	UploadHTML(ctx context.Context, token, name string, html []byte) (string, error)
}

// Record is one ledger row.
type Record struct {
	SessionID  string
	Target     Target
	Status     string
	Filename   string
	SizeBytes  int
	DocumentID string
	URL        string
	ArchiveURI string
	Error      string
	Kind       string
	StartedAt  time.Time
	FinishedAt time.Time
	Title      string
}

// Recorder persists ledger rows.
type Recorder interface {
	RecordExport(ctx context.Context, rec Record) error
}

// Archiver stores artifact bytes and returns their object URI.
type Archiver interface {
	Archive(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// StatusEvent is published on the session's realtime channel.
type StatusEvent struct {
	Target string `json:"target"`
	State  string `json:"state"`
	Notice string `json:"notice,omitempty"`
	URL    string `json:"url,omitempty"`
}

// Publisher delivers status events to a session's listeners.
type Publisher interface {
	PublishStatus(ctx context.Context, sessionID string, ev StatusEvent)
}
