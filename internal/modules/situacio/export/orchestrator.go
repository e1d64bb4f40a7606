package export

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	docs "google.golang.org/api/docs/v1"
	drive "google.golang.org/api/drive/v3"

	"github.com/yungbote/situacio-backend/internal/modules/situacio/derive"
	"github.com/yungbote/situacio-backend/internal/modules/situacio/model"
	"github.com/yungbote/situacio-backend/internal/modules/situacio/render/flow"
	"github.com/yungbote/situacio-backend/internal/modules/situacio/render/markup"
	"github.com/yungbote/situacio-backend/internal/modules/situacio/render/paged"
	"github.com/yungbote/situacio-backend/internal/modules/situacio/session"
	"github.com/yungbote/situacio-backend/internal/platform/logger"
)

const (
	PDFContentType  = "application/pdf"
	JPEGContentType = "image/jpeg"
	editURLPrefix   = "https://docs.google.com/document/d/"
)

// UploadScopes are requested for the Google Doc target.
var UploadScopes = []string{drive.DriveFileScope, docs.DocumentsScope}

var tracer = otel.Tracer("situacio/export")

type Orchestrator struct {
	log      *logger.Logger
	sessions *session.Manager
	capturer Capturer
	tokens   TokenSource
	uploader Uploader
	capture  CaptureConfig

	recorder  Recorder
	archiver  Archiver
	publisher Publisher
}

// Deps groups the orchestrator collaborators. Recorder, Archiver and Publisher are
// optional side channels.
type Deps struct {
	Sessions  *session.Manager
	Capturer  Capturer
	Tokens    TokenSource
	Uploader  Uploader
	Recorder  Recorder
	Archiver  Archiver
	Publisher Publisher
}

func NewOrchestrator(log *logger.Logger, deps Deps) *Orchestrator {
	return &Orchestrator{
		log:       log.With("service", "ExportOrchestrator"),
		sessions:  deps.Sessions,
		capturer:  deps.Capturer,
		tokens:    deps.Tokens,
		uploader:  deps.Uploader,
		capture:   DefaultCaptureConfig,
		recorder:  deps.Recorder,
		archiver:  deps.Archiver,
		publisher: deps.Publisher,
	}
}

// Run finalizes the session's unit into target. A second Run for the same session and
// target while the first is still going returns ErrExportInProgress without doing
// anything. The target is always back to idle when Run returns.
func (o *Orchestrator) Run(ctx context.Context, sessionID string, target Target, opts RunOptions) (*Artifact, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTarget, target)
	}
	var unit *model.CurriculumUnit
	st, err := o.sessions.Update(ctx, sessionID, func(s session.State, now time.Time) (session.State, error) {
		if s.Unit == nil {
			return s, ErrNoDocument
		}
		next, ok := session.BeginExport(s, target, now)
		if !ok {
			return s, ErrExportInProgress
		}
		unit = next.Unit
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	startedAt := derefTime(st.Exports[target].StartedAt, time.Now())
	o.publish(ctx, sessionID, StatusEvent{Target: target.String(), State: session.ExportInProgress.String()})

	ctx, span := tracer.Start(ctx, "export."+target.String())
	span.SetAttributes(attribute.String("export.target", target.String()))
	defer span.End()

	view := derive.Build(unit)
	art, runErr := o.finalize(ctx, target, view, opts)

	// Release even if the request went away.
	relCtx := context.WithoutCancel(ctx)
	final, relErr := o.sessions.Update(relCtx, sessionID, func(s session.State, now time.Time) (session.State, error) {
		return session.EndExport(s, target, runErr, now), nil
	})
	if relErr != nil {
		o.log.Error("release export state", "session_id", sessionID, "target", target.String(), "error", relErr)
	}

	rec := Record{
		SessionID:  sessionID,
		Target:     target,
		Status:     "succeeded",
		StartedAt:  startedAt,
		FinishedAt: derefTime(final.Exports[target].FinishedAt, time.Now()),
		Title:      view.Title,
	}
	ev := StatusEvent{Target: target.String(), State: session.ExportIdle.String()}
	if runErr != nil {
		span.RecordError(runErr)
		span.SetStatus(codes.Error, runErr.Error())
		o.log.Warn("export failed", "session_id", sessionID, "target", target.String(), "kind", FailureKindOf(runErr).String(), "error", runErr)
		rec.Status = "failed"
		rec.Error = runErr.Error()
		rec.Kind = FailureKindOf(runErr).String()
		ev.Notice = runErr.Error()
	} else {
		rec.Filename = art.Filename
		rec.SizeBytes = len(art.Data)
		rec.DocumentID = art.DocumentID
		rec.URL = art.URL
		ev.URL = art.URL
		rec.ArchiveURI = o.archive(relCtx, sessionID, art)
		o.log.Info("export finished", "session_id", sessionID, "target", target.String(), "bytes", len(art.Data))
	}
	o.record(relCtx, rec)
	o.publish(relCtx, sessionID, ev)

	if runErr != nil {
		return nil, runErr
	}
	return art, nil
}

func (o *Orchestrator) finalize(ctx context.Context, target Target, v derive.View, opts RunOptions) (*Artifact, error) {
	switch target {
	case TargetPDF:
		return o.finalizePDF(ctx, v)
	case TargetDOCX:
		return finalizeDOCX(v)
	case TargetGDoc:
		return o.finalizeGDoc(ctx, v, opts)
	default:
		return nil, fmt.Errorf("unsupported export target %s", target)
	}
}

func (o *Orchestrator) finalizePDF(ctx context.Context, v derive.View) (*Artifact, error) {
	html, err := paged.Render(v, paged.Options{Exporting: true})
	if err != nil {
		return nil, &Failure{Kind: CaptureFailed, Target: TargetPDF, Err: err}
	}
	if o.capturer == nil {
		return nil, &Failure{Kind: CaptureFailed, Target: TargetPDF, Err: errors.New("no capturer configured")}
	}
	pdf, err := o.capturer.CapturePDF(ctx, html, o.capture)
	if err != nil {
		return nil, &Failure{Kind: CaptureFailed, Target: TargetPDF, Err: err}
	}
	return &Artifact{
		Target:      TargetPDF,
		Filename:    derive.ExportFilename(v.Title, ".pdf"),
		ContentType: PDFContentType,
		Data:        pdf,
	}, nil
}

func finalizeDOCX(v derive.View) (*Artifact, error) {
	data, err := flow.Pack(flow.Build(v))
	if err != nil {
		return nil, &Failure{Kind: PackFailed, Target: TargetDOCX, Err: err}
	}
	return &Artifact{
		Target:      TargetDOCX,
		Filename:    derive.ExportFilename(v.Title, ".docx"),
		ContentType: flow.ContentType,
		Data:        data,
	}, nil
}

func (o *Orchestrator) finalizeGDoc(ctx context.Context, v derive.View, opts RunOptions) (*Artifact, error) {
	if o.tokens == nil || o.uploader == nil {
		return nil, &Failure{Kind: AuthFailed, Target: TargetGDoc, Err: errors.New("cloud upload not configured")}
	}
	token, err := o.tokens.Token(ctx, opts.GoogleAccessToken, UploadScopes)
	if err != nil {
		return nil, &Failure{Kind: AuthFailed, Target: TargetGDoc, Err: err}
	}
	html, err := markup.Render(v)
	if err != nil {
		return nil, &Failure{Kind: PackFailed, Target: TargetGDoc, Err: err}
	}
	name := derive.ExportFilename(v.Title, "")
	id, err := o.uploader.UploadHTML(ctx, token, name, html)
	if err != nil {
		return nil, &Failure{Kind: UploadRejected, Target: TargetGDoc, Err: err}
	}
	if strings.TrimSpace(id) == "" {
		return nil, &Failure{Kind: UploadRejected, Target: TargetGDoc, Err: errors.New("upload response has no file id")}
	}
	return &Artifact{
		Target:      TargetGDoc,
		Filename:    name,
		ContentType: markup.ContentType,
		Data:        html,
		DocumentID:  id,
		URL:         EditURL(id),
	}, nil
}

// EditURL is where the browser opens a converted document.
func EditURL(id string) string {
	return editURLPrefix + url.PathEscape(id) + "/edit"
}

// Snapshot captures one logical page of the paged view as JPEG. page is 1-based.
func (o *Orchestrator) Snapshot(ctx context.Context, sessionID string, page int) ([]byte, error) {
	if page < 1 || page > paged.PageCount {
		return nil, fmt.Errorf("page %d out of range 1..%d", page, paged.PageCount)
	}
	st, err := o.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if st.Unit == nil {
		return nil, ErrNoDocument
	}
	if o.capturer == nil {
		return nil, &Failure{Kind: CaptureFailed, Target: TargetPDF, Err: errors.New("no capturer configured")}
	}
	ctx, span := tracer.Start(ctx, "export.snapshot")
	span.SetAttributes(attribute.Int("export.page", page))
	defer span.End()

	html, err := paged.Render(derive.Build(st.Unit), paged.Options{Exporting: true})
	if err != nil {
		return nil, &Failure{Kind: CaptureFailed, Target: TargetPDF, Err: err}
	}
	img, err := o.capturer.CaptureJPEG(ctx, html, paged.PageSelector(page), o.capture)
	if err != nil {
		return nil, &Failure{Kind: CaptureFailed, Target: TargetPDF, Err: err}
	}
	return img, nil
}

func (o *Orchestrator) archive(ctx context.Context, sessionID string, art *Artifact) string {
	if o.archiver == nil || len(art.Data) == 0 {
		return ""
	}
	key := path.Join("exports", sessionID, time.Now().UTC().Format("20060102T150405Z")+"_"+art.Filename)
	if art.Target == TargetGDoc {
		key += ".html"
	}
	uri, err := o.archiver.Archive(ctx, key, art.ContentType, art.Data)
	if err != nil {
		o.log.Warn("archive export", "session_id", sessionID, "key", key, "error", err)
		return ""
	}
	return uri
}

func (o *Orchestrator) record(ctx context.Context, rec Record) {
	if o.recorder == nil {
		return
	}
	if err := o.recorder.RecordExport(ctx, rec); err != nil {
		o.log.Warn("record export", "session_id", rec.SessionID, "target", rec.Target.String(), "error", err)
	}
}

func (o *Orchestrator) publish(ctx context.Context, sessionID string, ev StatusEvent) {
	if o.publisher == nil {
		return
	}
	o.publisher.PublishStatus(ctx, sessionID, ev)
}

func derefTime(t *time.Time, fallback time.Time) time.Time {
	if t == nil {
		return fallback
	}
	return *t
}
