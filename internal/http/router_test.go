package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	httpH "github.com/yungbote/situacio-backend/internal/http/handlers"
	httpMW "github.com/yungbote/situacio-backend/internal/http/middleware"
	"github.com/yungbote/situacio-backend/internal/http/response"
	"github.com/yungbote/situacio-backend/internal/modules/situacio/export"
	"github.com/yungbote/situacio-backend/internal/modules/situacio/extract"
	"github.com/yungbote/situacio-backend/internal/modules/situacio/ingest"
	"github.com/yungbote/situacio-backend/internal/modules/situacio/model"
	"github.com/yungbote/situacio-backend/internal/modules/situacio/session"
	"github.com/yungbote/situacio-backend/internal/modules/situacio/situaciotest"
	"github.com/yungbote/situacio-backend/internal/platform/logger"
	"github.com/yungbote/situacio-backend/internal/realtime"
	"github.com/yungbote/situacio-backend/internal/types"
)

type fakeExtractor struct {
	unit  *model.CurriculumUnit
	err   error
	calls int
}

func (f *fakeExtractor) Extract(_ context.Context, raw string, _ ...extract.CallOption) (*model.CurriculumUnit, error) {
	f.calls++
	if strings.TrimSpace(raw) == "" {
		return nil, extract.ErrEmptyInput
	}
	return f.unit, f.err
}

type fakeReader struct{ got []ingest.File }

func (f *fakeReader) ReadAll(_ context.Context, files []ingest.File) (string, error) {
	f.got = files
	parts := make([]string, 0, len(files))
	for _, file := range files {
		parts = append(parts, string(file.Data))
	}
	return strings.Join(parts, "\n\n"), nil
}

type fakeExporter struct {
	err   error
	token string
}

func (f *fakeExporter) Run(_ context.Context, _ string, target export.Target, opts export.RunOptions) (*export.Artifact, error) {
	f.token = opts.GoogleAccessToken
	if f.err != nil {
		return nil, f.err
	}
	switch target {
	case export.TargetGDoc:
		return &export.Artifact{Target: target, DocumentID: "doc-1", URL: export.EditURL("doc-1")}, nil
	default:
		return &export.Artifact{Target: target, Filename: "SA_unitategipte5.pdf", ContentType: export.PDFContentType, Data: []byte("%PDF-1.7")}, nil
	}
}

func (f *fakeExporter) Snapshot(_ context.Context, _ string, page int) ([]byte, error) {
	return []byte{0xff, 0xd8, byte(page)}, nil
}

type fakeLedger struct{}

func (fakeLedger) ListBySession(_ context.Context, _ *gorm.DB, sessionID string, _ int) ([]*types.ExportRecord, error) {
	return []*types.ExportRecord{{SessionID: sessionID, Target: "pdf", Status: "succeeded"}}, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []realtime.Message
}

func (n *recordingNotifier) Publish(_ context.Context, msg realtime.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
}

type harness struct {
	engine    *gin.Engine
	extractor *fakeExtractor
	reader    *fakeReader
	exporter  *fakeExporter
	notifier  *recordingNotifier
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.Nop()
	sessions := session.NewManager(log, session.NewMemoryStore(time.Hour))
	auth, err := httpMW.NewSessionAuth(log, "test-key", time.Hour)
	if err != nil {
		t.Fatalf("auth: %v", err)
	}
	h := &harness{
		extractor: &fakeExtractor{unit: situaciotest.Unit()},
		reader:    &fakeReader{},
		exporter:  &fakeExporter{},
		notifier:  &recordingNotifier{},
	}
	h.engine = NewRouter(RouterConfig{
		Log:             log,
		SessionAuth:     auth,
		HealthHandler:   httpH.NewHealthHandler(),
		SessionHandler:  httpH.NewSessionHandler(log, sessions, auth, h.notifier),
		DocumentHandler: httpH.NewDocumentHandler(log, sessions, h.reader, h.extractor, h.notifier),
		PreviewHandler:  httpH.NewPreviewHandler(log, sessions, h.exporter),
		ExportHandler:   httpH.NewExportHandler(log, h.exporter, fakeLedger{}),
	})
	return h
}

func (h *harness) do(t *testing.T, method, path, token string, body []byte, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil && header["Content-Type"] == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.engine.ServeHTTP(rec, req)
	return rec
}

func (h *harness) newSession(t *testing.T) string {
	t.Helper()
	rec := h.do(t, http.MethodPost, "/api/sessions", "", nil, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session: want=%d got=%d %s", http.StatusCreated, rec.Code, rec.Body.String())
	}
	var out struct {
		SessionID string `json:"session_id"`
		Token     string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil || out.Token == "" || out.SessionID == "" {
		t.Fatalf("bad create response %s (%v)", rec.Body.String(), err)
	}
	return out.Token
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env response.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error envelope %q: %v", rec.Body.String(), err)
	}
	return env.Error.Code
}

func TestHealthcheck(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodGet, "/healthcheck", "", nil, nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("want=200 ok got=%d %s", rec.Code, rec.Body.String())
	}
}

func TestSessionRequiresToken(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodGet, "/api/session", "", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("want=%d got=%d", http.StatusUnauthorized, rec.Code)
	}
}

func TestEmptySessionHasNoDocument(t *testing.T) {
	h := newHarness(t)
	tok := h.newSession(t)

	rec := h.do(t, http.MethodGet, "/api/session", tok, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get session: want=200 got=%d", rec.Code)
	}
	var view struct {
		Unit    *model.CurriculumUnit        `json:"unit"`
		Exports map[string]map[string]string `json:"exports"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.Unit != nil {
		t.Fatalf("want no unit")
	}
	for _, target := range []string{"pdf", "docx", "gdoc"} {
		if got := view.Exports[target]["state"]; got != "idle" {
			t.Fatalf("%s: want=idle got=%s", target, got)
		}
	}

	for _, path := range []string{"/api/session/preview", "/api/session/markup"} {
		rec := h.do(t, http.MethodGet, path, tok, nil, nil)
		if rec.Code != http.StatusConflict || errorCode(t, rec) != "no_document" {
			t.Fatalf("%s: want=409 no_document got=%d %s", path, rec.Code, rec.Body.String())
		}
	}
}

func TestExtractLoadsUnitAndRenders(t *testing.T) {
	h := newHarness(t)
	tok := h.newSession(t)

	rec := h.do(t, http.MethodPost, "/api/session/extract", tok, []byte(`{"text":"apunts de la unitat"}`), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("extract: want=200 got=%d %s", rec.Code, rec.Body.String())
	}
	if len(h.notifier.msgs) != 1 || h.notifier.msgs[0].Event != realtime.EventUnitChanged {
		t.Fatalf("want one UnitChanged event got=%+v", h.notifier.msgs)
	}

	rec = h.do(t, http.MethodGet, "/api/session/preview", tok, nil, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Egipte") {
		t.Fatalf("preview: want title in body got=%d", rec.Code)
	}
	rec = h.do(t, http.MethodGet, "/api/session/markup", tok, nil, nil)
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html") {
		t.Fatalf("markup: got=%d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
	rec = h.do(t, http.MethodGet, "/api/session/preview/pages/3", tok, nil, nil)
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != export.JPEGContentType {
		t.Fatalf("page: got=%d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
	rec = h.do(t, http.MethodGet, "/api/session/preview/pages/6", tok, nil, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("page 6: want=400 got=%d", rec.Code)
	}
}

func TestExtractErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		body       string
		wantStatus int
		wantCode   string
	}{
		{"quota", &extract.Failure{Kind: extract.QuotaExhausted, Err: errors.New("insufficient_quota")}, `{"text":"x"}`, http.StatusPaymentRequired, "llm_quota_exhausted"},
		{"key", &extract.Failure{Kind: extract.KeyMissing, Err: errors.New("no key")}, `{"text":"x"}`, http.StatusUnauthorized, "llm_key_missing"},
		{"unknown", &extract.Failure{Kind: extract.Unknown, Err: errors.New("bad json")}, `{"text":"x"}`, http.StatusBadGateway, "extraction_failed"},
		{"rate", extract.ErrRateLimited, `{"text":"x"}`, http.StatusTooManyRequests, "rate_limited"},
		{"empty", nil, `{"text":"  "}`, http.StatusBadRequest, "empty_input"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			h.extractor.err = tc.err
			if tc.err != nil {
				h.extractor.unit = nil
			}
			tok := h.newSession(t)
			rec := h.do(t, http.MethodPost, "/api/session/extract", tok, []byte(tc.body), nil)
			if rec.Code != tc.wantStatus || errorCode(t, rec) != tc.wantCode {
				t.Fatalf("want=%d %s got=%d %s", tc.wantStatus, tc.wantCode, rec.Code, rec.Body.String())
			}
			rec = h.do(t, http.MethodGet, "/api/session/preview", tok, nil, nil)
			if rec.Code != http.StatusConflict {
				t.Fatalf("failed extraction must not load a unit, preview got=%d", rec.Code)
			}
		})
	}
}

func TestPutAndDeleteUnit(t *testing.T) {
	h := newHarness(t)
	tok := h.newSession(t)

	edited := situaciotest.Unit()
	edited.Identification.Title = "Unitat editada"
	body, _ := json.Marshal(edited)
	rec := h.do(t, http.MethodPut, "/api/session/unit", tok, body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("put: want=200 got=%d %s", rec.Code, rec.Body.String())
	}
	rec = h.do(t, http.MethodGet, "/api/session/preview", tok, nil, nil)
	if !strings.Contains(rec.Body.String(), "Unitat editada") {
		t.Fatalf("preview should show the edited title")
	}

	edited.Identification.Title = " "
	body, _ = json.Marshal(edited)
	rec = h.do(t, http.MethodPut, "/api/session/unit", tok, body, nil)
	if rec.Code != http.StatusUnprocessableEntity || errorCode(t, rec) != "invalid_unit" {
		t.Fatalf("invalid put: want=422 invalid_unit got=%d %s", rec.Code, rec.Body.String())
	}

	rec = h.do(t, http.MethodDelete, "/api/session/unit", tok, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: want=200 got=%d", rec.Code)
	}
	rec = h.do(t, http.MethodGet, "/api/session/preview", tok, nil, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("after discard: want=409 got=%d", rec.Code)
	}
}

func TestIngestMultipart(t *testing.T) {
	h := newHarness(t)
	tok := h.newSession(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range map[string]string{"a.txt": "primer", "b.md": "segon"} {
		fw, err := mw.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		_, _ = fw.Write([]byte(content))
	}
	_ = mw.Close()

	rec := h.do(t, http.MethodPost, "/api/session/ingest", tok, buf.Bytes(), map[string]string{"Content-Type": mw.FormDataContentType()})
	if rec.Code != http.StatusOK {
		t.Fatalf("ingest: want=200 got=%d %s", rec.Code, rec.Body.String())
	}
	if len(h.reader.got) != 2 {
		t.Fatalf("want 2 files passed to reader got=%d", len(h.reader.got))
	}
	var out struct {
		Text string `json:"text"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	if !strings.Contains(out.Text, "primer") || !strings.Contains(out.Text, "segon") {
		t.Fatalf("unexpected text %q", out.Text)
	}
}

func TestExportEndpoints(t *testing.T) {
	h := newHarness(t)
	tok := h.newSession(t)

	rec := h.do(t, http.MethodPost, "/api/session/exports/pdf", tok, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("pdf: want=200 got=%d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename=SA_unitategipte5.pdf` {
		t.Fatalf("unexpected content disposition %q", cd)
	}

	rec = h.do(t, http.MethodPost, "/api/session/exports/gdoc", tok, nil, map[string]string{httpMW.HeaderGoogleAccessToken: "ya29.caller"})
	if rec.Code != http.StatusOK || h.exporter.token != "ya29.caller" {
		t.Fatalf("gdoc: got=%d token=%q", rec.Code, h.exporter.token)
	}
	var gdoc struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &gdoc)
	if gdoc.ID != "doc-1" || !strings.HasSuffix(gdoc.URL, "/doc-1/edit") {
		t.Fatalf("unexpected gdoc response %+v", gdoc)
	}

	rec = h.do(t, http.MethodPost, "/api/session/exports/odt", tok, nil, nil)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "invalid_target" {
		t.Fatalf("odt: want=400 invalid_target got=%d", rec.Code)
	}

	rec = h.do(t, http.MethodGet, "/api/session/exports", tok, nil, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"target":"pdf"`) {
		t.Fatalf("list: got=%d %s", rec.Code, rec.Body.String())
	}
}

func TestExportErrorMapping(t *testing.T) {
	cases := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{export.ErrExportInProgress, http.StatusConflict, "export_in_progress"},
		{export.ErrNoDocument, http.StatusConflict, "no_document"},
		{&export.Failure{Kind: export.AuthFailed, Target: export.TargetGDoc, Err: errors.New("no creds")}, http.StatusUnauthorized, "export_auth_failed"},
		{&export.Failure{Kind: export.UploadRejected, Target: export.TargetGDoc, Err: errors.New("403")}, http.StatusBadGateway, "export_upload_rejected"},
		{&export.Failure{Kind: export.CaptureFailed, Target: export.TargetPDF, Err: errors.New("chrome")}, http.StatusInternalServerError, "export_capture_failed"},
		{&export.Failure{Kind: export.PackFailed, Target: export.TargetDOCX, Err: errors.New("zip")}, http.StatusInternalServerError, "export_pack_failed"},
	}
	for _, tc := range cases {
		h := newHarness(t)
		h.exporter.err = tc.err
		tok := h.newSession(t)
		rec := h.do(t, http.MethodPost, "/api/session/exports/pdf", tok, nil, nil)
		if rec.Code != tc.wantStatus || errorCode(t, rec) != tc.wantCode {
			t.Fatalf("%v: want=%d %s got=%d %s", tc.err, tc.wantStatus, tc.wantCode, rec.Code, rec.Body.String())
		}
	}
}
