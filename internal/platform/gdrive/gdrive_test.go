package gdrive

import (
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"github.com/yungbote/situacio-backend/internal/platform/logger"
)

func TestMultipartBodyShape(t *testing.T) {
	body, ct, err := MultipartBody("SA_egipte", []byte("<h1>Egipte</h1>"))
	if err != nil {
		t.Fatalf("body: %v", err)
	}
	if ct != "multipart/related; boundary=situacio_boundary" {
		t.Fatalf("content type: got %s", ct)
	}
	mt, params, err := mime.ParseMediaType(ct)
	if err != nil || mt != "multipart/related" {
		t.Fatalf("parse media type: %s %v", mt, err)
	}
	r := multipart.NewReader(strings.NewReader(string(body)), params["boundary"])

	meta, err := r.NextPart()
	if err != nil {
		t.Fatalf("meta part: %v", err)
	}
	if got := meta.Header.Get("Content-Type"); !strings.HasPrefix(got, "application/json") {
		t.Fatalf("meta content type: got %s", got)
	}
	raw, _ := io.ReadAll(meta)
	if string(raw) != `{"name":"SA_egipte","mimeType":"application/vnd.google-apps.document"}` {
		t.Fatalf("meta: got %s", raw)
	}

	doc, err := r.NextPart()
	if err != nil {
		t.Fatalf("html part: %v", err)
	}
	if got := doc.Header.Get("Content-Type"); !strings.HasPrefix(got, "text/html") {
		t.Fatalf("html content type: got %s", got)
	}
	raw, _ = io.ReadAll(doc)
	if string(raw) != "<h1>Egipte</h1>" {
		t.Fatalf("html: got %s", raw)
	}
	if _, err := r.NextPart(); err != io.EOF {
		t.Fatalf("want exactly two parts, got err=%v", err)
	}
}

func TestUploadHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Query().Get("uploadType") != "multipart" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer ya29.test" {
			t.Errorf("auth header: got %s", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"doc-123","name":"SA_x"}`)
	}))
	defer srv.Close()

	u := NewUploader(logger.Nop(), srv.Client()).WithUploadURL(srv.URL + "/upload/drive/v3/files?uploadType=multipart")
	id, err := u.UploadHTML(context.Background(), "ya29.test", "SA_x", []byte("<p>x</p>"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if id != "doc-123" {
		t.Fatalf("want=doc-123 got=%s", id)
	}
}

func TestUploadHTMLRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error":{"code":403,"message":"insufficient scopes"}}`)
	}))
	defer srv.Close()

	u := NewUploader(logger.Nop(), srv.Client()).WithUploadURL(srv.URL)
	_, err := u.UploadHTML(context.Background(), "ya29.test", "SA_x", []byte("<p>x</p>"))
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) || gerr.Code != http.StatusForbidden {
		t.Fatalf("want googleapi 403 got=%v", err)
	}
}

func TestUploadHTMLMissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	u := NewUploader(logger.Nop(), srv.Client()).WithUploadURL(srv.URL)
	id, err := u.UploadHTML(context.Background(), "ya29.test", "SA_x", nil)
	if err != nil || id != "" {
		t.Fatalf("want empty id without error got id=%q err=%v", id, err)
	}
}

func TestTokenSourcePrefersCaller(t *testing.T) {
	s := &TokenSource{find: func(context.Context, ...string) (oauth2.TokenSource, error) {
		t.Fatalf("ADC must not be consulted when the caller supplies a token")
		return nil, nil
	}}
	tok, err := s.Token(context.Background(), " ya29.caller ", []string{"scope"})
	if err != nil || tok != "ya29.caller" {
		t.Fatalf("want caller token got=%q err=%v", tok, err)
	}
}

func TestTokenSourceADC(t *testing.T) {
	var gotScopes []string
	s := &TokenSource{find: func(_ context.Context, scopes ...string) (oauth2.TokenSource, error) {
		gotScopes = scopes
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "ya29.adc"}), nil
	}}
	tok, err := s.Token(context.Background(), "", []string{"a", "b"})
	if err != nil || tok != "ya29.adc" {
		t.Fatalf("want adc token got=%q err=%v", tok, err)
	}
	if len(gotScopes) != 2 {
		t.Fatalf("want scopes passed through got=%v", gotScopes)
	}

	s.DisableADC = true
	if _, err := s.Token(context.Background(), "", nil); err == nil {
		t.Fatalf("want error with ADC disabled")
	}
}
