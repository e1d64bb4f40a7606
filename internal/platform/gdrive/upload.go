// Package gdrive uploads HTML to Google Drive with conversion to a Google Doc.
package gdrive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/googleapi"

	"github.com/yungbote/situacio-backend/internal/platform/logger"
)

const (
	DefaultUploadURL = "https://www.googleapis.com/upload/drive/v3/files?uploadType=multipart"
	Boundary         = "situacio_boundary"
	GoogleDocMime    = "application/vnd.google-apps.document"
)

type Uploader struct {
	log       *logger.Logger
	http      *http.Client
	uploadURL string
}

func NewUploader(log *logger.Logger, client *http.Client) *Uploader {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &Uploader{
		log:       log.With("service", "DriveUploader"),
		http:      client,
		uploadURL: DefaultUploadURL,
	}
}

// WithUploadURL points the uploader at another endpoint.
func (u *Uploader) WithUploadURL(raw string) *Uploader {
	cp := *u
	cp.uploadURL = raw
	return &cp
}

type fileMetadata struct {
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
}

// MultipartBody builds the multipart/related payload: JSON metadata, then the HTML.
func MultipartBody(name string, html []byte) ([]byte, string, error) {
	meta, err := json.Marshal(fileMetadata{Name: name, MimeType: GoogleDocMime})
	if err != nil {
		return nil, "", err
	}
	var b bytes.Buffer
	b.WriteString("--" + Boundary + "\r\n")
	b.WriteString("Content-Type: application/json; charset=UTF-8\r\n\r\n")
	b.Write(meta)
	b.WriteString("\r\n--" + Boundary + "\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	b.Write(html)
	b.WriteString("\r\n--" + Boundary + "--")
	return b.Bytes(), "multipart/related; boundary=" + Boundary, nil
}

// UploadHTML posts html as a new Google Doc named name and returns the file id.
// A response without an id yields an empty id and no error.
func (u *Uploader) UploadHTML(ctx context.Context, token, name string, html []byte) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", fmt.Errorf("missing access token")
	}
	body, contentType, err := MultipartBody(name, html)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.uploadURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", contentType)

	resp, err := u.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("drive upload: %w", err)
	}
	defer resp.Body.Close()
	if err := googleapi.CheckResponse(resp); err != nil {
		return "", err
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read drive response: %w", err)
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode drive response: %w", err)
	}
	u.log.Info("drive document created", "name", name, "bytes", len(html))
	return out.ID, nil
}
