// Package ingest turns uploaded files into best-effort plain text for extraction.
package ingest

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/situacio-backend/internal/platform/logger"
)

const (
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimePDF  = "application/pdf"
	mimeHTML = "text/html"
)

// MaxFileBytes bounds a single upload.
const MaxFileBytes = 20 << 20

type File struct {
	Name string
	Data []byte
}

// Failure wraps any read or parse error for one file.
type Failure struct {
	File string
	Err  error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("read %s: %v", f.File, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// PDFText extracts text from PDFs and scans.
type PDFText interface {
	ExtractText(ctx context.Context, mimeType string, data []byte) (string, error)
}

type Reader struct {
	log         *logger.Logger
	pdf         PDFText
	concurrency int
}

// NewReader builds a Reader. pdf may be nil, in which case PDFs fall back to raw text.
func NewReader(log *logger.Logger, pdf PDFText) *Reader {
	return &Reader{log: log.With("service", "IngestReader"), pdf: pdf, concurrency: 4}
}

// ReadAsText returns the text of f, detecting its type from content and name.
func (r *Reader) ReadAsText(ctx context.Context, f File) (string, error) {
	if len(f.Data) > MaxFileBytes {
		return "", &Failure{File: f.Name, Err: fmt.Errorf("file exceeds %d bytes", MaxFileBytes)}
	}
	kind := detect(f)
	var (
		text string
		err  error
	)
	switch kind {
	case mimeDOCX:
		text, err = docxText(f.Data)
	case mimeHTML:
		text, err = htmlText(f.Data)
	case mimePDF:
		if r.pdf == nil {
			text = rawText(f.Data)
			break
		}
		text, err = r.pdf.ExtractText(ctx, mimePDF, f.Data)
	default:
		text = rawText(f.Data)
	}
	if err != nil {
		return "", &Failure{File: f.Name, Err: err}
	}
	r.log.Debug("file read", "file", f.Name, "mime", kind, "bytes", len(f.Data), "chars", utf8.RuneCountInString(text))
	return strings.TrimSpace(text), nil
}

// ReadAll reads files concurrently and joins their text in upload order.
func (r *Reader) ReadAll(ctx context.Context, files []File) (string, error) {
	out := make([]string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			text, err := r.ReadAsText(gctx, f)
			if err != nil {
				return err
			}
			out[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}
	parts := out[:0]
	for _, t := range out {
		if t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

func detect(f File) string {
	m := mimetype.Detect(f.Data)
	switch {
	case m.Is(mimeDOCX):
		return mimeDOCX
	case m.Is(mimePDF):
		return mimePDF
	case m.Is(mimeHTML):
		return mimeHTML
	}
	switch strings.ToLower(filepath.Ext(f.Name)) {
	case ".html", ".htm":
		return mimeHTML
	case ".docx":
		return mimeDOCX
	}
	return m.String()
}

// rawText decodes bytes as UTF-8, dropping invalid sequences.
func rawText(b []byte) string {
	b = bytes.TrimPrefix(b, []byte("\xef\xbb\xbf"))
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), "")
}
