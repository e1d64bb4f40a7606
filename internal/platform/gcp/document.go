package gcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/types/known/fieldmaskpb"

	"github.com/yungbote/situacio-backend/internal/platform/logger"
)

type DocumentConfig struct {
	ProjectID        string
	Location         string
	ProcessorID      string
	ProcessorVersion string
}

func (c DocumentConfig) Enabled() bool {
	return strings.TrimSpace(c.ProjectID) != "" && strings.TrimSpace(c.ProcessorID) != ""
}

// Document extracts text from PDFs and scans with a Document AI OCR processor.
type Document struct {
	log       *logger.Logger
	client    *documentai.DocumentProcessorClient
	processor string
}

func NewDocument(ctx context.Context, log *logger.Logger, cfg DocumentConfig) (*Document, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("missing DOCUMENTAI_PROJECT_ID or DOCUMENTAI_PROCESSOR_ID")
	}
	location := strings.TrimSpace(cfg.Location)
	if location == "" {
		location = "eu"
	}
	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", location)
	opts := append([]option.ClientOption{option.WithEndpoint(endpoint)}, ClientOptionsFromEnv()...)
	c, err := documentai.NewDocumentProcessorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("documentai client: %w", err)
	}
	name := processorName(cfg.ProjectID, location, cfg.ProcessorID, cfg.ProcessorVersion)
	l := log.With("service", "gcp.Document")
	l.Info("Document AI initialized", "endpoint", endpoint, "processor", name)
	return &Document{log: l, client: c, processor: name}, nil
}

func (d *Document) Close() error {
	return d.client.Close()
}

// ExtractText returns the document text with tables appended as markdown.
func (d *Document) ExtractText(ctx context.Context, mimeType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	if mimeType == "" {
		mimeType = "application/pdf"
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Minute)
	defer cancel()

	resp, err := d.client.ProcessDocument(ctx, &documentaipb.ProcessRequest{
		Name: d.processor,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{Content: data, MimeType: mimeType},
		},
		FieldMask: &fieldmaskpb.FieldMask{Paths: []string{"text", "pages.tables"}},
	})
	if err != nil {
		return "", fmt.Errorf("documentai ProcessDocument: %w", err)
	}
	text := DocumentText(resp.GetDocument())
	d.log.Debug("document processed", "mime_type", mimeType, "bytes", len(data), "chars", len(text))
	return text, nil
}

// DocumentText flattens a processed document: the full text, then each table.
func DocumentText(doc *documentaipb.Document) string {
	if doc == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(strings.TrimSpace(doc.GetText()))
	for _, p := range doc.GetPages() {
		for _, t := range p.GetTables() {
			if md := tableToMarkdown(doc.GetText(), t); md != "" {
				b.WriteString("\n\n")
				b.WriteString(strings.TrimSpace(md))
			}
		}
	}
	return strings.TrimSpace(b.String())
}

func textFromAnchor(full string, anchor *documentaipb.Document_TextAnchor) string {
	if anchor == nil || full == "" {
		return ""
	}
	var b strings.Builder
	for _, seg := range anchor.GetTextSegments() {
		start, end := int(seg.GetStartIndex()), int(seg.GetEndIndex())
		if end > len(full) {
			end = len(full)
		}
		if start < 0 || start >= end {
			continue
		}
		b.WriteString(full[start:end])
	}
	return b.String()
}

func tableToMarkdown(full string, t *documentaipb.Document_Page_Table) string {
	if t == nil {
		return ""
	}
	var rows [][]string
	for _, r := range t.GetHeaderRows() {
		rows = append(rows, rowCells(full, r))
	}
	for _, r := range t.GetBodyRows() {
		rows = append(rows, rowCells(full, r))
	}
	if len(rows) == 0 {
		return ""
	}
	cols := 0
	for _, r := range rows {
		cols = max(cols, len(r))
	}
	if cols == 0 {
		return ""
	}

	var out strings.Builder
	writeRow := func(r []string) {
		for len(r) < cols {
			r = append(r, "")
		}
		out.WriteString("| " + strings.Join(r, " | ") + " |\n")
	}
	writeRow(rows[0])
	sep := make([]string, cols)
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(sep)
	for _, r := range rows[1:] {
		writeRow(r)
	}
	return out.String()
}

func rowCells(full string, r *documentaipb.Document_Page_Table_TableRow) []string {
	out := make([]string, 0, len(r.GetCells()))
	for _, c := range r.GetCells() {
		cell := strings.TrimSpace(textFromAnchor(full, c.GetLayout().GetTextAnchor()))
		out = append(out, strings.ReplaceAll(cell, "|", "\\|"))
	}
	return out
}

func processorName(project, location, processorID, version string) string {
	base := fmt.Sprintf("projects/%s/locations/%s/processors/%s",
		strings.TrimSpace(project), strings.TrimSpace(location), strings.TrimSpace(processorID))
	if v := strings.TrimSpace(version); v != "" {
		return base + "/processorVersions/" + v
	}
	return base
}
