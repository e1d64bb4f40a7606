// Package paged renders the fixed five-page view used on screen, for print and as the
// source of the PDF capture. Content that overflows a page box is clipped, never
// flowed onto a continuation page.
package paged

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/yungbote/situacio-backend/internal/modules/situacio/derive"
)

const (
	// PageCount is fixed: cover, description, objectives, development, supports.
	PageCount = 5
	// PageWidthPx is an A4 landscape page at 96 dpi.
	PageWidthPx = 1123
	// PageHeightPx is the matching height, rounded up. Screen only: exported and printed
	// pages use the exact sheet size so each one fills a single sheet.
	PageHeightPx = 794
	// SheetSizeCSS is the page box size applied while exporting or printing.
	SheetSizeCSS = "width: 297mm; height: 210mm;"
	// ContainerID matches the container id hardcoded in templates/paged.html.tmpl.
	ContainerID = "sa-pages"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.New("paged.html.tmpl").ParseFS(templateFS, "templates/paged.html.tmpl"))

// Options toggles render modes that do not change content.
type Options struct {
	// Exporting removes inter-page gaps and shadows while the capture target runs.
	Exporting bool
}

type pageData struct {
	View      derive.View
	Labels    any
	Exporting bool
	WidthPx   int
	HeightPx  int
	SheetCSS  template.CSS
}

// Render produces the full HTML document.
func Render(v derive.View, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, pageData{
		View:      v,
		Labels:    derive.Labels,
		Exporting: opts.Exporting,
		WidthPx:   PageWidthPx,
		HeightPx:  PageHeightPx,
		SheetCSS:  template.CSS(SheetSizeCSS),
	})
	if err != nil {
		return nil, fmt.Errorf("render paged view: %w", err)
	}
	return buf.Bytes(), nil
}

// PageSelector returns the CSS selector of logical page n (1-based).
func PageSelector(n int) string {
	return fmt.Sprintf("#%s > section.page:nth-of-type(%d)", ContainerID, n)
}
