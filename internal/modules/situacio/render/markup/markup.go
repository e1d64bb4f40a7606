// Package markup renders the continuous-flow HTML document uploaded to the cloud
// word processor. There are no pages here; headings and tables follow each other.
package markup

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/yungbote/situacio-backend/internal/modules/situacio/derive"
)

// ContentType of the rendered document.
const ContentType = "text/html; charset=UTF-8"

//go:embed templates/markup.html.tmpl
var templateFS embed.FS

var docTemplate = template.Must(template.New("markup.html.tmpl").ParseFS(templateFS, "templates/markup.html.tmpl"))

// Render produces the HTML document.
func Render(v derive.View) ([]byte, error) {
	var buf bytes.Buffer
	if err := docTemplate.Execute(&buf, struct {
		View   derive.View
		Labels any
	}{View: v, Labels: derive.Labels}); err != nil {
		return nil, fmt.Errorf("render markup document: %w", err)
	}
	return buf.Bytes(), nil
}
