package chrome

import (
	"context"
	"os"
	"regexp"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/launcher"

	"github.com/yungbote/situacio-backend/internal/modules/situacio/derive"
	"github.com/yungbote/situacio-backend/internal/modules/situacio/export"
	"github.com/yungbote/situacio-backend/internal/modules/situacio/render/paged"
	"github.com/yungbote/situacio-backend/internal/modules/situacio/situaciotest"
	"github.com/yungbote/situacio-backend/internal/platform/logger"
)

func TestJPEGQuality(t *testing.T) {
	cases := map[float64]int{0.98: 98, 1: 100, 0: 90, 1.5: 90, 0.5: 50}
	for in, want := range cases {
		if got := jpegQuality(in); got != want {
			t.Fatalf("jpegQuality(%v): want=%d got=%d", in, want, got)
		}
	}
}

var pdfPageObj = regexp.MustCompile(`/Type\s*/Page[^s]`)

func TestCapturePDFOneSheetPerPage(t *testing.T) {
	bin := os.Getenv("CHROME_BIN")
	if bin == "" {
		found, ok := launcher.LookPath()
		if !ok {
			t.Skip("no chrome binary available")
		}
		bin = found
	}

	html, err := paged.Render(derive.Build(situaciotest.Unit()), paged.Options{Exporting: true})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	c := New(logger.Nop(), Config{Bin: bin, NoSandbox: true, Timeout: time.Minute})
	defer c.Close()

	pdf, err := c.CapturePDF(context.Background(), html, export.DefaultCaptureConfig)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if got := len(pdfPageObj.FindAll(pdf, -1)); got != paged.PageCount {
		t.Fatalf("want=%d sheets got=%d", paged.PageCount, got)
	}
}
