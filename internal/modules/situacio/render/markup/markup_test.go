package markup

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yungbote/situacio-backend/internal/modules/situacio/derive"
	"github.com/yungbote/situacio-backend/internal/modules/situacio/situaciotest"
)

func TestRenderContinuousFlow(t *testing.T) {
	doc, err := Render(derive.Build(situaciotest.Unit()))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	s := string(doc)
	if strings.Contains(s, "page-break") || strings.Contains(s, "section class=\"page\"") {
		t.Fatalf("markup document must not paginate")
	}
	got := situaciotest.TextByClass(t, doc, "ce-code")
	if diff := cmp.Diff([]string{"CE.1.", "CE.2.", "CE.3."}, got); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
	phases := situaciotest.TextByClass(t, doc, "phase-name")
	if diff := cmp.Diff(derive.PhaseNames[:], phases); diff != "" {
		t.Fatalf("phases mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderPlaceholder(t *testing.T) {
	doc, err := Render(derive.Build(situaciotest.UnitWithoutSupports()))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := situaciotest.CountElements(t, doc, "tr", "support-row"); got != 1 {
		t.Fatalf("support rows: want=1 got=%d", got)
	}
	cells := situaciotest.TextByClass(t, doc, "placeholder")
	if diff := cmp.Diff([]string{derive.NoDataLabel, derive.NoDataLabel}, cells); diff != "" {
		t.Fatalf("placeholder mismatch (-want +got):\n%s", diff)
	}
}
