package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/situacio-backend/internal/modules/situacio/extract"
	"github.com/yungbote/situacio-backend/internal/modules/situacio/situaciotest"
)

type fixtureGenerator struct{ user string }

func (g *fixtureGenerator) GenerateJSON(_ context.Context, _ string, user string, _ string, _ map[string]any) (map[string]any, error) {
	g.user = user
	raw, err := json.Marshal(situaciotest.Unit())
	if err != nil {
		return nil, err
	}
	var obj map[string]any
	err = json.Unmarshal(raw, &obj)
	return obj, err
}

func executeCmd(t *testing.T, deps Deps, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	root := NewRootCmd(deps)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func writeUnitYAML(t *testing.T) string {
	t.Helper()
	raw, err := yaml.Marshal(situaciotest.Unit())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "unit.yaml")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestRenderWritesEveryFormat(t *testing.T) {
	in := writeUnitYAML(t)
	out := t.TempDir()
	got, err := executeCmd(t, Deps{}, "render", "--in", in, "--format", "html,markup,docx", "--out", out)
	if err != nil {
		t.Fatalf("render: %v\n%s", err, got)
	}
	for _, name := range []string{"SA_unitategipte5.html", "SA_unitategipte5.markup.html", "SA_unitategipte5.docx"} {
		info, err := os.Stat(filepath.Join(out, name))
		if err != nil || info.Size() == 0 {
			t.Fatalf("missing output %s: %v", name, err)
		}
	}
	docx, _ := os.ReadFile(filepath.Join(out, "SA_unitategipte5.docx"))
	if !bytes.HasPrefix(docx, []byte("PK")) {
		t.Fatalf("docx is not a zip package")
	}
}

func TestRenderRejectsUnknownFormat(t *testing.T) {
	in := writeUnitYAML(t)
	_, err := executeCmd(t, Deps{}, "render", "--in", in, "--format", "odt", "--out", t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Fatalf("want unknown format error got=%v", err)
	}
}

func TestExtractWritesYAML(t *testing.T) {
	dir := t.TempDir()
	notes := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(notes, []byte("Unitat sobre l'antic Egipte per a 5è."), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	gen := &fixtureGenerator{}
	var gotProvider string
	deps := Deps{NewGenerator: func(provider, _, _ string) (extract.Generator, error) {
		gotProvider = provider
		return gen, nil
	}}
	out := filepath.Join(dir, "unit.yaml")
	if _, err := executeCmd(t, deps, "extract", "--in", notes, "--out", out, "--provider", "openai"); err != nil {
		t.Fatalf("extract: %v", err)
	}
	if gotProvider != "openai" {
		t.Fatalf("want provider=openai got=%s", gotProvider)
	}
	if !strings.Contains(gen.user, "antic Egipte") {
		t.Fatalf("notes text did not reach the model")
	}
	unit, err := loadUnit(out)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if unit.Identification.Title != situaciotest.Unit().Identification.Title {
		t.Fatalf("title mismatch: %q", unit.Identification.Title)
	}
}

func TestExtractWithoutKeyIsKeyMissing(t *testing.T) {
	notes := filepath.Join(t.TempDir(), "notes.txt")
	_ = os.WriteFile(notes, []byte("apunts"), 0o644)
	deps := Deps{NewGenerator: func(string, string, string) (extract.Generator, error) {
		return nil, errors.New("missing GEMINI_API_KEY")
	}}
	_, err := executeCmd(t, deps, "extract", "--in", notes)
	var f *extract.Failure
	if !errors.As(err, &f) || f.Kind != extract.KeyMissing {
		t.Fatalf("want KeyMissing failure got=%v", err)
	}
}

func TestVersion(t *testing.T) {
	got, err := executeCmd(t, Deps{}, "version")
	if err != nil || !strings.HasPrefix(got, "sarender ") {
		t.Fatalf("version: %q %v", got, err)
	}
}
