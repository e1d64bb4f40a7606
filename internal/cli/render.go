package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yungbote/situacio-backend/internal/modules/situacio/derive"
	"github.com/yungbote/situacio-backend/internal/modules/situacio/export"
	"github.com/yungbote/situacio-backend/internal/modules/situacio/render/flow"
	"github.com/yungbote/situacio-backend/internal/modules/situacio/render/markup"
	"github.com/yungbote/situacio-backend/internal/modules/situacio/render/paged"
	"github.com/yungbote/situacio-backend/internal/platform/chrome"
)

var renderFormats = []string{"html", "markup", "docx", "pdf"}

func newRenderCmd(v *viper.Viper, deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a unit file to html, markup, docx or pdf",
		Example: `  sarender render --in unit.yaml --format docx --out build/
  sarender render --in unit.json --format html,markup,docx`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := v.GetString("render.in")
			if in == "" {
				return fmt.Errorf("--in is required")
			}
			unit, err := loadUnit(in)
			if err != nil {
				return err
			}
			for _, w := range unit.Warnings() {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
			}
			view := derive.Build(unit)
			outDir := v.GetString("render.out")
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}

			for _, format := range strings.Split(v.GetString("render.format"), ",") {
				format = strings.TrimSpace(strings.ToLower(format))
				data, ext, err := renderOne(cmd.Context(), v, deps, view, format)
				if err != nil {
					return err
				}
				name := derive.ExportFilename(view.Title, ext)
				path := filepath.Join(outDir, name)
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}
	cmd.Flags().String("in", "", "unit file (.json, .yaml)")
	cmd.Flags().String("format", "html", "comma-separated: "+strings.Join(renderFormats, ", "))
	cmd.Flags().String("out", ".", "output directory")
	cmd.Flags().String("chrome-bin", "", "Chrome binary for pdf output")
	_ = v.BindPFlag("render.in", cmd.Flags().Lookup("in"))
	_ = v.BindPFlag("render.format", cmd.Flags().Lookup("format"))
	_ = v.BindPFlag("render.out", cmd.Flags().Lookup("out"))
	_ = v.BindPFlag("chrome_bin", cmd.Flags().Lookup("chrome-bin"))
	return cmd
}

func renderOne(ctx context.Context, v *viper.Viper, deps Deps, view derive.View, format string) ([]byte, string, error) {
	switch format {
	case "html":
		data, err := paged.Render(view, paged.Options{})
		return data, ".html", err
	case "markup":
		data, err := markup.Render(view)
		return data, ".markup.html", err
	case "docx":
		data, err := flow.Pack(flow.Build(view))
		return data, ".docx", err
	case "pdf":
		html, err := paged.Render(view, paged.Options{Exporting: true})
		if err != nil {
			return nil, "", err
		}
		capt := chrome.New(deps.Log, chrome.Config{Bin: v.GetString("chrome_bin"), Timeout: 90 * time.Second})
		defer capt.Close()
		data, err := capt.CapturePDF(ctx, html, export.DefaultCaptureConfig)
		return data, ".pdf", err
	default:
		return nil, "", fmt.Errorf("unknown format %q (want %s)", format, strings.Join(renderFormats, ", "))
	}
}
