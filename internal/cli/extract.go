package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/situacio-backend/internal/modules/situacio/extract"
	"github.com/yungbote/situacio-backend/internal/modules/situacio/ingest"
	"github.com/yungbote/situacio-backend/internal/platform/gemini"
	"github.com/yungbote/situacio-backend/internal/platform/logger"
	"github.com/yungbote/situacio-backend/internal/platform/openai"
)

func defaultGenerator(log *logger.Logger) func(provider, key, model string) (extract.Generator, error) {
	return func(provider, key, model string) (extract.Generator, error) {
		switch provider {
		case "", "gemini":
			return gemini.NewClient(context.Background(), log, gemini.Config{APIKey: key, Model: model})
		case "openai":
			return openai.NewClient(log, openai.Config{APIKey: key, Model: model, MaxRetries: 2})
		default:
			return nil, fmt.Errorf("unknown provider %q (want gemini|openai)", provider)
		}
	}
}

func newExtractCmd(v *viper.Viper, deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "extract",
		Short:   "Extract a unit from teacher notes",
		Example: `  SITUACIO_API_KEY=... sarender extract --in notes.docx --in extra.txt --out unit.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			paths := v.GetStringSlice("extract.in")
			if len(paths) == 0 {
				return fmt.Errorf("--in is required")
			}
			files := make([]ingest.File, 0, len(paths))
			for _, p := range paths {
				data, err := os.ReadFile(p)
				if err != nil {
					return err
				}
				files = append(files, ingest.File{Name: filepath.Base(p), Data: data})
			}
			text, err := ingest.NewReader(deps.Log, nil).ReadAll(cmd.Context(), files)
			if err != nil {
				return err
			}

			gen, err := deps.NewGenerator(v.GetString("provider"), v.GetString("api_key"), v.GetString("model"))
			if err != nil {
				return &extract.Failure{Kind: extract.KeyMissing, Err: err}
			}
			unit, err := extract.New(deps.Log, gen, extract.Options{}).Extract(cmd.Context(), text)
			if err != nil {
				var f *extract.Failure
				if errors.As(err, &f) && f.Kind.NeedsPaidKey() {
					return fmt.Errorf("%w (set SITUACIO_API_KEY to a paid key)", err)
				}
				return err
			}
			for _, w := range unit.Warnings() {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
			}

			out := v.GetString("extract.out")
			var raw []byte
			if ext := strings.ToLower(filepath.Ext(out)); ext == ".yaml" || ext == ".yml" {
				raw, err = yaml.Marshal(unit)
			} else {
				raw, err = json.MarshalIndent(unit, "", "  ")
			}
			if err != nil {
				return err
			}
			if out == "" {
				_, err = cmd.OutOrStdout().Write(append(raw, '\n'))
				return err
			}
			if err := os.WriteFile(out, raw, 0o644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringSlice("in", nil, "notes file(s): txt, md, html, docx, pdf")
	cmd.Flags().String("out", "", "write the unit here (.json or .yaml); stdout when empty")
	cmd.Flags().String("provider", "gemini", "gemini or openai")
	cmd.Flags().String("model", "", "model name (provider default when empty)")
	cmd.Flags().String("api-key", "", "model API key")
	_ = v.BindPFlag("extract.in", cmd.Flags().Lookup("in"))
	_ = v.BindPFlag("extract.out", cmd.Flags().Lookup("out"))
	_ = v.BindPFlag("provider", cmd.Flags().Lookup("provider"))
	_ = v.BindPFlag("model", cmd.Flags().Lookup("model"))
	_ = v.BindPFlag("api_key", cmd.Flags().Lookup("api-key"))
	return cmd
}
