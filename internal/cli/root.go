// Package cli implements sarender, the offline renderer and extractor.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yungbote/situacio-backend/internal/modules/situacio/extract"
	"github.com/yungbote/situacio-backend/internal/platform/logger"
)

// Version is set at build time with -ldflags.
var Version = "dev"

// Deps are the pieces tests replace.
type Deps struct {
	Log *logger.Logger
	// NewGenerator builds the model client for provider; key and model may be empty.
	NewGenerator func(provider, key, model string) (extract.Generator, error)
}

func NewRootCmd(deps Deps) *cobra.Command {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.NewGenerator == nil {
		deps.NewGenerator = defaultGenerator(deps.Log)
	}
	v := viper.New()
	var cfgFile string

	root := &cobra.Command{
		Use:   "sarender",
		Short: "Render and extract curriculum units offline",
		Long: `sarender renders a curriculum unit file to the same HTML, markup, DOCX and PDF
outputs the server produces, and extracts a unit from teacher notes.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (SITUACIO_*)
3. Config file (~/.situacio/config.yaml)
4. Defaults`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(v, cfgFile)
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.situacio/config.yaml)")

	root.AddCommand(newRenderCmd(v, deps))
	root.AddCommand(newExtractCmd(v, deps))
	root.AddCommand(newVersionCmd())
	return root
}

// initConfig reads the config file, if any, and SITUACIO_* env variables.
func initConfig(v *viper.Viper, cfgFile string) error {
	v.SetEnvPrefix("SITUACIO")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", cfgFile, err)
		}
		return nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	v.AddConfigPath(filepath.Join(home, ".situacio"))
	v.SetConfigType("yaml")
	v.SetConfigName("config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sarender %s\n", Version)
		},
	}
}
