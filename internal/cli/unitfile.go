package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yungbote/situacio-backend/internal/modules/situacio/model"
)

// loadUnit reads a .json, .yaml or .yml unit file.
func loadUnit(path string) (*model.CurriculumUnit, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return model.DecodeJSON(raw)
	case ".yaml", ".yml":
		return model.DecodeYAML(raw)
	default:
		return nil, fmt.Errorf("%s: unit files must be .json, .yaml or .yml", path)
	}
}
