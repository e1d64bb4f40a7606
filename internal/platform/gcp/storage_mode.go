package gcp

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

type ObjectStorageMode string

const (
	ObjectStorageModeGCS         ObjectStorageMode = "gcs"
	ObjectStorageModeGCSEmulator ObjectStorageMode = "gcs_emulator"
)

type ObjectStorageConfig struct {
	Mode         ObjectStorageMode
	EmulatorHost string
}

func (cfg ObjectStorageConfig) IsEmulatorMode() bool {
	return cfg.Mode == ObjectStorageModeGCSEmulator
}

// ObjectStorageConfigError names the env var that made the config unusable.
type ObjectStorageConfigError struct {
	Var   string
	Value string
	Cause error
}

func (e *ObjectStorageConfigError) Error() string {
	return fmt.Sprintf("invalid %s=%q", e.Var, e.Value)
}

func (e *ObjectStorageConfigError) Unwrap() error { return e.Cause }

// ResolveObjectStorageConfigFromEnv reads OBJECT_STORAGE_MODE and STORAGE_EMULATOR_HOST.
// With no mode set, a configured emulator host selects emulator mode.
func ResolveObjectStorageConfigFromEnv() (ObjectStorageConfig, error) {
	cfg := ObjectStorageConfig{
		EmulatorHost: strings.TrimRight(strings.TrimSpace(os.Getenv("STORAGE_EMULATOR_HOST")), "/"),
	}
	raw := strings.TrimSpace(os.Getenv("OBJECT_STORAGE_MODE"))
	switch ObjectStorageMode(strings.ToLower(raw)) {
	case "":
		cfg.Mode = ObjectStorageModeGCS
		if cfg.EmulatorHost != "" {
			cfg.Mode = ObjectStorageModeGCSEmulator
		}
	case ObjectStorageModeGCS:
		cfg.Mode = ObjectStorageModeGCS
	case ObjectStorageModeGCSEmulator:
		cfg.Mode = ObjectStorageModeGCSEmulator
	default:
		return cfg, &ObjectStorageConfigError{Var: "OBJECT_STORAGE_MODE", Value: raw}
	}
	return cfg, cfg.Validate()
}

func (cfg ObjectStorageConfig) Validate() error {
	switch cfg.Mode {
	case ObjectStorageModeGCS:
		return nil
	case ObjectStorageModeGCSEmulator:
		u, err := url.Parse(cfg.EmulatorHost)
		if cfg.EmulatorHost == "" || err != nil || u.Scheme == "" || u.Host == "" {
			return &ObjectStorageConfigError{Var: "STORAGE_EMULATOR_HOST", Value: cfg.EmulatorHost, Cause: err}
		}
		return nil
	default:
		return &ObjectStorageConfigError{Var: "OBJECT_STORAGE_MODE", Value: string(cfg.Mode)}
	}
}
