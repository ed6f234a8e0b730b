package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// GlobalConfig holds user-wide settings from ~/.plugbuild/config.yaml.
type GlobalConfig struct {
	// Runtime selects the container backend: auto, docker, or buildkit.
	Runtime string       `yaml:"runtime"`
	Images  ImagesConfig `yaml:"images"`
	Debug   DebugConfig  `yaml:"debug"`
}

// ImagesConfig overrides the images plans run on, e.g. to use a mirror.
type ImagesConfig struct {
	// Go is the toolchain repository; the Go version becomes the tag.
	Go string `yaml:"go"`
	// Packer is the Packer repository; the Packer version becomes the tag.
	Packer string `yaml:"packer"`
	// Alpine is the full image reference used to report input errors.
	Alpine string `yaml:"alpine"`
}

// DebugConfig controls the debug log directory.
type DebugConfig struct {
	RetentionDays int `yaml:"retention_days"`
}

// Environment overrides for the global config.
const (
	EnvRuntime       = "PLUGBUILD_RUNTIME"
	EnvGoImage       = "PLUGBUILD_GO_IMAGE"
	EnvPackerImage   = "PLUGBUILD_PACKER_IMAGE"
	EnvRetentionDays = "PLUGBUILD_DEBUG_RETENTION_DAYS"
)

// DefaultGlobalConfig returns the built-in defaults.
func DefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		Runtime: "auto",
		Images: ImagesConfig{
			Go:     "golang",
			Packer: "hashicorp/packer",
			Alpine: "alpine:latest",
		},
		Debug: DebugConfig{RetentionDays: 14},
	}
}

// LoadGlobal reads ~/.plugbuild/config.yaml over the defaults and applies
// environment overrides. A missing file is not an error; a malformed one is.
func LoadGlobal() (*GlobalConfig, error) {
	cfg := DefaultGlobalConfig()

	path := filepath.Join(GlobalConfigDir(), "config.yaml")
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if v := os.Getenv(EnvRuntime); v != "" {
		cfg.Runtime = v
	}
	if v := os.Getenv(EnvGoImage); v != "" {
		cfg.Images.Go = v
	}
	if v := os.Getenv(EnvPackerImage); v != "" {
		cfg.Images.Packer = v
	}
	if v := os.Getenv(EnvRetentionDays); v != "" {
		if days, err := strconv.Atoi(v); err == nil {
			cfg.Debug.RetentionDays = days
		}
	}

	if err := validateRuntime(cfg.Runtime); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateRuntime(rt string) error {
	switch rt {
	case "", "auto", "docker", "buildkit":
		return nil
	}
	return fmt.Errorf("invalid runtime %q: must be auto, docker, or buildkit", rt)
}

// GlobalConfigDir returns ~/.plugbuild.
func GlobalConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".plugbuild")
	}
	return filepath.Join(homeDir, ".plugbuild")
}

// DebugDir returns the directory for debug log files.
func DebugDir() string {
	return filepath.Join(GlobalConfigDir(), "debug")
}
