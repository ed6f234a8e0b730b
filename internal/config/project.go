// Package config loads plugbuild settings: per-project defaults from
// .plugbuild.yaml and user-wide settings from ~/.plugbuild/config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProjectFile is the per-project settings file in the plugin source root.
const ProjectFile = ".plugbuild.yaml"

// Project holds defaults for a plugin project. Command-line flags override
// every field.
type Project struct {
	Repository     string `yaml:"repository,omitempty"`
	PluginName     string `yaml:"plugin_name,omitempty"`
	GoVersion      string `yaml:"go_version,omitempty"`
	PackerVersion  string `yaml:"packer_version,omitempty"`
	UseVersionFile bool   `yaml:"use_version_file,omitempty"`
}

// LoadProject reads .plugbuild.yaml from dir. It returns an empty Project
// when the file does not exist.
func LoadProject(dir string) (*Project, error) {
	path := filepath.Join(dir, ProjectFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Project{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", ProjectFile, err)
	}

	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ProjectFile, err)
	}
	if p.Repository != "" && filepath.IsAbs(p.Repository) {
		return nil, fmt.Errorf("%s: repository %q must be a module path like github.com/owner/packer-plugin-name, not a filesystem path", ProjectFile, p.Repository)
	}
	return &p, nil
}

// FirstSet returns the first non-empty value.
func FirstSet(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
