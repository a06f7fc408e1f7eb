package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LocalFileName is the per-site config file commands look for in the
// working directory, so a site's runbook repo can carry its own
// connection defaults without touching the per-user config.
const LocalFileName = "shear.yaml"

// LocalConfig is the subset of settings read straight from the working
// directory's shear.yaml, bypassing the viper singleton. It is the
// lowest-precedence source: flags, environment, and the per-user config
// file all win over it.
type LocalConfig struct {
	SiteURL     string `yaml:"site-url"`
	Library     string `yaml:"library"`
	LibraryList string `yaml:"library-list"`
}

// LoadLocal reads shear.yaml from dir. A missing or unparsable file is
// an empty config, not an error: the file is optional everywhere it is
// consulted.
func LoadLocal(dir string) *LocalConfig {
	data, err := os.ReadFile(filepath.Join(dir, LocalFileName)) // #nosec G304 - caller-controlled dir
	if err != nil {
		return &LocalConfig{}
	}
	var cfg LocalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return &LocalConfig{}
	}
	return &cfg
}
