package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// RC is the optional ~/.lunarc.yaml contents: a small, flat override set for
// the REPL and the collector's tuning knobs. Grounded on
// _examples/funvibe-funxy/internal/ext.Config's use of yaml.v3 struct tags
// for a user-editable YAML file; Luna's own rc file plays the analogous role
// for the one ambient dependency (gopkg.in/yaml.v3) the teacher carries for
// user-facing configuration.
type RC struct {
	ReplHistorySize int     `yaml:"replHistorySize,omitempty"`
	GCGrowFactor    float64 `yaml:"gcGrowFactor,omitempty"`
}

// LoadRC reads and parses ~/.lunarc.yaml, returning the Default* values
// (not an error) when the file doesn't exist — the rc file is an optional
// override, never a required one.
func LoadRC() (RC, error) {
	rc := RC{ReplHistorySize: DefaultReplHistorySize, GCGrowFactor: DefaultGrowFactor}

	home, err := os.UserHomeDir()
	if err != nil {
		return rc, nil
	}

	data, err := os.ReadFile(filepath.Join(home, ".lunarc.yaml"))
	if os.IsNotExist(err) {
		return rc, nil
	}
	if err != nil {
		return rc, err
	}

	if err := yaml.Unmarshal(data, &rc); err != nil {
		return rc, err
	}
	return rc, nil
}
