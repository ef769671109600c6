package ns

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Settings is the sampler-facing configuration shared by every invocation
// of a dynamic run. It replaces the sampler's global settings file with an
// explicit immutable struct passed per run; the only file-system contract
// is that outputs land under BaseDir with names derived from FileRoot.
type Settings struct {
	BaseDir    string `yaml:"base_dir"`
	FileRoot   string `yaml:"file_root"`
	Seed       int64  `yaml:"seed"`
	NumRepeats int    `yaml:"num_repeats"`
	MaxDead    int    `yaml:"max_ndead"`
	Posteriors bool   `yaml:"posteriors"`
	WriteStats bool   `yaml:"write_stats"`

	// Resume handling must stay off during a dynamic run: every thread is
	// an independent invocation and a resumed thread would duplicate
	// samples. CheckDynamicSettings forces these.
	ReadResume  bool `yaml:"read_resume"`
	WriteResume bool `yaml:"write_resume"`
	Equals      bool `yaml:"equals"`
}

// NewSettings returns settings with the standard defaults.
func NewSettings() *Settings {
	return &Settings{
		BaseDir:    "chains",
		FileRoot:   "temp",
		Seed:       -1,
		MaxDead:    -1,
		Posteriors: true,
		WriteStats: true,
	}
}

// LoadSettings reads a YAML settings file over the defaults.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	s := NewSettings()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing settings %s: %w", path, err)
	}
	return s, nil
}

// CheckDynamicSettings forces the settings a dynamic run depends on,
// warning once if a caller-supplied value had to be overridden.
func (s *Settings) CheckDynamicSettings() {
	var corrected []string
	if s.ReadResume {
		s.ReadResume = false
		corrected = append(corrected, "read_resume=false")
	}
	if s.WriteResume {
		s.WriteResume = false
		corrected = append(corrected, "write_resume=false")
	}
	if s.Equals {
		s.Equals = false
		corrected = append(corrected, "equals=false")
	}
	if len(corrected) > 0 {
		logrus.Warnf("dynamic runs require %s; overriding the supplied settings", strings.Join(corrected, ", "))
	}
}
