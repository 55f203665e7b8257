package project

import (
	"encoding/json"

	"github.com/spf13/afero"

	"github.com/arthur-debert/rla/pkg/errors"
)

// Config is the per-project record written at unpack time and read by pack
type Config struct {
	SmaliOnly     bool `json:"smali_only"`
	GitEnable     bool `json:"git_enable"`
	JadxEnable    bool `json:"jadx_enable"`
	ForceOverride bool `json:"force_override"`
}

// Marshal returns the pretty-printed JSON form
func (c Config) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode project config")
	}
	return append(data, '\n'), nil
}

// LoadConfig reads the project config of a layout. A missing or malformed
// file is an INVALID_INPUT error: the directory is not a usable project.
func LoadConfig(fs afero.Fs, l Layout) (Config, error) {
	var cfg Config

	data, err := afero.ReadFile(fs, l.ConfigFile())
	if err != nil {
		return cfg, errors.Wrapf(err, errors.ErrInvalidInput,
			"cannot read project config %s", l.ConfigFile()).
			WithDetail("path", l.ConfigFile())
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, errors.ErrInvalidInput,
			"malformed project config %s", l.ConfigFile()).
			WithDetail("path", l.ConfigFile())
	}

	return cfg, nil
}
