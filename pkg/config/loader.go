package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/rla/pkg/errors"
	"github.com/arthur-debert/rla/pkg/logging"
)

// EnvPrefix is the prefix of environment overrides, e.g. RLA_TOOLS_JAVA
const EnvPrefix = "RLA_"

// UserConfigPath returns the location of the user's config.toml
func UserConfigPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "rla", "config.toml")
	}
	return filepath.Join(xdg.ConfigHome, "rla", "config.toml")
}

// Load reads the settings from the default user config location
func Load() (*Settings, error) {
	return LoadFrom(UserConfigPath())
}

// LoadFrom layers embedded defaults, the TOML file at userPath (skipped when
// absent) and RLA_ environment variables, then decodes the result.
func LoadFrom(userPath string) (*Settings, error) {
	logger := logging.GetLogger("config")

	merged := getSystemDefaults()

	if userPath != "" {
		if _, err := os.Stat(userPath); err == nil {
			tempK := koanf.New(".")
			if err := tempK.Load(file.Provider(userPath), toml.Parser()); err != nil {
				return nil, errors.Wrapf(err, errors.ErrConfigParse,
					"failed to load user config from %s", userPath)
			}
			mergeMaps(merged, tempK.Raw())
			logger.Debug().Str("path", userPath).Msg("Loaded user config")
		}
	}

	tempK := koanf.New(".")
	if err := tempK.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
	}
	mergeMaps(merged, tempK.Raw())

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(merged, "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load merged config")
	}

	var s Settings
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &s,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &s, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	if s.Concurrency.Workers < 0 {
		return nil, errors.Newf(errors.ErrConfigParse,
			"concurrency.workers must not be negative, got %d", s.Concurrency.Workers)
	}

	return &s, nil
}

// envKey maps RLA_GIT_COMMIT_MESSAGE to git.commit_message. Only the first
// underscore separates section from key.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}

func getSystemDefaults() map[string]interface{} {
	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return map[string]interface{}{}
	}
	return k.Raw()
}

func mergeMaps(dest, src map[string]interface{}) {
	for key, srcVal := range src {
		destVal, destOk := dest[key]
		if !destOk {
			dest[key] = srcVal
			continue
		}

		if srcMap, srcOk := srcVal.(map[string]interface{}); srcOk {
			if destMap, destOk := destVal.(map[string]interface{}); destOk {
				mergeMaps(destMap, srcMap)
				continue
			}
		}

		dest[key] = srcVal
	}
}
