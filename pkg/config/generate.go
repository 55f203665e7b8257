package config

import (
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/rla/pkg/errors"
)

// Render encodes the effective settings as TOML
func Render(s *Settings) (string, error) {
	out, err := toml.Marshal(s)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to encode settings")
	}
	return string(out), nil
}

// GenerateConfigContent returns a starter config.toml: the embedded
// defaults with every assignment commented out.
func GenerateConfigContent() string {
	return commentOutConfigValues(DefaultsContent())
}

func commentOutConfigValues(content string) string {
	lines := strings.Split(content, "\n")
	result := make([]string, 0, len(lines))

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "", strings.HasPrefix(trimmed, "#"):
			result = append(result, line)
		case strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]"):
			result = append(result, line)
		default:
			result = append(result, "# "+line)
		}
	}

	return strings.Join(result, "\n")
}
