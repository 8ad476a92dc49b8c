package profile

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed bigfinish.yaml
var defaultProfile []byte

// Default returns the built-in BigFinish profile.
func Default() (Profile, error) {
	return Parse(defaultProfile)
}

// Load reads a profile override from path, or the built-in profile when path
// is empty.
func Load(path string) (Profile, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return Default()
	}

	content, err := os.ReadFile(trimmed)
	if err != nil {
		return Profile{}, fmt.Errorf("read site profile: %w", err)
	}

	p, err := Parse(content)
	if err != nil {
		return Profile{}, fmt.Errorf("%s: %w", filepath.Base(trimmed), err)
	}
	return p, nil
}

func Parse(content []byte) (Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(content, &p); err != nil {
		return Profile{}, fmt.Errorf("decode site profile: %w", err)
	}
	if err := p.normalizeAndValidate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}
