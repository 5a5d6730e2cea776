package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrProfileNotFound = errors.New("cli: profile not found")

// Config is the contents of a profile file.
//
//	default: local
//	profiles:
//	  local:
//	    base_url: http://localhost:8080
//	    timeout: 5s
//	    debug: true
//	    headers:
//	      Accept: application/json
type Config struct {
	Default  string             `yaml:"default"`
	Profiles map[string]Profile `yaml:"profiles"`
}

// Profile holds the dispatcher settings of one named target.
type Profile struct {
	BaseURL string            `yaml:"base_url"`
	Headers map[string]string `yaml:"headers"`
	Debug   bool              `yaml:"debug"`
	Timeout string            `yaml:"timeout"`
}

// LoadConfig reads a profile file from disk.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(data, path)
}

// ParseConfig decodes profile data. JSON files are accepted as well since
// JSON is valid YAML.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		ext := strings.ToLower(filepath.Ext(path))
		return nil, fmt.Errorf("failed to parse config (%s): %w", strings.TrimPrefix(ext, "."), err)
	}
	for name, p := range cfg.Profiles {
		if _, err := p.TimeoutDuration(); err != nil {
			return nil, fmt.Errorf("profile %q: %w", name, err)
		}
	}
	return &cfg, nil
}

// Profile resolves name, falling back to the file's default profile. An
// empty name with no default yields the zero Profile.
func (c *Config) Profile(name string) (Profile, error) {
	if c == nil {
		if name != "" {
			return Profile{}, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
		}
		return Profile{}, nil
	}
	if name == "" {
		name = c.Default
	}
	if name == "" {
		return Profile{}, nil
	}
	p, ok := c.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	return p, nil
}

// TimeoutDuration parses Timeout. Bare integers are seconds.
func (p Profile) TimeoutDuration() (time.Duration, error) {
	if p.Timeout == "" {
		return 0, nil
	}
	if d, err := time.ParseDuration(p.Timeout); err == nil {
		return d, nil
	}
	if seconds, err := strconv.Atoi(p.Timeout); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	return 0, fmt.Errorf("invalid timeout %q", p.Timeout)
}
