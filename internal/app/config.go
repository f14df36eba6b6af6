package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration decodes "45s"-style YAML strings into a time.Duration.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// Config holds runtime wiring options. Zero values are filled in by
// Defaults; a YAML config file and command-line flags override them.
type Config struct {
	Home     string   `yaml:"home"`      // state directory, e.g. $HOME/.packsync
	RelayURL string   `yaml:"relay_url"` // relay base URL; empty means in-process bus
	Topic    string   `yaml:"topic"`     // sync topic this node participates in
	Profile  string   `yaml:"profile"`   // cadence profile: normal, red, low-power, auto
	Poll     Duration `yaml:"poll"`      // relay poll interval; 0 means the client default
	LogLevel string   `yaml:"log_level"` // logrus level name
}

// Defaults returns the baseline configuration.
func Defaults() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		Home:     filepath.Join(home, ".packsync"),
		Topic:    "packsync",
		Profile:  "normal",
		LogLevel: "info",
	}
}

// Load reads the YAML config at path over the defaults. A missing file is
// not an error; the defaults stand.
func Load(path string) (Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
