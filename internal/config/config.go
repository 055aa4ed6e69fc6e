package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/quickterm/internal/geometry"
)

// Config is the immutable quickterm configuration, constructed once at
// startup and passed to the components that need it.
type Config struct {
	// Menu is the picker command template (e.g. "rofi -dmenu -p quickterm").
	// Empty means auto-detect a menu program in PATH.
	Menu string `yaml:"menu,omitempty"`

	// Term is the terminal emulator used to spawn shell windows. Either a
	// known emulator name (see internal/terminal) or a full command template
	// containing the {command} placeholder.
	Term string `yaml:"term"`

	// Position anchors quickterm windows to the top or bottom workspace edge.
	Position string `yaml:"position"`

	// Ratio is the default fraction of workspace height a shell occupies
	// before its own ratio has been learned. Must be in (0, 1).
	Ratio float64 `yaml:"ratio"`

	// History overrides the shell-selection history path. Empty means the
	// default under the user cache directory.
	History string `yaml:"history,omitempty"`

	// Shells maps shell names to the interactive command run inside the
	// terminal (e.g. python: "python3").
	Shells map[string]string `yaml:"shells"`
}

// DefaultConfig returns the built-in configuration used when no config file
// exists or the file is invalid.
func DefaultConfig() *Config {
	return &Config{
		Term:     "alacritty",
		Position: string(geometry.PositionTop),
		Ratio:    0.25,
		Shells: map[string]string{
			"shell": defaultShell(),
		},
	}
}

func defaultShell() string {
	if sh := strings.TrimSpace(os.Getenv("SHELL")); sh != "" {
		return sh
	}
	return "sh"
}

// DefaultConfigPath returns ~/.config/quickterm/config.yaml.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "quickterm", "config.yaml"), nil
}

// Load reads the configuration from the standard location. A missing file is
// not an error and yields the defaults.
func Load() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads and validates the configuration at path. Fields absent
// from the file keep their default values.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configured values for internal consistency.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Term) == "" {
		return fmt.Errorf("term must not be empty")
	}
	switch geometry.Position(c.Position) {
	case geometry.PositionTop, geometry.PositionBottom:
	default:
		return fmt.Errorf("position must be %q or %q, got %q",
			geometry.PositionTop, geometry.PositionBottom, c.Position)
	}
	if c.Ratio <= 0 || c.Ratio >= 1 {
		return fmt.Errorf("ratio must be between 0 and 1 exclusive, got %v", c.Ratio)
	}
	if len(c.Shells) == 0 {
		return fmt.Errorf("at least one shell must be configured")
	}
	for name, command := range c.Shells {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("shell names must not be empty")
		}
		if strings.TrimSpace(command) == "" {
			return fmt.Errorf("shell %q has an empty command", name)
		}
	}
	return nil
}

// HasShell reports whether name is a configured shell.
func (c *Config) HasShell(name string) bool {
	_, ok := c.Shells[name]
	return ok
}

// ShellNames returns the configured shell names in sorted order.
func (c *Config) ShellNames() []string {
	names := make([]string, 0, len(c.Shells))
	for name := range c.Shells {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WindowPosition returns the configured anchor edge.
func (c *Config) WindowPosition() geometry.Position {
	return geometry.Position(c.Position)
}
