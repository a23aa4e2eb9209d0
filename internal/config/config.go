package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"datetime/internal/strftime"
)

const (
	defaultListen         = "127.0.0.1:8080"
	defaultLogLevel       = "info"
	defaultTemplate       = strftime.TemplateISO8601
	defaultSchedule       = "* * * * *"
	defaultMaxOccurrences = 1000
)

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// Template is the default strftime template used when a request or CLI
	// invocation names none.
	Template string `yaml:"template" json:"template"`

	// Layouts are named templates, addressable from the CLI (-layout) and the
	// API (?layout=). They extend the builtin names (iso8601, ctime, rfc822,
	// rfc822z, rfc3339) and may shadow them.
	Layouts map[string]string `yaml:"layouts" json:"layouts"`

	// Schedule is a cron-style spec (e.g. "*/15 * * * *") for repeated
	// rendering.
	Schedule string `yaml:"schedule" json:"schedule"`

	// MaxOccurrences caps RRULE expansion.
	MaxOccurrences int `yaml:"max_occurrences" json:"max_occurrences"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:         defaultListen,
		LogLevel:       defaultLogLevel,
		Template:       defaultTemplate,
		Layouts:        map[string]string{},
		Schedule:       defaultSchedule,
		MaxOccurrences: defaultMaxOccurrences,
		BasicAuth:      nil,
	}
}

// Normalize fills in missing/zero values with defaults so that partially
// filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
		// ok
	default:
		c.LogLevel = defaultLogLevel
	}
	if c.Template == "" {
		c.Template = defaultTemplate
	}
	if c.Layouts == nil {
		c.Layouts = map[string]string{}
	}
	if c.Schedule == "" {
		c.Schedule = defaultSchedule
	}
	if c.MaxOccurrences <= 0 {
		c.MaxOccurrences = defaultMaxOccurrences
	}
}

// Validate compiles the default template and every named layout so that
// template errors surface at load time.
func (c *Config) Validate() error {
	if _, err := strftime.Compile(c.Template); err != nil {
		return fmt.Errorf("config: template %q: %w", c.Template, err)
	}
	for name, tpl := range c.Layouts {
		if name == "" {
			return errors.New("config: layout with empty name")
		}
		if _, err := strftime.Compile(tpl); err != nil {
			return fmt.Errorf("config: layout %q: %w", name, err)
		}
	}
	return nil
}

// CompiledLayouts returns the builtin layouts merged with the configured
// ones. Call Validate first; invalid templates are skipped here.
func (c *Config) CompiledLayouts() map[string]*strftime.Layout {
	out := make(map[string]*strftime.Layout, len(strftime.Named)+len(c.Layouts))
	for name, l := range strftime.Named {
		out[name] = l
	}
	for name, tpl := range c.Layouts {
		if l, err := strftime.Compile(tpl); err == nil {
			out[name] = l
		}
	}
	return out
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults and validate templates
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".datetime-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
