// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jeranaias/askdesk/internal/logging"
	"github.com/jeranaias/askdesk/internal/storage"
	"github.com/jeranaias/askdesk/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete askdesk configuration.
type Config struct {
	API     APIConfig     `toml:"api" json:"api"`
	Storage StorageConfig `toml:"storage" json:"storage"`
	UI      UIConfig      `toml:"ui" json:"ui"`
	Log     LogConfig     `toml:"log" json:"log"`
}

// APIConfig describes the answer backend.
type APIConfig struct {
	// BaseURL is the backend origin; questions go to {base_url}/retrieve/.
	BaseURL string `toml:"base_url" json:"base_url"`

	// TimeoutSecs bounds one question, including any pacing wait.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`

	// RequestsPerMinute paces questions client-side. 0 disables.
	RequestsPerMinute int `toml:"requests_per_minute" json:"requests_per_minute"`
}

// StorageConfig selects where chat sessions are kept.
type StorageConfig struct {
	// Backend is one of file, sqlite, memory.
	Backend string `toml:"backend" json:"backend"`

	// Dir is the storage directory. Empty means <data dir>/storage.
	Dir string `toml:"dir" json:"dir"`

	// Namespace prefixes the storage key ("<namespace>_chat_sessions").
	Namespace string `toml:"namespace" json:"namespace"`

	// MaxSessions caps stored sessions. 0 = unlimited.
	MaxSessions int `toml:"max_sessions" json:"max_sessions"`
}

// UIConfig holds presentation settings shared by the TUI and REPL.
type UIConfig struct {
	Title          string   `toml:"title" json:"title"`
	Subtitle       string   `toml:"subtitle" json:"subtitle"`
	Welcome        string   `toml:"welcome" json:"welcome"`
	Placeholder    string   `toml:"placeholder" json:"placeholder"`
	Markdown       bool     `toml:"markdown" json:"markdown"`
	AltScreen      bool     `toml:"alt_screen" json:"alt_screen"`
	WordWrap       int      `toml:"word_wrap" json:"word_wrap"`
	StarterPrompts []string `toml:"starter_prompts" json:"starter_prompts"`
}

// LogConfig configures the log file.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" json:"level"`

	// File is the log path. Empty means <data dir>/askdesk.log.
	File string `toml:"file" json:"file"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	DefaultBaseURL     = "http://localhost:8000"
	DefaultTimeoutSecs = 30
	DefaultLogLevel    = "info"
	DefaultWordWrap    = 80
)

// DefaultStarterPrompts are shown when a conversation is empty.
var DefaultStarterPrompts = []string{
	"What are the hostel facilities at VIT Chennai?",
	"Tell me about the placement process",
	"What clubs and organizations are available?",
	"How do I register for courses?",
	"What are the library timings?",
	"Explain the grading system",
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:     DefaultBaseURL,
			TimeoutSecs: DefaultTimeoutSecs,
		},
		Storage: StorageConfig{
			Backend:     storage.KindFile,
			Namespace:   storage.DefaultNamespace,
			MaxSessions: storage.DefaultMaxSessions,
		},
		UI: UIConfig{
			Title:          "VIT Chennai AI Assistant",
			Subtitle:       "Your smart college companion",
			Welcome:        "Ask me anything about VIT Chennai - I'm here to help!",
			Placeholder:    "Ask anything about VIT Chennai...",
			Markdown:       true,
			AltScreen:      true,
			WordWrap:       DefaultWordWrap,
			StarterPrompts: append([]string(nil), DefaultStarterPrompts...),
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// HomeEnv relocates the data directory.
const HomeEnv = "ASKDESK_HOME"

// Dir returns the askdesk data directory (~/.askdesk unless ASKDESK_HOME is set).
func Dir() (string, error) {
	if home := os.Getenv(HomeEnv); home != "" {
		return home, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(userHome, ".askdesk"), nil
}

// Path returns the default config file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// StorageDir returns the resolved storage directory.
func (c *Config) StorageDir() (string, error) {
	if c.Storage.Dir != "" {
		return expandHome(c.Storage.Dir)
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "storage"), nil
}

// LogFile returns the resolved log file path.
func (c *Config) LogFile() (string, error) {
	if c.Log.File != "" {
		return expandHome(c.Log.File)
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "askdesk.log"), nil
}

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSecs) * time.Second
}

func expandHome(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load builds the configuration from defaults, the config file at path, and
// the environment. An empty path uses the default location, where a missing
// file is not an error; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return nil, err
		}
		path = p
	}

	if err := LoadTOML(cfg, path); err != nil {
		if !errors.Is(err, os.ErrNotExist) || explicit {
			return nil, err
		}
	}

	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes path over cfg. Keys absent from the file keep their
// current values.
func LoadTOML(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("config file %s: %w", path, os.ErrNotExist)
		}
		return fmt.Errorf("failed to decode TOML file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("config file %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// LoadDotEnv loads KEY=value pairs from files (default ".env") into the
// process environment without overriding variables that are already set.
// Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// fillDefaults restores values that may not be left empty.
func (c *Config) fillDefaults() {
	defaults := Default()

	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaults.API.BaseURL
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = defaults.Storage.Backend
	}
	c.Storage.Backend = strings.ToLower(c.Storage.Backend)
	if strings.TrimSpace(c.Storage.Namespace) == "" {
		c.Storage.Namespace = defaults.Storage.Namespace
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	c.Log.Level = strings.ToLower(c.Log.Level)
	if c.UI.Title == "" {
		c.UI.Title = defaults.UI.Title
	}
	if c.UI.Placeholder == "" {
		c.UI.Placeholder = defaults.UI.Placeholder
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Encode renders cfg as TOML.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes cfg to path as TOML with 0600 permissions.
func Save(cfg *Config, path string) error {
	data, err := cfg.Encode()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.WriteString("# askdesk configuration file\n")
	buf.WriteString("# Environment variables (ASKDESK_*) and flags override these values.\n\n")
	buf.Write(data)

	if err := util.WritePrivateFile(path, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// String returns the TOML form of the config.
func (c *Config) String() string {
	data, err := c.Encode()
	if err != nil {
		return err.Error()
	}
	return string(data)
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.UI.StarterPrompts = append([]string(nil), c.UI.StarterPrompts...)
	return &clone
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns ValidateErrors when
// anything is wrong.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if u, err := url.Parse(c.API.BaseURL); err != nil {
		errs = append(errs, ValidationError{Field: "api.base_url", Message: fmt.Sprintf("invalid URL: %v", err)})
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, ValidationError{Field: "api.base_url", Message: fmt.Sprintf("scheme must be http or https, got %q", u.Scheme)})
	} else if u.Host == "" {
		errs = append(errs, ValidationError{Field: "api.base_url", Message: "missing host"})
	}

	if c.API.TimeoutSecs <= 0 {
		errs = append(errs, ValidationError{Field: "api.timeout_secs", Message: "must be positive"})
	}
	if c.API.RequestsPerMinute < 0 {
		errs = append(errs, ValidationError{Field: "api.requests_per_minute", Message: "must be 0 (disabled) or positive"})
	}

	if !storage.ValidKind(c.Storage.Backend) {
		errs = append(errs, ValidationError{
			Field:   "storage.backend",
			Message: fmt.Sprintf("invalid backend '%s', must be one of: %s", c.Storage.Backend, strings.Join(storage.Kinds, ", ")),
		})
	}
	if strings.ContainsAny(c.Storage.Namespace, `/\`) {
		errs = append(errs, ValidationError{Field: "storage.namespace", Message: "must not contain path separators"})
	}
	if c.Storage.MaxSessions < 0 {
		errs = append(errs, ValidationError{Field: "storage.max_sessions", Message: "must be 0 (unlimited) or positive"})
	}

	if c.UI.WordWrap < 0 {
		errs = append(errs, ValidationError{Field: "ui.word_wrap", Message: "must not be negative"})
	}

	if !logging.ValidLevel(c.Log.Level) {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
