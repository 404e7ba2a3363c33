// Package config loads docguard settings from a TOML file, environment
// overrides and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/0xcro3dile/docguard/internal/infrastructure/logging"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Knowledge providers.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Sentence models.
const (
	SentenceModelPunkt = "punkt"
	SentenceModelRegex = "regex"
)

// Config is the full docguard configuration.
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Cloud      CloudConfig      `toml:"cloud"`
	Extraction ExtractionConfig `toml:"extraction"`
	Search     SearchConfig     `toml:"search"`
	Audit      AuditConfig      `toml:"audit"`
	NLP        NLPConfig        `toml:"nlp"`
	Log        LogConfig        `toml:"log"`

	apiKeyFromFile bool
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host       string   `toml:"host"`
	Port       int      `toml:"port"`
	DevOrigins []string `toml:"dev_origins"`
}

// CloudConfig controls the external knowledge service.
type CloudConfig struct {
	DefaultAllow      bool   `toml:"default_allow"`
	Provider          string `toml:"provider"`
	BaseURL           string `toml:"base_url"`
	Model             string `toml:"model"`
	APIKey            string `toml:"api_key"`
	TimeoutSeconds    int    `toml:"timeout_seconds"`
	RequestsPerMinute int    `toml:"requests_per_minute"`
}

// ExtractionConfig controls document extraction.
type ExtractionConfig struct {
	MaxChars      int    `toml:"max_chars"`
	PDFServiceURL string `toml:"pdf_service_url"`
}

// SearchConfig controls file discovery.
type SearchConfig struct {
	Limit int  `toml:"limit"`
	Watch bool `toml:"watch"`
}

// AuditConfig controls the audit store. An empty path keeps records in memory.
type AuditConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// NLPConfig selects the sentence splitter.
type NLPConfig struct {
	SentenceModel string `toml:"sentence_model"`
}

// LogConfig sets the minimum log level.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 48155,
			DevOrigins: []string{
				"http://localhost:5173",
				"http://127.0.0.1:5173",
				"http://localhost:5174",
				"http://127.0.0.1:5174",
				"null",
			},
		},
		Cloud: CloudConfig{
			Provider:          ProviderOpenAI,
			BaseURL:           "https://api.openai.com/v1",
			Model:             "gpt-4o",
			TimeoutSeconds:    30,
			RequestsPerMinute: 30,
		},
		Extraction: ExtractionConfig{
			MaxChars:      200_000,
			PDFServiceURL: "http://localhost:8081",
		},
		Search: SearchConfig{Limit: 5, Watch: true},
		Audit:  AuditConfig{Enabled: true, Path: "~/.docguard/audit.db"},
		NLP:    NLPConfig{SentenceModel: SentenceModelPunkt},
		Log:    LogConfig{Level: logging.LevelInfo},
	}
}

// Dir returns ~/.docguard.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".docguard"), nil
}

// DefaultPath returns ~/.docguard/config.toml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads path (or the default path when empty), applies environment
// overrides and validates the result. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode TOML file: %w", err)
		}
		cfg.apiKeyFromFile = cfg.Cloud.APIKey != ""
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg.applyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays environment variables onto the file values.
func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("DOCGUARD_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := getenv("DOCGUARD_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Server.Port = n
		} else {
			c.Server.Port = -1
		}
	}
	if v := getenv("DOCGUARD_CLOUD_DEFAULT"); v != "" {
		c.Cloud.DefaultAllow = strings.EqualFold(strings.TrimSpace(v), "true")
	}
	if v := getenv("DOCGUARD_DEV_ORIGINS"); v != "" {
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.Server.DevOrigins = append(c.Server.DevOrigins, o)
			}
		}
	}
	if v := getenv("DOCGUARD_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(getenv, "DOCGUARD_AUDIT_PATH"); ok {
		c.Audit.Path = v
	}
	if v := getenv("DOCGUARD_KNOWLEDGE_PROVIDER"); v != "" {
		c.Cloud.Provider = strings.ToLower(v)
	}
	if v := getenv("OPENAI_API_KEY"); v != "" {
		c.Cloud.APIKey = v
	}
	if v := getenv("OPENAI_BASE_URL"); v != "" {
		c.Cloud.BaseURL = v
	}
	if v := getenv("OPENAI_MODEL"); v != "" {
		c.Cloud.Model = v
	}
}

// lookup treats the literal value "-" as an explicit empty string.
func lookup(getenv func(string) string, key string) (string, bool) {
	v := getenv(key)
	switch v {
	case "":
		return "", false
	case "-":
		return "", true
	}
	return v, true
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// Timeout is the knowledge call timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Cloud.TimeoutSeconds) * time.Second
}

// AuditPath expands a leading ~ in the audit path.
func (c *Config) AuditPath() string {
	p := c.Audit.Path
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

// Save writes the configuration as TOML with 0600 permissions. An API key
// that came from the environment is not persisted.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	out := *cfg
	if !cfg.apiKeyFromFile {
		out.Cloud.APIKey = ""
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	fmt.Fprintln(file, "# docguard configuration file")
	fmt.Fprintln(file, "")

	if err := toml.NewEncoder(file).Encode(out); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ValidationError is one invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors collects every invalid field. It unwraps to ErrInvalid.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

func (e ValidateErrors) Unwrap() error { return ErrInvalid }

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port %d out of range 1-65535", c.Server.Port),
		})
	}
	if c.Cloud.TimeoutSeconds <= 0 {
		errs = append(errs, ValidationError{Field: "cloud.timeout_seconds", Message: "must be positive"})
	}
	if c.Cloud.RequestsPerMinute < 0 {
		errs = append(errs, ValidationError{Field: "cloud.requests_per_minute", Message: "cannot be negative"})
	}
	switch c.Cloud.Provider {
	case ProviderOpenAI, ProviderOllama:
	default:
		errs = append(errs, ValidationError{
			Field:   "cloud.provider",
			Message: fmt.Sprintf("unknown provider '%s', must be one of: openai, ollama", c.Cloud.Provider),
		})
	}
	if c.Extraction.MaxChars <= 0 {
		errs = append(errs, ValidationError{Field: "extraction.max_chars", Message: "must be positive"})
	}
	if c.Search.Limit <= 0 {
		errs = append(errs, ValidationError{Field: "search.limit", Message: "must be positive"})
	}
	switch c.NLP.SentenceModel {
	case SentenceModelPunkt, SentenceModelRegex:
	default:
		errs = append(errs, ValidationError{
			Field:   "nlp.sentence_model",
			Message: fmt.Sprintf("unknown model '%s', must be one of: punkt, regex", c.NLP.SentenceModel),
		})
	}
	if !logging.ValidLevel(c.Log.Level) {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("unknown level '%s', must be one of: DEBUG, INFO, WARN, ERROR", c.Log.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
