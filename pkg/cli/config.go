package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

const (
	// DefaultBaseDir is the base configuration directory name
	DefaultBaseDir = ".meetpilot"
	// DefaultConfigFile is the default configuration filename
	DefaultConfigFile = "config.yaml"
)

// Defaults applied to every unset field.
const (
	DefaultListen           = ":8000"
	DefaultLogLevel         = "info"
	DefaultProvider         = "openai"
	DefaultModel            = "gpt-4.1"
	DefaultAgendaModel      = "gpt-4.1-mini"
	DefaultGeminiModel      = "gemini-2.5-flash"
	DefaultTimeout          = "90s"
	DefaultMaxTurns         = 8
	DefaultTranscriptionURL = "wss://api.openai.com/v1/realtime?intent=transcription"
	DefaultSTTModel         = "gpt-4o-mini-transcribe"
	DefaultLanguage         = "en"
	DefaultVAD              = "semantic_vad"
	DefaultEagerness        = "high"
)

// Config is the meetpilot configuration file.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level,omitempty"`

	OpenAI        OpenAIConfig        `yaml:"openai"`
	Gemini        GeminiConfig        `yaml:"gemini,omitempty"`
	Inference     InferenceConfig     `yaml:"inference"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	CORS          CORSConfig          `yaml:"cors,omitempty"`

	// configPath is the path to the config file
	configPath string
}

type OpenAIConfig struct {
	APIKey       string `yaml:"api_key,omitempty"`
	BaseURL      string `yaml:"base_url,omitempty"`
	Organization string `yaml:"organization,omitempty"`
	Project      string `yaml:"project,omitempty"`
}

type GeminiConfig struct {
	APIKey string `yaml:"api_key,omitempty"`
}

// InferenceConfig selects the model behind the analysts and the agenda chat.
type InferenceConfig struct {
	// Provider is openai or gemini.
	Provider string `yaml:"provider,omitempty"`

	// Model serves the live analysts.
	Model string `yaml:"model,omitempty"`

	// AgendaModel serves agenda creation and chat.
	AgendaModel string `yaml:"agenda_model,omitempty"`

	// Timeout bounds one agent run, e.g. "90s".
	Timeout string `yaml:"timeout,omitempty"`

	// MaxTurns bounds the model calls of one agent run.
	MaxTurns int `yaml:"max_turns,omitempty"`
}

// TranscriptionConfig configures the upstream speech-to-text session.
type TranscriptionConfig struct {
	URL       string `yaml:"url,omitempty"`
	Model     string `yaml:"model,omitempty"`
	Language  string `yaml:"language,omitempty"`
	VAD       string `yaml:"vad,omitempty"`
	Eagerness string `yaml:"eagerness,omitempty"`

	// ForwardTranscripts also sends each finalized segment to the client.
	ForwardTranscripts bool `yaml:"forward_transcripts,omitempty"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
}

// DefaultConfigPath returns ~/.meetpilot/config.yaml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, DefaultBaseDir, DefaultConfigFile), nil
}

// LoadConfig reads the config file at path, or the default path when path
// is empty. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := &Config{configPath: path}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	cfg.configPath = path
	cfg.ApplyDefaults()
	return cfg, nil
}

// LoadEnvFiles loads .env style files into the process environment.
// Missing files are skipped; variables already set are kept.
func LoadEnvFiles(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyDefaults fills every unset field.
func (c *Config) ApplyDefaults() {
	setDefault(&c.Listen, DefaultListen)
	setDefault(&c.LogLevel, DefaultLogLevel)
	setDefault(&c.Inference.Provider, DefaultProvider)
	if c.Inference.Provider == "gemini" {
		setDefault(&c.Inference.Model, DefaultGeminiModel)
		setDefault(&c.Inference.AgendaModel, DefaultGeminiModel)
	}
	setDefault(&c.Inference.Model, DefaultModel)
	setDefault(&c.Inference.AgendaModel, DefaultAgendaModel)
	setDefault(&c.Inference.Timeout, DefaultTimeout)
	if c.Inference.MaxTurns <= 0 {
		c.Inference.MaxTurns = DefaultMaxTurns
	}
	setDefault(&c.Transcription.URL, DefaultTranscriptionURL)
	setDefault(&c.Transcription.Model, DefaultSTTModel)
	setDefault(&c.Transcription.Language, DefaultLanguage)
	setDefault(&c.Transcription.VAD, DefaultVAD)
	setDefault(&c.Transcription.Eagerness, DefaultEagerness)
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"*"}
	}
}

func setDefault(field *string, v string) {
	if *field == "" {
		*field = v
	}
}

// ApplyEnv overrides the file values with environment variables.
// lookup is usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	for name, field := range map[string]*string{
		"OPENAI_API_KEY":   &c.OpenAI.APIKey,
		"OPENAI_BASE_URL":  &c.OpenAI.BaseURL,
		"GEMINI_API_KEY":   &c.Gemini.APIKey,
		"MEETPILOT_LISTEN": &c.Listen,
		"LOG_LEVEL":        &c.LogLevel,
	} {
		if v, ok := lookup(name); ok && v != "" {
			*field = v
		}
	}
}

// Validate checks the values that cannot be defaulted. A missing OpenAI
// key is not an error here; the transcription endpoint reports it to the
// client.
func (c *Config) Validate() error {
	switch c.Inference.Provider {
	case "openai":
	case "gemini":
		if c.Gemini.APIKey == "" {
			return errors.New("inference provider gemini requires gemini.api_key")
		}
	default:
		return fmt.Errorf("unknown inference provider %q", c.Inference.Provider)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if _, err := c.InferenceTimeout(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return l, nil
}

// InferenceTimeout parses Inference.Timeout. "0" disables the timeout.
func (c *Config) InferenceTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Inference.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid inference.timeout %q: %w", c.Inference.Timeout, err)
	}
	return d, nil
}

// Save writes the configuration to its path.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.Dir(), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(c.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Path returns the config file path
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the config directory path
func (c *Config) Dir() string {
	return filepath.Dir(c.configPath)
}

// Masked returns a copy with the API keys masked for display.
func (c *Config) Masked() *Config {
	m := *c
	m.OpenAI.APIKey = MaskAPIKey(c.OpenAI.APIKey)
	m.Gemini.APIKey = MaskAPIKey(c.Gemini.APIKey)
	m.CORS.AllowedOrigins = append([]string(nil), c.CORS.AllowedOrigins...)
	return &m
}

// MaskAPIKey masks the API key for display
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
