package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Classifier Classifier `yaml:"classifier"`
	Search     Search     `yaml:"search"`
	Daily      Daily      `yaml:"daily"`
	Generation Generation `yaml:"generation"`
	Ingest     Ingest     `yaml:"ingest"`
	Output     Output     `yaml:"output"`
	Server     Server     `yaml:"server"`
	Logging    Logging    `yaml:"logging"`
}

// Classifier holds the tunable thresholds for category and quality rules.
// The keyword tables themselves are static rule data in internal/classify.
type Classifier struct {
	MinNoteLength   int `yaml:"min_note_length"`
	LongThreshold   int `yaml:"long_threshold"`
	LongerThreshold int `yaml:"longer_threshold"`
	MinQuality      int `yaml:"min_quality"`
	MaxQuality      int `yaml:"max_quality"`
}

// Search holds the relevance weights and diversity caps for topic search.
type Search struct {
	Limit        int     `yaml:"limit"`
	PhraseBonus  float64 `yaml:"phrase_bonus"`
	KeywordBonus float64 `yaml:"keyword_bonus"`
	TagBonus     float64 `yaml:"tag_bonus"`
	ExtractBonus float64 `yaml:"extract_bonus"`
	NoteBonus    float64 `yaml:"note_bonus"`
	DomainCap    int     `yaml:"domain_cap"`
	CategoryCap  int     `yaml:"category_cap"`
}

// Daily holds the daily-session selection knobs.
type Daily struct {
	Count        int `yaml:"count"`
	CooldownDays int `yaml:"cooldown_days"`
	HighTier     int `yaml:"high_tier"`
	MidTier      int `yaml:"mid_tier"`
}

// Generation configures the generative text collaborator.
type Generation struct {
	Provider       string `yaml:"provider"`
	Model          string `yaml:"model"`
	APIKeyEnv      string `yaml:"api_key_env"`
	OllamaURL      string `yaml:"ollama_url"`
	OllamaModel    string `yaml:"ollama_model"`
	MaxTokens      int    `yaml:"max_tokens"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxRetries     int    `yaml:"max_retries"`
	ContextCharCap int    `yaml:"context_char_cap"`
}

type Ingest struct {
	Feeds []Feed `yaml:"feeds"`
}

type Feed struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for braingym.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "braingym")
}

// DataDir returns the XDG data directory for braingym.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "braingym")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/braingym/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'braingym init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// Default returns a Config with built-in defaults and no file overrides.
func Default() *Config {
	cfg, _ := parse(nil)
	return cfg
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Classifier: Classifier{
			MinNoteLength:   20,
			LongThreshold:   500,
			LongerThreshold: 1000,
			MinQuality:      1,
			MaxQuality:      11,
		},
		Search: Search{
			Limit:        10,
			PhraseBonus:  5.0,
			KeywordBonus: 0.5,
			TagBonus:     2.0,
			ExtractBonus: 1.0,
			NoteBonus:    1.5,
			DomainCap:    3,
			CategoryCap:  3,
		},
		Daily: Daily{
			Count:        3,
			CooldownDays: 3,
			HighTier:     8,
			MidTier:      6,
		},
		Generation: Generation{
			Provider:       "anthropic",
			Model:          "claude-sonnet-4-20250514",
			APIKeyEnv:      "ANTHROPIC_API_KEY",
			OllamaURL:      "http://localhost:11434",
			OllamaModel:    "qwen2.5:7b",
			MaxTokens:      4000,
			TimeoutSeconds: 120,
			MaxRetries:     3,
			ContextCharCap: 12000,
		},
		Server:  Server{Port: 8000},
		Logging: Logging{Level: "INFO"},
	}

	if len(data) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
