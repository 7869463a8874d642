// Package config loads and validates discoread settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// Settings holds every option the tool recognizes. YAML keys match the
// option names the hawaiidisco archive tooling uses.
type Settings struct {
	DBPath             string `yaml:"dbPath"`
	AnthropicAPIKey    string `yaml:"anthropicApiKey"`
	AIModel            string `yaml:"aiModel"`
	NotesFolder        string `yaml:"notesFolder"`
	TagsPrefix         string `yaml:"tagsPrefix"`
	PeriodDays         int    `yaml:"periodDays"`
	IncludeInsight     bool   `yaml:"includeInsight"`
	IncludeTranslation bool   `yaml:"includeTranslation"`
	MaxArticles        int    `yaml:"maxArticles"`
}

// Default returns the settings used when no config file exists.
func Default() Settings {
	return Settings{
		DBPath:             "~/.local/share/hawaiidisco/hawaiidisco.db",
		AnthropicAPIKey:    "",
		AIModel:            "claude-sonnet-4-5-20250929",
		NotesFolder:        "hawaii-disco",
		TagsPrefix:         "hawaiidisco",
		PeriodDays:         7,
		IncludeInsight:     true,
		IncludeTranslation: true,
		MaxArticles:        20,
	}
}

// DefaultPath is where Load looks when no explicit path is given.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "discoread", "config.yaml")
}

// APIKey resolves the Anthropic credential: the config value when set,
// otherwise the ANTHROPIC_API_KEY environment variable.
func (s Settings) APIKey() string {
	if s.AnthropicAPIKey != "" {
		return s.AnthropicAPIKey
	}
	return os.Getenv("ANTHROPIC_API_KEY")
}

// Load reads settings from path, or from DefaultPath when path is empty.
// A missing file yields the defaults; an unreadable or invalid file is an error.
func Load(path string) (Settings, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validate(cfg Settings) error {
	if cfg.DBPath == "" {
		return fmt.Errorf("dbPath is required")
	}
	if cfg.PeriodDays <= 0 {
		return fmt.Errorf("periodDays must be positive, got %d", cfg.PeriodDays)
	}
	if cfg.MaxArticles <= 0 {
		return fmt.Errorf("maxArticles must be positive, got %d", cfg.MaxArticles)
	}
	return nil
}
