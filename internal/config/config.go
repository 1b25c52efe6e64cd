package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort        = 2390
	defaultEnv         = "development"
	defaultDBDriver    = "sqlite"
	defaultDBFile      = "readaloud.db"
	defaultDataDir     = "data"
	defaultLogsDir     = "logs"
	defaultTopicLimit  = 3
	defaultTitleLength = 48
	defaultSpeechVoice = "Kore"
)

// Load reads the YAML config file, applies defaults and environment overrides.
// A missing file is not an error: defaults plus environment are enough to boot
// a development instance.
func Load(path string) (*AppConfig, error) {
	cfg := &AppConfig{}

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err) && path == DefaultConfigPath:
		// boot on defaults
	default:
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), "development") || strings.EqualFold(strings.TrimSpace(c.Env), "dev")
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Port <= 0 {
		cfg.Port = defaultPort
	}
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = defaultEnv
	}
	if strings.TrimSpace(cfg.Paths.Data) == "" {
		cfg.Paths.Data = defaultDataDir
	}
	if strings.TrimSpace(cfg.Paths.Logs) == "" {
		cfg.Paths.Logs = defaultLogsDir
	}
	if strings.TrimSpace(cfg.Database.Driver) == "" {
		cfg.Database.Driver = defaultDBDriver
	}
	if cfg.Database.Driver == "sqlite" && strings.TrimSpace(cfg.Database.Path) == "" {
		cfg.Database.Path = filepath.Join(cfg.Paths.Data, defaultDBFile)
	}
	if cfg.Reader.RelatedTopicLimit <= 0 {
		cfg.Reader.RelatedTopicLimit = defaultTopicLimit
	}
	if cfg.Reader.HistoryTitleLength <= 0 {
		cfg.Reader.HistoryTitleLength = defaultTitleLength
	}
	if strings.TrimSpace(cfg.Reader.SpeechVoice) == "" {
		cfg.Reader.SpeechVoice = defaultSpeechVoice
	}

	// A bare GOOGLE_API_KEY / GEMINI_API_KEY is enough to run against Gemini
	// without writing a providers block.
	if len(cfg.AI.Providers) == 0 {
		if key := geminiKeyFromEnv(); key != "" {
			cfg.AI.Providers = []AIProvider{{
				ID:           "gemini",
				Name:         "Gemini",
				Type:         "gemini",
				APIKey:       key,
				DefaultModel: "gemini-2.5-flash",
				Enabled:      true,
			}}
		}
	}
	for i := range cfg.AI.Providers {
		p := &cfg.AI.Providers[i]
		if strings.TrimSpace(p.APIKey) == "" && isGeminiType(p.Type) {
			p.APIKey = geminiKeyFromEnv()
		}
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv("READALOUD_PORT")); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			cfg.Port = port
		}
	}
	if v := strings.TrimSpace(os.Getenv("READALOUD_ENV")); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(os.Getenv("READALOUD_DB_PATH")); v != "" {
		cfg.Database.Driver = "sqlite"
		cfg.Database.Path = v
	}
	if v := strings.TrimSpace(os.Getenv("READALOUD_MYSQL_DSN")); v != "" {
		cfg.Database.Driver = "mysql"
		cfg.Database.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv("READALOUD_LOG_DIR")); v != "" {
		cfg.Paths.Logs = v
	}
}

func validate(cfg *AppConfig) error {
	switch cfg.Database.Driver {
	case "sqlite":
		if strings.TrimSpace(cfg.Database.Path) == "" {
			return fmt.Errorf("database.path is required for the sqlite driver")
		}
	case "mysql":
		if strings.TrimSpace(cfg.Database.DSN) == "" {
			return fmt.Errorf("database.dsn is required for the mysql driver")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
	return nil
}

func geminiKeyFromEnv() string {
	if key := strings.TrimSpace(os.Getenv("GOOGLE_API_KEY")); key != "" {
		return key
	}
	return strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
}

func isGeminiType(raw string) bool {
	t := strings.ToLower(strings.TrimSpace(raw))
	return t == "gemini" || t == "google"
}

// ProviderByID returns the enabled provider with the given id, or nil.
func (a AIConfig) ProviderByID(id string) *AIProvider {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	for i := range a.Providers {
		p := a.Providers[i]
		if p.Enabled && strings.TrimSpace(p.ID) == id {
			selected := p
			return &selected
		}
	}
	return nil
}

// FirstEnabledProvider returns the first enabled provider, or nil.
func (a AIConfig) FirstEnabledProvider() *AIProvider {
	for i := range a.Providers {
		if a.Providers[i].Enabled {
			selected := a.Providers[i]
			return &selected
		}
	}
	return nil
}
