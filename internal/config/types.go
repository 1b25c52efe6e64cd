package config

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int            `yaml:"port"`
	Env            string         `yaml:"env"` // "development" | "production"
	AllowedOrigins []string       `yaml:"allowed_origins"`
	Database       DatabaseConfig `yaml:"database"`
	Paths          PathsConfig    `yaml:"paths"`
	AI             AIConfig       `yaml:"ai"`
	Reader         ReaderConfig   `yaml:"reader"`
}

// DatabaseConfig selects the persistent store backend.
// SQLite is the default; MySQL is available for shared deployments.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite" | "mysql"
	Path   string `yaml:"path"`   // sqlite file path
	DSN    string `yaml:"dsn"`    // mysql DSN
}

type PathsConfig struct {
	Logs string `yaml:"logs"`
	Data string `yaml:"data"`
}

// AIConfig lists generation providers and per-operation model assignments.
type AIConfig struct {
	Providers       []AIProvider       `yaml:"providers"`
	TranscribeModel *AIModelAssignment `yaml:"transcribe_model,omitempty"`
	SolveModel      *AIModelAssignment `yaml:"solve_model,omitempty"`
	SuggestModel    *AIModelAssignment `yaml:"suggest_model,omitempty"`
	SpeechModel     *AIModelAssignment `yaml:"speech_model,omitempty"`
	ImageModel      *AIModelAssignment `yaml:"image_model,omitempty"`
}

// AIModelAssignment pins one pipeline operation to a provider and model.
type AIModelAssignment struct {
	ProviderID string `yaml:"provider_id"`
	Model      string `yaml:"model"`
}

type AIProvider struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Type         string `yaml:"type"` // Gemini | OpenAI | OpenAI-Compatible | Anthropic
	APIKey       string `yaml:"api_key"`
	Endpoint     string `yaml:"endpoint,omitempty"`
	DefaultModel string `yaml:"default_model"`
	Enabled      bool   `yaml:"enabled"`
}

// ReaderConfig tunes the processing pipeline.
type ReaderConfig struct {
	GenerateIllustrations bool   `yaml:"generate_illustrations"`
	RelatedTopicLimit     int    `yaml:"related_topic_limit"`
	HistoryTitleLength    int    `yaml:"history_title_length"`
	SpeechVoice           string `yaml:"speech_voice"`
}
