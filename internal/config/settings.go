package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/fpt/contextfs/internal/infra"
	"github.com/fpt/contextfs/internal/repository"
	pkgLogger "github.com/fpt/contextfs/pkg/logger"
)

// Default maximum iterations for agents
const DefaultAgentMaxIterations = 30

// Default per-call output budget for the view tool, in bytes
const DefaultViewMaxBytes = 32 * 1024

// Settings represents the main application settings
type Settings struct {
	LLM     LLMSettings    `yaml:"llm"`
	Agent   AgentSettings  `yaml:"agent"`
	View    ViewSettings   `yaml:"view,omitempty"`
	Sources SourceSettings `yaml:"sources,omitempty"`

	// Repository for persistence (nil for in-memory only)
	settingsRepository repository.SettingsRepository `yaml:"-"`
}

// LLMSettings contains LLM client configuration
type LLMSettings struct {
	Backend   string `yaml:"backend"`              // "anthropic" or "openai"
	Model     string `yaml:"model"`                // model name
	MaxTokens int    `yaml:"max_tokens,omitempty"` // maximum tokens for model responses (0 = use model default)
}

// AgentSettings contains agent behavior configuration
type AgentSettings struct {
	MaxIterations int    `yaml:"max_iterations"`
	LogLevel      string `yaml:"log_level"`
}

// ViewSettings contains view tool configuration
type ViewSettings struct {
	MaxBytes int `yaml:"max_bytes,omitempty"` // per-call output budget (0 = default)
}

// SourceSettings configures the content sources mounted into the virtual filesystem
type SourceSettings struct {
	AttachmentsDir string `yaml:"attachments_dir,omitempty"` // directory snapshotted as the attachments mount
	ArchiveDir     string `yaml:"archive_dir,omitempty"`     // directory served as the conversation archive mount
	Summarize      bool   `yaml:"summarize,omitempty"`       // generate attachment descriptions with the model
}

// NewSettings creates new settings with in-memory repository
func NewSettings() *Settings {
	return NewSettingsWithRepository(infra.NewInMemorySettingsRepository())
}

// NewSettingsWithRepository creates new settings with injected repository
func NewSettingsWithRepository(settingsRepository repository.SettingsRepository) *Settings {
	settings := GetDefaultSettings()
	settings.settingsRepository = settingsRepository
	return settings
}

// NewSettingsWithPath creates new settings with file-based repository
func NewSettingsWithPath(configPath string) *Settings {
	repo := infra.NewFileSettingsRepository(configPath)
	return NewSettingsWithRepository(repo)
}

// Load loads settings from the repository
func (s *Settings) Load() error {
	if s.settingsRepository == nil {
		return fmt.Errorf("no settings repository configured")
	}

	data, err := s.settingsRepository.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	if err := yaml.Unmarshal(data, s); err != nil {
		return fmt.Errorf("failed to parse settings: %w", err)
	}

	// Apply defaults for missing fields
	applyDefaults(s)
	return nil
}

// Save saves settings to the repository
func (s *Settings) Save() error {
	if s.settingsRepository == nil {
		return fmt.Errorf("no settings repository configured")
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	return s.settingsRepository.Save(data)
}

// LoadSettings loads application settings from a YAML file
func LoadSettings(configPath string) (*Settings, error) {
	// Create settings with file repository
	settings := NewSettingsWithPath(configPath)

	// If config path is empty, search for existing settings file
	if configPath == "" {
		foundPath, _ := settings.settingsRepository.FindSettingsFile()
		if foundPath == "" {
			// No settings file found, create default one and return defaults
			return createDefaultSettingsFile()
		}
	}

	// Try to load settings
	err := settings.Load()
	if err != nil {
		// If file doesn't exist and a specific path was provided, create it
		if configPath != "" {
			createdSettings, _ := createSettingsFileAtPath(configPath)
			return createdSettings, nil
		}
		// Otherwise return defaults
		return GetDefaultSettings(), nil
	}

	return settings, nil
}

// GetDefaultSettings returns default application settings
func GetDefaultSettings() *Settings {
	return &Settings{
		LLM: LLMSettings{
			Backend:   "anthropic",
			Model:     "claude-sonnet-4-20250514",
			MaxTokens: 0, // 0 = use model-specific defaults
		},
		Agent: AgentSettings{
			MaxIterations: DefaultAgentMaxIterations,
			LogLevel:      "info",
		},
		View: ViewSettings{
			MaxBytes: DefaultViewMaxBytes,
		},
	}
}

// applyDefaults fills in missing fields with default values
func applyDefaults(settings *Settings) {
	defaults := GetDefaultSettings()

	// Apply LLM defaults
	if settings.LLM.Backend == "" {
		settings.LLM.Backend = defaults.LLM.Backend
	}
	if settings.LLM.Model == "" {
		settings.LLM.Model = defaults.LLM.Model
	}

	// Apply Agent defaults
	if settings.Agent.MaxIterations == 0 {
		settings.Agent.MaxIterations = defaults.Agent.MaxIterations
	}
	if settings.Agent.LogLevel == "" {
		settings.Agent.LogLevel = defaults.Agent.LogLevel
	}

	// Apply View defaults
	if settings.View.MaxBytes == 0 {
		settings.View.MaxBytes = defaults.View.MaxBytes
	}
}

// ValidateSettings validates the settings configuration
func ValidateSettings(settings *Settings) error {
	// Validate LLM settings
	if settings.LLM.Backend != "anthropic" && settings.LLM.Backend != "claude" && settings.LLM.Backend != "openai" {
		return fmt.Errorf("unsupported LLM backend: %s (must be 'anthropic' or 'openai')", settings.LLM.Backend)
	}

	if settings.LLM.Model == "" {
		return fmt.Errorf("LLM model is required")
	}

	if settings.LLM.Backend == "anthropic" || settings.LLM.Backend == "claude" {
		// Check environment variable for API key
		if os.Getenv("ANTHROPIC_API_KEY") == "" {
			return fmt.Errorf("Anthropic API key is required (set ANTHROPIC_API_KEY environment variable)")
		}
	}

	if settings.LLM.Backend == "openai" {
		// Check environment variable for API key
		if os.Getenv("OPENAI_API_KEY") == "" {
			return fmt.Errorf("OpenAI API key is required (set OPENAI_API_KEY environment variable)")
		}
	}

	// Validate Agent settings
	if settings.Agent.MaxIterations <= 0 {
		return fmt.Errorf("max_iterations must be positive")
	}

	if settings.View.MaxBytes < 0 {
		return fmt.Errorf("view max_bytes must not be negative")
	}

	return nil
}

// createDefaultSettingsFile creates a default settings.yaml file in ~/.contextfs/
func createDefaultSettingsFile() (*Settings, error) {
	// Determine where to create the file (prefer home directory)
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return GetDefaultSettings(), nil // Fall back to defaults without file creation
	}

	settingsPath := filepath.Join(homeDir, ".contextfs", "settings.yaml")
	return createSettingsFileAtPath(settingsPath)
}

// createSettingsFileAtPath creates a default settings file at the specified path
func createSettingsFileAtPath(settingsPath string) (*Settings, error) {
	// Create settings with file repository
	settings := NewSettingsWithPath(settingsPath)

	// Save default settings to file
	if err := settings.Save(); err != nil {
		// Return defaults without repository if saving fails
		return GetDefaultSettings(), nil
	}

	// Log success message
	pkgLogger.NewComponentLogger("settings").InfoWithIntention(pkgLogger.IntentionConfig, "Created default settings file", "path", settingsPath)
	pkgLogger.NewComponentLogger("settings").InfoWithIntention(pkgLogger.IntentionStatus, "You can edit this file to customize your configuration")

	return settings, nil
}
