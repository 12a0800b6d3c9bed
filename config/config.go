package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

type SystemConfig struct {
	DataDirectory string `toml:"data_directory"`
}

type AzureConfig struct {
	Endpoint   string `toml:"endpoint"`
	APIVersion string `toml:"api_version"`
	Deployment string `toml:"deployment"`
}

type OllamaConfig struct {
	Host         string `toml:"host"`
	DefaultModel string `toml:"default_model"`
}

type AnthropicConfig struct {
	Model string `toml:"model"`
}

type SearchConfig struct {
	Enabled             bool   `toml:"enabled"`
	MaxResults          int    `toml:"max_results"`
	Region              string `toml:"region"`
	NewsSearch          bool   `toml:"news_search"`
	MaxQueryRefinements int    `toml:"max_query_refinements"`
	StructuredOutput    bool   `toml:"structured_output"`
	DecisionMode        string `toml:"decision_mode"`
	IncludeCitations    bool   `toml:"include_citations"`
}

type SecurityConfig struct {
	Method     string `toml:"method"` // "plaintext" or "ssh_key"
	SSHKeyPath string `toml:"ssh_key_path,omitempty"`
}

type UserConfig struct {
	Backend             string          `toml:"backend"`
	Azure               AzureConfig     `toml:"azure"`
	Anthropic           AnthropicConfig `toml:"anthropic"`
	Ollama              OllamaConfig    `toml:"ollama"`
	Search              SearchConfig    `toml:"search"`
	Security            SecurityConfig  `toml:"security"`
	DefaultSystemPrompt string          `toml:"default_system_prompt,omitempty"`
}

// Config is the resolved runtime configuration: system config, user config
// and environment overrides merged, with credentials loaded.
type Config struct {
	DataDirectory string

	Backend             string
	Azure               AzureConfig
	AnthropicModel      string
	OllamaHost          string
	OllamaModel         string
	DefaultSystemPrompt string
	Search              SearchConfig

	SecurityMethod  SecurityMethod
	SSHKeyPath      string
	CredentialStore *CredentialStore

	Keybindings *KeyBindingsConfig
}

var Debug = false
var DebugLog *log.Logger

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

// APIKey returns the stored credential for a backend, with environment
// variables taking precedence.
func (c *Config) APIKey(backend string) string {
	switch backend {
	case "azure_openai":
		if key := os.Getenv("KAIWA_AZURE_API_KEY"); key != "" {
			return key
		}
	case "anthropic":
		if key := os.Getenv("KAIWA_ANTHROPIC_API_KEY"); key != "" {
			return key
		}
	}
	if c.CredentialStore != nil {
		return c.CredentialStore.Get(backend)
	}
	return ""
}

func (c *Config) applyEnvOverrides() {
	if dataDir := os.Getenv("KAIWA_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
	if backend := os.Getenv("KAIWA_BACKEND"); backend != "" {
		c.Backend = backend
	}
	if endpoint := os.Getenv("KAIWA_AZURE_ENDPOINT"); endpoint != "" {
		c.Azure.Endpoint = endpoint
	}
	if version := os.Getenv("KAIWA_AZURE_API_VERSION"); version != "" {
		c.Azure.APIVersion = version
	}
	if deployment := os.Getenv("KAIWA_AZURE_DEPLOYMENT"); deployment != "" {
		c.Azure.Deployment = deployment
	}
	if model := os.Getenv("KAIWA_ANTHROPIC_MODEL"); model != "" {
		c.AnthropicModel = model
	}
	if host := os.Getenv("KAIWA_OLLAMA_HOST"); host != "" {
		c.OllamaHost = host
	}
	if model := os.Getenv("KAIWA_OLLAMA_MODEL"); model != "" {
		c.OllamaModel = model
	}
}

func CheckDebug() bool {
	debug := os.Getenv("KAIWA_DEBUG")
	return debug == "true" || debug == "1"
}

func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	// Create debug log with secure permissions (0600 - may contain sensitive debug info)
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started (KAIWA_DEBUG=%s) ===", os.Getenv("KAIWA_DEBUG"))
	DebugLog.Printf("Log path: %s", logPath)
}

func Load() (*Config, error) {
	defaults := DefaultUserConfig()
	cfg := &Config{
		DataDirectory:       "~/.local/share/kaiwa",
		Backend:             defaults.Backend,
		Azure:               defaults.Azure,
		AnthropicModel:      defaults.Anthropic.Model,
		OllamaHost:          defaults.Ollama.Host,
		OllamaModel:         defaults.Ollama.DefaultModel,
		Search:              defaults.Search,
		DefaultSystemPrompt: defaults.DefaultSystemPrompt,
		SecurityMethod:      SecurityPlainText,
	}

	systemCfg, err := LoadSystemConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load system config: %w", err)
	}
	cfg.DataDirectory = systemCfg.DataDirectory

	if dataDir := os.Getenv("KAIWA_DATA_DIR"); dataDir != "" {
		cfg.DataDirectory = dataDir
	}

	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to set data directory permissions: %w", err)
	}

	userCfg, err := LoadUserConfig(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}
	cfg.Backend = userCfg.Backend
	cfg.Azure = userCfg.Azure
	cfg.AnthropicModel = userCfg.Anthropic.Model
	cfg.OllamaHost = userCfg.Ollama.Host
	cfg.OllamaModel = userCfg.Ollama.DefaultModel
	cfg.Search = userCfg.Search
	cfg.DefaultSystemPrompt = userCfg.DefaultSystemPrompt
	if userCfg.Security.Method != "" {
		cfg.SecurityMethod = SecurityMethod(userCfg.Security.Method)
	}
	cfg.SSHKeyPath = ExpandPath(userCfg.Security.SSHKeyPath)

	cfg.applyEnvOverrides()

	cfg.CredentialStore = NewCredentialStore(cfg.SecurityMethod, cfg.SSHKeyPath)
	if err := cfg.CredentialStore.Load(dataDir); err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}

	cfg.Keybindings, err = LoadKeybindings(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load keybindings: %w", err)
	}

	return cfg, nil
}
