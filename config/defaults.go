package config

func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		DataDirectory: "~/.local/share/kaiwa",
	}
}

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		Backend: "azure_openai",
		Azure: AzureConfig{
			APIVersion: "2024-02-01",
			Deployment: "gpt-35-turbo",
		},
		Anthropic: AnthropicConfig{
			Model: "claude-sonnet-4-5-20250929",
		},
		Ollama: OllamaConfig{
			Host:         "http://localhost:11434",
			DefaultModel: "llama3.1:latest",
		},
		Search: SearchConfig{
			Enabled:             true,
			MaxResults:          3,
			Region:              "jp-ja",
			NewsSearch:          true,
			MaxQueryRefinements: 1,
			StructuredOutput:    true,
			DecisionMode:        "model",
			IncludeCitations:    true,
		},
		Security: SecurityConfig{
			Method: string(SecurityPlainText),
		},
	}
}

func GenerateSystemConfigTemplate() string {
	return `# Kaiwa System Configuration
# Location: ~/.config/kaiwa/settings.toml
# This file uses TOML format: https://toml.io

# Directory where sessions, documents and user config are stored
data_directory = "~/.local/share/kaiwa"
`
}

func GenerateUserConfigTemplate() string {
	return `# Kaiwa User Configuration
# Location: <data_directory>/config.toml
# This file uses TOML format: https://toml.io

# Completion backend: "azure_openai", "ollama" or "anthropic"
backend = "azure_openai"

# Default system prompt for new sessions (optional)
# Example: "You are a helpful coding assistant."
default_system_prompt = ""

[azure]
# Azure OpenAI endpoint, e.g. "https://myresource.openai.azure.com"
# The API key is stored separately in the credential store.
endpoint = ""
api_version = "2024-02-01"
deployment = "gpt-35-turbo"

[anthropic]
# Model for the Anthropic backend
# The API key is stored separately in the credential store.
model = "claude-sonnet-4-5-20250929"

[ollama]
# Ollama server URL for the local backend
host = "http://localhost:11434"
default_model = "llama3.1:latest"

[search]
# Web search settings for the web_search agent
enabled = true
max_results = 3
region = "jp-ja"
news_search = true
max_query_refinements = 1
structured_output = true
# "model" asks the backend whether to search, "heuristic" uses keywords only
decision_mode = "model"
include_citations = true

[security]
# Credential storage: "plaintext" or "ssh_key"
method = "plaintext"
# ssh_key_path = "~/.ssh/id_ed25519"
`
}
