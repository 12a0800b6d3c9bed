package config

import (
	"fmt"
	"strconv"
)

// UpdateAgentSetting updates a single user-config field by name and persists
// it. This is the business logic layer behind the settings UI.
//
// Recognized fields:
//   - "backend", "system_prompt"
//   - "azure.endpoint", "azure.api_version", "azure.deployment", "azure.apikey"
//   - "anthropic.apikey", "anthropic.model"
//   - "ollama.host", "ollama.model"
//   - "search.enabled", "search.max_results", "search.region",
//     "search.news", "search.refinements", "search.structured",
//     "search.decision_mode", "search.citations"
func UpdateAgentSetting(dataDir, field, value string) error {
	// API keys go to the credential store, not the TOML config.
	switch field {
	case "azure.apikey":
		return updateCredential(dataDir, "azure_openai", value)
	case "anthropic.apikey":
		return updateCredential(dataDir, "anthropic", value)
	}

	cfg, err := LoadUserConfig(dataDir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	switch field {
	case "backend":
		cfg.Backend = value
	case "system_prompt":
		cfg.DefaultSystemPrompt = value
	case "azure.endpoint":
		cfg.Azure.Endpoint = value
	case "azure.api_version":
		cfg.Azure.APIVersion = value
	case "azure.deployment":
		cfg.Azure.Deployment = value
	case "anthropic.model":
		cfg.Anthropic.Model = value
	case "ollama.host":
		cfg.Ollama.Host = value
	case "ollama.model":
		cfg.Ollama.DefaultModel = value
	case "search.enabled":
		cfg.Search.Enabled = value == "true"
	case "search.max_results":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid max_results: %s", value)
		}
		cfg.Search.MaxResults = n
	case "search.region":
		cfg.Search.Region = value
	case "search.news":
		cfg.Search.NewsSearch = value == "true"
	case "search.refinements":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid refinements: %s", value)
		}
		cfg.Search.MaxQueryRefinements = n
	case "search.structured":
		cfg.Search.StructuredOutput = value == "true"
	case "search.decision_mode":
		if value != "model" && value != "heuristic" {
			return fmt.Errorf("invalid decision mode: %s", value)
		}
		cfg.Search.DecisionMode = value
	case "search.citations":
		cfg.Search.IncludeCitations = value == "true"
	default:
		return fmt.Errorf("unknown setting: %s", field)
	}

	if err := SaveUserConfig(cfg, dataDir); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}

// updateCredential stores an API key in the credential store and persists it.
func updateCredential(dataDir, backend, value string) error {
	cfg, err := Load()
	if err != nil {
		return fmt.Errorf("failed to load config for credential update: %w", err)
	}

	if cfg.CredentialStore == nil {
		return fmt.Errorf("credential store unavailable")
	}

	if err := cfg.CredentialStore.Set(backend, value); err != nil {
		return fmt.Errorf("failed to set API key: %w", err)
	}
	if err := cfg.CredentialStore.Save(dataDir); err != nil {
		return fmt.Errorf("failed to persist credentials: %w", err)
	}

	return nil
}
