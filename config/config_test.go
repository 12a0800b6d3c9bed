package config

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/ssh"
)

func TestDefaultUserConfig(t *testing.T) {
	cfg := DefaultUserConfig()

	if cfg.Backend != "azure_openai" {
		t.Errorf("backend = %q", cfg.Backend)
	}
	if cfg.Azure.Deployment != "gpt-35-turbo" {
		t.Errorf("deployment = %q", cfg.Azure.Deployment)
	}
	if cfg.Ollama.Host != "http://localhost:11434" {
		t.Errorf("ollama host = %q", cfg.Ollama.Host)
	}
	if !cfg.Search.Enabled || cfg.Search.MaxResults != 3 || cfg.Search.Region != "jp-ja" {
		t.Errorf("search defaults = %+v", cfg.Search)
	}
	if cfg.Search.DecisionMode != "model" {
		t.Errorf("decision mode = %q", cfg.Search.DecisionMode)
	}
	if cfg.Security.Method != string(SecurityPlainText) {
		t.Errorf("security method = %q", cfg.Security.Method)
	}
}

func TestUserConfigRoundTrip(t *testing.T) {
	dataDir := t.TempDir()

	cfg := DefaultUserConfig()
	cfg.Backend = "ollama"
	cfg.Azure.Endpoint = "https://example.openai.azure.com"
	cfg.Search.Region = "us-en"
	cfg.DefaultSystemPrompt = "be brief"

	if err := SaveUserConfig(cfg, dataDir); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := LoadUserConfig(dataDir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Backend != "ollama" || loaded.Azure.Endpoint != "https://example.openai.azure.com" {
		t.Errorf("loaded = %+v", loaded)
	}
	if loaded.Search.Region != "us-en" || loaded.DefaultSystemPrompt != "be brief" {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestLoadUserConfigCreatesDefault(t *testing.T) {
	dataDir := t.TempDir()

	cfg, err := LoadUserConfig(dataDir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Backend != "azure_openai" {
		t.Errorf("backend = %q", cfg.Backend)
	}
	if !FileExists(filepath.Join(dataDir, "config.toml")) {
		t.Error("default config file not written")
	}
}

func TestUpdateAgentSetting(t *testing.T) {
	dataDir := t.TempDir()

	tests := []struct {
		field string
		value string
		check func(*UserConfig) bool
	}{
		{"backend", "anthropic", func(c *UserConfig) bool { return c.Backend == "anthropic" }},
		{"azure.endpoint", "https://x.openai.azure.com", func(c *UserConfig) bool { return c.Azure.Endpoint == "https://x.openai.azure.com" }},
		{"azure.deployment", "gpt-4o", func(c *UserConfig) bool { return c.Azure.Deployment == "gpt-4o" }},
		{"anthropic.model", "claude-3-5-haiku-latest", func(c *UserConfig) bool { return c.Anthropic.Model == "claude-3-5-haiku-latest" }},
		{"ollama.model", "qwen3:latest", func(c *UserConfig) bool { return c.Ollama.DefaultModel == "qwen3:latest" }},
		{"system_prompt", "short answers", func(c *UserConfig) bool { return c.DefaultSystemPrompt == "short answers" }},
		{"search.enabled", "false", func(c *UserConfig) bool { return !c.Search.Enabled }},
		{"search.max_results", "5", func(c *UserConfig) bool { return c.Search.MaxResults == 5 }},
		{"search.region", "us-en", func(c *UserConfig) bool { return c.Search.Region == "us-en" }},
		{"search.decision_mode", "heuristic", func(c *UserConfig) bool { return c.Search.DecisionMode == "heuristic" }},
	}

	for _, tt := range tests {
		if err := UpdateAgentSetting(dataDir, tt.field, tt.value); err != nil {
			t.Errorf("UpdateAgentSetting(%q, %q) error: %v", tt.field, tt.value, err)
			continue
		}
		cfg, err := LoadUserConfig(dataDir)
		if err != nil {
			t.Fatal(err)
		}
		if !tt.check(cfg) {
			t.Errorf("setting %q not applied", tt.field)
		}
	}
}

func TestUpdateAgentSettingInvalid(t *testing.T) {
	dataDir := t.TempDir()

	invalid := [][2]string{
		{"no_such_field", "x"},
		{"search.max_results", "zero"},
		{"search.max_results", "0"},
		{"search.decision_mode", "coin-flip"},
		{"search.refinements", "-1"},
	}

	for _, tt := range invalid {
		if err := UpdateAgentSetting(dataDir, tt[0], tt[1]); err == nil {
			t.Errorf("UpdateAgentSetting(%q, %q) succeeded, want error", tt[0], tt[1])
		}
	}
}

func TestCredentialStorePlainTextRoundTrip(t *testing.T) {
	dataDir := t.TempDir()

	store := NewCredentialStore(SecurityPlainText, "")
	if err := store.Set("azure_openai", "secret-key"); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(dataDir); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	reloaded := NewCredentialStore(SecurityPlainText, "")
	if err := reloaded.Load(dataDir); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got := reloaded.Get("azure_openai"); got != "secret-key" {
		t.Errorf("credential = %q", got)
	}
	if got := reloaded.Get("anthropic"); got != "" {
		t.Errorf("missing credential = %q, want empty", got)
	}
}

// writeTestSSHKey generates an ed25519 private key at dir/key. A non-empty
// passphrase encrypts the key.
func writeTestSSHKey(t *testing.T, dir, passphrase string) string {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}

	var block *pem.Block
	if passphrase == "" {
		block, err = ssh.MarshalPrivateKey(priv, "")
	} else {
		block, err = ssh.MarshalPrivateKeyWithPassphrase(priv, "", []byte(passphrase))
	}
	if err != nil {
		t.Fatal(err)
	}

	keyPath := filepath.Join(dir, "key")
	if err := os.WriteFile(keyPath, pem.EncodeToMemory(block), 0600); err != nil {
		t.Fatal(err)
	}
	return keyPath
}

func TestCredentialStoreSSHKeyRoundTrip(t *testing.T) {
	dataDir := t.TempDir()
	keyPath := writeTestSSHKey(t, dataDir, "")

	store := NewCredentialStore(SecuritySSHKey, keyPath)
	if err := store.Set("anthropic", "sk-ant-test"); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(dataDir); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	// On-disk form is ciphertext, not the key material.
	raw, err := os.ReadFile(filepath.Join(dataDir, "credentials.enc"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "sk-ant-test") {
		t.Error("credential stored in the clear")
	}

	reloaded := NewCredentialStore(SecuritySSHKey, keyPath)
	if err := reloaded.Load(dataDir); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got := reloaded.Get("anthropic"); got != "sk-ant-test" {
		t.Errorf("credential = %q", got)
	}
}

func TestEncryptionManagerRejectsProtectedKey(t *testing.T) {
	dir := t.TempDir()
	keyPath := writeTestSSHKey(t, dir, "hunter2")

	mgr := NewEncryptionManager(EncryptionSSHKey, keyPath)
	err := mgr.Initialize()
	if err == nil {
		t.Fatal("Initialize succeeded on a passphrase-protected key")
	}
	if !strings.Contains(err.Error(), "passphrase-protected") {
		t.Errorf("error = %v, want passphrase-protected mention", err)
	}
}

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	tests := []struct {
		in   string
		want string
	}{
		{"~/data", "/home/tester/data"},
		{"/absolute/path", "/absolute/path"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := ExpandPath(tt.in); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestKeybindingDefaults(t *testing.T) {
	kb := DefaultKeybindings()

	if got := kb.GetActionKey("scroll_down"); got != "alt+j" {
		t.Errorf("scroll_down = %q", got)
	}
	if got := kb.GetActionKey("agent_selector"); got != "alt+a" {
		t.Errorf("agent_selector = %q", got)
	}
	// Secondary modifier with a letter collapses shift into uppercase.
	if got := kb.GetActionKey("settings"); got != "alt+S" {
		t.Errorf("settings = %q", got)
	}
	if got := kb.GetActionKey("no_such_action"); got != "" {
		t.Errorf("unknown action = %q, want empty", got)
	}
}

func TestKeybindingOverrides(t *testing.T) {
	kb := DefaultKeybindings()
	kb.Actions = map[string]string{"scroll_down": "ctrl+d"}

	if got := kb.GetActionKey("scroll_down"); got != "ctrl+d" {
		t.Errorf("override = %q", got)
	}
}

func TestKeybindingValidate(t *testing.T) {
	kb := DefaultKeybindings()
	if ok, _ := kb.Validate(); !ok {
		t.Error("default keybindings invalid")
	}

	kb.Modifiers.Primary = "shift"
	if ok, _ := kb.Validate(); ok {
		t.Error("shift-only modifier accepted")
	}

	kb.Modifiers.Primary = "ctrl"
	ok, warning := kb.Validate()
	if !ok || !strings.Contains(warning, "Ctrl") {
		t.Errorf("ctrl validation = %v, %q", ok, warning)
	}
}
