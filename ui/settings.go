package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"kaiwa/config"
)

// buildSettingsFields maps the loaded config onto the editable settings list.
// Field keys match what config.UpdateAgentSetting accepts.
func buildSettingsFields(cfg *config.Config) []SettingField {
	defaults := config.DefaultUserConfig()

	maskedAzureKey := ""
	if cfg.APIKey("azure_openai") != "" {
		maskedAzureKey = "••••••••"
	}
	maskedAnthropicKey := ""
	if cfg.APIKey("anthropic") != "" {
		maskedAnthropicKey = "••••••••"
	}

	return []SettingField{
		{
			Label:        "Backend",
			Key:          "backend",
			Value:        cfg.Backend,
			DefaultValue: defaults.Backend,
			Type:         SettingTypeBackend,
			Choices:      []string{"azure_openai", "anthropic", "ollama"},
		},
		{
			Label:        "Azure Endpoint",
			Key:          "azure.endpoint",
			Value:        cfg.Azure.Endpoint,
			DefaultValue: defaults.Azure.Endpoint,
			Type:         SettingTypeText,
		},
		{
			Label:        "Azure API Version",
			Key:          "azure.api_version",
			Value:        cfg.Azure.APIVersion,
			DefaultValue: defaults.Azure.APIVersion,
			Type:         SettingTypeText,
		},
		{
			Label:        "Azure Deployment",
			Key:          "azure.deployment",
			Value:        cfg.Azure.Deployment,
			DefaultValue: defaults.Azure.Deployment,
			Type:         SettingTypeText,
		},
		{
			Label:        "Azure API Key",
			Key:          "azure.apikey",
			Value:        maskedAzureKey,
			DefaultValue: "",
			Type:         SettingTypeSecret,
		},
		{
			Label:        "Anthropic API Key",
			Key:          "anthropic.apikey",
			Value:        maskedAnthropicKey,
			DefaultValue: "",
			Type:         SettingTypeSecret,
		},
		{
			Label:        "Anthropic Model",
			Key:          "anthropic.model",
			Value:        cfg.AnthropicModel,
			DefaultValue: defaults.Anthropic.Model,
			Type:         SettingTypeText,
		},
		{
			Label:        "Ollama Host",
			Key:          "ollama.host",
			Value:        cfg.OllamaHost,
			DefaultValue: defaults.Ollama.Host,
			Type:         SettingTypeText,
		},
		{
			Label:        "Ollama Model",
			Key:          "ollama.model",
			Value:        cfg.OllamaModel,
			DefaultValue: defaults.Ollama.DefaultModel,
			Type:         SettingTypeText,
		},
		{
			Label:        "System Prompt",
			Key:          "system_prompt",
			Value:        cfg.DefaultSystemPrompt,
			DefaultValue: defaults.DefaultSystemPrompt,
			Type:         SettingTypeText,
		},
		{
			Label:        "Search Enabled",
			Key:          "search.enabled",
			Value:        boolToString(cfg.Search.Enabled),
			DefaultValue: boolToString(defaults.Search.Enabled),
			Type:         SettingTypeBool,
		},
		{
			Label:        "Search Max Results",
			Key:          "search.max_results",
			Value:        strconv.Itoa(cfg.Search.MaxResults),
			DefaultValue: strconv.Itoa(defaults.Search.MaxResults),
			Type:         SettingTypeInt,
		},
		{
			Label:        "Search Region",
			Key:          "search.region",
			Value:        cfg.Search.Region,
			DefaultValue: defaults.Search.Region,
			Type:         SettingTypeText,
		},
		{
			Label:        "News Search",
			Key:          "search.news",
			Value:        boolToString(cfg.Search.NewsSearch),
			DefaultValue: boolToString(defaults.Search.NewsSearch),
			Type:         SettingTypeBool,
		},
		{
			Label:        "Query Refinements",
			Key:          "search.refinements",
			Value:        strconv.Itoa(cfg.Search.MaxQueryRefinements),
			DefaultValue: strconv.Itoa(defaults.Search.MaxQueryRefinements),
			Type:         SettingTypeInt,
		},
		{
			Label:        "Structured Output",
			Key:          "search.structured",
			Value:        boolToString(cfg.Search.StructuredOutput),
			DefaultValue: boolToString(defaults.Search.StructuredOutput),
			Type:         SettingTypeBool,
		},
		{
			Label:        "Search Decision",
			Key:          "search.decision_mode",
			Value:        cfg.Search.DecisionMode,
			DefaultValue: defaults.Search.DecisionMode,
			Type:         SettingTypeChoice,
			Choices:      []string{"model", "heuristic"},
		},
		{
			Label:        "Citations",
			Key:          "search.citations",
			Value:        boolToString(cfg.Search.IncludeCitations),
			DefaultValue: boolToString(defaults.Search.IncludeCitations),
			Type:         SettingTypeBool,
		},
	}
}

func (a AppView) handleSettingsUpdate(msg tea.KeyMsg) (AppView, tea.Cmd) {
	// Handle the discard-changes confirmation
	if a.settingsConfirmExit {
		switch msg.String() {
		case "y", "Y":
			a.settingsConfirmExit = false
			a.settingsHasChanges = false
			a.showSettings = false
			return a, nil
		case "n", "N", "esc":
			a.settingsConfirmExit = false
			return a, nil
		}
		return a, nil
	}

	// If showing save error, Enter/Esc clears it
	if a.settingsSaveError != "" {
		if msg.String() == "enter" || msg.String() == "esc" {
			a.settingsSaveError = ""
			return a, nil
		}
		return a, nil
	}

	if a.settingsEditMode {
		return a.handleSettingsEditMode(msg)
	}

	return a.handleSettingsNavigationMode(msg)
}

func (a AppView) handleSettingsNavigationMode(msg tea.KeyMsg) (AppView, tea.Cmd) {
	switch msg.String() {
	case "q":
		if a.settingsHasChanges {
			a.settingsConfirmExit = true
			return a, nil
		}
		a.showSettings = false
		return a, nil

	case "esc":
		if a.settingsHasChanges {
			a.settingsConfirmExit = true
			return a, nil
		}
		a.showSettings = false
		return a, nil

	case "j", "down":
		if a.selectedSettingIdx < len(a.settingsFields)-1 {
			a.selectedSettingIdx++
		}
		return a, nil

	case "k", "up":
		if a.selectedSettingIdx > 0 {
			a.selectedSettingIdx--
		}
		return a, nil

	case "enter":
		field := a.settingsFields[a.selectedSettingIdx]

		switch field.Type {
		case SettingTypeBool:
			// Toggle in place
			if field.Value == "true" {
				a.settingsFields[a.selectedSettingIdx].Value = "false"
			} else {
				a.settingsFields[a.selectedSettingIdx].Value = "true"
			}
			a.settingsHasChanges = true
			return a, nil

		case SettingTypeBackend, SettingTypeChoice:
			// Cycle through the valid values
			a.settingsFields[a.selectedSettingIdx].Value = nextChoice(field.Choices, field.Value)
			a.settingsHasChanges = true
			return a, nil
		}

		// Enter edit mode for text, secret and int fields
		a.settingsEditMode = true
		if field.Type == SettingTypeSecret {
			// Never prefill credentials
			a.settingsEditInput.SetValue("")
		} else {
			a.settingsEditInput.SetValue(field.Value)
		}
		a.settingsEditInput.Focus()
		return a, textinput.Blink

	case "r":
		// Reset to default
		a.settingsFields[a.selectedSettingIdx].Value = a.settingsFields[a.selectedSettingIdx].DefaultValue
		a.settingsFields[a.selectedSettingIdx].ErrorMsg = ""
		a.settingsHasChanges = true
		return a, nil

	case "alt+enter":
		return a.saveSettings()
	}

	return a, nil
}

func (a AppView) handleSettingsEditMode(msg tea.KeyMsg) (AppView, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.String() {
	case "esc":
		// Cancel edit
		a.settingsEditMode = false
		a.settingsEditInput.Blur()
		return a, nil

	case "enter":
		newValue := a.settingsEditInput.Value()
		field := a.settingsFields[a.selectedSettingIdx]

		if field.Type == SettingTypeInt {
			if _, err := strconv.Atoi(strings.TrimSpace(newValue)); err != nil && newValue != "" {
				a.settingsFields[a.selectedSettingIdx].ErrorMsg = "must be a number"
				return a, nil
			}
			a.settingsFields[a.selectedSettingIdx].ErrorMsg = ""
		}

		if field.Type == SettingTypeSecret {
			// Empty input keeps the stored credential
			if newValue != "" {
				a.settingsFields[a.selectedSettingIdx].Value = newValue
				a.settingsHasChanges = true
			}
		} else if newValue != field.Value {
			a.settingsFields[a.selectedSettingIdx].Value = newValue
			a.settingsHasChanges = true
		}

		a.settingsEditMode = false
		a.settingsEditInput.Blur()
		return a, nil

	case "alt+u":
		a.settingsEditInput.SetValue("")
		return a, nil
	}

	a.settingsEditInput, cmd = a.settingsEditInput.Update(msg)
	return a, cmd
}

// saveSettings persists every field that differs from the loaded config.
// Each field goes through the settings updater so credentials land in the
// credential store and everything else in the TOML config.
func (a AppView) saveSettings() (AppView, tea.Cmd) {
	baseline := buildSettingsFields(a.dataModel.Config)

	var cmds []tea.Cmd
	for i, field := range a.settingsFields {
		if i >= len(baseline) {
			break
		}
		if field.Value == baseline[i].Value {
			continue
		}
		if field.Type == SettingTypeSecret && field.Value == "" {
			continue
		}
		cmds = append(cmds, a.dataModel.UpdateAgentSettingCmd(field.Key, field.Value))
	}

	a.settingsHasChanges = false

	if len(cmds) == 0 {
		return a, nil
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Settings] Saving %d changed fields", len(cmds))
	}

	return a, tea.Batch(cmds...)
}

// nextChoice returns the choice after current, wrapping around.
func nextChoice(choices []string, current string) string {
	if len(choices) == 0 {
		return current
	}
	for i, c := range choices {
		if c == current {
			return choices[(i+1)%len(choices)]
		}
	}
	return choices[0]
}

func renderSettings(fields []SettingField, selectedIdx int, editMode bool, editInput textinput.Model, hasChanges bool, confirmExit bool, saveError string, width, height int) string {
	if confirmExit {
		return RenderUnsavedChangesModal(width, height)
	}

	if saveError != "" {
		return RenderAcknowledgeModal(
			"Error Saving Settings",
			saveError,
			ModalTypeError,
			width,
			height,
		)
	}

	if width < 20 || height < 10 {
		return "Terminal too small"
	}

	modalWidth := width - 10
	if modalWidth > 80 {
		modalWidth = 80
	}
	if modalWidth < 40 {
		modalWidth = 40
	}

	// Title section (centered, no borders)
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(accentColor).
		Align(lipgloss.Center).
		Width(modalWidth).
		Render("Settings (Alt+Shift+S)")

	// Separator (simple horizontal line)
	separator := lipgloss.NewStyle().
		Foreground(dimColor).
		Render(strings.Repeat("─", modalWidth))

	// Settings list
	var settingsLines []string
	for i, field := range fields {
		var line string

		if editMode && i == selectedIdx {
			// Show edit input
			label := field.Label
			labelPadding := strings.Repeat(" ", max(20-len(label), 1))
			inputBox := lipgloss.NewStyle().
				Foreground(accentColor).
				Bold(true).
				Width(modalWidth - 24).
				Render(editInput.View())
			line = "  " + label + labelPadding + inputBox
		} else {
			// Show value
			indicator := "  "
			if i == selectedIdx {
				indicator = "▶ "
			}

			value := field.Value
			if field.ErrorMsg != "" {
				value = value + "  ✗ " + field.ErrorMsg
			}

			// Calculate spacing
			label := indicator + field.Label
			maxLabelWidth := 20
			if len(label) < maxLabelWidth {
				label = label + strings.Repeat(" ", maxLabelWidth-len(label))
			}

			maxValueWidth := modalWidth - maxLabelWidth - 4
			if len(value) > maxValueWidth {
				value = value[:maxValueWidth-3] + "..."
			}

			line = label + value

			// Style the line
			lineStyle := lipgloss.NewStyle()
			if i == selectedIdx {
				lineStyle = lineStyle.Foreground(successColor).Bold(true)
			}

			line = lineStyle.Render(line)
		}

		paddedLine := lipgloss.NewStyle().
			Width(modalWidth).
			Render(line)
		settingsLines = append(settingsLines, paddedLine)
	}

	// Footer
	var footerText string
	if editMode {
		footerText = FormatFooter("Enter", "Save", "Alt+U", "Clear", "Esc", "Cancel")
	} else if hasChanges {
		footerText = FormatFooter("Alt+Enter", "Save", "r", "Reset", "Esc", "Cancel")
	} else {
		footerText = FormatFooter("j/k", "Navigate", "Enter", "Edit", "r", "Reset", "Esc", "Close")
	}
	footer := lipgloss.NewStyle().
		Foreground(dimColor).
		Align(lipgloss.Center).
		Width(modalWidth).
		Render(footerText)

	// Combine all parts (Title/Separator/Content/Separator/Footer pattern)
	var content strings.Builder
	content.WriteString(title + "\n")
	content.WriteString(separator + "\n")
	content.WriteString(strings.Repeat(" ", modalWidth) + "\n") // Top padding
	for _, line := range settingsLines {
		content.WriteString(line + "\n")
	}
	content.WriteString(strings.Repeat(" ", modalWidth) + "\n") // Bottom padding
	content.WriteString(separator + "\n")
	content.WriteString(footer)

	// Center the modal
	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		content.String(),
	)
}

func boolToString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
