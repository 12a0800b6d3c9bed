package ui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"kaiwa/config"
)

// handleUIMessage handles UI-related messages (flash, markdown, agents, documents, editor)
func (a AppView) handleUIMessage(msg tea.Msg) (AppView, tea.Cmd) {
	switch msg := msg.(type) {
	case flashTickMsg:
		if a.highlightFlashCount > 0 && a.highlightFlashCount < 6 {
			a.highlightFlashCount++
			a.updateViewportContent(false)
			return a, tea.Tick(300*time.Millisecond, func(time.Time) tea.Msg {
				return flashTickMsg{}
			})
		}
		a.highlightedMessageIdx = -1
		a.highlightFlashCount = 0
		a.updateViewportContent(false)
		return a, nil

	case markdownRenderedMsg:
		if config.DebugLog != nil {
			config.DebugLog.Printf("markdownRenderedMsg received for message %d", msg.MessageIndex)
		}

		if msg.MessageIndex >= 0 && msg.MessageIndex < len(a.dataModel.Messages) {
			a.dataModel.Messages[msg.MessageIndex].Rendered = msg.Rendered

			gotoBottom := a.highlightedMessageIdx < 0
			a.updateViewportContent(gotoBottom)
			if config.DebugLog != nil {
				config.DebugLog.Printf("Viewport updated with rendered markdown (gotoBottom=%v)", gotoBottom)
			}
		}
		return a, nil

	case agentSwitchedMsg:
		if msg.Err != nil {
			a.showAcknowledgeModal = true
			a.acknowledgeModalTitle = "Agent Switch Failed"
			a.acknowledgeModalMsg = msg.Err.Error()
			a.acknowledgeModalType = ModalTypeError
			return a, nil
		}

		a.showAgentSelector = false

		if config.DebugLog != nil {
			config.DebugLog.Printf("Switched to agent '%s' (capabilities: %v)", msg.AgentType, msg.Capabilities)
		}

		// Persist the agent choice with the session
		if a.dataModel.CurrentSession != nil {
			a.dataModel.CurrentSession.AgentType = msg.AgentType
			return a, a.dataModel.SaveCurrentSession()
		}
		return a, nil

	case settingUpdatedMsg:
		if msg.Err != nil {
			a.settingsSaveError = msg.Err.Error()
			if config.DebugLog != nil {
				config.DebugLog.Printf("Error updating setting '%s': %v", msg.Field, msg.Err)
			}
			return a, nil
		}

		a.settingsSaveError = ""

		// Refresh the fields from the reloaded config so the modal shows
		// what actually got persisted
		if cfg, err := config.Load(); err == nil {
			a.dataModel.Config = cfg
			if a.showSettings {
				a.settingsFields = buildSettingsFields(cfg)
			}
		}

		if config.DebugLog != nil {
			config.DebugLog.Printf("Setting '%s' updated", msg.Field)
		}
		return a, nil

	case documentsListMsg:
		if msg.Err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("Error fetching documents: %v", msg.Err)
			}
			return a, nil
		}

		a.documentList = msg.Documents
		if a.selectedDocumentIdx >= len(a.documentList) {
			a.selectedDocumentIdx = max(len(a.documentList)-1, 0)
		}

		if config.DebugLog != nil {
			config.DebugLog.Printf("Fetched %d documents", len(msg.Documents))
		}
		return a, nil

	case documentAddedMsg:
		if msg.Err != nil {
			a.showAcknowledgeModal = true
			a.acknowledgeModalTitle = "Document Not Saved"
			a.acknowledgeModalMsg = msg.Err.Error()
			a.acknowledgeModalType = ModalTypeError
			return a, nil
		}

		a.documentAddMode = false
		a.documentTitleInput.Reset()
		a.documentContentInput.Reset()
		a.documentTitleInput.Blur()
		a.documentContentInput.Blur()

		if config.DebugLog != nil && msg.Document != nil {
			config.DebugLog.Printf("Document added: %s", msg.Document.Title)
		}

		return a, a.dataModel.FetchDocumentList()

	case documentDeletedMsg:
		if msg.Err != nil {
			a.showAcknowledgeModal = true
			a.acknowledgeModalTitle = "Delete Failed"
			a.acknowledgeModalMsg = msg.Err.Error()
			a.acknowledgeModalType = ModalTypeError
			return a, nil
		}

		a.confirmDeleteDoc = nil

		if config.DebugLog != nil {
			config.DebugLog.Printf("Document %d deleted", msg.ID)
		}

		return a, a.dataModel.FetchDocumentList()

	case editorContentMsg:
		// Load edited content into textarea
		a.textarea.SetValue(msg.Content)
		a.textarea.Focus()

		// Load content and wait for user to press Enter (user can review/edit before sending)
		return a, nil

	case editorErrorMsg:
		// Show error modal
		a.showInfoModal = true
		a.infoModalTitle = "⚠️  Editor Error"
		a.infoModalMsg = fmt.Sprintf("Failed to open external editor:\n\n%v\n\nPlease check that your $EDITOR or $KAIWA_EDITOR environment variable is set correctly.", msg.Err)
		return a, nil
	}

	return a, nil
}
