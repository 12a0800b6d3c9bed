package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"kaiwa/config"
)

// handleSessionMessage handles session-related messages
func (a AppView) handleSessionMessage(msg tea.Msg) (AppView, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionsListMsg:
		if msg.Err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("Error fetching Sessions: %v", msg.Err)
			}
			return a, nil
		}

		a.sessionList = msg.Sessions
		a.selectedSessionIdx = 0

		// Select current session if session manager is open
		if a.showSessionManager && a.dataModel.CurrentSession != nil {
			for i, session := range msg.Sessions {
				if session.ID == a.dataModel.CurrentSession.ID {
					a.selectedSessionIdx = i
					break
				}
			}
		}

		if config.DebugLog != nil {
			config.DebugLog.Printf("Fetched %d sessions", len(msg.Sessions))
		}

		// Check if we just deleted the current session
		if a.dataModel.CurrentSession == nil {
			if len(msg.Sessions) > 0 {
				// Load the first session in the list
				if config.DebugLog != nil {
					config.DebugLog.Printf("Current session deleted, loading first available Session: %s", msg.Sessions[0].ID)
				}
				return a, a.dataModel.LoadSession(msg.Sessions[0].ID)
			}
			// No sessions left - close modal and show empty state
			if config.DebugLog != nil {
				config.DebugLog.Printf("No sessions left after deletion, showing empty state")
			}
			a.showSessionManager = false
		}

		return a, nil

	case sessionLoadedMsg:
		if msg.Err != nil {
			// Check if error is due to session being locked
			if msg.Err.Error() == "session_locked" {
				a.showAcknowledgeModal = true
				a.acknowledgeModalTitle = "Session In Use"
				a.acknowledgeModalMsg = "This session is currently being used in another Kaiwa instance.\n\n" +
					"Only one instance can use a session at a time.\n\n" +
					"Options:\n" +
					"• Close the other Kaiwa instance\n" +
					"• Use a different session"
				a.acknowledgeModalType = ModalTypeWarning
				return a, nil
			}

			if config.DebugLog != nil {
				config.DebugLog.Printf("Error loading Session: %v", msg.Err)
			}
			return a, nil
		}

		// Unlock old session before switching
		if a.dataModel.CurrentSession != nil && a.dataModel.SessionStorage != nil {
			_ = a.dataModel.SessionStorage.UnlockSession(a.dataModel.CurrentSession.ID)
		}

		a.setCurrentSession(msg.Session)

		a.dataModel.SessionDirty = false
		a.showSessionManager = false

		// Save as current session so it's restored on next launch
		if a.dataModel.SessionStorage != nil && msg.Session != nil {
			a.dataModel.SessionStorage.SaveCurrentSessionID(msg.Session.ID)
		}

		// Convert storage messages to UI messages
		a.dataModel.Messages = []Message{}
		for _, sMsg := range msg.Session.Messages {
			// Use cached rendering if available, otherwise use content
			rendered := sMsg.Rendered
			if rendered == "" {
				rendered = sMsg.Content
			}
			a.dataModel.Messages = append(a.dataModel.Messages, Message{
				Role:      sMsg.Role,
				Content:   sMsg.Content,
				Rendered:  rendered,
				Timestamp: sMsg.Timestamp,
			})
		}

		// Restore the agent type the session was using
		if msg.Session.AgentType != "" && msg.Session.AgentType != a.dataModel.CurrentAgentType() {
			if err := a.dataModel.Agents.SwitchAgent(msg.Session.AgentType); err != nil {
				if config.DebugLog != nil {
					config.DebugLog.Printf("[UI] could not restore agent '%s': %v", msg.Session.AgentType, err)
				}
			}
		}

		if config.DebugLog != nil {
			config.DebugLog.Printf("Loaded session %s with %d messages", msg.Session.ID, len(msg.Session.Messages))
		}

		// Check if we need to scroll to a specific message
		if a.pendingScrollToMessageIdx >= 0 && a.pendingScrollToMessageIdx < len(a.dataModel.Messages) {
			messageIdx := a.pendingScrollToMessageIdx
			a.pendingScrollToMessageIdx = -1

			var offsetContent strings.Builder
			for i := range messageIdx {
				msg := a.dataModel.Messages[i]

				timestamp := DimStyle.Render(msg.Timestamp.Format("[15:04]"))

				var roleStyle = DimStyle
				var roleName string
				switch msg.Role {
				case "user":
					roleStyle = UserStyle
					roleName = "You"
				case "assistant":
					roleStyle = AssistantStyle
					roleName = "Assistant"
				default:
					roleStyle = DimStyle
					roleName = "System"
				}

				role := roleStyle.Render(roleName)
				renderedContent := msg.Rendered

				if msg.Role == "user" {
					greenBold := "\x1b[32;1m"
					reset := "\x1b[0m"
					bar := greenBold + "┃" + reset

					lines := strings.Split(renderedContent, "\n")
					offsetContent.WriteString(fmt.Sprintf("%s %s %s\n", bar, timestamp, role))
					for _, line := range lines {
						offsetContent.WriteString(fmt.Sprintf("%s %s\n", bar, line))
					}
					offsetContent.WriteString("\n")
				} else {
					offsetContent.WriteString(fmt.Sprintf("%s %s\n%s\n\n", timestamp, role, renderedContent))
				}
			}

			actualOffset := strings.Count(offsetContent.String(), "\n")
			viewportHeight := a.viewport.Height
			centerOffset := actualOffset - (viewportHeight / 2)
			centerOffset = max(centerOffset, 0)

			a.highlightedMessageIdx = messageIdx
			a.highlightFlashCount = 1
			a.updateViewportContent(false)

			totalLines := a.viewport.TotalLineCount()
			if centerOffset > totalLines-viewportHeight {
				centerOffset = totalLines - viewportHeight
			}

			a.viewport.SetYOffset(centerOffset)

			// Trigger flash animation
			var renderCmds []tea.Cmd
			renderCmds = append(renderCmds, tea.Tick(300*time.Millisecond, func(time.Time) tea.Msg {
				return flashTickMsg{}
			}))

			// Trigger markdown rendering for user and assistant messages that need it
			// Render in REVERSE order (newest first) since viewport shows bottom
			for i := len(a.dataModel.Messages) - 1; i >= 0; i-- {
				if a.dataModel.Messages[i].Role == "assistant" || a.dataModel.Messages[i].Role == "user" {
					// Skip if already rendered (cached from disk)
					if a.dataModel.Messages[i].Rendered != "" && a.dataModel.Messages[i].Rendered != a.dataModel.Messages[i].Content {
						continue
					}
					renderCmds = append(renderCmds, a.renderMarkdownAsync(i, a.dataModel.Messages[i].Content))
				}
			}

			return a, tea.Batch(renderCmds...)
		}

		// No pending scroll, go to bottom as usual
		a.updateViewportContent(true)

		// Trigger markdown rendering for user and assistant messages that need it
		// Render in REVERSE order (newest first) since viewport shows bottom
		var renderCmds []tea.Cmd
		for i := len(a.dataModel.Messages) - 1; i >= 0; i-- {
			if a.dataModel.Messages[i].Role == "assistant" || a.dataModel.Messages[i].Role == "user" {
				// Skip if already rendered (cached from disk)
				if a.dataModel.Messages[i].Rendered != "" && a.dataModel.Messages[i].Rendered != a.dataModel.Messages[i].Content {
					continue
				}
				renderCmds = append(renderCmds, a.renderMarkdownAsync(i, a.dataModel.Messages[i].Content))
			}
		}

		return a, tea.Batch(renderCmds...)

	case sessionSavedMsg:
		if msg.Err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("Error saving Session: %v", msg.Err)
			}
			return a, nil
		}

		a.dataModel.SessionDirty = false

		if config.DebugLog != nil {
			config.DebugLog.Printf("Session saved successfully")
		}

		return a, nil

	case sessionRenamedMsg:
		if msg.Err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("Error renaming Session: %v", msg.Err)
			}
			return a, nil
		}

		if config.DebugLog != nil {
			config.DebugLog.Printf("Session renamed successfully")
		}

		return a, nil

	case sessionExportedMsg:
		if msg.Cancelled {
			// Export was cancelled - check if partial file exists
			a.exportingSession = false
			a.exportCancelCtx = nil
			a.exportCancelFunc = nil

			// Check if partial file was created
			if fileExists(a.exportTargetPath) {
				// Start cleanup phase
				a.exportCleaningUp = true
				return a, tea.Batch(
					a.exportSpinner.Tick,
					a.dataModel.CleanupPartialFileCmd(a.exportTargetPath),
				)
			}
			// No partial file - just close modal
			a.sessionExportMode = false
			a.exportTargetPath = ""
			return a, nil
		}

		if msg.Err != nil {
			// Export failed - close modal with error
			a.exportingSession = false
			a.exportCancelCtx = nil
			a.exportCancelFunc = nil
			a.sessionExportMode = false
			a.exportTargetPath = ""
			if config.DebugLog != nil {
				config.DebugLog.Printf("Export error: %v", msg.Err)
			}
			return a, nil
		}

		// Success - show success modal
		a.exportingSession = false
		a.exportCancelCtx = nil
		a.exportCancelFunc = nil
		a.sessionExportSuccess = msg.Path
		a.exportTargetPath = ""
		if config.DebugLog != nil {
			config.DebugLog.Printf("Session exported successfully to: %s", msg.Path)
		}
		return a, nil

	case sessionImportedMsg:
		if msg.Cancelled {
			a.sessionImportMode = false
			a.sessionImportInput.Blur()
			return a, nil
		}

		if msg.Err != nil {
			// Import failed - surface the error in the acknowledge modal
			a.sessionImportMode = false
			a.sessionImportInput.Blur()
			a.showAcknowledgeModal = true
			a.acknowledgeModalTitle = "Import Failed"
			a.acknowledgeModalMsg = msg.Err.Error()
			a.acknowledgeModalType = ModalTypeError
			if config.DebugLog != nil {
				config.DebugLog.Printf("Import error: %v", msg.Err)
			}
			return a, nil
		}

		// Success - show success modal and refresh session list
		a.sessionImportMode = false
		a.sessionImportInput.Blur()
		a.sessionImportSuccess = msg.Session
		if config.DebugLog != nil {
			config.DebugLog.Printf("Session imported successfully: %s", msg.Session.Name)
		}

		// Refresh session list in background
		return a, func() tea.Msg {
			sessions, err := a.dataModel.SessionStorage.List()
			return sessionsListMsg{Sessions: sessions, Err: err}
		}

	case exportCleanupDoneMsg:
		// Cleanup finished - return to session manager
		a.exportCleaningUp = false
		a.sessionExportMode = false
		a.exportTargetPath = ""
		return a, nil
	}

	return a, nil
}
