package ui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"kaiwa/config"
	"kaiwa/storage"
)

func (a AppView) handleSessionManagerUpdate(msg tea.KeyMsg) (AppView, tea.Cmd) {
	// Handle delete confirmation
	if a.confirmDeleteSession != nil {
		switch msg.String() {
		case "y":
			sessionID := a.confirmDeleteSession.ID
			isDeletingCurrentSession := a.dataModel.CurrentSession != nil && a.dataModel.CurrentSession.ID == sessionID

			// Block deletion if current session is streaming
			if isDeletingCurrentSession && a.dataModel.Streaming {
				a.confirmDeleteSession = nil
				a.showAcknowledgeModal = true
				a.acknowledgeModalTitle = "Cannot Delete Session"
				a.acknowledgeModalMsg = "Session has an active response.\nCancel the response before deleting."
				a.acknowledgeModalType = ModalTypeWarning
				return a, nil
			}

			store := a.dataModel.SessionStorage
			a.confirmDeleteSession = nil

			if isDeletingCurrentSession {
				// Unlock before deleting
				if a.dataModel.SessionStorage != nil {
					_ = a.dataModel.SessionStorage.UnlockSession(sessionID)
				}

				a.dataModel.Messages = []Message{}
				a.setCurrentSession(nil)

				a.dataModel.SessionDirty = false
				a.textarea.Reset()
				a.updateViewportContent(true)
			}

			return a, func() tea.Msg {
				err := store.Delete(sessionID)
				if err != nil {
					return sessionsListMsg{Err: err}
				}
				sessions, err := store.List()
				return sessionsListMsg{
					Sessions: sessions,
					Err:      err,
				}
			}
		case "n", "esc":
			a.confirmDeleteSession = nil
			return a, nil
		}
		return a, nil
	}

	if a.sessionRenameMode {
		return a.handleSessionRenameMode(msg)
	}

	if a.sessionImportMode || a.sessionImportSuccess != nil {
		return a.handleSessionImportMode(msg)
	}

	if a.sessionExportMode {
		if msg.String() == "esc" && a.exportingSession && !a.exportCleaningUp {
			if a.exportCancelFunc != nil {
				a.exportCancelFunc()
			}
			return a, nil
		}
		return a.handleSessionExportMode(msg)
	}

	if a.sessionFilterMode {
		switch msg.String() {
		case "esc":
			a.sessionFilterMode = false
			a.sessionFilterInput.Blur()
			a.sessionFilterInput.SetValue("")
			a.filteredSessionList = []storage.SessionMetadata{}
			a.selectedSessionIdx = 0
			return a, nil

		case "enter":
			list := a.getSessionList()
			if a.selectedSessionIdx >= 0 && a.selectedSessionIdx < len(list) {
				selectedSession := list[a.selectedSessionIdx]
				a.showSessionManager = false
				a.sessionFilterMode = false
				return a, a.dataModel.LoadSession(selectedSession.ID)
			}
			return a, nil

		case "alt+j", "alt+down", "down":
			list := a.getSessionList()
			if a.selectedSessionIdx < len(list)-1 {
				a.selectedSessionIdx++
			}
			return a, nil

		case "alt+k", "alt+up", "up":
			if a.selectedSessionIdx > 0 {
				a.selectedSessionIdx--
			}
			return a, nil
		}

		var cmd tea.Cmd
		a.sessionFilterInput, cmd = a.sessionFilterInput.Update(msg)

		filterValue := a.sessionFilterInput.Value()
		if filterValue == "" {
			a.filteredSessionList = a.sessionList
		} else {
			targets := make([]string, len(a.sessionList))
			for i, s := range a.sessionList {
				targets[i] = s.Name
			}

			matches := fuzzy.Find(filterValue, targets)
			a.filteredSessionList = make([]storage.SessionMetadata, len(matches))
			for i, match := range matches {
				a.filteredSessionList[i] = a.sessionList[match.Index]
			}
		}

		list := a.getSessionList()
		if a.selectedSessionIdx >= len(list) && len(list) > 0 {
			a.selectedSessionIdx = len(list) - 1
		}

		return a, cmd
	}

	switch msg.String() {
	case "/":
		if !a.sessionFilterMode {
			a.sessionFilterMode = true
			a.sessionFilterInput.Focus()
			a.sessionFilterInput.SetValue("")
			a.filteredSessionList = a.sessionList
			return a, textinput.Blink
		}
	case "esc":
		a.showSessionManager = false
		return a, nil
	case "j", "down":
		list := a.getSessionList()
		if a.selectedSessionIdx < len(list)-1 {
			a.selectedSessionIdx++
		}
		return a, nil
	case "k", "up":
		if a.selectedSessionIdx > 0 {
			a.selectedSessionIdx--
		}
		return a, nil
	case "enter":
		list := a.getSessionList()
		if a.selectedSessionIdx >= 0 && a.selectedSessionIdx < len(list) {
			selectedSession := list[a.selectedSessionIdx]
			return a, a.dataModel.LoadSession(selectedSession.ID)
		}
		return a, nil
	case "n":
		a.ensureSessionModalInputs()
		a.showNewSessionModal = true
		a.newSessionFocusedField = 0
		a.newSessionNameInput.SetValue("")
		a.newSessionPromptInput.SetValue("")
		a.newSessionNameInput.Focus()
		a.newSessionPromptInput.Blur()
		return a, textinput.Blink
	case "i":
		a.sessionImportMode = true
		a.sessionImportInput.SetValue("")
		a.sessionImportInput.Focus()
		return a, textinput.Blink
	case "r":
		list := a.getSessionList()
		if a.selectedSessionIdx >= 0 && a.selectedSessionIdx < len(list) {
			if a.sessionRenameInput.Width == 0 {
				a.sessionRenameInput = textinput.New()
				a.sessionRenameInput.Width = 50
				a.sessionRenameInput.CharLimit = 100
			}
			a.sessionRenameMode = true
			a.sessionRenameInput.SetValue(list[a.selectedSessionIdx].Name)
			a.sessionRenameInput.Focus()
			return a, textinput.Blink
		}
		return a, nil
	case "e":
		list := a.getSessionList()
		if a.selectedSessionIdx >= 0 && a.selectedSessionIdx < len(list) {
			sessionMeta := list[a.selectedSessionIdx]

			a.ensureSessionModalInputs()

			// Set edit mode with current values
			a.showEditSessionModal = true
			a.editSessionID = sessionMeta.ID
			a.newSessionFocusedField = 0
			a.newSessionNameInput.SetValue(sessionMeta.Name)
			a.newSessionPromptInput.SetValue(sessionMeta.SystemPrompt)
			a.newSessionNameInput.Focus()
			a.newSessionPromptInput.Blur()
			return a, textinput.Blink
		}
		return a, nil
	case "x":
		list := a.getSessionList()
		if a.selectedSessionIdx >= 0 && a.selectedSessionIdx < len(list) {
			if a.sessionExportInput.Width == 0 {
				a.sessionExportInput = textinput.New()
				a.sessionExportInput.Width = 70
				a.sessionExportInput.CharLimit = 500
			}
			sessionName := list[a.selectedSessionIdx].Name
			defaultPath := storage.GenerateExportPath(sessionName)
			a.sessionExportMode = true
			a.sessionExportInput.SetValue(defaultPath)
			a.sessionExportInput.Focus()
			return a, textinput.Blink
		}
		return a, nil
	case "d":
		list := a.getSessionList()
		if a.selectedSessionIdx >= 0 && a.selectedSessionIdx < len(list) {
			sessionMeta := list[a.selectedSessionIdx]
			a.confirmDeleteSession = &sessionMeta
		}
		return a, nil
	}
	return a, nil
}

func (a AppView) handleSessionRenameMode(msg tea.KeyMsg) (AppView, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.String() {
	case "esc":
		a.sessionRenameMode = false
		a.sessionRenameInput.Blur()
		return a, nil

	case "enter":
		newName := strings.TrimSpace(a.sessionRenameInput.Value())
		if newName == "" {
			return a, nil
		}

		sessionID := a.sessionList[a.selectedSessionIdx].ID
		a.sessionRenameMode = false
		a.sessionRenameInput.Blur()

		// Update current session name if it's the same session being renamed
		if a.dataModel.CurrentSession != nil && a.dataModel.CurrentSession.ID == sessionID {
			a.dataModel.CurrentSession.Name = newName
		}

		return a, a.dataModel.RenameSessionCmd(sessionID, newName)

	case "alt+u":
		a.sessionRenameInput.SetValue("")
		return a, nil
	}

	a.sessionRenameInput, cmd = a.sessionRenameInput.Update(msg)
	return a, cmd
}

func (a AppView) handleSessionExportMode(msg tea.KeyMsg) (AppView, tea.Cmd) {
	var cmd tea.Cmd

	// If processing or cleaning up, only handle escape
	if a.exportingSession || a.exportCleaningUp {
		if msg.String() == "esc" && a.exportingSession && !a.exportCleaningUp {
			if a.exportCancelFunc != nil {
				a.exportCancelFunc()
			}
		}
		return a, nil
	}

	// Success acknowledgment
	if a.sessionExportSuccess != "" {
		if msg.String() == "enter" || msg.String() == "esc" {
			a.sessionExportSuccess = ""
			a.sessionExportMode = false
			a.sessionExportInput.Blur()
		}
		return a, nil
	}

	switch msg.String() {
	case "esc":
		a.sessionExportMode = false
		a.sessionExportInput.Blur()
		return a, nil

	case "enter":
		exportPath := strings.TrimSpace(a.sessionExportInput.Value())
		if exportPath == "" {
			return a, nil
		}

		sessionID := a.getSessionList()[a.selectedSessionIdx].ID

		// Expand path immediately to track it
		a.exportTargetPath = config.ExpandPath(exportPath)

		// Create cancellation context
		ctx, cancel := context.WithCancel(context.Background())
		a.exportCancelCtx = ctx
		a.exportCancelFunc = cancel

		// Initialize export spinner (reuse chat spinner style)
		a.exportSpinner = spinner.New()
		a.exportSpinner.Spinner = spinner.Dot
		a.exportSpinner.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))

		// Set exporting state
		a.exportingSession = true
		a.sessionExportInput.Blur()

		// Start export with context and spinner tick
		return a, tea.Batch(
			a.dataModel.ExportSessionCmd(ctx, sessionID, a.exportTargetPath),
			a.exportSpinner.Tick,
		)

	case "alt+u":
		a.sessionExportInput.SetValue("")
		return a, nil
	}

	a.sessionExportInput, cmd = a.sessionExportInput.Update(msg)
	return a, cmd
}

func (a AppView) handleSessionImportMode(msg tea.KeyMsg) (AppView, tea.Cmd) {
	var cmd tea.Cmd

	// Handle success acknowledgment
	if a.sessionImportSuccess != nil {
		if msg.String() == "enter" || msg.String() == "esc" {
			a.sessionImportSuccess = nil
		}
		return a, nil
	}

	switch msg.String() {
	case "esc":
		a.sessionImportMode = false
		a.sessionImportInput.Blur()
		return a, nil

	case "enter":
		path := strings.TrimSpace(a.sessionImportInput.Value())
		if path == "" {
			return a, nil
		}

		if config.DebugLog != nil {
			config.DebugLog.Printf("Importing session from: %s", path)
		}

		ctx := context.Background()
		a.sessionImportInput.Blur()
		return a, a.dataModel.ImportSessionCmd(ctx, path)

	case "alt+u":
		a.sessionImportInput.SetValue("")
		return a, nil
	}

	a.sessionImportInput, cmd = a.sessionImportInput.Update(msg)
	return a, cmd
}

func (a AppView) handleNewSessionModalUpdate(msg tea.KeyMsg) (AppView, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.showNewSessionModal = false
		a.newSessionNameInput.Blur()
		a.newSessionPromptInput.Blur()
		return a, nil

	case "tab", "shift+tab":
		// Toggle between name and prompt fields
		if a.newSessionFocusedField == 0 {
			a.newSessionFocusedField = 1
			a.newSessionNameInput.Blur()
			a.newSessionPromptInput.Focus()
		} else {
			a.newSessionFocusedField = 0
			a.newSessionPromptInput.Blur()
			a.newSessionNameInput.Focus()
		}
		return a, textarea.Blink

	case "enter":
		if a.newSessionFocusedField == 1 {
			var cmd tea.Cmd
			a.newSessionPromptInput, cmd = a.newSessionPromptInput.Update(msg)
			return a, cmd
		}
		return a.createSessionFromModal()

	case "alt+enter":
		// Save from any field
		return a.createSessionFromModal()
	}

	// Update focused input field with the key
	var cmd tea.Cmd
	switch a.newSessionFocusedField {
	case 0:
		a.newSessionNameInput, cmd = a.newSessionNameInput.Update(msg)
	case 1:
		a.newSessionPromptInput, cmd = a.newSessionPromptInput.Update(msg)
	}

	return a, cmd
}

func (a AppView) createSessionFromModal() (AppView, tea.Cmd) {
	sessionName := strings.TrimSpace(a.newSessionNameInput.Value())
	systemPrompt := strings.TrimSpace(a.newSessionPromptInput.Value())

	newSession, err := a.dataModel.CreateAndSaveNewSession(sessionName, systemPrompt)
	if err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("Failed to create new Session: %v", err)
		}
		a.showNewSessionModal = false
		a.newSessionNameInput.Blur()
		a.newSessionPromptInput.Blur()
		return a, nil
	}

	a.dataModel.Messages = []Message{}
	a.setCurrentSession(newSession)

	a.dataModel.SessionDirty = false
	a.showNewSessionModal = false
	a.showSessionManager = false
	a.newSessionNameInput.Blur()
	a.newSessionPromptInput.Blur()
	a.textarea.Reset()
	a.updateViewportContent(true)
	return a, nil
}

func (a AppView) handleEditSessionModalUpdate(msg tea.KeyMsg) (AppView, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.showEditSessionModal = false
		a.newSessionNameInput.Blur()
		a.newSessionPromptInput.Blur()
		a.editSessionID = ""
		return a, nil

	case "tab", "shift+tab":
		if a.newSessionFocusedField == 0 {
			a.newSessionFocusedField = 1
			a.newSessionNameInput.Blur()
			a.newSessionPromptInput.Focus()
		} else {
			a.newSessionFocusedField = 0
			a.newSessionPromptInput.Blur()
			a.newSessionNameInput.Focus()
		}
		return a, textarea.Blink

	case "alt+u":
		// Clear the focused field
		switch a.newSessionFocusedField {
		case 0:
			a.newSessionNameInput.SetValue("")
		case 1:
			a.newSessionPromptInput.SetValue("")
		}
		return a, nil

	case "alt+enter":
		// Save from any field
		newName := strings.TrimSpace(a.newSessionNameInput.Value())
		newSystemPrompt := strings.TrimSpace(a.newSessionPromptInput.Value())

		sessionID := a.editSessionID
		a.showEditSessionModal = false
		a.newSessionNameInput.Blur()
		a.newSessionPromptInput.Blur()
		a.editSessionID = ""

		return a, a.dataModel.UpdateSessionPropertiesCmd(sessionID, newName, newSystemPrompt)
	}

	// Update focused input field with the key
	var cmd tea.Cmd
	switch a.newSessionFocusedField {
	case 0:
		a.newSessionNameInput, cmd = a.newSessionNameInput.Update(msg)
	case 1:
		a.newSessionPromptInput, cmd = a.newSessionPromptInput.Update(msg)
	}

	return a, cmd
}

func (a AppView) handleAgentSelectorUpdate(msg tea.KeyMsg) (AppView, tea.Cmd) {
	switch msg.String() {
	case "esc", "alt+a":
		a.showAgentSelector = false
		return a, nil
	case "j", "down":
		if a.selectedAgentIdx < len(a.agentList)-1 {
			a.selectedAgentIdx++
		}
		return a, nil
	case "k", "up":
		if a.selectedAgentIdx > 0 {
			a.selectedAgentIdx--
		}
		return a, nil
	case "enter":
		if a.selectedAgentIdx >= 0 && a.selectedAgentIdx < len(a.agentList) {
			selected := a.agentList[a.selectedAgentIdx]
			if selected == a.dataModel.CurrentAgentType() {
				a.showAgentSelector = false
				return a, nil
			}
			return a, a.dataModel.SwitchAgentCmd(selected)
		}
		return a, nil
	}
	return a, nil
}

func (a AppView) handleAboutUpdate(msg tea.KeyMsg) (AppView, tea.Cmd) {
	if msg.String() == "esc" || msg.String() == "alt+a" {
		a.showAbout = false
		return a, nil
	}
	return a, nil
}

func (a AppView) handleDocumentManagerUpdate(msg tea.KeyMsg) (AppView, tea.Cmd) {
	// Handle delete confirmation
	if a.confirmDeleteDoc != nil {
		switch msg.String() {
		case "y":
			id := a.confirmDeleteDoc.ID
			return a, a.dataModel.DeleteDocumentCmd(id)
		case "n", "esc":
			a.confirmDeleteDoc = nil
			return a, nil
		}
		return a, nil
	}

	// Full-content view of the selected document
	if a.documentViewMode {
		if msg.String() == "esc" || msg.String() == "q" || msg.String() == "enter" {
			a.documentViewMode = false
		}
		return a, nil
	}

	if a.documentAddMode {
		switch msg.String() {
		case "esc":
			a.documentAddMode = false
			a.documentTitleInput.Blur()
			a.documentContentInput.Blur()
			return a, nil

		case "tab", "shift+tab":
			if a.documentFocusedField == 0 {
				a.documentFocusedField = 1
				a.documentTitleInput.Blur()
				a.documentContentInput.Focus()
			} else {
				a.documentFocusedField = 0
				a.documentContentInput.Blur()
				a.documentTitleInput.Focus()
			}
			return a, textarea.Blink

		case "alt+enter":
			title := strings.TrimSpace(a.documentTitleInput.Value())
			content := strings.TrimSpace(a.documentContentInput.Value())
			if title == "" || content == "" {
				return a, nil
			}
			return a, a.dataModel.AddDocumentCmd(title, content)
		}

		var cmd tea.Cmd
		switch a.documentFocusedField {
		case 0:
			a.documentTitleInput, cmd = a.documentTitleInput.Update(msg)
		case 1:
			a.documentContentInput, cmd = a.documentContentInput.Update(msg)
		}
		return a, cmd
	}

	switch msg.String() {
	case "esc":
		a.showDocumentManager = false
		return a, nil
	case "j", "down":
		if a.selectedDocumentIdx < len(a.documentList)-1 {
			a.selectedDocumentIdx++
		}
		return a, nil
	case "k", "up":
		if a.selectedDocumentIdx > 0 {
			a.selectedDocumentIdx--
		}
		return a, nil
	case "a":
		a.documentAddMode = true
		a.documentFocusedField = 0
		a.documentTitleInput.SetValue("")
		a.documentContentInput.SetValue("")
		a.documentTitleInput.Focus()
		a.documentContentInput.Blur()
		return a, textinput.Blink
	case "enter", "v":
		if a.selectedDocumentIdx >= 0 && a.selectedDocumentIdx < len(a.documentList) {
			a.documentViewMode = true
		}
		return a, nil
	case "d":
		if a.selectedDocumentIdx >= 0 && a.selectedDocumentIdx < len(a.documentList) {
			doc := a.documentList[a.selectedDocumentIdx]
			a.confirmDeleteDoc = &doc
		}
		return a, nil
	}
	return a, nil
}

func (a AppView) handleMessageSearchUpdate(msg tea.KeyMsg) (AppView, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.showMessageSearch = false
		return a, nil
	case "up", "alt+k":
		if a.selectedSearchIdx > 0 {
			a.selectedSearchIdx--
		}
		return a, nil
	case "down", "alt+j":
		if a.selectedSearchIdx < len(a.messageSearchResults)-1 {
			a.selectedSearchIdx++
		}
		return a, nil
	case "enter":
		if a.selectedSearchIdx >= 0 && a.selectedSearchIdx < len(a.messageSearchResults) {
			match := a.messageSearchResults[a.selectedSearchIdx]
			messageIdx := match.MessageIndex

			a.highlightedMessageIdx = messageIdx
			a.highlightFlashCount = 1
			a.showMessageSearch = false
			a.updateViewportContent(false)

			var offsetContent strings.Builder
			for i := 0; i < messageIdx; i++ {
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
			if centerOffset < 0 {
				centerOffset = 0
			}
			totalLines := a.viewport.TotalLineCount()
			if centerOffset > totalLines-viewportHeight {
				centerOffset = totalLines - viewportHeight
			}
			a.viewport.SetYOffset(centerOffset)

			return a, tea.Tick(300*time.Millisecond, func(time.Time) tea.Msg {
				return flashTickMsg{}
			})
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.messageSearchInput, cmd = a.messageSearchInput.Update(msg)
	query := a.messageSearchInput.Value()
	if query != "" {
		// Convert []Message to []storage.Message
		storageMessages := make([]storage.Message, len(a.dataModel.Messages))
		for i, msg := range a.dataModel.Messages {
			storageMessages[i] = storage.Message{
				Role:      msg.Role,
				Content:   msg.Content,
				Rendered:  msg.Rendered,
				Timestamp: msg.Timestamp,
			}
		}
		a.messageSearchResults = storage.SearchMessages(storageMessages, query)
		a.selectedSearchIdx = 0
	} else {
		a.messageSearchResults = []storage.MessageMatch{}
	}
	return a, cmd
}

func (a AppView) handleGlobalSearchUpdate(msg tea.KeyMsg) (AppView, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.showGlobalSearch = false
		return a, nil
	case "up", "alt+k":
		if a.selectedGlobalIdx > 0 {
			a.selectedGlobalIdx--
		}
		return a, nil
	case "down", "alt+j":
		if a.selectedGlobalIdx < len(a.globalSearchResults)-1 {
			a.selectedGlobalIdx++
		}
		return a, nil
	case "enter":
		if a.selectedGlobalIdx >= 0 && a.selectedGlobalIdx < len(a.globalSearchResults) {
			selectedMatch := a.globalSearchResults[a.selectedGlobalIdx]
			a.showGlobalSearch = false
			a.pendingScrollToMessageIdx = selectedMatch.MessageIndex
			return a, a.dataModel.LoadSession(selectedMatch.SessionID)
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.globalSearchInput, cmd = a.globalSearchInput.Update(msg)
	query := a.globalSearchInput.Value()
	if query != "" && a.dataModel.SearchIndex != nil {
		results, err := a.dataModel.SearchIndex.SearchAllSessions(query)
		if err == nil {
			a.globalSearchResults = results
			a.selectedGlobalIdx = 0
		}
	} else {
		a.globalSearchResults = []storage.SessionMessageMatch{}
	}
	return a, cmd
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
