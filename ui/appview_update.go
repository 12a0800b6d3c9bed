package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"kaiwa/config"
	"kaiwa/storage"
)

func (a AppView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	// Update spinner FIRST to handle TickMsg before anything else
	if a.dataModel.Streaming && len(a.dataModel.Messages) > 0 && a.dataModel.Messages[len(a.dataModel.Messages)-1].Role == "system" {
		a.loadingSpinner, cmd = a.loadingSpinner.Update(msg)
		cmds = append(cmds, cmd)
		// Update viewport to show animated spinner
		a.updateViewportContent(true)
	}

	if a.exportingSession || a.exportCleaningUp {
		a.exportSpinner, cmd = a.exportSpinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

		// Reserve space for title (1 line), separator (1 line), textarea (3 lines), and status bar (1 line)
		viewportHeight := a.height - 6
		a.viewport.Width = a.width
		a.viewport.Height = viewportHeight
		a.textarea.SetWidth(a.width)

		a.ready = true
		a.updateViewportContent(true)

		// Trigger initial rendering if needed (after we have width)
		if a.dataModel.NeedsInitialRender {
			a.dataModel.NeedsInitialRender = false
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
		}

		return a, nil

	case tea.KeyMsg:
		// PRIORITY 0: Always-global quit
		if msg.String() == "alt+q" {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[UI] Alt+Q pressed - quitting")
			}
			if a.dataModel.CurrentSession != nil && a.dataModel.SessionStorage != nil {
				_ = a.dataModel.SessionStorage.UnlockSession(a.dataModel.CurrentSession.ID)
			}
			return a, tea.Quit
		}

		// PRIORITY 1: Modal toggle shortcuts (close current modal, open new one)
		switch msg.String() {
		case "alt+h":
			a.showHelp = !a.showHelp
			return a, nil

		case "alt+n":
			a.closeAllModals()

			// Unlock current session before clearing
			if a.dataModel.CurrentSession != nil && a.dataModel.SessionStorage != nil {
				_ = a.dataModel.SessionStorage.UnlockSession(a.dataModel.CurrentSession.ID)
			}

			// Create and save new session (shared implementation)
			newSession, err := a.dataModel.CreateAndSaveNewSession("New Session", "")
			if err != nil {
				if config.DebugLog != nil {
					config.DebugLog.Printf("Failed to create new Session: %v", err)
				}
				return a, nil
			}

			a.dataModel.Messages = []Message{}
			a.setCurrentSession(newSession)
			a.dataModel.SessionDirty = false
			a.textarea.Reset()
			a.updateViewportContent(true)
			return a, nil

		case "alt+s":
			wasOpen := a.showSessionManager
			a.closeAllModals()
			a.showSessionManager = !wasOpen
			if a.showSessionManager {
				return a, a.dataModel.FetchSessionList()
			}
			return a, nil

		case "alt+e":
			// Only allow editing if we have a current session
			if a.dataModel.CurrentSession != nil {
				a.closeAllModals()
				a.ensureSessionModalInputs()

				a.showEditSessionModal = true
				a.editSessionID = a.dataModel.CurrentSession.ID
				a.newSessionFocusedField = 0
				a.newSessionNameInput.SetValue(a.dataModel.CurrentSession.Name)
				a.newSessionPromptInput.SetValue(a.dataModel.CurrentSession.SystemPrompt)
				a.newSessionNameInput.Focus()
				a.newSessionPromptInput.Blur()
				return a, textinput.Blink
			}
			return a, nil

		case "alt+a":
			wasOpen := a.showAgentSelector
			a.closeAllModals()
			a.showAgentSelector = !wasOpen
			if a.showAgentSelector {
				current := a.dataModel.CurrentAgentType()
				for i, agentType := range a.agentList {
					if agentType == current {
						a.selectedAgentIdx = i
						break
					}
				}
			}
			return a, nil

		case "alt+d":
			wasOpen := a.showDocumentManager
			a.closeAllModals()
			a.showDocumentManager = !wasOpen
			if a.showDocumentManager {
				a.selectedDocumentIdx = 0
				return a, a.dataModel.FetchDocumentList()
			}
			return a, nil

		case "alt+f":
			wasOpen := a.showMessageSearch
			a.closeAllModals()
			a.showMessageSearch = !wasOpen
			if a.showMessageSearch {
				a.messageSearchInput.Focus()
				a.messageSearchInput.SetValue("")
				a.messageSearchResults = []storage.MessageMatch{}
				a.selectedSearchIdx = 0
				return a, textinput.Blink
			}
			return a, nil

		case "alt+F":
			wasOpen := a.showGlobalSearch
			a.closeAllModals()
			a.showGlobalSearch = !wasOpen
			if a.showGlobalSearch {
				a.globalSearchInput.Focus()
				a.globalSearchInput.SetValue("")
				a.globalSearchResults = []storage.SessionMessageMatch{}
				a.selectedGlobalIdx = 0
				return a, textinput.Blink
			}
			return a, nil

		case "alt+S":
			wasOpen := a.showSettings
			a.closeAllModals()
			a.showSettings = !wasOpen
			if a.showSettings {
				a.settingsFields = buildSettingsFields(a.dataModel.Config)
				a.selectedSettingIdx = 0
				a.settingsEditMode = false
				a.settingsHasChanges = false
				a.settingsConfirmExit = false
				a.settingsSaveError = ""

				a.settingsEditInput = textinput.New()
				a.settingsEditInput.Width = 50
				a.settingsEditInput.CharLimit = 200
			}
			return a, nil

		case "alt+A":
			wasOpen := a.showAbout
			a.closeAllModals()
			a.showAbout = !wasOpen
			return a, nil
		}

		// PRIORITY 2: Modal-specific key handling (order matches View rendering)
		// Info modal (highest priority - close on any key)
		if a.showInfoModal {
			a.showInfoModal = false
			a.infoModalTitle = ""
			a.infoModalMsg = ""
			return a, nil
		}

		if a.showAcknowledgeModal {
			if msg.String() == "enter" {
				a.showAcknowledgeModal = false
				return a, nil
			}
			return a, nil
		}

		if a.showHelp {
			if msg.String() == "esc" {
				a.showHelp = false
			}
			return a, nil
		}

		if a.showAgentSelector {
			return a.handleAgentSelectorUpdate(msg)
		}

		if a.showSettings {
			return a.handleSettingsUpdate(msg)
		}

		// Check child modals BEFORE parent (New/Edit session before Session Manager)
		if a.showNewSessionModal {
			return a.handleNewSessionModalUpdate(msg)
		}

		if a.showEditSessionModal {
			return a.handleEditSessionModalUpdate(msg)
		}

		if a.showSessionManager {
			return a.handleSessionManagerUpdate(msg)
		}

		if a.showDocumentManager {
			return a.handleDocumentManagerUpdate(msg)
		}

		if a.showGlobalSearch {
			return a.handleGlobalSearchUpdate(msg)
		}

		if a.showMessageSearch {
			return a.handleMessageSearchUpdate(msg)
		}

		if a.showAbout {
			return a.handleAboutUpdate(msg)
		}

		// PRIORITY 3: Tab handling (chat input)
		if msg.String() == "tab" && !a.dataModel.Streaming {
			a.textarea.InsertString("   ")
			return a, nil
		}

		// PRIORITY 4: Streaming cancellation (only if no modal open)
		if msg.String() == "esc" && a.dataModel.Streaming {
			a.dataModel.Streaming = false
			a.searchNotice = ""

			partialResp := a.currentResp.String()

			if len(a.dataModel.Messages) > 0 && a.dataModel.Messages[len(a.dataModel.Messages)-1].Role == "system" {
				a.dataModel.Messages = a.dataModel.Messages[:len(a.dataModel.Messages)-1]
			}

			if partialResp != "" {
				a.dataModel.Messages = append(a.dataModel.Messages, Message{
					Role:      "assistant",
					Content:   partialResp + "\n\n⚠️ Response cancelled",
					Rendered:  partialResp + "\n\n⚠️ Response cancelled",
					Timestamp: time.Now(),
				})
			} else {
				a.dataModel.Messages = append(a.dataModel.Messages, Message{
					Role:      "system",
					Content:   "⚠️ Request cancelled",
					Rendered:  "⚠️ Request cancelled",
					Timestamp: time.Now(),
				})
			}

			a.chunks = nil
			a.chunkIndex = 0
			a.currentResp.Reset()

			a.updateViewportContent(true)
			return a, nil
		}

		// Handle Enter for sending messages - DON'T let textarea process it
		// But allow Alt+Enter to pass through for newlines
		if msg.Type == tea.KeyEnter && !msg.Alt && !a.dataModel.Streaming {
			if a.textarea.Value() != "" {
				userMsg := a.textarea.Value()
				a.textarea.Reset()

				// Clear editor temp file (defense in depth)
				if err := config.ClearEditorTempFile(); err != nil {
					if config.DebugLog != nil {
						config.DebugLog.Printf("Warning: failed to clear editor temp file: %v", err)
					}
				}

				if config.DebugLog != nil {
					config.DebugLog.Printf("Enter pressed - sending message: %s", userMsg)
				}

				// Add user message
				a.dataModel.Messages = append(a.dataModel.Messages, Message{
					Role:      "user",
					Content:   userMsg,
					Rendered:  userMsg, // Start with plain text, will be rendered async
					Timestamp: time.Now(),
				})

				// Trigger markdown rendering for user message
				userMessageIndex := len(a.dataModel.Messages) - 1

				// Initialize and start spinner
				a.loadingSpinner = spinner.New()
				a.loadingSpinner.Spinner = spinner.Dot
				a.loadingSpinner.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("15")) // Bright white

				// Add loading message (will be updated with spinner in updateViewportContent)
				loadingMsg := "Waiting for response..."
				a.dataModel.Messages = append(a.dataModel.Messages, Message{
					Role:      "system",
					Content:   loadingMsg,
					Rendered:  loadingMsg,
					Timestamp: time.Now(),
				})

				a.dataModel.Streaming = true
				a.updateViewportContent(true)

				if config.DebugLog != nil {
					config.DebugLog.Printf("Firing SendMessage() Cmd")
				}

				// Start streaming response, spinner animation, and render user message markdown
				return a, tea.Batch(
					a.renderMarkdownAsync(userMessageIndex, userMsg),
					a.dataModel.SendMessage(),
					a.loadingSpinner.Tick,
				)
			}
			// Don't pass Enter to textarea - we handled it
			return a, nil
		}

		switch msg.String() {
		case "alt+i":
			// Open external editor (only if not streaming)
			if !a.dataModel.Streaming {
				return a, a.dataModel.OpenExternalEditor(a.textarea.Value())
			}
			return a, nil

		case "alt+y":
			// Copy last assistant message
			for i := len(a.dataModel.Messages) - 1; i >= 0; i-- {
				if a.dataModel.Messages[i].Role == "assistant" {
					clipboard.WriteAll(a.dataModel.Messages[i].Content)
					return a, nil
				}
			}
			return a, nil

		case "alt+c":
			// Copy all messages
			var allText strings.Builder
			for _, msg := range a.dataModel.Messages {
				role := msg.Role
				switch role {
				case "user":
					role = "You"
				case "assistant":
					role = "Assistant"
				}
				allText.WriteString(fmt.Sprintf("[%s] %s:\n%s\n\n",
					msg.Timestamp.Format("15:04"),
					role,
					msg.Content))
			}
			clipboard.WriteAll(allText.String())
			return a, nil

		case "alt+j", "alt+down":
			a.viewport.HalfPageDown()
			return a, nil

		case "alt+k", "alt+up":
			a.viewport.HalfPageUp()
			return a, nil

		case "alt+J", "pgdown":
			a.viewport.PageDown()
			return a, nil

		case "alt+K", "pgup":
			a.viewport.PageUp()
			return a, nil

		case "alt+g":
			a.viewport.GotoTop()
			return a, nil

		case "alt+G":
			a.viewport.GotoBottom()
			return a, nil
		}

	case streamChunksCollectedMsg, displayChunkTickMsg, streamChunkMsg, streamDoneMsg, streamErrorMsg:
		view, cmd := a.handleStreamingMessage(msg)
		cmds = append(cmds, cmd)
		return view, tea.Batch(cmds...)

	case sessionsListMsg, sessionLoadedMsg, sessionSavedMsg, sessionRenamedMsg,
		sessionExportedMsg, sessionImportedMsg, exportCleanupDoneMsg:
		view, cmd := a.handleSessionMessage(msg)
		cmds = append(cmds, cmd)
		return view, tea.Batch(cmds...)

	case markdownRenderedMsg, flashTickMsg, agentSwitchedMsg, settingUpdatedMsg,
		documentsListMsg, documentAddedMsg, documentDeletedMsg,
		editorContentMsg, editorErrorMsg:
		view, cmd := a.handleUIMessage(msg)
		cmds = append(cmds, cmd)
		return view, tea.Batch(cmds...)
	}

	// Update textarea only if not streaming
	if !a.dataModel.Streaming {
		a.textarea, cmd = a.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}

	return a, tea.Batch(cmds...)
}

// ensureSessionModalInputs lazily initializes the shared new/edit session inputs.
func (a *AppView) ensureSessionModalInputs() {
	if a.newSessionNameInput.Width == 0 {
		a.newSessionNameInput = textinput.New()
		a.newSessionNameInput.Width = 60
		a.newSessionNameInput.CharLimit = 100
		a.newSessionNameInput.Placeholder = "Enter session name (optional)"
	}
	if a.newSessionPromptInput.Width() == 0 {
		a.newSessionPromptInput = textarea.New()
		a.newSessionPromptInput.SetWidth(60)
		a.newSessionPromptInput.SetHeight(5)
		a.newSessionPromptInput.CharLimit = 0
		a.newSessionPromptInput.Placeholder = "Enter system prompt (optional)"
	}
}
