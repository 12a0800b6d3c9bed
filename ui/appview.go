package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"kaiwa/agent"
	"kaiwa/config"
	appmodel "kaiwa/model"
	"kaiwa/storage"
)

type AppView struct {
	// Reference to core data model
	dataModel *appmodel.Model

	// UI Components
	viewport viewport.Model
	textarea textarea.Model

	// Window state
	width  int
	height int
	ready  bool

	// Streaming UI state
	currentResp *strings.Builder // Pointer to avoid copy panic
	showHelp    bool

	// Typewriter effect fields
	chunks     []string // Chunks to display with typewriter effect
	chunkIndex int      // Current chunk being displayed

	// Loading spinner (bubbles/spinner)
	loadingSpinner spinner.Model

	// Search-in-progress notice shown in the title bar while the agent
	// is between search markers in the stream
	searchNotice string

	// Agent selector
	showAgentSelector bool
	agentList         []string
	selectedAgentIdx  int

	// Session management UI
	showSessionManager   bool
	sessionList          []storage.SessionMetadata
	selectedSessionIdx   int
	sessionRenameMode    bool
	sessionRenameInput   textinput.Model
	sessionFilterMode    bool
	sessionFilterInput   textinput.Model
	filteredSessionList  []storage.SessionMetadata
	sessionExportMode    bool
	sessionExportInput   textinput.Model
	sessionImportMode    bool
	sessionImportInput   textinput.Model
	sessionImportSuccess *storage.Session
	sessionExportSuccess string // Contains export path if successful, empty otherwise

	// Export state
	exportingSession bool
	exportSpinner    spinner.Model
	exportCancelCtx  context.Context
	exportCancelFunc context.CancelFunc
	exportTargetPath string
	exportCleaningUp bool

	// About modal
	showAbout bool

	// Settings modal
	showSettings        bool
	settingsFields      []SettingField
	selectedSettingIdx  int
	settingsEditMode    bool
	settingsEditInput   textinput.Model
	settingsHasChanges  bool
	settingsConfirmExit bool
	settingsSaveError   string

	// Document library UI
	showDocumentManager  bool
	documentList         []storage.Document
	selectedDocumentIdx  int
	documentAddMode      bool
	documentTitleInput   textinput.Model
	documentContentInput textarea.Model
	documentFocusedField int
	documentViewMode     bool
	confirmDeleteDoc     *storage.Document

	// Delete confirmation state
	confirmDeleteSession *storage.SessionMetadata

	// Info modal state (for simple notifications/errors)
	showInfoModal  bool
	infoModalTitle string
	infoModalMsg   string

	// Acknowledge modal (for warnings/errors requiring only acknowledgement)
	showAcknowledgeModal  bool
	acknowledgeModalTitle string
	acknowledgeModalMsg   string
	acknowledgeModalType  ModalType

	// New session modal
	showNewSessionModal    bool
	newSessionNameInput    textinput.Model
	newSessionPromptInput  textarea.Model
	newSessionFocusedField int

	// Edit session modal (reuses newSession inputs)
	showEditSessionModal bool
	editSessionID        string

	showMessageSearch      bool
	messageSearchInput     textinput.Model
	messageSearchResults   []storage.MessageMatch
	selectedSearchIdx      int
	messageSearchScrollIdx int

	showGlobalSearch      bool
	globalSearchInput     textinput.Model
	globalSearchResults   []storage.SessionMessageMatch
	selectedGlobalIdx     int
	globalSearchScrollIdx int

	highlightedMessageIdx     int
	highlightFlashCount       int
	pendingScrollToMessageIdx int
}

func NewAppView(cfg *config.Config, agents *agent.Manager, sessionStorage *storage.SessionStorage, documentStore *storage.DocumentStore, lastSession *storage.Session, version, license string) AppView {
	ta := textarea.New()
	ta.Placeholder = "Type your message here or press Alt+I to use your favorite text editor..."
	ta.Focus()
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.SetWidth(80)

	// Custom KeyMap: Alt+Enter for newline, Enter alone does nothing (handled separately)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))

	// Set dynamic prompt: "> " for first line, "| " for subsequent lines
	ta.SetPromptFunc(2, func(lineIdx int) string {
		if lineIdx == 0 {
			return "> "
		}
		return "| "
	})

	vp := viewport.New(0, 0)

	sessionFilterInput := textinput.New()
	sessionFilterInput.Prompt = "Filter: "
	sessionFilterInput.CharLimit = 64

	sessionImportInput := textinput.New()
	sessionImportInput.Prompt = "Import path: "
	sessionImportInput.CharLimit = 256

	messageSearchInput := textinput.New()
	messageSearchInput.Prompt = "Search: "
	messageSearchInput.CharLimit = 100

	globalSearchInput := textinput.New()
	globalSearchInput.Prompt = "Search all: "
	globalSearchInput.CharLimit = 100

	documentTitleInput := textinput.New()
	documentTitleInput.Prompt = "Title: "
	documentTitleInput.CharLimit = 120

	documentContentInput := textarea.New()
	documentContentInput.Placeholder = "Document content..."
	documentContentInput.CharLimit = 0
	documentContentInput.ShowLineNumbers = false
	documentContentInput.SetHeight(8)
	documentContentInput.SetWidth(64)

	// Create search index
	searchIndex := storage.NewSearchIndex(sessionStorage)

	// Initialize the core data model; restores the last session's agent type
	dataModel := appmodel.NewModel(cfg, agents, sessionStorage, documentStore, lastSession, searchIndex, version, license)

	// Create initial session if none exists (e.g., first launch)
	if lastSession == nil {
		newSession, _ := dataModel.CreateAndSaveNewSession("New Session", "")
		dataModel.CurrentSession = newSession
	}

	return AppView{
		dataModel:                 dataModel,
		textarea:                  ta,
		viewport:                  vp,
		currentResp:               &strings.Builder{},
		ready:                     false,
		showHelp:                  false,
		showAbout:                 false,
		agentList:                 agent.AvailableAgents(),
		sessionFilterMode:         false,
		sessionFilterInput:        sessionFilterInput,
		sessionImportInput:        sessionImportInput,
		filteredSessionList:       []storage.SessionMetadata{},
		messageSearchInput:        messageSearchInput,
		globalSearchInput:         globalSearchInput,
		documentTitleInput:        documentTitleInput,
		documentContentInput:      documentContentInput,
		highlightedMessageIdx:     -1,
		pendingScrollToMessageIdx: -1,
	}
}

func (a AppView) Init() tea.Cmd {
	// Don't render markdown here - wait for WindowSizeMsg to get correct width
	// The NeedsInitialRender flag is set in NewModel() if messages were loaded
	return tea.Batch(
		textarea.Blink,
		a.dataModel.FetchDocumentList(), // Seeds the docs agent with the stored library
	)
}

func (a AppView) View() string {
	if !a.ready {
		return "Loading Kaiwa..."
	}

	// Modal rendering order (top to bottom layers):
	// 1. Info/acknowledge modals
	// 2. Help (can peek while in other modals)
	// 3. Agent selector
	// 4. Settings
	// 5. Session manager / document manager
	// 6. Search modals
	// 7. About

	// Show info modal if active (highest priority)
	if a.showInfoModal {
		return RenderConfirmationModal(ConfirmationState{
			Active:  true,
			Title:   a.infoModalTitle,
			Message: a.infoModalMsg,
		}, a.width, a.height)
	}

	// Show acknowledge modal if active (warnings/errors requiring only acknowledgement)
	if a.showAcknowledgeModal {
		return RenderAcknowledgeModal(
			a.acknowledgeModalTitle,
			a.acknowledgeModalMsg,
			a.acknowledgeModalType,
			a.width,
			a.height,
		)
	}

	// Show help modal if toggled (top layer - can appear over other modals)
	if a.showHelp {
		return renderHelpModal(a.dataModel.Config.Keybindings, a.width, a.height)
	}

	// Show agent selector if toggled
	if a.showAgentSelector {
		return renderAgentSelector(a.agentList, a.selectedAgentIdx, a.dataModel.CurrentAgentType(), a.width, a.height)
	}

	// Show settings modal if toggled
	if a.showSettings {
		return renderSettings(a.settingsFields, a.selectedSettingIdx, a.settingsEditMode, a.settingsEditInput, a.settingsHasChanges, a.settingsConfirmExit, a.settingsSaveError, a.width, a.height)
	}

	// Show new session modal (must be before session manager)
	if a.showNewSessionModal {
		return renderSessionModal("New session", a.newSessionNameInput, a.newSessionPromptInput, a.newSessionFocusedField, a.width, a.height)
	}

	// Show edit session modal (must be before session manager)
	if a.showEditSessionModal {
		return renderSessionModal("Edit session", a.newSessionNameInput, a.newSessionPromptInput, a.newSessionFocusedField, a.width, a.height)
	}

	// Show session manager if toggled
	if a.showSessionManager {
		currentSessionID := ""
		if a.dataModel.CurrentSession != nil {
			currentSessionID = a.dataModel.CurrentSession.ID
		}
		return renderSessionManager(a.sessionList, a.selectedSessionIdx, currentSessionID, a.sessionRenameMode, a.sessionRenameInput, a.sessionExportMode, a.sessionExportInput, a.sessionImportMode, a.sessionImportInput, a.exportingSession, a.exportCleaningUp, a.exportSpinner, a.sessionExportSuccess, a.sessionImportSuccess, a.confirmDeleteSession, a.sessionFilterMode, a.sessionFilterInput, a.filteredSessionList, a.width, a.height)
	}

	// Show document manager if toggled
	if a.showDocumentManager {
		return a.renderDocumentManager()
	}

	if a.showGlobalSearch {
		return renderGlobalSearch(a.globalSearchInput, a.globalSearchResults, a.selectedGlobalIdx, a.globalSearchScrollIdx, a.width, a.height)
	}

	if a.showMessageSearch {
		return renderMessageSearch(a.messageSearchInput, a.messageSearchResults, a.selectedSearchIdx, a.messageSearchScrollIdx, a.width, a.height)
	}

	// Show about modal if toggled
	if a.showAbout {
		return renderAboutModal(a.width, a.height, a.dataModel.Version, a.dataModel.License)
	}

	// Title bar - "Kaiwa - agent - Session Name | search notice"
	appText := AssistantStyle.Render("Kaiwa")
	agentText := TitleStyle.Render(fmt.Sprintf(" - %s", agentDisplayName(a.dataModel.CurrentAgentType())))
	sessionName := "New Session"
	if a.dataModel.CurrentSession != nil && a.dataModel.CurrentSession.Name != "" {
		sessionName = a.dataModel.CurrentSession.Name
	}
	sessionText := UserStyle.Render(fmt.Sprintf(" - %s", sessionName))

	title := appText + agentText + sessionText

	// Show a transient notice while the agent runs a web search
	if a.searchNotice != "" {
		title += SearchNoticeStyle.Render(fmt.Sprintf(" | 🔍 %s", a.searchNotice))
	}

	// Separator with bottom margin for header (empty line forces spacing)
	separator := ""

	// Viewport with messages
	viewportView := a.viewport.View()

	// Input area
	inputView := a.textarea.View()

	// Status bar with bold user green descriptions (main chat uses user green)
	descStyle := lipgloss.NewStyle().Foreground(successColor).Bold(true)
	statusBar := fmt.Sprintf("Alt+Q %s  Alt+A %s  Alt+S %s  Alt+D %s  Alt+F %s  Alt+Enter %s  Enter %s  Alt+Y %s",
		descStyle.Render("Quit"),
		descStyle.Render("Agents"),
		descStyle.Render("Sessions"),
		descStyle.Render("Documents"),
		descStyle.Render("Search"),
		descStyle.Render("New Line"),
		descStyle.Render("Send"),
		descStyle.Render("Copy"),
	)
	statusBar = StatusStyle.Render(statusBar)

	// Combine all parts
	return lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		separator,
		viewportView,
		inputView,
		statusBar,
	)
}

func (a AppView) getSessionList() []storage.SessionMetadata {
	if a.sessionFilterMode && len(a.filteredSessionList) > 0 {
		return a.filteredSessionList
	}
	return a.sessionList
}

// agentDisplayName maps an agent type to the name shown in the title bar.
func agentDisplayName(agentType string) string {
	switch agentType {
	case agent.TypeChat:
		return "Chat"
	case agent.TypeDocs:
		return "Documents"
	case agent.TypeSearch:
		return "Web Search"
	case agent.TypeTool:
		return "Tools"
	default:
		return agentType
	}
}

// setCurrentSession sets the current session on the data model.
func (a *AppView) setCurrentSession(session *storage.Session) {
	a.dataModel.CurrentSession = session
}

func (a *AppView) closeAllModals() {
	a.showInfoModal = false
	a.showHelp = false
	a.showSessionManager = false
	a.showAgentSelector = false
	a.showDocumentManager = false
	a.showMessageSearch = false
	a.showGlobalSearch = false
	a.showSettings = false
	a.showAbout = false

	a.sessionRenameMode = false
	a.sessionExportMode = false
	a.sessionImportMode = false
	a.sessionFilterMode = false
	a.confirmDeleteSession = nil

	a.documentAddMode = false
	a.documentViewMode = false
	a.confirmDeleteDoc = nil

	a.settingsEditMode = false
	a.settingsConfirmExit = false

	if a.sessionRenameInput.Focused() {
		a.sessionRenameInput.Blur()
	}
	if a.sessionExportInput.Focused() {
		a.sessionExportInput.Blur()
	}
	if a.sessionImportInput.Focused() {
		a.sessionImportInput.Blur()
	}
	if a.sessionFilterInput.Focused() {
		a.sessionFilterInput.Blur()
	}
	if a.messageSearchInput.Focused() {
		a.messageSearchInput.Blur()
	}
	if a.globalSearchInput.Focused() {
		a.globalSearchInput.Blur()
	}
	if a.settingsEditInput.Focused() {
		a.settingsEditInput.Blur()
	}
	if a.documentTitleInput.Focused() {
		a.documentTitleInput.Blur()
	}
	if a.documentContentInput.Focused() {
		a.documentContentInput.Blur()
	}
}

// UnlockCurrentSession releases this instance's lock on the active session.
// Called on application exit. Safe to call with nil storage.
func (a *AppView) UnlockCurrentSession() error {
	if a.dataModel == nil || a.dataModel.SessionStorage == nil || a.dataModel.CurrentSession == nil {
		return nil
	}
	return a.dataModel.SessionStorage.UnlockSession(a.dataModel.CurrentSession.ID)
}
