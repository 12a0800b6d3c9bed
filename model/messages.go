package model

import (
	"kaiwa/agent"
	"kaiwa/storage"
)

type StreamChunkMsg struct {
	Chunk string
}

type StreamDoneMsg struct {
	FullResponse string
}

type StreamErrorMsg struct {
	Err error
}

// StreamChunksCollectedMsg delivers a complete agent response: the raw chunks
// for typewriter playback plus the result metadata (search query, citations,
// tool invocation count).
type StreamChunksCollectedMsg struct {
	Chunks       []string
	FullResponse string
	Result       agent.Result
}

type DisplayChunkTickMsg struct{}

type MarkdownRenderedMsg struct {
	MessageIndex int
	Rendered     string
}

// AgentSwitchedMsg reports the outcome of an agent switch.
type AgentSwitchedMsg struct {
	AgentType    string
	Capabilities []string
	Err          error
}

// SettingUpdatedMsg reports the outcome of persisting a settings change.
type SettingUpdatedMsg struct {
	Field string
	Err   error
}

type SessionsListMsg struct {
	Sessions []storage.SessionMetadata
	Err      error
}

type SessionLoadedMsg struct {
	Session *storage.Session
	Err     error
}

type SessionSavedMsg struct {
	Err error
}

type SessionRenamedMsg struct {
	Err error
}

type SessionExportedMsg struct {
	Path      string
	Err       error
	Cancelled bool
}

type SessionImportedMsg struct {
	Session   *storage.Session
	Err       error
	Cancelled bool
}

type ExportCleanupDoneMsg struct{}

// Document library messages.
type DocumentsListMsg struct {
	Documents []storage.Document
	Err       error
}

type DocumentAddedMsg struct {
	Document *storage.Document
	Err      error
}

type DocumentDeletedMsg struct {
	ID  int64
	Err error
}

type FlashTickMsg struct{}

type EditorContentMsg struct {
	Content string
}

type EditorErrorMsg struct {
	Err error
}
