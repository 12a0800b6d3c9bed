package ui

import (
	"kaiwa/model"
)

// Message type aliases for backward compatibility
type Message = model.Message

// Message type aliases - these are now defined in model package
type streamChunkMsg = model.StreamChunkMsg
type streamDoneMsg = model.StreamDoneMsg
type streamErrorMsg = model.StreamErrorMsg
type streamChunksCollectedMsg = model.StreamChunksCollectedMsg
type displayChunkTickMsg = model.DisplayChunkTickMsg
type markdownRenderedMsg = model.MarkdownRenderedMsg
type agentSwitchedMsg = model.AgentSwitchedMsg
type settingUpdatedMsg = model.SettingUpdatedMsg
type sessionsListMsg = model.SessionsListMsg
type sessionLoadedMsg = model.SessionLoadedMsg
type sessionSavedMsg = model.SessionSavedMsg
type sessionRenamedMsg = model.SessionRenamedMsg
type sessionExportedMsg = model.SessionExportedMsg
type sessionImportedMsg = model.SessionImportedMsg
type exportCleanupDoneMsg = model.ExportCleanupDoneMsg
type documentsListMsg = model.DocumentsListMsg
type documentAddedMsg = model.DocumentAddedMsg
type documentDeletedMsg = model.DocumentDeletedMsg
type flashTickMsg = model.FlashTickMsg
type editorContentMsg = model.EditorContentMsg
type editorErrorMsg = model.EditorErrorMsg

type SettingFieldType int

const (
	SettingTypeBackend SettingFieldType = iota
	SettingTypeText
	SettingTypeSecret
	SettingTypeBool
	SettingTypeInt
	SettingTypeChoice
)

type SettingField struct {
	Label        string
	Key          string // field name passed to the settings updater
	Value        string
	DefaultValue string
	Type         SettingFieldType
	Choices      []string // for SettingTypeChoice and SettingTypeBackend
	ErrorMsg     string
}
