package model

import (
	"kaiwa/agent"
	"kaiwa/config"
	"kaiwa/storage"
)

// Model holds the core application data and business logic state
type Model struct {
	// Core dependencies
	Config         *config.Config
	Agents         *agent.Manager
	SessionStorage *storage.SessionStorage
	DocumentStore  *storage.DocumentStore

	// Application data
	Messages       []Message
	CurrentSession *storage.Session
	SearchIndex    *storage.SearchIndex

	// Runtime state (not UI)
	Streaming          bool
	SessionDirty       bool
	NeedsInitialRender bool
	Quitting           bool

	// Application metadata
	Version string
	License string
}

// NewModel creates a new Model with the given configuration
func NewModel(cfg *config.Config, agents *agent.Manager, sessionStorage *storage.SessionStorage, documentStore *storage.DocumentStore, lastSession *storage.Session, searchIndex *storage.SearchIndex, version, license string) *Model {
	// Restore the agent type from the last session if available
	if agents != nil && lastSession != nil && lastSession.AgentType != "" {
		if err := agents.SwitchAgent(lastSession.AgentType); err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[Model] could not restore agent '%s': %v", lastSession.AgentType, err)
			}
		}
	}

	// Load messages from last session if available
	var messages []Message
	needsRender := false
	if lastSession != nil {
		for _, sMsg := range lastSession.Messages {
			messages = append(messages, Message{
				Role:      sMsg.Role,
				Content:   sMsg.Content,
				Rendered:  sMsg.Rendered,
				Timestamp: sMsg.Timestamp,
			})
		}
		needsRender = len(messages) > 0
	}

	m := &Model{
		Config:             cfg,
		Agents:             agents,
		SessionStorage:     sessionStorage,
		DocumentStore:      documentStore,
		Messages:           messages,
		CurrentSession:     lastSession,
		SearchIndex:        searchIndex,
		Streaming:          false,
		SessionDirty:       false,
		NeedsInitialRender: needsRender,
		Quitting:           false,
		Version:            version,
		License:            license,
	}

	return m
}

// AvailableAgents lists the selectable agent types in display order.
func (m *Model) AvailableAgents() []string {
	return agent.AvailableAgents()
}

// CurrentAgentType returns the active agent type name.
func (m *Model) CurrentAgentType() string {
	if m.Agents == nil {
		return agent.TypeChat
	}
	return m.Agents.Current()
}
