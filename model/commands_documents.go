package model

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"kaiwa/agent"
	"kaiwa/config"
	"kaiwa/storage"
)

// FetchDocumentList retrieves the document library
func (m *Model) FetchDocumentList() tea.Cmd {
	if m.DocumentStore == nil {
		return nil
	}
	store := m.DocumentStore
	return func() tea.Msg {
		docs, err := store.List()
		return DocumentsListMsg{
			Documents: docs,
			Err:       err,
		}
	}
}

// AddDocumentCmd stores a new document and pushes the refreshed library into
// the context-aware agent.
func (m *Model) AddDocumentCmd(title, content string) tea.Cmd {
	if m.DocumentStore == nil {
		return nil
	}
	store := m.DocumentStore
	agents := m.Agents
	return func() tea.Msg {
		doc, err := store.Add(title, content)
		if err != nil {
			return DocumentAddedMsg{Err: err}
		}
		if err := syncDocuments(store, agents); err != nil {
			return DocumentAddedMsg{Document: doc, Err: err}
		}
		return DocumentAddedMsg{Document: doc}
	}
}

// DeleteDocumentCmd removes a document and pushes the refreshed library into
// the context-aware agent.
func (m *Model) DeleteDocumentCmd(id int64) tea.Cmd {
	if m.DocumentStore == nil {
		return nil
	}
	store := m.DocumentStore
	agents := m.Agents
	return func() tea.Msg {
		if err := store.Delete(id); err != nil {
			return DocumentDeletedMsg{ID: id, Err: err}
		}
		if err := syncDocuments(store, agents); err != nil {
			return DocumentDeletedMsg{ID: id, Err: err}
		}
		return DocumentDeletedMsg{ID: id}
	}
}

// syncDocuments reloads the library and hands it to the context-aware agent
// so retrieval always runs against current content, including after the last
// document is removed.
func syncDocuments(store *storage.DocumentStore, agents *agent.Manager) error {
	if agents == nil {
		return fmt.Errorf("agents not initialized")
	}
	docs, err := store.List()
	if err != nil {
		return fmt.Errorf("failed to reload documents: %w", err)
	}

	agentDocs := make([]agent.Document, 0, len(docs))
	for _, d := range docs {
		agentDocs = append(agentDocs, agent.Document{
			ID:      d.ID,
			Title:   d.Title,
			Content: d.Content,
		})
	}

	a, err := agents.Agent(agent.TypeDocs)
	if err != nil {
		return err
	}
	if docsAgent, ok := a.(*agent.DocsAgent); ok {
		docsAgent.SetDocuments(agentDocs)
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Model] synced %d documents to agents", len(agentDocs))
	}
	return nil
}
