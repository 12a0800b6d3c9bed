package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"kaiwa/agent"
	"kaiwa/config"
	"kaiwa/model"
	"kaiwa/storage"
	"kaiwa/ui"
)

const (
	Version = "v0.01.00"
	License = "Apache-2.0"
)

// fatalModal shows a startup error in a minimal bubbletea program so the
// failure is readable even when stderr is swallowed by the terminal setup.
func fatalModal(title, message string) {
	p := tea.NewProgram(
		ui.NewErrorModal(title, message),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(1)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize debug logging after config is loaded
	config.InitDebugLog(cfg.DataDir())

	// Clean up old tmp dir in cache directory (crash recovery)
	if err := config.CleanupTempDir(); err != nil && config.DebugLog != nil {
		config.DebugLog.Printf("Warning: failed to cleanup old temp directory: %v", err)
	}

	// Create secure temp directory in cache (never synced to cloud)
	if err := config.CreateTempDir(); err != nil {
		fmt.Printf("Failed to create secure temp directory: %v\n", err)
		os.Exit(1)
	}

	defer func() {
		if err := config.CleanupTempDir(); err != nil && config.DebugLog != nil {
			config.DebugLog.Printf("Warning: failed to cleanup temp directory on exit: %v", err)
		}
	}()

	sessionStorage, err := storage.NewSessionStorage(cfg.DataDir())
	if err != nil {
		fmt.Printf("Failed to initialize session storage: %v\n", err)
		os.Exit(1)
	}

	documentStore, err := storage.NewDocumentStore(cfg.DataDir())
	if err != nil {
		fatalModal("Storage Error",
			fmt.Sprintf("Failed to open the document library:\n%v", err))
	}
	defer documentStore.Close()

	opts := model.AgentOptionsFromConfig(cfg)
	opts.Tools = agent.BuiltinTools()
	if docs, err := documentStore.List(); err == nil {
		for _, d := range docs {
			opts.Documents = append(opts.Documents, agent.Document{
				ID:      d.ID,
				Title:   d.Title,
				Content: d.Content,
			})
		}
	} else if config.DebugLog != nil {
		config.DebugLog.Printf("Warning: failed to preload documents: %v", err)
	}
	agents := agent.NewManager(opts)

	// Load last session with lock check
	var lastSession *storage.Session
	if lastSessionID, err := sessionStorage.LoadCurrentSessionID(); err == nil {
		// Skip sessions held by another running instance; the UI starts a
		// fresh session when lastSession stays nil.
		isLocked, lockErr := sessionStorage.CheckSessionLock(lastSessionID)
		if lockErr == nil && !isLocked {
			lastSession, _ = sessionStorage.Load(lastSessionID)
		}
	}

	app := ui.NewAppView(cfg, agents, sessionStorage, documentStore, lastSession, Version, License)

	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		fmt.Printf("Error running kaiwa: %v\n", err)
		os.Exit(1)
	}

	if av, ok := finalModel.(ui.AppView); ok {
		if err := av.UnlockCurrentSession(); err != nil && config.DebugLog != nil {
			config.DebugLog.Printf("Warning: failed to release session lock: %v", err)
		}
	}
}
