package model

import (
	"os"
	"os/exec"
	"runtime"

	tea "github.com/charmbracelet/bubbletea"

	"kaiwa/config"
)

// OpenExternalEditor opens the user's preferred text editor to compose a message
func (m *Model) OpenExternalEditor(currentContent string) tea.Cmd {
	// Use secure temp file in cache directory (never synced to cloud)
	tmpPath := config.GetEditorTempFile()

	// Create/truncate file with secure permissions
	tmpFile, err := os.OpenFile(tmpPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return func() tea.Msg {
			return EditorErrorMsg{Err: err}
		}
	}

	// Write current content to temp file (if any)
	if currentContent != "" {
		if _, err := tmpFile.WriteString(currentContent); err != nil {
			tmpFile.Close()
			os.Remove(tmpPath)
			return func() tea.Msg {
				return EditorErrorMsg{Err: err}
			}
		}
	}
	tmpFile.Close()

	editor := getDefaultEditor()

	cmd := exec.Command(editor, tmpPath)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	// Suspend the TUI while the editor runs
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		// Read edited content; the file is reused and cleared after send
		content, readErr := os.ReadFile(tmpPath)

		if err != nil {
			return EditorErrorMsg{Err: err}
		}
		if readErr != nil {
			return EditorErrorMsg{Err: readErr}
		}

		return EditorContentMsg{Content: string(content)}
	})
}

func getDefaultEditor() string {
	// App-specific override first
	editor := os.Getenv("KAIWA_EDITOR")
	if editor != "" {
		return editor
	}

	// Standard Unix environment variables
	editor = os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor != "" {
		return editor
	}

	if runtime.GOOS == "windows" {
		return "notepad"
	}

	preferredEditors := []string{"nano", "nvim", "vim", "vi", "emacs"}
	for _, ed := range preferredEditors {
		if _, err := exec.LookPath(ed); err == nil {
			return ed
		}
	}

	// vi is the POSIX fallback
	return "vi"
}
