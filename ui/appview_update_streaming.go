package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"kaiwa/agent"
	"kaiwa/config"
)

// handleStreamingMessage handles all streaming-related messages
func (a AppView) handleStreamingMessage(msg tea.Msg) (AppView, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case streamChunksCollectedMsg:
		if config.DebugLog != nil {
			config.DebugLog.Printf("streamChunksCollectedMsg received - %d chunks collected", len(msg.Chunks))
		}

		// Ignore if user cancelled
		if !a.dataModel.Streaming {
			if config.DebugLog != nil {
				config.DebugLog.Printf("Ignoring streamChunksCollectedMsg - user cancelled")
			}
			return a, nil
		}

		// Keep system message - spinner stays animated until first real content arrives

		// Search markers are routed to the title bar notice, not the typewriter
		if msg.Result.SearchPerformed && msg.Result.SearchQuery != "" {
			a.searchNotice = fmt.Sprintf("searched: %s", msg.Result.SearchQuery)
		}

		// Initialize typewriter effect
		a.chunks = stripSearchMarkerChunks(msg.Chunks)
		a.chunkIndex = 0
		a.dataModel.Streaming = true
		a.currentResp.Reset()

		// Start displaying chunks with typewriter effect after a brief delay
		// System message with animated spinner stays visible during this delay
		return a, tea.Tick(300*time.Millisecond, func(time.Time) tea.Msg {
			return displayChunkTickMsg{}
		})

	case displayChunkTickMsg:
		// Stop typewriter if user cancelled
		if !a.dataModel.Streaming {
			return a, nil
		}

		if a.chunkIndex >= len(a.chunks) {
			// All chunks displayed - finalize
			fullResp := a.currentResp.String()
			a.dataModel.Streaming = false
			a.searchNotice = ""
			a.chunks = nil
			a.chunkIndex = 0
			a.currentResp.Reset()

			if config.DebugLog != nil {
				config.DebugLog.Printf("Typewriter complete - finalizing message")
			}

			// Add final message and trigger markdown render
			a.dataModel.Messages = append(a.dataModel.Messages, Message{
				Role:      "assistant",
				Content:   fullResp,
				Rendered:  fullResp, // Start with plain text
				Timestamp: time.Now(),
			})

			messageIndex := len(a.dataModel.Messages) - 1
			a.updateViewportContent(true)
			a.dataModel.SessionDirty = true

			// Auto-save session and render markdown
			cmds = []tea.Cmd{
				a.renderMarkdownAsync(messageIndex, fullResp),
				a.dataModel.AutoSaveSession(),
			}
			return a, tea.Batch(cmds...)
		}

		// Display next chunk
		chunk := a.chunks[a.chunkIndex]
		a.chunkIndex++
		a.currentResp.WriteString(chunk)

		// Remove loading message AFTER first NON-EMPTY chunk is written
		if a.currentResp.String() != "" {
			if len(a.dataModel.Messages) > 0 && a.dataModel.Messages[len(a.dataModel.Messages)-1].Role == "system" {
				a.dataModel.Messages = a.dataModel.Messages[:len(a.dataModel.Messages)-1]
			}
		}

		// Only update streaming message if system message is already gone
		// (While system message exists, spinner animates via updateViewportContent in appview_update.go)
		if len(a.dataModel.Messages) == 0 || a.dataModel.Messages[len(a.dataModel.Messages)-1].Role != "system" {
			a.updateStreamingMessage()
		}

		// Schedule next chunk with delay (30ms, but first chunk is immediate)
		delay := 30 * time.Millisecond
		if a.chunkIndex == 1 {
			delay = time.Millisecond // First chunk nearly immediate
		}

		return a, tea.Tick(delay, func(time.Time) tea.Msg {
			return displayChunkTickMsg{}
		})

	case streamChunkMsg:
		a.currentResp.WriteString(msg.Chunk)
		a.updateStreamingMessage()
		return a, nil

	case streamDoneMsg:
		if config.DebugLog != nil {
			config.DebugLog.Printf("streamDoneMsg received - response length: %d", len(msg.FullResponse))
		}

		a.dataModel.Streaming = false
		a.searchNotice = ""

		// Remove loading message (last system message)
		if len(a.dataModel.Messages) > 0 && a.dataModel.Messages[len(a.dataModel.Messages)-1].Role == "system" {
			a.dataModel.Messages = a.dataModel.Messages[:len(a.dataModel.Messages)-1]
		}

		// Add final assistant message with plain text initially
		if msg.FullResponse != "" {
			a.dataModel.Messages = append(a.dataModel.Messages, Message{
				Role:      "assistant",
				Content:   msg.FullResponse,
				Rendered:  msg.FullResponse, // Start with plain text
				Timestamp: time.Now(),
			})

			messageIndex := len(a.dataModel.Messages) - 1

			if config.DebugLog != nil {
				config.DebugLog.Printf("Message added as plain text, triggering async markdown render")
			}

			// Update viewport immediately with plain text
			a.updateViewportContent(true)

			// Trigger async markdown rendering (non-blocking)
			return a, a.renderMarkdownAsync(messageIndex, msg.FullResponse)
		}
		// No response received
		if config.DebugLog != nil {
			config.DebugLog.Printf("ERROR: No response in streamDoneMsg")
		}
		a.dataModel.Messages = append(a.dataModel.Messages, Message{
			Role:      "system",
			Content:   "⚠️ No response received from the backend",
			Rendered:  "⚠️ No response received from the backend",
			Timestamp: time.Now(),
		})
		a.updateViewportContent(true)
		a.currentResp.Reset()

		return a, nil

	case streamErrorMsg:
		if config.DebugLog != nil {
			config.DebugLog.Printf("streamErrorMsg received: %v", msg.Err)
		}

		a.dataModel.Streaming = false
		a.searchNotice = ""
		a.currentResp.Reset()

		// Remove loading message
		if len(a.dataModel.Messages) > 0 && a.dataModel.Messages[len(a.dataModel.Messages)-1].Role == "system" {
			a.dataModel.Messages = a.dataModel.Messages[:len(a.dataModel.Messages)-1]
		}

		// Default: show the raw error
		displayMsg := fmt.Sprintf("❌ Error: %v", msg.Err)

		// Override with a friendlier message for missing credentials
		errorMsg := msg.Err.Error()
		if strings.Contains(errorMsg, "api key") || strings.Contains(errorMsg, "API key") {
			displayMsg = fmt.Sprintf("❌ Error: %v\n\n"+
				"Set the credential in Settings (Alt+Shift+S) or via the\n"+
				"KAIWA_AZURE_API_KEY / KAIWA_ANTHROPIC_API_KEY environment variables.", msg.Err)
		}

		// Wrap error message to fit viewport width
		maxWidth := a.width - 10 // Leave padding for margins
		if maxWidth > 0 {
			displayMsg = lipgloss.NewStyle().Width(maxWidth).Render(displayMsg)
		}

		// Show error message
		a.dataModel.Messages = append(a.dataModel.Messages, Message{
			Role:      "system",
			Content:   displayMsg,
			Rendered:  displayMsg,
			Timestamp: time.Now(),
		})
		a.updateViewportContent(true)
		return a, nil
	}

	return a, nil
}

// stripSearchMarkerChunks removes the marker-delimited search query from the
// playback chunks. The query is surfaced through the title bar notice instead.
func stripSearchMarkerChunks(chunks []string) []string {
	filtered := make([]string, 0, len(chunks))
	inMarker := false
	for _, chunk := range chunks {
		if strings.Contains(chunk, agent.SearchStartMarker) {
			// A single chunk may carry both markers
			inMarker = !strings.Contains(chunk, agent.SearchEndMarker)
			continue
		}
		if strings.Contains(chunk, agent.SearchEndMarker) {
			inMarker = false
			continue
		}
		if inMarker {
			continue
		}
		filtered = append(filtered, chunk)
	}
	return filtered
}
