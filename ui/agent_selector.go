package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"kaiwa/agent"
)

// agentDescription gives the one-line summary shown next to each agent.
func agentDescription(agentType string) string {
	switch agentType {
	case agent.TypeChat:
		return "Plain conversation with the configured backend"
	case agent.TypeDocs:
		return "Answers grounded in your document library"
	case agent.TypeSearch:
		return "Web search with cited sources"
	case agent.TypeTool:
		return "Calculator, time and other in-text tools"
	default:
		return ""
	}
}

func renderAgentSelector(agents []string, selectedIdx int, currentAgent string, width, height int) string {
	// Modal dimensions
	modalWidth := width - 10
	if modalWidth > 76 {
		modalWidth = 76
	}

	// Title section (no borders)
	titleSection := lipgloss.NewStyle().
		Bold(true).
		Align(lipgloss.Center).
		Width(modalWidth).
		Render("Select Agent")

	// Header section (with top and bottom borders)
	headerSection := lipgloss.NewStyle().
		Foreground(dimColor).
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(fmt.Sprintf("%d agents", len(agents)))

	// Agent list
	var agentLines []string
	for i, agentType := range agents {
		indicator := "  "
		if i == selectedIdx {
			indicator = "▶ "
		}

		currentMarker := ""
		if agentType == currentAgent {
			currentMarker = " (current)"
		}

		name := agentDisplayName(agentType)
		desc := agentDescription(agentType)

		// Right-align the description against the modal edge
		spacing := modalWidth - len(indicator) - len(name) - len(currentMarker) - len(desc) - 4
		if spacing < 1 {
			spacing = 1
		}

		line := fmt.Sprintf("%s%s%s%s%s",
			indicator,
			name,
			currentMarker,
			strings.Repeat(" ", spacing),
			DimStyle.Render(desc),
		)

		lineStyle := lipgloss.NewStyle()
		if i == selectedIdx {
			lineStyle = lineStyle.Foreground(successColor).Bold(true)
		} else if agentType == currentAgent {
			lineStyle = lineStyle.Foreground(accentColor).Bold(true)
		}

		paddedLine := lipgloss.NewStyle().
			Width(modalWidth).
			Render(lineStyle.Render(line))

		agentLines = append(agentLines, paddedLine)
	}

	// Add empty line before and after list
	emptyLine := strings.Repeat(" ", modalWidth)
	agentLines = append([]string{emptyLine}, agentLines...)
	agentLines = append(agentLines, emptyLine)

	// Footer section (with top border only)
	footerText := FormatFooter("j/k", "Navigate", "Enter", "Select", "Esc", "Exit")
	footerSection := lipgloss.NewStyle().
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(footerText)

	// Combine all sections
	var sections []string
	sections = append(sections, titleSection)
	sections = append(sections, headerSection)
	sections = append(sections, agentLines...)
	sections = append(sections, footerSection)

	content := strings.Join(sections, "\n")

	// Center the modal
	modalStyle := lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center)

	return modalStyle.Render(content)
}
