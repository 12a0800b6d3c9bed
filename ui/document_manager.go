package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderDocumentManager renders the document library modal. The docs agent
// answers questions against the documents stored here.
func (a AppView) renderDocumentManager() string {
	width, height := a.width, a.height

	// Delete confirmation takes over the modal
	if a.confirmDeleteDoc != nil {
		warningText := lipgloss.NewStyle().Foreground(dangerColor).Render("This action cannot be undone.")
		return RenderConfirmationModal(ConfirmationState{
			Active:  true,
			Title:   "⚠ Delete Document",
			Message: fmt.Sprintf("Are you sure you want to delete:\n\n\"%s\"\n\n%s", a.confirmDeleteDoc.Title, warningText),
		}, width, height)
	}

	if a.documentViewMode {
		return a.renderDocumentView()
	}

	if a.documentAddMode {
		return a.renderDocumentAddForm()
	}

	// Modal dimensions
	modalWidth := width - 10
	if modalWidth > 100 {
		modalWidth = 100
	}
	modalHeight := height - 6

	// Title section (no borders)
	titleSection := lipgloss.NewStyle().
		Bold(true).
		Align(lipgloss.Center).
		Width(modalWidth).
		Render("Document Library")

	// Header section (with top and bottom borders)
	headerSection := lipgloss.NewStyle().
		Foreground(dimColor).
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(fmt.Sprintf("%d documents", len(a.documentList)))

	// Document list
	var docLines []string
	maxLines := modalHeight - 8

	if len(a.documentList) == 0 {
		emptyMsg := "No documents yet. Press 'a' to add one for the docs agent."
		emptyMsgStyled := lipgloss.NewStyle().
			Foreground(dimColor).
			Italic(true).
			Align(lipgloss.Center).
			Width(modalWidth).
			Render(emptyMsg)
		docLines = append(docLines, emptyMsgStyled)
	} else {
		startIdx := 0
		endIdx := len(a.documentList)

		// Scroll if needed
		if len(a.documentList) > maxLines {
			if a.selectedDocumentIdx < maxLines/2 {
				endIdx = maxLines
			} else if a.selectedDocumentIdx >= len(a.documentList)-maxLines/2 {
				startIdx = len(a.documentList) - maxLines
			} else {
				startIdx = a.selectedDocumentIdx - maxLines/2
				endIdx = startIdx + maxLines
			}
		}

		for i := startIdx; i < endIdx && i < len(a.documentList); i++ {
			doc := a.documentList[i]

			indicator := "  "
			if i == a.selectedDocumentIdx {
				indicator = "▶ "
			}

			// Title (truncate if needed)
			title := doc.Title
			maxTitleWidth := modalWidth - 30
			if len(title) > maxTitleWidth {
				title = title[:maxTitleWidth-3] + "..."
			}

			// Content size and age on the right
			size := fmt.Sprintf("%d chars", len(doc.Content))
			timeAgo := formatTimeAgo(doc.UpdatedAt)
			rightSide := fmt.Sprintf("%10s  %8s", size, timeAgo)

			spacing := modalWidth - 4 - len(indicator) - len(title) - len(rightSide)
			if spacing < 2 {
				spacing = 2
			}

			line := fmt.Sprintf("  %s%s%s%s  ", indicator, title, strings.Repeat(" ", spacing), rightSide)

			lineStyle := lipgloss.NewStyle()
			if i == a.selectedDocumentIdx {
				lineStyle = lineStyle.Foreground(successColor).Bold(true)
			}

			paddedLine := lipgloss.NewStyle().
				Width(modalWidth).
				Render(lineStyle.Render(line))

			docLines = append(docLines, paddedLine)
		}
	}

	// Add empty line before and after list
	emptyLine := strings.Repeat(" ", modalWidth)
	docLines = append([]string{emptyLine}, docLines...)
	docLines = append(docLines, emptyLine)

	// Footer section (with top border only)
	footerText := FormatFooter("j/k", "Navigate", "Enter", "View", "a", "Add", "d", "Delete", "Esc", "Exit")
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
	sections = append(sections, docLines...)
	sections = append(sections, footerSection)

	content := strings.Join(sections, "\n")

	// Center the modal
	modalStyle := lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center)

	return modalStyle.Render(content)
}

// renderDocumentView shows the full content of the selected document.
func (a AppView) renderDocumentView() string {
	modalWidth := a.width - 10
	if modalWidth > 90 {
		modalWidth = 90
	}
	maxContentLines := a.height - 12

	doc := a.documentList[a.selectedDocumentIdx]

	var messageLines []string
	messageLines = append(messageLines, strings.Repeat(" ", modalWidth)) // Top padding

	contentStyle := lipgloss.NewStyle().
		Width(modalWidth).
		Align(lipgloss.Left)

	wrapped := wordWrap(doc.Content, modalWidth-4)
	lines := strings.Split(wrapped, "\n")
	truncated := false
	if len(lines) > maxContentLines {
		lines = lines[:maxContentLines]
		truncated = true
	}
	for _, line := range lines {
		messageLines = append(messageLines, contentStyle.Render("  "+line))
	}
	if truncated {
		messageLines = append(messageLines, lipgloss.NewStyle().
			Foreground(dimColor).
			Italic(true).
			Width(modalWidth).
			Render("  ..."))
	}

	messageLines = append(messageLines, strings.Repeat(" ", modalWidth)) // Bottom padding

	footer := "Press Esc to close"

	return RenderThreeSectionModal(
		doc.Title,
		messageLines,
		footer,
		ModalTypeInfo,
		modalWidth,
		a.width,
		a.height,
	)
}

// renderDocumentAddForm shows the title/content form for a new document.
func (a AppView) renderDocumentAddForm() string {
	modalWidth := a.width - 10
	if modalWidth > 80 {
		modalWidth = 80
	}

	var messageLines []string
	messageLines = append(messageLines, strings.Repeat(" ", modalWidth)) // Top padding

	// Title field
	titleLabel := "Title:"
	titleLabelStyle := lipgloss.NewStyle().Width(modalWidth)
	if a.documentFocusedField == 0 {
		titleLabelStyle = titleLabelStyle.Foreground(successColor).Bold(true)
	}
	messageLines = append(messageLines, titleLabelStyle.Render("  "+titleLabel))

	titleStyle := lipgloss.NewStyle().Width(modalWidth)
	if a.documentFocusedField == 0 {
		titleStyle = titleStyle.Foreground(accentColor).Bold(true)
	}
	messageLines = append(messageLines, titleStyle.Render("  "+a.documentTitleInput.View()))
	messageLines = append(messageLines, strings.Repeat(" ", modalWidth)) // Spacing

	// Content field
	contentLabel := "Content:"
	contentLabelStyle := lipgloss.NewStyle().Width(modalWidth)
	if a.documentFocusedField == 1 {
		contentLabelStyle = contentLabelStyle.Foreground(successColor).Bold(true)
	}
	messageLines = append(messageLines, contentLabelStyle.Render("  "+contentLabel))

	contentStyle := lipgloss.NewStyle().Width(modalWidth)
	if a.documentFocusedField == 1 {
		contentStyle = contentStyle.Foreground(accentColor).Bold(true)
	}
	contentView := contentStyle.Render(a.documentContentInput.View())
	for _, line := range strings.Split(contentView, "\n") {
		messageLines = append(messageLines, lipgloss.NewStyle().Width(modalWidth).Render("  "+line))
	}

	messageLines = append(messageLines, strings.Repeat(" ", modalWidth)) // Bottom padding

	footer := FormatFooter("Tab/Shift+Tab", "Switch Fields", "Alt+Enter", "Save", "Esc", "Cancel")

	return RenderThreeSectionModal(
		"Add Document",
		messageLines,
		footer,
		ModalTypeInfo,
		modalWidth,
		a.width,
		a.height,
	)
}
