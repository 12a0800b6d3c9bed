package agent

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"kaiwa/llm"
)

// excerptLimit caps the citation excerpt length in runes.
const excerptLimit = 150

// truncateExcerpt shortens a result body for display in a citation list.
func truncateExcerpt(body string) string {
	body = strings.TrimSpace(body)
	if utf8.RuneCountInString(body) <= excerptLimit {
		return body
	}
	return truncateRunes(body, excerptLimit) + "..."
}

// formatResultsForPrompt renders the citations as the numbered block the
// answer prompt grounds on.
func formatResultsForPrompt(citations []Citation) string {
	var b strings.Builder
	for _, c := range citations {
		fmt.Fprintf(&b, "[%d] %s\n", c.Number, c.Title)
		fmt.Fprintf(&b, "    URL: %s\n", c.URL)
		if c.Published != "" {
			fmt.Fprintf(&b, "    Published: %s\n", c.Published)
		}
		if c.SourceType != "" && c.SourceType != "unknown" {
			fmt.Fprintf(&b, "    Source type: %s\n", c.SourceType)
		}
		if c.Excerpt != "" {
			fmt.Fprintf(&b, "    %s\n", c.Excerpt)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// citationsSection renders the trailing Sources block appended to a
// search-grounded answer.
func citationsSection(citations []Citation) string {
	var b strings.Builder
	b.WriteString("\n\nSources:\n")
	for _, c := range citations {
		fmt.Fprintf(&b, "[%d] %s", c.Number, c.Title)
		if c.Published != "" {
			fmt.Fprintf(&b, " (%s)", c.Published)
		}
		fmt.Fprintf(&b, "\n    %s\n", c.URL)
	}
	return strings.TrimRight(b.String(), "\n")
}

// parseSourceRequest recognizes source:N style messages asking to expand a
// numbered citation from the previous answer. The second return is false when
// the message is not a source request at all.
func parseSourceRequest(message string) (int, bool) {
	trimmed := strings.TrimSpace(message)
	lower := strings.ToLower(trimmed)

	for _, prefix := range sourcePrefixes {
		if !strings.HasPrefix(lower, prefix) {
			continue
		}
		rest := strings.TrimSpace(trimmed[len(prefix):])
		n, err := strconv.Atoi(rest)
		if err != nil {
			// A source prefix with a non-numeric argument is still a source
			// request; signal it with 0 so the caller reports the error.
			return 0, true
		}
		return n, true
	}
	return 0, false
}

// expandSource answers a source:N request with a key-point summary of the
// cited source. Requests outside the last citation list error without any
// generation call.
func (a *SearchAgent) expandSource(ctx context.Context, n int) Result {
	if len(a.lastCitations) == 0 {
		return a.fail(fmt.Errorf("no sources available: run a search first"))
	}
	if n < 1 || n > len(a.lastCitations) {
		return a.fail(fmt.Errorf("invalid source number %d: choose between 1 and %d", n, len(a.lastCitations)))
	}

	c := a.lastCitations[n-1]
	summary, err := a.complete(ctx, []llm.Message{
		{Role: "user", Content: fmt.Sprintf(keyPointsPrompt, c.Title, c.URL, c.Excerpt)},
	})
	if err != nil {
		return a.fail(err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**[%d] %s**\n", c.Number, c.Title)
	fmt.Fprintf(&b, "%s\n", c.URL)
	if c.Published != "" {
		fmt.Fprintf(&b, "Published: %s\n", c.Published)
	}
	if c.SourceType != "" && c.SourceType != "unknown" {
		fmt.Fprintf(&b, "Source type: %s\n", c.SourceType)
	}
	fmt.Fprintf(&b, "\n%s", summary)

	r := a.finish(b.String())
	r.Citations = []Citation{c}
	return r
}
