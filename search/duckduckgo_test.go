package search

import (
	"testing"
)

const litePage = `<html><body><table>
<tr><td>1.</td><td><a rel="nofollow" href="https://go.dev/" class='result-link'>The Go Programming Language</a></td></tr>
<tr><td>&nbsp;</td><td class='result-snippet'>Go is an open source programming language that makes it simple to build software.</td></tr>
<tr><td>2.</td><td><a rel="nofollow" href="https://go.dev/doc/" class='result-link'>Documentation - The Go Programming Language</a></td></tr>
<tr><td>&nbsp;</td><td class='result-snippet'>Learn how to <b>install</b> Go &amp; write your first program.</td></tr>
<tr><td>3.</td><td><a rel="nofollow" href="https://en.wikipedia.org/wiki/Go" class='result-link'>Go (programming language) - Wikipedia</a></td></tr>
<tr><td>&nbsp;</td><td class='result-snippet'>Go is a statically typed, compiled language.</td></tr>
</table></body></html>`

func TestParseLiteResults(t *testing.T) {
	results := parseLiteResults(litePage, 10)
	if len(results) != 3 {
		t.Fatalf("parsed %d results, want 3", len(results))
	}

	first := results[0]
	if first.Title != "The Go Programming Language" {
		t.Errorf("title = %q", first.Title)
	}
	if first.URL != "https://go.dev/" {
		t.Errorf("url = %q", first.URL)
	}
	if first.Body != "Go is an open source programming language that makes it simple to build software." {
		t.Errorf("body = %q", first.Body)
	}

	// Snippet HTML is stripped and entities decoded.
	if want := "Learn how to install Go & write your first program."; results[1].Body != want {
		t.Errorf("second body = %q, want %q", results[1].Body, want)
	}
}

func TestParseLiteResultsMax(t *testing.T) {
	results := parseLiteResults(litePage, 2)
	if len(results) != 2 {
		t.Fatalf("parsed %d results, want 2", len(results))
	}
}

func TestParseLiteResultsEmptyPage(t *testing.T) {
	results := parseLiteResults("<html><body>No results.</body></html>", 5)
	if len(results) != 0 {
		t.Errorf("parsed %d results from empty page, want 0", len(results))
	}
}

func TestExtractVQD(t *testing.T) {
	tests := []struct {
		name string
		page string
		want string
	}{
		{"single quoted", `...DDG.deep.initialize('/d.js?q=go&vqd=4-123456789012345678901234567890');`, "4-123456789012345678901234567890"},
		{"double quoted", `vqd="4-987654321"`, "4-987654321"},
		{"unquoted", `&vqd=4-111222333&`, "4-111222333"},
		{"absent", `<html>nothing</html>`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractVQD(tt.page); got != tt.want {
				t.Errorf("extractVQD = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseNewsPayload(t *testing.T) {
	payload := []byte(`{"results": [
		{"title": "Go 1.25 released", "excerpt": "The latest release of <b>Go</b> is out.", "url": "https://go.dev/blog/go1.25", "date": 1755907200, "source": "go.dev"},
		{"title": "No url item", "excerpt": "dropped", "url": "", "date": 0},
		{"title": "Undated item", "excerpt": "no date field", "url": "https://example.com/a", "date": 0}
	]}`)

	results, err := parseNewsPayload(payload, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("parsed %d results, want 2", len(results))
	}

	first := results[0]
	if first.Title != "Go 1.25 released" {
		t.Errorf("title = %q", first.Title)
	}
	if first.Body != "The latest release of Go is out." {
		t.Errorf("body = %q", first.Body)
	}
	if first.Published != "2025-08-23" {
		t.Errorf("published = %q, want 2025-08-23", first.Published)
	}

	if results[1].Published != "" {
		t.Errorf("undated item published = %q, want empty", results[1].Published)
	}
}

func TestParseNewsPayloadInvalid(t *testing.T) {
	if _, err := parseNewsPayload([]byte("<html>rate limited</html>"), 3); err == nil {
		t.Error("expected error for non-JSON payload")
	}
}

func TestCleanHTML(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<b>bold</b> text", "bold text"},
		{"a &amp; b", "a & b"},
		{"  padded  ", "padded"},
		{"&quot;quoted&quot;", `"quoted"`},
		{"no markup", "no markup"},
	}

	for _, tt := range tests {
		if got := cleanHTML(tt.in); got != tt.want {
			t.Errorf("cleanHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
