package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"kaiwa/config"
	"kaiwa/llm"
	"kaiwa/search"
)

// Stream markers wrapping the search-status notice so the UI can style it
// separately from model output.
const (
	SearchStartMarker = "<search_start>"
	SearchEndMarker   = "<search_end>"
)

// Prefixes that force a web search regardless of the decision step. The text
// after the first colon becomes the query verbatim.
var searchPrefixes = []string{"search:", "検索:", "検索："}

// Prefixes that ask for an expansion of a previously cited source instead of
// a new answer.
var sourcePrefixes = []string{"source:", "ソース:", "ソース：", "出典:", "出典：", "引用:", "引用："}

// Searcher is the slice of the web search client the agent needs. Satisfied
// by *search.Client.
type Searcher interface {
	Text(ctx context.Context, query string, max int) ([]search.Result, error)
	News(ctx context.Context, query string, max int) ([]search.Result, error)
}

// SearchAgent decides whether a message needs current information, searches
// the web, and answers grounded in the results with numbered citations. The
// last response's citations stay available for source:N expansion until the
// next search or a Reset.
type SearchAgent struct {
	base
	searcher      Searcher
	lastCitations []Citation
}

// NewSearchAgent creates a web-search agent backed by DuckDuckGo.
func NewSearchAgent(opts Options) *SearchAgent {
	a := &SearchAgent{base: newBase(TypeSearch, opts)}
	a.searcher = search.NewClient(a.opts.SearchRegion)
	return a
}

// SetSearcher overrides the search backend. Intended for tests.
func (a *SearchAgent) SetSearcher(s Searcher) { a.searcher = s }

// Reset implements Agent.
func (a *SearchAgent) Reset() {
	a.lastCitations = nil
}

// Capabilities implements Agent.
func (a *SearchAgent) Capabilities() []string {
	return []string{"conversation", "web search", "news search", "numbered citations", "source expansion"}
}

// ProcessMessage implements Agent.
func (a *SearchAgent) ProcessMessage(ctx context.Context, message string, turns []llm.Message, emit StreamFunc) Result {
	if n, ok := parseSourceRequest(message); ok {
		return a.expandSource(ctx, n)
	}

	if !a.shouldSearch(ctx, message) {
		content, err := a.stream(ctx, buildMessages(a.opts.SystemPrompt, turns, message), emit)
		if err != nil {
			return a.fail(err)
		}
		return a.finish(content)
	}

	query := a.generateQuery(ctx, message)

	if emit != nil {
		notice := fmt.Sprintf("%s🔍 Searching: %s%s", SearchStartMarker, query, SearchEndMarker)
		if err := emit(notice); err != nil {
			return a.fail(err)
		}
	}

	// Provider failure is not fatal: the answer falls back to the no-results
	// branch below instead of surfacing an error to the user.
	results, err := a.performSearch(ctx, query)
	if err != nil {
		if config.Debug {
			config.DebugLog.Printf("[Agent] %s: web search failed, answering without results: %v", a.name, err)
		}
		results = nil
	}

	// One broadening pass when the query came back nearly empty.
	if len(results) < 2 && *a.opts.MaxQueryRefinements > 0 {
		if refined := a.refineQuery(ctx, query); refined != "" && refined != query {
			if more, err := a.performSearch(ctx, refined); err == nil && len(more) > len(results) {
				query = refined
				results = more
			}
		}
	}

	citations := a.buildCitations(ctx, results)
	a.lastCitations = citations

	system := a.opts.SystemPrompt
	if len(citations) > 0 {
		system += "\n\n" + fmt.Sprintf(searchAnswerPrompt, formatResultsForPrompt(citations))
	} else {
		system += "\n\nA web search for this message returned no results. Say so and answer from general knowledge if possible."
	}

	content, err := a.stream(ctx, buildMessages(system, turns, message), emit)
	if err != nil {
		return a.fail(err)
	}

	if *a.opts.IncludeCitations && len(citations) > 0 {
		section := citationsSection(citations)
		content += section
		if emit != nil {
			if err := emit(section); err != nil {
				return a.fail(err)
			}
		}
	}

	r := a.finish(content)
	r.SearchPerformed = true
	r.SearchQuery = query
	r.Citations = citations
	return r
}

// GetResponse implements Agent.
func (a *SearchAgent) GetResponse(ctx context.Context, message string, turns []llm.Message) Result {
	return a.ProcessMessage(ctx, message, turns, nil)
}

// shouldSearch decides whether the message needs a web search. The search:
// prefixes force it; otherwise the decision mode applies. Model decisions
// that fail or come back empty fall through to the heuristic.
func (a *SearchAgent) shouldSearch(ctx context.Context, message string) bool {
	if !*a.opts.SearchEnabled {
		return false
	}
	if hasSearchPrefix(message) {
		return true
	}

	if a.opts.DecisionMode == "model" {
		out, err := a.completeJSON(ctx, fmt.Sprintf(searchDecisionPrompt, message), searchDecisionSchema)
		if err == nil {
			var decision struct {
				ShouldSearch *bool  `json:"should_search"`
				Reason       string `json:"reason"`
			}
			if json.Unmarshal(out, &decision) == nil && decision.ShouldSearch != nil {
				if config.Debug {
					config.DebugLog.Printf("[Agent] %s: search decision=%v (%s)", a.name, *decision.ShouldSearch, decision.Reason)
				}
				return *decision.ShouldSearch
			}
		}
		if config.Debug {
			config.DebugLog.Printf("[Agent] %s: model decision unavailable, using heuristic", a.name)
		}
	}

	return heuristicNeedsSearch(message)
}

// heuristicNeedsSearch flags messages that mention time-sensitive topics.
var searchKeywords = []string{
	"today", "latest", "news", "current", "now", "recent", "price", "weather",
	"release", "update", "2025", "2026",
	"今日", "最新", "ニュース", "現在", "速報", "価格", "天気", "株価",
}

func heuristicNeedsSearch(message string) bool {
	lower := strings.ToLower(message)
	for _, kw := range searchKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func hasSearchPrefix(message string) bool {
	lower := strings.ToLower(strings.TrimSpace(message))
	for _, prefix := range searchPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// generateQuery produces the search query for a message. A search: prefix
// yields the text after the first colon verbatim; otherwise the model writes
// a query, capped at 100 runes, with the raw message as fallback.
func (a *SearchAgent) generateQuery(ctx context.Context, message string) string {
	trimmed := strings.TrimSpace(message)
	if hasSearchPrefix(trimmed) {
		if idx := strings.IndexAny(trimmed, ":："); idx >= 0 {
			_, size := utf8.DecodeRuneInString(trimmed[idx:])
			if rest := strings.TrimSpace(trimmed[idx+size:]); rest != "" {
				return rest
			}
		}
		return trimmed
	}

	out, err := a.completeJSON(ctx, fmt.Sprintf(searchQueryPrompt, message), searchQuerySchema)
	if err == nil {
		var q struct {
			Query string `json:"query"`
		}
		if json.Unmarshal(out, &q) == nil && strings.TrimSpace(q.Query) != "" {
			return truncateRunes(strings.TrimSpace(q.Query), 100)
		}
	}
	return truncateRunes(trimmed, 100)
}

// refineQuery asks the model for a broader replacement query. Empty string
// means no usable refinement.
func (a *SearchAgent) refineQuery(ctx context.Context, query string) string {
	out, err := a.completeJSON(ctx, fmt.Sprintf(refineQueryPrompt, query), refineQuerySchema)
	if err != nil {
		return ""
	}
	var q struct {
		Query string `json:"query"`
	}
	if json.Unmarshal(out, &q) != nil {
		return ""
	}
	return strings.TrimSpace(q.Query)
}

// performSearch fetches up to MaxSearchResults results. With news search
// enabled, news gets half the budget (at least one slot) and text results
// fill the rest; a failing news call degrades to text-only.
func (a *SearchAgent) performSearch(ctx context.Context, query string) ([]search.Result, error) {
	max := *a.opts.MaxSearchResults
	if max <= 0 {
		return nil, nil
	}

	var results []search.Result
	if *a.opts.NewsSearch {
		newsMax := max / 2
		if newsMax < 1 {
			newsMax = 1
		}
		news, err := a.searcher.News(ctx, query, newsMax)
		if err != nil {
			if config.Debug {
				config.DebugLog.Printf("[Agent] %s: news search failed, continuing with text only: %v", a.name, err)
			}
		} else {
			results = news
		}
	}

	if remaining := max - len(results); remaining > 0 {
		text, err := a.searcher.Text(ctx, query, remaining)
		if err != nil {
			if len(results) == 0 {
				return nil, err
			}
		} else {
			results = append(results, dedupeByURL(text, results)...)
		}
	}

	if len(results) > max {
		results = results[:max]
	}
	return results, nil
}

func dedupeByURL(candidates, existing []search.Result) []search.Result {
	seen := make(map[string]struct{}, len(existing))
	for _, r := range existing {
		seen[r.URL] = struct{}{}
	}
	var out []search.Result
	for _, r := range candidates {
		if _, dup := seen[r.URL]; dup {
			continue
		}
		seen[r.URL] = struct{}{}
		out = append(out, r)
	}
	return out
}

// buildCitations numbers the results 1..N and enriches each with a
// publication date and a primary/secondary classification. Enrichment
// failures degrade to empty date and "unknown".
func (a *SearchAgent) buildCitations(ctx context.Context, results []search.Result) []Citation {
	citations := make([]Citation, 0, len(results))
	for i, r := range results {
		c := Citation{
			Number:    i + 1,
			Title:     r.Title,
			URL:       r.URL,
			Excerpt:   truncateExcerpt(r.Body),
			Published: r.Published,
		}
		if c.Published == "" {
			c.Published = a.extractDate(ctx, r)
		}
		c.SourceType = a.classifySource(ctx, r)
		citations = append(citations, c)
	}
	return citations
}

// datePatterns match explicit dates in result text. Submatches are year,
// month, day.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`),
	regexp.MustCompile(`\b(\d{4})/(\d{1,2})/(\d{1,2})\b`),
	regexp.MustCompile(`(\d{4})年(\d{1,2})月(\d{1,2})日`),
}

// heuristicDate scans the title and body for an explicit date and normalizes
// it to YYYY-MM-DD. Empty string means nothing matched.
func heuristicDate(r search.Result) string {
	text := r.Title + " " + r.Body
	for _, p := range datePatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			month, _ := strconv.Atoi(m[2])
			day, _ := strconv.Atoi(m[3])
			return fmt.Sprintf("%s-%02d-%02d", m[1], month, day)
		}
	}
	return ""
}

// extractDate finds a publication date for a result. Explicit dates in the
// text win; the model is consulted only in model decision mode.
func (a *SearchAgent) extractDate(ctx context.Context, r search.Result) string {
	if d := heuristicDate(r); d != "" {
		return d
	}
	if a.opts.DecisionMode != "model" {
		return ""
	}

	out, err := a.completeJSON(ctx, fmt.Sprintf(dateExtractionPrompt, r.Title, r.Body), dateExtractionSchema)
	if err != nil {
		return ""
	}
	var d struct {
		Date string `json:"date"`
	}
	if json.Unmarshal(out, &d) != nil {
		return ""
	}
	return strings.TrimSpace(d.Date)
}

var primarySourceHints = []string{
	".gov", ".go.jp", ".edu", ".ac.jp", "press release", "official", "公式", "プレスリリース",
}

var secondarySourceHints = []string{
	"wikipedia", "blog", "medium.com", "note.com", "zenn.dev", "qiita.com", "まとめ",
}

// heuristicSourceType classifies a result by URL and title keywords.
func heuristicSourceType(r search.Result) string {
	target := strings.ToLower(r.URL + " " + r.Title)
	for _, hint := range primarySourceHints {
		if strings.Contains(target, hint) {
			return "primary"
		}
	}
	for _, hint := range secondarySourceHints {
		if strings.Contains(target, hint) {
			return "secondary"
		}
	}
	return "unknown"
}

// classifySource labels a result primary or secondary. Heuristic decision mode
// uses keywords only; model mode asks the model and falls back to the
// keywords when the call fails or answers outside the schema.
func (a *SearchAgent) classifySource(ctx context.Context, r search.Result) string {
	if a.opts.DecisionMode != "model" {
		return heuristicSourceType(r)
	}

	out, err := a.completeJSON(ctx, fmt.Sprintf(classifySourcePrompt, r.Title, r.URL, r.Body), classifySourceSchema)
	if err != nil {
		return heuristicSourceType(r)
	}
	var c struct {
		SourceType string `json:"source_type"`
	}
	if json.Unmarshal(out, &c) != nil {
		return heuristicSourceType(r)
	}
	switch c.SourceType {
	case "primary", "secondary":
		return c.SourceType
	}
	return heuristicSourceType(r)
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
