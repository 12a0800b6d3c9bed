package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"kaiwa/llm/testutil"
	"kaiwa/search"
)

// mockSearcher scripts the search backend and records the queries it saw.
type mockSearcher struct {
	textResults []search.Result
	newsResults []search.Result
	textErr     error
	newsErr     error

	textQueries []string
	newsQueries []string
}

func (m *mockSearcher) Text(_ context.Context, query string, max int) ([]search.Result, error) {
	m.textQueries = append(m.textQueries, query)
	if m.textErr != nil {
		return nil, m.textErr
	}
	if len(m.textResults) > max {
		return m.textResults[:max], nil
	}
	return m.textResults, nil
}

func (m *mockSearcher) News(_ context.Context, query string, max int) ([]search.Result, error) {
	m.newsQueries = append(m.newsQueries, query)
	if m.newsErr != nil {
		return nil, m.newsErr
	}
	if len(m.newsResults) > max {
		return m.newsResults[:max], nil
	}
	return m.newsResults, nil
}

func newTestSearchAgent(t *testing.T, searcher *mockSearcher) (*SearchAgent, *testutil.MockClient) {
	t.Helper()
	a := NewSearchAgent(Options{})
	mock := testutil.NewStreamingMock("gpt-4o", "Grounded ", "answer [1].")
	a.SetClient(mock)
	a.SetSearcher(searcher)
	return a, mock
}

func TestSearchPrefixForcesSearch(t *testing.T) {
	searcher := &mockSearcher{
		textResults: []search.Result{
			{Title: "Result A", Body: "body a", URL: "https://a.example"},
			{Title: "Result B", Body: "body b", URL: "https://b.example"},
		},
	}
	a, mock := newTestSearchAgent(t, searcher)
	a.UpdateOptions(Options{NewsSearch: BoolOpt(false)})

	result := a.ProcessMessage(context.Background(), "search: golang generics tutorial", nil, nil)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}

	if !result.SearchPerformed {
		t.Error("search: prefix did not force a search")
	}
	if result.SearchQuery != "golang generics tutorial" {
		t.Errorf("query = %q, want the text after the colon", result.SearchQuery)
	}
	if len(searcher.textQueries) == 0 || searcher.textQueries[0] != "golang generics tutorial" {
		t.Errorf("backend saw queries %v", searcher.textQueries)
	}

	// The forced path never consults the decision model.
	for _, name := range mock.JSONCalls {
		if name == "search_decision" {
			t.Error("decision model called despite forced search")
		}
	}
}

func TestJapaneseSearchPrefix(t *testing.T) {
	searcher := &mockSearcher{
		textResults: []search.Result{{Title: "A", Body: "b", URL: "https://a.example"}},
	}
	a, _ := newTestSearchAgent(t, searcher)
	a.UpdateOptions(Options{NewsSearch: BoolOpt(false), MaxQueryRefinements: IntOpt(0)})

	result := a.ProcessMessage(context.Background(), "検索: 東京 天気", nil, nil)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if !result.SearchPerformed || result.SearchQuery != "東京 天気" {
		t.Errorf("performed=%v query=%q", result.SearchPerformed, result.SearchQuery)
	}
}

func TestModelDecisionSkipsSearch(t *testing.T) {
	searcher := &mockSearcher{}
	a, mock := newTestSearchAgent(t, searcher)
	mock.ScriptJSON(map[string]string{
		"search_decision": `{"should_search": false, "reason": "general knowledge"}`,
	})

	result := a.ProcessMessage(context.Background(), "explain goroutines", nil, nil)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}

	if result.SearchPerformed {
		t.Error("searched despite a negative decision")
	}
	if len(searcher.textQueries)+len(searcher.newsQueries) != 0 {
		t.Error("search backend called despite a negative decision")
	}
	if result.Content == "" {
		t.Error("no answer produced")
	}
}

func TestModelDecisionFallsBackToHeuristic(t *testing.T) {
	// The default mock answers "{}" for every schema: no decision. The
	// heuristic takes over and flags the time-sensitive message.
	searcher := &mockSearcher{
		textResults: []search.Result{{Title: "A", Body: "b", URL: "https://a.example"}},
	}
	a, _ := newTestSearchAgent(t, searcher)
	a.UpdateOptions(Options{NewsSearch: BoolOpt(false), MaxQueryRefinements: IntOpt(0)})

	result := a.ProcessMessage(context.Background(), "what is the latest Go release?", nil, nil)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if !result.SearchPerformed {
		t.Error("heuristic fallback did not trigger a search")
	}
}

func TestSearchDisabled(t *testing.T) {
	searcher := &mockSearcher{}
	a, _ := newTestSearchAgent(t, searcher)
	a.UpdateOptions(Options{SearchEnabled: BoolOpt(false)})

	result := a.ProcessMessage(context.Background(), "search: anything", nil, nil)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if result.SearchPerformed || len(searcher.textQueries) > 0 {
		t.Error("search ran while disabled")
	}
}

func TestCitationsNumberedAndTruncated(t *testing.T) {
	longBody := strings.Repeat("あ", 200)
	searcher := &mockSearcher{
		textResults: []search.Result{
			{Title: "First", Body: "short body", URL: "https://1.example", Published: "2026-08-20"},
			{Title: "Second", Body: longBody, URL: "https://2.example"},
			{Title: "Third", Body: "third body", URL: "https://3.example"},
		},
	}
	a, _ := newTestSearchAgent(t, searcher)
	a.UpdateOptions(Options{NewsSearch: BoolOpt(false), MaxQueryRefinements: IntOpt(0)})

	result := a.ProcessMessage(context.Background(), "search: citations please", nil, nil)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}

	if len(result.Citations) != 3 {
		t.Fatalf("citations = %d, want 3", len(result.Citations))
	}
	for i, c := range result.Citations {
		if c.Number != i+1 {
			t.Errorf("citation %d numbered %d", i, c.Number)
		}
	}

	second := result.Citations[1]
	if !strings.HasSuffix(second.Excerpt, "...") {
		t.Errorf("long excerpt not truncated: %q", second.Excerpt)
	}
	if got := len([]rune(strings.TrimSuffix(second.Excerpt, "..."))); got != 150 {
		t.Errorf("excerpt length = %d runes, want 150", got)
	}
	if result.Citations[0].Excerpt != "short body" {
		t.Errorf("short excerpt modified: %q", result.Citations[0].Excerpt)
	}
	if result.Citations[0].Published != "2026-08-20" {
		t.Errorf("published date lost: %q", result.Citations[0].Published)
	}

	if !strings.Contains(result.Content, "Sources:") {
		t.Error("citations section missing from content")
	}
	if !strings.Contains(result.Content, "[3] Third") {
		t.Error("citation entry missing from sources section")
	}
}

func TestHeuristicDateFormats(t *testing.T) {
	tests := []struct {
		result search.Result
		want   string
	}{
		{search.Result{Title: "Go 1.26 released 2026-08-12", Body: ""}, "2026-08-12"},
		{search.Result{Title: "", Body: "posted on 2026/8/3 by the team"}, "2026-08-03"},
		{search.Result{Title: "2026年8月12日のニュース", Body: ""}, "2026-08-12"},
		{search.Result{Title: "no date here", Body: "still none"}, ""},
	}

	for _, tt := range tests {
		if got := heuristicDate(tt.result); got != tt.want {
			t.Errorf("heuristicDate(%q %q) = %q, want %q", tt.result.Title, tt.result.Body, got, tt.want)
		}
	}
}

func TestHeuristicSourceClassification(t *testing.T) {
	tests := []struct {
		result search.Result
		want   string
	}{
		{search.Result{URL: "https://www.example.gov/report"}, "primary"},
		{search.Result{URL: "https://www.soumu.go.jp/news"}, "primary"},
		{search.Result{Title: "Acme press release", URL: "https://acme.example"}, "primary"},
		{search.Result{URL: "https://en.wikipedia.org/wiki/Go"}, "secondary"},
		{search.Result{URL: "https://qiita.com/someone/items/abc"}, "secondary"},
		{search.Result{URL: "https://random.example/page"}, "unknown"},
	}

	for _, tt := range tests {
		if got := heuristicSourceType(tt.result); got != tt.want {
			t.Errorf("heuristicSourceType(%q %q) = %q, want %q", tt.result.Title, tt.result.URL, got, tt.want)
		}
	}
}

func TestHeuristicModeSkipsEnrichmentCalls(t *testing.T) {
	searcher := &mockSearcher{
		textResults: []search.Result{
			{Title: "Budget 2026-08-01", Body: "b", URL: "https://treasury.example.gov/budget"},
			{Title: "Undatable", Body: "no date anywhere", URL: "https://random.example"},
		},
	}
	a, mock := newTestSearchAgent(t, searcher)
	a.UpdateOptions(Options{NewsSearch: BoolOpt(false), MaxQueryRefinements: IntOpt(0), DecisionMode: "heuristic"})

	result := a.ProcessMessage(context.Background(), "search: heuristic only", nil, nil)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}

	for _, name := range mock.JSONCalls {
		if name == "published_date" || name == "source_classification" {
			t.Errorf("model consulted for %s in heuristic mode", name)
		}
	}

	if len(result.Citations) != 2 {
		t.Fatalf("citations = %d, want 2", len(result.Citations))
	}
	if result.Citations[0].Published != "2026-08-01" {
		t.Errorf("published = %q, want the date from the title", result.Citations[0].Published)
	}
	if result.Citations[0].SourceType != "primary" {
		t.Errorf("source type = %q, want primary from the .gov URL", result.Citations[0].SourceType)
	}
	if result.Citations[1].Published != "" || result.Citations[1].SourceType != "unknown" {
		t.Errorf("undatable citation = %+v", result.Citations[1])
	}
}

func TestModelClassificationFallsBackToKeywords(t *testing.T) {
	// The default mock answers "{}" for every schema: no usable classification,
	// so the keywords decide.
	searcher := &mockSearcher{
		textResults: []search.Result{{Title: "Go", Body: "b", URL: "https://en.wikipedia.org/wiki/Go"}},
	}
	a, _ := newTestSearchAgent(t, searcher)
	a.UpdateOptions(Options{NewsSearch: BoolOpt(false), MaxQueryRefinements: IntOpt(0)})

	result := a.ProcessMessage(context.Background(), "search: fallback", nil, nil)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if len(result.Citations) != 1 || result.Citations[0].SourceType != "secondary" {
		t.Errorf("citations = %+v, want a secondary wikipedia source", result.Citations)
	}
}

func TestCitationsSectionDisabled(t *testing.T) {
	searcher := &mockSearcher{
		textResults: []search.Result{{Title: "A", Body: "b", URL: "https://a.example"}},
	}
	a, _ := newTestSearchAgent(t, searcher)
	a.UpdateOptions(Options{NewsSearch: BoolOpt(false), MaxQueryRefinements: IntOpt(0), IncludeCitations: BoolOpt(false)})

	result := a.ProcessMessage(context.Background(), "search: no section", nil, nil)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if strings.Contains(result.Content, "Sources:") {
		t.Error("sources section present despite being disabled")
	}
	if len(result.Citations) != 1 {
		t.Error("citations metadata should still be populated")
	}
}

func TestNewsBudgetSplit(t *testing.T) {
	searcher := &mockSearcher{
		newsResults: []search.Result{
			{Title: "News 1", Body: "n1", URL: "https://n1.example", Published: "2026-08-22"},
			{Title: "News 2", Body: "n2", URL: "https://n2.example", Published: "2026-08-21"},
		},
		textResults: []search.Result{
			{Title: "Text 1", Body: "t1", URL: "https://t1.example"},
			{Title: "Text 2", Body: "t2", URL: "https://t2.example"},
			{Title: "Text 3", Body: "t3", URL: "https://t3.example"},
		},
	}
	a, _ := newTestSearchAgent(t, searcher)
	a.UpdateOptions(Options{MaxSearchResults: IntOpt(3), MaxQueryRefinements: IntOpt(0)})

	result := a.ProcessMessage(context.Background(), "search: split budget", nil, nil)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}

	// Budget 3: news gets 3/2 = 1 slot, text fills the remaining 2.
	if len(result.Citations) != 3 {
		t.Fatalf("citations = %d, want 3", len(result.Citations))
	}
	if result.Citations[0].Title != "News 1" {
		t.Errorf("first citation = %q, want the news result", result.Citations[0].Title)
	}
	if result.Citations[1].Title != "Text 1" || result.Citations[2].Title != "Text 2" {
		t.Errorf("text results wrong: %q, %q", result.Citations[1].Title, result.Citations[2].Title)
	}
}

func TestNewsFailureDegradesToText(t *testing.T) {
	searcher := &mockSearcher{
		newsErr:     errors.New("news endpoint down"),
		textResults: []search.Result{{Title: "A", Body: "b", URL: "https://a.example"}},
	}
	a, _ := newTestSearchAgent(t, searcher)
	a.UpdateOptions(Options{MaxQueryRefinements: IntOpt(0)})

	result := a.ProcessMessage(context.Background(), "search: degrade", nil, nil)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if !result.SearchPerformed || len(result.Citations) != 1 {
		t.Error("news failure did not degrade to text-only results")
	}
}

func TestProviderFailureDegradesToNoResults(t *testing.T) {
	// Both endpoints down: the agent answers search-less instead of erroring.
	searcher := &mockSearcher{
		newsErr: errors.New("news endpoint down"),
		textErr: errors.New("text endpoint down"),
	}
	a, mock := newTestSearchAgent(t, searcher)
	a.UpdateOptions(Options{MaxQueryRefinements: IntOpt(0)})

	result := a.ProcessMessage(context.Background(), "search: everything is down", nil, nil)
	if result.Err != nil {
		t.Fatalf("provider failure surfaced as an error: %v", result.Err)
	}
	if !result.SearchPerformed {
		t.Error("search not marked as performed")
	}
	if len(result.Citations) != 0 {
		t.Errorf("citations = %d, want none", len(result.Citations))
	}

	if len(mock.ChatCalls) != 1 {
		t.Fatalf("chat calls = %d, want 1", len(mock.ChatCalls))
	}
	system := mock.ChatCalls[0][0]
	if !strings.Contains(system.Content, "returned no results") {
		t.Errorf("system prompt = %q, want the no-results notice", system.Content)
	}
}

func TestQueryRefinementOnSparseResults(t *testing.T) {
	searcher := &mockSearcher{
		textResults: []search.Result{{Title: "Only one", Body: "b", URL: "https://a.example"}},
	}
	a, mock := newTestSearchAgent(t, searcher)
	a.UpdateOptions(Options{NewsSearch: BoolOpt(false)})
	mock.ScriptJSON(map[string]string{
		"refined_query": `{"query": "broader terms"}`,
	})

	result := a.ProcessMessage(context.Background(), "search: narrow query", nil, nil)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}

	if len(searcher.textQueries) != 2 {
		t.Fatalf("backend saw %d queries, want original plus refinement", len(searcher.textQueries))
	}
	if searcher.textQueries[1] != "broader terms" {
		t.Errorf("refined query = %q", searcher.textQueries[1])
	}
	// The refinement returned the same single result, so the original stands.
	if result.SearchQuery != "narrow query" {
		t.Errorf("final query = %q, want original kept", result.SearchQuery)
	}
}

func TestSourceExpansion(t *testing.T) {
	searcher := &mockSearcher{
		textResults: []search.Result{
			{Title: "Primary doc", Body: "the original announcement", URL: "https://a.example", Published: "2026-08-01"},
		},
	}
	a, mock := newTestSearchAgent(t, searcher)
	a.UpdateOptions(Options{NewsSearch: BoolOpt(false), MaxQueryRefinements: IntOpt(0)})

	if r := a.ProcessMessage(context.Background(), "search: something", nil, nil); r.Err != nil {
		t.Fatalf("search failed: %v", r.Err)
	}

	result := a.ProcessMessage(context.Background(), "source: 1", nil, nil)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if !strings.Contains(result.Content, "Primary doc") || !strings.Contains(result.Content, "https://a.example") {
		t.Errorf("expansion missing source details:\n%s", result.Content)
	}
	if len(mock.CompleteCalls) == 0 {
		t.Error("expansion did not request a key-point summary")
	}
}

func TestSourceExpansionOutOfRange(t *testing.T) {
	searcher := &mockSearcher{
		textResults: []search.Result{{Title: "A", Body: "b", URL: "https://a.example"}},
	}
	a, mock := newTestSearchAgent(t, searcher)
	a.UpdateOptions(Options{NewsSearch: BoolOpt(false), MaxQueryRefinements: IntOpt(0)})

	if r := a.ProcessMessage(context.Background(), "search: something", nil, nil); r.Err != nil {
		t.Fatalf("search failed: %v", r.Err)
	}
	generationCalls := len(mock.CompleteCalls) + len(mock.ChatCalls)

	result := a.ProcessMessage(context.Background(), "source: 99", nil, nil)
	if result.Err == nil {
		t.Fatal("expected error for out-of-range source number")
	}
	if got := len(mock.CompleteCalls) + len(mock.ChatCalls); got != generationCalls {
		t.Error("out-of-range source request triggered a generation call")
	}
}

func TestSourceExpansionWithoutSearch(t *testing.T) {
	a, mock := newTestSearchAgent(t, &mockSearcher{})

	result := a.ProcessMessage(context.Background(), "source: 1", nil, nil)
	if result.Err == nil {
		t.Fatal("expected error when no search has run")
	}
	if len(mock.CompleteCalls)+len(mock.ChatCalls) != 0 {
		t.Error("generation call made without any sources")
	}
}

func TestResetClearsSources(t *testing.T) {
	searcher := &mockSearcher{
		textResults: []search.Result{{Title: "A", Body: "b", URL: "https://a.example"}},
	}
	a, _ := newTestSearchAgent(t, searcher)
	a.UpdateOptions(Options{NewsSearch: BoolOpt(false), MaxQueryRefinements: IntOpt(0)})

	if r := a.ProcessMessage(context.Background(), "search: something", nil, nil); r.Err != nil {
		t.Fatalf("search failed: %v", r.Err)
	}
	a.Reset()

	if result := a.ProcessMessage(context.Background(), "source: 1", nil, nil); result.Err == nil {
		t.Error("expected error after reset cleared the sources")
	}
}

func TestSearchStreamMarkers(t *testing.T) {
	searcher := &mockSearcher{
		textResults: []search.Result{{Title: "A", Body: "b", URL: "https://a.example"}},
	}
	a, _ := newTestSearchAgent(t, searcher)
	a.UpdateOptions(Options{NewsSearch: BoolOpt(false), MaxQueryRefinements: IntOpt(0)})

	var streamed strings.Builder
	result := a.ProcessMessage(context.Background(), "search: markers", nil, func(chunk string) error {
		streamed.WriteString(chunk)
		return nil
	})
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}

	s := streamed.String()
	if !strings.Contains(s, SearchStartMarker) || !strings.Contains(s, SearchEndMarker) {
		t.Error("stream missing search markers")
	}
	if !strings.Contains(s, "markers") {
		t.Error("search notice missing the query")
	}
	// The markers are stream-only: the final content carries the answer.
	if strings.Contains(result.Content, SearchStartMarker) {
		t.Error("markers leaked into the final content")
	}
}

func TestParseSourceRequest(t *testing.T) {
	tests := []struct {
		message string
		n       int
		ok      bool
	}{
		{"source: 2", 2, true},
		{"source:1", 1, true},
		{"Source: 3", 3, true},
		{"ソース: 1", 1, true},
		{"出典:2", 2, true},
		{"引用: 1", 1, true},
		{"source: abc", 0, true},
		{"tell me about sources", 0, false},
		{"plain message", 0, false},
	}

	for _, tt := range tests {
		n, ok := parseSourceRequest(tt.message)
		if n != tt.n || ok != tt.ok {
			t.Errorf("parseSourceRequest(%q) = (%d, %v), want (%d, %v)", tt.message, n, ok, tt.n, tt.ok)
		}
	}
}
