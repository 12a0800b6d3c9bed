package agent

import (
	"context"
	"strings"
	"testing"

	"kaiwa/llm/testutil"
)

func testLibrary() []Document {
	return []Document{
		{ID: 1, Title: "Deploy guide", Content: "How to deploy the billing service to production with zero downtime."},
		{ID: 2, Title: "Billing overview", Content: "The billing service charges customers monthly and emits invoices."},
		{ID: 3, Title: "Cooking notes", Content: "A collection of pasta recipes."},
		{ID: 4, Title: "Billing runbook", Content: "Billing service incidents: check the invoice queue and the deploy history."},
		{ID: 5, Title: "Deploy checklist", Content: "Before any deploy of the billing service verify invoices and the queue."},
	}
}

func TestRetrieveRelevantContext(t *testing.T) {
	a := NewDocsAgent(Options{Documents: testLibrary()})

	docs := a.retrieveRelevantContext("how do I deploy the billing service and check invoices?")

	if len(docs) != 3 {
		t.Fatalf("retrieved %d documents, want top 3", len(docs))
	}

	// Zero-overlap documents never appear.
	for _, d := range docs {
		if d.ID == 3 {
			t.Error("retrieved a document with no term overlap")
		}
	}

	// Best match first: documents 4 and 5 mention billing, service, deploy,
	// invoice and queue terms; document 1 fewer.
	for i := 1; i < len(docs); i++ {
		prev := a.scoreFor(docs[i-1], "how do I deploy the billing service and check invoices?")
		cur := a.scoreFor(docs[i], "how do I deploy the billing service and check invoices?")
		if prev < cur {
			t.Errorf("documents not in descending score order: %d before %d", prev, cur)
		}
	}
}

// scoreFor recomputes a document's overlap score for ordering assertions.
func (a *DocsAgent) scoreFor(doc Document, message string) int {
	terms := messageTerms(message)
	haystack := strings.ToLower(doc.Title + " " + doc.Content)
	score := 0
	for term := range terms {
		if strings.Contains(haystack, term) {
			score++
		}
	}
	return score
}

func TestRetrieveRelevantContextNoOverlap(t *testing.T) {
	a := NewDocsAgent(Options{Documents: testLibrary()})

	if docs := a.retrieveRelevantContext("quantum chromodynamics"); len(docs) != 0 {
		t.Errorf("retrieved %d documents for an unrelated message, want 0", len(docs))
	}
}

func TestRetrieveRelevantContextEmptyLibrary(t *testing.T) {
	a := NewDocsAgent(Options{})
	if docs := a.retrieveRelevantContext("anything"); len(docs) != 0 {
		t.Errorf("retrieved %d documents from empty library", len(docs))
	}
}

func TestDocsAgentAppendsContextToMessage(t *testing.T) {
	a := NewDocsAgent(Options{Documents: testLibrary()})
	mock := testutil.NewMockClient("gpt-4o")
	a.SetClient(mock)

	result := a.ProcessMessage(context.Background(), "how does billing work?", nil, nil)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}

	if len(mock.CompleteCalls) != 1 {
		t.Fatalf("complete calls = %d, want 1", len(mock.CompleteCalls))
	}
	sent := mock.CompleteCalls[0]

	// The documents ride on the user turn; the system prompt stays clean.
	system := sent[0]
	if system.Role != "system" || system.Content != DefaultSystemPrompt {
		t.Errorf("system message = %+v, want the untouched prompt", system)
	}

	user := sent[len(sent)-1]
	if user.Role != "user" {
		t.Fatal("last message is not the user turn")
	}
	if !strings.HasPrefix(user.Content, "how does billing work?") {
		t.Errorf("user turn = %q, want the original question first", user.Content)
	}
	if !strings.Contains(user.Content, "Billing overview") {
		t.Error("relevant document not attached to the user turn")
	}
	if strings.Contains(user.Content, "Cooking notes") {
		t.Error("irrelevant document attached")
	}
}

func TestDocsAgentNoContextLeavesMessageAlone(t *testing.T) {
	a := NewDocsAgent(Options{SystemPrompt: "plain prompt", Documents: testLibrary()})
	mock := testutil.NewMockClient("gpt-4o")
	a.SetClient(mock)

	if r := a.GetResponse(context.Background(), "quantum chromodynamics", nil); r.Err != nil {
		t.Fatal(r.Err)
	}

	sent := mock.CompleteCalls[0]
	if sent[0].Content != "plain prompt" {
		t.Errorf("system prompt = %q, want unmodified prompt", sent[0].Content)
	}
	if sent[len(sent)-1].Content != "quantum chromodynamics" {
		t.Errorf("user turn = %q, want unmodified message", sent[len(sent)-1].Content)
	}
}

func TestDocsAgentTruncatesLongDocuments(t *testing.T) {
	long := strings.Repeat("billing ", 200) // well past the excerpt limit
	a := NewDocsAgent(Options{Documents: []Document{{ID: 1, Title: "Billing tome", Content: long}}})

	enhanced := a.enhanceMessage("how does billing work?")
	if len([]rune(enhanced)) > len([]rune("how does billing work?"))+contextExcerptLimit+200 {
		t.Errorf("enhanced message length %d, document excerpt not truncated", len([]rune(enhanced)))
	}
	if !strings.Contains(enhanced, "Billing tome") {
		t.Error("document title missing from enhanced message")
	}
}

func TestAddDocument(t *testing.T) {
	a := NewDocsAgent(Options{})
	a.AddDocument(Document{ID: 1, Title: "Alpha", Content: "alpha content"})
	a.AddDocument(Document{ID: 2, Title: "Beta", Content: "beta content"})

	if got := len(a.Documents()); got != 2 {
		t.Errorf("library size = %d, want 2", got)
	}

	if docs := a.retrieveRelevantContext("tell me about alpha"); len(docs) != 1 || docs[0].ID != 1 {
		t.Errorf("retrieval after AddDocument = %+v", docs)
	}
}
