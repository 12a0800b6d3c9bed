package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"kaiwa/config"
	"kaiwa/llm"
)

// Document is one entry in the context library the docs agent retrieves from.
type Document struct {
	ID      int64
	Title   string
	Content string
}

// maxContextDocs bounds how many documents are injected into one prompt.
const maxContextDocs = 3

// DocsAgent answers with relevant documents from its library injected into
// the system prompt. Retrieval is keyword overlap: documents sharing no terms
// with the message are never included.
type DocsAgent struct {
	base
	documents []Document
}

// NewDocsAgent creates a context-aware agent seeded with opts.Documents.
func NewDocsAgent(opts Options) *DocsAgent {
	a := &DocsAgent{base: newBase(TypeDocs, opts)}
	a.documents = append(a.documents, opts.Documents...)
	return a
}

// AddDocument appends a document to the library.
func (a *DocsAgent) AddDocument(doc Document) {
	a.documents = append(a.documents, doc)
}

// Documents returns the current library.
func (a *DocsAgent) Documents() []Document {
	return a.documents
}

// SetDocuments replaces the library, e.g. after loading from storage.
func (a *DocsAgent) SetDocuments(docs []Document) {
	a.documents = docs
}

// ProcessMessage implements Agent.
func (a *DocsAgent) ProcessMessage(ctx context.Context, message string, turns []llm.Message, emit StreamFunc) Result {
	enhanced := a.enhanceMessage(message)

	content, err := a.stream(ctx, buildMessages(a.opts.SystemPrompt, turns, enhanced), emit)
	if err != nil {
		return a.fail(err)
	}
	return a.finish(content)
}

// GetResponse implements Agent.
func (a *DocsAgent) GetResponse(ctx context.Context, message string, turns []llm.Message) Result {
	return a.respond(ctx, buildMessages(a.opts.SystemPrompt, turns, a.enhanceMessage(message)))
}

// Capabilities implements Agent.
func (a *DocsAgent) Capabilities() []string {
	return []string{"conversation", "document context retrieval"}
}

// contextExcerptLimit caps how much of a document rides along with a message.
const contextExcerptLimit = 500

// enhanceMessage appends the relevant documents to the user turn, leaving the
// system prompt untouched. Messages with no relevant documents pass through
// unchanged.
func (a *DocsAgent) enhanceMessage(message string) string {
	relevant := a.retrieveRelevantContext(message)
	if len(relevant) == 0 {
		return message
	}

	var b strings.Builder
	b.WriteString(message)
	b.WriteString("\n\nHere is some relevant information that might help you answer:\n")
	for i, doc := range relevant {
		fmt.Fprintf(&b, "\nDocument %d:\nTitle: %s\nContent: %s\n", i+1, doc.Title, truncateRunes(doc.Content, contextExcerptLimit))
	}

	if config.Debug {
		config.DebugLog.Printf("[Agent] %s: attached %d context documents", a.name, len(relevant))
	}
	return b.String()
}

// retrieveRelevantContext scores every document by how many distinct message
// terms appear in it and returns the top entries, best first. Documents with
// no overlap are excluded entirely. Ties keep library order.
func (a *DocsAgent) retrieveRelevantContext(message string) []Document {
	terms := messageTerms(message)
	if len(terms) == 0 {
		return nil
	}

	type scored struct {
		doc   Document
		score int
	}
	var candidates []scored
	for _, doc := range a.documents {
		haystack := strings.ToLower(doc.Title + " " + doc.Content)
		score := 0
		for term := range terms {
			if strings.Contains(haystack, term) {
				score++
			}
		}
		if score > 0 {
			candidates = append(candidates, scored{doc, score})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if len(candidates) > maxContextDocs {
		candidates = candidates[:maxContextDocs]
	}

	docs := make([]Document, len(candidates))
	for i, c := range candidates {
		docs[i] = c.doc
	}
	return docs
}

// messageTerms lowercases the message and splits it into the distinct terms
// used for overlap scoring. Single-character fragments are noise and skipped.
func messageTerms(message string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(message), func(r rune) bool {
		return !isTermRune(r)
	})

	terms := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if len([]rune(f)) < 2 {
			continue
		}
		terms[f] = struct{}{}
	}
	return terms
}

func isTermRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	case r > 127: // keep non-ASCII scripts intact
		return true
	}
	return false
}
