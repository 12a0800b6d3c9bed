package llm

import (
	"fmt"
	"strings"
)

// SchemaProperty describes one field of a structured-output schema.
type SchemaProperty struct {
	Type        string // "string", "boolean", "number", "array"
	Description string
}

// Schema is a minimal JSON schema used to constrain model output. It renders
// both to the OpenAI json_schema response format (Definition) and to plain
// prompt instructions for backends without a JSON mode (PromptInstructions).
type Schema struct {
	Name       string
	Properties map[string]SchemaProperty
	Required   []string
	// Order fixes the property ordering in prompt instructions so fallback
	// prompts are deterministic.
	Order []string
}

// Definition returns the schema as a JSON-schema object map.
func (s *Schema) Definition() map[string]any {
	props := make(map[string]any, len(s.Properties))
	for name, prop := range s.Properties {
		p := map[string]any{"type": prop.Type}
		if prop.Type == "array" {
			p["items"] = map[string]any{"type": "string"}
		}
		if prop.Description != "" {
			p["description"] = prop.Description
		}
		props[name] = p
	}

	def := map[string]any{
		"type":                 "object",
		"properties":           props,
		"additionalProperties": false,
	}
	if len(s.Required) > 0 {
		def["required"] = s.Required
	}
	return def
}

// PromptInstructions renders the schema as instructions appended to a prompt,
// for models that cannot enforce a response format.
func (s *Schema) PromptInstructions() string {
	var b strings.Builder
	b.WriteString("Answer with a JSON object following this schema:\n{\n")
	for _, name := range s.propertyOrder() {
		prop := s.Properties[name]
		fmt.Fprintf(&b, "  %q: {\n", name)
		fmt.Fprintf(&b, "    \"type\": %q,\n", prop.Type)
		fmt.Fprintf(&b, "    \"description\": %q\n", prop.Description)
		b.WriteString("  },\n")
	}
	b.WriteString("}\n\n")
	if len(s.Required) > 0 {
		fmt.Fprintf(&b, "Required fields: %s\n\n", strings.Join(s.Required, ", "))
	}
	b.WriteString("Respond with a single valid JSON object and nothing else.")
	return b.String()
}

func (s *Schema) propertyOrder() []string {
	if len(s.Order) > 0 {
		return s.Order
	}
	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	return names
}

// ExtractJSON returns the first balanced JSON object embedded in text, or
// "{}" when none is found. Models on the prompt fallback tend to wrap their
// JSON in prose, so this scans for the first opening brace and matches it.
func ExtractJSON(text string) string {
	start := strings.IndexByte(text, '{')
	if start == -1 {
		return "{}"
	}

	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}

	return "{}"
}
