package llm

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"wrapped in prose", `Sure, here you go: {"should_search": true, "reason": "news"} hope that helps`, `{"should_search": true, "reason": "news"}`},
		{"nested objects", `{"outer": {"inner": 1}}`, `{"outer": {"inner": 1}}`},
		{"no object", "nothing here", "{}"},
		{"unbalanced", `{"a": 1`, "{}"},
		{"empty", "", "{}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSON(tt.text); got != tt.want {
				t.Errorf("ExtractJSON(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestSchemaDefinition(t *testing.T) {
	schema := &Schema{
		Name: "search_decision",
		Properties: map[string]SchemaProperty{
			"should_search": {Type: "boolean", Description: "whether a search is needed"},
			"reason":        {Type: "string", Description: "why"},
		},
		Required: []string{"should_search", "reason"},
	}

	def := schema.Definition()
	if def["type"] != "object" {
		t.Errorf("type = %v, want object", def["type"])
	}

	props, ok := def["properties"].(map[string]any)
	if !ok {
		t.Fatal("properties is not a map")
	}
	if len(props) != 2 {
		t.Errorf("properties count = %d, want 2", len(props))
	}

	// The definition must round-trip through JSON (it is sent on the wire).
	if _, err := json.Marshal(def); err != nil {
		t.Errorf("definition is not marshalable: %v", err)
	}
}

func TestSchemaPromptInstructions(t *testing.T) {
	schema := &Schema{
		Name: "search_query",
		Properties: map[string]SchemaProperty{
			"query":    {Type: "string", Description: "the generated query"},
			"keywords": {Type: "array", Description: "extracted keywords"},
		},
		Required: []string{"query"},
		Order:    []string{"query", "keywords"},
	}

	got := schema.PromptInstructions()

	for _, want := range []string{`"query"`, `"keywords"`, "Required fields: query", "valid JSON object"} {
		if !strings.Contains(got, want) {
			t.Errorf("PromptInstructions() missing %q:\n%s", want, got)
		}
	}

	// Ordered rendering: query before keywords.
	if strings.Index(got, `"query"`) > strings.Index(got, `"keywords"`) {
		t.Error("properties not rendered in declared order")
	}
}
