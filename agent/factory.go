package agent

import "fmt"

// constructors maps agent type names to their builders. Registration order
// here fixes the display order in the UI.
var agentTypes = []string{TypeChat, TypeDocs, TypeSearch, TypeTool}

var constructors = map[string]func(Options) Agent{
	TypeChat:   func(o Options) Agent { return NewChatAgent(o) },
	TypeDocs:   func(o Options) Agent { return NewDocsAgent(o) },
	TypeSearch: func(o Options) Agent { return NewSearchAgent(o) },
	TypeTool:   func(o Options) Agent { return NewToolAgent(o) },
}

// New builds an agent by type name. Unknown names are an error, never a
// silent fallback.
func New(agentType string, opts Options) (Agent, error) {
	build, ok := constructors[agentType]
	if !ok {
		return nil, fmt.Errorf("unknown agent type: %s", agentType)
	}
	return build(opts), nil
}

// RegisterAgent adds a constructor under name, appending it to the display
// order. Registering an existing name replaces its constructor in place.
func RegisterAgent(name string, build func(Options) Agent) {
	if _, exists := constructors[name]; !exists {
		agentTypes = append(agentTypes, name)
	}
	constructors[name] = build
}

// AvailableAgents lists the agent type names New accepts.
func AvailableAgents() []string {
	out := make([]string, len(agentTypes))
	copy(out, agentTypes)
	return out
}
