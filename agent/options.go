package agent

import "kaiwa/llm"

// Options configures an agent. Boolean and integer toggles are pointers so a
// merge can tell "unset" apart from "explicitly false/zero"; use the helper
// constructors (BoolOpt, IntOpt) when building option deltas.
type Options struct {
	// Backend connection.
	Backend    llm.BackendType
	Endpoint   string
	APIKey     string
	APIVersion string
	Deployment string

	SystemPrompt string

	// Web search.
	SearchEnabled       *bool
	MaxSearchResults    *int
	SearchRegion        string
	NewsSearch          *bool
	MaxQueryRefinements *int
	StructuredOutput    *bool
	DecisionMode        string // "model" or "heuristic"
	CitationFormat      string // "numbered"
	IncludeCitations    *bool

	// Document context seeds for the context-aware agent.
	Documents []Document

	// Tool registrations for the tool-using agent.
	Tools []Tool
}

// Defaults for unset options.
const (
	DefaultDeployment   = "gpt-35-turbo"
	DefaultSystemPrompt = "You are a helpful assistant."
	DefaultSearchRegion = "jp-ja"
	DefaultMaxResults   = 3
	DefaultRefinements  = 1
	DefaultDecisionMode = "model"
	DefaultCitationFmt  = "numbered"
)

// BoolOpt returns a pointer suitable for an Options toggle.
func BoolOpt(v bool) *bool { return &v }

// IntOpt returns a pointer suitable for an Options counter.
func IntOpt(v int) *int { return &v }

// withDefaults returns a copy of o with every unset field replaced by its
// default value.
func (o Options) withDefaults() Options {
	if o.Backend == "" {
		o.Backend = llm.BackendAzureOpenAI
	}
	// Only the Azure backend gets a deployment default; the other backends
	// either configure their model explicitly or fall back to the client's
	// own default.
	if o.Deployment == "" && o.Backend == llm.BackendAzureOpenAI {
		o.Deployment = DefaultDeployment
	}
	if o.SystemPrompt == "" {
		o.SystemPrompt = DefaultSystemPrompt
	}
	if o.SearchEnabled == nil {
		o.SearchEnabled = BoolOpt(true)
	}
	if o.MaxSearchResults == nil {
		o.MaxSearchResults = IntOpt(DefaultMaxResults)
	}
	if o.SearchRegion == "" {
		o.SearchRegion = DefaultSearchRegion
	}
	if o.NewsSearch == nil {
		o.NewsSearch = BoolOpt(true)
	}
	if o.MaxQueryRefinements == nil {
		o.MaxQueryRefinements = IntOpt(DefaultRefinements)
	}
	if o.StructuredOutput == nil {
		o.StructuredOutput = BoolOpt(true)
	}
	if o.DecisionMode == "" {
		o.DecisionMode = DefaultDecisionMode
	}
	if o.CitationFormat == "" {
		o.CitationFormat = DefaultCitationFmt
	}
	if o.IncludeCitations == nil {
		o.IncludeCitations = BoolOpt(true)
	}
	return o
}

// merge overlays the set fields of delta onto o and reports whether any
// backend connection field changed.
func (o *Options) merge(delta Options) (reconnect bool) {
	if delta.Backend != "" && delta.Backend != o.Backend {
		o.Backend = delta.Backend
		reconnect = true
	}
	if delta.Endpoint != "" && delta.Endpoint != o.Endpoint {
		o.Endpoint = delta.Endpoint
		reconnect = true
	}
	if delta.APIKey != "" && delta.APIKey != o.APIKey {
		o.APIKey = delta.APIKey
		reconnect = true
	}
	if delta.APIVersion != "" && delta.APIVersion != o.APIVersion {
		o.APIVersion = delta.APIVersion
		reconnect = true
	}
	if delta.Deployment != "" && delta.Deployment != o.Deployment {
		o.Deployment = delta.Deployment
		reconnect = true
	}
	if delta.SystemPrompt != "" {
		o.SystemPrompt = delta.SystemPrompt
	}
	if delta.SearchEnabled != nil {
		o.SearchEnabled = delta.SearchEnabled
	}
	if delta.MaxSearchResults != nil {
		o.MaxSearchResults = delta.MaxSearchResults
	}
	if delta.SearchRegion != "" {
		o.SearchRegion = delta.SearchRegion
	}
	if delta.NewsSearch != nil {
		o.NewsSearch = delta.NewsSearch
	}
	if delta.MaxQueryRefinements != nil {
		o.MaxQueryRefinements = delta.MaxQueryRefinements
	}
	if delta.StructuredOutput != nil {
		o.StructuredOutput = delta.StructuredOutput
	}
	if delta.DecisionMode != "" {
		o.DecisionMode = delta.DecisionMode
	}
	if delta.CitationFormat != "" {
		o.CitationFormat = delta.CitationFormat
	}
	if delta.IncludeCitations != nil {
		o.IncludeCitations = delta.IncludeCitations
	}
	if len(delta.Documents) > 0 {
		o.Documents = delta.Documents
	}
	if len(delta.Tools) > 0 {
		o.Tools = delta.Tools
	}
	return reconnect
}
