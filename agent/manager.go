package agent

import (
	"context"
	"fmt"
	"sync"

	"kaiwa/config"
	"kaiwa/llm"
)

// Manager owns one lazily created instance of each agent type and tracks
// which one is active. Option updates apply to the shared baseline and to
// every instance already built, so switching agents never loses settings.
type Manager struct {
	mu      sync.Mutex
	opts    Options
	current string
	agents  map[string]Agent
}

// NewManager creates a manager starting on the plain chat agent.
func NewManager(opts Options) *Manager {
	return &Manager{
		opts:    opts.withDefaults(),
		current: TypeChat,
		agents:  make(map[string]Agent),
	}
}

// SwitchAgent makes agentType the active agent, building it on first use.
func (m *Manager) SwitchAgent(agentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.agentLocked(agentType); err != nil {
		return err
	}
	m.current = agentType
	if config.Debug {
		config.DebugLog.Printf("[Manager] switched to %s agent", agentType)
	}
	return nil
}

// Current returns the active agent type name.
func (m *Manager) Current() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// CurrentAgent returns the active agent instance, building it if needed.
func (m *Manager) CurrentAgent() Agent {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, _ := m.agentLocked(m.current)
	return a
}

// Agent returns the instance for agentType, building it on first use.
func (m *Manager) Agent(agentType string) (Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.agentLocked(agentType)
}

func (m *Manager) agentLocked(agentType string) (Agent, error) {
	if a, ok := m.agents[agentType]; ok {
		return a, nil
	}
	a, err := New(agentType, m.opts)
	if err != nil {
		return nil, err
	}
	m.agents[agentType] = a
	return a, nil
}

// ProcessMessage delegates to the active agent.
func (m *Manager) ProcessMessage(ctx context.Context, message string, turns []llm.Message, emit StreamFunc) Result {
	a := m.CurrentAgent()
	if a == nil {
		return errorResult(fmt.Errorf("no active agent"))
	}
	return a.ProcessMessage(ctx, message, turns, emit)
}

// GetResponse delegates to the active agent.
func (m *Manager) GetResponse(ctx context.Context, message string, turns []llm.Message) Result {
	a := m.CurrentAgent()
	if a == nil {
		return errorResult(fmt.Errorf("no active agent"))
	}
	return a.GetResponse(ctx, message, turns)
}

// UpdateOptions merges delta into the baseline options and into every agent
// built so far.
func (m *Manager) UpdateOptions(delta Options) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.opts.merge(delta)
	for _, a := range m.agents {
		if err := a.UpdateOptions(delta); err != nil {
			return err
		}
	}
	return nil
}

// Options returns a copy of the baseline options.
func (m *Manager) Options() Options {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opts
}

// Capabilities returns the active agent's capabilities.
func (m *Manager) Capabilities() []string {
	a := m.CurrentAgent()
	if a == nil {
		return nil
	}
	return a.Capabilities()
}

// ResetAll clears the working state of every agent built so far.
func (m *Manager) ResetAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.agents {
		a.Reset()
	}
}
