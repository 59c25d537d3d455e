// Package mock provides a scripted reason.Completer for tests and for
// running the pipeline without a reasoning service.
package mock

import (
	"context"
	"sync"
)

// Completer replays scripted responses in order, repeating the last one once
// the script is exhausted. If Err is set, every call fails with it.
type Completer struct {
	mu        sync.Mutex
	Responses []string
	Err       error

	next    int
	Prompts []string // prompts received, in call order
}

// DefaultResponse is returned when no script is configured. It classifies
// everything as safe so an offline dry run produces a complete artifact set.
const DefaultResponse = `{"sensitivity": "Safe", "reason": "mock completer default"}`

// New creates a mock completer with the given scripted responses.
func New(responses ...string) *Completer {
	return &Completer{Responses: responses}
}

// Complete records the prompt and returns the next scripted response.
func (m *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) == 0 {
		return DefaultResponse, nil
	}
	resp := m.Responses[m.next]
	if m.next < len(m.Responses)-1 {
		m.next++
	}
	return resp, nil
}

// Calls returns the number of completions requested so far.
func (m *Completer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}
