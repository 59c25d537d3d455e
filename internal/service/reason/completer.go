// Package reason defines the interface to the external text-reasoning service.
package reason

import (
	"context"
	"errors"
	"strings"
)

// Completer produces a raw completion for a prompt. The service is stateless:
// one request per call, no session carried between calls. Implementations
// must be safe for concurrent use.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ErrNoObject is returned when a completion contains no JSON object.
var ErrNoObject = errors.New("no JSON object in completion")

// ExtractObject returns the substring between the first '{' and the last '}'
// of raw. Reasoning services routinely wrap their JSON in explanatory prose
// or markdown fences; callers decode the returned substring.
func ExtractObject(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return "", ErrNoObject
	}
	return raw[start : end+1], nil
}
