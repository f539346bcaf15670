package command

import (
	"context"
	"os/exec"
	"time"
)

// LookupTimeout bounds a single PATH lookup. The lookup normally returns in
// microseconds; the bound guards against pathological PATH entries such as
// hung network mounts.
const LookupTimeout = 1500 * time.Millisecond

// ResolveFunc is the lookup contract the builder depends on, injectable in
// tests.
type ResolveFunc func(name string) (string, error)

// Resolve looks up name on PATH and returns its absolute location, or a
// *MissingDepError when the tool is absent or the lookup exceeds the bound.
func Resolve(name string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), LookupTimeout)
	defer cancel()

	type lookup struct {
		path string
		err  error
	}
	done := make(chan lookup, 1)
	go func() {
		path, err := exec.LookPath(name)
		done <- lookup{path, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return "", &MissingDepError{Tool: name}
		}
		return r.path, nil
	case <-ctx.Done():
		return "", &MissingDepError{Tool: name}
	}
}

// ToolStatus is one row of the dependency diagnostic.
type ToolStatus struct {
	Tool  string
	Path  string
	Found bool
}

// CheckAll resolves every tool any test kind may need.
func CheckAll(resolve ResolveFunc) []ToolStatus {
	statuses := make([]ToolStatus, 0, len(RequiredTools))
	for _, tool := range RequiredTools {
		path, err := resolve(tool)
		statuses = append(statuses, ToolStatus{
			Tool:  tool,
			Path:  path,
			Found: err == nil,
		})
	}
	return statuses
}
