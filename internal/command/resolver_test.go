package command

import (
	"errors"
	"testing"
)

func TestResolveFindsShellBuiltinPath(t *testing.T) {
	t.Parallel()

	path, err := Resolve("sh")
	if err != nil {
		t.Fatalf("Resolve(sh) returned error: %v", err)
	}
	if path == "" {
		t.Error("Resolve(sh) returned empty path")
	}
}

func TestResolveMissingTool(t *testing.T) {
	t.Parallel()

	_, err := Resolve("hwstress-no-such-tool-xyzzy")
	var depErr *MissingDepError
	if !errors.As(err, &depErr) {
		t.Fatalf("err = %v, want *MissingDepError", err)
	}
	if depErr.Tool != "hwstress-no-such-tool-xyzzy" {
		t.Errorf("missing tool = %q", depErr.Tool)
	}
}

func TestCheckAllCoversEveryTool(t *testing.T) {
	t.Parallel()

	statuses := CheckAll(fakeResolver("fio", "iperf3"))
	if len(statuses) != len(RequiredTools) {
		t.Fatalf("got %d statuses, want %d", len(statuses), len(RequiredTools))
	}

	byTool := make(map[string]ToolStatus, len(statuses))
	for _, s := range statuses {
		byTool[s.Tool] = s
	}
	for _, tool := range []string{"fio", "iperf3"} {
		if s := byTool[tool]; !s.Found || s.Path == "" {
			t.Errorf("%s: status = %+v, want found with path", tool, s)
		}
	}
	for _, tool := range []string{"stress-ng", "glmark2"} {
		if s := byTool[tool]; s.Found {
			t.Errorf("%s: reported found, want missing", tool)
		}
	}
}
