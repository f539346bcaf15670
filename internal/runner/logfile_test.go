package runner

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"HwStress/internal/command"
)

func TestLogFileFormat(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	start := time.Date(2025, 9, 6, 14, 30, 5, 0, time.UTC)

	lf, err := OpenLogFile(dir, command.KindCPU, start, "stress-ng --cpu 4 --timeout 10s")
	if err != nil {
		t.Fatalf("OpenLogFile: %v", err)
	}

	wantName := "cpu_2025-09-06_14-30-05.log"
	if got := filepath.Base(lf.Path()); got != wantName {
		t.Errorf("log filename = %q, want %q", got, wantName)
	}

	lf.Append("stress-ng: info: dispatching hogs\n")
	lf.Append("partial chunk")
	if err := lf.Finalize(0); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	content, err := os.ReadFile(lf.Path())
	if err != nil {
		t.Fatalf("read log back: %v", err)
	}
	lines := strings.Split(string(content), "\n")
	if !strings.HasPrefix(lines[0], "hwstress Log - 2025-09-06T14:30:05") {
		t.Errorf("header line = %q", lines[0])
	}
	if lines[1] != "Command: stress-ng --cpu 4 --timeout 10s" {
		t.Errorf("command line = %q", lines[1])
	}
	if lines[2] != "" {
		t.Errorf("expected blank separator, got %q", lines[2])
	}
	if !strings.HasSuffix(strings.TrimRight(string(content), "\n"), "[exit] 0") {
		t.Errorf("log does not end with exit trailer: %q", string(content))
	}
	if !strings.Contains(string(content), "dispatching hogs") {
		t.Error("streamed output missing from log")
	}
}

func TestOpenLogFileCreatesDirectory(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "logs")
	lf, err := OpenLogFile(dir, command.KindDisk, time.Now(), "fio --name=randrw")
	if err != nil {
		t.Fatalf("OpenLogFile: %v", err)
	}
	if err := lf.Finalize(1); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	content, err := os.ReadFile(lf.Path())
	if err != nil {
		t.Fatalf("read log back: %v", err)
	}
	if !strings.Contains(string(content), "[exit] 1") {
		t.Errorf("missing nonzero exit trailer in %q", string(content))
	}
}

func TestOpenLogFileUnwritableDir(t *testing.T) {
	t.Parallel()

	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}

	dir := t.TempDir()
	if err := os.Chmod(dir, 0555); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	defer os.Chmod(dir, 0755)

	if _, err := OpenLogFile(filepath.Join(dir, "logs"), command.KindRAM, time.Now(), "x"); err == nil {
		t.Error("OpenLogFile in unwritable directory succeeded, want error")
	}
}
