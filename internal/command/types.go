package command

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TestKind selects which stress tool and option set apply. Exactly one kind
// is active per run.
type TestKind int

const (
	KindCPU TestKind = iota
	KindRAM
	KindGPU
	KindDisk
	KindNetwork
)

func (k TestKind) String() string {
	switch k {
	case KindCPU:
		return "cpu"
	case KindRAM:
		return "ram"
	case KindGPU:
		return "gpu"
	case KindDisk:
		return "disk"
	case KindNetwork:
		return "net"
	}
	return fmt.Sprintf("TestKind(%d)", int(k))
}

// Tool returns the external executable backing the kind.
func (k TestKind) Tool() string {
	switch k {
	case KindCPU, KindRAM:
		return "stress-ng"
	case KindGPU:
		return "glmark2"
	case KindDisk:
		return "fio"
	case KindNetwork:
		return "iperf3"
	}
	return ""
}

// RequiredTools lists every external tool any kind may need, for the
// dependency diagnostic.
var RequiredTools = []string{"stress-ng", "glmark2", "fio", "iperf3"}

// TestOptions is the per-kind option variant. Implementations are the
// *Options structs below; the builder matches on the concrete type.
type TestOptions interface {
	Kind() TestKind
}

type CPUOptions struct {
	Workers     int
	DurationSec int
}

func (CPUOptions) Kind() TestKind { return KindCPU }

type RAMOptions struct {
	VMWorkers   int
	BytesPerVM  string
	DurationSec int
}

func (RAMOptions) Kind() TestKind { return KindRAM }

type GPUOptions struct{}

func (GPUOptions) Kind() TestKind { return KindGPU }

type DiskOptions struct {
	Size       string
	RuntimeSec int
	Filename   string
}

func (DiskOptions) Kind() TestKind { return KindDisk }

// TestFilePath returns the fio data file location, defaulting to
// fio_testfile.bin in the working directory.
func (o DiskOptions) TestFilePath() string {
	if filename := strings.TrimSpace(o.Filename); filename != "" {
		return filename
	}
	cwd, err := os.Getwd()
	if err != nil {
		cwd = os.TempDir()
	}
	return filepath.Join(cwd, "fio_testfile.bin")
}

type NetworkOptions struct {
	ServerHost string
	ExtraArgs  string
}

func (NetworkOptions) Kind() TestKind { return KindNetwork }

// Invocation is a fully substituted command line ready to spawn. ExpectedSec
// is the duration hint used for progress/ETA estimation; 0 means the run
// length is tool-controlled and progress is indeterminate.
type Invocation struct {
	Kind        TestKind
	Executable  string
	Args        []string
	ExpectedSec int
}

// CommandLine renders the invocation the way it is echoed and logged.
func (inv *Invocation) CommandLine() string {
	return strings.Join(append([]string{inv.Executable}, inv.Args...), " ")
}

// ValidationError reports a missing or malformed user-supplied option. It is
// synchronous and recoverable; nothing is spawned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// MissingDepError reports a required external tool absent from PATH.
type MissingDepError struct {
	Tool string
}

func (e *MissingDepError) Error() string {
	return fmt.Sprintf("'%s' not found", e.Tool)
}

// InstallHint suggests how to obtain the missing tool.
func (e *MissingDepError) InstallHint() string {
	return "sudo apt install " + e.Tool
}
