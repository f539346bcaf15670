package command

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/google/shlex"
)

const (
	minDurationSec  = 5
	maxDiskRuntime  = 3600
	defaultRAMBytes = "512M"
	defaultDiskSize = "1G"
)

// Builder turns a test kind plus its typed options into a spawnable
// Invocation. It performs no I/O beyond the dependency lookup.
type Builder struct {
	resolve ResolveFunc
}

func NewBuilder(resolve ResolveFunc) *Builder {
	if resolve == nil {
		resolve = Resolve
	}
	return &Builder{resolve: resolve}
}

// Build validates opts, verifies the required external tool, and returns the
// invocation. Errors are *ValidationError or *MissingDepError.
func (b *Builder) Build(opts TestOptions) (*Invocation, error) {
	switch o := opts.(type) {
	case CPUOptions:
		return b.buildCPU(o)
	case RAMOptions:
		return b.buildRAM(o)
	case GPUOptions:
		return b.buildGPU(o)
	case DiskOptions:
		return b.buildDisk(o)
	case NetworkOptions:
		return b.buildNetwork(o)
	}
	// Every TestOptions variant must have a case above; reaching here means
	// a new kind was added without builder rules.
	return nil, fmt.Errorf("no builder rule for options type %T", opts)
}

func (b *Builder) need(tool string) error {
	_, err := b.resolve(tool)
	return err
}

func (b *Builder) buildCPU(o CPUOptions) (*Invocation, error) {
	if err := b.need("stress-ng"); err != nil {
		return nil, err
	}
	workers := max(1, o.Workers)
	dur := max(minDurationSec, o.DurationSec)
	return &Invocation{
		Kind:       KindCPU,
		Executable: "stress-ng",
		Args: []string{
			"--cpu", strconv.Itoa(workers),
			"--timeout", strconv.Itoa(dur) + "s",
		},
		ExpectedSec: dur,
	}, nil
}

func (b *Builder) buildRAM(o RAMOptions) (*Invocation, error) {
	if err := b.need("stress-ng"); err != nil {
		return nil, err
	}
	vm := max(1, o.VMWorkers)
	dur := max(minDurationSec, o.DurationSec)
	bytes := strings.TrimSpace(o.BytesPerVM)
	if bytes == "" {
		bytes = defaultRAMBytes
	}
	return &Invocation{
		Kind:       KindRAM,
		Executable: "stress-ng",
		Args: []string{
			"--vm", strconv.Itoa(vm),
			"--vm-bytes", bytes,
			"--timeout", strconv.Itoa(dur) + "s",
		},
		ExpectedSec: dur,
	}, nil
}

func (b *Builder) buildGPU(GPUOptions) (*Invocation, error) {
	if err := b.need("glmark2"); err != nil {
		return nil, err
	}
	// glmark2 runs a fixed suite and exits on its own; length is not
	// predictable, so no duration hint.
	return &Invocation{Kind: KindGPU, Executable: "glmark2"}, nil
}

func (b *Builder) buildDisk(o DiskOptions) (*Invocation, error) {
	if err := b.need("fio"); err != nil {
		return nil, err
	}
	size := strings.TrimSpace(o.Size)
	if size == "" {
		size = defaultDiskSize
	}
	rt := max(minDurationSec, o.RuntimeSec)
	rt = min(rt, maxDiskRuntime)
	filename := o.TestFilePath()
	return &Invocation{
		Kind:       KindDisk,
		Executable: "fio",
		Args: []string{
			"--name=randrw",
			"--rw=randrw",
			"--size=" + size,
			"--runtime=" + strconv.Itoa(rt),
			"--time_based=1",
			"--filename=" + filename,
			"--ioengine=" + diskIOEngine(),
			"--direct=1",
		},
		ExpectedSec: rt,
	}, nil
}

func (b *Builder) buildNetwork(o NetworkOptions) (*Invocation, error) {
	if err := b.need("iperf3"); err != nil {
		return nil, err
	}
	host := strings.TrimSpace(o.ServerHost)
	if host == "" {
		return nil, &ValidationError{Field: "server host", Reason: "iperf3 server address is required"}
	}
	args := []string{"-c", host}
	if extra := strings.TrimSpace(o.ExtraArgs); extra != "" {
		tokens, err := shlex.Split(extra)
		if err != nil {
			return nil, &ValidationError{Field: "extra args", Reason: err.Error()}
		}
		args = append(args, tokens...)
	}
	// Run length is controlled by the extra args (iperf3 -t etc.), not
	// tracked here.
	return &Invocation{Kind: KindNetwork, Executable: "iperf3", Args: args}, nil
}

// diskIOEngine picks the fio engine for the host OS family. Non-Linux hosts
// fall back to the generic synchronous engine without further detection.
func diskIOEngine() string {
	if runtime.GOOS == "linux" {
		return "libaio"
	}
	return "psync"
}
