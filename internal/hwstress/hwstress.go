package hwstress

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"
	logrus "github.com/sirupsen/logrus"

	"HwStress/internal/command"
	"HwStress/internal/runner"
	"HwStress/internal/sampledb"
	"HwStress/internal/sysload"
	"HwStress/internal/util"
)

var log = logrus.WithField("component", "hwstress")

// terminalSink renders run events: raw output chunks, a rewritable progress
// line, and the completion notice. It is the display collaborator for one
// run.
type terminalSink struct {
	out          *os.File
	doneCh       chan int
	progressLine bool
}

func newTerminalSink() *terminalSink {
	return &terminalSink{out: os.Stdout, doneCh: make(chan int, 1)}
}

func (t *terminalSink) clearProgressLine() {
	if t.progressLine {
		fmt.Fprint(t.out, "\r\033[K")
		t.progressLine = false
	}
}

func (t *terminalSink) OnOutputChunk(text string) {
	t.clearProgressLine()
	fmt.Fprint(t.out, text)
}

func (t *terminalSink) OnProgress(p runner.Progress) {
	if p.Indeterminate {
		fmt.Fprintf(t.out, "\rRunning... ETA: %s", p.ETA())
	} else {
		fmt.Fprintf(t.out, "\rProgress: %3.0f%% (%d/%ds)  ETA: %s",
			p.Percent, p.ElapsedSec, p.ExpectedSec, p.ETA())
	}
	t.progressLine = true
}

func (t *terminalSink) OnRunFinished(exitCode int) {
	t.clearProgressLine()
	fmt.Fprintf(t.out, "\nProcess finished with return code: %d\n", exitCode)
	t.doneCh <- exitCode
}

// RunTest builds the invocation for opts and drives the run to completion,
// stopping gracefully on SIGINT/SIGTERM.
func RunTest(opts command.TestOptions) util.HwStressCmdError {
	config := util.ParseConfig(FlagConfigFilePath)

	builder := command.NewBuilder(command.Resolve)
	inv, err := builder.Build(opts)
	if err != nil {
		var depErr *command.MissingDepError
		if errors.As(err, &depErr) {
			log.Errorf("%s. Install with:\n  %s", depErr.Error(), depErr.InstallHint())
			return util.ErrorDependency
		}
		log.Errorf("%s", err.Error())
		return util.ErrorCmdArg
	}

	sink := newTerminalSink()
	run := runner.New(config.LogDir, sink)

	fmt.Printf("Starting: %s\n", inv.CommandLine())
	if err := run.Start(inv); err != nil {
		if errors.Is(err, runner.ErrBusy) {
			log.Errorf("A test is already running")
			return util.ErrorBusy
		}
		log.Errorf("Cannot open run log: %v", err)
		return util.ErrorLogFile
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-sigCh:
			sink.clearProgressLine()
			fmt.Println("\nStopping... attempting graceful termination.")
			run.Shutdown()
			select {
			case code := <-sink.doneCh:
				cleanupTestFile(opts)
				if code == 0 {
					return util.ErrorSuccess
				}
				return util.ErrorExecuteFailed
			case <-time.After(time.Second):
				// Shutdown already waited out the grace period; an exit
				// that still has not surfaced means the child is stuck
				// in the kernel and will never report.
				log.Errorf("Subprocess did not exit, giving up on it")
				return util.ErrorExecuteFailed
			}
		case code := <-sink.doneCh:
			cleanupTestFile(opts)
			if code == 0 {
				return util.ErrorSuccess
			}
			return util.ErrorExecuteFailed
		}
	}
}

// cleanupTestFile removes the fio data file left behind by a disk run. The
// file is scratch space sized at the --size argument; keeping it around
// would silently eat disk.
func cleanupTestFile(opts command.TestOptions) {
	o, ok := opts.(command.DiskOptions)
	if !ok {
		return
	}
	if !util.RemoveFileIfExists(o.TestFilePath()) {
		log.Warnf("Could not remove fio test file %s", o.TestFilePath())
	}
}

// CheckDependencies prints the resolution status of every stress tool.
func CheckDependencies() util.HwStressCmdError {
	statuses := command.CheckAll(command.Resolve)

	table := tablewriter.NewWriter(os.Stdout)
	util.SetBorderlessTable(table)
	table.SetHeader([]string{"Tool", "Status"})
	for _, s := range statuses {
		status := s.Path
		if !s.Found {
			status = fmt.Sprintf("NOT FOUND (sudo apt install %s)", s.Tool)
		}
		table.Append([]string{s.Tool, status})
	}
	table.Render()
	return util.ErrorSuccess
}

// gaugesSink renders the live utilization readout as one rewritable line.
type gaugesSink struct{}

func (gaugesSink) OnResourceSample(s sysload.Sample) {
	fmt.Printf("\r\033[KCPU %5.1f%%  |  MEM %5.1f%% (%.1f/%.1f GiB)  |  DISK %5.1f%% (%.1f/%.1f GiB)",
		s.CPU,
		s.Memory.UsedPercent, s.Memory.UsedGiB, s.Memory.TotalGiB,
		s.Disk.UsedPercent, s.Disk.UsedGiB, s.Disk.TotalGiB)
}

// MonitorResources runs the 1s sampling loop until interrupted, optionally
// persisting samples to InfluxDB.
func MonitorResources() util.HwStressCmdError {
	config := util.ParseConfig(FlagConfigFilePath)

	var recorder sysload.Recorder
	if FlagMonitorDB {
		if config.InfluxDB == nil {
			log.Errorf("--db requested but no InfluxDB block in %s", FlagConfigFilePath)
			return util.ErrorCmdArg
		}
		hostname, _ := os.Hostname()
		db, err := sampledb.NewInfluxDB(config.InfluxDB, hostname)
		if err != nil {
			// Dashboard continuity over persistence.
			log.Warnf("Sample persistence disabled: %v", err)
		} else {
			recorder = db
		}
	}

	monitor := sysload.NewMonitor(config.SampleInterval(), config.DiskMountPoint, gaugesSink{}, recorder)
	monitor.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	signal.Stop(sigCh)

	monitor.Close()
	fmt.Println()
	return util.ErrorSuccess
}
