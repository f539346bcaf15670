package runner

import (
	"errors"
	"io"
	"os/exec"
	"sync"
	"time"

	logrus "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"HwStress/internal/command"
)

var log = logrus.WithField("component", "Runner")

// State of the single-run lifecycle.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	}
	return "unknown"
}

// ErrBusy is returned by Start while a run is active. It leaves the active
// run untouched.
var ErrBusy = errors.New("a test is already running")

const (
	progressTickPeriod = 200 * time.Millisecond
	stopGracePeriod    = 3 * time.Second

	// SpawnFailureExitCode is reported through the exit path when the
	// executable could not actually be started.
	SpawnFailureExitCode = -1
)

// Sink receives run events for display. Output chunks arrive in per-stream
// order; interleaving between stdout and stderr is not ordered.
type Sink interface {
	OnOutputChunk(text string)
	OnProgress(p Progress)
	OnRunFinished(exitCode int)
}

// Runner owns the lifecycle of at most one benchmark subprocess: spawn,
// stream, progress estimation, graceful-then-forced stop, exit handling.
// All run events are consumed by a single loop goroutine; Start/Stop only
// touch state under the mutex and signal the loop through channels.
type Runner struct {
	logDir string
	sink   Sink

	mu     sync.Mutex
	state  State
	stopCh chan struct{}
	doneCh chan struct{}
}

func New(logDir string, sink Sink) *Runner {
	return &Runner{logDir: logDir, sink: sink}
}

func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Start begins a run for inv. It returns ErrBusy while a run is active and
// a log-open error before anything is spawned; once it returns nil the run
// outcome is delivered through the sink's OnRunFinished.
func (r *Runner) Start(inv *command.Invocation) error {
	r.mu.Lock()
	if r.state != StateIdle {
		r.mu.Unlock()
		return ErrBusy
	}

	start := time.Now()
	logFile, err := OpenLogFile(r.logDir, inv.Kind, start, inv.CommandLine())
	if err != nil {
		r.mu.Unlock()
		return err
	}

	cmd := exec.Command(inv.Executable, inv.Args...)
	stdout, stderr, spawnErr := startPiped(cmd)

	r.state = StateRunning
	stopCh := make(chan struct{}, 1)
	doneCh := make(chan struct{})
	r.stopCh = stopCh
	r.doneCh = doneCh
	r.mu.Unlock()

	log.Infof("Started %s run: %s", inv.Kind, inv.CommandLine())
	go r.run(cmd, inv, logFile, stdout, stderr, spawnErr, start, stopCh, doneCh)
	return nil
}

// Stop requests graceful termination of the active run. It is a no-op while
// Idle and idempotent while Stopping.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateRunning {
		return
	}
	select {
	case r.stopCh <- struct{}{}:
	default:
	}
}

// Shutdown runs the graceful-then-forced stop sequence and waits until the
// subprocess has exited or the grace period has clearly elapsed. Called when
// the owning process is asked to terminate mid-run.
func (r *Runner) Shutdown() {
	r.mu.Lock()
	done := r.doneCh
	active := r.state != StateIdle
	r.mu.Unlock()
	if !active {
		return
	}

	r.Stop()
	select {
	case <-done:
	case <-time.After(stopGracePeriod + time.Second):
		log.Warnf("Subprocess did not exit within the grace period")
	}
}

func (r *Runner) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

// run is the single event loop consuming output, ticks, stop requests and
// the exit event for one subprocess.
func (r *Runner) run(cmd *exec.Cmd, inv *command.Invocation, logFile *LogFile,
	stdout, stderr io.ReadCloser, spawnErr error,
	start time.Time, stopCh chan struct{}, doneCh chan struct{}) {
	defer close(doneCh)

	outputCh := make(chan string, 64)
	exitCh := make(chan int, 1)

	if spawnErr != nil {
		log.Errorf("Failed to spawn %s: %v", inv.Executable, spawnErr)
		exitCh <- SpawnFailureExitCode
	} else {
		var readers sync.WaitGroup
		readers.Add(2)
		go streamPipe(stdout, outputCh, &readers)
		go streamPipe(stderr, outputCh, &readers)
		go func() {
			// Readers must drain the pipes before Wait closes them.
			readers.Wait()
			exitCh <- exitCodeOf(cmd.Wait())
		}()
	}

	ticker := time.NewTicker(progressTickPeriod)
	defer ticker.Stop()

	var killTimer <-chan time.Time
	stopping := false

	for {
		select {
		case chunk := <-outputCh:
			logFile.Append(chunk)
			r.sink.OnOutputChunk(chunk)

		case <-ticker.C:
			r.sink.OnProgress(computeProgress(start, time.Now(), inv.ExpectedSec))

		case <-stopCh:
			if stopping {
				continue
			}
			stopping = true
			r.setState(StateStopping)
			log.Infof("Stopping run, attempting graceful termination")
			if cmd.Process != nil {
				if err := cmd.Process.Signal(unix.SIGTERM); err != nil {
					log.Debugf("SIGTERM delivery: %v", err)
				}
			}
			killTimer = time.After(stopGracePeriod)

		case <-killTimer:
			killTimer = nil
			log.Warnf("Grace period elapsed, killing subprocess")
			if cmd.Process != nil {
				if err := cmd.Process.Kill(); err != nil {
					log.Debugf("kill delivery: %v", err)
				}
			}

		case code := <-exitCh:
			// The reader goroutines have finished, so any remaining
			// output sits buffered in outputCh.
			for {
				select {
				case chunk := <-outputCh:
					logFile.Append(chunk)
					r.sink.OnOutputChunk(chunk)
					continue
				default:
				}
				break
			}
			if err := logFile.Finalize(code); err != nil {
				log.Errorf("finalize run log: %v", err)
			}
			r.setState(StateIdle)
			log.Infof("Run finished with exit code %d, log: %s", code, logFile.Path())
			r.sink.OnRunFinished(code)
			return
		}
	}
}

// startPiped starts cmd with both output streams piped. On error nothing is
// running and nothing needs closing.
func startPiped(cmd *exec.Cmd) (stdout, stderr io.ReadCloser, err error) {
	stdout, err = cmd.StdoutPipe()
	if err != nil {
		return nil, nil, err
	}
	stderr, err = cmd.StderrPipe()
	if err != nil {
		return nil, nil, err
	}
	if err = cmd.Start(); err != nil {
		return nil, nil, err
	}
	return stdout, stderr, nil
}

func streamPipe(pipe io.ReadCloser, out chan<- string, wg *sync.WaitGroup) {
	defer wg.Done()
	buf := make([]byte, 4096)
	for {
		n, err := pipe.Read(buf)
		if n > 0 {
			out <- string(buf[:n])
		}
		if err != nil {
			return
		}
	}
}

func exitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return SpawnFailureExitCode
}
