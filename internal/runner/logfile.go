package runner

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"HwStress/internal/command"
	"HwStress/internal/util"
)

const appName = "hwstress"

const logTimestampLayout = "2006-01-02_15-04-05"

// LogFile is the append-only record of one run: header, streamed output in
// arrival order, trailing exit line. It is owned by the runner for the
// lifetime of the run and read-only afterwards.
type LogFile struct {
	file *os.File
	path string
}

// OpenLogFile creates `<logDir>/<kind>_<timestamp>.log` (creating logDir on
// demand) and writes the header.
func OpenLogFile(logDir string, kind command.TestKind, start time.Time, commandLine string) (*LogFile, error) {
	if err := util.EnsureDir(logDir); err != nil {
		return nil, fmt.Errorf("create log directory %s: %w", logDir, err)
	}

	path := filepath.Join(logDir, fmt.Sprintf("%s_%s.log", kind, start.Format(logTimestampLayout)))
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, fmt.Errorf("create log file %s: %w", path, err)
	}

	header := fmt.Sprintf("%s Log - %s\nCommand: %s\n\n",
		appName, start.Format(time.RFC3339), commandLine)
	if _, err := file.WriteString(header); err != nil {
		file.Close()
		return nil, fmt.Errorf("write log header: %w", err)
	}

	return &LogFile{file: file, path: path}, nil
}

func (l *LogFile) Path() string {
	return l.path
}

// Append writes one output chunk. Write errors are reported but do not
// interrupt the run; the live stream takes priority over the record.
func (l *LogFile) Append(chunk string) {
	if _, err := l.file.WriteString(chunk); err != nil {
		log.Errorf("append to run log %s: %v", l.path, err)
	}
}

// Finalize writes the exit trailer and closes the file.
func (l *LogFile) Finalize(exitCode int) error {
	if _, err := fmt.Fprintf(l.file, "\n[exit] %d\n", exitCode); err != nil {
		l.file.Close()
		return fmt.Errorf("write exit trailer: %w", err)
	}
	return l.file.Close()
}
