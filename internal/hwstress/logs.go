package hwstress

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/nxadm/tail"

	"HwStress/internal/util"
)

// listRunLogs returns the run logs under logDir, newest first.
func listRunLogs(logDir string) ([]string, error) {
	entries, err := os.ReadDir(logDir)
	if err != nil {
		return nil, err
	}

	logs := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}
		logs = append(logs, entry.Name())
	}
	// The timestamp suffix makes lexical order chronological per kind;
	// sort by modification time to interleave kinds correctly.
	sort.Slice(logs, func(i, j int) bool {
		fi, erri := os.Stat(filepath.Join(logDir, logs[i]))
		fj, errj := os.Stat(filepath.Join(logDir, logs[j]))
		if erri != nil || errj != nil {
			return logs[i] > logs[j]
		}
		return fi.ModTime().After(fj.ModTime())
	})
	return logs, nil
}

// ShowLogs lists recent run logs, or follows the newest one when follow is
// set.
func ShowLogs(follow bool, count int) util.HwStressCmdError {
	config := util.ParseConfig(FlagConfigFilePath)

	logs, err := listRunLogs(config.LogDir)
	if err != nil {
		log.Errorf("read log directory %s: %v", config.LogDir, err)
		return util.ErrorLogFile
	}
	if len(logs) == 0 {
		fmt.Printf("No run logs in %s\n", config.LogDir)
		return util.ErrorSuccess
	}

	if !follow {
		if count > 0 && len(logs) > count {
			logs = logs[:count]
		}
		for _, name := range logs {
			fmt.Println(filepath.Join(config.LogDir, name))
		}
		return util.ErrorSuccess
	}

	return followLogFile(filepath.Join(config.LogDir, logs[0]))
}

func followLogFile(path string) util.HwStressCmdError {
	fmt.Printf("Following %s\n", path)

	t, err := tail.TailFile(path, tail.Config{
		Follow:    true,
		ReOpen:    true,
		Poll:      true,
		MustExist: true,
	})
	if err != nil {
		log.Errorf("tail log file: %v", err)
		return util.ErrorLogFile
	}
	defer t.Cleanup()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	for {
		select {
		case line := <-t.Lines:
			if line == nil {
				return util.ErrorSuccess
			}
			if line.Err != nil {
				log.Errorf("tail error: %v", line.Err)
				return util.ErrorLogFile
			}
			fmt.Println(line.Text)
		case <-sigCh:
			return util.ErrorSuccess
		}
	}
}
