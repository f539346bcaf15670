package util

import (
	"io"
	"os"
	"path/filepath"

	nested "github.com/antonfisher/nested-logrus-formatter"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var DefaultConfigPath string

func init() {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	DefaultConfigPath = filepath.Join(home, ".config", "hwstress", "config.yaml")
}

func InitLogger(level log.Level) {
	log.SetLevel(level)
	log.SetFormatter(&nested.Formatter{})
}

// InitFileLogger additionally mirrors diagnostic output into a rotating
// file. The per-run log written by the runner is a separate artifact and
// never goes through logrus.
func InitFileLogger(level log.Level, path string) {
	InitLogger(level)
	log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MiB
		MaxBackups: 3,
	}))
}
