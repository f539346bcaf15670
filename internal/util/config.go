package util

import (
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LogDir         string `yaml:"LogDir"`
	SamplePeriod   string `yaml:"SamplePeriod"`
	DiskMountPoint string `yaml:"DiskMountPoint"`

	Diagnostics struct {
		File  string `yaml:"File"`
		Level string `yaml:"Level"`
	} `yaml:"Diagnostics"`

	InfluxDB *InfluxDBConfig `yaml:"InfluxDB"`
}

type InfluxDBConfig struct {
	URL         string `yaml:"Url"`
	Token       string `yaml:"Token"`
	Org         string `yaml:"Org"`
	Bucket      string `yaml:"Bucket"`
	Measurement string `yaml:"Measurement"`
}

func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	c := &Config{
		LogDir:         filepath.Join(home, "HardwareStressTest", "logs"),
		SamplePeriod:   "1s",
		DiskMountPoint: "/",
	}
	c.Diagnostics.Level = "info"
	return c
}

// ParseConfig loads the yaml config at path, falling back to defaults when
// the file does not exist. A malformed file is fatal, a missing one is not.
func ParseConfig(path string) *Config {
	config := DefaultConfig()

	content, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("Failed to read config file %s: %s", path, err.Error())
		}
		return config
	}
	if err := yaml.Unmarshal(content, config); err != nil {
		log.Fatalf("Failed to parse config file %s: %s", path, err.Error())
	}

	if config.LogDir == "" {
		config.LogDir = DefaultConfig().LogDir
	}
	if config.SamplePeriod == "" {
		config.SamplePeriod = "1s"
	}
	if config.DiskMountPoint == "" {
		config.DiskMountPoint = "/"
	}
	return config
}

func (c *Config) SampleInterval() time.Duration {
	d, err := time.ParseDuration(c.SamplePeriod)
	if err != nil || d <= 0 {
		log.Warnf("Invalid SamplePeriod %q, using 1s", c.SamplePeriod)
		return time.Second
	}
	return d
}
