package util

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseConfigMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	config := ParseConfig(filepath.Join(t.TempDir(), "no-such-config.yaml"))
	if config.SamplePeriod != "1s" {
		t.Errorf("SamplePeriod = %q, want \"1s\"", config.SamplePeriod)
	}
	if config.DiskMountPoint != "/" {
		t.Errorf("DiskMountPoint = %q, want \"/\"", config.DiskMountPoint)
	}
	if config.LogDir == "" {
		t.Error("LogDir is empty")
	}
	if config.InfluxDB != nil {
		t.Error("InfluxDB should be unset by default")
	}
}

func TestParseConfigReadsFile(t *testing.T) {
	t.Parallel()

	content := `
LogDir: /var/log/stress
SamplePeriod: 250ms
DiskMountPoint: /data
Diagnostics:
  File: /tmp/hwstress.log
  Level: debug
InfluxDB:
  Url: http://localhost:8086
  Token: secret
  Org: lab
  Bucket: sysload
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	config := ParseConfig(path)
	if config.LogDir != "/var/log/stress" {
		t.Errorf("LogDir = %q", config.LogDir)
	}
	if config.SamplePeriod != "250ms" {
		t.Errorf("SamplePeriod = %q", config.SamplePeriod)
	}
	if config.DiskMountPoint != "/data" {
		t.Errorf("DiskMountPoint = %q", config.DiskMountPoint)
	}
	if config.Diagnostics.Level != "debug" {
		t.Errorf("Diagnostics.Level = %q", config.Diagnostics.Level)
	}
	if config.InfluxDB == nil || config.InfluxDB.URL != "http://localhost:8086" {
		t.Errorf("InfluxDB = %+v", config.InfluxDB)
	}
	if config.InfluxDB.Bucket != "sysload" {
		t.Errorf("InfluxDB.Bucket = %q", config.InfluxDB.Bucket)
	}
}

func TestParseConfigFillsOmittedFields(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("LogDir: /srv/logs\n"), 0644); err != nil {
		t.Fatal(err)
	}

	config := ParseConfig(path)
	if config.LogDir != "/srv/logs" {
		t.Errorf("LogDir = %q", config.LogDir)
	}
	if config.SamplePeriod != "1s" {
		t.Errorf("SamplePeriod = %q, want default \"1s\"", config.SamplePeriod)
	}
	if config.DiskMountPoint != "/" {
		t.Errorf("DiskMountPoint = %q, want default \"/\"", config.DiskMountPoint)
	}
}

func TestSampleInterval(t *testing.T) {
	t.Parallel()

	tests := []struct {
		period string
		want   time.Duration
	}{
		{"1s", time.Second},
		{"250ms", 250 * time.Millisecond},
		{"2m", 2 * time.Minute},
		{"garbage", time.Second},
		{"-5s", time.Second},
		{"0s", time.Second},
	}
	for _, tt := range tests {
		c := DefaultConfig()
		c.SamplePeriod = tt.period
		if got := c.SampleInterval(); got != tt.want {
			t.Errorf("SampleInterval(%q) = %v, want %v", tt.period, got, tt.want)
		}
	}
}
