package sampledb

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	logrus "github.com/sirupsen/logrus"

	"HwStress/internal/sysload"
	"HwStress/internal/util"
)

var log = logrus.WithField("component", "InfluxDB")

const (
	maxRetries    = 3
	retryInterval = 5 * time.Second

	defaultMeasurement = "hwstress_sysload"
)

// InfluxDB persists resource samples so utilization during a stress run can
// be inspected after the fact. Implements sysload.Recorder.
type InfluxDB struct {
	client      influxdb2.Client
	org         string
	bucket      string
	measurement string
	hostname    string
}

func NewInfluxDB(config *util.InfluxDBConfig, hostname string) (*InfluxDB, error) {
	var client influxdb2.Client
	var err error

	for i := 0; i < maxRetries; i++ {
		client = influxdb2.NewClient(config.URL, config.Token)
		_, err = client.Ping(context.Background())
		if err == nil {
			break
		}

		log.Warnf("Failed to connect to InfluxDB (attempt %d/%d): %v", i+1, maxRetries, err)
		client.Close()

		if i < maxRetries-1 {
			time.Sleep(retryInterval)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to ping InfluxDB after %d attempts: %v", maxRetries, err)
	}

	measurement := config.Measurement
	if measurement == "" {
		measurement = defaultMeasurement
	}

	return &InfluxDB{
		client:      client,
		org:         config.Org,
		bucket:      config.Bucket,
		measurement: measurement,
		hostname:    hostname,
	}, nil
}

func (db *InfluxDB) SaveSample(sample sysload.Sample) error {
	writeAPI := db.client.WriteAPIBlocking(db.org, db.bucket)

	tags := map[string]string{
		"host": db.hostname,
	}
	fields := map[string]interface{}{
		"cpu_utilization":    sample.CPU,
		"memory_utilization": sample.Memory.UsedPercent,
		"memory_used_gib":    sample.Memory.UsedGiB,
		"memory_total_gib":   sample.Memory.TotalGiB,
		"disk_utilization":   sample.Disk.UsedPercent,
		"disk_used_gib":      sample.Disk.UsedGiB,
		"disk_total_gib":     sample.Disk.TotalGiB,
	}

	point := influxdb2.NewPoint(db.measurement, tags, fields, sample.Timestamp)
	if err := writeAPI.WritePoint(context.Background(), point); err != nil {
		return fmt.Errorf("write sample point: %v", err)
	}
	return nil
}

func (db *InfluxDB) Close() error {
	db.client.Close()
	return nil
}
