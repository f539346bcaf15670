package sysload

import (
	"time"
)

// Sample is one periodic reading of host utilization.
type Sample struct {
	Timestamp time.Time
	CPU       float64
	Memory    MemoryStat
	Disk      DiskStat
}

// Sink receives every sample for live display.
type Sink interface {
	OnResourceSample(Sample)
}

// Recorder optionally persists samples. Persistence failures must not stall
// the sampling cadence.
type Recorder interface {
	SaveSample(Sample) error
	Close() error
}

// Monitor drives the reader at a fixed cadence and fans samples out to the
// sink and, when configured, the recorder.
type Monitor struct {
	reader     *SystemLoadReader
	period     time.Duration
	mountPoint string
	sink       Sink
	recorder   Recorder

	stopCh chan struct{}
	doneCh chan struct{}
}

func NewMonitor(period time.Duration, mountPoint string, sink Sink, recorder Recorder) *Monitor {
	return &Monitor{
		reader:     NewSystemLoadReader(),
		period:     period,
		mountPoint: mountPoint,
		sink:       sink,
		recorder:   recorder,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

func (m *Monitor) Start() {
	go m.collect()
}

func (m *Monitor) collect() {
	defer close(m.doneCh)

	ticker := time.NewTicker(m.period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sample := Sample{
				Timestamp: time.Now(),
				CPU:       m.reader.SampleCPU(),
				Memory:    m.reader.SampleMemory(),
				Disk:      m.reader.SampleDisk(m.mountPoint),
			}
			m.sink.OnResourceSample(sample)
			if m.recorder != nil {
				if err := m.recorder.SaveSample(sample); err != nil {
					log.Errorf("save sample: %v", err)
				}
			}
		case <-m.stopCh:
			return
		}
	}
}

// Close stops the sampling loop and waits for it to drain.
func (m *Monitor) Close() {
	close(m.stopCh)
	<-m.doneCh
	m.reader.Close()
	if m.recorder != nil {
		if err := m.recorder.Close(); err != nil {
			log.Errorf("close sample recorder: %v", err)
		}
	}
}
