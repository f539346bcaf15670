package sysload

import (
	"sync"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	logrus "github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "SystemLoad")

// userHZ scales gopsutil's second-resolution counters back to kernel ticks
// so delta math runs on monotone unsigned counters.
const userHZ = 100

// CPUSnapshot holds cumulative per-category CPU ticks since boot. A single
// snapshot is meaningless; only deltas between two snapshots are.
type CPUSnapshot struct {
	User, Nice, Sys, Idle, Iowait, Irq, Softirq, Steal, Guest, GuestNice uint64
}

func snapshotFromTimes(t cpu.TimesStat) CPUSnapshot {
	ticks := func(sec float64) uint64 {
		if sec <= 0 {
			return 0
		}
		return uint64(sec*userHZ + 0.5)
	}
	return CPUSnapshot{
		User:      ticks(t.User),
		Nice:      ticks(t.Nice),
		Sys:       ticks(t.System),
		Idle:      ticks(t.Idle),
		Iowait:    ticks(t.Iowait),
		Irq:       ticks(t.Irq),
		Softirq:   ticks(t.Softirq),
		Steal:     ticks(t.Steal),
		Guest:     ticks(t.Guest),
		GuestNice: ticks(t.GuestNice),
	}
}

func (s CPUSnapshot) idle() uint64 { return s.Idle + s.Iowait }

func (s CPUSnapshot) busy() uint64 {
	return s.User + s.Nice + s.Sys + s.Irq + s.Softirq + s.Steal
}

// CPUPercentBetween derives a utilization percentage from two snapshots
// taken some interval apart. A counter rollback or an empty interval yields
// 0; the result is always within [0,100].
func CPUPercentBetween(prev, cur CPUSnapshot) float64 {
	if cur.idle() < prev.idle() || cur.busy() < prev.busy() {
		// Rollback between samples, the delta is undefined.
		return 0
	}
	idleDelta := cur.idle() - prev.idle()
	busyDelta := cur.busy() - prev.busy()
	total := idleDelta + busyDelta
	if total == 0 {
		return 0
	}
	percent := float64(busyDelta) / float64(total) * 100
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

// MemoryStat reports used-vs-total memory, with "used" derived from the
// kernel's available estimate rather than raw free.
type MemoryStat struct {
	UsedGiB     float64
	TotalGiB    float64
	UsedPercent float64
}

// DiskStat reports filesystem capacity for one mount point.
type DiskStat struct {
	UsedGiB     float64
	TotalGiB    float64
	UsedPercent float64
}

// SystemLoadReader samples host utilization. CPU sampling is stateful: the
// previous snapshot is retained to compute deltas, so callers should sample
// at a roughly uniform cadence. All samplers degrade to zero readings when
// the underlying source is unreadable.
type SystemLoadReader struct {
	mu      sync.Mutex
	prevCPU *CPUSnapshot
}

func NewSystemLoadReader() *SystemLoadReader {
	return &SystemLoadReader{}
}

func (s *SystemLoadReader) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prevCPU = nil
}

// SampleCPU returns utilization over the interval since the previous call,
// or 0 on the first call.
func (s *SystemLoadReader) SampleCPU() float64 {
	times, err := cpu.Times(false)
	if err != nil {
		log.Errorf("get CPU times: %v", err)
		return 0
	}
	if len(times) == 0 {
		log.Errorf("no CPU times data")
		return 0
	}
	cur := snapshotFromTimes(times[0])

	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.prevCPU
	s.prevCPU = &cur
	if prev == nil {
		return 0
	}
	return CPUPercentBetween(*prev, cur)
}

func bytesToGiB(bytes uint64) float64 {
	return float64(bytes) / (1024 * 1024 * 1024)
}

// SampleMemory derives usage from total minus available, so reclaimable
// cache does not count as used.
func (s *SystemLoadReader) SampleMemory() MemoryStat {
	vm, err := mem.VirtualMemory()
	if err != nil {
		log.Errorf("get memory info: %v", err)
		return MemoryStat{}
	}
	return memoryStatFrom(vm.Total, vm.Available)
}

func memoryStatFrom(total, available uint64) MemoryStat {
	if total == 0 {
		return MemoryStat{}
	}
	if available > total {
		available = total
	}
	used := total - available
	return MemoryStat{
		UsedGiB:     bytesToGiB(used),
		TotalGiB:    bytesToGiB(total),
		UsedPercent: float64(used) / float64(total) * 100,
	}
}

// SampleDisk reports capacity for mountPoint, counting space unavailable to
// unprivileged users as used.
func (s *SystemLoadReader) SampleDisk(mountPoint string) DiskStat {
	usage, err := disk.Usage(mountPoint)
	if err != nil {
		log.Errorf("get disk usage for %s: %v", mountPoint, err)
		return DiskStat{}
	}
	return diskStatFrom(usage.Total, usage.Free)
}

func diskStatFrom(total, availToUser uint64) DiskStat {
	if total == 0 {
		return DiskStat{}
	}
	if availToUser > total {
		availToUser = total
	}
	used := total - availToUser
	return DiskStat{
		UsedGiB:     bytesToGiB(used),
		TotalGiB:    bytesToGiB(total),
		UsedPercent: float64(used) / float64(total) * 100,
	}
}
