package sysload

import (
	"math"
	"testing"
)

func TestCPUPercentBetween(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		prev CPUSnapshot
		cur  CPUSnapshot
		want float64
	}{
		{
			name: "thirty percent busy",
			prev: CPUSnapshot{User: 100, Idle: 100},
			cur:  CPUSnapshot{User: 130, Idle: 170},
			want: 30.0,
		},
		{
			name: "iowait counts as idle",
			prev: CPUSnapshot{User: 0, Idle: 0, Iowait: 0},
			cur:  CPUSnapshot{User: 25, Idle: 50, Iowait: 25},
			want: 25.0,
		},
		{
			name: "steal counts as busy",
			prev: CPUSnapshot{Steal: 10, Idle: 10},
			cur:  CPUSnapshot{Steal: 60, Idle: 60},
			want: 50.0,
		},
		{
			name: "no elapsed ticks",
			prev: CPUSnapshot{User: 100, Idle: 100},
			cur:  CPUSnapshot{User: 100, Idle: 100},
			want: 0,
		},
		{
			name: "idle counter rollback does not underflow",
			prev: CPUSnapshot{User: 100, Idle: 200},
			cur:  CPUSnapshot{User: 150, Idle: 100},
			want: 0,
		},
		{
			name: "busy counter rollback does not underflow",
			prev: CPUSnapshot{User: 200, Idle: 100},
			cur:  CPUSnapshot{User: 100, Idle: 150},
			want: 0,
		},
		{
			name: "fully busy clamps to one hundred",
			prev: CPUSnapshot{User: 0, Idle: 100},
			cur:  CPUSnapshot{User: 500, Idle: 100},
			want: 100.0,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := CPUPercentBetween(tt.prev, tt.cur)
			if math.Abs(got-tt.want) > 0.01 {
				t.Errorf("CPUPercentBetween() = %.2f, want %.2f", got, tt.want)
			}
			if got < 0 || got > 100 {
				t.Errorf("CPUPercentBetween() = %.2f outside [0,100]", got)
			}
		})
	}
}

func TestReaderFirstCPUSampleIsZero(t *testing.T) {
	t.Parallel()

	reader := NewSystemLoadReader()
	if got := reader.SampleCPU(); got != 0 {
		t.Errorf("first SampleCPU() = %.2f, want 0 (no prior snapshot)", got)
	}
}

func TestMemoryStatFrom(t *testing.T) {
	t.Parallel()

	// MemTotal=16000000kB, MemAvailable=4000000kB.
	total := uint64(16000000) * 1024
	avail := uint64(4000000) * 1024

	stat := memoryStatFrom(total, avail)
	if math.Abs(stat.UsedPercent-75.0) > 0.01 {
		t.Errorf("UsedPercent = %.2f, want 75.0", stat.UsedPercent)
	}
	wantUsedGiB := float64(16000000-4000000) / 1024 / 1024
	if math.Abs(stat.UsedGiB-wantUsedGiB) > 0.01 {
		t.Errorf("UsedGiB = %.3f, want %.3f", stat.UsedGiB, wantUsedGiB)
	}
	wantTotalGiB := float64(16000000) / 1024 / 1024
	if math.Abs(stat.TotalGiB-wantTotalGiB) > 0.01 {
		t.Errorf("TotalGiB = %.3f, want %.3f", stat.TotalGiB, wantTotalGiB)
	}
}

func TestMemoryStatFromDegenerate(t *testing.T) {
	t.Parallel()

	if stat := memoryStatFrom(0, 0); stat != (MemoryStat{}) {
		t.Errorf("zero total: stat = %+v, want zero value", stat)
	}
	// Available above total clamps instead of underflowing.
	stat := memoryStatFrom(1024, 2048)
	if stat.UsedPercent != 0 {
		t.Errorf("UsedPercent = %.2f, want 0", stat.UsedPercent)
	}
}

func TestDiskStatFrom(t *testing.T) {
	t.Parallel()

	gib := uint64(1024 * 1024 * 1024)
	stat := diskStatFrom(100*gib, 40*gib)
	if math.Abs(stat.UsedPercent-60.0) > 0.01 {
		t.Errorf("UsedPercent = %.2f, want 60.0", stat.UsedPercent)
	}
	if math.Abs(stat.UsedGiB-60.0) > 0.01 {
		t.Errorf("UsedGiB = %.2f, want 60.0", stat.UsedGiB)
	}
	if math.Abs(stat.TotalGiB-100.0) > 0.01 {
		t.Errorf("TotalGiB = %.2f, want 100.0", stat.TotalGiB)
	}

	if stat := diskStatFrom(0, 0); stat != (DiskStat{}) {
		t.Errorf("zero total: stat = %+v, want zero value", stat)
	}
}
