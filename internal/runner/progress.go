package runner

import (
	"fmt"
	"time"
)

// Progress is one tick's estimate of run completion. When Indeterminate is
// set the run length is tool-controlled and the other fields are zero; the
// display collaborator is expected to show a spinner-like indicator instead.
type Progress struct {
	Indeterminate bool
	ElapsedSec    int
	ExpectedSec   int
	RemainingSec  int
	Percent       float64
}

func computeProgress(start, now time.Time, expectedSec int) Progress {
	if expectedSec <= 0 {
		return Progress{Indeterminate: true}
	}

	elapsed := int(now.Sub(start).Seconds())
	if elapsed < 0 {
		elapsed = 0
	}
	displayed := min(elapsed, expectedSec)
	remaining := max(0, expectedSec-elapsed)

	return Progress{
		ElapsedSec:   displayed,
		ExpectedSec:  expectedSec,
		RemainingSec: remaining,
		Percent:      float64(displayed) / float64(expectedSec) * 100,
	}
}

// ETA renders the remaining time as mm:ss, or the placeholder when the run
// length is unknown.
func (p Progress) ETA() string {
	if p.Indeterminate {
		return "--:--"
	}
	return fmt.Sprintf("%02d:%02d", p.RemainingSec/60, p.RemainingSec%60)
}
