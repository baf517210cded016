package hoststats

import (
	"testing"
	"time"
)

func TestReporterCollectsWithinOneInterval(t *testing.T) {
	r := New(nil, 10*time.Millisecond)
	r.Start()
	defer r.Stop()

	time.Sleep(50 * time.Millisecond)

	snap := r.Last()
	if snap.CPUPercent < 0 || snap.MemoryPercent < 0 {
		t.Fatalf("unexpected negative metric in snapshot: %+v", snap)
	}
}

func TestReporterStartThenStop(t *testing.T) {
	r := New(nil, 10*time.Millisecond)
	r.Start()
	r.Stop()
}
