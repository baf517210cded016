package janitor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeReconnector struct {
	calls int32
	err   error
}

func (f *fakeReconnector) Connect(key []byte) error {
	atomic.AddInt32(&f.calls, 1)
	return f.err
}

func TestJanitorSweepsOnSchedule(t *testing.T) {
	fr := &fakeReconnector{}
	j, err := New("@every 10ms", fr, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	j.Start()
	defer j.Stop(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if atomic.LoadInt32(&fr.calls) > 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("janitor never invoked Connect")
}

func TestJanitorToleratesReconnectorError(t *testing.T) {
	fr := &fakeReconnector{err: errors.New("all replicas down")}
	j, err := New("@every 10ms", fr, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	j.Start()
	defer j.Stop(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if atomic.LoadInt32(&fr.calls) > 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("janitor never invoked Connect despite error being tolerated")
}

func TestNewRejectsInvalidSchedule(t *testing.T) {
	fr := &fakeReconnector{}
	if _, err := New("not a schedule", fr, nil); err == nil {
		t.Fatal("expected error for invalid cron schedule")
	}
}
