// Package hoststats periodically logs host resource usage so an operator can
// correlate a run of replica failures with the box the client is running on
// being under CPU/memory pressure (SPEC_FULL.md §4.L). Collection is
// best-effort: a metric that fails to collect is logged and skipped, it never
// blocks or panics the reporter.
package hoststats

import (
	"log/slog"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

const defaultInterval = 30 * time.Second

// Snapshot holds the most recently collected host metrics.
type Snapshot struct {
	CPUPercent    float64
	MemoryPercent float64
	LoadAverage1m float64
}

// Reporter collects Snapshots on a fixed interval in a background goroutine.
type Reporter struct {
	logger   *slog.Logger
	interval time.Duration

	close chan struct{}
	wg    sync.WaitGroup

	mu   sync.RWMutex
	last Snapshot
}

// New builds a Reporter. A zero interval uses defaultInterval (30s).
func New(logger *slog.Logger, interval time.Duration) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Reporter{
		logger:   logger.With("component", "hoststats"),
		interval: interval,
		close:    make(chan struct{}),
	}
}

// Start begins periodic collection in a background goroutine.
func (r *Reporter) Start() {
	r.wg.Add(1)
	go r.run()
}

// Stop halts collection and waits for the background goroutine to exit.
func (r *Reporter) Stop() {
	close(r.close)
	r.wg.Wait()
}

// Last returns the most recently collected Snapshot.
func (r *Reporter) Last() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last
}

func (r *Reporter) run() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.collect()
	for {
		select {
		case <-r.close:
			return
		case <-ticker.C:
			r.collect()
		}
	}
}

func (r *Reporter) collect() {
	var snap Snapshot

	if percentages, err := cpu.Percent(0, false); err == nil && len(percentages) > 0 {
		snap.CPUPercent = percentages[0]
	} else {
		r.logger.Debug("failed to collect cpu stats", "error", err)
	}

	if v, err := mem.VirtualMemory(); err == nil {
		snap.MemoryPercent = v.UsedPercent
	} else {
		r.logger.Debug("failed to collect memory stats", "error", err)
	}

	if l, err := load.Avg(); err == nil {
		snap.LoadAverage1m = l.Load1
	} else {
		r.logger.Debug("failed to collect load stats", "error", err)
	}

	r.mu.Lock()
	r.last = snap
	r.mu.Unlock()

	r.logger.Debug("host stats", "cpu_percent", snap.CPUPercent, "memory_percent", snap.MemoryPercent, "load1", snap.LoadAverage1m)
}
