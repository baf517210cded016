package client

import (
	"fmt"

	"github.com/nbclient/memcring/internal/ring"
)

// reconnect is connectReplica under the ring-selected backend for replica i,
// kept as its own name to mirror the distinct "reconnect an existing slot"
// step described in SPEC_FULL.md §4.E, even though today it is exactly
// connectReplica.
func (c *Client) reconnect(i, backendIndex int) error {
	return c.connectReplica(i, backendIndex)
}

// Connect walks the ring starting from key (or the client's last starting
// index, if key is empty) and reconnects every replica slot to its ring
// position. It returns nil if at least one replica connected, and otherwise
// the smallest error kind observed, matching Init's tolerance.
//
// Passing a nil key is how the maintenance janitor sweeps dead replicas
// without perturbing which backend a live key's next GET will hit.
func (c *Client) Connect(key []byte) error {
	c.joinBarrier()

	c.startingIndexMu.Lock()
	if len(key) > 0 {
		c.startingIndex = ring.StartingIndex(key, c.n)
	}
	start := c.startingIndex
	c.startingIndexMu.Unlock()

	var anySuccess bool
	smallest := KindNone
	for i := 0; i < c.r; i++ {
		backendIndex := (start + i + 1) % c.n
		if err := c.reconnect(i, backendIndex); err != nil {
			if oe, ok := err.(*OpError); ok {
				if smallest == KindNone || oe.Kind < smallest {
					smallest = oe.Kind
				}
			}
			continue
		}
		anySuccess = true
	}

	if !anySuccess {
		if smallest == KindNone {
			smallest = KindConnect
		}
		return opErr(smallest, -1, fmt.Errorf("all %d replicas failed to connect", c.r))
	}
	return nil
}

// Reinit closes every replica's socket and per-connection state, then calls
// Init again. Concurrent Reinit calls collapse: a caller arriving while one
// is already running just waits for it to finish rather than starting a
// second teardown.
func (c *Client) Reinit() error {
	c.reinitMu.Lock()
	if c.reinitInProcess {
		done := c.reinitDone
		c.reinitMu.Unlock()
		if done != nil {
			<-done
		}
		return nil
	}
	done := make(chan struct{})
	c.reinitDone = done
	c.reinitInProcess = true
	c.reinitMu.Unlock()

	defer func() {
		c.reinitMu.Lock()
		c.reinitInProcess = false
		c.reinitMu.Unlock()
		close(done)
	}()

	for _, rep := range c.replicas {
		rep.markDisconnected()
	}
	return c.Init()
}
