package client

// joinBarrier is the single synchronization point every public operation
// passes through before dispatching new work (SPEC_FULL.md §5). It first
// waits out any in-progress Reinit, then joins every replica's outstanding
// worker. Because it is the *only* place that waits on a worker handle, it
// is also the only place a stale handle can be observed — eliminating the
// duplicated join loops the source repeats at the top of every op.
func (c *Client) joinBarrier() {
	c.reinitMu.Lock()
	done := c.reinitDone
	inProcess := c.reinitInProcess
	c.reinitMu.Unlock()
	if inProcess && done != nil {
		<-done
	}

	for _, rep := range c.replicas {
		if handle, ok := rep.joinable(); ok {
			<-handle
		}
	}
}
