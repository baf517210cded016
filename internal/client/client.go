// Package client implements the redundant multi-server memcached binary
// protocol client described in SPEC_FULL.md: GET/SET/REPLACE/DELETE/QUIT
// fanned out (writes) or tried one replica at a time until one succeeds
// (reads) across R replicas drawn from a ring
// of configured backends.
package client

import (
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/nbclient/memcring/internal/sockopt"
	"github.com/nbclient/memcring/internal/valuecodec"
)

// requestOpaque is the opaque value stamped on every outgoing request, so
// that this client can do what the source's comment says it never does:
// check the echoed opaque and surface a mismatch (see Open Questions in
// SPEC_FULL.md §9).
const requestOpaque uint32 = 0x02

// Options configures a new Client.
type Options struct {
	// Backends is the ring of configured servers, in order. len(Backends)
	// must be at least 1 and at most NBMax.
	Backends []Backend

	// Replicas is the requested replication factor R; it is normalized down
	// to len(Backends) if it exceeds it, and up to 1 if given as 0.
	Replicas int

	// Codec applies optional client-local value compression (SPEC_FULL.md §4.J).
	// The zero value disables compression.
	Codec valuecodec.Codec

	// ReconnectRatePerSecond bounds the rate of connect() attempts across all
	// replicas of the client (one shared limiter); 0 disables throttling.
	ReconnectRatePerSecond float64
	ReconnectBurst         int

	// Logger receives structured diagnostics; a discard logger is used if nil.
	Logger *slog.Logger
}

// Client is a redundant multi-server memcached binary protocol client. Its
// zero value is not usable; construct one with New.
type Client struct {
	backends []Backend
	n        int
	r        int

	replicas []*ConnRecord

	startingIndexMu sync.Mutex
	startingIndex   int

	// Shared mutexes (SPEC_FULL.md §5). setMtx/deleteMtx/quitMtx/initMtx
	// serialize same-class workers; sendMtx/recvMtx serialize the outbound
	// and inbound phases of any single request independently of each other.
	setMtx    sync.Mutex
	deleteMtx sync.Mutex
	quitMtx   sync.Mutex
	initMtx   sync.Mutex
	sendMtx   sync.Mutex
	recvMtx   sync.Mutex

	reinitMu        sync.Mutex
	reinitInProcess bool
	reinitDone      chan struct{}

	dialer        *net.Dialer
	reconnLimiter *reconnectLimiter
	codec         valuecodec.Codec
	logger        *slog.Logger
}

// New allocates a Client and eagerly creates and connects all R replicas.
// This corresponds to the source's memc_allocate followed by memc_init: both
// steps are folded into one call because Go has no analogue to "return a
// handle now, finish setting it up in a detached forked child."
func New(opts Options) (*Client, error) {
	if len(opts.Backends) == 0 {
		return nil, opErr(KindAllocation, -1, fmt.Errorf("at least one backend is required"))
	}
	if len(opts.Backends) > NBMax {
		return nil, opErr(KindAllocation, -1, fmt.Errorf("too many backends: %d > %d", len(opts.Backends), NBMax))
	}

	r := opts.Replicas
	if r <= 0 {
		r = 1
	}
	if r > RMax {
		r = RMax
	}
	if r > len(opts.Backends) {
		r = len(opts.Backends) // R <= N invariant, SPEC_FULL.md §3
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(discardWriter{}, nil))
	}

	c := &Client{
		backends:      append([]Backend(nil), opts.Backends...),
		n:             len(opts.Backends),
		r:             r,
		replicas:      make([]*ConnRecord, r),
		dialer:        sockopt.NewDialer(),
		reconnLimiter: newReconnectLimiter(opts.ReconnectRatePerSecond, opts.ReconnectBurst),
		codec:         opts.Codec,
		logger:        logger,
	}
	for i := range c.replicas {
		c.replicas[i] = newConnRecord()
	}

	if err := c.Init(); err != nil {
		return nil, err
	}
	return c, nil
}

// Close tears down every replica connection and releases the client. It is
// the Go analogue of memc_free: there are no mutexes or worker handles to
// explicitly destroy, since sync.Mutex and goroutines need no teardown call,
// but outstanding workers are still joined first so Close never races a
// write that is still in flight.
func (c *Client) Close() error {
	c.joinBarrier()
	for _, rep := range c.replicas {
		rep.markDisconnected()
	}
	return nil
}

// Replicas returns the normalized replication factor R.
func (c *Client) Replicas() int { return c.r }

// Backends returns the configured backend count N.
func (c *Client) Backends() int { return c.n }

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
