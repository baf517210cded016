package client

import (
	"net"
	"sync"
)

// FD is a small sum type replacing the source's "-1 means closed" sentinel.
// Its zero value is Closed, so a freshly allocated ConnRecord starts closed.
type FD struct {
	conn net.Conn
}

// OpenFD wraps an established connection as an open FD.
func OpenFD(conn net.Conn) FD { return FD{conn: conn} }

// ClosedFD is the explicit "no connection" value.
var ClosedFD = FD{}

// IsOpen reports whether the FD wraps a live connection.
func (f FD) IsOpen() bool { return f.conn != nil }

// Conn returns the underlying net.Conn, or nil if closed.
func (f FD) Conn() net.Conn { return f.conn }

// connStatus is a small sum type replacing the source's reuse of a status
// integer both as "no status observed yet" and as a real wire status.
type connStatus struct {
	touched bool
	kind    ErrorKind
}

func (s connStatus) Kind() ErrorKind {
	if !s.touched {
		return KindNone
	}
	return s.kind
}

// ConnRecord is the per-replica state described in SPEC_FULL.md §3: a
// connection, which backend it is bound to, whether it is connected, how
// many workers currently hold it, and the two independent per-connection
// mutexes that guard connect/reconnect transitions versus in-flight op
// bookkeeping.
type ConnRecord struct {
	// mutexOp guards everything below it in this struct outside of the
	// connect/reconnect dance, which instead takes mutexConnect.
	mutexOp sync.Mutex

	fd                FD
	boundBackendIndex int
	connected         bool
	inFlight          int

	workerDone    chan struct{}
	workerCreated bool

	lastError  connStatus
	lastStatus connStatus

	// mutexConnect serializes connect()/reconnect() transitions on this
	// replica, independent of mutexOp so that a caller reading connected
	// state does not have to wait behind a slow DNS resolution.
	mutexConnect sync.Mutex
}

func newConnRecord() *ConnRecord {
	return &ConnRecord{
		fd:                ClosedFD,
		boundBackendIndex: -1,
	}
}

// Connected reports whether the replica currently holds a live connection.
func (r *ConnRecord) Connected() bool {
	r.mutexOp.Lock()
	defer r.mutexOp.Unlock()
	return r.connected
}

// InFlight reports the number of workers currently holding this replica.
func (r *ConnRecord) InFlight() int {
	r.mutexOp.Lock()
	defer r.mutexOp.Unlock()
	return r.inFlight
}

// needsReconnect reports whether this replica must be torn down and redialed
// to bind backendIndex: either it holds no live connection, or it is bound to
// a different backend. A replica already connected to the requested backend
// is left untouched (matches the source's memc_connect_thr, which only
// recreates the socket when connected==0 or the bound index has changed).
func (r *ConnRecord) needsReconnect(backendIndex int) bool {
	r.mutexOp.Lock()
	defer r.mutexOp.Unlock()
	return !r.connected || r.boundBackendIndex != backendIndex
}

// markConnected records a freshly established connection.
func (r *ConnRecord) markConnected(fd FD, backendIndex int) {
	r.mutexOp.Lock()
	defer r.mutexOp.Unlock()
	r.fd = fd
	r.connected = true
	r.boundBackendIndex = backendIndex
}

// markDisconnected closes the underlying connection, if any, and resets the
// connected flag. Safe to call on an already-closed record.
func (r *ConnRecord) markDisconnected() {
	r.mutexOp.Lock()
	defer r.mutexOp.Unlock()
	if r.fd.IsOpen() {
		r.fd.Conn().Close()
	}
	r.fd = ClosedFD
	r.connected = false
}

// beginWork increments the in-flight counter and installs a fresh join
// channel, returning it so the caller can close it when the worker finishes.
func (r *ConnRecord) beginWork() chan struct{} {
	r.mutexOp.Lock()
	defer r.mutexOp.Unlock()
	done := make(chan struct{})
	r.workerDone = done
	r.workerCreated = true
	r.inFlight++
	return done
}

// endWork decrements the in-flight counter and records the outcome observed
// by the worker that just finished.
func (r *ConnRecord) endWork(errKind, statusKind ErrorKind) {
	r.mutexOp.Lock()
	defer r.mutexOp.Unlock()
	if r.inFlight > 0 {
		r.inFlight--
	}
	r.lastError = connStatus{touched: true, kind: errKind}
	r.lastStatus = connStatus{touched: true, kind: statusKind}
}

// recordStatus records the outcome of a synchronous op (GET) that never went
// through beginWork/endWork, without touching the in-flight counter.
func (r *ConnRecord) recordStatus(errKind, statusKind ErrorKind) {
	r.mutexOp.Lock()
	defer r.mutexOp.Unlock()
	r.lastError = connStatus{touched: true, kind: errKind}
	r.lastStatus = connStatus{touched: true, kind: statusKind}
}

// joinable returns the worker handle to wait on, and whether one exists.
func (r *ConnRecord) joinable() (chan struct{}, bool) {
	r.mutexOp.Lock()
	defer r.mutexOp.Unlock()
	if r.inFlight == 0 || !r.workerCreated {
		return nil, false
	}
	return r.workerDone, true
}
