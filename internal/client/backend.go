package client

// Backend is one configured memcached server, identified by host and port.
// The opaque module/encoding/credential fields the source reserves for
// future use are intentionally absent here: nothing in this client reads
// them, and carrying dead fields forward would just be cargo-culting a C
// struct layout into Go.
type Backend struct {
	Host string
	Port string
}

// NBMax is the maximum number of configured backends (N_B in SPEC_FULL.md §6).
const NBMax = 100

// RMax is the maximum replication factor (R_max in SPEC_FULL.md §6).
const RMax = 10
