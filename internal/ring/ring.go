// Package ring implements the deterministic key-to-replica mapping: the last
// byte of a key selects a starting offset on the ring of configured backends.
package ring

// StartingIndex maps the last byte of key onto [0, n). It returns 0 if key is
// empty or n <= 0, matching the source's behavior of falling back to the
// first backend rather than dividing by zero.
func StartingIndex(key []byte, n int) int {
	if n <= 0 || len(key) == 0 {
		return 0
	}
	last := key[len(key)-1]
	return int(last) % n
}
