package segsieve

import (
	"encoding/binary"
	"time"

	"github.com/zeebo/xxh3"
)

// Result describes one completed run on one worker.
//
// Only the collector holds the merged prime list; on other ranks Primes is
// nil and the statistics describe the local work alone.
type Result struct {
	// Limit is the inclusive right bound of the run.
	Limit uint32

	// Group is the worker that produced this result.
	Group Group

	// Collector reports whether Primes holds the merged list.
	Collector bool

	// Primes is every prime <= Limit in ascending order (collector only).
	Primes []uint32

	// Cache is the budget the window was sized from.
	Cache CacheBudget

	// WindowSize is the marking window size in candidates.
	WindowSize uint32

	// PrefixEnd is the exclusive end of the bootstrap prefix.
	PrefixEnd uint32

	// BootstrapPrimes is the number of primes below PrefixEnd.
	BootstrapPrimes int

	// Partition is the sub-range this worker sieved.
	Partition Partition

	// LocalPrimes is the number of primes found in Partition.
	LocalPrimes int

	// Windows is the number of marking windows this worker resolved.
	Windows int

	// Elapsed is the wall time of the run.
	Elapsed time.Duration

	// Digest is the xxh3 hash of Primes in little-endian encoding (collector only).
	Digest uint64
}

// Count returns the number of primes in the merged list.
func (r *Result) Count() int {
	return len(r.Primes)
}

// Digest hashes primes as consecutive little-endian uint32 values.
//
// Equal lists produce equal digests on every platform, so results from
// runs with different worker counts or window sizes can be compared
// without shipping the lists.
func Digest(primes []uint32) uint64 {
	const chunk = 1024

	h := xxh3.New()
	buf := make([]byte, 0, chunk*4)
	for start := 0; start < len(primes); start += chunk {
		buf = buf[:0]
		for _, p := range primes[start:min(start+chunk, len(primes))] {
			buf = binary.LittleEndian.AppendUint32(buf, p)
		}
		_, _ = h.Write(buf)
	}

	return h.Sum64()
}
