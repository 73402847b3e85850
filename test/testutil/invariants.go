package testutil

import (
	"testing"

	"github.com/arloliu/segsieve"
)

// PrimeCounts holds pi(n) for bounds used across tests.
var PrimeCounts = map[uint32]int{
	10:          4,
	100:         25,
	1_000:       168,
	10_000:      1_229,
	100_000:     9_592,
	1_000_000:   78_498,
	10_000_000:  664_579,
	100_000_000: 5_761_455,
}

// AssertPrimeList verifies that primes is strictly increasing, starts with
// 2 and ends at or below limit.
func AssertPrimeList(t *testing.T, primes []uint32, limit uint32) {
	t.Helper()

	if len(primes) == 0 {
		t.Fatal("prime list is empty")
	}
	if primes[0] != 2 {
		t.Fatalf("prime list starts with %d, want 2", primes[0])
	}
	for i := 1; i < len(primes); i++ {
		if primes[i] <= primes[i-1] {
			t.Fatalf("prime list not strictly increasing at %d: %d after %d", i, primes[i], primes[i-1])
		}
	}
	if last := primes[len(primes)-1]; last > limit {
		t.Fatalf("largest prime %d exceeds limit %d", last, limit)
	}
}

// AssertPartitionsCover verifies that the per-rank partitions are adjacent
// in rank order and together cover [prefixEnd, limit+1) exactly once.
func AssertPartitionsCover(t *testing.T, results []*segsieve.Result) {
	t.Helper()

	if len(results) == 0 {
		t.Fatal("no results")
	}

	first := results[0]
	next := first.PrefixEnd
	for rank, res := range results {
		if res.Group.Rank != rank {
			t.Fatalf("result %d belongs to rank %d", rank, res.Group.Rank)
		}
		if res.PrefixEnd != first.PrefixEnd {
			t.Fatalf("rank %d prefix ends at %d, rank 0 at %d", rank, res.PrefixEnd, first.PrefixEnd)
		}
		if res.Partition.Lo != next {
			t.Fatalf("rank %d starts at %d, want %d", rank, res.Partition.Lo, next)
		}
		if res.Partition.Hi < res.Partition.Lo {
			t.Fatalf("rank %d has inverted partition %s", rank, res.Partition)
		}
		next = res.Partition.Hi
	}

	if want := uint64(first.Limit) + 1; uint64(next) != want {
		t.Fatalf("partitions end at %d, want %d", next, want)
	}
}
