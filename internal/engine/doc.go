// Package engine implements the segmented sieve of Eratosthenes.
//
// The engine walks a numeric range window by window. Each window is marked
// with the primes already in the list; candidates that are provably prime
// are promoted lazily, exactly once, at the moment every smaller marking
// prime has been applied to them. Promoted primes are appended to the same
// list that drives marking, so a prime found in window k marks window k+1.
//
// The list is traversed by index, never by iterator, so appends during a
// window never invalidate the walk.
package engine
