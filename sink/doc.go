// Package sink writes completed sieve results.
//
// Text renders a result the way the command line prints it: the prime
// list, the elapsed time, or both. SQLite stores runs and their primes in
// a database file so separate runs can be compared later.
//
// Both implement Sink, and Multi fans one result out to several sinks.
package sink
