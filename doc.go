// Package segsieve computes every prime up to a bound with a cache-aware
// segmented sieve of Eratosthenes, optionally split across a group of
// workers that cooperate only by message passing.
//
// The sieve marks one fixed-size window at a time. The window size is
// derived from a CPU cache budget so the bitmap stays cache resident.
// Primes found in one window are appended to a growing list and used to
// mark the next.
//
// # Quick Start
//
// Single worker:
//
//	import (
//	    "github.com/arloliu/segsieve"
//	    "github.com/arloliu/segsieve/source"
//	)
//
//	cfg := segsieve.DefaultConfig()
//	src, _ := source.NewCPUID(1, segsieve.DataCache)
//	s, err := segsieve.New(&cfg, src, segsieve.SingleWorker())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := s.Run(ctx, 1_000_000)
//
// A worker group in one process:
//
//	res, err := segsieve.RunLocal(ctx, &cfg, src, 8, 1_000_000_000)
//
// # Architecture
//
// Every worker moves through the same phases:
//
//	Init → Bootstrap → Partitioned → Sieving → Merging → Done
//
// In Bootstrap each worker independently sieves the shared prefix until
// its primes reach the square root of the bound. The remaining range is
// split into one contiguous sub-range per rank (see package strategy).
// Each worker sieves its sub-range with the prefix primes, then reports to
// the collector rank, which appends the partial lists in rank order.
//
// # Distributed Workers
//
// Workers in separate processes exchange results over NATS JetStream:
//
//	tr, err := segsieve.NewNATSTransport(ctx, nc, group, &cfg, logger)
//	s, err := segsieve.New(&cfg, src, group, segsieve.WithTransport(tr))
//
// See cmd/segsieve for a complete command line front end.
package segsieve
