// Package testutil provides shared helpers for the integration and stress
// tests.
//
// Examples of utilities that belong here:
//   - Worker group setup over NATS (Cluster)
//   - Assertion helpers (prime list shape, partition coverage)
//   - Reference prime counts for well-known bounds
//
// Note: For NATS server setup, use the github.com/arloliu/segsieve/testing
// package. This package is specifically for multi-worker scenarios.
package testutil
