// Package testing provides test utilities for segsieve.
//
// It follows the convention of net/http/httptest: helpers live in a
// dedicated package so production code never links them.
//
// Key utilities:
//   - StartEmbeddedNATS: in-process NATS server with JetStream
//   - Connect: extra client connection per simulated worker
//   - CreateStream: memory-backed stream for transport tests
//   - NewTestLogger: types.Logger that writes through t.Logf
//
// Example usage:
//
//	import (
//	    "testing"
//	    sievetest "github.com/arloliu/segsieve/testing"
//	)
//
//	func TestMyComponent(t *testing.T) {
//	    _, nc := sievetest.StartEmbeddedNATS(t)
//	    // Use nc for your tests
//	}
package testing
