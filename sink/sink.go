package sink

import (
	"context"
	"errors"

	"github.com/arloliu/segsieve"
)

// ErrNoPrimes is returned when a result without a merged list reaches a
// sink that needs one. Only the collector's result carries primes.
var ErrNoPrimes = errors.New("result holds no merged prime list")

// Sink consumes a completed run.
type Sink interface {
	Write(ctx context.Context, res *segsieve.Result) error
}

// Multi writes to every sink in order and stops at the first failure.
type Multi []Sink

var _ Sink = Multi(nil)

// Write implements Sink.
func (m Multi) Write(ctx context.Context, res *segsieve.Result) error {
	for _, s := range m {
		if err := s.Write(ctx, res); err != nil {
			return err
		}
	}

	return nil
}
