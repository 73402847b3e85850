package engine

import (
	"github.com/arloliu/segsieve/internal/logging"
	"github.com/arloliu/segsieve/internal/window"
	"github.com/arloliu/segsieve/types"
)

// Pass labels used in logs and metrics.
const (
	PassBootstrap = "bootstrap"
	PassLocal     = "local"
)

// Engine sieves ranges with one marking window and one growing prime list.
//
// Engine is not safe for concurrent use; each worker owns its own.
type Engine struct {
	win     *window.Window
	primes  []uint32
	windows int
	logger  types.Logger
}

// New creates an engine whose windows hold windowSize candidates.
//
// Parameters:
//   - windowSize: Candidates per marking window (>= 1)
//   - capacityHint: Expected final prime count, used to reserve the list
//   - logger: Logger for debug output (nil for none)
//
// Returns:
//   - *Engine: Engine with an empty prime list
func New(windowSize uint32, capacityHint int, logger types.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	if capacityHint < 1 {
		capacityHint = 1
	}

	return &Engine{
		win:    window.New(max(windowSize, 1)),
		primes: make([]uint32, 0, capacityHint),
		logger: logger,
	}
}

// WindowSize returns the window capacity in candidates.
func (e *Engine) WindowSize() uint32 {
	return e.win.Cap()
}

// Primes returns the prime list. The slice is owned by the engine.
func (e *Engine) Primes() []uint32 {
	return e.primes
}

// Len returns the number of known primes.
func (e *Engine) Len() int {
	return len(e.primes)
}

// MaxPrime returns the largest known prime, or 0 if none is known.
func (e *Engine) MaxPrime() uint32 {
	if len(e.primes) == 0 {
		return 0
	}

	return e.primes[len(e.primes)-1]
}

// WindowsSieved returns how many windows the engine has resolved.
func (e *Engine) WindowsSieved() int {
	return e.windows
}

// Bootstrap seeds the list with 2 and sieves [3, W), then keeps extending
// the prefix one window at a time while the largest known prime p still has
// p*p <= limit.
//
// Every worker runs Bootstrap independently with the same inputs and gets
// the same prefix, so no coordination is needed.
//
// Parameters:
//   - limit: Inclusive upper bound of the whole run
//
// Returns:
//   - uint32: Exclusive end of the prefix; every prime below it is in the list
func (e *Engine) Bootstrap(limit uint32) uint32 {
	if len(e.primes) == 0 {
		e.primes = append(e.primes, 2)
	}

	end := SatAdd(limit, 1)
	w := e.win.Cap()

	left := min(w, end)
	e.FindPrimesBetween(3, left)

	for SatSquare(e.MaxPrime()) <= limit && left < end {
		next := min(SatAdd(left, w), end)
		e.logger.Debug("extending bootstrap prefix", "from", left, "to", next, "maxPrime", e.MaxPrime())
		e.FindPrimesBetween(left, next)
		left = next
	}

	return max(left, 3)
}

// FindPrimesBetween resolves every integer in [left, right) and appends the
// primes found, in ascending order.
//
// The caller must already know every prime up to sqrt(right), or they must
// lie inside the range itself and be reachable in order (the bootstrap case).
// left is raised past the largest known prime so the list stays strictly
// increasing. An empty range does nothing.
//
// Returns:
//   - int: Number of primes appended
func (e *Engine) FindPrimesBetween(left, right uint32) int {
	if len(e.primes) > 0 && left <= e.MaxPrime() {
		left = e.MaxPrime() + 1
	}
	if left < 2 {
		left = 2
	}
	if right <= left {
		return 0
	}

	before := len(e.primes)
	w := e.win.Cap()
	for origin := left; origin < right; {
		length := min(w, right-origin)
		e.sieveWindow(origin, length)
		e.windows++
		origin += length
	}

	return len(e.primes) - before
}

// sieveWindow resolves [origin, origin+length).
func (e *Engine) sieveWindow(origin, length uint32) {
	e.win.Reset(length)
	end := origin + length
	cursor := uint32(0)

	for i := 0; !e.win.Full(); {
		if i == len(e.primes) {
			// List exhausted: every smaller prime has been applied, so the
			// next unresolved candidate is prime.
			off, ok := e.win.NextUnmarked(cursor)
			if !ok {
				break
			}
			e.promote(origin, off)
			cursor = off + 1

			continue
		}

		p := e.primes[i]
		sq := SatSquare(p)
		if sq >= end {
			// No composite in the window can have a witness >= p.
			break
		}

		cursor = e.promoteBelow(origin, cursor, sq)
		e.markMultiples(origin, p, sq)
		i++
	}

	e.sweep(origin, cursor)
}

// promoteBelow moves the cursor over resolved offsets and promotes every
// unresolved candidate smaller than bound. Returns the new cursor.
func (e *Engine) promoteBelow(origin, cursor, bound uint32) uint32 {
	for {
		off, ok := e.win.NextUnmarked(cursor)
		if !ok {
			return e.win.Len()
		}
		if origin+off >= bound {
			return off
		}
		e.promote(origin, off)
		cursor = off + 1
	}
}

// markMultiples marks every multiple of p inside the window, starting at
// the first multiple that is both >= origin and >= p*p.
func (e *Engine) markMultiples(origin, p, sq uint32) {
	var first uint32
	if sq >= origin {
		first = sq - origin
	} else if r := origin % p; r != 0 {
		first = p - r
	}

	length := e.win.Len()
	for off := first; off < length; off += p {
		e.win.Mark(off)
	}
}

// sweep promotes every remaining unresolved candidate from cursor on.
func (e *Engine) sweep(origin, cursor uint32) {
	for {
		off, ok := e.win.NextUnmarked(cursor)
		if !ok {
			return
		}
		e.promote(origin, off)
		cursor = off + 1
	}
}

// promote appends origin+off to the list and marks it resolved.
func (e *Engine) promote(origin, off uint32) {
	e.primes = append(e.primes, origin+off)
	e.win.Mark(off)
}
