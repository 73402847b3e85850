package sink

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/arloliu/segsieve"
)

// ErrInvalidMode is returned by ParseMode for an unknown output mode.
var ErrInvalidMode = errors.New("invalid output mode")

// Mode selects what Text prints.
type Mode byte

// Output modes accepted on the command line.
const (
	ModeList Mode = 'l'
	ModeTime Mode = 't'
	ModeAll  Mode = 'a'
)

// ParseMode parses "l", "t" or "a". Only the first character counts, so
// "list", "time" and "all" are accepted as well.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidMode)
	}

	switch m := Mode(s[0]); m {
	case ModeList, ModeTime, ModeAll:
		return m, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// String returns the mode letter.
func (m Mode) String() string {
	return string(rune(m))
}

// Lists reports whether the mode prints the prime list.
func (m Mode) Lists() bool {
	return m == ModeList || m == ModeAll
}

// Times reports whether the mode prints the elapsed time.
func (m Mode) Times() bool {
	return m == ModeTime || m == ModeAll
}

// Text prints results to a writer.
//
// The list is printed on one line, each prime followed by a space. The
// time is printed in seconds with six decimals on its own line.
type Text struct {
	w    io.Writer
	mode Mode
}

var _ Sink = (*Text)(nil)

// NewText creates a text sink.
//
// Parameters:
//   - w: Destination, typically os.Stdout
//   - mode: What to print
//
// Returns:
//   - *Text: Initialized sink
//
// Example:
//
//	out := sink.NewText(os.Stdout, sink.ModeAll)
//	if err := out.Write(ctx, res); err != nil { /* handle */ }
func NewText(w io.Writer, mode Mode) *Text {
	return &Text{w: w, mode: mode}
}

// Write implements Sink.
func (t *Text) Write(ctx context.Context, res *segsieve.Result) error {
	if res == nil {
		return ErrNoPrimes
	}

	bw := bufio.NewWriterSize(t.w, 64*1024)

	if t.mode.Lists() {
		if !res.Collector {
			return ErrNoPrimes
		}

		var num []byte
		for i, p := range res.Primes {
			// The list can be tens of millions long.
			if i%(1<<16) == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			num = strconv.AppendUint(num[:0], uint64(p), 10)
			num = append(num, ' ')
			if _, err := bw.Write(num); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}

	if t.mode.Times() {
		if _, err := fmt.Fprintf(bw, "%.6f\n", res.Elapsed.Seconds()); err != nil {
			return err
		}
	}

	return bw.Flush()
}
