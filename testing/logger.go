package testing

import (
	"fmt"
	"strings"
	"testing"

	"github.com/arloliu/segsieve/types"
)

// NewTestLogger returns a types.Logger that writes through tb.Logf, so log
// lines show up next to the test that produced them.
//
// Fatal fails the test instead of exiting the process.
func NewTestLogger(tb testing.TB) types.Logger {
	return &testLogger{tb: tb}
}

type testLogger struct {
	tb testing.TB
}

var _ types.Logger = (*testLogger)(nil)

func (l *testLogger) Debug(msg string, keysAndValues ...any) {
	l.tb.Logf("DEBUG: %s%s", msg, formatKeyValues(keysAndValues))
}

func (l *testLogger) Info(msg string, keysAndValues ...any) {
	l.tb.Logf("INFO: %s%s", msg, formatKeyValues(keysAndValues))
}

func (l *testLogger) Warn(msg string, keysAndValues ...any) {
	l.tb.Logf("WARN: %s%s", msg, formatKeyValues(keysAndValues))
}

func (l *testLogger) Error(msg string, keysAndValues ...any) {
	l.tb.Logf("ERROR: %s%s", msg, formatKeyValues(keysAndValues))
}

func (l *testLogger) Fatal(msg string, keysAndValues ...any) {
	l.tb.Fatalf("FATAL: %s%s", msg, formatKeyValues(keysAndValues))
}

// formatKeyValues renders pairs as " k=v k=v"; a dangling key gets <missing>.
func formatKeyValues(keysAndValues []any) string {
	var sb strings.Builder
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			fmt.Fprintf(&sb, " %v=%v", keysAndValues[i], keysAndValues[i+1])
		} else {
			fmt.Fprintf(&sb, " %v=<missing>", keysAndValues[i])
		}
	}

	return sb.String()
}
