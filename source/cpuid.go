package source

import (
	"context"
	"fmt"

	"github.com/arloliu/segsieve/internal/logging"
	"github.com/arloliu/segsieve/types"
	"github.com/klauspost/cpuid/v2"
)

// FallbackCacheBytes is the budget used when the processor does not report
// the requested cache level.
const FallbackCacheBytes = 32 * 1024

// CPUID implements a cache source backed by the processor's CPUID data.
type CPUID struct {
	level  int
	kind   types.CacheKind
	info   *cpuid.CPUInfo
	logger types.Logger
}

var _ types.CacheSource = (*CPUID)(nil)

// CPUIDOption configures a CPUID source.
type CPUIDOption func(*CPUID)

// WithCPUInfo reads cache data from info instead of the detected processor.
func WithCPUInfo(info *cpuid.CPUInfo) CPUIDOption {
	return func(c *CPUID) {
		c.info = info
	}
}

// WithLogger sets the logger used to report fallbacks.
func WithLogger(logger types.Logger) CPUIDOption {
	return func(c *CPUID) {
		c.logger = logger
	}
}

// NewCPUID creates a cache source for one cache level.
//
// Levels 1 through 3 are supported. kind only matters at level 1, where it
// selects the instruction or the data cache; higher levels are unified.
//
// Parameters:
//   - level: Cache level (1-3)
//   - kind: types.DataCache or types.InstructionCache
//   - opts: Optional configuration
//
// Returns:
//   - *CPUID: Initialized source
//   - error: types.ErrInvalidCacheLevel for any other level
//
// Example:
//
//	src, err := source.NewCPUID(1, types.DataCache)
//	if err != nil { /* handle */ }
func NewCPUID(level int, kind types.CacheKind, opts ...CPUIDOption) (*CPUID, error) {
	if level < 1 || level > 3 {
		return nil, fmt.Errorf("%w: level %d (supported: 1-3)", types.ErrInvalidCacheLevel, level)
	}
	if kind != types.DataCache && kind != types.InstructionCache {
		return nil, fmt.Errorf("%w: unknown cache kind %d", types.ErrInvalidCacheLevel, kind)
	}

	c := &CPUID{
		level:  level,
		kind:   kind,
		info:   &cpuid.CPU,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Cache returns the budget of the configured cache level.
//
// When the processor reports no size for the level, FallbackCacheBytes is
// returned and a warning is logged. WaysOfAssociativity is always zero
// because cpuid does not report associativity.
func (c *CPUID) Cache(ctx context.Context) (types.CacheBudget, error) {
	if err := ctx.Err(); err != nil {
		return types.CacheBudget{}, err
	}

	size := c.sizeBytes()
	if size <= 0 {
		c.logger.Warn("cache size not reported, using fallback",
			"level", c.level,
			"fallbackBytes", FallbackCacheBytes,
			"cpu", c.info.BrandName,
		)
		size = FallbackCacheBytes
	}

	line := c.info.CacheLine
	if line < 0 {
		line = 0
	}

	return types.CacheBudget{
		SizeBytes:     size,
		LineSizeBytes: line,
		Level:         c.level,
	}, nil
}

func (c *CPUID) sizeBytes() int {
	switch c.level {
	case 1:
		if c.kind == types.InstructionCache {
			return c.info.Cache.L1I
		}

		return c.info.Cache.L1D
	case 2:
		return c.info.Cache.L2
	default:
		return c.info.Cache.L3
	}
}
