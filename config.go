package segsieve

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Limits of the right bound accepted by Run.
const (
	MinLimit uint32 = 2
	MaxLimit uint32 = 1_000_000_000
)

// TransportConfig configures the NATS JetStream transport used when workers
// run in separate processes. It is ignored by in-process groups.
type TransportConfig struct {
	// SubjectPrefix roots every merge subject: <prefix>.<runID>.<from>.<to>.
	SubjectPrefix string `yaml:"subjectPrefix"`

	// StreamName is the JetStream stream capturing <prefix>.>.
	StreamName string `yaml:"streamName"`

	// RunID separates runs sharing one stream. All workers of a group must
	// agree on it.
	RunID string `yaml:"runId"`

	// Storage is "memory" (default) or "file".
	Storage string `yaml:"storage"`

	// FetchWait bounds a single fetch; receives keep polling until the
	// context ends.
	FetchWait time.Duration `yaml:"fetchWait"`

	// OperationTimeout bounds each publish and stream operation.
	OperationTimeout time.Duration `yaml:"operationTimeout"`

	// MaxRetries bounds stream creation and publish retries.
	MaxRetries int `yaml:"maxRetries"`

	// MaxAge expires merge messages that were never purged.
	MaxAge time.Duration `yaml:"maxAge"`
}

// Config is the configuration for a Sieve.
//
// All duration fields accept standard Go duration strings like "500ms", "1h".
type Config struct {
	// WindowFactor multiplies the cache size in bytes to get the marking
	// window size in candidates. Valid range: 1-16. Default: 4.
	//
	// One candidate takes one bit, so the default window occupies half of
	// the cache it was sized from.
	WindowFactor int `yaml:"windowFactor"`

	// MaxWindowBytes caps the marking window bitmap. A larger window is
	// rejected with ErrResourceExhausted before allocation.
	MaxWindowBytes uint64 `yaml:"maxWindowBytes"`

	// MaxPrimeListBytes caps the reserved prime list. A larger estimate is
	// rejected with ErrResourceExhausted before allocation.
	MaxPrimeListBytes uint64 `yaml:"maxPrimeListBytes"`

	// TransferDivisor sizes merge blocks: cacheBytes / (TransferDivisor * 4)
	// elements per block. Default: 1.2.
	TransferDivisor float64 `yaml:"transferDivisor"`

	// CollectorRank is the rank that merges all partial results. Default: 0.
	CollectorRank int `yaml:"collectorRank"`

	// CacheLevel selects the cache that sizes the window (1-3). Default: 1.
	CacheLevel int `yaml:"cacheLevel"`

	// InstructionCache selects the level 1 instruction cache instead of the
	// data cache. Ignored above level 1.
	InstructionCache bool `yaml:"instructionCache"`

	// Transport configures the NATS JetStream transport.
	Transport TransportConfig `yaml:"transport"`
}

// DefaultConfig returns a Config with sensible defaults.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		WindowFactor:      4,
		MaxWindowBytes:    64 << 20,
		MaxPrimeListBytes: 1 << 30,
		TransferDivisor:   1.2,
		CollectorRank:     0,
		CacheLevel:        1,
		Transport: TransportConfig{
			SubjectPrefix:    "segsieve",
			StreamName:       "SEGSIEVE",
			Storage:          "memory",
			FetchWait:        time.Second,
			OperationTimeout: 10 * time.Second,
			MaxRetries:       3,
			MaxAge:           time.Hour,
		},
	}
}

// SetDefaults fills in missing configuration values with production defaults.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.WindowFactor == 0 {
		cfg.WindowFactor = defaults.WindowFactor
	}
	if cfg.MaxWindowBytes == 0 {
		cfg.MaxWindowBytes = defaults.MaxWindowBytes
	}
	if cfg.MaxPrimeListBytes == 0 {
		cfg.MaxPrimeListBytes = defaults.MaxPrimeListBytes
	}
	if cfg.TransferDivisor == 0 {
		cfg.TransferDivisor = defaults.TransferDivisor
	}
	if cfg.CacheLevel == 0 {
		cfg.CacheLevel = defaults.CacheLevel
	}
	// CollectorRank 0 is a valid choice, so no default is applied.

	if cfg.Transport.SubjectPrefix == "" {
		cfg.Transport.SubjectPrefix = defaults.Transport.SubjectPrefix
	}
	if cfg.Transport.StreamName == "" {
		cfg.Transport.StreamName = defaults.Transport.StreamName
	}
	if cfg.Transport.Storage == "" {
		cfg.Transport.Storage = defaults.Transport.Storage
	}
	if cfg.Transport.FetchWait == 0 {
		cfg.Transport.FetchWait = defaults.Transport.FetchWait
	}
	if cfg.Transport.OperationTimeout == 0 {
		cfg.Transport.OperationTimeout = defaults.Transport.OperationTimeout
	}
	if cfg.Transport.MaxRetries == 0 {
		cfg.Transport.MaxRetries = defaults.Transport.MaxRetries
	}
	if cfg.Transport.MaxAge == 0 {
		cfg.Transport.MaxAge = defaults.Transport.MaxAge
	}
}

// Validate checks configuration constraints.
//
// Hard Validation Rules:
//   - 1 <= WindowFactor <= 16
//   - MaxWindowBytes > 0 and MaxPrimeListBytes > 0
//   - TransferDivisor > 0
//   - CollectorRank >= 0 (checked against the group size by New)
//   - 1 <= CacheLevel <= 3
//   - Transport.Storage is "memory" or "file"
//
// Returns:
//   - error: ErrInvalidConfig wrapped with details, nil if valid
func (cfg *Config) Validate() error {
	if cfg.WindowFactor < 1 || cfg.WindowFactor > 16 {
		return fmt.Errorf("%w: WindowFactor must be in [1, 16], got %d", ErrInvalidConfig, cfg.WindowFactor)
	}
	if cfg.MaxWindowBytes == 0 {
		return fmt.Errorf("%w: MaxWindowBytes must be > 0", ErrInvalidConfig)
	}
	if cfg.MaxPrimeListBytes == 0 {
		return fmt.Errorf("%w: MaxPrimeListBytes must be > 0", ErrInvalidConfig)
	}
	if cfg.TransferDivisor <= 0 {
		return fmt.Errorf("%w: TransferDivisor must be > 0, got %v", ErrInvalidConfig, cfg.TransferDivisor)
	}
	if cfg.CollectorRank < 0 {
		return fmt.Errorf("%w: CollectorRank must be >= 0, got %d", ErrInvalidConfig, cfg.CollectorRank)
	}
	if cfg.CacheLevel < 1 || cfg.CacheLevel > 3 {
		return fmt.Errorf("%w: CacheLevel must be in [1, 3], got %d: %w",
			ErrInvalidConfig, cfg.CacheLevel, ErrInvalidCacheLevel)
	}
	switch cfg.Transport.Storage {
	case "", "memory", "file":
	default:
		return fmt.Errorf("%w: Transport.Storage must be memory or file, got %q", ErrInvalidConfig, cfg.Transport.Storage)
	}

	return nil
}

// ValidateWithWarnings logs warnings for legal but unusual values.
//
// This is called after Validate() in New() to provide operator guidance.
//
// Parameters:
//   - logger: Logger instance for warning output
func (cfg *Config) ValidateWithWarnings(logger Logger) {
	if cfg.WindowFactor > 8 {
		logger.Warn(
			"WindowFactor makes the window larger than the cache it was sized from",
			"windowFactor", cfg.WindowFactor,
			"recommended", 4,
		)
	}

	if cfg.TransferDivisor < 1 {
		logger.Warn(
			"TransferDivisor below 1 makes merge blocks larger than the cache",
			"transferDivisor", cfg.TransferDivisor,
			"recommended", 1.2,
		)
	}

	if cfg.InstructionCache && cfg.CacheLevel != 1 {
		logger.Warn(
			"InstructionCache is ignored above cache level 1",
			"cacheLevel", cfg.CacheLevel,
		)
	}
}

// TestConfig returns a configuration for fast tests.
//
// Timeouts are short so a broken transport fails a test quickly instead of
// hanging it. Use DefaultConfig() for production runs.
//
// Example:
//
//	cfg := segsieve.TestConfig()
//	res, err := segsieve.RunLocal(ctx, &cfg, source.NewStaticBytes(64), 3, 1000)
func TestConfig() Config {
	cfg := DefaultConfig()

	cfg.Transport.FetchWait = 100 * time.Millisecond
	cfg.Transport.OperationTimeout = 2 * time.Second
	cfg.Transport.MaxAge = time.Minute

	return cfg
}

// LoadConfig reads a YAML configuration file, applies defaults and validates it.
//
// Parameters:
//   - path: Path of the YAML file
//
// Returns:
//   - *Config: Loaded configuration
//   - error: Read, parse or validation failure
//
// Example:
//
//	cfg, err := segsieve.LoadConfig("segsieve.yaml")
//	if err != nil { /* handle */ }
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	return ParseConfig(data)
}

// ParseConfig decodes YAML configuration, applies defaults and validates it.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	SetDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
