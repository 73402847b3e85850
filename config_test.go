package segsieve

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.Equal(t, 4, cfg.WindowFactor)
	require.Equal(t, uint64(64<<20), cfg.MaxWindowBytes)
	require.Equal(t, uint64(1<<30), cfg.MaxPrimeListBytes)
	require.Equal(t, 1.2, cfg.TransferDivisor)
	require.Equal(t, 0, cfg.CollectorRank)
	require.Equal(t, 1, cfg.CacheLevel)
	require.False(t, cfg.InstructionCache)
	require.Equal(t, "segsieve", cfg.Transport.SubjectPrefix)
	require.Equal(t, "SEGSIEVE", cfg.Transport.StreamName)
	require.Equal(t, "memory", cfg.Transport.Storage)
	require.Equal(t, time.Second, cfg.Transport.FetchWait)
	require.Equal(t, 10*time.Second, cfg.Transport.OperationTimeout)
	require.Equal(t, 3, cfg.Transport.MaxRetries)
	require.Equal(t, time.Hour, cfg.Transport.MaxAge)
	require.NoError(t, cfg.Validate())
}

func TestSetDefaults(t *testing.T) {
	t.Run("applies defaults to empty config", func(t *testing.T) {
		cfg := Config{}
		SetDefaults(&cfg)

		require.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("preserves custom values", func(t *testing.T) {
		cfg := Config{
			WindowFactor:      2,
			MaxWindowBytes:    1 << 20,
			MaxPrimeListBytes: 1 << 24,
			TransferDivisor:   2.5,
			CollectorRank:     3,
			CacheLevel:        2,
			Transport: TransportConfig{
				SubjectPrefix:    "primes",
				StreamName:       "PRIMES",
				RunID:            "run-1",
				Storage:          "file",
				FetchWait:        250 * time.Millisecond,
				OperationTimeout: 5 * time.Second,
				MaxRetries:       7,
				MaxAge:           10 * time.Minute,
			},
		}
		want := cfg
		SetDefaults(&cfg)

		require.Equal(t, want, cfg)
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		cause  error
	}{
		{"window factor below range", func(c *Config) { c.WindowFactor = 0 }, ErrInvalidConfig},
		{"window factor above range", func(c *Config) { c.WindowFactor = 17 }, ErrInvalidConfig},
		{"zero window byte cap", func(c *Config) { c.MaxWindowBytes = 0 }, ErrInvalidConfig},
		{"zero prime list byte cap", func(c *Config) { c.MaxPrimeListBytes = 0 }, ErrInvalidConfig},
		{"non-positive transfer divisor", func(c *Config) { c.TransferDivisor = -1 }, ErrInvalidConfig},
		{"negative collector rank", func(c *Config) { c.CollectorRank = -1 }, ErrInvalidConfig},
		{"cache level four", func(c *Config) { c.CacheLevel = 4 }, ErrInvalidCacheLevel},
		{"unknown storage", func(c *Config) { c.Transport.Storage = "disk" }, ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.ErrorIs(t, err, tt.cause)
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	t.Run("accepts the widest legal window factor", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.WindowFactor = 16
		require.NoError(t, cfg.Validate())
	})
}

type warnRecorder struct {
	mu    sync.Mutex
	warns []string
}

func (w *warnRecorder) Debug(string, ...any) {}
func (w *warnRecorder) Info(string, ...any)  {}
func (w *warnRecorder) Error(string, ...any) {}
func (w *warnRecorder) Fatal(string, ...any) {}

func (w *warnRecorder) Warn(msg string, _ ...any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.warns = append(w.warns, msg)
}

func TestConfig_ValidateWithWarnings(t *testing.T) {
	t.Run("defaults are quiet", func(t *testing.T) {
		rec := &warnRecorder{}
		cfg := DefaultConfig()
		cfg.ValidateWithWarnings(rec)
		require.Empty(t, rec.warns)
	})

	t.Run("flags each unusual value", func(t *testing.T) {
		rec := &warnRecorder{}
		cfg := DefaultConfig()
		cfg.WindowFactor = 12
		cfg.TransferDivisor = 0.5
		cfg.CacheLevel = 2
		cfg.InstructionCache = true
		cfg.ValidateWithWarnings(rec)
		require.Len(t, rec.warns, 3)
	})
}

func TestTestConfig(t *testing.T) {
	cfg := TestConfig()

	require.NoError(t, cfg.Validate())
	require.Less(t, cfg.Transport.FetchWait, DefaultConfig().Transport.FetchWait)
	require.Less(t, cfg.Transport.OperationTimeout, DefaultConfig().Transport.OperationTimeout)
}

// TestConfig_YAML demonstrates that time.Duration works directly with YAML unmarshaling
func TestConfig_YAML(t *testing.T) {
	yamlConfig := `
windowFactor: 8
maxWindowBytes: 1048576
transferDivisor: 1.5
collectorRank: 1
cacheLevel: 2
transport:
  subjectPrefix: primes
  runId: nightly
  storage: file
  fetchWait: 250ms
  maxAge: 30m
`

	var cfg Config
	err := yaml.Unmarshal([]byte(yamlConfig), &cfg)
	require.NoError(t, err)

	require.Equal(t, 8, cfg.WindowFactor)
	require.Equal(t, uint64(1<<20), cfg.MaxWindowBytes)
	require.Equal(t, 1.5, cfg.TransferDivisor)
	require.Equal(t, 1, cfg.CollectorRank)
	require.Equal(t, 2, cfg.CacheLevel)
	require.Equal(t, "primes", cfg.Transport.SubjectPrefix)
	require.Equal(t, "nightly", cfg.Transport.RunID)
	require.Equal(t, "file", cfg.Transport.Storage)
	require.Equal(t, 250*time.Millisecond, cfg.Transport.FetchWait)
	require.Equal(t, 30*time.Minute, cfg.Transport.MaxAge)
}

func TestParseConfig(t *testing.T) {
	t.Run("fills defaults for a partial document", func(t *testing.T) {
		cfg, err := ParseConfig([]byte("windowFactor: 2\ntransport:\n  fetchWait: 5s\n"))
		require.NoError(t, err)

		require.Equal(t, 2, cfg.WindowFactor)
		require.Equal(t, 5*time.Second, cfg.Transport.FetchWait)
		require.Equal(t, 1.2, cfg.TransferDivisor)
		require.Equal(t, "SEGSIEVE", cfg.Transport.StreamName)
	})

	t.Run("rejects malformed yaml", func(t *testing.T) {
		_, err := ParseConfig([]byte("windowFactor: [1, 2"))
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		_, err := ParseConfig([]byte("cacheLevel: 4\n"))
		require.ErrorIs(t, err, ErrInvalidCacheLevel)
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("reads a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "segsieve.yaml")
		require.NoError(t, os.WriteFile(path, []byte("collectorRank: 2\ntransport:\n  runId: abc\n"), 0o600))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		require.Equal(t, 2, cfg.CollectorRank)
		require.Equal(t, "abc", cfg.Transport.RunID)
	})

	t.Run("reports a missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}
