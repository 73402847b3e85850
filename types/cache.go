package types

import "fmt"

// CacheKind selects between instruction and data caches at level 1.
type CacheKind int

const (
	// DataCache selects the data cache (the only kind meaningful above level 1).
	DataCache CacheKind = iota

	// InstructionCache selects the level 1 instruction cache.
	InstructionCache
)

// CacheBudget describes one level of the CPU cache hierarchy.
//
// Only SizeBytes is consumed by window sizing; the other fields are carried
// for reporting.
type CacheBudget struct {
	// SizeBytes is the cache capacity in bytes.
	SizeBytes int `json:"sizeBytes" yaml:"sizeBytes"`

	// WaysOfAssociativity is the set associativity (0 when unknown).
	WaysOfAssociativity int `json:"waysOfAssociativity" yaml:"waysOfAssociativity"`

	// LineSizeBytes is the coherence line size in bytes (0 when unknown).
	LineSizeBytes int `json:"lineSizeBytes" yaml:"lineSizeBytes"`

	// Level is the cache level (1-3).
	Level int `json:"level" yaml:"level"`
}

// String returns a compact human-readable description.
func (c CacheBudget) String() string {
	return fmt.Sprintf("L%d %dB (ways=%d line=%dB)", c.Level, c.SizeBytes, c.WaysOfAssociativity, c.LineSizeBytes)
}
