// Package source provides built-in cache budget sources.
//
// Cache sources describe the CPU cache level whose capacity sizes the
// marking window. The package includes:
//
//   - CPUID: the running processor's cache hierarchy via CPUID
//   - Static: a fixed budget
//
// Custom sources can be implemented by satisfying the types.CacheSource interface.
package source
