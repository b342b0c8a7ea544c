// Package conv provides safe integer conversion helpers for the NFA engine.
//
// State IDs are carried as uint32 for compactness; this guards the one
// narrowing conversion the engine performs (state counts/indices -> StateID)
// so an oversized pattern fails loudly instead of silently wrapping.
package conv

import "math"

// IntToUint32 safely converts an int to uint32.
// Panics if n < 0 or n > math.MaxUint32.
func IntToUint32(n int) uint32 {
	if n < 0 || uint(n) > math.MaxUint32 {
		panic("typematch: state count out of uint32 range")
	}
	return uint32(n)
}
