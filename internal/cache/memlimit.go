package cache

import (
	"log"
	"runtime"
)

// DefaultMemoryPressurePercent is the fraction of total RAM a disk-spilling
// cache should target by default: 0.90 = 90%.
const DefaultMemoryPressurePercent = 0.90

// ComputeMemoryLimit returns a suggested byte capacity for a cache backed
// by a DiskStore: fraction of total system RAM, minus the Go runtime's
// current footprint plus a fixed headroom, so the tile cache leaves room
// for the rest of the process (decoded source image, encode buffers).
//
// Returns 0 if RAM detection fails or the computed limit is unreasonably
// small, signaling the caller should fall back to a fixed default rather
// than trust this estimate.
func ComputeMemoryLimit(fraction float64, verbose bool) int64 {
	totalRAM, err := totalSystemRAM()
	if err != nil {
		if verbose {
			log.Printf("cache: cannot detect system RAM: %v; using a fixed default capacity", err)
		}
		return 0
	}

	if verbose {
		log.Printf("cache: system RAM: %.1f GB", float64(totalRAM)/(1024*1024*1024))
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	overhead := m.Sys + 2*1024*1024*1024

	limit := int64(float64(totalRAM)*fraction) - int64(overhead)
	if limit < 64*1024*1024 {
		if verbose {
			log.Printf("cache: computed memory limit too small (%.0f MB); using a fixed default capacity",
				float64(limit)/(1024*1024))
		}
		return 0
	}

	if verbose {
		log.Printf("cache: tile cache memory limit: %.1f GB (%.0f%% of RAM minus %.1f GB overhead)",
			float64(limit)/(1024*1024*1024), fraction*100, float64(overhead)/(1024*1024*1024))
	}
	return limit
}
