package cache

import (
	"github.com/cciaimaging/tilepyramid/internal/ndarray"
	"github.com/cciaimaging/tilepyramid/internal/raster"
)

// ByteSizingStore stores values unchanged, like MemoryStore, but reports
// size in bytes rather than 1 per value, so a byte-budgeted -capacity bounds
// actual pixel memory instead of item count.
type ByteSizingStore struct{}

func (ByteSizingStore) StoreValue(_ string, value any) (any, int64, error) {
	return value, byteSize(value), nil
}

func (ByteSizingStore) RestoreValue(_ string, stored any) (any, error) { return stored, nil }

func (ByteSizingStore) DiscardValue(_ string, _ any) {}

// byteSize estimates a payload's resident size: nbytes for ndarray payloads,
// mode-derived bytes-per-pixel (RGBA = 4, gray = 1) for pixel buffers, raw
// length for already-encoded byte slices, and 1 as a best-effort fallback
// for anything else.
func byteSize(value any) int64 {
	switch v := value.(type) {
	case *ndarray.Array:
		return v.NBytes()
	case *raster.Buffer:
		return v.NBytes()
	case []byte:
		return int64(len(v))
	default:
		return 1
	}
}
