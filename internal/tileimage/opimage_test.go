package tileimage

import (
	"testing"

	"github.com/cciaimaging/tilepyramid/internal/cache"
)

func newTestCache() *cache.Cache {
	return cache.New(cache.MemoryStore{}, 64, 1.0, cache.PolicyLRU, nil)
}

func TestOpImageMemoizesTileAcrossCalls(t *testing.T) {
	c := newTestCache()
	calls := 0
	img := NewOpImage(8, 8, 4, 4, 2, 2, "RGBA", "", "leaf", c, func(tileX, tileY int, rect Rect) (Payload, bool) {
		calls++
		return rect, true
	})

	v1, ok := img.GetTile(0, 0)
	if !ok {
		t.Fatalf("expected tile present")
	}
	v2, ok := img.GetTile(0, 0)
	if !ok {
		t.Fatalf("expected tile present on second call")
	}
	if v1 != v2 {
		t.Fatalf("expected memoized payload to be equal across calls, got %v vs %v", v1, v2)
	}
	if calls != 1 {
		t.Fatalf("expected computeTile called once, got %d", calls)
	}
}

func TestOpImageDistinctTilesComputedSeparately(t *testing.T) {
	c := newTestCache()
	calls := 0
	img := NewOpImage(8, 8, 4, 4, 2, 2, "RGBA", "", "leaf", c, func(tileX, tileY int, rect Rect) (Payload, bool) {
		calls++
		return rect, true
	})

	img.GetTile(0, 0)
	img.GetTile(1, 0)
	img.GetTile(0, 1)
	if calls != 3 {
		t.Fatalf("expected 3 distinct computations, got %d", calls)
	}
}

func TestOpImageWithoutCacheRecomputesEveryCall(t *testing.T) {
	calls := 0
	img := NewOpImage(8, 8, 4, 4, 2, 2, "RGBA", "", "leaf", nil, func(tileX, tileY int, rect Rect) (Payload, bool) {
		calls++
		return rect, true
	})

	img.GetTile(0, 0)
	img.GetTile(0, 0)
	if calls != 2 {
		t.Fatalf("expected recompute on every call without a cache, got %d calls", calls)
	}
}

func TestOpImageDisposeClearsAllTiles(t *testing.T) {
	c := newTestCache()
	calls := 0
	img := NewOpImage(8, 8, 4, 4, 2, 2, "RGBA", "", "leaf", c, func(tileX, tileY int, rect Rect) (Payload, bool) {
		calls++
		return rect, true
	})

	for ty := 0; ty < 2; ty++ {
		for tx := 0; tx < 2; tx++ {
			img.GetTile(tx, ty)
		}
	}
	if calls != 4 {
		t.Fatalf("expected 4 tiles computed, got %d", calls)
	}

	img.Dispose()

	for ty := 0; ty < 2; ty++ {
		for tx := 0; tx < 2; tx++ {
			img.GetTile(tx, ty)
		}
	}
	if calls != 8 {
		t.Fatalf("expected every tile recomputed after Dispose, got %d total calls", calls)
	}
}

func TestOpImageComputeFalseIsNotCached(t *testing.T) {
	c := newTestCache()
	calls := 0
	img := NewOpImage(8, 8, 4, 4, 2, 2, "RGBA", "", "leaf", c, func(tileX, tileY int, rect Rect) (Payload, bool) {
		calls++
		return nil, false
	})

	_, ok := img.GetTile(0, 0)
	if ok {
		t.Fatalf("expected ok=false to propagate")
	}
	img.GetTile(0, 0)
	if calls != 2 {
		t.Fatalf("expected uncached miss to recompute every call, got %d", calls)
	}
}

func TestNewBaseImageDerivesMissingGeometry(t *testing.T) {
	img := NewOpImage(100, 50, 0, 0, 0, 0, "RGBA", "", "", nil, func(tileX, tileY int, rect Rect) (Payload, bool) {
		return rect, true
	})
	tw, th := img.TileSize()
	if tw <= 0 || th <= 0 {
		t.Fatalf("expected derived tile size to be positive, got %d x %d", tw, th)
	}
	nx, ny := img.NumTiles()
	if nx <= 0 || ny <= 0 {
		t.Fatalf("expected derived tile counts to be positive, got %d x %d", nx, ny)
	}
}

func TestNewBaseImageGeneratesIDWhenEmpty(t *testing.T) {
	img := NewOpImage(8, 8, 4, 4, 2, 2, "RGBA", "", "", nil, func(tileX, tileY int, rect Rect) (Payload, bool) {
		return rect, true
	})
	if img.ID() == "" {
		t.Fatalf("expected a generated image id")
	}
}
