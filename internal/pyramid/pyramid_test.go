package pyramid

import (
	"testing"

	"github.com/cciaimaging/tilepyramid/internal/ndarray"
	"github.com/cciaimaging/tilepyramid/internal/tileimage"
)

func TestComputeTileSizeNaturalHalving(t *testing.T) {
	// 2048 halves to 256 within [180, 512] after 3 halvings.
	ts, err := ComputeTileSize(2048, 0, 0, 0, 0, 0, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ts < 180 || ts > 512 {
		t.Fatalf("expected tile size within default bounds, got %d", ts)
	}
}

func TestComputeTileSizeCandidateScanRespectsIntDiv(t *testing.T) {
	// 1530 halves once to 765, which is odd and above 512, so the natural
	// halving is rejected and the candidate scan decides.
	ts, err := ComputeTileSize(1530, 180, 512, 2, 0, 0, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if 1530%ts != 0 {
		t.Fatalf("expected intDiv candidate to evenly divide total size, got tile size %d for total 1530", ts)
	}
}

func TestComputeLayoutRealisticSize(t *testing.T) {
	nx, ny, tw, th, levels, err := ComputeLayout(4096, 2048, 0, 0, 0, 0, 0, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tw <= 0 || th <= 0 {
		t.Fatalf("expected positive tile size, got %dx%d", tw, th)
	}
	if levels <= 0 {
		t.Fatalf("expected at least one level, got %d", levels)
	}
	topWidth := nx * tw
	topHeight := ny * th
	for i := 1; i < levels; i++ {
		topWidth *= 2
		topHeight *= 2
	}
	if topWidth < 4096 || topHeight < 2048 {
		t.Fatalf("expected top level grid to cover the source image, got %dx%d for a 4096x2048 source", topWidth, topHeight)
	}
}

func TestComputeLayoutRejectsNonPositiveSize(t *testing.T) {
	if _, _, _, _, _, err := ComputeLayout(0, 100, 0, 0, 0, 0, 0, true); err == nil {
		t.Fatalf("expected an error for a zero max size")
	}
}

func pixelLeaf(w, h, tw, th, nx, ny int) tileimage.TiledImage {
	return tileimage.NewOpImage(w, h, tw, th, nx, ny, "RGBA", "", "top", nil, func(tileX, tileY int, rect tileimage.Rect) (tileimage.Payload, bool) {
		return rect, true
	})
}

func TestBuildFromImageDescendsFromSourceLevel(t *testing.T) {
	source := pixelLeaf(8, 8, 4, 4, 2, 2)
	var built []int
	factory := func(src, higher tileimage.TiledImage, zIndex, numLevels int) tileimage.TiledImage {
		built = append(built, zIndex)
		hw, hh := higher.Size()
		return tileimage.NewOpImage(hw/2, hh/2, 4, 4, 1, 1, "RGBA", "", "", nil, func(tileX, tileY int, rect tileimage.Rect) (tileimage.Payload, bool) {
			return rect, true
		})
	}

	p, err := BuildFromImage(source, factory, 1, 1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.NumLevels() != 2 {
		t.Fatalf("expected 2 levels, got %d", p.NumLevels())
	}
	if p.LevelImage(1) != source {
		t.Fatalf("expected the highest level to be the source image unchanged")
	}
	if len(built) != 1 || built[0] != 0 {
		t.Fatalf("expected factory called once for level 0, got %v", built)
	}
}

func TestBuildFromImageDisposeWithoutCacheDoesNotPanic(t *testing.T) {
	source := pixelLeaf(8, 8, 4, 4, 2, 2)
	factory := func(src, higher tileimage.TiledImage, zIndex, numLevels int) tileimage.TiledImage {
		hw, hh := higher.Size()
		return tileimage.NewOpImage(hw/2, hh/2, 4, 4, 1, 1, "RGBA", "", "", nil, func(tileX, tileY int, rect tileimage.Rect) (tileimage.Payload, bool) {
			return rect, true
		})
	}
	p, err := BuildFromImage(source, factory, 1, 1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Dispose must not panic even though these levels share no cache
	// (nil cache), mirroring a no-op Dispose when caching is disabled.
	p.Dispose()
}

func TestBuildFromArraySizesLevelsByZoomFactor(t *testing.T) {
	array := ndarray.NewArray(16, 16)
	var sizes [][2]int
	buildLevel := func(zIndex, numLevels int) tileimage.TiledImage {
		img := tileimage.NewFastArrayDownsamplingImage(array, 4, 4, zIndex, numLevels, "", nil)
		w, h := img.Size()
		sizes = append(sizes, [2]int{w, h})
		return img
	}

	p, err := BuildFromArray(16, 16, 4, 4, 1, 1, 3, buildLevel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.NumLevels() != 3 {
		t.Fatalf("expected 3 levels, got %d", p.NumLevels())
	}
	// Level 2 (highest detail) should be native resolution; level 0 the
	// coarsest.
	topW, topH := p.LevelImage(2).Size()
	if topW != 16 || topH != 16 {
		t.Fatalf("expected top level native resolution 16x16, got %dx%d", topW, topH)
	}
	bottomW, bottomH := p.LevelImage(0).Size()
	if bottomW >= topW || bottomH >= topH {
		t.Fatalf("expected level 0 to be coarser than the top level, got %dx%d vs %dx%d", bottomW, bottomH, topW, topH)
	}
}

func TestPyramidApplyPreservesLayout(t *testing.T) {
	source := pixelLeaf(8, 8, 4, 4, 2, 2)
	factory := func(src, higher tileimage.TiledImage, zIndex, numLevels int) tileimage.TiledImage {
		hw, hh := higher.Size()
		return tileimage.NewOpImage(hw/2, hh/2, 4, 4, 1, 1, "RGBA", "", "", nil, func(tileX, tileY int, rect tileimage.Rect) (tileimage.Payload, bool) {
			return rect, true
		})
	}
	p, err := BuildFromImage(source, factory, 1, 1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mapped := p.Apply(func(img tileimage.TiledImage) tileimage.TiledImage { return img })
	nx, ny := mapped.NumLevelZeroTiles()
	onx, ony := p.NumLevelZeroTiles()
	if nx != onx || ny != ony {
		t.Fatalf("expected Apply to preserve level-zero tile grid, got %dx%d vs %dx%d", nx, ny, onx, ony)
	}
	if mapped.NumLevels() != p.NumLevels() {
		t.Fatalf("expected Apply to preserve level count")
	}
}
