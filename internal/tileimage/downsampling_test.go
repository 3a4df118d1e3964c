package tileimage

import (
	"image/color"
	"testing"

	"github.com/cciaimaging/tilepyramid/internal/ndarray"
	"github.com/cciaimaging/tilepyramid/internal/raster"
)

func solidPixelLeaf(w, h, tw, th, nx, ny int, c color.RGBA) TiledImage {
	return NewOpImage(w, h, tw, th, nx, ny, "RGBA", "", "leaf", nil, func(tileX, tileY int, rect Rect) (Payload, bool) {
		return raster.NewUniformRGBA(c, rect.W, rect.H), true
	})
}

func TestPixelDownsamplingImageHalvesGeometry(t *testing.T) {
	source := solidPixelLeaf(8, 8, 2, 2, 4, 4, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	down := NewPixelDownsamplingImage(source, raster.ResamplingBilinear, "down", nil)
	w, h := down.Size()
	if w != 4 || h != 4 {
		t.Fatalf("expected halved size 4x4, got %dx%d", w, h)
	}
	nx, ny := down.NumTiles()
	if nx != 2 || ny != 2 {
		t.Fatalf("expected halved tile counts 2x2, got %dx%d", nx, ny)
	}
}

func TestPixelDownsamplingImageCollapsesUniformChildren(t *testing.T) {
	c := color.RGBA{R: 5, G: 5, B: 5, A: 255}
	source := solidPixelLeaf(4, 4, 2, 2, 2, 2, c)
	down := NewPixelDownsamplingImage(source, raster.ResamplingBilinear, "down", nil)
	tile, ok := down.GetTile(0, 0)
	if !ok {
		t.Fatalf("expected tile present")
	}
	buf := tile.(*raster.Buffer)
	if !buf.IsUniform() {
		t.Fatalf("expected uniform children to collapse to a uniform result")
	}
	if buf.UniformColor() != c {
		t.Fatalf("expected collapsed color %v, got %v", c, buf.UniformColor())
	}
}

func TestPixelDownsamplingImagePropagatesMissingChild(t *testing.T) {
	calls := 0
	source := NewOpImage(4, 4, 2, 2, 2, 2, "RGBA", "", "leaf", nil, func(tileX, tileY int, rect Rect) (Payload, bool) {
		calls++
		if tileX == 1 && tileY == 1 {
			return nil, false
		}
		return raster.NewUniformRGBA(color.RGBA{R: 1, G: 1, B: 1, A: 255}, rect.W, rect.H), true
	})
	down := NewPixelDownsamplingImage(source, raster.ResamplingBilinear, "down", nil)
	_, ok := down.GetTile(0, 0)
	if !ok {
		t.Fatalf("expected a result as long as one of the four children is present")
	}
}

func arrayLeafSource(w, h, tw, th, nx, ny int, fill func(tileX, tileY int, a *ndarray.Array)) TiledImage {
	return NewOpImage(w, h, tw, th, nx, ny, "F64", "", "leaf", nil, func(tileX, tileY int, rect Rect) (Payload, bool) {
		a := ndarray.NewArray(rect.W, rect.H)
		fill(tileX, tileY, a)
		return a, true
	})
}

func TestArrayDownsamplingImageAveragesQuadrants(t *testing.T) {
	source := arrayLeafSource(4, 4, 2, 2, 2, 2, func(tileX, tileY int, a *ndarray.Array) {
		for y := 0; y < a.Height; y++ {
			for x := 0; x < a.Width; x++ {
				a.Set(x, y, float64(tileY*2+tileX+1))
			}
		}
	})
	down := NewArrayDownsamplingImage(source, ndarray.AggregateMean, "down", nil)
	w, h := down.Size()
	if w != 2 || h != 2 {
		t.Fatalf("expected halved array size 2x2, got %dx%d", w, h)
	}
	tile, ok := down.GetTile(0, 0)
	if !ok {
		t.Fatalf("expected tile present")
	}
	arr := tile.(*ndarray.Array)
	if arr.Width != 2 || arr.Height != 2 {
		t.Fatalf("expected one output tile sized 2x2, got %dx%d", arr.Width, arr.Height)
	}
	// each source tile averages to its fill value, pasted into its quadrant
	for i, want := range []float64{1, 2, 3, 4} {
		if v, ok := arr.At(i%2, i/2); !ok || v != want {
			t.Fatalf("expected quadrant %d to average to %v, got %v, %v", i, want, v, ok)
		}
	}
}

func TestFastArrayDownsamplingImageReadsStridedSamples(t *testing.T) {
	array := ndarray.NewArray(8, 8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			array.Set(x, y, float64(y*8+x))
		}
	}
	// numLevels=3, levels 0..2: level 2 is native resolution (zoom=1) and
	// level 0 is the coarsest (zoom=4, stride 4 over the 8x8 array).
	numLevels := 3
	leaf := NewFastArrayDownsamplingImage(array, 4, 4, numLevels-1, numLevels, "leveln", nil)
	w, h := leaf.Size()
	if w != 8 || h != 8 {
		t.Fatalf("expected native resolution 8x8 at the top level, got %dx%d", w, h)
	}
	tile, ok := leaf.GetTile(0, 0)
	if !ok {
		t.Fatalf("expected tile present")
	}
	arr := tile.(*ndarray.Array)
	v, ok := arr.At(0, 0)
	if !ok || v != 0 {
		t.Fatalf("expected native (0,0) sample 0, got %v, %v", v, ok)
	}

	coarse := NewFastArrayDownsamplingImage(array, 4, 4, 0, numLevels, "level0", nil)
	cw, ch := coarse.Size()
	if cw != 2 || ch != 2 {
		t.Fatalf("expected level 0 at zoom 4 to be 2x2, got %dx%d", cw, ch)
	}
	ctile, ok := coarse.GetTile(0, 0)
	if !ok {
		t.Fatalf("expected coarse tile present")
	}
	// coarse (1,1) reads source (4,4) = 4*8+4
	if v, ok := ctile.(*ndarray.Array).At(1, 1); !ok || v != 36 {
		t.Fatalf("expected strided sample 36 at coarse (1,1), got %v, %v", v, ok)
	}
}
