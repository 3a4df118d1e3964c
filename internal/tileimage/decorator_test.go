package tileimage

import (
	"image"
	"testing"

	"github.com/cciaimaging/tilepyramid/internal/ndarray"
)

func TestTransformImageFlipYReversesTileRows(t *testing.T) {
	source := NewOpImage(4, 4, 2, 2, 2, 2, "F64", "", "leaf", nil, func(tileX, tileY int, rect Rect) (Payload, bool) {
		a := ndarray.NewArray(2, 2)
		a.Set(0, 0, float64(tileY*10+tileX))
		return a, true
	})

	flipped := NewTransformImage(source, TransformOptions{FlipY: true}, "flipped", nil)
	w, h := flipped.Size()
	if w != 4 || h != 4 {
		t.Fatalf("expected same size as source, got %dx%d", w, h)
	}

	tile, ok := flipped.GetTile(0, 0)
	if !ok {
		t.Fatalf("expected tile present")
	}
	arr := tile.(*ndarray.Array)
	v, _ := arr.At(0, 1)
	if v != 10 {
		t.Fatalf("expected flipped row 0 to read source row 1 (value 10), got %v", v)
	}
}

func TestTransformImageForceMaskedAppliesNoDataValue(t *testing.T) {
	source := NewOpImage(2, 2, 2, 2, 1, 1, "F64", "", "leaf", nil, func(tileX, tileY int, rect Rect) (Payload, bool) {
		a := ndarray.NewArray(2, 2)
		a.Set(0, 0, -9999)
		a.Set(1, 0, 5)
		return a, true
	})
	noData := -9999.0
	out := NewTransformImage(source, TransformOptions{ForceMasked: true, NoDataValue: &noData}, "masked", nil)
	tile, _ := out.GetTile(0, 0)
	arr := tile.(*ndarray.Array)
	if _, ok := arr.At(0, 0); ok {
		t.Fatalf("expected no-data cell masked")
	}
	if v, ok := arr.At(1, 0); !ok || v != 5 {
		t.Fatalf("expected valid cell untouched, got %v, %v", v, ok)
	}
}

func TestColorMappedImageRendersBadColorForMaskedCell(t *testing.T) {
	source := NewOpImage(2, 2, 2, 2, 1, 1, "F64", "", "leaf", nil, func(tileX, tileY int, rect Rect) (Payload, bool) {
		a := ndarray.NewArray(2, 2)
		a.Set(0, 0, 1)
		a.SetMasked(1, 0)
		a.Set(0, 1, 5)
		a.Set(1, 1, 10)
		return a, true
	})

	out, err := NewColorMappedImage(source, ColorMapOptions{ValueMin: 0, ValueMax: 10, ColormapName: "jet"}, "cmap", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tile, ok := out.GetTile(0, 0)
	if !ok {
		t.Fatalf("expected tile present")
	}
	img := tile.(*image.RGBA)
	_, _, _, a := img.At(1, 0).RGBA()
	if a != 0 {
		t.Fatalf("expected masked cell rendered at alpha 0, got alpha %d", a)
	}
	_, _, _, a2 := img.At(0, 0).RGBA()
	if a2 == 0 {
		t.Fatalf("expected valid cell rendered opaque")
	}
}

func TestColorMappedImageEncodesWhenRequested(t *testing.T) {
	source := NewOpImage(2, 2, 2, 2, 1, 1, "F64", "", "leaf", nil, func(tileX, tileY int, rect Rect) (Payload, bool) {
		a := ndarray.NewArray(2, 2)
		a.Set(0, 0, 1)
		a.Set(1, 0, 2)
		a.Set(0, 1, 3)
		a.Set(1, 1, 4)
		return a, true
	})
	out, err := NewColorMappedImage(source, ColorMapOptions{
		ValueMin: 0, ValueMax: 4, ColormapName: "jet", Encode: true, Format: "png",
	}, "cmap-png", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tile, ok := out.GetTile(0, 0)
	if !ok {
		t.Fatalf("expected tile present")
	}
	data, ok := tile.([]byte)
	if !ok {
		t.Fatalf("expected encoded []byte payload, got %T", tile)
	}
	if len(data) == 0 {
		t.Fatalf("expected non-empty encoded bytes")
	}
}

func TestColorMappedImageElevationRendersTerrariumRGB(t *testing.T) {
	source := NewOpImage(2, 2, 2, 2, 1, 1, "F64", "", "leaf", nil, func(tileX, tileY int, rect Rect) (Payload, bool) {
		a := ndarray.NewArray(2, 2)
		a.Set(0, 0, 0)
		a.SetMasked(1, 0)
		return a, true
	})

	out, err := NewColorMappedImage(source, ColorMapOptions{Elevation: true}, "terrarium", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tile, ok := out.GetTile(0, 0)
	if !ok {
		t.Fatalf("expected tile present")
	}
	img := tile.(*image.RGBA)

	// elevation 0 encodes to terrarium RGB (128, 0, 0) with value+32768 = 32768 -> R=128.
	c := img.RGBAAt(0, 0)
	if c.R != 128 || c.A != 255 {
		t.Fatalf("expected elevation 0 to encode as R=128 opaque, got %+v", c)
	}

	// a masked cell renders as transparent nodata, matching ElevationToTerrarium(NaN).
	masked := img.RGBAAt(1, 0)
	if masked.A != 0 {
		t.Fatalf("expected masked cell transparent, got %+v", masked)
	}
}

func TestColorMappedImageUnknownNameFallsBackToDefault(t *testing.T) {
	source := NewOpImage(2, 2, 2, 2, 1, 1, "F64", "", "leaf", nil, func(tileX, tileY int, rect Rect) (Payload, bool) {
		return ndarray.NewArray(2, 2), true
	})
	_, err := NewColorMappedImage(source, ColorMapOptions{ValueMin: 0, ValueMax: 1, ColormapName: "not-a-real-colormap"}, "cmap-fallback", nil)
	if err != nil {
		t.Fatalf("expected fallback to default colormap, not an error: %v", err)
	}
}
