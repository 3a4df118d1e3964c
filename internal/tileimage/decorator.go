package tileimage

import (
	"bytes"
	"image"
	"math"

	"github.com/cciaimaging/tilepyramid/internal/cache"
	"github.com/cciaimaging/tilepyramid/internal/colormap"
	"github.com/cciaimaging/tilepyramid/internal/encode"
	"github.com/cciaimaging/tilepyramid/internal/ndarray"
)

// ComputeFromSourceFunc derives a target tile's payload from the source
// image's tile at the same (tileX, tileY) coordinate. A nil sourceTile
// (source miss) is passed through unchanged.
type ComputeFromSourceFunc func(tileX, tileY int, rect Rect, sourceTile Payload) (Payload, bool)

// newDecoratorImage builds an operator with the same layout as source
// (unless overridden) whose tiles are derived from source's tiles one at a
// time through derive.
func newDecoratorImage(source TiledImage, width, height, tileWidth, tileHeight, numTilesX, numTilesY int, mode, format, id string, c *cache.Cache, derive ComputeFromSourceFunc) TiledImage {
	if width <= 0 || height <= 0 {
		width, height = source.Size()
	}
	if tileWidth <= 0 || tileHeight <= 0 {
		tileWidth, tileHeight = source.TileSize()
	}
	if numTilesX <= 0 || numTilesY <= 0 {
		numTilesX, numTilesY = source.NumTiles()
	}
	if mode == "" {
		mode = source.Mode()
	}
	if format == "" {
		format = source.Format()
	}

	compute := func(tileX, tileY int, rect Rect) (Payload, bool) {
		sourceTile, ok := source.GetTile(tileX, tileY)
		if !ok {
			return nil, false
		}
		return derive(tileX, tileY, rect, sourceTile)
	}
	return NewOpImage(width, height, tileWidth, tileHeight, numTilesX, numTilesY, mode, format, id, c, compute)
}

// TransformOptions configures TransformImage's array-level adjustments.
type TransformOptions struct {
	// FlipY mirrors the source vertically by reversing tile row order and
	// flipping each tile's rows.
	FlipY bool
	// ForceMasked, when the source tile isn't already masked, derives a
	// mask: NoDataValue if set (equal-value masking), otherwise
	// non-finite masking for float data.
	ForceMasked  bool
	NoDataValue  *float64
}

// NewTransformImage wraps an ndarray-producing source, applying a
// vertical flip and/or no-data masking without touching pixel values.
func NewTransformImage(source TiledImage, opts TransformOptions, id string, c *cache.Cache) TiledImage {
	tw, th := source.TileSize()
	nx, ny := source.NumTiles()

	derive := func(tileX, tileY int, rect Rect, sourceTile Payload) (Payload, bool) {
		arr, ok := sourceTile.(*ndarray.Array)
		if !ok {
			return sourceTile, true
		}
		if opts.ForceMasked && arr.Mask == nil {
			if opts.NoDataValue != nil {
				arr.MaskEqual(*opts.NoDataValue)
			} else {
				arr.MaskNonFinite()
			}
		}
		if opts.FlipY {
			arr = flipArrayY(arr)
		}
		return arr, true
	}

	if opts.FlipY {
		// Flipping rows also means the source row read for output row
		// tileY is (numTilesY - 1 - tileY), matching the original's
		// rectangle correction before delegating to the source.
		compute := func(tileX, tileY int, rect Rect) (Payload, bool) {
			srcTileY := ny - 1 - tileY
			sourceTile, ok := source.GetTile(tileX, srcTileY)
			if !ok {
				return nil, false
			}
			flipped := Rect{X: rect.X, Y: srcTileY * th, W: rect.W, H: rect.H}
			return derive(tileX, tileY, flipped, sourceTile)
		}
		w, h := source.Size()
		return NewOpImage(w, h, tw, th, nx, ny, source.Mode(), source.Format(), id, c, compute)
	}

	return newDecoratorImage(source, 0, 0, tw, th, nx, ny, "", "", id, c, derive)
}

func flipArrayY(a *ndarray.Array) *ndarray.Array {
	out := ndarray.NewArray(a.Width, a.Height)
	for y := 0; y < a.Height; y++ {
		srcY := a.Height - 1 - y
		for x := 0; x < a.Width; x++ {
			v, ok := a.At(x, srcY)
			if !ok {
				out.SetMasked(x, y)
				continue
			}
			out.Set(x, y, v)
		}
	}
	return out
}

// ColorMapOptions configures ColorMappedImage.
type ColorMapOptions struct {
	ValueMin, ValueMax float64
	ColormapName       string
	NoDataValue        *float64
	// Encode, when true and Format is non-empty, returns encoded bytes
	// instead of an *image.RGBA.
	Encode bool
	Format string
	// Elevation, when true, bypasses the named colormap entirely and
	// renders each cell through encode.ElevationToTerrarium instead —
	// the raw-value rendering path for elevation/height-field sources,
	// as opposed to the perceptual ValueMin/ValueMax/ColormapName path.
	Elevation bool
}

// NewColorMappedImage wraps an ndarray-producing source, rendering each
// tile through a clip -> normalize -> colormap -> optional-encode
// pipeline. Masked cells render at the colormap's "bad" color with alpha 0.
func NewColorMappedImage(source TiledImage, opts ColorMapOptions, id string, c *cache.Cache) (TiledImage, error) {
	name := opts.ColormapName
	if name == "" {
		name = "jet"
	}
	cm, ok := colormap.Lookup(name)
	if !ok {
		cm, _ = colormap.Lookup(colormap.DefaultName)
	}

	derive := func(tileX, tileY int, rect Rect, sourceTile Payload) (Payload, bool) {
		arr, ok := sourceTile.(*ndarray.Array)
		if !ok {
			return sourceTile, true
		}
		if opts.NoDataValue != nil && arr.Mask == nil {
			arr.MaskEqual(*opts.NoDataValue)
		}

		img := image.NewRGBA(image.Rect(0, 0, arr.Width, arr.Height))
		span := opts.ValueMax - opts.ValueMin
		if span == 0 {
			span = 1
		}
		for y := 0; y < arr.Height; y++ {
			for x := 0; x < arr.Width; x++ {
				v, valid := arr.At(x, y)
				if !valid {
					v = math.NaN()
				}
				if opts.Elevation {
					img.SetRGBA(x, y, encode.ElevationToTerrarium(v))
					continue
				}
				if math.IsNaN(v) || math.IsInf(v, 0) {
					img.Set(x, y, cm.Bad())
					continue
				}
				if v < opts.ValueMin {
					v = opts.ValueMin
				}
				if v > opts.ValueMax {
					v = opts.ValueMax
				}
				t := (v - opts.ValueMin) / span
				img.Set(x, y, cm.At(t))
			}
		}

		if opts.Encode && opts.Format != "" {
			enc, err := encode.NewEncoder(opts.Format, 0)
			if err != nil {
				return nil, false
			}
			var buf bytes.Buffer
			data, err := enc.Encode(img)
			if err != nil {
				return nil, false
			}
			buf.Write(data)
			return buf.Bytes(), true
		}
		return img, true
	}

	format := opts.Format
	if format == "" && opts.Elevation {
		format = "terrarium"
	}
	mode := "RGBA"
	return newDecoratorImage(source, 0, 0, 0, 0, 0, 0, mode, format, id, c, derive), nil
}
