// Package tilesource decodes on-disk images into leaf TiledImages, the
// file-backed entry point a pyramid is built from. It plays the role the
// teacher's cog.Reader plays for GeoTIFF: open once, serve tiles by
// coordinate, close when done — but for plain PNG/JPEG files via the
// standard image package rather than a COG/GeoTIFF byte layout.
package tilesource

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/cciaimaging/tilepyramid/internal/cache"
	"github.com/cciaimaging/tilepyramid/internal/encode"
	"github.com/cciaimaging/tilepyramid/internal/ndarray"
	"github.com/cciaimaging/tilepyramid/internal/raster"
	"github.com/cciaimaging/tilepyramid/internal/tileimage"
)

// ImageSource holds a fully-decoded source image in memory, available for
// slicing into tiles on demand. It owns no file handle past Load — the
// decoded pixels are the only resident state, mirroring the teacher's
// memory-mapped-then-closed Reader lifecycle without the mmap.
type ImageSource struct {
	path   string
	img    image.Image
	bounds image.Rectangle
}

// Load opens path, decodes it with the standard library's registered image
// formats (png, jpeg; additional formats register themselves via blank
// import in the caller), and returns the decoded source.
func Load(path string) (*ImageSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tilesource: opening %s: %w", path, err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("tilesource: decoding %s: %w", path, err)
	}
	_ = format

	return &ImageSource{path: path, img: img, bounds: img.Bounds()}, nil
}

// Path returns the source file path.
func (s *ImageSource) Path() string { return s.path }

// Size returns the decoded image's pixel dimensions.
func (s *ImageSource) Size() (w, h int) { return s.bounds.Dx(), s.bounds.Dy() }

// Buffer returns the whole decoded source as a single raster.Buffer, for
// callers that want a full-resolution or resized preview rather than a
// pyramid's individually-cached tiles.
func (s *ImageSource) Buffer() *raster.Buffer {
	return raster.FromImage(s.img)
}

// LoadImage builds a leaf TiledImage whose tiles are raster.Buffer crops of
// the decoded source, one pixel plane copy per tile on first access,
// memoized through c like any other OpImage. tileWidth/tileHeight <= 0
// request the default tile-size computation (spec §4.7's ComputeTileSize).
func (s *ImageSource) LoadImage(tileWidth, tileHeight int, id string, c *cache.Cache) tileimage.TiledImage {
	w, h := s.Size()
	compute := func(tileX, tileY int, rect tileimage.Rect) (tileimage.Payload, bool) {
		clip := rect.X + rect.W
		if clip > w {
			clip = w
		}
		clipH := rect.Y + rect.H
		if clipH > h {
			clipH = h
		}
		if rect.X >= w || rect.Y >= h {
			return nil, false
		}
		out := image.NewRGBA(image.Rect(0, 0, rect.W, rect.H))
		for y := rect.Y; y < clipH; y++ {
			for x := rect.X; x < clip; x++ {
				out.Set(x-rect.X, y-rect.Y, s.img.At(s.bounds.Min.X+x, s.bounds.Min.Y+y))
			}
		}
		return raster.NewRGBA(out), true
	}
	return tileimage.NewOpImage(w, h, tileWidth, tileHeight, 0, 0, "RGBA", "", id, c, compute)
}

// LoadArrayImage builds a leaf TiledImage whose tiles are ndarray.Array
// crops of the decoded source, converting each sample through toValue (for
// example, luminance or a single raw channel). Intended to feed
// tileimage.NewTransformImage / NewColorMappedImage, which operate on
// ndarray payloads rather than pixel buffers.
func (s *ImageSource) LoadArrayImage(tileWidth, tileHeight int, toValue func(c color.Color) float64, id string, c *cache.Cache) tileimage.TiledImage {
	w, h := s.Size()
	compute := func(tileX, tileY int, rect tileimage.Rect) (tileimage.Payload, bool) {
		if rect.X >= w || rect.Y >= h {
			return nil, false
		}
		arr := ndarray.NewArray(rect.W, rect.H)
		clip := rect.X + rect.W
		if clip > w {
			clip = w
		}
		clipH := rect.Y + rect.H
		if clipH > h {
			clipH = h
		}
		for y := rect.Y; y < clipH; y++ {
			for x := rect.X; x < clip; x++ {
				v := toValue(s.img.At(s.bounds.Min.X+x, s.bounds.Min.Y+y))
				arr.Set(x-rect.X, y-rect.Y, v)
			}
		}
		return arr, true
	}
	return tileimage.NewOpImage(w, h, tileWidth, tileHeight, 0, 0, "F64", "", id, c, compute)
}

// Luminance converts a color.Color to a single float64 channel using the
// standard Rec. 601 luma weights, a convenient default for toValue.
func Luminance(c color.Color) float64 {
	r, g, b, _ := c.RGBA()
	return 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
}

// TerrariumElevation decodes a Terrarium-encoded color back to its source
// elevation in meters, a toValue for re-loading a previously rendered
// Terrarium PNG as an array source.
func TerrariumElevation(c color.Color) float64 {
	r, g, b, a := c.RGBA()
	rgba := color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
	return encode.TerrariumToElevation(rgba)
}
