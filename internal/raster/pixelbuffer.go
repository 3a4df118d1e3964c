// Package raster implements the pixel-buffer primitives used by tile
// operators: a compact representation for tile-sized image data that
// detects and collapses uniform (single-color) regions, and the resampling
// routines used to derive one tile's pixels from its four higher-resolution
// children.
package raster

import (
	"image"
	"image/color"
)

// Mode distinguishes the channel layout a Buffer holds.
type Mode int

const (
	// ModeRGBA is four 8-bit channels per pixel.
	ModeRGBA Mode = iota
	// ModeGray is a single 8-bit channel per pixel.
	ModeGray
)

// Buffer is a tile-sized block of pixels. When every pixel shares the same
// value, the buffer stores only that value instead of a full plane —
// saving the allocation entirely for the large uniform regions (ocean,
// transparent padding, unclassified land cover) that dominate many
// pyramids.
//
// Buffer implements image.Image so it can be handed directly to an encoder
// without ever being expanded, if the encoder only needs to read pixels.
type Buffer struct {
	mode Mode
	w, h int

	rgba *image.RGBA // non-nil for resident, non-uniform RGBA buffers
	gray *image.Gray // non-nil for resident, non-uniform gray buffers

	uniform  bool
	uniformC color.RGBA // meaningful when uniform && mode == ModeRGBA
	uniformG uint8      // meaningful when uniform && mode == ModeGray
}

var _ image.Image = (*Buffer)(nil)

// NewRGBA wraps img as a Buffer, collapsing it to a uniform representation
// if every pixel shares the same color.
func NewRGBA(img *image.RGBA) *Buffer {
	if c, ok := detectUniformRGBA(img); ok {
		b := img.Bounds()
		return &Buffer{mode: ModeRGBA, w: b.Dx(), h: b.Dy(), uniform: true, uniformC: c}
	}
	b := img.Bounds()
	return &Buffer{mode: ModeRGBA, w: b.Dx(), h: b.Dy(), rgba: img}
}

// NewGray wraps img as a Buffer, collapsing it to a uniform representation
// if every pixel shares the same value.
func NewGray(img *image.Gray) *Buffer {
	if v, ok := detectUniformGray(img); ok {
		b := img.Bounds()
		return &Buffer{mode: ModeGray, w: b.Dx(), h: b.Dy(), uniform: true, uniformG: v}
	}
	b := img.Bounds()
	return &Buffer{mode: ModeGray, w: b.Dx(), h: b.Dy(), gray: img}
}

// NewUniformRGBA builds a uniform RGBA buffer of the given size without
// allocating a pixel plane.
func NewUniformRGBA(c color.RGBA, w, h int) *Buffer {
	return &Buffer{mode: ModeRGBA, w: w, h: h, uniform: true, uniformC: c}
}

// NewUniformGray builds a uniform gray buffer of the given size without
// allocating a pixel plane.
func NewUniformGray(v uint8, w, h int) *Buffer {
	return &Buffer{mode: ModeGray, w: w, h: h, uniform: true, uniformG: v}
}

// Mode reports the buffer's channel layout.
func (b *Buffer) Mode() Mode { return b.mode }

// IsUniform reports whether every pixel shares the same value.
func (b *Buffer) IsUniform() bool { return b.uniform }

// UniformColor returns the uniform RGBA color. Meaningful only when
// IsUniform and Mode == ModeRGBA.
func (b *Buffer) UniformColor() color.RGBA { return b.uniformC }

// UniformGray returns the uniform gray value. Meaningful only when
// IsUniform and Mode == ModeGray.
func (b *Buffer) UniformGray() uint8 { return b.uniformG }

// NBytes estimates the memory cost of the buffer's resident representation:
// 0 once collapsed to uniform, channel count * w * h otherwise. Used by
// byte-budgeted caches to size their Store entries.
func (b *Buffer) NBytes() int64 {
	if b.uniform {
		return 0
	}
	channels := int64(4)
	if b.mode == ModeGray {
		channels = 1
	}
	return channels * int64(b.w) * int64(b.h)
}

// RGBAAt returns the pixel at (x, y) as RGBA regardless of the buffer's
// native mode.
func (b *Buffer) RGBAAt(x, y int) color.RGBA {
	switch {
	case b.uniform && b.mode == ModeRGBA:
		return b.uniformC
	case b.uniform && b.mode == ModeGray:
		v := b.uniformG
		return color.RGBA{R: v, G: v, B: v, A: 255}
	case b.rgba != nil:
		return b.rgba.RGBAAt(x, y)
	case b.gray != nil:
		v := b.gray.GrayAt(x, y).Y
		return color.RGBA{R: v, G: v, B: v, A: 255}
	}
	return color.RGBA{}
}

// GrayAt returns the pixel at (x, y) as a single luminance channel,
// meaningful only when Mode == ModeGray.
func (b *Buffer) GrayAt(x, y int) uint8 {
	if b.uniform {
		return b.uniformG
	}
	if b.gray != nil {
		return b.gray.GrayAt(x, y).Y
	}
	return 0
}

// ToRGBA returns a full *image.RGBA, allocating and filling one if the
// buffer is currently uniform or gray-native.
func (b *Buffer) ToRGBA() *image.RGBA {
	if b.rgba != nil {
		return b.rgba
	}
	img := image.NewRGBA(image.Rect(0, 0, b.w, b.h))
	if b.mode == ModeGray && b.gray != nil {
		for y := 0; y < b.h; y++ {
			for x := 0; x < b.w; x++ {
				v := b.gray.GrayAt(x, y).Y
				img.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
			}
		}
		return img
	}
	c := b.RGBAAt(0, 0)
	pix := img.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

// ToGray returns a full *image.Gray, allocating and filling one if the
// buffer is currently uniform or RGBA-native.
func (b *Buffer) ToGray() *image.Gray {
	if b.gray != nil {
		return b.gray
	}
	img := image.NewGray(image.Rect(0, 0, b.w, b.h))
	if b.uniform {
		v := b.uniformG
		if b.mode == ModeRGBA {
			v = b.uniformC.R
		}
		pix := img.Pix
		for i := range pix {
			pix[i] = v
		}
		return img
	}
	for y := 0; y < b.h; y++ {
		for x := 0; x < b.w; x++ {
			img.SetGray(x, y, color.Gray{Y: b.RGBAAt(x, y).R})
		}
	}
	return img
}

// AsImage returns an image.Image cheaply: the underlying resident plane
// when present, or the Buffer itself (which implements image.Image via At)
// for uniform buffers.
func (b *Buffer) AsImage() image.Image {
	if b.rgba != nil {
		return b.rgba
	}
	if b.gray != nil {
		return b.gray
	}
	return b
}

// --- image.Image ---

func (b *Buffer) ColorModel() color.Model {
	if b.mode == ModeGray {
		return color.GrayModel
	}
	return color.RGBAModel
}

func (b *Buffer) Bounds() image.Rectangle { return image.Rect(0, 0, b.w, b.h) }

func (b *Buffer) At(x, y int) color.Color {
	if b.mode == ModeGray {
		return color.Gray{Y: b.GrayAt(x, y)}
	}
	return b.RGBAAt(x, y)
}

// --- uniform detection ---

// detectUniformRGBA scans img's pixels sequentially, short-circuiting on
// the first mismatch, and reports whether every pixel shares one color.
func detectUniformRGBA(img *image.RGBA) (color.RGBA, bool) {
	pix := img.Pix
	if len(pix) < 4 {
		return color.RGBA{}, false
	}
	r, g, bl, a := pix[0], pix[1], pix[2], pix[3]
	for i := 4; i < len(pix); i += 4 {
		if pix[i] != r || pix[i+1] != g || pix[i+2] != bl || pix[i+3] != a {
			return color.RGBA{}, false
		}
	}
	return color.RGBA{R: r, G: g, B: bl, A: a}, true
}

// detectUniformGray scans img's pixels sequentially and reports whether
// every pixel shares one value.
func detectUniformGray(img *image.Gray) (uint8, bool) {
	pix := img.Pix
	if len(pix) == 0 {
		return 0, false
	}
	v := pix[0]
	for i := 1; i < len(pix); i++ {
		if pix[i] != v {
			return 0, false
		}
	}
	return v, true
}

// ToRGBAImage converts a Buffer to *image.RGBA, returning nil for nil input.
func ToRGBAImage(b *Buffer) *image.RGBA {
	if b == nil {
		return nil
	}
	return b.ToRGBA()
}

// FromImage wraps a decoded image.Image as a Buffer, preserving a native
// *image.Gray as ModeGray and converting everything else (NRGBA, YCbCr,
// the *image.RGBA fast path included) to ModeRGBA.
func FromImage(img image.Image) *Buffer {
	if rgba, ok := img.(*image.RGBA); ok {
		return NewRGBA(rgba)
	}
	if gray, ok := img.(*image.Gray); ok {
		return NewGray(gray)
	}
	bounds := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			out.Set(x-bounds.Min.X, y-bounds.Min.Y, img.At(x, y))
		}
	}
	return NewRGBA(out)
}
