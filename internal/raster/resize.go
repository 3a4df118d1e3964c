package raster

import (
	"image"
	"image/color"
)

// Resize scales the buffer to (w, h) using mode, generalizing the
// teacher's fixed 2x box-filter downsample to an arbitrary source/target
// ratio (the antialias path the original system uses for full-pyramid-level
// resizes rather than tile-quadrant combination).
func (b *Buffer) Resize(w, h int, mode Resampling) *Buffer {
	if w == b.w && h == b.h {
		return b
	}
	if b.IsUniform() {
		if b.mode == ModeGray {
			return NewUniformGray(b.uniformG, w, h)
		}
		return NewUniformRGBA(b.uniformC, w, h)
	}
	if mode == ResamplingNearest {
		return b.resizeNearest(w, h)
	}
	return b.resizeBilinear(w, h)
}

func (b *Buffer) resizeNearest(w, h int) *Buffer {
	if b.mode == ModeGray {
		out := image.NewGray(image.Rect(0, 0, w, h))
		for dy := 0; dy < h; dy++ {
			sy := dy * b.h / h
			for dx := 0; dx < w; dx++ {
				sx := dx * b.w / w
				out.SetGray(dx, dy, color.Gray{Y: b.GrayAt(sx, sy)})
			}
		}
		return NewGray(out)
	}
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	for dy := 0; dy < h; dy++ {
		sy := dy * b.h / h
		for dx := 0; dx < w; dx++ {
			sx := dx * b.w / w
			out.SetRGBA(dx, dy, b.RGBAAt(sx, sy))
		}
	}
	return NewRGBA(out)
}

// resizeBilinear bilinearly interpolates the buffer at each destination
// pixel centre into a w x h result, for growing and shrinking alike. For an
// exact 2x shrink this equals a 2x2 box average; larger shrinks read only
// the four source pixels around each centre.
func (b *Buffer) resizeBilinear(w, h int) *Buffer {
	if b.mode == ModeGray {
		out := image.NewGray(image.Rect(0, 0, w, h))
		for dy := 0; dy < h; dy++ {
			fy := (float64(dy) + 0.5) * float64(b.h) / float64(h)
			for dx := 0; dx < w; dx++ {
				fx := (float64(dx) + 0.5) * float64(b.w) / float64(w)
				out.SetGray(dx, dy, color.Gray{Y: b.bilinearGray(fx, fy)})
			}
		}
		return NewGray(out)
	}
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	for dy := 0; dy < h; dy++ {
		fy := (float64(dy) + 0.5) * float64(b.h) / float64(h)
		for dx := 0; dx < w; dx++ {
			fx := (float64(dx) + 0.5) * float64(b.w) / float64(w)
			out.SetRGBA(dx, dy, b.bilinearRGBA(fx, fy))
		}
	}
	return NewRGBA(out)
}

func (b *Buffer) clampX(x int) int {
	if x < 0 {
		return 0
	}
	if x >= b.w {
		return b.w - 1
	}
	return x
}

func (b *Buffer) clampY(y int) int {
	if y < 0 {
		return 0
	}
	if y >= b.h {
		return b.h - 1
	}
	return y
}

// bilinearRGBA samples the buffer at continuous coordinates (fx, fy),
// interpolating between its four nearest pixels.
func (b *Buffer) bilinearRGBA(fx, fy float64) color.RGBA {
	x0 := int(fx - 0.5)
	y0 := int(fy - 0.5)
	tx := fx - 0.5 - float64(x0)
	ty := fy - 0.5 - float64(y0)
	x0, x1 := b.clampX(x0), b.clampX(x0+1)
	y0c, y1 := b.clampY(y0), b.clampY(y0+1)

	c00, c10 := b.RGBAAt(x0, y0c), b.RGBAAt(x1, y0c)
	c01, c11 := b.RGBAAt(x0, y1), b.RGBAAt(x1, y1)

	return color.RGBA{
		R: blerp(c00.R, c10.R, c01.R, c11.R, tx, ty),
		G: blerp(c00.G, c10.G, c01.G, c11.G, tx, ty),
		B: blerp(c00.B, c10.B, c01.B, c11.B, tx, ty),
		A: blerp(c00.A, c10.A, c01.A, c11.A, tx, ty),
	}
}

func (b *Buffer) bilinearGray(fx, fy float64) uint8 {
	x0 := int(fx - 0.5)
	y0 := int(fy - 0.5)
	tx := fx - 0.5 - float64(x0)
	ty := fy - 0.5 - float64(y0)
	x0, x1 := b.clampX(x0), b.clampX(x0+1)
	y0c, y1 := b.clampY(y0), b.clampY(y0+1)

	g00, g10 := b.GrayAt(x0, y0c), b.GrayAt(x1, y0c)
	g01, g11 := b.GrayAt(x0, y1), b.GrayAt(x1, y1)
	return blerp(g00, g10, g01, g11, tx, ty)
}

func blerp(c00, c10, c01, c11 uint8, tx, ty float64) uint8 {
	top := float64(c00) + (float64(c10)-float64(c00))*tx
	bottom := float64(c01) + (float64(c11)-float64(c01))*tx
	v := top + (bottom-top)*ty
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return uint8(v)
}
