package raster

import (
	"image"
	"image/color"
)

// Resampling selects the algorithm used to combine source pixels into a
// destination pixel during downsampling.
type Resampling int

const (
	// ResamplingBilinear averages the 2x2 source block (box filter).
	ResamplingBilinear Resampling = iota
	// ResamplingNearest picks the top-left pixel of the 2x2 source block.
	ResamplingNearest
)

// Quadrant identifies one of the four children combined into a parent
// tile, in the order (topLeft, topRight, bottomLeft, bottomRight).
type Quadrant int

const (
	TopLeft Quadrant = iota
	TopRight
	BottomLeft
	BottomRight
)

// quadrantPositions maps each Quadrant to its (x, y) offset within a
// dstSide x dstSide destination, in half-tile units.
func quadrantPositions(half int) [4]struct{ x, y int } {
	var p [4]struct{ x, y int }
	p[TopLeft] = struct{ x, y int }{0, 0}
	p[TopRight] = struct{ x, y int }{half, 0}
	p[BottomLeft] = struct{ x, y int }{0, half}
	p[BottomRight] = struct{ x, y int }{half, half}
	return p
}

// Downsample4 combines up to four children into one dstSide x dstSide
// buffer, laid out by Quadrant. children[TopLeft] etc. Each child is a
// dstSide x dstSide square that is halved into its dstSide/2 quadrant.
// Missing children (nil) leave their quadrant fully transparent. The
// destination side must be even.
//
// When all present children are uniform and share one color, the result
// collapses to a uniform buffer without allocating a pixel plane. When all
// present children are gray-native or uniform-gray, the combination runs
// in single-channel space, halving the temporary allocation relative to
// the general RGBA path.
func Downsample4(children [4]*Buffer, dstSide int, mode Resampling) *Buffer {
	present := 0
	allUniform := true
	allGray := true
	for _, c := range children {
		if c == nil {
			continue
		}
		present++
		if !c.IsUniform() {
			allUniform = false
		}
		if c.Mode() != ModeGray && !(c.IsUniform() && sameUniformGray(c)) {
			allGray = false
		}
	}
	if present == 0 {
		return nil
	}

	if present == 4 && allUniform {
		c0 := children[0].RGBAAt(0, 0)
		if children[1].RGBAAt(0, 0) == c0 && children[2].RGBAAt(0, 0) == c0 && children[3].RGBAAt(0, 0) == c0 {
			if children[0].Mode() == ModeGray && children[1].Mode() == ModeGray &&
				children[2].Mode() == ModeGray && children[3].Mode() == ModeGray {
				return NewUniformGray(c0.R, dstSide, dstSide)
			}
			return NewUniformRGBA(c0, dstSide, dstSide)
		}
	}

	if present == 4 && allGray {
		return downsample4Gray(children, dstSide, mode)
	}

	full := GetRGBA(dstSide, dstSide)
	half := dstSide / 2

	positions := quadrantPositions(half)
	for i, c := range children {
		if c == nil {
			continue
		}
		downsampleQuadrantRGBA(full, c, positions[i].x, positions[i].y, half, mode)
	}
	out := NewRGBA(full)
	if out.IsUniform() {
		PutRGBA(full)
	}
	return out
}

func sameUniformGray(c *Buffer) bool {
	if c.Mode() == ModeRGBA {
		u := c.UniformColor()
		return u.R == u.G && u.G == u.B && u.A == 255
	}
	return true
}

func downsample4Gray(children [4]*Buffer, dstSide int, mode Resampling) *Buffer {
	dst := GetGray(dstSide, dstSide)
	half := dstSide / 2
	positions := quadrantPositions(half)
	for i, c := range children {
		if c == nil {
			continue
		}
		downsampleQuadrantGray(dst, c, positions[i].x, positions[i].y, half, mode)
	}
	out := NewGray(dst)
	if out.IsUniform() {
		PutGray(dst)
	}
	return out
}

// downsampleQuadrantRGBA scales src (side = 2*half) into the half x half
// region of dst starting at (dstOffX, dstOffY).
func downsampleQuadrantRGBA(dst *image.RGBA, src *Buffer, dstOffX, dstOffY, half int, mode Resampling) {
	side := half * 2
	for dy := 0; dy < half; dy++ {
		for dx := 0; dx < half; dx++ {
			sx, sy := dx*2, dy*2
			var px color.RGBA
			if mode == ResamplingNearest {
				px = srcPixel(src, sx, sy, side)
			} else {
				px = averageQuadrant(src, sx, sy, side)
			}
			dst.SetRGBA(dstOffX+dx, dstOffY+dy, px)
		}
	}
}

func downsampleQuadrantGray(dst *image.Gray, src *Buffer, dstOffX, dstOffY, half int, mode Resampling) {
	side := half * 2
	for dy := 0; dy < half; dy++ {
		for dx := 0; dx < half; dx++ {
			sx, sy := dx*2, dy*2
			var v uint8
			if mode == ResamplingNearest {
				v = srcGrayPixel(src, sx, sy, side)
			} else {
				v = averageQuadrantGray(src, sx, sy, side)
			}
			dst.SetGray(dstOffX+dx, dstOffY+dy, color.Gray{Y: v})
		}
	}
}

// averageQuadrant box-filters the 2x2 source block at (sx,sy), excluding
// zero-alpha (nodata) pixels from the RGB average so transparent holes
// don't bleed dark color into the result. Alpha itself is a straight
// average across all four source pixels.
func averageQuadrant(src *Buffer, sx, sy, side int) color.RGBA {
	p00 := srcPixel(src, sx, sy, side)
	p10 := srcPixel(src, sx+1, sy, side)
	p01 := srcPixel(src, sx, sy+1, side)
	p11 := srcPixel(src, sx+1, sy+1, side)
	pixels := [4]color.RGBA{p00, p10, p01, p11}

	aSum := uint16(p00.A) + uint16(p10.A) + uint16(p01.A) + uint16(p11.A)
	a := uint8((aSum + 2) / 4)

	var rSum, gSum, bSum, count uint16
	for _, p := range pixels {
		if p.A == 0 {
			continue
		}
		rSum += uint16(p.R)
		gSum += uint16(p.G)
		bSum += uint16(p.B)
		count++
	}
	if count == 0 {
		return color.RGBA{}
	}
	return color.RGBA{
		R: uint8((rSum + count/2) / count),
		G: uint8((gSum + count/2) / count),
		B: uint8((bSum + count/2) / count),
		A: a,
	}
}

func averageQuadrantGray(src *Buffer, sx, sy, side int) uint8 {
	sum := uint16(srcGrayPixel(src, sx, sy, side)) +
		uint16(srcGrayPixel(src, sx+1, sy, side)) +
		uint16(srcGrayPixel(src, sx, sy+1, side)) +
		uint16(srcGrayPixel(src, sx+1, sy+1, side))
	return uint8((sum + 2) / 4)
}

// srcPixel reads src at (x, y), clamping to [0, side) so edge quadrants
// never index out of bounds.
func srcPixel(src *Buffer, x, y, side int) color.RGBA {
	if x >= side {
		x = side - 1
	}
	if y >= side {
		y = side - 1
	}
	return src.RGBAAt(x, y)
}

func srcGrayPixel(src *Buffer, x, y, side int) uint8 {
	if x >= side {
		x = side - 1
	}
	if y >= side {
		y = side - 1
	}
	if src.Mode() != ModeGray {
		return src.RGBAAt(x, y).R
	}
	return src.GrayAt(x, y)
}
