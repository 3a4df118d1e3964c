package tileimage

import (
	"github.com/cciaimaging/tilepyramid/internal/cache"
	"github.com/cciaimaging/tilepyramid/internal/layout"
	"github.com/cciaimaging/tilepyramid/internal/ndarray"
	"github.com/cciaimaging/tilepyramid/internal/raster"
)

// newDownsamplingImage builds an operator half the width and height of
// source, whose tile (tileX, tileY) is combined from source's four
// children at (2*tileX, 2*tileY) .. (2*tileX+1, 2*tileY+1) via combine.
// Shared by the pixel-buffer and ndarray downsampling variants below;
// mirrors DownsamplingImage.compute_tile.
func newDownsamplingImage(source TiledImage, id string, c *cache.Cache, combine func(children [4]Payload, tileSize int) (Payload, bool)) TiledImage {
	w, h := source.Size()
	nx, ny := source.NumTiles()
	tw, th := source.TileSize()

	compute := func(tileX, tileY int, rect Rect) (Payload, bool) {
		sx, sy := 2*tileX, 2*tileY
		var children [4]Payload
		topLeft, ok0 := source.GetTile(sx, sy)
		topRight, ok1 := source.GetTile(sx+1, sy)
		bottomLeft, ok2 := source.GetTile(sx, sy+1)
		bottomRight, ok3 := source.GetTile(sx+1, sy+1)
		if !ok0 && !ok1 && !ok2 && !ok3 {
			return nil, false
		}
		if ok0 {
			children[0] = topLeft
		}
		if ok1 {
			children[1] = topRight
		}
		if ok2 {
			children[2] = bottomLeft
		}
		if ok3 {
			children[3] = bottomRight
		}
		return combine(children, tw)
	}

	return NewOpImage(w/2, h/2, tw, th, nx/2, ny/2, source.Mode(), source.Format(), id, c, compute)
}

// NewPixelDownsamplingImage downsamples a pixel-buffer-producing source,
// box-filtering each 2x2 block of source pixels (or picking the top-left
// under nearest-neighbor), grounded on downsampleTile/downsampleTileGray.
func NewPixelDownsamplingImage(source TiledImage, filter raster.Resampling, id string, c *cache.Cache) TiledImage {
	combine := func(children [4]Payload, tileSize int) (Payload, bool) {
		var bufs [4]*raster.Buffer
		for i, p := range children {
			if p == nil {
				continue
			}
			bufs[i] = p.(*raster.Buffer)
		}
		out := raster.Downsample4(bufs, tileSize, filter)
		if out == nil {
			return nil, false
		}
		return out, true
	}
	return newDownsamplingImage(source, id, c, combine)
}

// NewArrayDownsamplingImage downsamples an ndarray-producing source,
// combining each 2x2 block of source tiles with aggregator, grounded on
// NdarrayDownsamplingImage/downsample_ndarray.
func NewArrayDownsamplingImage(source TiledImage, aggregator ndarray.Aggregator, id string, c *cache.Cache) TiledImage {
	combine := func(children [4]Payload, tileSize int) (Payload, bool) {
		var prototype *ndarray.Array
		for _, p := range children {
			if p != nil {
				prototype = p.(*ndarray.Array)
				break
			}
		}
		if prototype == nil {
			return nil, false
		}
		out := ndarray.NewArray(tileSize, tileSize)
		half := tileSize / 2
		positions := [4]struct{ x, y int }{{0, 0}, {half, 0}, {0, half}, {half, half}}
		for i, p := range children {
			if p == nil {
				continue
			}
			arr := p.(*ndarray.Array)
			down := ndarray.Downsample(arr, aggregator)
			pasteArray(out, down, positions[i].x, positions[i].y)
		}
		return out, true
	}
	return newDownsamplingImage(source, id, c, combine)
}

func pasteArray(dst, src *ndarray.Array, x, y int) {
	for sy := 0; sy < src.Height; sy++ {
		for sx := 0; sx < src.Width; sx++ {
			v, ok := src.At(sx, sy)
			dx, dy := x+sx, y+sy
			if dx >= dst.Width || dy >= dst.Height {
				continue
			}
			if !ok {
				dst.SetMasked(dx, dy)
				continue
			}
			dst.Set(dx, dy, v)
		}
	}
}

// NewFastArrayDownsamplingImage builds a leaf image for pyramid level
// zIndex (of numLevels total) that reads directly from array with a
// stride of 2^(numLevels-zIndex-1), skipping the intermediate per-level
// materialization the general DownsamplingImage path requires. Grounded on
// FastNdarrayDownsamplingImage.compute_tile.
func NewFastArrayDownsamplingImage(array *ndarray.Array, tileWidth, tileHeight, zIndex, numLevels int, id string, c *cache.Cache) TiledImage {
	zoom := 1 << (numLevels - zIndex - 1)
	width, height := array.Width/zoom, array.Height/zoom
	numTilesX := layout.CardinalDivRound(width, tileWidth)
	numTilesY := layout.CardinalDivRound(height, tileHeight)

	compute := func(tileX, tileY int, rect Rect) (Payload, bool) {
		x0, y0 := rect.X*zoom, rect.Y*zoom
		out := ndarray.NewArray(rect.W, rect.H)
		for dy := 0; dy < rect.H; dy++ {
			sy := y0 + dy*zoom
			if sy >= array.Height {
				break
			}
			for dx := 0; dx < rect.W; dx++ {
				sx := x0 + dx*zoom
				if sx >= array.Width {
					break
				}
				v, ok := array.At(sx, sy)
				if !ok {
					out.SetMasked(dx, dy)
					continue
				}
				out.Set(dx, dy, v)
			}
		}
		return out, true
	}

	return NewOpImage(width, height, tileWidth, tileHeight, numTilesX, numTilesY, "", "", id, c, compute)
}
