package raster

import (
	"image"
	"sync"
)

// rgbaPoolKey and grayPoolKey identify a pool by image dimensions: tile
// rendering only ever touches a handful of distinct sizes per run (the
// configured tile size, which is also the side of the square buffers
// Downsample4 builds), so a tiny map of pools per size is enough to avoid most
// allocation on the hot tile-compute path.
type rgbaPoolKey struct{ w, h int }
type grayPoolKey struct{ w, h int }

var rgbaPools sync.Map
var grayPools sync.Map

// GetRGBA returns a zeroed *image.RGBA of size w x h from the pool, or
// allocates a new one.
func GetRGBA(w, h int) *image.RGBA {
	key := rgbaPoolKey{w, h}
	if p, ok := rgbaPools.Load(key); ok {
		if v := p.(*sync.Pool).Get(); v != nil {
			img := v.(*image.RGBA)
			clear(img.Pix)
			return img
		}
	}
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

// PutRGBA returns img to its size-keyed pool. Only safe to call on an
// *image.RGBA no longer referenced by anything — in particular, never on
// the backing plane of a non-uniform Buffer, since Buffer retains it.
func PutRGBA(img *image.RGBA) {
	if img == nil {
		return
	}
	key := rgbaPoolKey{img.Rect.Dx(), img.Rect.Dy()}
	p, _ := rgbaPools.LoadOrStore(key, &sync.Pool{})
	p.(*sync.Pool).Put(img)
}

// GetGray returns a zeroed *image.Gray of size w x h from the pool, or
// allocates a new one.
func GetGray(w, h int) *image.Gray {
	key := grayPoolKey{w, h}
	if p, ok := grayPools.Load(key); ok {
		if v := p.(*sync.Pool).Get(); v != nil {
			img := v.(*image.Gray)
			clear(img.Pix)
			return img
		}
	}
	return image.NewGray(image.Rect(0, 0, w, h))
}

// PutGray returns img to its size-keyed pool. Same caveat as PutRGBA.
func PutGray(img *image.Gray) {
	if img == nil {
		return
	}
	key := grayPoolKey{img.Rect.Dx(), img.Rect.Dy()}
	p, _ := grayPools.LoadOrStore(key, &sync.Pool{})
	p.(*sync.Pool).Put(img)
}
