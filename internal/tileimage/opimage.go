package tileimage

import "github.com/cciaimaging/tilepyramid/internal/cache"

// ComputeTileFunc computes the payload for tile (tileX, tileY) covering
// rect in image space. A nil, true result means "this tile is valid but
// deliberately empty" (e.g. fully masked); ok=false means the tile is
// outside the image's actual coverage and should not be cached.
type ComputeTileFunc func(tileX, tileY int, rect Rect) (Payload, bool)

// opImageBase is the cache-memoized GetTile dispatch shared by every
// concrete operator. Go has no class inheritance, so instead of overriding
// a virtual compute_tile method, concrete constructors embed opImageBase
// and supply a computeTile function value — the tagged-capability
// composition pattern used throughout this package in place of a type
// hierarchy.
type opImageBase struct {
	baseImage
	cache       *cache.Cache
	computeTile ComputeTileFunc
}

func newOpImageBase(base baseImage, c *cache.Cache, compute ComputeTileFunc) opImageBase {
	return opImageBase{baseImage: base, cache: c, computeTile: compute}
}

// GetTile returns the payload for tile (tileX, tileY), computing and
// caching it on a miss. A cache of nil (neither an explicit override nor a
// default) recomputes every call.
func (o *opImageBase) GetTile(tileX, tileY int) (Payload, bool) {
	var tileID string
	if o.cache != nil {
		tileID = o.tileID(tileX, tileY)
		if v, ok := o.cache.GetValue(tileID); ok {
			return v, true
		}
	}

	tw, th := o.tileWidth, o.tileHeight
	rect := Rect{X: tw * tileX, Y: th * tileY, W: tw, H: th}
	tile, ok := o.computeTile(tileX, tileY, rect)
	if !ok {
		return nil, false
	}
	if o.cache != nil {
		o.cache.PutValue(tileID, tile)
	}
	return tile, true
}

// Dispose removes every tile of this image from its cache. It does not
// affect a parent or source image's own cached tiles.
func (o *opImageBase) Dispose() {
	if o.cache == nil {
		return
	}
	for ty := 0; ty < o.numTilesY; ty++ {
		for tx := 0; tx < o.numTilesX; tx++ {
			o.cache.RemoveValue(o.tileID(tx, ty))
		}
	}
}

// NewOpImage constructs a leaf or derived operator whose tiles are
// computed by compute and memoized in c (or the process-wide default
// cache when c is nil and a default has been installed).
func NewOpImage(width, height, tileWidth, tileHeight, numTilesX, numTilesY int, mode, format, id string, c *cache.Cache, compute ComputeTileFunc) TiledImage {
	if c == nil {
		c = DefaultCache()
	}
	base := newBaseImage(width, height, tileWidth, tileHeight, numTilesX, numTilesY, mode, format, id)
	op := newOpImageBase(base, c, compute)
	return &op
}

var _ TiledImage = (*opImageBase)(nil)
