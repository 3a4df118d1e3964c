// Package tileimage implements the tiled-image abstraction: a DAG of lazy
// operators over a capacity-bounded tile cache. Every node is a TiledImage;
// concrete nodes compute their own tiles (OpImage) or derive them from a
// single source (DecoratorImage), memoizing the result through a shared
// cache.
package tileimage

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/cciaimaging/tilepyramid/internal/cache"
	"github.com/cciaimaging/tilepyramid/internal/layout"
)

// Rect is a tile's pixel rectangle within its image, in (x, y, width,
// height) form.
type Rect struct {
	X, Y, W, H int
}

// Payload is whatever a tile computation produces: a *raster.Buffer, an
// *ndarray.Array, an *image.RGBA (ColorMappedImage without encoding), or
// encoded []byte. The cache and the TiledImage interface
// treat it opaquely; only concrete operators know its underlying type.
type Payload any

// TiledImage is the interface every node in the operator DAG implements.
type TiledImage interface {
	ID() string
	Format() string
	Mode() string
	Size() (w, h int)
	TileSize() (w, h int)
	NumTiles() (nx, ny int)
	GetTile(tileX, tileY int) (Payload, bool)
	Dispose()
}

var defaultCache *cache.Cache

// SetDefaultCache installs c as the process-wide default used by any
// OpImage constructed without an explicit cache override. Passing nil
// disables caching for images that don't specify their own.
func SetDefaultCache(c *cache.Cache) { defaultCache = c }

// DefaultCache returns the process-wide default cache, or nil if none has
// been installed.
func DefaultCache() *cache.Cache { return defaultCache }

// genImageID returns a short random hex identifier, used when a caller
// doesn't supply an explicit image ID.
func genImageID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand failing is effectively unrecoverable on any real
		// platform; fall back to a fixed id rather than panicking.
		return "image-0000000000000000"
	}
	return "image-" + hex.EncodeToString(b[:])
}

// baseImage implements the bookkeeping shared by every TiledImage: identity,
// geometry, and the id->tile_id convention. Concrete operators embed it.
type baseImage struct {
	id                 string
	format, mode       string
	width, height      int
	tileWidth, tileHeight int
	numTilesX, numTilesY  int
}

func newBaseImage(width, height, tileWidth, tileHeight, numTilesX, numTilesY int, mode, format, id string) baseImage {
	if tileWidth <= 0 {
		tw, _ := layout.ComputeTileSize(width, 0, 0, 0, 0, 0, true)
		tileWidth = tw
	}
	if tileHeight <= 0 {
		th, _ := layout.ComputeTileSize(height, 0, 0, 0, 0, 0, true)
		tileHeight = th
	}
	if numTilesX <= 0 {
		numTilesX = layout.CardinalDivRound(width, tileWidth)
	}
	if numTilesY <= 0 {
		numTilesY = layout.CardinalDivRound(height, tileHeight)
	}
	if id == "" {
		id = genImageID()
	}
	return baseImage{
		id: id, format: format, mode: mode,
		width: width, height: height,
		tileWidth: tileWidth, tileHeight: tileHeight,
		numTilesX: numTilesX, numTilesY: numTilesY,
	}
}

func (b *baseImage) ID() string               { return b.id }
func (b *baseImage) Format() string           { return b.format }
func (b *baseImage) Mode() string             { return b.mode }
func (b *baseImage) Size() (int, int)         { return b.width, b.height }
func (b *baseImage) TileSize() (int, int)     { return b.tileWidth, b.tileHeight }
func (b *baseImage) NumTiles() (int, int)     { return b.numTilesX, b.numTilesY }

// tileID builds the cache key for tile (tileX, tileY): "<id>/<y>/<x>".
func (b *baseImage) tileID(tileX, tileY int) string {
	return fmt.Sprintf("%s/%d/%d", b.id, tileY, tileX)
}
