// Package pyramid builds and lays out image pyramids: stacks of tiled
// images of increasing detail, with a factor of two between successive
// levels and a shared tile size across all levels.
package pyramid

import (
	"github.com/cciaimaging/tilepyramid/internal/layout"
	"github.com/cciaimaging/tilepyramid/internal/tileimage"
)

// LevelImageFactory derives the image for level zIndex from the
// full-resolution source image and the image one level above (already
// built, of twice the detail). The highest level is the source itself; the
// factory is called once for each level below it, from numLevels-2 down to
// zero.
type LevelImageFactory func(source, higherLevel tileimage.TiledImage, zIndex, numLevels int) tileimage.TiledImage

// Pyramid is a stack of tiled images of increasing detail. Level 0 is the
// lowest resolution; the level of detail doubles between any two
// subsequent levels. Every level shares the same tile size.
type Pyramid struct {
	numLevelZeroTilesX, numLevelZeroTilesY int
	tileWidth, tileHeight                  int
	levels                                 []tileimage.TiledImage // indexed by z
}

// NumLevelZeroTiles returns the tile grid dimensions of level 0.
func (p *Pyramid) NumLevelZeroTiles() (x, y int) { return p.numLevelZeroTilesX, p.numLevelZeroTilesY }

// TileSize returns the tile dimensions shared by every level.
func (p *Pyramid) TileSize() (w, h int) { return p.tileWidth, p.tileHeight }

// NumLevels returns the number of levels in the pyramid.
func (p *Pyramid) NumLevels() int { return len(p.levels) }

// LevelImage returns the tiled image for level zIndex.
func (p *Pyramid) LevelImage(zIndex int) tileimage.TiledImage { return p.levels[zIndex] }

// GetTile fetches tile (tileX, tileY) of level zIndex.
func (p *Pyramid) GetTile(tileX, tileY, zIndex int) (tileimage.Payload, bool) {
	return p.levels[zIndex].GetTile(tileX, tileY)
}

// Dispose releases every level image's cache entries.
func (p *Pyramid) Dispose() {
	for _, level := range p.levels {
		level.Dispose()
	}
}

// Apply rebuilds the pyramid with every level image passed through mapper,
// preserving layout.
func (p *Pyramid) Apply(mapper func(tileimage.TiledImage) tileimage.TiledImage) *Pyramid {
	mapped := make([]tileimage.TiledImage, len(p.levels))
	for i, level := range p.levels {
		mapped[i] = mapper(level)
	}
	return &Pyramid{
		numLevelZeroTilesX: p.numLevelZeroTilesX,
		numLevelZeroTilesY: p.numLevelZeroTilesY,
		tileWidth:          p.tileWidth,
		tileHeight:         p.tileHeight,
		levels:             mapped,
	}
}

// BuildFromImage builds a pyramid topped by source (the highest-detail
// level). Lower levels are derived by repeatedly calling factory, starting
// from source and descending one level at a time; each call receives the
// image one level above the one it is building. numLevelZeroTiles and
// numLevels of zero request those values be computed.
func BuildFromImage(source tileimage.TiledImage, factory LevelImageFactory, numLevelZeroTilesX, numLevelZeroTilesY, numLevels int) (*Pyramid, error) {
	w, h := source.Size()
	tw, th := source.TileSize()
	nx, ny, _, _, numLevels, err := layout.ComputeLayout(w, h, tw, th, numLevelZeroTilesX, numLevelZeroTilesY, numLevels, 0, 0, true)
	if err != nil {
		return nil, err
	}

	levels := make([]tileimage.TiledImage, numLevels)
	zMax := numLevels - 1
	levels[zMax] = source
	current := source
	for i := 1; i < numLevels; i++ {
		z := zMax - i
		current = factory(source, current, z, numLevels)
		levels[z] = current
	}
	return &Pyramid{
		numLevelZeroTilesX: nx,
		numLevelZeroTilesY: ny,
		tileWidth:          tw,
		tileHeight:         th,
		levels:             levels,
	}, nil
}

// BuildFromArray builds a pyramid directly from a whole-image array using
// buildLevel to construct each level's FastArrayDownsamplingImage-style
// node. This is the fast path for sources whose backing store supports
// strided reads (so no intermediate level ever materializes a full-size
// copy): buildLevel receives the level index and the total level count and
// is responsible for sizing itself to 1/2^(numLevels-1-zIndex) of the
// array's native resolution.
func BuildFromArray(arrayWidth, arrayHeight int, tileWidth, tileHeight int, numLevelZeroTilesX, numLevelZeroTilesY, numLevels int, buildLevel func(zIndex, numLevels int) tileimage.TiledImage) (*Pyramid, error) {
	nx, ny, tw, th, levels, err := layout.ComputeLayout(arrayWidth, arrayHeight, tileWidth, tileHeight, numLevelZeroTilesX, numLevelZeroTilesY, numLevels, 0, 0, true)
	if err != nil {
		return nil, err
	}

	levelImages := make([]tileimage.TiledImage, levels)
	for z := 0; z < levels; z++ {
		levelImages[z] = buildLevel(z, levels)
	}
	return &Pyramid{
		numLevelZeroTilesX: nx,
		numLevelZeroTilesY: ny,
		tileWidth:          tw,
		tileHeight:         th,
		levels:             levelImages,
	}, nil
}

// ComputeTileSize re-exports layout.ComputeTileSize for callers that only
// need tile-size selection without a full layout.
func ComputeTileSize(totalSize, tileSizeMin, tileSizeMax, tileSizeStep, chunkSize, numLevelsMin int, intDiv bool) (int, error) {
	return layout.ComputeTileSize(totalSize, tileSizeMin, tileSizeMax, tileSizeStep, chunkSize, numLevelsMin, intDiv)
}

// ComputeLayout re-exports layout.ComputeLayout.
func ComputeLayout(maxWidth, maxHeight, tileWidth, tileHeight, numLevelZeroTilesX, numLevelZeroTilesY, numLevels int, intDiv bool) (nx, ny, tw, th, levels int, err error) {
	return layout.ComputeLayout(maxWidth, maxHeight, tileWidth, tileHeight, numLevelZeroTilesX, numLevelZeroTilesY, numLevels, 0, 0, intDiv)
}
