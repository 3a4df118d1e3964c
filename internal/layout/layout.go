// Package layout computes tile sizes and pyramid grid dimensions. It has
// no dependency on the tile-image or cache machinery so that both can
// depend on it without creating an import cycle.
package layout

import "fmt"

// ComputeTileSize picks a tile side length for an axis of length totalSize.
// It first halves totalSize while it is even and the half stays at or above
// tileSizeMin (so 2048 with the defaults gives 256, the smallest such
// halving), and returns that size if it is at most tileSizeMax and enough
// halvings were made for numLevelsMin. Otherwise it scans candidate sizes
// in [tileSizeMin, tileSizeMax] (step tileSizeStep) and picks the one
// minimizing wasted edge padding, plus, when chunkSize is set, a penalty of
// candidate*(ceil(candidate/chunkSize)-1), which is zero only for a
// candidate that fits in one chunk. Ties go to the smaller candidate.
// When intDiv is true, candidates that don't evenly divide totalSize are
// skipped outright rather than merely penalized.
//
// chunkSize <= 0 means "no storage chunking to penalize". numLevelsMin <= 0
// means "no minimum level count required".
func ComputeTileSize(totalSize, tileSizeMin, tileSizeMax, tileSizeStep, chunkSize, numLevelsMin int, intDiv bool) (int, error) {
	if tileSizeMin <= 0 {
		tileSizeMin = 180
	}
	if tileSizeMax <= 0 {
		tileSizeMax = 512
	}
	if tileSizeStep <= 0 {
		tileSizeStep = 2
	}

	ts := totalSize
	numLevels := 0
	for ts%2 == 0 {
		ts2 := ts / 2
		if ts2 < tileSizeMin {
			break
		}
		ts = ts2
		numLevels++
	}
	if ts <= tileSizeMax && (numLevelsMin <= 0 || numLevels >= numLevelsMin) {
		return ts, nil
	}

	minPenalty := 10 * totalSize
	bestTileSize := 0
	for candidate := tileSizeMin; candidate <= tileSizeMax; candidate += tileSizeStep {
		if intDiv && totalSize%candidate != 0 {
			continue
		}

		numTiles := CardinalDivRound(totalSize, candidate)
		if numLevelsMin > 0 {
			levels := CardinalLog2(numTiles * candidate)
			if levels < numLevelsMin {
				continue
			}
		}

		excess := candidate*numTiles - totalSize
		penalty := excess

		if chunkSize > 0 {
			numChunks := CardinalDivRound(candidate, chunkSize)
			tileExcess := candidate*numChunks - candidate
			penalty += tileExcess
		}

		if penalty < minPenalty {
			minPenalty = penalty
			bestTileSize = candidate
		}
	}
	if bestTileSize == 0 {
		return 0, fmt.Errorf("layout: tile size could not be computed for total size %d", totalSize)
	}
	return bestTileSize, nil
}

// ComputeLayout derives the pyramid layout parameters consistent with a
// source image of size (maxWidth, maxHeight). Zero/negative tileWidth,
// tileHeight, numLevelZeroTilesX, numLevelZeroTilesY, or numLevels request
// that value be computed rather than taken as given. chunkWidth/chunkHeight
// (storage chunk granularity, 0 if unknown) only affect tile-size
// computation when tileWidth/tileHeight are themselves being computed.
func ComputeLayout(maxWidth, maxHeight, tileWidth, tileHeight, numLevelZeroTilesX, numLevelZeroTilesY, numLevels, chunkWidth, chunkHeight int, intDiv bool) (nx, ny, tw, th, levels int, err error) {
	if maxWidth <= 0 || maxHeight <= 0 {
		return 0, 0, 0, 0, 0, fmt.Errorf("layout: missing max_size value")
	}
	if tileWidth <= 0 {
		tw, err = ComputeTileSize(maxWidth, 0, 0, 0, chunkWidth, 0, intDiv)
		if err != nil {
			return 0, 0, 0, 0, 0, err
		}
	} else {
		tw = tileWidth
	}
	if tileHeight <= 0 {
		th, err = ComputeTileSize(maxHeight, 0, 0, 0, chunkHeight, 0, intDiv)
		if err != nil {
			return 0, 0, 0, 0, 0, err
		}
	} else {
		th = tileHeight
	}
	nx, ny = numLevelZeroTilesX, numLevelZeroTilesY
	if nx <= 0 || ny <= 0 {
		nx = CardinalDivRound(maxWidth, maxHeight)
		ny = CardinalDivRound(maxHeight, maxWidth)
	}
	levels = numLevels
	if levels <= 0 {
		levels = 1
		numTilesX, numTilesY := nx, ny
		for {
			w := numTilesX * tw
			h := numTilesY * th
			if w >= maxWidth && h >= maxHeight {
				break
			}
			numTilesX *= 2
			numTilesY *= 2
			levels++
		}
	}
	return nx, ny, tw, th, levels, nil
}

// CardinalDivRound returns ceil(num/denom) for positive integers.
func CardinalDivRound(num, denom int) int { return (num + denom - 1) / denom }

// CardinalLog2 returns the number of times x divides evenly by 2.
func CardinalLog2(x int) int {
	n := 0
	for x > 0 && x%2 == 0 {
		n++
		x /= 2
	}
	return n
}
