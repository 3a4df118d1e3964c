package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/cciaimaging/tilepyramid/internal/encode"
	"github.com/cciaimaging/tilepyramid/internal/pyramid"
	"github.com/cciaimaging/tilepyramid/internal/raster"
	"github.com/cciaimaging/tilepyramid/internal/tileimage"
)

// warmConfig controls the level-warming worker pool. Grounded on
// tile.Generate's job-channel/WaitGroup/progress-bar pipeline, generalized
// from "zoom level across COG sources" to "one pyramid level".
type warmConfig struct {
	Concurrency int
	Verbose     bool
	// Encoder and OutDir are both set to dump encoded tiles to disk;
	// either left zero-valued just warms the cache and counts tiles.
	Encoder encode.Encoder
	OutDir  string
}

// warmStats mirrors tile.Stats: resident tile counts after warming a level.
type warmStats struct {
	TileCount    int64
	UniformTiles int64
	EmptyTiles   int64
	TotalBytes   int64
}

type tileJob struct{ x, y int }

// warmLevel fetches every tile of level zIndex through p, optionally
// encoding and writing each to cfg.OutDir/<z>/<x>/<y><ext>. Concurrency
// workers pull from a shared job channel exactly as Generate's per-zoom
// worker pool does.
func warmLevel(p *pyramid.Pyramid, zIndex int, cfg warmConfig) (warmStats, error) {
	level := p.LevelImage(zIndex)
	nx, ny := level.NumTiles()
	total := int64(nx) * int64(ny)

	if cfg.Verbose {
		log.Printf("Level %d: %d tiles to warm", zIndex, total)
	}

	var pb *progressBar
	if cfg.Verbose {
		pb = newProgressBar(fmt.Sprintf("Level %2d", zIndex), total)
	}

	jobs := make(chan tileJob, cfg.Concurrency*2)
	errCh := make(chan error, 1)
	var tileCount, uniformCount, emptyCount, totalBytes atomic.Int64

	var wg sync.WaitGroup
	for w := 0; w < cfg.Concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				payload, ok := level.GetTile(job.x, job.y)
				if !ok {
					emptyCount.Add(1)
					if pb != nil {
						pb.Increment()
					}
					continue
				}

				if buf, isBuf := payload.(*raster.Buffer); isBuf && buf.IsUniform() {
					uniformCount.Add(1)
				}

				if cfg.Encoder != nil && cfg.OutDir != "" {
					if err := writeTile(cfg.Encoder, cfg.OutDir, zIndex, job.x, job.y, payload); err != nil {
						select {
						case errCh <- err:
						default:
						}
						continue
					}
				}

				tileCount.Add(1)
				if pb != nil {
					pb.Increment()
				}
			}
		}()
	}

	for ty := 0; ty < ny; ty++ {
		for tx := 0; tx < nx; tx++ {
			jobs <- tileJob{x: tx, y: ty}
		}
	}
	close(jobs)
	wg.Wait()
	if pb != nil {
		pb.Finish()
	}

	select {
	case err := <-errCh:
		return warmStats{}, err
	default:
	}

	return warmStats{
		TileCount:    tileCount.Load(),
		UniformTiles: uniformCount.Load(),
		EmptyTiles:   emptyCount.Load(),
		TotalBytes:   totalBytes.Load(),
	}, nil
}

func writeTile(enc encode.Encoder, outDir string, z, x, y int, payload tileimage.Payload) error {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case *raster.Buffer:
		encoded, err := enc.Encode(v.AsImage())
		if err != nil {
			return fmt.Errorf("encoding tile z%d/%d/%d: %w", z, x, y, err)
		}
		data = encoded
	default:
		return fmt.Errorf("tile z%d/%d/%d: payload type %T has no pixel representation to encode", z, x, y, payload)
	}

	dir := filepath.Join(outDir, fmt.Sprintf("%d", z), fmt.Sprintf("%d", x))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%d%s", y, enc.FileExtension()))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
