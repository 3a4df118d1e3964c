// Command pyramidtool builds a tiled-image pyramid from a source image and
// either warms a level's tiles into the cache (printing layout statistics)
// or dumps them to a directory tree, in the teacher's flag-driven CLI style.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/cciaimaging/tilepyramid/internal/cache"
	"github.com/cciaimaging/tilepyramid/internal/encode"
	"github.com/cciaimaging/tilepyramid/internal/pyramid"
	"github.com/cciaimaging/tilepyramid/internal/raster"
	"github.com/cciaimaging/tilepyramid/internal/tileimage"
	"github.com/cciaimaging/tilepyramid/internal/tilesource"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var (
		tileSize    int
		maxZoom     int
		policyName  string
		capacity    int64
		threshold   float64
		format      string
		quality     int
		concurrency int
		verbose     bool
		showVersion bool
		dumpLevel   int
		outDir      string
		cpuProfile  string
		memProfile  string
		autoMemory  bool
		diskSpill   string
		byteSized   bool
		overviewW   int
	)

	flag.IntVar(&tileSize, "tile-size", 256, "Tile size in pixels (both axes)")
	flag.IntVar(&maxZoom, "max-zoom", -1, "Number of pyramid levels (default: auto from image size)")
	flag.StringVar(&policyName, "policy", "lru", "Cache eviction policy: lru, mru, lfu, rr")
	flag.Int64Var(&capacity, "capacity", 512, "Cache capacity (item count, or bytes with a byte-sized store)")
	flag.Float64Var(&threshold, "threshold", 0.9, "Cache max_size = capacity * threshold")
	flag.StringVar(&format, "format", "png", "Tile encoding when dumping: png, jpeg, webp")
	flag.IntVar(&quality, "quality", 85, "JPEG/WebP quality 1-100")
	flag.IntVar(&concurrency, "concurrency", runtime.NumCPU(), "Number of parallel workers warming a level")
	flag.BoolVar(&verbose, "verbose", false, "Verbose progress output")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.IntVar(&dumpLevel, "dump-level", -1, "Pyramid level to dump to -out (default: the top, highest-detail level)")
	flag.StringVar(&outDir, "out", "", "Directory to dump encoded tiles into (z/x/y.ext); omit to only print stats")
	flag.StringVar(&cpuProfile, "cpuprofile", "", "Write CPU profile to file")
	flag.StringVar(&memProfile, "memprofile", "", "Write memory profile to file")
	flag.BoolVar(&autoMemory, "auto-memory", false, "Size -capacity from a fraction of system RAM instead of the -capacity flag")
	flag.StringVar(&diskSpill, "disk-spill", "", "Directory for a disk-backed cache tier that spills encoded tiles instead of holding pixels in memory")
	flag.BoolVar(&byteSized, "byte-sized", false, "Size the in-memory cache capacity in bytes (ByteSizingStore) instead of item count (MemoryStore)")
	flag.IntVar(&overviewW, "overview-width", 0, "Width in pixels of a resized whole-image overview to write alongside -out (0 disables)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: pyramidtool [flags] <input-image>\n\n")
		fmt.Fprintf(os.Stderr, "Build a tiled-image pyramid from an image and warm or dump one level.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("pyramidtool %s (commit %s)\n", version, commit)
		os.Exit(0)
	}

	if cpuProfile != "" {
		f, err := os.Create(cpuProfile)
		if err != nil {
			log.Fatalf("Creating CPU profile: %v", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatalf("Starting CPU profile: %v", err)
		}
		defer pprof.StopCPUProfile()
	}
	if memProfile != "" {
		defer func() {
			f, err := os.Create(memProfile)
			if err != nil {
				log.Fatalf("Creating memory profile: %v", err)
			}
			defer f.Close()
			runtime.GC()
			if err := pprof.WriteHeapProfile(f); err != nil {
				log.Fatalf("Writing memory profile: %v", err)
			}
		}()
	}

	args := flag.Args()
	if len(args) != 1 {
		flag.Usage()
		os.Exit(1)
	}
	inputPath := args[0]

	policy, err := parsePolicy(policyName)
	if err != nil {
		log.Fatalf("Policy: %v", err)
	}

	var enc encode.Encoder
	if outDir != "" || diskSpill != "" || overviewW > 0 {
		enc, err = encode.NewEncoder(format, quality)
		if err != nil {
			log.Fatalf("Encoder: %v", err)
		}
	}

	if autoMemory {
		if limit := cache.ComputeMemoryLimit(cache.DefaultMemoryPressurePercent, verbose); limit > 0 {
			capacity = limit
		} else if verbose {
			log.Printf("Auto-memory sizing unavailable; keeping -capacity=%d", capacity)
		}
	}

	start := time.Now()
	src, err := tilesource.Load(inputPath)
	if err != nil {
		log.Fatalf("Loading %s: %v", inputPath, err)
	}
	w, h := src.Size()
	if verbose {
		log.Printf("Loaded %s (%dx%d) in %v", inputPath, w, h, time.Since(start).Round(time.Millisecond))
	}

	var store cache.Store = cache.MemoryStore{}
	if byteSized {
		store = cache.ByteSizingStore{}
	}
	if diskSpill != "" {
		diskStore, err := cache.NewDiskStore(diskSpill, enc)
		if err != nil {
			log.Fatalf("Disk spill store: %v", err)
		}
		defer diskStore.Close()
		store = diskStore
	}

	tileCache := cache.New(store, capacity, threshold, policy, nil)
	tileimage.SetDefaultCache(tileCache)

	top := src.LoadImage(tileSize, tileSize, "top", tileCache)

	factory := func(source, higherLevel tileimage.TiledImage, zIndex, numLevels int) tileimage.TiledImage {
		id := fmt.Sprintf("level-%d", zIndex)
		return tileimage.NewPixelDownsamplingImage(higherLevel, raster.ResamplingBilinear, id, tileCache)
	}

	requestedLevels := 0
	if maxZoom > 0 {
		requestedLevels = maxZoom
	}
	p, err := pyramid.BuildFromImage(top, factory, 1, 1, requestedLevels)
	if err != nil {
		log.Fatalf("Building pyramid: %v", err)
	}

	nx, ny := p.NumLevelZeroTiles()
	tw, th := p.TileSize()
	fmt.Printf("pyramidtool %s (commit %s)\n", version, commit)
	fmt.Printf("  %-16s %s\n", "Input:", inputPath)
	fmt.Printf("  %-16s %dx%d\n", "Source size:", w, h)
	fmt.Printf("  %-16s %dx%d\n", "Tile size:", tw, th)
	fmt.Printf("  %-16s %d\n", "Levels:", p.NumLevels())
	fmt.Printf("  %-16s %dx%d\n", "Level 0 grid:", nx, ny)
	tier := "memory"
	if diskSpill != "" {
		tier = "disk (" + diskSpill + ")"
	}
	fmt.Printf("  %-16s %s (capacity %d, threshold %.2f, %s)\n", "Cache policy:", policy, capacity, threshold, tier)

	level := dumpLevel
	if level < 0 {
		level = p.NumLevels() - 1
	}
	if level < 0 || level >= p.NumLevels() {
		log.Fatalf("Level %d out of range [0, %d)", level, p.NumLevels())
	}

	warmStart := time.Now()
	stats, err := warmLevel(p, level, warmConfig{
		Concurrency: concurrency,
		Verbose:     verbose,
		Encoder:     enc,
		OutDir:      outDir,
	})
	if err != nil {
		log.Fatalf("Warming level %d: %v", level, err)
	}

	fmt.Printf("  %-16s %d (%d uniform, %d empty) in %v\n", fmt.Sprintf("Level %d tiles:", level),
		stats.TileCount, stats.UniformTiles, stats.EmptyTiles, time.Since(warmStart).Round(time.Millisecond))
	if outDir != "" {
		fmt.Printf("  %-16s %s\n", "Dumped to:", outDir)
	}

	if overviewW > 0 {
		if outDir == "" {
			log.Printf("Skipping -overview-width: -out must be set to a directory")
		} else if err := writeOverview(src.Buffer(), overviewW, enc, outDir); err != nil {
			log.Fatalf("Writing overview: %v", err)
		} else if verbose {
			log.Printf("Wrote overview at width %d to %s", overviewW, outDir)
		}
	}
}

// writeOverview resizes the full source buffer to overviewW wide (preserving
// aspect ratio) via raster.Buffer.Resize and writes the encoded result as
// "overview.<ext>" in outDir.
func writeOverview(buf *raster.Buffer, overviewW int, enc encode.Encoder, outDir string) error {
	srcW, srcH := buf.Bounds().Dx(), buf.Bounds().Dy()
	overviewH := overviewW * srcH / srcW
	if overviewH < 1 {
		overviewH = 1
	}
	resized := buf.Resize(overviewW, overviewH, raster.ResamplingBilinear)
	data, err := enc.Encode(resized.AsImage())
	if err != nil {
		return fmt.Errorf("encoding overview: %w", err)
	}
	path := filepath.Join(outDir, "overview"+enc.FileExtension())
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", outDir, err)
	}
	return os.WriteFile(path, data, 0o644)
}

func parsePolicy(s string) (cache.Policy, error) {
	switch strings.ToLower(s) {
	case "lru":
		return cache.PolicyLRU, nil
	case "mru":
		return cache.PolicyMRU, nil
	case "lfu":
		return cache.PolicyLFU, nil
	case "rr":
		return cache.PolicyRR, nil
	default:
		return 0, fmt.Errorf("unknown policy %q (supported: lru, mru, lfu, rr)", s)
	}
}
