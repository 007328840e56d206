package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/deepteams/loopfilter"
	"github.com/deepteams/loopfilter/internal/pool"
)

type runOptions struct {
	parallel  int
	frames    int
	streaming bool
	verbose   bool
}

func runRun(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	var pf pictureFlags
	var cf codingFlags
	pf.register(fs)
	cf.register(fs)
	output := fs.String("o", "", `output path (default: <input>.lf.yuv[.zst], "-" for stdout)`)
	parallel := fs.Int("parallel", 1, "frames filtered concurrently")
	frames := fs.Int("frames", 0, "stop after this many frames (0 = all)")
	streaming := fs.Bool("streaming", false, "filter CTB by CTB behind a simulated decode front")
	verbose := fs.Bool("v", false, "log every progress signal")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("run: missing input file\nUsage: hevclf run [options] <input.yuv>")
	}
	inputPath := fs.Arg(0)

	cfg, err := pf.config()
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	if err := cf.validate(&cfg); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	if *parallel < 1 {
		return fmt.Errorf("run: -parallel %d", *parallel)
	}

	outputPath := *output
	if outputPath == "" {
		outputPath = defaultOutput(inputPath)
	}
	o := runOptions{parallel: *parallel, frames: *frames, streaming: *streaming, verbose: *verbose}
	if cfg.BitDepth == 8 {
		return filterFile[uint8](inputPath, outputPath, cfg, pf.tiles, &cf, o)
	}
	return filterFile[uint16](inputPath, outputPath, cfg, pf.tiles, &cf, o)
}

// defaultOutput derives "<base>.lf.yuv" from the input name, keeping a
// ".zst" suffix.
func defaultOutput(inputPath string) string {
	if inputPath == "-" {
		return "-"
	}
	base := filepath.Base(inputPath)
	zst := strings.HasSuffix(base, ".zst")
	base = strings.TrimSuffix(base, ".zst")
	base = strings.TrimSuffix(base, filepath.Ext(base))
	out := base + ".lf.yuv"
	if zst {
		out += ".zst"
	}
	return out
}

// filterFile filters every frame of inputPath into outputPath. Batches of
// o.parallel frames are filtered concurrently, one Filter per frame slot,
// and written in input order.
func filterFile[T loopfilter.Sample](inputPath, outputPath string, cfg loopfilter.Config, tiles [2]int,
	cf *codingFlags, o runOptions) (err error) {
	in, err := openInput(inputPath)
	if err != nil {
		return err
	}
	defer in.Close()

	filters := make([]*loopfilter.Filter[T], o.parallel)
	for i := range filters {
		if filters[i], err = newFilter[T](cfg, tiles); err != nil {
			return fmt.Errorf("run: %w", err)
		}
	}
	size := frameBytes(cfg)
	bufs := make([][]byte, o.parallel)
	for i := range bufs {
		bufs[i] = pool.Get(size)
	}
	defer func() {
		for _, b := range bufs {
			pool.Put(b)
		}
	}()

	out, err := createOutput(outputPath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil && outputPath != "-" {
			os.Remove(outputPath)
		}
	}()

	start := time.Now()
	total := 0
	for {
		k := 0
		for k < o.parallel && (o.frames == 0 || total+k < o.frames) {
			_, rerr := io.ReadFull(in, bufs[k])
			if rerr == io.EOF {
				break
			}
			if errors.Is(rerr, io.ErrUnexpectedEOF) {
				return fmt.Errorf("run: frame %d truncated (want %d bytes)", total+k, size)
			}
			if rerr != nil {
				return fmt.Errorf("run: reading frame %d: %w", total+k, rerr)
			}
			k++
		}
		if k == 0 {
			break
		}

		var g errgroup.Group
		for i := 0; i < k; i++ {
			frameNo := total + i
			g.Go(func() error {
				f := filters[i]
				f.Reset()
				if err := unpackFrame(f.Frame(), bufs[i]); err != nil {
					return fmt.Errorf("frame %d: %w", frameNo, err)
				}
				prepare(f, cf)
				filterOne(f, o, frameNo)
				packFrame(bufs[i], f.Frame())
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return fmt.Errorf("run: %w", err)
		}
		for i := 0; i < k; i++ {
			if _, err := out.Write(bufs[i]); err != nil {
				return fmt.Errorf("run: writing frame %d: %w", total+i, err)
			}
		}
		total += k
		if k < o.parallel {
			break
		}
	}
	if total == 0 {
		return fmt.Errorf("run: %s holds no complete %d-byte frame", inputPath, size)
	}

	elapsed := time.Since(start)
	log.Printf("filtered %d frames %dx%d in %v (%.1f fps)", total, cfg.Width, cfg.Height,
		elapsed.Round(time.Millisecond), float64(total)/elapsed.Seconds())
	return nil
}

// filterOne filters the picture held by f, either all at once or behind a
// simulated decode front: CTB by CTB in raster order, or row by row when
// tiles put the CTBs in tile-scan order.
func filterOne[T loopfilter.Sample](f *loopfilter.Filter[T], o runOptions, frameNo int) {
	var progress loopfilter.ProgressFunc
	if o.verbose {
		progress = func(rows int) { log.Printf("frame %d: %d rows ready", frameNo, rows) }
	}
	switch {
	case !o.streaming:
		f.FilterPicture(progress)
	case f.Config().TilesEnabled:
		filterTileScan(f, progress)
	default:
		grid := f.Grid()
		for y := 0; y < grid.Height(); y++ {
			for x := 0; x < grid.Width(); x++ {
				f.CTBDecoded(loopfilter.CTB(x), loopfilter.CTB(y), progress)
			}
		}
	}
}

// filterTileScan reconstructs CTBs in tile-scan order and filters a CTB row
// once it and the row below are complete, so no CTB is predicted from
// filtered samples.
func filterTileScan[T loopfilter.Sample](f *loopfilter.Filter[T], progress loopfilter.ProgressFunc) {
	grid := f.Grid()
	w, h := grid.Width(), grid.Height()
	pending := make([]int, h)
	for i := range pending {
		pending[i] = w
	}
	next := 0
	for _, rs := range grid.DecodeOrder() {
		pending[rs/w]--
		for next+1 < h && pending[next] == 0 && pending[next+1] == 0 {
			f.FilterRegion(loopfilter.CTB(next), loopfilter.CTB(next+1), progress)
			next++
		}
	}
	f.FilterRegion(loopfilter.CTB(next), loopfilter.CTB(h), progress)
}
