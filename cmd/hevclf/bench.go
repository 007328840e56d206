package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/deepteams/loopfilter"
)

func runBench(args []string) error {
	fs := flag.NewFlagSet("bench", flag.ContinueOnError)
	var pf pictureFlags
	var cf codingFlags
	pf.register(fs)
	cf.register(fs)
	n := fs.Int("n", 20, "pictures to filter")
	parallel := fs.Int("parallel", 1, "pictures filtered concurrently")
	scalar := fs.Bool("scalar", false, "use the scalar reference kernels")
	seed := fs.Int64("seed", 1, "random seed for the synthetic samples")

	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := pf.config()
	if err != nil {
		return fmt.Errorf("bench: %w", err)
	}
	if err := cf.validate(&cfg); err != nil {
		return fmt.Errorf("bench: %w", err)
	}
	if *n < 1 || *parallel < 1 {
		return fmt.Errorf("bench: -n and -parallel must be positive")
	}

	b := benchOptions{n: *n, workers: min(*parallel, *n), scalar: *scalar, seed: *seed}
	var res benchResult
	if cfg.BitDepth == 8 {
		res, err = benchFrames[uint8](cfg, pf.tiles, &cf, b)
	} else {
		res, err = benchFrames[uint16](cfg, pf.tiles, &cf, b)
	}
	if err != nil {
		return fmt.Errorf("bench: %w", err)
	}

	mb := float64(frameBytes(cfg)) * float64(*n) / (1 << 20)
	log.Printf("%d pictures %dx%d %v %d-bit, backend %v, %d workers",
		*n, cfg.Width, cfg.Height, cfg.ChromaFormat, cfg.BitDepth, res.backend, b.workers)
	log.Printf("per picture: %v, wall: %v, %.1f fps, %.1f MB/s",
		(res.busy / time.Duration(*n)).Round(time.Microsecond), res.wall.Round(time.Millisecond),
		float64(*n)/res.wall.Seconds(), mb/res.wall.Seconds())
	return nil
}

type benchOptions struct {
	n       int
	workers int
	scalar  bool
	seed    int64
}

type benchResult struct {
	backend loopfilter.Level
	busy    time.Duration // summed filter time over all pictures
	wall    time.Duration
}

// benchFrames filters b.n synthetic pictures on b.workers goroutines, each
// with its own Filter.
func benchFrames[T loopfilter.Sample](cfg loopfilter.Config, tiles [2]int, cf *codingFlags, b benchOptions) (benchResult, error) {
	busy := make([]time.Duration, b.workers)
	levels := make([]loopfilter.Level, b.workers)
	var g errgroup.Group
	start := time.Now()
	for w := 0; w < b.workers; w++ {
		g.Go(func() error {
			f, err := newFilter[T](cfg, tiles)
			if err != nil {
				return err
			}
			if b.scalar {
				loopfilter.UseScalar(f)
			}
			levels[w] = f.Backend()
			rng := rand.New(rand.NewSource(b.seed + int64(w)))
			for i := w; i < b.n; i += b.workers {
				f.Reset()
				fillNoise(f.Frame(), rng)
				prepare(f, cf)
				t0 := time.Now()
				f.FilterPicture(nil)
				busy[w] += time.Since(t0)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return benchResult{}, err
	}
	res := benchResult{backend: levels[0], wall: time.Since(start)}
	for _, d := range busy {
		res.busy += d
	}
	return res, nil
}

// fillNoise writes a slowly varying random walk into every plane, which
// keeps the deblocking decisions away from the all-skip case.
func fillNoise[T loopfilter.Sample](fr *loopfilter.Frame[T], rng *rand.Rand) {
	maxV := fr.MaxValue()
	for _, p := range fr.Planes {
		if p == nil {
			continue
		}
		v := maxV / 2
		for i := range p.Pix {
			v = min(maxV, max(0, v+rng.Intn(9)-4))
			p.Pix[i] = T(v)
		}
	}
}
