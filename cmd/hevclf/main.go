// Command hevclf runs the HEVC deblocking filter and Sample Adaptive Offset
// over raw YUV pictures.
//
// Usage:
//
//	hevclf run [options] <input.yuv>   Filter every frame of a raw YUV file ("-" for stdin)
//	hevclf bench [options]             Time the filter on synthetic pictures
//	hevclf info [options]              Show the selected backends and the CTB layout
//
// Files whose name ends in ".zst" are read and written zstd-compressed.
// Samples deeper than 8 bits are stored as little-endian 16-bit words.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/deepteams/loopfilter"
)

func main() {
	log.SetPrefix("hevclf: ")
	log.SetFlags(0)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "run":
		err = runRun(os.Args[2:])
	case "bench":
		err = runBench(os.Args[2:])
	case "info":
		err = runInfo(os.Args[2:])
	case "-h", "-help", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "hevclf: unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "hevclf: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage:
  hevclf run [options] <input.yuv>   Filter every frame of a raw YUV file
  hevclf bench [options]             Time the filter on synthetic pictures
  hevclf info [options]              Show backends and CTB layout

Use "-" as input to read from stdin, "-o -" to write to stdout.
Names ending in ".zst" are zstd-compressed.

Run "hevclf <command> -h" for command-specific options.
`)
}

// --- info ---

func runInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	var pf pictureFlags
	pf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := pf.config()
	if err != nil {
		return fmt.Errorf("info: %w", err)
	}
	detected, sel8, sel16 := loopfilter.Backends()
	fmt.Printf("CPU level:       %v\n", detected)
	fmt.Printf("8-bit backend:   %v\n", sel8)
	fmt.Printf("16-bit backend:  %v\n", sel16)

	g := cfg.Geometry()
	fmt.Printf("Picture:         %dx%d %v, %d-bit\n", cfg.Width, cfg.Height, cfg.ChromaFormat, cfg.BitDepth)
	fmt.Printf("CTB:             %d (%dx%d = %d CTBs)\n", g.CTBSize(), g.WidthCTBs(), g.HeightCTBs(), g.NumCTBs())
	fmt.Printf("Min CB/TB/PU:    %d/%d/%d\n", 1<<g.Log2MinCBSize, 1<<g.Log2MinTBSize, 1<<cfg.Log2MinPUSize)
	fmt.Printf("Tiles:           %dx%d\n", pf.tiles[0], pf.tiles[1])
	fmt.Printf("Frame size:      %d bytes\n", frameBytes(cfg))
	return nil
}
