package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/deepteams/loopfilter"
)

// frameBytes returns the size of one raw frame of cfg.
func frameBytes(cfg loopfilter.Config) int {
	bps := 1
	if cfg.BitDepth > 8 {
		bps = 2
	}
	n := 0
	w, h := cfg.Width, cfg.Height
	for c := 0; c < cfg.ChromaFormat.NumComponents(); c++ {
		hs, vs := cfg.ChromaFormat.HShift(c), cfg.ChromaFormat.VShift(c)
		n += ((w + (1 << hs) - 1) >> hs) * ((h + (1 << vs) - 1) >> vs)
	}
	return n * bps
}

type zstdReader struct {
	*zstd.Decoder
	f io.Closer
}

func (r *zstdReader) Close() error {
	r.Decoder.Close()
	return r.f.Close()
}

// openInput returns a reader for path, decompressing ".zst" files. "-" is
// stdin.
func openInput(path string) (io.ReadCloser, error) {
	var f io.ReadCloser = io.NopCloser(os.Stdin)
	if path != "-" {
		var err error
		if f, err = os.Open(path); err != nil {
			return nil, err
		}
	}
	if !strings.HasSuffix(path, ".zst") {
		return f, nil
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("zstd: %w", err)
	}
	return &zstdReader{Decoder: dec, f: f}, nil
}

type zstdWriter struct {
	*zstd.Encoder
	f io.Closer
}

func (w *zstdWriter) Close() error {
	if err := w.Encoder.Close(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// createOutput returns a writer for path, compressing ".zst" files. "-" is
// stdout.
func createOutput(path string) (io.WriteCloser, error) {
	var f io.WriteCloser = nopWriteCloser{os.Stdout}
	if path != "-" {
		var err error
		if f, err = os.Create(path); err != nil {
			return nil, err
		}
	}
	if !strings.HasSuffix(path, ".zst") {
		return f, nil
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("zstd: %w", err)
	}
	return &zstdWriter{Encoder: enc, f: f}, nil
}

// unpackFrame copies the raw frame in src into fr.
func unpackFrame[T loopfilter.Sample](fr *loopfilter.Frame[T], src []byte) error {
	maxV := fr.MaxValue()
	wide := fr.BitDepth > 8
	i := 0
	for c, p := range fr.Planes {
		if p == nil {
			continue
		}
		for j := range p.Pix {
			var v int
			if wide {
				v = int(binary.LittleEndian.Uint16(src[i:]))
				i += 2
			} else {
				v = int(src[i])
				i++
			}
			if v > maxV {
				return fmt.Errorf("component %d sample %d: value %d exceeds %d bits", c, j, v, fr.BitDepth)
			}
			p.Pix[j] = T(v)
		}
	}
	return nil
}

// packFrame writes fr into dst in raw layout.
func packFrame[T loopfilter.Sample](dst []byte, fr *loopfilter.Frame[T]) {
	wide := fr.BitDepth > 8
	i := 0
	for _, p := range fr.Planes {
		if p == nil {
			continue
		}
		for _, v := range p.Pix {
			if wide {
				binary.LittleEndian.PutUint16(dst[i:], uint16(v))
				i += 2
			} else {
				dst[i] = byte(v)
				i++
			}
		}
	}
}
