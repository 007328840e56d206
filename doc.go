// Package loopfilter implements the in-loop filter stage of an HEVC (H.265)
// decoder: the deblocking filter and Sample Adaptive Offset, applied per
// coding tree block (CTB) to a reconstructed picture.
//
// The decoder owns a Filter for each picture size it decodes. While it
// reconstructs a picture it writes samples into the Filter's frame, records
// block metadata (QP, coded-block flags, motion, bypass blocks), slice and
// tile layout and per-CTB SAO parameters, and calls
// DeriveBoundaryStrengths once per transform block. Filtering then runs
// either CTB by CTB behind the reconstruction front:
//
//	f.CTBDecoded(x, y, progress)
//
// or over the whole picture at once:
//
//	f.FilterPicture(progress)
//
// Both orders produce bit-identical output. progress receives the number of
// luma rows that are final, so a frame-threaded decoder can release rows to
// pictures that reference this one.
//
// Supported input:
//   - 8-bit samples as uint8, 10- and 12-bit samples as uint16
//   - Monochrome, 4:2:0, 4:2:2 and 4:4:4 chroma
//   - CTB sizes 16, 32 and 64, slices and tiles with or without filtering
//     across their borders
//   - PCM and transquant-bypass blocks, which are left untouched
//
// A Filter is not safe for concurrent use. Independent pictures may be
// filtered on separate goroutines with separate Filters.
package loopfilter
