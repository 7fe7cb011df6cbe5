// Package heightmap provides the numeric transforms that turn a 16-bit
// grayscale heightmap into the raster products used by track authoring tools.
//
// # Overview
//
// Every product is derived from a single immutable [Field] of unsigned 16-bit
// height samples:
//
//	Field ─┬─ EncodeRG ───────────────────────────────► two-channel height (RGB)
//	       └─ ComputeGradients ─ NormalizeMagnitude ─┬► relief map (Gray16)
//	                                                 └─ Classify ─ ApplyTrackMask ─ Recolor
//
// The package performs no I/O. Decoding, encoding and file placement live in
// [github.com/matzehuels/hmaputil/pkg/imageio]; sequencing lives in
// [github.com/matzehuels/hmaputil/pkg/pipeline].
//
// # Gradients
//
// [ComputeGradients] estimates partial derivatives with unit sample spacing:
// central differences for interior samples and one-sided differences on the
// borders. The row-direction component GX is negated, the column-direction
// component GY is not:
//
//	GX[y][x] = -(v(y+1,x) - v(y-1,x)) / 2     0 < y < h-1
//	GY[y][x] =  (v(y,x+1) - v(y,x-1)) / 2     0 < x < w-1
//
// A field one sample tall has no row neighbour, so GX stays zero; the same
// holds for GY on a field one sample wide.
//
// # Magnitude Normalization
//
// [NormalizeMagnitude] scales hypot(GY, GX) into [0, 65535]. The lower end of
// the scale is the constant 0: a Euclidean norm is never negative, so no
// minimum is tracked. A flat field (maximum 0) normalizes to all zeros.
//
// # Classification
//
// [Classify] buckets the normalized magnitude into three pure colors:
//
//	value <  low          → green (flat)
//	low <= value < up     → red   (hill)
//	value >= up           → blue  (cliff)
//
// The alpha byte of every pixel starts at 0, so a viewer shows the mask as
// transparent until a track mask sets wetness through [ApplyTrackMask].
//
// # Concurrency
//
// Functions in this package are safe for concurrent use on distinct buffers.
// Large per-pixel loops are split into row bands processed in parallel; the
// results are identical to a sequential pass.
package heightmap
