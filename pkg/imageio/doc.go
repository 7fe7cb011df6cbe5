// Package imageio decodes heightmaps and track masks, encodes raster
// products, and writes them to artifact sinks.
//
// # Heightmaps
//
// [DecodeHeightmap] accepts PNG and TIFF input. The decoded image must be a
// single-channel, 16-bit, no-alpha raster (*image.Gray16); anything else is
// rejected with INPUT_WRONG_FORMAT so the pipeline never sees an 8-bit or
// color source.
//
// # Track Masks
//
// [DecodeTrackMask] accepts PNG, TIFF, BMP and WebP in any pixel layout. The
// pipeline reads only the red and green channels.
//
// # Sinks
//
// A [Sink] receives encoded artifacts by name. [DirSink] writes files next to
// each other in a directory; each file is written to a temporary name first
// and renamed into place, so an interrupted run never leaves a truncated
// artifact behind. [MemorySink] keeps artifacts in memory for the HTTP API
// and for tests.
package imageio
