// Package extractors provides implementations of the Extractor interface
// for the supported document formats. Each extractor knows how to segment
// one format into coordinate-addressed chunks and to re-extract the text
// a coordinate addresses.
//
// Extractors are registered with the Registry at startup; dispatch is by
// MIME type.
package extractors
