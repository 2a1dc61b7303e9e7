// Package segmentation splits text into chunk-sized spans addressed by
// byte offsets. Splitting is deterministic: the same input always yields
// the same spans, which is what lets coordinates stand in for stored text.
package segmentation

import "unicode/utf8"

// DefaultChunkSize is the target span size in bytes.
const DefaultChunkSize = 1000

// DefaultOverlap is the number of bytes consecutive spans share.
const DefaultOverlap = 200

// Span is a half-open byte range [Start, End) into the splitter's input.
type Span struct {
	Start int
	End   int
}

// Splitter produces overlapping spans snapped to clean break points.
type Splitter struct {
	chunkSize int
	overlap   int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the target span size in bytes.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between consecutive spans in bytes.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// New creates a splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}
	for _, opt := range opts {
		opt(s)
	}

	// The overlap must cover the break-point lookback window, or snapping
	// a span's end backwards could open a gap before the next span.
	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}
	if s.overlap < s.chunkSize/10 {
		s.overlap = s.chunkSize / 10
	}
	return s
}

// Split returns the spans covering text. Spans are trimmed of leading and
// trailing whitespace by offset adjustment; all-whitespace windows produce
// no span. text[span.Start:span.End] is the exact chunk content.
func (s *Splitter) Split(text string) []Span {
	n := len(text)
	if n == 0 {
		return nil
	}

	step := s.chunkSize - s.overlap
	spans := make([]Span, 0, n/step+1)

	for start := 0; start < n; start += step {
		spanStart := start
		for spanStart < n && !utf8.RuneStart(text[spanStart]) {
			spanStart++
		}

		end := start + s.chunkSize
		if end >= n {
			end = n
		} else {
			end = s.snapEnd(text, spanStart, end)
		}

		if span, ok := trim(text, spanStart, end); ok {
			spans = append(spans, span)
		}

		if end == n {
			break
		}
	}

	return spans
}

// snapEnd moves end to a clean break point: the byte after the last
// space, newline or period in the lookback window, falling back to the
// nearest rune boundary.
func (s *Splitter) snapEnd(text string, start, end int) int {
	lookback := s.chunkSize / 10
	if lookback > end-start {
		lookback = end - start
	}
	for i := end - 1; i >= end-lookback && i > start; i-- {
		switch text[i] {
		case ' ', '\n', '.':
			return i + 1
		}
	}
	for end > start && !utf8.RuneStart(text[end]) {
		end--
	}
	return end
}

// trim narrows [start, end) past surrounding whitespace. Reports false
// when nothing remains.
func trim(text string, start, end int) (Span, bool) {
	for start < end && isSpace(text[start]) {
		start++
	}
	for end > start && isSpace(text[end-1]) {
		end--
	}
	if start >= end {
		return Span{}, false
	}
	return Span{Start: start, End: end}, true
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r':
		return true
	}
	return false
}
