// Package ingest loads source material (PDF documents, scraped page text)
// into the knowledge store: extract text, split into overlapping chunks,
// embed and store. It runs offline, outside the chat request path.
package ingest

import (
	"strings"
	"unicode/utf8"
)

// Chunking parameters shared by the PDF and web ingestion paths.
const (
	DefaultChunkSize = 1000
	DefaultOverlap   = 200
)

// Splitter splits text into chunks of at most chunkSize characters with
// overlap characters carried between consecutive chunks. It prefers to
// break at paragraph, then line, then sentence, then word boundaries,
// cutting mid-word only as a last resort.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

// NewSplitter creates a Splitter. Non-positive size or negative overlap
// fall back to the defaults; overlap is capped below the chunk size.
func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Splitter{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: []string{"\n\n", "\n", ". ", " "},
	}
}

// Split returns the chunks of text. Whitespace-only input yields nil;
// chunks are trimmed and never empty.
func (s *Splitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if utf8.RuneCountInString(text) <= s.chunkSize {
		return []string{text}
	}

	pieces := s.fragment(text, 0)

	var chunks []string
	var current strings.Builder
	for _, piece := range pieces {
		if current.Len() > 0 && utf8.RuneCountInString(current.String())+utf8.RuneCountInString(piece) > s.chunkSize {
			chunk := strings.TrimSpace(current.String())
			if chunk != "" {
				chunks = append(chunks, chunk)
			}
			current.Reset()
			current.WriteString(s.tail(chunk))
		}
		current.WriteString(piece)
	}
	if chunk := strings.TrimSpace(current.String()); chunk != "" {
		chunks = append(chunks, chunk)
	}
	return chunks
}

// fragment recursively breaks text into pieces no larger than chunkSize,
// trying separators in order and falling back to a hard rune cut.
func (s *Splitter) fragment(text string, sepIndex int) []string {
	if utf8.RuneCountInString(text) <= s.chunkSize {
		return []string{text}
	}
	if sepIndex >= len(s.separators) {
		return hardCut(text, s.chunkSize)
	}

	sep := s.separators[sepIndex]
	parts := strings.SplitAfter(text, sep)
	if len(parts) == 1 {
		return s.fragment(text, sepIndex+1)
	}

	var pieces []string
	for _, part := range parts {
		if part == "" {
			continue
		}
		pieces = append(pieces, s.fragment(part, sepIndex+1)...)
	}
	return pieces
}

// tail returns the last overlap runes of chunk plus a joining space, used
// to seed the next chunk for context continuity.
func (s *Splitter) tail(chunk string) string {
	if s.overlap == 0 || chunk == "" {
		return ""
	}
	runes := []rune(chunk)
	if len(runes) <= s.overlap {
		return chunk + " "
	}
	return string(runes[len(runes)-s.overlap:]) + " "
}

// hardCut splits text into fixed-size rune windows.
func hardCut(text string, size int) []string {
	runes := []rune(text)
	var out []string
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
	}
	return out
}
