// Package indexer builds the vector index records the query path assumes:
// overlapping markdown-aware chunks embedded and stored as hashes.
package indexer

import (
	"regexp"
	"strings"
)

// Default chunking parameters, in characters.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// Chunker splits source text into overlapping chunks on markdown-aware
// boundaries: headings first, then blank lines, then sentence ends.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker creates a chunker. Non-positive arguments fall back to defaults.
func NewChunker(size, overlap int) *Chunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultChunkOverlap
	}
	return &Chunker{size: size, overlap: overlap}
}

var (
	headingPattern   = regexp.MustCompile(`(?m)^#{1,6} `)
	blankLinePattern = regexp.MustCompile(`\n\s*\n`)
	sentenceEnd      = regexp.MustCompile(`[.!?]\s`)
)

// Chunk splits text into chunks of at most the configured size, with
// consecutive chunks sharing roughly the configured overlap. Whitespace-only
// input yields no chunks.
func (c *Chunker) Chunk(text string) []string {
	// Leave room for the overlap tail and separator so a rebuilt chunk
	// never exceeds the size.
	budget := c.size - c.overlap - 2
	if budget < 1 {
		budget = c.size
	}
	segments := splitSegments(text, budget)
	if len(segments) == 0 {
		return nil
	}

	var chunks []string
	var current strings.Builder

	flush := func() {
		chunk := strings.TrimSpace(current.String())
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		current.Reset()
	}

	for _, seg := range segments {
		if current.Len() > 0 && current.Len()+len(seg)+2 > c.size {
			tail := overlapTail(current.String(), c.overlap)
			flush()
			if tail != "" {
				current.WriteString(tail)
			}
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(seg)
	}
	flush()

	return chunks
}

// splitSegments breaks text on markdown boundaries, further splitting any
// segment that alone exceeds maxLen.
func splitSegments(text string, maxLen int) []string {
	var segments []string

	for _, section := range splitBefore(text, headingPattern) {
		for _, para := range blankLinePattern.Split(section, -1) {
			para = strings.TrimSpace(para)
			if para == "" {
				continue
			}
			if len(para) <= maxLen {
				segments = append(segments, para)
				continue
			}
			segments = append(segments, splitLong(para, maxLen)...)
		}
	}

	return segments
}

// splitBefore splits text at every match start of re, keeping the match with
// the following section.
func splitBefore(text string, re *regexp.Regexp) []string {
	indexes := re.FindAllStringIndex(text, -1)
	if len(indexes) == 0 {
		return []string{text}
	}

	var parts []string
	prev := 0
	for _, loc := range indexes {
		if loc[0] > prev {
			parts = append(parts, text[prev:loc[0]])
		}
		prev = loc[0]
	}
	parts = append(parts, text[prev:])
	return parts
}

// splitLong hard-splits an oversized paragraph at sentence ends, falling back
// to spaces, then to raw offsets.
func splitLong(para string, maxLen int) []string {
	var parts []string
	for len(para) > maxLen {
		cut := lastBoundary(para[:maxLen])
		if cut <= 0 {
			cut = maxLen
		}
		parts = append(parts, strings.TrimSpace(para[:cut]))
		para = strings.TrimSpace(para[cut:])
	}
	if para != "" {
		parts = append(parts, para)
	}
	return parts
}

func lastBoundary(s string) int {
	if locs := sentenceEnd.FindAllStringIndex(s, -1); len(locs) > 0 {
		return locs[len(locs)-1][1]
	}
	if i := strings.LastIndexByte(s, ' '); i > 0 {
		return i
	}
	return -1
}

// overlapTail returns the trailing part of chunk to carry into the next one,
// cut at a whitespace boundary near the overlap length.
func overlapTail(chunk string, overlap int) string {
	chunk = strings.TrimSpace(chunk)
	if overlap <= 0 || len(chunk) <= overlap {
		return ""
	}
	tail := chunk[len(chunk)-overlap:]
	if i := strings.IndexAny(tail, " \n\t"); i >= 0 {
		tail = tail[i+1:]
	}
	return strings.TrimSpace(tail)
}
