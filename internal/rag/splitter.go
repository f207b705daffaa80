// Package rag handles corpus ingestion and retrieval: splitting reference
// documents into overlapping chunks, indexing them into the knowledge store,
// and fetching the passages most similar to a question.
package rag

import "strings"

// Splitter cuts text into chunks of roughly ChunkSize runes with
// ChunkOverlap runes carried between neighbors. Splits prefer paragraph,
// then line, then word boundaries before falling back to a hard cut.
type Splitter struct {
	ChunkSize    int
	ChunkOverlap int
}

// NewSplitter returns a splitter with the default chunking profile.
func NewSplitter() *Splitter {
	return &Splitter{ChunkSize: 1000, ChunkOverlap: 200}
}

var separators = []string{"\n\n", "\n", " "}

// Split cuts text into chunks. Whitespace-only chunks are dropped.
func (s *Splitter) Split(text string) []string {
	var chunks []string
	for _, c := range s.split(text) {
		if trimmed := strings.TrimSpace(c); trimmed != "" {
			chunks = append(chunks, trimmed)
		}
	}
	return chunks
}

func (s *Splitter) split(text string) []string {
	if len([]rune(text)) <= s.ChunkSize {
		return []string{text}
	}

	parts := s.segment(text)
	var chunks []string
	var current strings.Builder
	for _, part := range parts {
		if current.Len() > 0 && len([]rune(current.String()))+len([]rune(part)) > s.ChunkSize {
			chunk := current.String()
			chunks = append(chunks, chunk)
			current.Reset()
			current.WriteString(tail(chunk, s.ChunkOverlap))
		}
		current.WriteString(part)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// segment breaks text at the coarsest separator that yields pieces no larger
// than the chunk size, hard-cutting pieces that never get small enough.
func (s *Splitter) segment(text string) []string {
	pieces := []string{text}
	for _, sep := range separators {
		var next []string
		for _, p := range pieces {
			if len([]rune(p)) <= s.ChunkSize {
				next = append(next, p)
				continue
			}
			split := strings.SplitAfter(p, sep)
			next = append(next, split...)
		}
		pieces = next
	}

	var out []string
	for _, p := range pieces {
		runes := []rune(p)
		for len(runes) > s.ChunkSize {
			out = append(out, string(runes[:s.ChunkSize]))
			runes = runes[s.ChunkSize:]
		}
		if len(runes) > 0 {
			out = append(out, string(runes))
		}
	}
	return out
}

// tail returns the last n runes of s, cut at a word boundary where possible.
func tail(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	t := string(runes[len(runes)-n:])
	if i := strings.IndexAny(t, " \n"); i >= 0 && i+1 < len(t) {
		return t[i+1:]
	}
	return t
}
