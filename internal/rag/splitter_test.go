package rag

import (
	"strings"
	"testing"
)

func TestSplitShortTextIsOneChunk(t *testing.T) {
	s := NewSplitter()
	chunks := s.Split("a short paragraph about tax deductions")
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
}

func TestSplitRespectsChunkSize(t *testing.T) {
	s := &Splitter{ChunkSize: 100, ChunkOverlap: 20}
	var b strings.Builder
	for i := 0; i < 50; i++ {
		b.WriteString("Section 80C allows deductions of up to 1.5 lakh per year.\n\n")
	}

	chunks := s.Split(b.String())
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want several", len(chunks))
	}
	for i, c := range chunks {
		// Overlap carry can push a chunk slightly past the target.
		if n := len([]rune(c)); n > s.ChunkSize+s.ChunkOverlap {
			t.Errorf("chunk %d has %d runes, want <= %d", i, n, s.ChunkSize+s.ChunkOverlap)
		}
	}
}

func TestSplitOverlapCarriesContext(t *testing.T) {
	s := &Splitter{ChunkSize: 50, ChunkOverlap: 20}
	text := strings.Repeat("alpha beta gamma delta epsilon ", 10)

	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want several", len(chunks))
	}
	// Each chunk after the first starts with text present in its predecessor.
	for i := 1; i < len(chunks); i++ {
		head := []rune(chunks[i])
		if len(head) > 10 {
			head = head[:10]
		}
		if !strings.Contains(chunks[i-1], string(head)) {
			t.Errorf("chunk %d does not overlap its predecessor", i)
		}
	}
}

func TestSplitHardCutsUnbreakableText(t *testing.T) {
	s := &Splitter{ChunkSize: 10, ChunkOverlap: 0}
	chunks := s.Split(strings.Repeat("x", 35))
	if len(chunks) != 4 {
		t.Fatalf("got %d chunks, want 4", len(chunks))
	}
}

func TestSplitDropsWhitespaceChunks(t *testing.T) {
	s := NewSplitter()
	if chunks := s.Split("   \n\n\t  "); len(chunks) != 0 {
		t.Errorf("got %d chunks from whitespace, want 0", len(chunks))
	}
}
