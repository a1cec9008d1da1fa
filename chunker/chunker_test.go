package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitShortTextIsOneChunk(t *testing.T) {
	s := New(1500, 300)

	chunks, err := s.Split("a short document")

	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "a short document", chunks[0])
}

func TestSplitRespectsChunkSize(t *testing.T) {
	s := New(100, 20)

	paragraphs := make([]string, 10)
	for i := range paragraphs {
		paragraphs[i] = strings.Repeat("word ", 15)
	}

	chunks, err := s.Split(strings.Join(paragraphs, "\n\n"))

	require.NoError(t, err)
	assert.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 100)
	}
}

func TestSplitPrefersParagraphBreaks(t *testing.T) {
	s := New(40, 0)

	chunks, err := s.Split("first paragraph here\n\nsecond paragraph here")

	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "first paragraph here", chunks[0])
	assert.Equal(t, "second paragraph here", chunks[1])
}
