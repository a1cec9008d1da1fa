// Package chunker splits document text into overlapping chunks sized for
// embedding.
package chunker

import (
	"github.com/tmc/langchaingo/textsplitter"
)

// Separators are tried in order; paragraph breaks are preferred over
// sentence breaks, which are preferred over word breaks.
var separators = []string{"\n\n", "\n", ". ", " ", ""}

type Splitter struct {
	inner textsplitter.RecursiveCharacter
}

func New(chunkSize, chunkOverlap int) Splitter {
	return Splitter{
		inner: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
			textsplitter.WithSeparators(separators),
		),
	}
}

func (s Splitter) Split(text string) ([]string, error) {
	return s.inner.SplitText(text)
}
