// Package loader extracts plain text from PDF files.
package loader

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Runner executes an external command and returns its stdout. It exists so
// tests can swap the real pdftotext binary for a canned response.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

type Option func(*PDF)

func WithRunner(r Runner) Option {
	return func(p *PDF) {
		p.runner = r
	}
}

// PDF extracts text with poppler's pdftotext. The PDF format itself is an
// opaque collaborator here.
type PDF struct {
	runner Runner
}

func NewPDF(opts ...Option) *PDF {
	p := &PDF{
		runner: execRunner{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Load returns the full text of the PDF at path, pages joined by blank
// lines.
func (p *PDF) Load(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("stat pdf: %w", err)
	}

	out, err := p.runner.Run(ctx, "pdftotext", "-layout", path, "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext %s: %w", path, err)
	}

	text := strings.TrimSpace(string(out))
	if len(text) == 0 {
		return "", fmt.Errorf("no text extracted from %s", path)
	}

	// pdftotext separates pages with form feeds.
	pages := strings.Split(text, "\f")
	for i, page := range pages {
		pages[i] = strings.TrimSpace(page)
	}

	return strings.Join(pages, "\n\n"), nil
}
