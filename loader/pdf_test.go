package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRunner struct {
	out  []byte
	err  error
	name string
	args []string
}

func (m *mockRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.name = name
	m.args = args
	return m.out, m.err
}

func tempPdf(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "AP-1.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))

	return path
}

func TestLoadJoinsPages(t *testing.T) {
	runner := &mockRunner{out: []byte("page one  \f  page two\f")}
	pdf := NewPDF(WithRunner(runner))

	path := tempPdf(t)

	text, err := pdf.Load(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "page one\n\npage two", text)
	assert.Equal(t, "pdftotext", runner.name)
	assert.Equal(t, []string{"-layout", path, "-"}, runner.args)
}

func TestLoadMissingFile(t *testing.T) {
	pdf := NewPDF(WithRunner(&mockRunner{out: []byte("text")}))

	_, err := pdf.Load(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))

	assert.Error(t, err)
}

func TestLoadEmptyOutput(t *testing.T) {
	pdf := NewPDF(WithRunner(&mockRunner{out: []byte("   \n ")}))

	_, err := pdf.Load(context.Background(), tempPdf(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no text extracted")
}

func TestLoadRunnerFailure(t *testing.T) {
	pdf := NewPDF(WithRunner(&mockRunner{err: errors.New("boom")}))

	_, err := pdf.Load(context.Background(), tempPdf(t))

	assert.Error(t, err)
}
