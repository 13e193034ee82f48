package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sage-labs/sage/internal/domain"
)

func TestLoadFile_Text(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain text content"), 0o644))

	text, docType, err := LoadFile(path)

	require.NoError(t, err)
	assert.Equal(t, "plain text content", text)
	assert.Equal(t, domain.DocumentTypeText, docType)
}

func TestLoadFile_Markdown(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "README.md")
	require.NoError(t, os.WriteFile(path, []byte("# heading\n\nbody"), 0o644))

	text, docType, err := LoadFile(path)

	require.NoError(t, err)
	assert.Contains(t, text, "# heading")
	assert.Equal(t, domain.DocumentTypeMarkdown, docType)
}

func TestLoadFile_UnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "image.png")
	require.NoError(t, os.WriteFile(path, []byte{0x89, 0x50}, 0o644))

	_, _, err := LoadFile(path)

	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestLoadFile_EmptyDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(path, []byte("   \n\t"), 0o644))

	_, _, err := LoadFile(path)

	assert.ErrorIs(t, err, domain.ErrEmptyDocument)
}

func TestLoadFile_CorruptPDF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a real pdf"), 0o644))

	_, _, err := LoadFile(path)

	assert.Error(t, err)
}

func TestLoadFile_Missing(t *testing.T) {
	_, _, err := LoadFile(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}
