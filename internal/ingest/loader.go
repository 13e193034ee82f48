package ingest

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/sage-labs/sage/internal/domain"
)

// supportedTypes maps file extensions to document types.
var supportedTypes = map[string]domain.DocumentType{
	".txt": domain.DocumentTypeText,
	".md":  domain.DocumentTypeMarkdown,
	".pdf": domain.DocumentTypePDF,
}

// SupportedExtensions lists the extensions the loader accepts.
func SupportedExtensions() []string {
	return []string{".txt", ".md", ".pdf"}
}

// DocTypeFor returns the document type for a path, or an error for
// unsupported extensions.
func DocTypeFor(path string) (domain.DocumentType, error) {
	ext := strings.ToLower(filepath.Ext(path))
	docType, ok := supportedTypes[ext]
	if !ok {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeIngestionFailed,
			fmt.Sprintf("unsupported file type %q", ext), domain.ErrUnsupportedFileType)
	}
	return docType, nil
}

// LoadFile extracts plain text from a source file. Plain text and
// markdown are read as-is; PDF text is extracted page by page.
func LoadFile(path string) (string, domain.DocumentType, error) {
	docType, err := DocTypeFor(path)
	if err != nil {
		return "", "", err
	}

	var text string
	switch docType {
	case domain.DocumentTypePDF:
		text, err = extractPDFText(path)
	default:
		text, err = readTextFile(path)
	}
	if err != nil {
		return "", "", err
	}

	if strings.TrimSpace(text) == "" {
		return "", "", domain.ErrEmptyDocument
	}

	return text, docType, nil
}

func readTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return string(data), nil
}

func extractPDFText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}

	return buf.String(), nil
}
