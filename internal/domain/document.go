package domain

import (
	"fmt"
	"time"
)

// DocumentType classifies the source file format of an ingested document.
type DocumentType string

const (
	DocumentTypeText     DocumentType = "text"
	DocumentTypeMarkdown DocumentType = "markdown"
	DocumentTypePDF      DocumentType = "pdf"
)

// Document represents one ingested source file. Its chunks are replaced
// wholesale whenever the same source path is ingested again.
type Document struct {
	ID         string
	Source     string
	Filename   string
	Type       DocumentType
	SHA256     string
	ChunkCount int
	ArchiveKey string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ValidateDocument validates a Document instance
func ValidateDocument(d *Document) error {
	if d == nil {
		return fmt.Errorf("document cannot be nil")
	}
	if d.ID == "" {
		return fmt.Errorf("document ID is required")
	}
	if d.Source == "" {
		return fmt.Errorf("document Source is required")
	}
	if !isValidDocumentType(d.Type) {
		return fmt.Errorf("document Type is invalid: %s", d.Type)
	}
	if d.ChunkCount < 0 {
		return fmt.Errorf("document ChunkCount cannot be negative")
	}
	return nil
}

func isValidDocumentType(t DocumentType) bool {
	switch t {
	case DocumentTypeText, DocumentTypeMarkdown, DocumentTypePDF:
		return true
	}
	return false
}
