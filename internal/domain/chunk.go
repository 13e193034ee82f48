package domain

import "time"

// Metadata keys attached to every stored chunk.
const (
	MetaFilename = "filename"
	MetaSource   = "source"
	MetaDocType  = "type"
)

// KnowledgeChunk is the unit of storage and retrieval in the vector index:
// a bounded text window cut from a source document plus its source
// metadata. Chunks are immutable once stored.
type KnowledgeChunk struct {
	ID         string
	DocumentID string
	ChunkIndex int
	Content    string
	Metadata   map[string]string
	Embedding  []float32
	CreatedAt  time.Time
}

// Meta returns a metadata value, or "" when absent.
func (c *KnowledgeChunk) Meta(key string) string {
	if c.Metadata == nil {
		return ""
	}
	return c.Metadata[key]
}
