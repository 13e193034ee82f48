package service

import (
	"context"
	"fmt"

	"github.com/sage-labs/sage/internal/domain"
)

// RetrievedChunk is a stored knowledge chunk plus the similarity score
// assigned by the vector index for the current query.
type RetrievedChunk struct {
	domain.KnowledgeChunk
	Score float32
}

// ChunkSearcher is the vector-index capability the retrieval service
// depends on; implemented by the pgvector-backed chunk repository.
type ChunkSearcher interface {
	SearchByEmbedding(ctx context.Context, embedding []float32, limit int) ([]RetrievedChunk, error)
}

// EmbeddingClient generates an embedding for query text.
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// RetrievalService answers similarity queries against the vector index.
type RetrievalService struct {
	searcher ChunkSearcher
	embedder EmbeddingClient
}

// NewRetrievalService creates a RetrievalService instance.
func NewRetrievalService(searcher ChunkSearcher, embedder EmbeddingClient) *RetrievalService {
	return &RetrievalService{searcher: searcher, embedder: embedder}
}

// Retrieve returns the top-k chunks for the query ordered by descending
// similarity. An empty or unreachable index yields an empty slice plus
// ErrRetrievalUnavailable; callers are expected to proceed with zero
// context rather than fail the request.
func (s *RetrievalService) Retrieve(ctx context.Context, query string, k int) ([]RetrievedChunk, error) {
	if query == "" {
		return nil, domain.ErrEmptyQuestion
	}

	embedding, err := s.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeRetrievalUnavailable,
			"vector index is empty or unreachable", fmt.Errorf("query embedding failed: %w", err))
	}

	results, err := s.searcher.SearchByEmbedding(ctx, embedding, k)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeRetrievalUnavailable,
			"vector index is empty or unreachable", err)
	}

	if len(results) == 0 {
		return []RetrievedChunk{}, domain.ErrRetrievalUnavailable
	}

	return results, nil
}
