package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/sage-labs/sage/internal/domain"
	"github.com/sage-labs/sage/internal/service"
)

// ChunkRepository implements vector search and embedding maintenance over
// stored knowledge chunks.
type ChunkRepository struct {
	pool *pgxpool.Pool
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{pool: pool}
}

// SearchByEmbedding returns the chunks nearest to the query embedding by
// cosine distance, best first. Chunk id breaks ties so repeated queries
// against an unchanged index return a stable ordering.
func (r *ChunkRepository) SearchByEmbedding(ctx context.Context, embedding []float32, limit int) ([]service.RetrievedChunk, error) {
	if limit <= 0 {
		limit = 3
	}

	vec := pgvector.NewVector(embedding)

	rows, err := r.pool.Query(ctx,
		`SELECT c.id, c.document_id, c.chunk_index, c.content, c.metadata, c.created_at,
			1.0 / (1.0 + (c.embedding <=> $1)) AS score
		 FROM knowledge_chunks c
		 WHERE c.embedding IS NOT NULL
		 ORDER BY c.embedding <=> $1, c.id
		 LIMIT $2`,
		vec, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]service.RetrievedChunk, 0, limit)
	for rows.Next() {
		var rc service.RetrievedChunk
		if err := rows.Scan(&rc.ID, &rc.DocumentID, &rc.ChunkIndex, &rc.Content, &rc.Metadata, &rc.CreatedAt, &rc.Score); err != nil {
			return nil, err
		}
		results = append(results, rc)
	}

	return results, rows.Err()
}

// Counts returns total and embedded chunk counts.
func (r *ChunkRepository) Counts(ctx context.Context) (total int, embedded int, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(embedding) FROM knowledge_chunks`,
	).Scan(&total, &embedded)
	return total, embedded, err
}

// ListUnembedded returns chunks still waiting for an embedding, oldest
// first, for the backfill worker.
func (r *ChunkRepository) ListUnembedded(ctx context.Context, limit int) ([]domain.KnowledgeChunk, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, document_id, chunk_index, content, metadata, created_at
		 FROM knowledge_chunks
		 WHERE embedding IS NULL
		 ORDER BY created_at, id
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []domain.KnowledgeChunk
	for rows.Next() {
		var c domain.KnowledgeChunk
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.ChunkIndex, &c.Content, &c.Metadata, &c.CreatedAt); err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}

	return chunks, rows.Err()
}

// UpdateEmbedding stores a backfilled embedding for a chunk.
func (r *ChunkRepository) UpdateEmbedding(ctx context.Context, chunkID string, embedding []float32) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE knowledge_chunks SET embedding = $1 WHERE id = $2`,
		pgvector.NewVector(embedding), chunkID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NewDomainError(domain.ErrCodeNotFound, "knowledge chunk not found")
	}
	return nil
}
