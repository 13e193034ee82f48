package jobs

import (
	"context"
	"fmt"
	"log"

	"github.com/sage-labs/sage/internal/domain"
	"github.com/sage-labs/sage/internal/telemetry"
)

const (
	// BatchSize bounds how many unembedded chunks one poll picks up.
	BatchSize = 20
)

// ChunkBackfillRepository lists chunks stored without an embedding and
// stores backfilled embeddings.
type ChunkBackfillRepository interface {
	ListUnembedded(ctx context.Context, limit int) ([]domain.KnowledgeChunk, error)
	UpdateEmbedding(ctx context.Context, chunkID string, embedding []float32) error
}

// EmbeddingClient generates embeddings for chunk content.
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// BackfillWorker embeds chunks that were stored unembedded because the
// inference endpoint was unavailable during ingestion, making a partial
// ingest self-healing.
type BackfillWorker struct {
	repo     ChunkBackfillRepository
	embedder EmbeddingClient
}

// NewBackfillWorker creates a new BackfillWorker instance
func NewBackfillWorker(repo ChunkBackfillRepository, embedder EmbeddingClient) *BackfillWorker {
	return &BackfillWorker{repo: repo, embedder: embedder}
}

// ProcessJobs implements the JobProcessor interface
func (w *BackfillWorker) ProcessJobs(ctx context.Context) error {
	chunks, err := w.repo.ListUnembedded(ctx, BatchSize)
	if err != nil {
		return fmt.Errorf("failed to list unembedded chunks: %w", err)
	}

	if len(chunks) == 0 {
		return nil
	}

	log.Printf("backfilling embeddings for %d chunks", len(chunks))

	for _, chunk := range chunks {
		if err := w.processChunk(ctx, chunk); err != nil {
			// Left unembedded; the next poll retries it.
			log.Printf("backfill failed for chunk %s: %v", chunk.ID, err)
			telemetry.CaptureError(ctx, err)
		}
	}

	return nil
}

func (w *BackfillWorker) processChunk(ctx context.Context, chunk domain.KnowledgeChunk) error {
	embedding, err := w.embedder.GenerateEmbedding(ctx, chunk.Content)
	if err != nil {
		return fmt.Errorf("failed to generate embedding: %w", err)
	}

	if err := w.repo.UpdateEmbedding(ctx, chunk.ID, embedding); err != nil {
		return fmt.Errorf("failed to store embedding: %w", err)
	}

	return nil
}
