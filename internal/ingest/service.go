package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sage-labs/sage/internal/domain"
	"github.com/sage-labs/sage/internal/telemetry"
)

// Embedder generates embeddings for chunk content.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// DocumentStore persists a document and its chunks. Replacing must be
// atomic: re-ingesting a source path swaps out its chunks in one
// transaction.
type DocumentStore interface {
	ReplaceDocument(ctx context.Context, doc *domain.Document, chunks []domain.KnowledgeChunk) (*domain.Document, error)
}

// Archiver stores original source files in object storage. Optional;
// archive failures never fail an ingest.
type Archiver interface {
	ArchiveFile(ctx context.Context, key string, path string) error
}

// FileFailure reports a single file that could not be ingested.
type FileFailure struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
}

// Report summarizes one ingestion batch.
type Report struct {
	Documents int           `json:"documents"`
	Chunks    int           `json:"chunks"`
	Failed    []FileFailure `json:"failed,omitempty"`
}

// Service converts source files into embedded knowledge chunks and hands
// them to the vector store.
type Service struct {
	store    DocumentStore
	embedder Embedder
	archiver Archiver
	chunkCfg ChunkConfig
}

// NewService creates an ingestion Service. embedder may be nil, in which
// case chunks are stored unembedded and left for the backfill worker.
// archiver may be nil to disable archiving.
func NewService(store DocumentStore, embedder Embedder, archiver Archiver) *Service {
	return &Service{
		store:    store,
		embedder: embedder,
		archiver: archiver,
		chunkCfg: DefaultChunkConfig(),
	}
}

// NewServiceWithChunkConfig creates a Service with an explicit chunking policy.
func NewServiceWithChunkConfig(store DocumentStore, embedder Embedder, archiver Archiver, cfg ChunkConfig) *Service {
	s := NewService(store, embedder, archiver)
	s.chunkCfg = cfg
	return s
}

// Ingest processes a batch of file paths. Directories are walked for
// supported file types. A file that cannot be parsed is reported in the
// Report and never aborts the rest of the batch.
func (s *Service) Ingest(ctx context.Context, paths []string) (*Report, error) {
	files, expandFailures := expandPaths(paths)

	report := &Report{Failed: expandFailures}
	for _, path := range files {
		doc, chunkCount, err := s.ingestFile(ctx, path)
		if err != nil {
			report.Failed = append(report.Failed, FileFailure{File: path, Reason: err.Error()})
			continue
		}
		report.Documents++
		report.Chunks += chunkCount
		log.Printf("ingested %s (%d chunks)", doc.Filename, chunkCount)
	}

	if len(report.Failed) > 0 {
		telemetry.CaptureMessage(ctx, fmt.Sprintf("ingestion skipped %d of %d files", len(report.Failed), len(report.Failed)+report.Documents))
	}

	return report, nil
}

func (s *Service) ingestFile(ctx context.Context, path string) (*domain.Document, int, error) {
	text, docType, err := LoadFile(path)
	if err != nil {
		return nil, 0, err
	}

	pieces := SplitText(text, s.chunkCfg)
	if len(pieces) == 0 {
		return nil, 0, domain.ErrEmptyDocument
	}

	sum := sha256.Sum256([]byte(text))
	now := time.Now().UTC()
	filename := filepath.Base(path)

	doc := &domain.Document{
		ID:         uuid.NewString(),
		Source:     path,
		Filename:   filename,
		Type:       docType,
		SHA256:     hex.EncodeToString(sum[:]),
		ChunkCount: len(pieces),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if s.archiver != nil {
		key := fmt.Sprintf("%s/%s", doc.SHA256[:12], filename)
		if err := s.archiver.ArchiveFile(ctx, key, path); err != nil {
			log.Printf("archive failed for %s (continuing): %v", filename, err)
		} else {
			doc.ArchiveKey = key
		}
	}

	chunks := make([]domain.KnowledgeChunk, 0, len(pieces))
	for i, piece := range pieces {
		chunk := domain.KnowledgeChunk{
			DocumentID: doc.ID,
			ChunkIndex: i,
			Content:    piece,
			Metadata: map[string]string{
				domain.MetaFilename: filename,
				domain.MetaSource:   path,
				domain.MetaDocType:  string(docType),
			},
			CreatedAt: now,
		}
		if s.embedder != nil {
			embedding, err := s.embedder.GenerateEmbedding(ctx, piece)
			if err != nil {
				// Stored unembedded; the backfill worker retries later.
				log.Printf("embedding failed for %s chunk %d (continuing): %v", filename, i, err)
			} else {
				chunk.Embedding = embedding
			}
		}
		chunks = append(chunks, chunk)
	}

	stored, err := s.store.ReplaceDocument(ctx, doc, chunks)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to store document: %w", err)
	}

	return stored, len(chunks), nil
}

// expandPaths resolves directories to their supported files and reports
// paths that do not exist.
func expandPaths(paths []string) ([]string, []FileFailure) {
	var files []string
	var failures []FileFailure

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			failures = append(failures, FileFailure{File: path, Reason: fmt.Sprintf("stat failed: %v", err)})
			continue
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			if _, ok := supportedTypes[strings.ToLower(filepath.Ext(p))]; ok {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			failures = append(failures, FileFailure{File: path, Reason: fmt.Sprintf("walk failed: %v", err)})
		}
	}

	return files, failures
}
