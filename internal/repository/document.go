package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/sage-labs/sage/internal/domain"
	"github.com/sage-labs/sage/internal/pagination"
)

// DocumentRepository persists ingested documents and their chunks.
type DocumentRepository struct {
	pool *pgxpool.Pool
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

// ReplaceDocument upserts the document row keyed by source path and swaps
// its chunks in a single transaction, so re-ingesting a file can never
// leave duplicate or mixed-generation chunks behind.
func (r *DocumentRepository) ReplaceDocument(ctx context.Context, doc *domain.Document, chunks []domain.KnowledgeChunk) (*domain.Document, error) {
	if err := domain.ValidateDocument(doc); err != nil {
		return nil, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	stored := *doc
	err = tx.QueryRow(ctx,
		`INSERT INTO documents (id, source, filename, doc_type, sha256, chunk_count, archive_key, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (source) DO UPDATE SET
			filename = EXCLUDED.filename,
			doc_type = EXCLUDED.doc_type,
			sha256 = EXCLUDED.sha256,
			chunk_count = EXCLUDED.chunk_count,
			archive_key = COALESCE(EXCLUDED.archive_key, documents.archive_key),
			updated_at = EXCLUDED.updated_at
		 RETURNING id, created_at`,
		doc.ID, doc.Source, doc.Filename, doc.Type, doc.SHA256, doc.ChunkCount,
		nullableString(doc.ArchiveKey), doc.CreatedAt, doc.UpdatedAt,
	).Scan(&stored.ID, &stored.CreatedAt)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM knowledge_chunks WHERE document_id = $1`, stored.ID); err != nil {
		return nil, err
	}

	for _, c := range chunks {
		createdAt := c.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}

		var embedding *pgvector.Vector
		if c.Embedding != nil {
			vec := pgvector.NewVector(c.Embedding)
			embedding = &vec
		}

		_, err := tx.Exec(ctx,
			`INSERT INTO knowledge_chunks (document_id, chunk_index, content, metadata, embedding, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			stored.ID, c.ChunkIndex, c.Content, c.Metadata, embedding, createdAt,
		)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &stored, nil
}

// GetByID fetches a document by its ID.
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, source, filename, doc_type, sha256, chunk_count, archive_key, created_at, updated_at
		 FROM documents WHERE id = $1`, id)
	return scanDocument(row)
}

// Delete removes a document and, via cascade, its chunks. The deleted
// row is returned so the caller can clean up the archived original.
func (r *DocumentRepository) Delete(ctx context.Context, id string) (*domain.Document, error) {
	row := r.pool.QueryRow(ctx,
		`DELETE FROM documents WHERE id = $1
		 RETURNING id, source, filename, doc_type, sha256, chunk_count, archive_key, created_at, updated_at`, id)
	return scanDocument(row)
}

// GetBySource fetches a document by its source path.
func (r *DocumentRepository) GetBySource(ctx context.Context, source string) (*domain.Document, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, source, filename, doc_type, sha256, chunk_count, archive_key, created_at, updated_at
		 FROM documents WHERE source = $1`, source)
	return scanDocument(row)
}

// List returns documents newest first, paginated with an opaque cursor.
func (r *DocumentRepository) List(ctx context.Context, limit int, cursor string) ([]*domain.Document, string, error) {
	if limit <= 0 {
		limit = 20
	}

	decoded, err := pagination.DecodeCursor(cursor)
	if err != nil {
		return nil, "", domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", err)
	}

	query := `SELECT id, source, filename, doc_type, sha256, chunk_count, archive_key, created_at, updated_at
		 FROM documents`
	args := []any{}
	if decoded != nil {
		query += ` WHERE (created_at, id) < ($1, $2)`
		args = append(args, decoded.Timestamp, decoded.LastID)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT $` + strconv.Itoa(len(args)+1)
	args = append(args, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	var docs []*domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, "", err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	next := pagination.CreateNextCursor(docs, limit,
		func(d *domain.Document) string { return d.ID },
		func(d *domain.Document) time.Time { return d.CreatedAt },
	)

	return docs, next, nil
}

// Count returns the number of ingested documents.
func (r *DocumentRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var d domain.Document
	var archiveKey *string
	err := row.Scan(&d.ID, &d.Source, &d.Filename, &d.Type, &d.SHA256, &d.ChunkCount, &archiveKey, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	if archiveKey != nil {
		d.ArchiveKey = *archiveKey
	}
	return &d, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
