package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sage-labs/sage/internal/api"
	"github.com/sage-labs/sage/internal/domain"
	"github.com/sage-labs/sage/internal/pagination"
)

const maxListLimit = 100

// DocumentStore lists, fetches, and deletes ingested documents.
type DocumentStore interface {
	List(ctx context.Context, limit int, cursor string) ([]*domain.Document, string, error)
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	Delete(ctx context.Context, id string) (*domain.Document, error)
}

// ArchiveStorage serves and removes archived source files. Optional;
// a nil ArchiveStorage disables the download endpoint.
type ArchiveStorage interface {
	GenerateDownloadURL(ctx context.Context, key string) (string, error)
	DeleteObject(ctx context.Context, key string) error
}

type DocumentHandler struct {
	repo    DocumentStore
	archive ArchiveStorage
}

func NewDocumentHandler(repo DocumentStore, archive ArchiveStorage) *DocumentHandler {
	return &DocumentHandler{repo: repo, archive: archive}
}

type DocumentResponse struct {
	ID         string `json:"id"`
	Source     string `json:"source"`
	Filename   string `json:"filename"`
	Type       string `json:"type"`
	SHA256     string `json:"sha256"`
	ChunkCount int    `json:"chunk_count"`
	ArchiveKey string `json:"archive_key,omitempty"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

type DownloadResponse struct {
	URL string `json:"url"`
}

type DeleteDocumentResponse struct {
	ID string `json:"id"`
}

func documentToResponse(d *domain.Document) *DocumentResponse {
	return &DocumentResponse{
		ID:         d.ID,
		Source:     d.Source,
		Filename:   d.Filename,
		Type:       string(d.Type),
		SHA256:     d.SHA256,
		ChunkCount: d.ChunkCount,
		ArchiveKey: d.ArchiveKey,
		CreatedAt:  d.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  d.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	cursor := r.URL.Query().Get("cursor")
	limitStr := r.URL.Query().Get("limit")
	limit := 20
	if limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	docs, nextCursor, err := h.repo.List(r.Context(), limit, cursor)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]*DocumentResponse, len(docs))
	for i, d := range docs {
		items[i] = documentToResponse(d)
	}

	api.Success(w, http.StatusOK, pagination.PageResult[*DocumentResponse]{
		Items:   items,
		Cursor:  nextCursor,
		HasMore: nextCursor != "",
	})
}

// Download returns a presigned URL for the document's archived original.
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := documentID(r)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	doc, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	if h.archive == nil || doc.ArchiveKey == "" {
		api.HandleError(w, domain.NewDomainError(domain.ErrCodeNotFound, "no archived original for document"))
		return
	}

	url, err := h.archive.GenerateDownloadURL(r.Context(), doc.ArchiveKey)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, DownloadResponse{URL: url})
}

// Delete removes a document, its chunks, and its archived original.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := documentID(r)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	doc, err := h.repo.Delete(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	if h.archive != nil && doc.ArchiveKey != "" {
		// Best effort; an orphaned archive object is harmless.
		if err := h.archive.DeleteObject(r.Context(), doc.ArchiveKey); err != nil {
			log.Printf("archive delete failed for %s: %v", doc.ArchiveKey, err)
		}
	}

	api.Success(w, http.StatusOK, DeleteDocumentResponse{ID: doc.ID})
}

func documentID(r *http.Request) (string, error) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		return "", domain.NewDomainError(domain.ErrCodeValidation, "invalid document id")
	}
	return id, nil
}
